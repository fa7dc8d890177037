package models

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// CellCursor marks the position of the last row a page returned, as the
// cell's natural key. The wire form is "RADIO:mcc:net:area:cell" encoded
// with unpadded base64url.
type CellCursor struct {
	Radio Radio
	MCC   uint16
	Net   uint16
	Area  uint32
	Cell  uint64
}

// Encode serializes the cursor to its opaque wire form.
func (c CellCursor) Encode() string {
	raw := fmt.Sprintf("%s:%d:%d:%d:%d", c.Radio, c.MCC, c.Net, c.Area, c.Cell)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses an opaque cursor token. It reports false for any
// malformed token: bad base64, a field count other than five, an unknown
// radio name or a non-numeric key field. Callers treat a bad cursor the
// same as no cursor at all.
func DecodeCursor(s string) (CellCursor, bool) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return CellCursor{}, false
	}

	parts := strings.Split(string(raw), ":")
	if len(parts) != 5 {
		return CellCursor{}, false
	}

	radio, ok := ParseRadio(parts[0])
	if !ok {
		return CellCursor{}, false
	}
	mcc, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil {
		return CellCursor{}, false
	}
	net, err := strconv.ParseUint(parts[2], 10, 16)
	if err != nil {
		return CellCursor{}, false
	}
	area, err := strconv.ParseUint(parts[3], 10, 32)
	if err != nil {
		return CellCursor{}, false
	}
	cell, err := strconv.ParseUint(parts[4], 10, 64)
	if err != nil {
		return CellCursor{}, false
	}

	return CellCursor{
		Radio: radio,
		MCC:   uint16(mcc),
		Net:   uint16(net),
		Area:  uint32(area),
		Cell:  cell,
	}, true
}
