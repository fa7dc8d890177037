package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Radio is the air interface generation of a tower. The declaration order
// doubles as the ascending sort order of the composite cell key.
type Radio uint8

const (
	RadioGSM Radio = iota
	RadioUMTS
	RadioCDMA
	RadioLTE
	RadioNR
)

// radioNames is the uppercase API form, indexed by Radio value.
var radioNames = [...]string{"GSM", "UMTS", "CDMA", "LTE", "NR"}

// radioStorageNames is the lowercase database form, indexed by Radio value.
var radioStorageNames = [...]string{"gsm", "umts", "cdma", "lte", "nr"}

// radioGenerations ranks radios by technology generation. Used to pick one
// row when several radios share a legacy lookup key: NR > LTE > UMTS > GSM
// > CDMA.
var radioGenerations = [...]int{2, 3, 1, 4, 5}

// String returns the canonical uppercase name.
func (r Radio) String() string {
	if int(r) < len(radioNames) {
		return radioNames[r]
	}
	return fmt.Sprintf("Radio(%d)", uint8(r))
}

// StorageName returns the lowercase form stored in the database.
func (r Radio) StorageName() string {
	if int(r) < len(radioStorageNames) {
		return radioStorageNames[r]
	}
	return fmt.Sprintf("radio(%d)", uint8(r))
}

// GenerationRank returns the technology generation used for lookup
// tie-breaking. Higher is newer.
func (r Radio) GenerationRank() int {
	if int(r) < len(radioGenerations) {
		return radioGenerations[r]
	}
	return 0
}

// ParseRadio maps a canonical uppercase name to a Radio. The match is
// case-sensitive; cursor tokens and query parameters use this form only.
func ParseRadio(s string) (Radio, bool) {
	for i, name := range radioNames {
		if name == s {
			return Radio(i), true
		}
	}
	return 0, false
}

// ParseRadioStorage maps a lowercase database value to a Radio.
func ParseRadioStorage(s string) (Radio, bool) {
	for i, name := range radioStorageNames {
		if name == s {
			return Radio(i), true
		}
	}
	return 0, false
}

// MarshalJSON encodes the radio as its uppercase name.
func (r Radio) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON decodes an uppercase radio name.
func (r *Radio) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	radio, ok := ParseRadio(s)
	if !ok {
		return fmt.Errorf("unknown radio %q", s)
	}
	*r = radio
	return nil
}

// Value stores the radio as its lowercase name.
func (r Radio) Value() (driver.Value, error) {
	return r.StorageName(), nil
}

// Scan reads a lowercase radio name from the database.
func (r *Radio) Scan(value interface{}) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Radio", value)
	}
	radio, ok := ParseRadioStorage(s)
	if !ok {
		return fmt.Errorf("unknown radio %q in database", s)
	}
	*r = radio
	return nil
}

// UnixTime is a UTC timestamp carried as Unix epoch seconds in both JSON
// and the database.
type UnixTime struct {
	time.Time
}

// NewUnixTime truncates t to whole seconds in UTC.
func NewUnixTime(t time.Time) UnixTime {
	return UnixTime{Time: time.Unix(t.Unix(), 0).UTC()}
}

// MarshalJSON encodes the timestamp as a bare number of epoch seconds.
func (t UnixTime) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(t.Unix(), 10)), nil
}

// UnmarshalJSON decodes a number of epoch seconds.
func (t *UnixTime) UnmarshalJSON(data []byte) error {
	sec, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid unix timestamp: %w", err)
	}
	t.Time = time.Unix(sec, 0).UTC()
	return nil
}

// Value stores the timestamp as epoch seconds.
func (t UnixTime) Value() (driver.Value, error) {
	return t.Unix(), nil
}

// Scan reads epoch seconds from the database.
func (t *UnixTime) Scan(value interface{}) error {
	sec, ok := value.(int64)
	if !ok {
		return fmt.Errorf("cannot scan %T into UnixTime", value)
	}
	t.Time = time.Unix(sec, 0).UTC()
	return nil
}

// Cell is one aggregated tower observation from the OpenCellID dataset.
// The (radio, mcc, net, area, cell) tuple is globally unique; a bulk load
// always replaces the whole row for that key.
type Cell struct {
	Radio         Radio    `json:"radio"`
	MCC           uint16   `json:"mcc"`
	Net           uint16   `json:"net"`
	Area          uint32   `json:"area"`
	Cell          uint64   `json:"cell"`
	Unit          *uint16  `json:"unit"`
	Lon           float32  `json:"lon"`
	Lat           float32  `json:"lat"`
	Range         uint32   `json:"range"`
	Samples       uint32   `json:"samples"`
	Changeable    bool     `json:"changeable"`
	Created       UnixTime `json:"created"`
	Updated       UnixTime `json:"updated"`
	AverageSignal *int16   `json:"averageSignal"`
}

// Key returns the cell's position in the composite-key sort order as a
// cursor value.
func (c *Cell) Key() CellCursor {
	return CellCursor{Radio: c.Radio, MCC: c.MCC, Net: c.Net, Area: c.Area, Cell: c.Cell}
}

// LookupKey returns the cell's legacy 4-tuple identifier.
func (c *Cell) LookupKey() LookupKey {
	return LookupKey{MCC: c.MCC, MNC: c.Net, LAC: c.Area, CID: c.Cell}
}
