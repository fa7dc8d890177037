package models

// CellQueryParams is the raw query-string form of a point lookup. Pointer
// fields distinguish absent parameters from zero values; the four key
// fields are required.
type CellQueryParams struct {
	MCC   *uint16 `form:"mcc"`
	Net   *uint16 `form:"net"`
	Area  *uint32 `form:"area"`
	Cell  *uint64 `form:"cell"`
	Radio string  `form:"radio"`
}

// CellQuery is a validated point lookup. Radio narrows the lookup to one
// technology; without it the strongest-evidence row wins.
type CellQuery struct {
	MCC   uint16
	Net   uint16
	Area  uint32
	Cell  uint64
	Radio *Radio
}

// CellFilter represents filter parameters for listing cells. All fields are
// optional; absent fields impose no constraint. Radio is parsed by the
// handler since its wire form is the uppercase name.
type CellFilter struct {
	MCC    *uint16  `form:"mcc"`
	MNC    *uint16  `form:"mnc"`
	MinLat *float32 `form:"minLat"`
	MaxLat *float32 `form:"maxLat"`
	MinLon *float32 `form:"minLon"`
	MaxLon *float32 `form:"maxLon"`
	Radio  *Radio   `form:"-"`
	Cursor string   `form:"cursor"`
	Limit  *int     `form:"limit"`
}

// CellsResponse is one page of a cell listing.
type CellsResponse struct {
	Cells      []Cell  `json:"cells"`
	NextCursor *string `json:"nextCursor"`
	HasMore    bool    `json:"hasMore"`
}

// LookupKey is the legacy cell identifier without a radio. Cells that
// differ only by radio share one.
type LookupKey struct {
	MCC uint16 `json:"mcc"`
	MNC uint16 `json:"mnc"`
	LAC uint32 `json:"lac"`
	CID uint64 `json:"cid"`
}

// LookupRequest is the body of a batch lookup.
type LookupRequest struct {
	Cells []LookupKey `json:"cells"`
}

// LookupResponse mirrors the request: one slot per requested key, null
// where no cell resolved.
type LookupResponse struct {
	Cells []*Cell `json:"cells"`
}
