package models

// UpdateKind classifies a dataset refresh: a complete replacement snapshot
// or the daily incremental package.
type UpdateKind int

const (
	UpdateNone UpdateKind = iota
	UpdateFull
	UpdateDiff
)

// String returns the storage name of the kind.
func (k UpdateKind) String() string {
	switch k {
	case UpdateFull:
		return "full"
	case UpdateDiff:
		return "diff"
	default:
		return "none"
	}
}
