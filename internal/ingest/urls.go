package ingest

import (
	"fmt"
	"time"
)

// FullPackageURL builds the download URL of the complete tower snapshot.
func FullPackageURL(base, token string) string {
	return fmt.Sprintf("%s?token=%s&type=full&file=cell_towers.csv.gz", base, token)
}

// DiffPackageURL builds the download URL of the daily diff published for the
// given day.
func DiffPackageURL(base, token string, day time.Time) string {
	day = day.UTC()
	return fmt.Sprintf("%s?token=%s&type=diff&file=OCID-diff-cell-export-%04d-%02d-%02d-T000000.csv.gz",
		base, token, day.Year(), int(day.Month()), day.Day())
}
