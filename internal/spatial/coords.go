package spatial

import (
	"github.com/golang/geo/s2"
)

// ValidLatLng reports whether lat/lng degrees form a real position on the
// sphere: latitude within ±90 and longitude within ±180.
func ValidLatLng(lat, lng float64) bool {
	return s2.LatLngFromDegrees(lat, lng).IsValid()
}
