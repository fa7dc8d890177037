package ingest

import (
	"time"

	"github.com/racemap/cell-service-go/internal/models"
)

// The provider publishes the day's snapshot at 04:00 UTC.
const updateAvailableHourUTC = 4

// DetermineUpdateKind decides whether an update is due given the time of the
// last successful one. A fresh database always starts with a full import,
// and diffs never cross a month boundary.
func DetermineUpdateKind(lastUpdate, now time.Time) models.UpdateKind {
	lastUpdate = lastUpdate.UTC()
	now = now.UTC()

	if now.Hour() < updateAvailableHourUTC {
		return models.UpdateNone
	}
	if lastUpdate.Unix() == 0 {
		return models.UpdateFull
	}
	if lastUpdate.Year() != now.Year() || lastUpdate.Month() != now.Month() {
		return models.UpdateFull
	}
	if lastUpdate.Day() == now.Day() {
		return models.UpdateNone
	}

	elapsed := now.Sub(lastUpdate)
	if int(elapsed/(24*time.Hour)) <= 1 && int(elapsed/time.Hour) < 24 {
		return models.UpdateDiff
	}
	return models.UpdateFull
}
