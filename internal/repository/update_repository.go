package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/racemap/cell-service-go/internal/models"
)

// UpdateRepository persists when a dataset refresh of each kind last
// succeeded.
type UpdateRepository struct {
	db *sql.DB
}

// NewUpdateRepository creates a new update repository
func NewUpdateRepository(db *sql.DB) *UpdateRepository {
	return &UpdateRepository{db: db}
}

// GetLastUpdate returns the time of the last successful update of the
// given kind. A kind that never completed reads as the Unix epoch.
func (r *UpdateRepository) GetLastUpdate(kind models.UpdateKind) (time.Time, error) {
	var value int64
	err := r.db.QueryRow(
		`SELECT value FROM last_updates WHERE update_type = ?`, kind.String(),
	).Scan(&value)
	if err == sql.ErrNoRows {
		return time.Unix(0, 0).UTC(), nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get last update: %w", err)
	}

	return time.Unix(value, 0).UTC(), nil
}

// GetLatestUpdate returns the most recent successful update across all
// kinds, or the Unix epoch when none has ever completed.
func (r *UpdateRepository) GetLatestUpdate() (time.Time, error) {
	var value int64
	err := r.db.QueryRow(
		`SELECT value FROM last_updates ORDER BY value DESC LIMIT 1`,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return time.Unix(0, 0).UTC(), nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get latest update: %w", err)
	}

	return time.Unix(value, 0).UTC(), nil
}

// SetLastUpdate records a successful update of the given kind.
func (r *UpdateRepository) SetLastUpdate(kind models.UpdateKind, t time.Time) error {
	_, err := r.db.Exec(
		`INSERT OR REPLACE INTO last_updates (update_type, value) VALUES (?, ?)`,
		kind.String(), t.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to set last update: %w", err)
	}
	return nil
}
