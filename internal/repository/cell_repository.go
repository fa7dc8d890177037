package repository

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/racemap/cell-service-go/internal/models"
)

// cellColumns is the select list shared by every cell query.
const cellColumns = `radio, mcc, net, area, cell, unit, lon, lat, cell_range, samples, changeable, created, updated, average_signal`

// radioOrderExpr maps the stored radio names onto the key sort order. The
// composite key sorts by declaration order of the enum, which is not the
// alphabetical order of the names.
const radioOrderExpr = `CASE radio WHEN 'gsm' THEN 0 WHEN 'umts' THEN 1 WHEN 'cdma' THEN 2 WHEN 'lte' THEN 3 WHEN 'nr' THEN 4 END`

// radioGenerationExpr maps the stored radio names onto technology
// generations for lookup tie-breaking.
const radioGenerationExpr = `CASE radio WHEN 'cdma' THEN 1 WHEN 'gsm' THEN 2 WHEN 'umts' THEN 3 WHEN 'lte' THEN 4 WHEN 'nr' THEN 5 END`

// CellRepository handles database operations for cells
type CellRepository struct {
	db *sql.DB
}

// NewCellRepository creates a new cell repository
func NewCellRepository(db *sql.DB) *CellRepository {
	return &CellRepository{db: db}
}

// FindCell retrieves the cell matching a point lookup, or nil when no row
// matches. Without a radio the query can match one row per radio; the
// strongest-evidence row wins, ranked like the batch lookup (samples, then
// update time, then technology generation).
func (r *CellRepository) FindCell(q models.CellQuery) (*models.Cell, error) {
	conditions := []string{"mcc = ?", "net = ?", "area = ?", "cell = ?"}
	args := []interface{}{q.MCC, q.Net, q.Area, q.Cell}

	if q.Radio != nil {
		conditions = append(conditions, "radio = ?")
		args = append(args, *q.Radio)
	}

	query := `SELECT ` + cellColumns + ` FROM cells WHERE ` + strings.Join(conditions, " AND ")
	if q.Radio == nil {
		query += ` ORDER BY samples DESC, updated DESC, ` + radioGenerationExpr + ` DESC`
	}
	query += ` LIMIT 1`

	var c models.Cell
	err := r.db.QueryRow(query, args...).Scan(
		&c.Radio, &c.MCC, &c.Net, &c.Area, &c.Cell, &c.Unit, &c.Lon, &c.Lat,
		&c.Range, &c.Samples, &c.Changeable, &c.Created, &c.Updated, &c.AverageSignal,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query cell: %w", err)
	}

	return &c, nil
}

// ListCells retrieves up to fetchLimit cells matching the filter in
// ascending composite-key order. A cursor restricts the scan to rows whose
// key is strictly greater than the cursor's key, so successive pages never
// repeat or skip a row even while a load is writing.
func (r *CellRepository) ListCells(filter models.CellFilter, cursor *models.CellCursor, fetchLimit int) ([]models.Cell, error) {
	query := `SELECT ` + cellColumns + ` FROM cells`

	var conditions []string
	var args []interface{}

	if filter.MCC != nil {
		conditions = append(conditions, "mcc = ?")
		args = append(args, *filter.MCC)
	}
	if filter.MNC != nil {
		conditions = append(conditions, "net = ?")
		args = append(args, *filter.MNC)
	}
	if filter.Radio != nil {
		conditions = append(conditions, "radio = ?")
		args = append(args, *filter.Radio)
	}
	if filter.MinLat != nil {
		conditions = append(conditions, "lat >= ?")
		args = append(args, *filter.MinLat)
	}
	if filter.MaxLat != nil {
		conditions = append(conditions, "lat <= ?")
		args = append(args, *filter.MaxLat)
	}
	if filter.MinLon != nil {
		conditions = append(conditions, "lon >= ?")
		args = append(args, *filter.MinLon)
	}
	if filter.MaxLon != nil {
		conditions = append(conditions, "lon <= ?")
		args = append(args, *filter.MaxLon)
	}

	if cursor != nil {
		seek := fmt.Sprintf(`(%[1]s > ?
			OR (%[1]s = ? AND mcc > ?)
			OR (%[1]s = ? AND mcc = ? AND net > ?)
			OR (%[1]s = ? AND mcc = ? AND net = ? AND area > ?)
			OR (%[1]s = ? AND mcc = ? AND net = ? AND area = ? AND cell > ?))`, radioOrderExpr)
		conditions = append(conditions, seek)

		radio := int(cursor.Radio)
		args = append(args,
			radio,
			radio, cursor.MCC,
			radio, cursor.MCC, cursor.Net,
			radio, cursor.MCC, cursor.Net, cursor.Area,
			radio, cursor.MCC, cursor.Net, cursor.Area, cursor.Cell,
		)
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += ` ORDER BY ` + radioOrderExpr + ` ASC, mcc ASC, net ASC, area ASC, cell ASC LIMIT ?`
	args = append(args, fetchLimit)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cells: %w", err)
	}
	defer rows.Close()

	var cells []models.Cell
	for rows.Next() {
		var c models.Cell
		err := rows.Scan(
			&c.Radio, &c.MCC, &c.Net, &c.Area, &c.Cell, &c.Unit, &c.Lon, &c.Lat,
			&c.Range, &c.Samples, &c.Changeable, &c.Created, &c.Updated, &c.AverageSignal,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cell: %w", err)
		}
		cells = append(cells, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read cells: %w", err)
	}

	return cells, nil
}

// FindCellsByKeys retrieves every cell matching any of the legacy 4-tuple
// keys, across all radios, in one disjunctive query. Callers bound the key
// count.
func (r *CellRepository) FindCellsByKeys(keys []models.LookupKey) ([]models.Cell, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	var conditions []string
	var args []interface{}
	for _, k := range keys {
		conditions = append(conditions, "(mcc = ? AND net = ? AND area = ? AND cell = ?)")
		args = append(args, k.MCC, k.MNC, k.LAC, k.CID)
	}

	query := `SELECT ` + cellColumns + ` FROM cells WHERE ` + strings.Join(conditions, " OR ")

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cells by keys: %w", err)
	}
	defer rows.Close()

	var cells []models.Cell
	for rows.Next() {
		var c models.Cell
		err := rows.Scan(
			&c.Radio, &c.MCC, &c.Net, &c.Area, &c.Cell, &c.Unit, &c.Lon, &c.Lat,
			&c.Range, &c.Samples, &c.Changeable, &c.Created, &c.Updated, &c.AverageSignal,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cell: %w", err)
		}
		cells = append(cells, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read cells: %w", err)
	}

	return cells, nil
}

// BulkReplacer writes cells in a single transaction, fully replacing any
// existing row with the same natural key. Either Commit or Rollback must be
// called to release the transaction.
type BulkReplacer struct {
	tx   *sql.Tx
	stmt *sql.Stmt
}

// NewBulkReplacer begins a bulk replace transaction.
func (r *CellRepository) NewBulkReplacer() (*BulkReplacer, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO cells (` + cellColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to prepare replace statement: %w", err)
	}

	return &BulkReplacer{tx: tx, stmt: stmt}, nil
}

// Write upserts one cell by its natural key.
func (b *BulkReplacer) Write(c *models.Cell) error {
	_, err := b.stmt.Exec(
		c.Radio, c.MCC, c.Net, c.Area, c.Cell, c.Unit, c.Lon, c.Lat,
		c.Range, c.Samples, c.Changeable, c.Created, c.Updated, c.AverageSignal,
	)
	if err != nil {
		return fmt.Errorf("failed to write cell: %w", err)
	}
	return nil
}

// Commit makes every written row visible at once.
func (b *BulkReplacer) Commit() error {
	b.stmt.Close()
	if err := b.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit bulk replace: %w", err)
	}
	return nil
}

// Rollback discards every written row.
func (b *BulkReplacer) Rollback() error {
	b.stmt.Close()
	return b.tx.Rollback()
}
