package service

import (
	"fmt"

	"github.com/racemap/cell-service-go/internal/cache"
	"github.com/racemap/cell-service-go/internal/models"
	"github.com/racemap/cell-service-go/internal/repository"
)

const (
	defaultPageSize = 100
	maxPageSize     = 1000

	// MaxLookupKeys caps how many distinct keys one batch lookup resolves
	// against the database. Keys beyond the cap resolve to null.
	MaxLookupKeys = 50
)

// CellService handles business logic for cell lookups and listings
type CellService struct {
	cellRepo *repository.CellRepository
	cache    *cache.LookupCache
}

// NewCellService creates a new cell service
func NewCellService(cellRepo *repository.CellRepository, cache *cache.LookupCache) *CellService {
	return &CellService{
		cellRepo: cellRepo,
		cache:    cache,
	}
}

// GetCell returns the best matching cell for an exact query, or nil when
// nothing matches.
func (s *CellService) GetCell(q models.CellQuery) (*models.Cell, error) {
	if cached, ok := s.cache.Get(q); ok {
		return cached, nil
	}

	cell, err := s.cellRepo.FindCell(q)
	if err != nil {
		return nil, fmt.Errorf("failed to get cell: %w", err)
	}
	if cell != nil {
		s.cache.Put(q, *cell)
	}

	return cell, nil
}

// ListCells returns one page of cells ordered by their natural key.
func (s *CellService) ListCells(filter models.CellFilter) (*models.CellsResponse, error) {
	limit := defaultPageSize
	if filter.Limit != nil {
		limit = *filter.Limit
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	// A cursor that fails to decode reads from the start.
	var cursor *models.CellCursor
	if c, ok := models.DecodeCursor(filter.Cursor); ok {
		cursor = &c
	}

	// Fetch one row past the page to learn whether more follow.
	cells, err := s.cellRepo.ListCells(filter, cursor, limit+1)
	if err != nil {
		return nil, fmt.Errorf("failed to list cells: %w", err)
	}

	hasMore := len(cells) > limit
	if hasMore {
		cells = cells[:limit]
	}
	if cells == nil {
		cells = []models.Cell{}
	}

	resp := &models.CellsResponse{
		Cells:   cells,
		HasMore: hasMore,
	}
	if hasMore {
		next := cells[len(cells)-1].Key().Encode()
		resp.NextCursor = &next
	}

	return resp, nil
}

// LookupCells resolves a batch of keys to their best known cells. The result
// aligns one to one with the request; unknown keys and keys past the attempt
// cap resolve to nil.
func (s *CellService) LookupCells(keys []models.LookupKey) ([]*models.Cell, error) {
	seen := make(map[models.LookupKey]struct{}, len(keys))
	attempt := make([]models.LookupKey, 0, MaxLookupKeys)
	for _, key := range keys {
		if len(attempt) == MaxLookupKeys {
			break
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		attempt = append(attempt, key)
	}

	rows, err := s.cellRepo.FindCellsByKeys(attempt)
	if err != nil {
		return nil, fmt.Errorf("failed to look up cells: %w", err)
	}

	best := make(map[models.LookupKey]*models.Cell, len(attempt))
	for i := range rows {
		row := &rows[i]
		key := row.LookupKey()
		if current, ok := best[key]; !ok || betterLookupCandidate(row, current) {
			best[key] = row
		}
	}

	results := make([]*models.Cell, len(keys))
	for i, key := range keys {
		results[i] = best[key]
	}

	return results, nil
}

// betterLookupCandidate reports whether a beats b when several radios share a
// key: more samples first, then the newer update, then the newer generation.
func betterLookupCandidate(a, b *models.Cell) bool {
	if a.Samples != b.Samples {
		return a.Samples > b.Samples
	}
	if !a.Updated.Equal(b.Updated.Time) {
		return a.Updated.After(b.Updated.Time)
	}
	return a.Radio.GenerationRank() > b.Radio.GenerationRank()
}
