package cache

import (
	"time"

	"github.com/maypok86/otter/v2"

	"github.com/racemap/cell-service-go/internal/models"
)

// lookupKey identifies one cached lookup. Queries with and without a radio
// constraint cache under distinct keys.
type lookupKey struct {
	mcc      uint16
	net      uint16
	area     uint32
	cell     uint64
	radio    models.Radio
	hasRadio bool
}

func keyFor(q models.CellQuery) lookupKey {
	k := lookupKey{mcc: q.MCC, net: q.Net, area: q.Area, cell: q.Cell}
	if q.Radio != nil {
		k.radio = *q.Radio
		k.hasRadio = true
	}
	return k
}

// LookupCache holds recent single-cell lookup results in memory. A nil
// *LookupCache is valid and disables caching.
type LookupCache struct {
	cells *otter.Cache[lookupKey, models.Cell]
}

// New creates a cache holding up to capacity entries, each expiring ttl
// after it was written. Returns nil when capacity < 1.
func New(capacity int, ttl time.Duration) *LookupCache {
	if capacity < 1 {
		return nil
	}

	cells := otter.Must(&otter.Options[lookupKey, models.Cell]{
		MaximumSize:      capacity,
		ExpiryCalculator: otter.ExpiryWriting[lookupKey, models.Cell](ttl),
	})

	return &LookupCache{cells: cells}
}

// Get returns the cached result for a query, if present.
func (c *LookupCache) Get(q models.CellQuery) (*models.Cell, bool) {
	if c == nil {
		return nil, false
	}

	cell, ok := c.cells.GetIfPresent(keyFor(q))
	if !ok {
		return nil, false
	}
	return &cell, true
}

// Put stores a lookup result.
func (c *LookupCache) Put(q models.CellQuery, cell models.Cell) {
	if c == nil {
		return
	}
	c.cells.Set(keyFor(q), cell)
}

// Clear drops every entry. Called after an import replaces the cell data.
func (c *LookupCache) Clear() {
	if c == nil {
		return
	}
	c.cells.InvalidateAll()
}
