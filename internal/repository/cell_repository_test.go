package repository

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/racemap/cell-service-go/internal/database"
	"github.com/racemap/cell-service-go/internal/models"
)

func newTestRepo(t *testing.T) (*CellRepository, *sql.DB) {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "cells.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))

	return NewCellRepository(db), db
}

func testCell(radio models.Radio, mcc, net uint16, area uint32, cell uint64) models.Cell {
	return models.Cell{
		Radio:      radio,
		MCC:        mcc,
		Net:        net,
		Area:       area,
		Cell:       cell,
		Lon:        13.405,
		Lat:        52.52,
		Range:      1000,
		Samples:    7,
		Changeable: true,
		Created:    models.NewUnixTime(time.Unix(1282569574, 0)),
		Updated:    models.NewUnixTime(time.Unix(1300000000, 0)),
	}
}

func seedCells(t *testing.T, repo *CellRepository, cells ...models.Cell) {
	t.Helper()

	replacer, err := repo.NewBulkReplacer()
	require.NoError(t, err)
	for i := range cells {
		require.NoError(t, replacer.Write(&cells[i]))
	}
	require.NoError(t, replacer.Commit())
}

func TestFindCell(t *testing.T) {
	repo, _ := newTestRepo(t)

	unit := uint16(3)
	signal := int16(-97)
	seeded := testCell(models.RadioGSM, 262, 2, 801, 56989)
	seeded.Unit = &unit
	seeded.AverageSignal = &signal
	seedCells(t, repo, seeded)

	found, err := repo.FindCell(models.CellQuery{MCC: 262, Net: 2, Area: 801, Cell: 56989})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, seeded, *found)

	missing, err := repo.FindCell(models.CellQuery{MCC: 262, Net: 2, Area: 801, Cell: 1})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestFindCellRadioFilter(t *testing.T) {
	repo, _ := newTestRepo(t)
	seedCells(t, repo,
		testCell(models.RadioGSM, 262, 2, 801, 56989),
		testCell(models.RadioLTE, 262, 2, 801, 56989),
	)

	radio := models.RadioLTE
	found, err := repo.FindCell(models.CellQuery{MCC: 262, Net: 2, Area: 801, Cell: 56989, Radio: &radio})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, models.RadioLTE, found.Radio)

	radio = models.RadioUMTS
	missing, err := repo.FindCell(models.CellQuery{MCC: 262, Net: 2, Area: 801, Cell: 56989, Radio: &radio})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestFindCellWithoutRadioPrefersStrongest(t *testing.T) {
	t.Run("more samples win", func(t *testing.T) {
		repo, _ := newTestRepo(t)
		weak := testCell(models.RadioLTE, 262, 2, 801, 1)
		weak.Samples = 10
		strong := testCell(models.RadioGSM, 262, 2, 801, 1)
		strong.Samples = 20
		seedCells(t, repo, weak, strong)

		found, err := repo.FindCell(models.CellQuery{MCC: 262, Net: 2, Area: 801, Cell: 1})
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, models.RadioGSM, found.Radio)
	})

	t.Run("newer update wins on equal samples", func(t *testing.T) {
		repo, _ := newTestRepo(t)
		old := testCell(models.RadioNR, 262, 2, 801, 1)
		old.Updated = models.NewUnixTime(time.Unix(1300000000, 0))
		fresh := testCell(models.RadioUMTS, 262, 2, 801, 1)
		fresh.Updated = models.NewUnixTime(time.Unix(1400000000, 0))
		seedCells(t, repo, old, fresh)

		found, err := repo.FindCell(models.CellQuery{MCC: 262, Net: 2, Area: 801, Cell: 1})
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, models.RadioUMTS, found.Radio)
	})

	t.Run("newer generation wins on full tie", func(t *testing.T) {
		repo, _ := newTestRepo(t)
		seedCells(t, repo,
			testCell(models.RadioGSM, 262, 2, 801, 1),
			testCell(models.RadioNR, 262, 2, 801, 1),
			testCell(models.RadioLTE, 262, 2, 801, 1),
		)

		found, err := repo.FindCell(models.CellQuery{MCC: 262, Net: 2, Area: 801, Cell: 1})
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, models.RadioNR, found.Radio)
	})
}

func TestBulkReplaceByNaturalKey(t *testing.T) {
	repo, db := newTestRepo(t)

	first := testCell(models.RadioGSM, 262, 2, 801, 56989)
	first.Samples = 5
	seedCells(t, repo, first)

	second := first
	second.Samples = 50
	second.Lat = 48.13
	seedCells(t, repo, second)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM cells").Scan(&count))
	assert.Equal(t, 1, count)

	found, err := repo.FindCell(models.CellQuery{MCC: 262, Net: 2, Area: 801, Cell: 56989})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, uint32(50), found.Samples)
	assert.InDelta(t, 48.13, float64(found.Lat), 0.0001)
}

func TestBulkReplacerRollback(t *testing.T) {
	repo, db := newTestRepo(t)

	replacer, err := repo.NewBulkReplacer()
	require.NoError(t, err)
	cell := testCell(models.RadioGSM, 262, 2, 801, 56989)
	require.NoError(t, replacer.Write(&cell))
	require.NoError(t, replacer.Rollback())

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM cells").Scan(&count))
	assert.Equal(t, 0, count)
}

func TestRadioStoredLowercase(t *testing.T) {
	repo, db := newTestRepo(t)
	seedCells(t, repo, testCell(models.RadioNR, 262, 2, 801, 1))

	var stored string
	require.NoError(t, db.QueryRow("SELECT radio FROM cells").Scan(&stored))
	assert.Equal(t, "nr", stored)
}

func TestListCellsOrdersByCompositeKey(t *testing.T) {
	repo, _ := newTestRepo(t)
	seedCells(t, repo,
		testCell(models.RadioNR, 1, 1, 1, 1),
		testCell(models.RadioCDMA, 310, 1, 1, 1),
		testCell(models.RadioGSM, 500, 1, 1, 1),
		testCell(models.RadioLTE, 1, 1, 1, 1),
		testCell(models.RadioUMTS, 262, 1, 1, 1),
	)

	cells, err := repo.ListCells(models.CellFilter{}, nil, 10)
	require.NoError(t, err)
	require.Len(t, cells, 5)

	// Radio-major in declaration order, not alphabetical.
	radios := []models.Radio{}
	for _, c := range cells {
		radios = append(radios, c.Radio)
	}
	assert.Equal(t, []models.Radio{
		models.RadioGSM, models.RadioUMTS, models.RadioCDMA, models.RadioLTE, models.RadioNR,
	}, radios)
}

func TestListCellsCursorSeek(t *testing.T) {
	repo, _ := newTestRepo(t)
	seedCells(t, repo,
		testCell(models.RadioGSM, 262, 1, 1, 1),
		testCell(models.RadioGSM, 262, 1, 1, 2),
		testCell(models.RadioGSM, 262, 2, 1, 1),
		testCell(models.RadioUMTS, 262, 1, 1, 1),
		testCell(models.RadioLTE, 100, 1, 1, 1),
	)

	cursor := &models.CellCursor{Radio: models.RadioGSM, MCC: 262, Net: 1, Area: 1, Cell: 2}
	cells, err := repo.ListCells(models.CellFilter{}, cursor, 10)
	require.NoError(t, err)
	require.Len(t, cells, 3)

	// Strictly after the cursor key: the cursor row itself is excluded.
	assert.Equal(t, uint16(262), cells[0].MCC)
	assert.Equal(t, uint16(2), cells[0].Net)
	assert.Equal(t, models.RadioUMTS, cells[1].Radio)
	assert.Equal(t, models.RadioLTE, cells[2].Radio)
}

func TestListCellsFilters(t *testing.T) {
	repo, _ := newTestRepo(t)

	berlin := testCell(models.RadioGSM, 262, 2, 801, 1)
	berlin.Lat, berlin.Lon = 52.52, 13.405
	munich := testCell(models.RadioGSM, 262, 3, 802, 2)
	munich.Lat, munich.Lon = 48.137, 11.575
	usa := testCell(models.RadioLTE, 310, 410, 10, 3)
	usa.Lat, usa.Lon = 40.71, -74.0
	seedCells(t, repo, berlin, munich, usa)

	mcc := uint16(262)
	cells, err := repo.ListCells(models.CellFilter{MCC: &mcc}, nil, 10)
	require.NoError(t, err)
	assert.Len(t, cells, 2)

	mnc := uint16(3)
	cells, err = repo.ListCells(models.CellFilter{MCC: &mcc, MNC: &mnc}, nil, 10)
	require.NoError(t, err)
	require.Len(t, cells, 1)
	assert.Equal(t, uint64(2), cells[0].Cell)

	radio := models.RadioLTE
	cells, err = repo.ListCells(models.CellFilter{Radio: &radio}, nil, 10)
	require.NoError(t, err)
	require.Len(t, cells, 1)
	assert.Equal(t, uint16(310), cells[0].MCC)

	minLat, maxLat := float32(50.0), float32(55.0)
	minLon, maxLon := float32(10.0), float32(15.0)
	cells, err = repo.ListCells(models.CellFilter{
		MinLat: &minLat, MaxLat: &maxLat, MinLon: &minLon, MaxLon: &maxLon,
	}, nil, 10)
	require.NoError(t, err)
	require.Len(t, cells, 1)
	assert.Equal(t, uint64(1), cells[0].Cell)
}

func TestListCellsFetchLimit(t *testing.T) {
	repo, _ := newTestRepo(t)
	seedCells(t, repo,
		testCell(models.RadioGSM, 262, 1, 1, 1),
		testCell(models.RadioGSM, 262, 1, 1, 2),
		testCell(models.RadioGSM, 262, 1, 1, 3),
	)

	cells, err := repo.ListCells(models.CellFilter{}, nil, 2)
	require.NoError(t, err)
	assert.Len(t, cells, 2)
}

func TestFindCellsByKeys(t *testing.T) {
	repo, _ := newTestRepo(t)
	seedCells(t, repo,
		testCell(models.RadioGSM, 262, 2, 801, 1),
		testCell(models.RadioLTE, 262, 2, 801, 1),
		testCell(models.RadioGSM, 310, 410, 5, 7),
	)

	cells, err := repo.FindCellsByKeys([]models.LookupKey{
		{MCC: 262, MNC: 2, LAC: 801, CID: 1},
		{MCC: 310, MNC: 410, LAC: 5, CID: 7},
		{MCC: 999, MNC: 1, LAC: 1, CID: 1},
	})
	require.NoError(t, err)
	assert.Len(t, cells, 3)

	none, err := repo.FindCellsByKeys(nil)
	require.NoError(t, err)
	assert.Nil(t, none)
}
