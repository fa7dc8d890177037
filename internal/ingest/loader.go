package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/racemap/cell-service-go/internal/cache"
	"github.com/racemap/cell-service-go/internal/models"
	"github.com/racemap/cell-service-go/internal/repository"
	"github.com/racemap/cell-service-go/internal/spatial"
)

const csvColumns = 14

// Loader bulk-loads snapshot CSV files into the cell table.
type Loader struct {
	cellRepo *repository.CellRepository
	cache    *cache.LookupCache
}

// NewLoader creates a new loader. The cache may be nil; when present it is
// cleared after every successful load so stale lookups do not outlive an
// import.
func NewLoader(cellRepo *repository.CellRepository, cache *cache.LookupCache) *Loader {
	return &Loader{
		cellRepo: cellRepo,
		cache:    cache,
	}
}

// Load replace-upserts every row of the snapshot file at path and returns
// how many rows were written. The whole file loads in one transaction; a
// failure on any line leaves the table untouched.
func (l *Loader) Load(path string) (int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = csvColumns
	reader.ReuseRecord = true

	// The first line is the column header.
	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return 0, nil
		}
		return 0, &LoadError{Line: 1, Err: err}
	}

	replacer, err := l.cellRepo.NewBulkReplacer()
	if err != nil {
		return 0, fmt.Errorf("failed to begin bulk load: %w", err)
	}

	var written, badCoords int64
	line := int64(1)
	for {
		line++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			replacer.Rollback()
			return 0, &LoadError{Line: line, Err: err}
		}

		cell, err := parseCellRecord(record)
		if err != nil {
			replacer.Rollback()
			return 0, &LoadError{Line: line, Err: err}
		}
		if !spatial.ValidLatLng(float64(cell.Lat), float64(cell.Lon)) {
			badCoords++
		}

		if err := replacer.Write(cell); err != nil {
			replacer.Rollback()
			return 0, &LoadError{Line: line, Err: err}
		}
		written++
	}

	if err := replacer.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit bulk load: %w", err)
	}

	if badCoords > 0 {
		slog.Warn("snapshot contains out-of-range coordinates", "rows", badCoords)
	}

	l.cache.Clear()
	return written, nil
}

func parseCellRecord(record []string) (*models.Cell, error) {
	radio, ok := models.ParseRadio(record[0])
	if !ok {
		return nil, fmt.Errorf("unknown radio %q", record[0])
	}
	mcc, err := strconv.ParseUint(record[1], 10, 16)
	if err != nil {
		return nil, fmt.Errorf("invalid mcc %q", record[1])
	}
	net, err := strconv.ParseUint(record[2], 10, 16)
	if err != nil {
		return nil, fmt.Errorf("invalid net %q", record[2])
	}
	area, err := strconv.ParseUint(record[3], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid area %q", record[3])
	}
	cid, err := strconv.ParseUint(record[4], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid cell %q", record[4])
	}

	cell := &models.Cell{
		Radio: radio,
		MCC:   uint16(mcc),
		Net:   uint16(net),
		Area:  uint32(area),
		Cell:  cid,
	}

	// Both "" and the -1 sentinel mean the unit is unknown.
	if record[5] != "" && record[5] != "-1" {
		unit, err := strconv.ParseUint(record[5], 10, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid unit %q", record[5])
		}
		u := uint16(unit)
		cell.Unit = &u
	}

	lon, err := strconv.ParseFloat(record[6], 32)
	if err != nil {
		return nil, fmt.Errorf("invalid lon %q", record[6])
	}
	cell.Lon = float32(lon)
	lat, err := strconv.ParseFloat(record[7], 32)
	if err != nil {
		return nil, fmt.Errorf("invalid lat %q", record[7])
	}
	cell.Lat = float32(lat)

	cellRange, err := strconv.ParseUint(record[8], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid range %q", record[8])
	}
	cell.Range = uint32(cellRange)
	samples, err := strconv.ParseUint(record[9], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid samples %q", record[9])
	}
	cell.Samples = uint32(samples)

	switch record[10] {
	case "1":
		cell.Changeable = true
	case "0":
		cell.Changeable = false
	default:
		return nil, fmt.Errorf("invalid changeable %q", record[10])
	}

	created, err := strconv.ParseInt(record[11], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid created %q", record[11])
	}
	cell.Created = models.NewUnixTime(time.Unix(created, 0))
	updated, err := strconv.ParseInt(record[12], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid updated %q", record[12])
	}
	cell.Updated = models.NewUnixTime(time.Unix(updated, 0))

	if record[13] != "" {
		signal, err := strconv.ParseInt(record[13], 10, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid averageSignal %q", record[13])
		}
		s := int16(signal)
		cell.AverageSignal = &s
	}

	return cell, nil
}
