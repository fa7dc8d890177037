package ingest

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/racemap/cell-service-go/internal/config"
	"github.com/racemap/cell-service-go/internal/models"
	"github.com/racemap/cell-service-go/internal/repository"
)

const (
	tickInterval    = time.Second
	checkEveryTicks = 600
)

// Updater keeps the cell table current by downloading provider snapshots on
// a schedule and loading them into the store.
type Updater struct {
	cfg        *config.Config
	updateRepo *repository.UpdateRepository
	fetcher    *Fetcher
	loader     *Loader

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewUpdater creates a new updater.
func NewUpdater(cfg *config.Config, updateRepo *repository.UpdateRepository, fetcher *Fetcher, loader *Loader) *Updater {
	return &Updater{
		cfg:        cfg,
		updateRepo: updateRepo,
		fetcher:    fetcher,
		loader:     loader,
	}
}

// Start launches the background update loop.
func (u *Updater) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	u.cancel = cancel

	u.wg.Add(1)
	go u.run(ctx)
}

// Stop halts the loop and waits for it to exit. An in-flight update cycle
// completes before Stop returns.
func (u *Updater) Stop() {
	if u.cancel == nil {
		return
	}
	u.cancel()
	u.wg.Wait()
}

func (u *Updater) run(ctx context.Context) {
	defer u.wg.Done()

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	// The first check runs immediately so a stale database catches up on
	// boot instead of waiting out a full check interval.
	u.check(time.Now())

	ticks := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ticks++
			if ticks < checkEveryTicks {
				continue
			}
			ticks = 0
			u.check(time.Now())
		}
	}
}

func (u *Updater) check(now time.Time) {
	last, err := u.updateRepo.GetLatestUpdate()
	if err != nil {
		slog.Error("failed to read update state", "error", err)
		return
	}

	kind := DetermineUpdateKind(last, now)
	if kind == models.UpdateNone {
		return
	}

	if err := u.runCycle(kind, now); err != nil {
		slog.Error("update cycle failed", "kind", kind.String(), "error", err)
	}
}

func (u *Updater) runCycle(kind models.UpdateKind, now time.Time) error {
	slog.Info("starting update", "kind", kind.String())

	var url string
	switch kind {
	case models.UpdateFull:
		url = FullPackageURL(u.cfg.DownloadSourceURL, u.cfg.DownloadSourceToken)
	case models.UpdateDiff:
		url = DiffPackageURL(u.cfg.DownloadSourceURL, u.cfg.DownloadSourceToken, now)
	}

	// Shutdown waits for an in-flight cycle instead of interrupting it.
	path, err := u.fetcher.Fetch(context.Background(), url)
	if err != nil {
		// The provider rations full snapshots, so a refused download is
		// routine. The day stays unmarked and the next check tries again.
		if kind == models.UpdateFull {
			slog.Warn("full snapshot download failed", "error", err)
			return nil
		}
		return err
	}
	defer os.Remove(path)

	written, err := u.loader.Load(path)
	if err != nil {
		return err
	}

	if err := u.updateRepo.SetLastUpdate(kind, now); err != nil {
		return err
	}

	slog.Info("update complete", "kind", kind.String(), "cells", written)
	return nil
}
