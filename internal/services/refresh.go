package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/streamer-hq/internal/nfl"
)

// ScoringRunner executes one full scoring pass. Satisfied by the engine.
type ScoringRunner interface {
	Run(ctx context.Context, week int, mode string) (*nfl.Snapshot, error)
}

// RefreshNotifier is told about every successfully stored snapshot.
// Satisfied by the websocket hub.
type RefreshNotifier interface {
	NotifyRefresh(snap *nfl.Snapshot)
}

// RefreshRecorder persists an audit row per scoring run. Optional.
type RefreshRecorder interface {
	RecordRefresh(ctx context.Context, snap *nfl.Snapshot, trigger string, took time.Duration, runErr error)
}

// RefreshController owns the read path for snapshots: it decides when the
// cached snapshot is good enough and when a live scoring run is required,
// and it serves stale data rather than nothing when a forced run fails.
type RefreshController struct {
	store    SnapshotStore
	runner   ScoringRunner
	notifier RefreshNotifier
	recorder RefreshRecorder
	logger   *logrus.Logger
	ttl      time.Duration

	// mu serializes scoring runs per (week, mode) so a burst of requests on
	// an empty cache triggers one run, not one per request.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewRefreshController builds the snapshot read path. notifier and recorder
// may be nil.
func NewRefreshController(store SnapshotStore, runner ScoringRunner, ttl time.Duration, logger *logrus.Logger) *RefreshController {
	return &RefreshController{
		store:  store,
		runner: runner,
		logger: logger,
		ttl:    ttl,
		locks:  make(map[string]*sync.Mutex),
	}
}

// SetNotifier attaches a refresh notifier.
func (c *RefreshController) SetNotifier(n RefreshNotifier) { c.notifier = n }

// SetRecorder attaches a refresh audit recorder.
func (c *RefreshController) SetRecorder(r RefreshRecorder) { c.recorder = r }

// Get returns the snapshot for (week, mode), refreshing when the cache is
// empty, stale, or force is set.
//
// Decision table:
//   - empty:        run; on failure the run error propagates.
//   - fresh, !force: serve cached.
//   - stale or force: run; on failure serve the prior snapshot marked
//     degraded rather than failing the request.
func (c *RefreshController) Get(ctx context.Context, week int, mode string, force bool) (*nfl.Snapshot, error) {
	mode = nfl.ParseMode(mode)

	cached, err := c.store.Load(ctx, week, mode)
	if err != nil && err != ErrSnapshotNotFound {
		c.logger.WithField("component", "refresh").WithError(err).Warn("Snapshot store read failed, treating as empty")
		cached = nil
	}

	state := StateOf(cached, c.ttl, time.Now().UTC())
	if state == SnapshotFresh && !force {
		return cached, nil
	}

	lock := c.lockFor(week, mode)
	lock.Lock()
	defer lock.Unlock()

	// Another request may have refreshed while we waited on the lock.
	if !force {
		if again, err := c.store.Load(ctx, week, mode); err == nil {
			if StateOf(again, c.ttl, time.Now().UTC()) == SnapshotFresh {
				return again, nil
			}
			cached = again
		}
	}

	trigger := "stale"
	if force {
		trigger = "force"
	} else if cached == nil {
		trigger = "empty"
	}

	fresh, err := c.refresh(ctx, week, mode, trigger)
	if err != nil {
		if cached != nil {
			c.logger.WithFields(logrus.Fields{
				"component": "refresh",
				"week":      week,
				"mode":      mode,
			}).WithError(err).Warn("Refresh failed, serving prior snapshot degraded")
			degraded := *cached
			degraded.Degraded = true
			return &degraded, nil
		}
		return nil, fmt.Errorf("refresh week %d %s: %w", week, mode, err)
	}
	return fresh, nil
}

// Refresh forces one scoring run and stores the result. Used by the cron
// endpoint and the scheduler.
func (c *RefreshController) Refresh(ctx context.Context, week int, mode string, trigger string) (*nfl.Snapshot, error) {
	mode = nfl.ParseMode(mode)
	lock := c.lockFor(week, mode)
	lock.Lock()
	defer lock.Unlock()
	return c.refresh(ctx, week, mode, trigger)
}

func (c *RefreshController) refresh(ctx context.Context, week int, mode, trigger string) (*nfl.Snapshot, error) {
	start := time.Now()
	snap, err := c.runner.Run(ctx, week, mode)
	if c.recorder != nil {
		c.recorder.RecordRefresh(ctx, snap, trigger, time.Since(start), err)
	}
	if err != nil {
		return nil, err
	}

	if err := c.store.Save(ctx, snap); err != nil {
		// The run succeeded; a broken store should not hide the result.
		c.logger.WithField("component", "refresh").WithError(err).Error("Failed to persist snapshot")
	}
	if c.notifier != nil {
		c.notifier.NotifyRefresh(snap)
	}
	return snap, nil
}

func (c *RefreshController) lockFor(week int, mode string) *sync.Mutex {
	key := snapshotKey(week, mode)
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.locks[key]; !ok {
		c.locks[key] = &sync.Mutex{}
	}
	return c.locks[key]
}
