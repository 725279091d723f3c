package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jstittsworth/streamer-hq/internal/nfl"
)

// ErrSnapshotNotFound is returned when no snapshot exists for a (week, mode).
var ErrSnapshotNotFound = errors.New("snapshot not found")

// SnapshotStore persists the latest scored snapshot per (week, mode).
type SnapshotStore interface {
	Load(ctx context.Context, week int, mode string) (*nfl.Snapshot, error)
	Save(ctx context.Context, snap *nfl.Snapshot) error
	List(ctx context.Context) ([]nfl.Snapshot, error)
}

const snapshotKeyPrefix = "streamer:snapshot:"

func snapshotKey(week int, mode string) string {
	return fmt.Sprintf("%s%d:%s", snapshotKeyPrefix, week, mode)
}

// RedisSnapshotStore keeps snapshots in redis with no expiry: a stale
// snapshot is still the best answer when every feed is down, so eviction is
// explicit, never TTL-driven.
type RedisSnapshotStore struct {
	cache *CacheService
}

// NewRedisSnapshotStore wraps the shared cache service.
func NewRedisSnapshotStore(cache *CacheService) *RedisSnapshotStore {
	return &RedisSnapshotStore{cache: cache}
}

func (s *RedisSnapshotStore) Load(ctx context.Context, week int, mode string) (*nfl.Snapshot, error) {
	var snap nfl.Snapshot
	err := s.cache.Get(ctx, snapshotKey(week, mode), &snap)
	if errors.Is(err, ErrCacheMiss) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func (s *RedisSnapshotStore) Save(ctx context.Context, snap *nfl.Snapshot) error {
	return s.cache.Set(ctx, snapshotKey(snap.Week, snap.Mode), snap, 0)
}

func (s *RedisSnapshotStore) List(ctx context.Context) ([]nfl.Snapshot, error) {
	keys, err := s.cache.Keys(ctx, snapshotKeyPrefix+"*")
	if err != nil {
		return nil, err
	}
	snaps := make([]nfl.Snapshot, 0, len(keys))
	for _, key := range keys {
		var snap nfl.Snapshot
		if err := s.cache.Get(ctx, key, &snap); err != nil {
			continue
		}
		snaps = append(snaps, snap)
	}
	sortSnapshots(snaps)
	return snaps, nil
}

// MemorySnapshotStore is the redis-less fallback for development and tests.
type MemorySnapshotStore struct {
	mu    sync.RWMutex
	snaps map[string]*nfl.Snapshot
}

// NewMemorySnapshotStore creates an empty in-process store.
func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{snaps: make(map[string]*nfl.Snapshot)}
}

func (s *MemorySnapshotStore) Load(_ context.Context, week int, mode string) (*nfl.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snaps[snapshotKey(week, mode)]
	if !ok {
		return nil, ErrSnapshotNotFound
	}
	copied := *snap
	return &copied, nil
}

func (s *MemorySnapshotStore) Save(_ context.Context, snap *nfl.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *snap
	s.snaps[snapshotKey(snap.Week, snap.Mode)] = &copied
	return nil
}

func (s *MemorySnapshotStore) List(_ context.Context) ([]nfl.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snaps := make([]nfl.Snapshot, 0, len(s.snaps))
	for _, snap := range s.snaps {
		snaps = append(snaps, *snap)
	}
	sortSnapshots(snaps)
	return snaps, nil
}

func sortSnapshots(snaps []nfl.Snapshot) {
	sort.SliceStable(snaps, func(i, j int) bool {
		if snaps[i].Week != snaps[j].Week {
			return snaps[i].Week > snaps[j].Week
		}
		return strings.Compare(snaps[i].Mode, snaps[j].Mode) < 0
	})
}

// SnapshotState classifies a cached snapshot's freshness.
type SnapshotState string

const (
	SnapshotEmpty SnapshotState = "empty"
	SnapshotFresh SnapshotState = "fresh"
	SnapshotStale SnapshotState = "stale"
)

// StateOf classifies snap against the TTL at the given instant.
func StateOf(snap *nfl.Snapshot, ttl time.Duration, now time.Time) SnapshotState {
	if snap == nil {
		return SnapshotEmpty
	}
	if now.Sub(snap.FetchedAt) > ttl {
		return SnapshotStale
	}
	return SnapshotFresh
}
