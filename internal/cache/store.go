// Package cache provides the per-resource TTL cache that guards the odds
// pipeline: memory-backed entries with disk snapshot persistence, boot-time
// warm-start, read-time filtering of started events, and per-key refresh
// coalescing.
package cache

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/gridiron-edge/internal/metrics"
	"github.com/yourusername/gridiron-edge/internal/models"
)

// ResourceKey identifies one cached pipeline result set.
type ResourceKey string

const (
	ResourceCFBBets  ResourceKey = "cfb"
	ResourceNFLProps ResourceKey = "nflProps"
)

// Entry pairs a payload with the time it was produced. The stored payload
// always keeps all events; started-event filtering happens per read so a
// later "now" cutoff still applies correctly.
type Entry struct {
	Data *models.BetList `json:"data"`
	At   time.Time       `json:"at"`
}

// RefreshFunc runs the full pipeline for one resource key and returns the
// fresh payload.
type RefreshFunc func(ctx context.Context) (*models.BetList, error)

// StoreConfig holds configuration for the cache store.
type StoreConfig struct {
	TTL               time.Duration
	HideStartedBuffer time.Duration
	SnapshotPath      string
	Keys              []ResourceKey
	Clock             func() time.Time // nil means time.Now
}

// Store owns every cache entry; the refresh path is its only writer. At
// most one refresh per resource key is in flight at a time: readers that
// observe a stale entry queue on the key's guard and adopt the winner's
// result instead of fetching again.
type Store struct {
	entries      *gocache.Cache
	ttl          time.Duration
	buffer       time.Duration
	snapshotPath string
	keys         []ResourceKey
	guardMu      sync.Mutex
	guards       map[ResourceKey]*sync.Mutex
	persistMu    sync.Mutex
	logger       *logrus.Logger
	now          func() time.Time
}

// NewStore creates a cache store. Entries never expire inside the backing
// cache; staleness is judged against each entry's own timestamp so stale
// payloads remain available to the refresh decision.
func NewStore(cfg StoreConfig, logger *logrus.Logger) *Store {
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}

	guards := make(map[ResourceKey]*sync.Mutex, len(cfg.Keys))
	for _, key := range cfg.Keys {
		guards[key] = &sync.Mutex{}
	}

	return &Store{
		entries:      gocache.New(gocache.NoExpiration, 0),
		ttl:          cfg.TTL,
		buffer:       cfg.HideStartedBuffer,
		snapshotPath: cfg.SnapshotPath,
		keys:         cfg.Keys,
		guards:       guards,
		logger:       logger,
		now:          now,
	}
}

// Get returns a fresh, filtered payload for key, refreshing through fn when
// the entry is cold or stale. Concurrent readers of a cold key coalesce
// onto a single refresh.
func (s *Store) Get(ctx context.Context, key ResourceKey, fn RefreshFunc) (*models.BetList, error) {
	if entry, ok := s.lookup(key); ok && s.fresh(entry) {
		metrics.CacheReadsTotal.WithLabelValues(string(key), "hit").Inc()
		return s.filtered(entry.Data), nil
	}
	metrics.CacheReadsTotal.WithLabelValues(string(key), "miss").Inc()

	guard := s.guard(key)
	guard.Lock()
	defer guard.Unlock()

	// A queued reader may find the entry already refreshed by the guard
	// winner; reuse it instead of fetching again.
	if entry, ok := s.lookup(key); ok && s.fresh(entry) {
		return s.filtered(entry.Data), nil
	}

	// A refresh outlives its initiating request: a caller abandoning its
	// HTTP request must not cancel the in-flight fetch, which still
	// completes and stores its result for the readers queued on the guard.
	refreshCtx := context.WithoutCancel(ctx)

	start := s.now()
	payload, err := fn(refreshCtx)
	if err != nil {
		return nil, err
	}
	metrics.RefreshesTotal.WithLabelValues(string(key)).Inc()
	metrics.RefreshDuration.WithLabelValues(string(key)).Observe(s.now().Sub(start).Seconds())
	metrics.GradedBets.WithLabelValues(string(key)).Set(float64(payload.Count))

	s.entries.Set(string(key), Entry{Data: payload, At: s.now()}, gocache.NoExpiration)
	s.persist()

	return s.filtered(payload), nil
}

// Status reports per-key hotness and age for the health endpoint. Age is
// nil for cold keys.
func (s *Store) Status() map[string]KeyStatus {
	out := make(map[string]KeyStatus, len(s.keys))
	for _, key := range s.keys {
		status := KeyStatus{}
		if entry, ok := s.lookup(key); ok && entry.Data != nil {
			age := int(s.now().Sub(entry.At).Round(time.Second).Seconds())
			status.Hot = s.fresh(entry)
			status.AgeSeconds = &age
		}
		out[string(key)] = status
	}
	return out
}

// KeyStatus is one resource key's health view.
type KeyStatus struct {
	Hot        bool `json:"hot"`
	AgeSeconds *int `json:"ageSeconds"`
}

// TTL returns the configured time-to-live.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

func (s *Store) lookup(key ResourceKey) (Entry, bool) {
	raw, ok := s.entries.Get(string(key))
	if !ok {
		return Entry{}, false
	}
	entry, ok := raw.(Entry)
	if !ok || entry.Data == nil {
		return Entry{}, false
	}
	return entry, true
}

func (s *Store) fresh(entry Entry) bool {
	return s.now().Sub(entry.At) < s.ttl
}

func (s *Store) guard(key ResourceKey) *sync.Mutex {
	s.guardMu.Lock()
	defer s.guardMu.Unlock()
	if m, ok := s.guards[key]; ok {
		return m
	}
	m := &sync.Mutex{}
	s.guards[key] = m
	return m
}

// filtered returns a copy of the payload without bets whose event start
// time has passed the cutoff, with the count recomputed. The stored entry
// is never mutated.
func (s *Store) filtered(payload *models.BetList) *models.BetList {
	cutoff := s.now().Add(s.buffer)

	bets := make([]models.Bet, 0, len(payload.Bets))
	for _, bet := range payload.Bets {
		start, err := time.Parse(time.RFC3339, bet.GameTime)
		if err != nil {
			continue
		}
		if start.After(cutoff) {
			bets = append(bets, bet)
		}
	}

	return &models.BetList{
		Count:   len(bets),
		Bets:    bets,
		Warning: payload.Warning,
	}
}
