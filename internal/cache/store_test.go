package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/gridiron-edge/internal/models"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(t *testing.T, clock *fakeClock, ttl, buffer time.Duration) *Store {
	t.Helper()
	return NewStore(StoreConfig{
		TTL:               ttl,
		HideStartedBuffer: buffer,
		SnapshotPath:      filepath.Join(t.TempDir(), "cache.json"),
		Keys:              []ResourceKey{ResourceCFBBets, ResourceNFLProps},
		Clock:             clock.Now,
	}, nil)
}

func payloadAt(gameTime time.Time) *models.BetList {
	return &models.BetList{
		Count: 1,
		Bets: []models.Bet{{
			ID:       "ev1-spread-Test-3.5",
			Type:     models.BetTypeSpread,
			Line:     "Test -3.5",
			GameTime: gameTime.Format(time.RFC3339),
		}},
	}
}

// TestGetServesHotEntryWithoutRefresh tests the TTL freshness boundary
func TestGetServesHotEntryWithoutRefresh(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)}
	store := newTestStore(t, clock, time.Minute, 0)

	var calls int32
	refresh := func(ctx context.Context) (*models.BetList, error) {
		atomic.AddInt32(&calls, 1)
		return payloadAt(clock.Now().Add(2 * time.Hour)), nil
	}

	_, err := store.Get(context.Background(), ResourceCFBBets, refresh)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	// Any read before T+TTL is served from memory
	clock.Advance(59 * time.Second)
	_, err = store.Get(context.Background(), ResourceCFBBets, refresh)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	// A read at T+TTL triggers a refresh
	clock.Advance(time.Second)
	_, err = store.Get(context.Background(), ResourceCFBBets, refresh)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

// TestGetFiltersStartedEvents tests read-time filtering with the buffer
func TestGetFiltersStartedEvents(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)}
	buffer := 10 * time.Minute
	store := newTestStore(t, clock, time.Hour, buffer)

	started := models.Bet{ID: "started", Type: models.BetTypeSpread, GameTime: clock.Now().Add(-time.Second).Format(time.RFC3339)}
	insideBuffer := models.Bet{ID: "soon", Type: models.BetTypeSpread, GameTime: clock.Now().Add(buffer).Format(time.RFC3339)}
	upcoming := models.Bet{ID: "upcoming", Type: models.BetTypeSpread, GameTime: clock.Now().Add(buffer + time.Second).Format(time.RFC3339)}

	refresh := func(ctx context.Context) (*models.BetList, error) {
		return &models.BetList{Count: 3, Bets: []models.Bet{started, insideBuffer, upcoming}}, nil
	}

	got, err := store.Get(context.Background(), ResourceCFBBets, refresh)
	require.NoError(t, err)
	require.Len(t, got.Bets, 1)
	assert.Equal(t, "upcoming", got.Bets[0].ID)
	assert.Equal(t, 1, got.Count)

	// The stored entry keeps all events so a later cutoff still applies
	clock.Advance(30 * time.Minute)
	got, err = store.Get(context.Background(), ResourceCFBBets, refresh)
	require.NoError(t, err)
	assert.Empty(t, got.Bets)
	assert.Equal(t, 0, got.Count)
}

// TestRefreshErrorsPropagate tests hard failure propagation
func TestRefreshErrorsPropagate(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)}
	store := newTestStore(t, clock, time.Minute, 0)

	refresh := func(ctx context.Context) (*models.BetList, error) {
		return nil, assert.AnError
	}

	_, err := store.Get(context.Background(), ResourceCFBBets, refresh)
	assert.ErrorIs(t, err, assert.AnError)

	// A failed refresh leaves the key cold
	status := store.Status()
	assert.False(t, status["cfb"].Hot)
	assert.Nil(t, status["cfb"].AgeSeconds)
}

// TestConcurrentColdReadsCoalesce tests the single-refresh invariant
func TestConcurrentColdReadsCoalesce(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)}
	store := newTestStore(t, clock, time.Hour, 0)

	var calls int32
	refresh := func(ctx context.Context) (*models.BetList, error) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(20 * time.Millisecond)
		return payloadAt(clock.Now().Add(2 * time.Hour)), nil
	}

	const readers = 16
	var wg sync.WaitGroup
	wg.Add(readers)
	for i := 0; i < readers; i++ {
		go func() {
			defer wg.Done()
			got, err := store.Get(context.Background(), ResourceCFBBets, refresh)
			assert.NoError(t, err)
			assert.Equal(t, 1, got.Count)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

// TestWarmStartAdoptsOnlyFreshEntries tests the boot-time TTL boundary
func TestWarmStartAdoptsOnlyFreshEntries(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)}
	ttl := time.Minute
	path := filepath.Join(t.TempDir(), "cache.json")

	snapshot := map[ResourceKey]Entry{
		// Half the TTL old: adopted
		ResourceCFBBets: {
			Data: payloadAt(clock.Now().Add(2 * time.Hour)),
			At:   clock.Now().Add(-ttl / 2),
		},
		// One millisecond past the TTL: treated as cold
		ResourceNFLProps: {
			Data: payloadAt(clock.Now().Add(2 * time.Hour)),
			At:   clock.Now().Add(-ttl - time.Millisecond),
		},
	}
	raw, err := json.Marshal(snapshot)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	store := NewStore(StoreConfig{
		TTL:          ttl,
		SnapshotPath: path,
		Keys:         []ResourceKey{ResourceCFBBets, ResourceNFLProps},
		Clock:        clock.Now,
	}, nil)
	store.WarmStart()

	status := store.Status()
	assert.True(t, status["cfb"].Hot)
	assert.False(t, status["nflProps"].Hot)

	// The warm key serves without an upstream call
	var calls int32
	_, err = store.Get(context.Background(), ResourceCFBBets, func(ctx context.Context) (*models.BetList, error) {
		atomic.AddInt32(&calls, 1)
		return nil, assert.AnError
	})
	require.NoError(t, err)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

// TestWarmStartSurvivesMissingAndMalformedSnapshots tests durable IO
// failures staying non-fatal
func TestWarmStartSurvivesMissingAndMalformedSnapshots(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)}

	store := newTestStore(t, clock, time.Minute, 0)
	store.WarmStart() // no file on disk
	assert.False(t, store.Status()["cfb"].Hot)

	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	store = NewStore(StoreConfig{
		TTL:          time.Minute,
		SnapshotPath: path,
		Keys:         []ResourceKey{ResourceCFBBets},
		Clock:        clock.Now,
	}, nil)
	store.WarmStart()
	assert.False(t, store.Status()["cfb"].Hot)
}

// TestRefreshPersistsSnapshot tests that a refresh writes the durable record
func TestRefreshPersistsSnapshot(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)}
	path := filepath.Join(t.TempDir(), "cache.json")
	store := NewStore(StoreConfig{
		TTL:          time.Minute,
		SnapshotPath: path,
		Keys:         []ResourceKey{ResourceCFBBets, ResourceNFLProps},
		Clock:        clock.Now,
	}, nil)

	_, err := store.Get(context.Background(), ResourceCFBBets, func(ctx context.Context) (*models.BetList, error) {
		return payloadAt(clock.Now().Add(2 * time.Hour)), nil
	})
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var snapshot map[ResourceKey]Entry
	require.NoError(t, json.Unmarshal(raw, &snapshot))
	require.Contains(t, snapshot, ResourceCFBBets)
	require.NotNil(t, snapshot[ResourceCFBBets].Data)
	assert.Equal(t, 1, snapshot[ResourceCFBBets].Data.Count)
	// All keys appear in the single durable record, cold ones included
	assert.Contains(t, snapshot, ResourceNFLProps)
}

// TestAbandonedCallerDoesNotCancelRefresh tests that a refresh runs to
// completion and updates the cache even when the initiating request goes
// away mid-flight
func TestAbandonedCallerDoesNotCancelRefresh(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)}
	store := newTestStore(t, clock, time.Hour, 0)

	ctx, cancel := context.WithCancel(context.Background())

	var calls int32
	refresh := func(ctx context.Context) (*models.BetList, error) {
		atomic.AddInt32(&calls, 1)
		// The caller walks away while the fetch is in flight
		cancel()
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return payloadAt(clock.Now().Add(2 * time.Hour)), nil
	}

	got, err := store.Get(ctx, ResourceCFBBets, refresh)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Count)
	assert.True(t, store.Status()["cfb"].Hot)

	// Subsequent readers reuse the completed refresh
	_, err = store.Get(context.Background(), ResourceCFBBets, refresh)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

// TestConcurrentRefreshesKeepSnapshotWhole tests that simultaneous
// refreshes of different keys leave one parseable durable record holding
// both
func TestConcurrentRefreshesKeepSnapshotWhole(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)}
	path := filepath.Join(t.TempDir(), "cache.json")
	store := NewStore(StoreConfig{
		TTL:          time.Minute,
		SnapshotPath: path,
		Keys:         []ResourceKey{ResourceCFBBets, ResourceNFLProps},
		Clock:        clock.Now,
	}, nil)

	refresh := func(ctx context.Context) (*models.BetList, error) {
		time.Sleep(5 * time.Millisecond)
		return payloadAt(clock.Now().Add(2 * time.Hour)), nil
	}

	var wg sync.WaitGroup
	for _, key := range []ResourceKey{ResourceCFBBets, ResourceNFLProps} {
		wg.Add(1)
		go func(key ResourceKey) {
			defer wg.Done()
			_, err := store.Get(context.Background(), key, refresh)
			assert.NoError(t, err)
		}(key)
	}
	wg.Wait()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var snapshot map[ResourceKey]Entry
	require.NoError(t, json.Unmarshal(raw, &snapshot))
	require.NotNil(t, snapshot[ResourceCFBBets].Data)
	require.NotNil(t, snapshot[ResourceNFLProps].Data)

	// The temp file never outlives a successful write
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}
