package scheduler

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/gridiron-edge/internal/cache"
	"github.com/yourusername/gridiron-edge/internal/models"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testStore(t *testing.T) *cache.Store {
	t.Helper()
	return cache.NewStore(cache.StoreConfig{
		TTL:          time.Minute,
		SnapshotPath: filepath.Join(t.TempDir(), "cache.json"),
		Keys:         []cache.ResourceKey{cache.ResourceCFBBets},
	}, quietLogger())
}

func TestScheduleRewarmRejectsBadExpression(t *testing.T) {
	s := New(testStore(t), nil, quietLogger())
	assert.Error(t, s.ScheduleRewarm("not a schedule"))
}

func TestStartRequiresJobs(t *testing.T) {
	s := New(testStore(t), nil, quietLogger())
	assert.Error(t, s.Start())
}

func TestStartStopLifecycle(t *testing.T) {
	s := New(testStore(t), nil, quietLogger())
	require.NoError(t, s.ScheduleRewarm("@every 1h"))

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.Error(t, s.Start())
	assert.False(t, s.NextRun().IsZero())

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	require.NoError(t, s.Stop())
}

func TestRewarmAllRefreshesEveryKey(t *testing.T) {
	store := testStore(t)
	calls := 0
	refreshes := map[cache.ResourceKey]cache.RefreshFunc{
		cache.ResourceCFBBets: func(ctx context.Context) (*models.BetList, error) {
			calls++
			return &models.BetList{Bets: []models.Bet{}}, nil
		},
	}

	s := New(store, refreshes, quietLogger())
	s.rewarmAll()
	assert.Equal(t, 1, calls)

	// A hot key is served from cache, not refreshed again.
	s.rewarmAll()
	assert.Equal(t, 1, calls)
}
