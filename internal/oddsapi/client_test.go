package oddsapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) ClientConfig {
	cfg := DefaultClientConfig()
	cfg.BaseURL = baseURL
	cfg.APIKey = "test-secret-key"
	cfg.MaxRetries = 0
	cfg.RateLimit = 1000
	return cfg
}

// TestListEvents tests event listing parsing and apiKey transmission
func TestListEvents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sports/americanfootball_nfl/events", r.URL.Path)
		assert.Equal(t, "test-secret-key", r.URL.Query().Get("apiKey"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id":"ev1","sport_key":"americanfootball_nfl","commence_time":"2026-09-13T17:00:00Z","home_team":"Kansas City Chiefs","away_team":"Buffalo Bills"}
		]`))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), NewUsageTracker(), nil)
	events, err := client.ListEvents(context.Background(), "americanfootball_nfl")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "ev1", events[0].ID)
	assert.Equal(t, "Kansas City Chiefs", events[0].HomeTeam)
	assert.Equal(t, time.Date(2026, 9, 13, 17, 0, 0, 0, time.UTC), events[0].CommenceTime)
}

// TestGetOddsQueryParameters tests the bulk odds request shape
func TestGetOddsQueryParameters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "us", r.URL.Query().Get("regions"))
		assert.Equal(t, "spreads,totals", r.URL.Query().Get("markets"))
		assert.Equal(t, "american", r.URL.Query().Get("oddsFormat"))
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), NewUsageTracker(), nil)
	odds, err := client.GetOdds(context.Background(), "americanfootball_ncaaf", []string{"spreads", "totals"})
	require.NoError(t, err)
	assert.Empty(t, odds)
}

// TestGetEventOddsPlanRestricted tests the 403/422 soft-failure mapping
func TestGetEventOddsPlanRestricted(t *testing.T) {
	for _, status := range []int{http.StatusForbidden, http.StatusUnprocessableEntity} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			w.Write([]byte(`{"message":"markets not available on your plan"}`))
		}))

		client := NewClient(testConfig(srv.URL), NewUsageTracker(), nil)
		_, err := client.GetEventOdds(context.Background(), "americanfootball_nfl", "ev1", []string{"player_pass_yds"})
		require.Error(t, err)
		assert.True(t, IsPlanRestricted(err), "status %d", status)
		assert.Equal(t, status, StatusOf(err))

		srv.Close()
	}
}

// TestErrorDoesNotLeakAPIKey tests secret redaction on upstream failures
func TestErrorDoesNotLeakAPIKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("upstream exploded"))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), NewUsageTracker(), nil)
	_, err := client.GetOdds(context.Background(), "americanfootball_ncaaf", []string{"spreads"})
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "test-secret-key")
}

// TestUsageTrackerObservesQuotaHeaders tests passive usage capture
func TestUsageTrackerObservesQuotaHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Requests-Remaining", "481")
		w.Header().Set("X-Requests-Used", "19")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	tracker := NewUsageTracker()
	client := NewClient(testConfig(srv.URL), tracker, nil)

	_, err := client.ListEvents(context.Background(), "americanfootball_nfl")
	require.NoError(t, err)

	snap := tracker.Snapshot()
	require.NotNil(t, snap)
	assert.Equal(t, "481", snap.Headers["x-requests-remaining"])
	assert.Equal(t, "19", snap.Headers["x-requests-used"])
	assert.NotEmpty(t, snap.ObservedAt)
	// Content-Type carries no quota hint
	assert.NotContains(t, snap.Headers, "content-type")
}

// TestUsageTrackerOverwrites tests that snapshots replace, not accumulate
func TestUsageTrackerOverwrites(t *testing.T) {
	tracker := NewUsageTracker()

	first := http.Header{}
	first.Set("X-Requests-Remaining", "100")
	tracker.Observe(first)

	second := http.Header{}
	second.Set("X-RateLimit-Requests-Remaining", "99")
	tracker.Observe(second)

	snap := tracker.Snapshot()
	require.NotNil(t, snap)
	assert.NotContains(t, snap.Headers, "x-requests-remaining")
	assert.Equal(t, "99", snap.Headers["x-ratelimit-requests-remaining"])
}

// TestUsageTrackerEmpty tests the nil snapshot before any observation
func TestUsageTrackerEmpty(t *testing.T) {
	tracker := NewUsageTracker()
	assert.Nil(t, tracker.Snapshot())

	// Headers without quota hints leave the tracker empty
	tracker.Observe(http.Header{"Content-Type": []string{"application/json"}})
	assert.Nil(t, tracker.Snapshot())
}
