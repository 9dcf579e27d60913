package oddsapi

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/yourusername/gridiron-edge/internal/metrics"
	"github.com/yourusername/gridiron-edge/internal/models"
)

// usageHints are the case-insensitive substrings that mark a response
// header as a quota or rate-limit signal.
var usageHints = []string{"requests", "ratelimit", "usage"}

// UsageTracker passively records quota signals observed on provider
// responses. It never affects pipeline behavior; the health endpoint reads
// it for observability.
type UsageTracker struct {
	mu       sync.RWMutex
	snapshot *models.UsageSnapshot
}

// NewUsageTracker creates an empty tracker.
func NewUsageTracker() *UsageTracker {
	return &UsageTracker{}
}

// Observe scans headers for quota hints and, if any are found, overwrites
// the stored snapshot with the picked headers and an observation timestamp.
func (t *UsageTracker) Observe(headers http.Header) {
	picked := make(map[string]string)
	for key, values := range headers {
		lower := strings.ToLower(key)
		for _, hint := range usageHints {
			if strings.Contains(lower, hint) && len(values) > 0 {
				picked[lower] = values[0]
				break
			}
		}
	}
	if len(picked) == 0 {
		return
	}

	if remaining, ok := picked["x-requests-remaining"]; ok {
		if val, err := strconv.ParseFloat(remaining, 64); err == nil {
			metrics.UpstreamRequestsRemaining.Set(val)
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.snapshot = &models.UsageSnapshot{
		ObservedAt: time.Now().UTC().Format(time.RFC3339),
		Headers:    picked,
	}
}

// Snapshot returns the last observation, or nil when none has been seen.
func (t *UsageTracker) Snapshot() *models.UsageSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.snapshot == nil {
		return nil
	}
	copied := *t.snapshot
	copied.Headers = make(map[string]string, len(t.snapshot.Headers))
	for k, v := range t.snapshot.Headers {
		copied.Headers[k] = v
	}
	return &copied
}
