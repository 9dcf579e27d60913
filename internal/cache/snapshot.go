package cache

import (
	"encoding/json"
	"os"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/gridiron-edge/internal/metrics"
)

// WarmStart loads the durable snapshot and adopts every entry whose stored
// age is still below the TTL; anything older stays cold. Read failures are
// logged and non-fatal: the service simply starts cold.
func (s *Store) WarmStart() {
	raw, err := os.ReadFile(s.snapshotPath)
	if err != nil {
		if !os.IsNotExist(err) && s.logger != nil {
			s.logger.WithError(err).Warn("Failed to load cache snapshot from disk")
		}
		return
	}

	var snapshot map[ResourceKey]Entry
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		if s.logger != nil {
			s.logger.WithError(err).Warn("Cache snapshot on disk is malformed, starting cold")
		}
		return
	}

	for _, key := range s.keys {
		entry, ok := snapshot[key]
		if !ok || entry.Data == nil || !s.fresh(entry) {
			continue
		}
		s.entries.Set(string(key), entry, gocache.NoExpiration)
	}

	if s.logger != nil {
		fields := make(logrus.Fields, len(s.keys))
		for _, key := range s.keys {
			state := "cold"
			if _, ok := s.lookup(key); ok {
				state = "hot"
			}
			fields[string(key)] = state
		}
		s.logger.WithFields(fields).Info("Cache warmed from disk")
	}
}

// persist writes the full current state of all resource keys to the single
// durable record. Writes are serialized across keys and go through a temp
// file and rename, so the record on disk is never half-written. Failures
// are logged and non-fatal; the service keeps serving from memory.
func (s *Store) persist() {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	snapshot := make(map[ResourceKey]Entry, len(s.keys))
	for _, key := range s.keys {
		if entry, ok := s.lookup(key); ok {
			snapshot[key] = entry
		} else {
			snapshot[key] = Entry{}
		}
	}

	raw, err := json.Marshal(snapshot)
	if err != nil {
		metrics.SnapshotWriteFailuresTotal.Inc()
		if s.logger != nil {
			s.logger.WithError(err).Warn("Failed to encode cache snapshot")
		}
		return
	}

	tmpPath := s.snapshotPath + ".tmp"
	if err := os.WriteFile(tmpPath, raw, 0o644); err != nil {
		metrics.SnapshotWriteFailuresTotal.Inc()
		if s.logger != nil {
			s.logger.WithError(err).Warn("Failed to save cache snapshot to disk")
		}
		return
	}
	if err := os.Rename(tmpPath, s.snapshotPath); err != nil {
		metrics.SnapshotWriteFailuresTotal.Inc()
		if s.logger != nil {
			s.logger.WithError(err).Warn("Failed to replace cache snapshot on disk")
		}
	}
}
