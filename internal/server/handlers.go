package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/gridiron-edge/internal/cache"
	"github.com/yourusername/gridiron-edge/internal/models"
	"github.com/yourusername/gridiron-edge/internal/oddsapi"
)

// handleCFBBets serves the graded college spread and total bets.
func (s *Server) handleCFBBets(w http.ResponseWriter, r *http.Request) {
	payload, err := s.store.Get(r.Context(), cache.ResourceCFBBets, s.pipeline.RefreshTeamBets)
	if err != nil {
		s.respondError(w, "failed to load college bets", err)
		return
	}
	respondJSON(w, http.StatusOK, payload)
}

// handleNFLProps serves the graded player prop bets. A plan restriction
// upstream surfaces through the payload's warning field, not as an error.
func (s *Server) handleNFLProps(w http.ResponseWriter, r *http.Request) {
	payload, err := s.store.Get(r.Context(), cache.ResourceNFLProps, s.pipeline.RefreshPropBets)
	if err != nil {
		s.respondError(w, "failed to load player props", err)
		return
	}
	respondJSON(w, http.StatusOK, payload)
}

// handleCollegeGames serves the raw upcoming game listing. It bypasses
// grading and the cache so it reflects the upstream schedule directly.
func (s *Server) handleCollegeGames(w http.ResponseWriter, r *http.Request) {
	games, err := s.pipeline.ListCollegeGames(r.Context())
	if err != nil {
		s.respondError(w, "failed to list college games", err)
		return
	}
	respondJSON(w, http.StatusOK, games)
}

type healthResponse struct {
	Status  string                     `json:"status"`
	Time    string                     `json:"time"`
	Cache   map[string]cache.KeyStatus `json:"cache"`
	TTLMs   int64                      `json:"ttlMs"`
	OddsAPI *models.UsageSnapshot      `json:"oddsApi"`
}

// handleHealth reports liveness plus cache hotness and the last-seen
// upstream quota headers.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Time:    time.Now().UTC().Format(time.RFC3339),
		Cache:   s.store.Status(),
		TTLMs:   s.store.TTL().Milliseconds(),
		OddsAPI: s.usage.Snapshot(),
	})
}

// handleLegacyProps answers the retired props path with an empty list.
func (s *Server) handleLegacyProps(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, []models.Bet{})
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// respondError maps an upstream status onto the response where the error
// carries one, and falls back to 500. err.Error() is safe to expose: the
// client strips query strings before building its errors.
func (s *Server) respondError(w http.ResponseWriter, message string, err error) {
	status := oddsapi.StatusOf(err)
	if status == 0 {
		status = http.StatusInternalServerError
	}

	s.logger.WithFields(logrus.Fields{
		"status": status,
		"error":  err.Error(),
	}).Error(message)

	respondJSON(w, status, errorResponse{Error: message, Details: err.Error()})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logrus.WithError(err).Error("Failed to encode response")
	}
}
