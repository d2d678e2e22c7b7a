package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"nfl_pickem/ingestion/internal/season"
	"nfl_pickem/ingestion/internal/syncer"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// Pinger reports store health
type Pinger interface {
	Health(ctx context.Context) error
}

// ManualSyncer runs dispatches that bypass the gatekeepers
type ManualSyncer interface {
	SyncGames(ctx context.Context, req syncer.GamesRequest) (syncer.Result, error)
	SyncWeek(ctx context.Context, req syncer.ManualRequest) (syncer.Result, error)
}

// Deps are the collaborators behind the HTTP endpoints. Nil members make
// the endpoints that need them answer 500.
type Deps struct {
	Scores   syncer.Gatekeeper
	Schedule syncer.Gatekeeper
	Odds     syncer.Gatekeeper
	Manual   ManualSyncer
	Resolver syncer.WeekResolver
	DB       Pinger

	// TriggerSecret, when set, must be presented as a bearer token on the
	// scheduled trigger endpoints
	TriggerSecret string
}

// Handler contains dependencies for HTTP handlers
type Handler struct {
	deps Deps
}

// NewHandler creates a new handler with dependencies
func NewHandler(deps Deps) *Handler {
	return &Handler{deps: deps}
}

// Routes registers every endpoint on r
func (h *Handler) Routes(r chi.Router) {
	r.Use(RequestLogger)

	r.Get("/health", h.HealthCheck)
	r.Get("/season/current", h.GetCurrentSeason)

	r.Route("/sync", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(RequireSecret(h.deps.TriggerSecret))
			r.Get("/hourly-odds", h.runGatekeeper(h.deps.Odds))
			r.Get("/weekly-schedule", h.runGatekeeper(h.deps.Schedule))
			r.Get("/daily-scores", h.runGatekeeper(h.deps.Scores))
		})

		r.Post("/manual", h.SyncManual)
		r.Post("/games", h.SyncGames)
	})
}

// HealthCheck returns the health status of the service
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if h.deps.DB == nil {
		respondError(w, http.StatusInternalServerError, "database not configured", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.deps.DB.Health(ctx); err != nil {
		respondError(w, http.StatusServiceUnavailable, "database unhealthy", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   "pickem-sync",
	})
}

// GetCurrentSeason resolves the current week
// Query params: season (defaults to the current season)
func (h *Handler) GetCurrentSeason(w http.ResponseWriter, r *http.Request) {
	if h.deps.Resolver == nil {
		respondError(w, http.StatusInternalServerError, "season resolver not configured", nil)
		return
	}

	seasonID := r.URL.Query().Get("season")
	if seasonID == "" {
		seasonID = h.deps.Resolver.CurrentSeason()
	}
	if err := season.ValidateSeason(seasonID); err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	info, err := h.deps.Resolver.Resolve(r.Context(), seasonID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to resolve current week", err)
		return
	}

	respondJSON(w, http.StatusOK, info)
}

// runGatekeeper serves a scheduled trigger. Skips and partial failures are
// both 200; callers inspect the body.
func (h *Handler) runGatekeeper(gk syncer.Gatekeeper) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if gk == nil {
			respondError(w, http.StatusInternalServerError, "sync service not configured", nil)
			return
		}

		result := gk.Run(r.Context())
		respondJSON(w, http.StatusOK, result)
	}
}

// SyncManual refreshes every dataset for the requested or current week
// Body (optional): {"season": "2025", "week": 3}
func (h *Handler) SyncManual(w http.ResponseWriter, r *http.Request) {
	if h.deps.Manual == nil {
		respondError(w, http.StatusInternalServerError, "sync service not configured", nil)
		return
	}

	var req syncer.ManualRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	result, err := h.deps.Manual.SyncWeek(r.Context(), req)
	if err != nil {
		respondSyncError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// SyncGames dispatches one week with explicit flags
// Body: {"season": "2025", "week": 3, "syncScores": true, "syncSchedules": false, "syncOdds": true}
func (h *Handler) SyncGames(w http.ResponseWriter, r *http.Request) {
	if h.deps.Manual == nil {
		respondError(w, http.StatusInternalServerError, "sync service not configured", nil)
		return
	}

	var req syncer.GamesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	result, err := h.deps.Manual.SyncGames(r.Context(), req)
	if err != nil {
		respondSyncError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Helper functions

func respondSyncError(w http.ResponseWriter, err error) {
	if errors.Is(err, season.ErrInvalidWeek) || errors.Is(err, season.ErrInvalidSeason) {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	respondError(w, http.StatusInternalServerError, "sync failed", err)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		log.Error().Err(err).Int("status", status).Msg(message)
	}

	respondJSON(w, status, syncer.Result{
		Success: false,
		Message: message,
	})
}
