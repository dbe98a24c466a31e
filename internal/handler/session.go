package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kartikfr/card-genius/internal/domain"
)

// POST /sessions
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusCreated, SessionResponse{SessionID: h.service.CreateSession()})
}

// PUT /sessions/{sessionID}/profile
func (h *Handler) UpdateSessionProfile(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	limit, err := parseLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}
	sortBySaved, ok := parseBreakdownOrder(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "breakdown must be 'category' or 'saved'")
		return
	}

	profile, ok := decodeProfile(w, r)
	if !ok {
		return
	}

	result, err := h.service.RecommendForSession(r.Context(), sessionID, profile, limit)
	if err != nil {
		writeRecommendError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SessionRecommendationResponse{
		SessionID:              sessionID,
		RecommendationResponse: buildResponse(result, sortBySaved),
	})
}

// GET /sessions/{sessionID}/recommendations
func (h *Handler) GetSessionRecommendations(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	sortBySaved, ok := parseBreakdownOrder(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_parameter", "breakdown must be 'category' or 'saved'")
		return
	}

	result, err := h.service.LatestForSession(sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "session_not_found", "Session does not exist or has expired")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
		return
	}
	if result == nil {
		writeError(w, http.StatusNotFound, "no_recommendations", "No spending profile has been submitted for this session")
		return
	}

	writeJSON(w, http.StatusOK, SessionRecommendationResponse{
		SessionID:              sessionID,
		RecommendationResponse: buildResponse(result, sortBySaved),
	})
}
