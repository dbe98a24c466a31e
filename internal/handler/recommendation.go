package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/kartikfr/card-genius/internal/domain"
	"github.com/kartikfr/card-genius/internal/engine"
	"github.com/kartikfr/card-genius/internal/validator"
	log "github.com/sirupsen/logrus"
)

// POST /recommendations
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
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

	result, err := h.service.Recommend(r.Context(), profile, limit)
	if err != nil {
		writeRecommendError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, buildResponse(result, sortBySaved))
}

func decodeProfile(w http.ResponseWriter, r *http.Request) (domain.SpendingProfile, bool) {
	var profile domain.SpendingProfile
	if err := decodeStrict(r, w, maxProfileBody, &profile); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "Spending profile must be a JSON object of known categories: "+err.Error())
		return profile, false
	}
	if err := validator.Validate.Struct(profile); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_profile", "Spending amounts must be non-negative")
		return profile, false
	}
	return profile, true
}

func parseBreakdownOrder(r *http.Request) (sortBySaved, ok bool) {
	switch r.URL.Query().Get("breakdown") {
	case "", "category":
		return false, true
	case "saved":
		return true, true
	default:
		return false, false
	}
}

func buildResponse(result *domain.Recommendations, sortBySaved bool) RecommendationResponse {
	recs := result.Results
	if sortBySaved {
		recs = make([]domain.RecommendationResult, len(result.Results))
		for i, rec := range result.Results {
			recs[i] = engine.SortBreakdownBySaved(rec)
		}
	}
	if recs == nil {
		recs = []domain.RecommendationResult{}
	}

	return RecommendationResponse{
		Recommendations: recs,
		Metadata: domain.RecommendationMeta{
			CacheHit:       result.CacheHit,
			CatalogVersion: result.CatalogVersion,
			GeneratedAt:    time.Now().UTC().Format(time.RFC3339),
			TotalCount:     len(recs),
		},
	}
}

func writeRecommendError(w http.ResponseWriter, err error) {
	switch {
	case engine.IsContractViolation(err):
		writeError(w, http.StatusBadRequest, "invalid_profile", err.Error())
	case errors.Is(err, domain.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session_not_found", "Session does not exist or has expired")
	case errors.Is(err, domain.ErrStaleRequest):
		writeError(w, http.StatusConflict, "stale_request", "A newer request for this session superseded this one")
	case isTimeout(err):
		writeError(w, http.StatusServiceUnavailable, "request_timeout", "Request timed out, please try again")
	default:
		log.WithError(err).Error("recommendation failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
