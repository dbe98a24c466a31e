package handler

import (
	"net/http"

	"github.com/kartikfr/card-genius/internal/validator"
)

// POST /recommendations/batch
func (h *Handler) RecommendBatch(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}

	var req BatchRequest
	if err := decodeStrict(r, w, maxProfileBody, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "Invalid batch request: "+err.Error())
		return
	}
	if err := validator.Validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "Batch must contain 1 to 100 profiles with non-negative amounts")
		return
	}

	writeJSON(w, http.StatusOK, h.service.RecommendBatch(r.Context(), req.Profiles, limit))
}
