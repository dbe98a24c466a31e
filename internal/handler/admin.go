package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kartikfr/card-genius/internal/domain"
	"github.com/kartikfr/card-genius/internal/schema"
	"github.com/kartikfr/card-genius/internal/validator"
	log "github.com/sirupsen/logrus"
)

// POST /admin/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeStrict(r, w, maxProfileBody, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "Invalid login request")
		return
	}
	if err := validator.Validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "Password is required")
		return
	}

	token, expiresAt, err := h.auth.Login(req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid password")
			return
		}
		log.WithError(err).Error("admin login failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{Token: token, ExpiresAt: expiresAt.UTC().Format(time.RFC3339)})
}

// POST /admin/cards
func (h *Handler) CreateCard(w http.ResponseWriter, r *http.Request) {
	h.importCard(w, r, "", http.StatusCreated)
}

// PUT /admin/cards/{cardID}
func (h *Handler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	h.importCard(w, r, chi.URLParam(r, "cardID"), http.StatusOK)
}

func (h *Handler) importCard(w http.ResponseWriter, r *http.Request, replaceID string, status int) {
	raw, err := readBody(r, w, maxAdminBody)
	if err != nil {
		writeBodyError(w, err, "Card document")
		return
	}

	card, err := h.service.ImportCard(r.Context(), raw, replaceID)
	if err != nil {
		writeAdminError(w, err)
		return
	}
	writeJSON(w, status, card)
}

// DELETE /admin/cards/{cardID}
func (h *Handler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCard(r.Context(), chi.URLParam(r, "cardID")); err != nil {
		writeAdminError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PUT /admin/cards
func (h *Handler) ReplaceCatalog(w http.ResponseWriter, r *http.Request) {
	raw, err := readBody(r, w, maxAdminBody)
	if err != nil {
		writeBodyError(w, err, "Catalog document")
		return
	}

	cards, err := h.service.ReplaceCatalog(r.Context(), raw)
	if err != nil {
		writeAdminError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CardsResponse{
		Cards:          cards,
		CatalogVersion: h.service.Catalog().Version,
		TotalCount:     len(cards),
	})
}

// GET /admin/cards/export
func (h *Handler) ExportCatalog(w http.ResponseWriter, r *http.Request) {
	cards := h.service.ExportCatalog()
	if cards == nil {
		cards = []domain.Card{}
	}
	w.Header().Set("Content-Disposition", `attachment; filename="cards.json"`)
	writeJSON(w, http.StatusOK, cards)
}

func writeAdminError(w http.ResponseWriter, err error) {
	var schemaErr *schema.SchemaError
	switch {
	case errors.As(err, &schemaErr):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "invalid_card",
			Message: err.Error(),
			Fields:  schemaErr.Fields,
		})
	case errors.Is(err, domain.ErrCardNotFound):
		writeError(w, http.StatusNotFound, "card_not_found", "Card does not exist")
	case errors.Is(err, domain.ErrDuplicateCard):
		writeError(w, http.StatusConflict, "duplicate_card", err.Error())
	case isTimeout(err):
		writeError(w, http.StatusServiceUnavailable, "request_timeout", "Request timed out, please try again")
	default:
		log.WithError(err).Error("admin write failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
