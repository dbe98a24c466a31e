package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kartikfr/card-genius/internal/domain"
	log "github.com/sirupsen/logrus"
)

// GET /cards
func (h *Handler) ListCards(w http.ResponseWriter, r *http.Request) {
	snap := h.service.Catalog()
	cards := snap.Cards()
	if cards == nil {
		cards = []domain.Card{}
	}
	writeJSON(w, http.StatusOK, CardsResponse{
		Cards:          cards,
		CatalogVersion: snap.Version,
		TotalCount:     len(cards),
	})
}

// GET /cards/{cardID}
func (h *Handler) GetCard(w http.ResponseWriter, r *http.Request) {
	cardID := chi.URLParam(r, "cardID")
	card, err := h.service.GetCard(cardID)
	if err != nil {
		writeCardError(w, cardID, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

// GET /cards/{cardID}/updates
func (h *Handler) GetCardUpdates(w http.ResponseWriter, r *http.Request) {
	cardID := chi.URLParam(r, "cardID")
	updates, err := h.service.CardUpdates(r.Context(), cardID)
	if err != nil {
		writeCardError(w, cardID, err)
		return
	}
	writeJSON(w, http.StatusOK, updates)
}

func writeCardError(w http.ResponseWriter, cardID string, err error) {
	if errors.Is(err, domain.ErrCardNotFound) {
		writeError(w, http.StatusNotFound, "card_not_found",
			fmt.Sprintf("Card with ID %q does not exist", cardID))
		return
	}
	log.WithError(err).WithField("card_id", cardID).Error("card request failed")
	writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
}
