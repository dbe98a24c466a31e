package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kartikfr/card-genius/internal/catalog"
	"github.com/kartikfr/card-genius/internal/domain"
	log "github.com/sirupsen/logrus"
)

const (
	maxProfileBody = 1 << 20
	maxAdminBody   = 8 << 20
	maxLimit       = 50
)

// Service is the subset of service.Service the HTTP layer needs.
type Service interface {
	Catalog() *catalog.Snapshot
	Recommend(ctx context.Context, profile domain.SpendingProfile, limit int) (*domain.Recommendations, error)
	RecommendBatch(ctx context.Context, profiles []domain.SpendingProfile, limit int) *domain.BatchResponse

	CreateSession() string
	RecommendForSession(ctx context.Context, sessionID string, profile domain.SpendingProfile, limit int) (*domain.Recommendations, error)
	LatestForSession(sessionID string) (*domain.Recommendations, error)

	ListCards() []domain.Card
	GetCard(id string) (domain.Card, error)
	CardUpdates(ctx context.Context, cardID string) (*domain.CardUpdates, error)

	ImportCard(ctx context.Context, raw []byte, replaceID string) (*domain.Card, error)
	DeleteCard(ctx context.Context, id string) error
	ReplaceCatalog(ctx context.Context, raw []byte) ([]domain.Card, error)
	ExportCatalog() []domain.Card
}

type Authenticator interface {
	Login(password string) (string, time.Time, error)
}

type Handler struct {
	service Service
	auth    Authenticator
}

func NewHandler(svc Service, auth Authenticator) *Handler {
	return &Handler{service: svc, auth: auth}
}

// write JSON response
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("failed to encode response")
	}
}

// writes JSON error response.
func writeError(w http.ResponseWriter, status int, errCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:   errCode,
		Message: message,
	})
}

// decodeStrict decodes a JSON body, rejecting unknown fields and trailing data.
func decodeStrict(r *http.Request, w http.ResponseWriter, limit int64, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON value")
	}
	return nil
}

func readBody(r *http.Request, w http.ResponseWriter, limit int64) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
}

// writeBodyError reports a failed body read: 413 past the limit, 400 otherwise.
func writeBodyError(w http.ResponseWriter, err error, what string) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "invalid_body", what+" is too large")
		return
	}
	writeError(w, http.StatusBadRequest, "invalid_body", fmt.Sprintf("Could not read %s: %v", strings.ToLower(what), err))
}

// parseLimit reads ?limit=. Absent means every card.
func parseLimit(r *http.Request) (int, error) {
	limitStr := r.URL.Query().Get("limit")
	if limitStr == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(limitStr)
	if err != nil || parsed < 1 || parsed > maxLimit {
		return 0, fmt.Errorf("limit must be between 1 and %d", maxLimit)
	}
	return parsed, nil
}

func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
