package handler

import "github.com/kartikfr/card-genius/internal/domain"

type RecommendationResponse struct {
	Recommendations []domain.RecommendationResult `json:"recommendations"`
	Metadata        domain.RecommendationMeta     `json:"metadata"`
}

type SessionRecommendationResponse struct {
	SessionID string `json:"session_id"`
	RecommendationResponse
}

type BatchRequest struct {
	Profiles []domain.SpendingProfile `json:"profiles" validate:"required,min=1,max=100,dive"`
}

type SessionResponse struct {
	SessionID string `json:"session_id"`
}

type CardsResponse struct {
	Cards          []domain.Card `json:"cards"`
	CatalogVersion uint64        `json:"catalog_version"`
	TotalCount     int           `json:"total_count"`
}

type LoginRequest struct {
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
}
