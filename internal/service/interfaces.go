package service

import (
	"context"

	"github.com/kartikfr/card-genius/internal/domain"
)

// CardRepository is the durable card store.
type CardRepository interface {
	// ListCards returns every card in catalog order
	ListCards(ctx context.Context) ([]domain.Card, error)

	// UpsertCard inserts card, or overwrites the card stored under replaceID
	UpsertCard(ctx context.Context, card *domain.Card, replaceID string) error

	// DeleteCard removes a card, returning domain.ErrCardNotFound when absent
	DeleteCard(ctx context.Context, id string) error

	// ReplaceCards swaps the whole catalog in one transaction
	ReplaceCards(ctx context.Context, cards []domain.Card) error
}

// RecommendationCache stores ranked results and card updates.
type RecommendationCache interface {
	Get(ctx context.Context, catalogKey string, profile domain.SpendingProfile) ([]domain.RecommendationResult, bool, error)
	Set(ctx context.Context, catalogKey string, profile domain.SpendingProfile, recs []domain.RecommendationResult) error
	ClearRecommendations(ctx context.Context) error

	GetUpdates(ctx context.Context, cardID string) (*domain.CardUpdates, bool, error)
	SetUpdates(ctx context.Context, updates *domain.CardUpdates) error
	ClearUpdates(ctx context.Context, cardID string) error
}

// UpdatesFetcher looks up recent news for a card. It reports failures through
// the returned status rather than an error.
type UpdatesFetcher interface {
	Fetch(ctx context.Context, card domain.Card) domain.CardUpdates
}
