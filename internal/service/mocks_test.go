package service

import (
	"context"

	"github.com/kartikfr/card-genius/internal/domain"
	"github.com/kartikfr/card-genius/internal/events"
	"github.com/stretchr/testify/mock"
)

// MockCardRepository is a mock implementation of CardRepository
type MockCardRepository struct {
	mock.Mock
}

func (m *MockCardRepository) ListCards(ctx context.Context) ([]domain.Card, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Card), args.Error(1)
}

func (m *MockCardRepository) UpsertCard(ctx context.Context, card *domain.Card, replaceID string) error {
	args := m.Called(ctx, card, replaceID)
	return args.Error(0)
}

func (m *MockCardRepository) DeleteCard(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCardRepository) ReplaceCards(ctx context.Context, cards []domain.Card) error {
	args := m.Called(ctx, cards)
	return args.Error(0)
}

// MockCache is a mock implementation of RecommendationCache
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, catalogKey string, profile domain.SpendingProfile) ([]domain.RecommendationResult, bool, error) {
	args := m.Called(ctx, catalogKey, profile)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]domain.RecommendationResult), args.Bool(1), args.Error(2)
}

func (m *MockCache) Set(ctx context.Context, catalogKey string, profile domain.SpendingProfile, recs []domain.RecommendationResult) error {
	args := m.Called(ctx, catalogKey, profile, recs)
	return args.Error(0)
}

func (m *MockCache) ClearRecommendations(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCache) GetUpdates(ctx context.Context, cardID string) (*domain.CardUpdates, bool, error) {
	args := m.Called(ctx, cardID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.CardUpdates), args.Bool(1), args.Error(2)
}

func (m *MockCache) SetUpdates(ctx context.Context, updates *domain.CardUpdates) error {
	args := m.Called(ctx, updates)
	return args.Error(0)
}

func (m *MockCache) ClearUpdates(ctx context.Context, cardID string) error {
	args := m.Called(ctx, cardID)
	return args.Error(0)
}

// MockFetcher is a mock implementation of UpdatesFetcher
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, card domain.Card) domain.CardUpdates {
	args := m.Called(ctx, card)
	return args.Get(0).(domain.CardUpdates)
}

// MockBus is a mock implementation of events.Bus
type MockBus struct {
	mock.Mock
}

func (m *MockBus) PublishCatalogChanged(ctx context.Context, event events.CatalogChanged) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockBus) SubscribeCatalogChanged(handler events.Handler) error {
	args := m.Called(handler)
	return args.Error(0)
}

func (m *MockBus) Close() {
	m.Called()
}
