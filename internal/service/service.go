package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kartikfr/card-genius/internal/catalog"
	"github.com/kartikfr/card-genius/internal/domain"
	"github.com/kartikfr/card-genius/internal/engine"
	"github.com/kartikfr/card-genius/internal/events"
	"github.com/kartikfr/card-genius/internal/schema"
	log "github.com/sirupsen/logrus"
)

const defaultBatchConcurrency = 10

type Service struct {
	repo       CardRepository
	cache      RecommendationCache
	engine     *engine.Engine
	store      *catalog.Store
	normalizer *schema.Normalizer
	updates    UpdatesFetcher
	bus        events.Bus
	sessions   *SessionTracker

	batchConcurrency int
}

func NewService(repo CardRepository, cache RecommendationCache, eng *engine.Engine, updates UpdatesFetcher, bus events.Bus, batchConcurrency int) *Service {
	if batchConcurrency <= 0 {
		batchConcurrency = defaultBatchConcurrency
	}
	if bus == nil {
		bus = events.NoopBus{}
	}
	return &Service{
		repo:             repo,
		cache:            cache,
		engine:           eng,
		store:            catalog.NewStore(),
		normalizer:       schema.NewNormalizer(),
		updates:          updates,
		bus:              bus,
		sessions:         NewSessionTracker(),
		batchConcurrency: batchConcurrency,
	}
}

// LoadCatalog replaces the in-memory catalog with the repository contents.
func (s *Service) LoadCatalog(ctx context.Context) error {
	cards, err := s.repo.ListCards(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	snap, err := s.store.Replace(cards)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	log.WithFields(log.Fields{
		"cards":       snap.Len(),
		"version":     snap.Version,
		"fingerprint": snap.Fingerprint,
	}).Info("catalog loaded")
	return nil
}

func (s *Service) Catalog() *catalog.Snapshot {
	return s.store.Current()
}

// Recommend ranks the current catalog for profile. A limit of zero or less
// returns every card.
func (s *Service) Recommend(ctx context.Context, profile domain.SpendingProfile, limit int) (*domain.Recommendations, error) {
	snap := s.store.Current()

	// Check Cache
	cached, found, err := s.cache.Get(ctx, snap.Fingerprint, profile)
	if err != nil {
		log.WithError(err).Warn("cache get failed")
	}
	if found {
		return &domain.Recommendations{
			Results:        truncate(cached, limit),
			CatalogVersion: snap.Version,
			CacheHit:       true,
		}, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results, err := s.engine.Compute(profile, snap.Cards())
	if err != nil {
		return nil, err
	}

	if cacheErr := s.cache.Set(ctx, snap.Fingerprint, profile, results); cacheErr != nil {
		log.WithError(cacheErr).Warn("cache set failed")
	}

	return &domain.Recommendations{
		Results:        truncate(results, limit),
		CatalogVersion: snap.Version,
	}, nil
}

func truncate(results []domain.RecommendationResult, limit int) []domain.RecommendationResult {
	if limit > 0 && limit < len(results) {
		return results[:limit]
	}
	return results
}

func (s *Service) RecommendBatch(ctx context.Context, profiles []domain.SpendingProfile, limit int) *domain.BatchResponse {
	start := time.Now()

	// Process profiles concurrently with bounded worker pool
	results := make([]domain.BatchProfileResult, len(profiles))
	var wg sync.WaitGroup
	sem := make(chan struct{}, s.batchConcurrency) // semaphore

	for i, profile := range profiles {
		wg.Add(1)
		go func(idx int, p domain.SpendingProfile) {
			defer wg.Done()
			sem <- struct{}{}        // acquire
			defer func() { <-sem }() // release

			results[idx] = s.processProfileForBatch(ctx, idx, p, limit)
		}(i, profile)
	}
	wg.Wait()

	// summary
	successCount := 0
	failedCount := 0
	for _, r := range results {
		if r.Status == domain.StatusSuccess {
			successCount++
		} else {
			failedCount++
		}
	}

	return &domain.BatchResponse{
		Limit:   limit,
		Results: results,
		Summary: domain.BatchSummary{
			SuccessCount:     successCount,
			FailedCount:      failedCount,
			ProcessingTimeMs: time.Since(start).Milliseconds(),
		},
		Metadata: domain.BatchMeta{
			CatalogVersion: s.store.Current().Version,
			GeneratedAt:    time.Now().UTC().Format(time.RFC3339),
		},
	}
}

// Ranks a single profile, capturing errors.
func (s *Service) processProfileForBatch(ctx context.Context, idx int, profile domain.SpendingProfile, limit int) domain.BatchProfileResult {
	result, err := s.Recommend(ctx, profile, limit)
	if err != nil {
		log.WithError(err).WithField("index", idx).Warn("batch: profile failed")
		code, msg := categorizeError(err)
		return domain.BatchProfileResult{
			Index:   idx,
			Status:  domain.StatusFailed,
			Error:   code,
			Message: msg,
		}
	}

	return domain.BatchProfileResult{
		Index:           idx,
		Recommendations: result.Results,
		Status:          domain.StatusSuccess,
	}
}

func (s *Service) ListCards() []domain.Card {
	return s.store.Current().Cards()
}

func (s *Service) GetCard(id string) (domain.Card, error) {
	card, ok := s.store.Current().Get(id)
	if !ok {
		return domain.Card{}, domain.ErrCardNotFound
	}
	return card, nil
}

// CardUpdates returns best-effort news for a card. Only available results are
// cached so a failed lookup is retried on the next call.
func (s *Service) CardUpdates(ctx context.Context, cardID string) (*domain.CardUpdates, error) {
	card, err := s.GetCard(cardID)
	if err != nil {
		return nil, err
	}

	cached, found, err := s.cache.GetUpdates(ctx, cardID)
	if err != nil {
		log.WithError(err).WithField("card_id", cardID).Warn("updates cache get failed")
	}
	if found {
		return cached, nil
	}

	updates := s.updates.Fetch(ctx, card)
	if updates.Status == domain.UpdatesAvailable {
		if err := s.cache.SetUpdates(ctx, &updates); err != nil {
			log.WithError(err).WithField("card_id", cardID).Warn("updates cache set failed")
		}
	}
	return &updates, nil
}

// Handle response error
func categorizeError(err error) (string, string) {
	if engine.IsContractViolation(err) {
		return "invalid_profile", err.Error()
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return "request_timeout", "request timed out, please try again"
	}
	return "internal_error", "an unexpected error occurred"
}
