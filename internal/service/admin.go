package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/kartikfr/card-genius/internal/catalog"
	"github.com/kartikfr/card-genius/internal/domain"
	"github.com/kartikfr/card-genius/internal/events"
	log "github.com/sirupsen/logrus"
)

// ImportCard normalizes raw (canonical or exhaustive) and stores it. With a
// replaceID the card must already exist and keeps its catalog position.
func (s *Service) ImportCard(ctx context.Context, raw []byte, replaceID string) (*domain.Card, error) {
	card, err := s.normalizer.Normalize(raw)
	if err != nil {
		return nil, err
	}

	if replaceID != "" {
		if _, ok := s.store.Current().Get(replaceID); !ok {
			return nil, domain.ErrCardNotFound
		}
	}

	if err := s.repo.UpsertCard(ctx, card, replaceID); err != nil {
		return nil, err
	}

	snap, err := s.store.Upsert(*card, replaceID)
	if err != nil {
		if snap, err = s.resync(ctx, err); err != nil {
			return nil, err
		}
	}

	ids := []string{card.ID}
	if replaceID != "" && replaceID != card.ID {
		ids = append(ids, replaceID)
	}
	s.afterWrite(ctx, snap, events.ActionUpserted, ids)

	log.WithFields(log.Fields{"card_id": card.ID, "replaced": replaceID}).Info("card imported")
	return card, nil
}

func (s *Service) DeleteCard(ctx context.Context, id string) error {
	if err := s.repo.DeleteCard(ctx, id); err != nil {
		return err
	}

	snap, err := s.store.Delete(id)
	if err != nil {
		if snap, err = s.resync(ctx, err); err != nil {
			return err
		}
	}
	s.afterWrite(ctx, snap, events.ActionDeleted, []string{id})

	log.WithField("card_id", id).Info("card deleted")
	return nil
}

// ReplaceCatalog swaps the whole catalog for the cards in raw, a JSON array of
// documents in either schema.
func (s *Service) ReplaceCatalog(ctx context.Context, raw []byte) ([]domain.Card, error) {
	cards, err := s.normalizer.NormalizeAll(raw)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(cards))
	for _, c := range cards {
		if _, dup := seen[c.ID]; dup {
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateCard, c.ID)
		}
		seen[c.ID] = struct{}{}
	}

	if err := s.repo.ReplaceCards(ctx, cards); err != nil {
		return nil, err
	}

	snap, err := s.store.Replace(cards)
	if err != nil {
		if snap, err = s.resync(ctx, err); err != nil {
			return nil, err
		}
	}
	s.afterWrite(ctx, snap, events.ActionReplaced, nil)

	log.WithField("cards", snap.Len()).Info("catalog replaced")
	return snap.Cards(), nil
}

// ExportCatalog returns the current catalog in canonical form.
func (s *Service) ExportCatalog() []domain.Card {
	return s.store.Current().Cards()
}

// HandleCatalogChanged reloads the catalog after another instance wrote it.
func (s *Service) HandleCatalogChanged(ctx context.Context, event events.CatalogChanged) {
	logger := log.WithFields(log.Fields{
		"event_id": event.EventID,
		"source":   event.SourceID,
		"action":   event.Action,
	})

	if event.Fingerprint != "" && event.Fingerprint == s.store.Current().Fingerprint {
		logger.Debug("catalog already current")
		return
	}
	if err := s.LoadCatalog(ctx); err != nil {
		logger.WithError(err).Error("failed to reload catalog")
		return
	}
	for _, id := range event.CardIDs {
		if err := s.cache.ClearUpdates(ctx, id); err != nil {
			logger.WithError(err).WithField("card_id", id).Warn("updates cache clear failed")
		}
	}
}

func (s *Service) afterWrite(ctx context.Context, snap *catalog.Snapshot, action events.CatalogAction, ids []string) {
	if err := s.cache.ClearRecommendations(ctx); err != nil {
		log.WithError(err).Warn("cache invalidation failed")
	}
	for _, id := range ids {
		if err := s.cache.ClearUpdates(ctx, id); err != nil {
			log.WithError(err).WithField("card_id", id).Warn("updates cache clear failed")
		}
	}

	err := s.bus.PublishCatalogChanged(ctx, events.CatalogChanged{
		Action:      action,
		CardIDs:     ids,
		Fingerprint: snap.Fingerprint,
	})
	if err != nil {
		log.WithError(err).Warn("failed to publish catalog event")
	}
}

// resync reloads the store when it disagrees with the repository after a
// successful write.
func (s *Service) resync(ctx context.Context, cause error) (*catalog.Snapshot, error) {
	log.WithError(cause).Warn("catalog out of sync with repository, reloading")
	if err := s.LoadCatalog(ctx); err != nil {
		return nil, errors.Join(cause, err)
	}
	return s.store.Current(), nil
}
