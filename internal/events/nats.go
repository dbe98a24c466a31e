package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

// NATSBus publishes catalog changes on a core NATS subject. Every instance
// subscribes and skips the events it published itself.
type NATSBus struct {
	nc       *nats.Conn
	sourceID string

	mu   sync.Mutex
	subs []*nats.Subscription
}

func ConnectNATS(url, sourceID string) (*NATSBus, error) {
	opts := []nats.Option{
		nats.Name("card-genius-" + sourceID),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				log.WithError(err).Error("NATS disconnected with error")
			} else {
				log.Warn("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected")
		}),
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	log.WithField("servers", url).Info("connected to NATS")
	return &NATSBus{nc: nc, sourceID: sourceID}, nil
}

func (b *NATSBus) PublishCatalogChanged(ctx context.Context, event CatalogChanged) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	event.SourceID = b.sourceID
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog event: %w", err)
	}
	if err := b.nc.Publish(SubjectCatalogUpdated, payload); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", SubjectCatalogUpdated, err)
	}

	log.WithFields(log.Fields{
		"event_id": event.EventID,
		"action":   event.Action,
	}).Debug("published catalog event")
	return nil
}

func (b *NATSBus) SubscribeCatalogChanged(handler Handler) error {
	sub, err := b.nc.Subscribe(SubjectCatalogUpdated, func(msg *nats.Msg) {
		var event CatalogChanged
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			log.WithError(err).Error("failed to decode catalog event")
			return
		}
		if event.SourceID == b.sourceID {
			return
		}
		handler(context.Background(), event)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", SubjectCatalogUpdated, err)
	}

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()
	return nil
}

func (b *NATSBus) Close() {
	b.mu.Lock()
	for _, sub := range b.subs {
		if err := sub.Unsubscribe(); err != nil {
			log.WithError(err).Warn("failed to unsubscribe")
		}
	}
	b.subs = nil
	b.mu.Unlock()

	if err := b.nc.Drain(); err != nil {
		log.WithError(err).Warn("failed to drain NATS connection")
	}
}
