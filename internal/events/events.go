package events

import (
	"context"
	"time"
)

const SubjectCatalogUpdated = "catalog.updated"

type CatalogAction string

const (
	ActionUpserted CatalogAction = "upserted"
	ActionDeleted  CatalogAction = "deleted"
	ActionReplaced CatalogAction = "replaced"
)

// CatalogChanged announces that an instance wrote a new catalog.
type CatalogChanged struct {
	EventID     string        `json:"event_id"`
	SourceID    string        `json:"source_id"`
	Action      CatalogAction `json:"action"`
	CardIDs     []string      `json:"card_ids,omitempty"`
	Fingerprint string        `json:"fingerprint"`
	OccurredAt  time.Time     `json:"occurred_at"`
}

type Handler func(ctx context.Context, event CatalogChanged)

// Bus carries catalog change notifications between service instances.
type Bus interface {
	PublishCatalogChanged(ctx context.Context, event CatalogChanged) error
	SubscribeCatalogChanged(handler Handler) error
	Close()
}

// NoopBus is used when no message broker is configured.
type NoopBus struct{}

func (NoopBus) PublishCatalogChanged(context.Context, CatalogChanged) error { return nil }
func (NoopBus) SubscribeCatalogChanged(Handler) error                      { return nil }
func (NoopBus) Close()                                                     {}
