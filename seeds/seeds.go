package seeds

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kartikfr/card-genius/internal/domain"
	log "github.com/sirupsen/logrus"
)

//go:embed cards.json
var defaultCards []byte

// DefaultCatalog returns the built-in card catalog.
func DefaultCatalog() ([]domain.Card, error) {
	var cards []domain.Card
	if err := json.Unmarshal(defaultCards, &cards); err != nil {
		return nil, fmt.Errorf("decode default catalog: %w", err)
	}
	return cards, nil
}

func Setup(ctx context.Context, pool *pgxpool.Pool) error {
	cards, err := DefaultCatalog()
	if err != nil {
		return err
	}

	log.Info("[seed] truncating existing cards")
	if _, err := pool.Exec(ctx, `TRUNCATE cards`); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}

	log.WithField("count", len(cards)).Info("[seed] inserting cards")
	if err := seedCards(ctx, pool, cards); err != nil {
		return fmt.Errorf("seed cards: %w", err)
	}

	log.Info("[seed] seeding complete")
	return nil
}

func seedCards(ctx context.Context, pool *pgxpool.Pool, cards []domain.Card) error {
	rows := []string{}
	args := []any{}

	for i := range cards {
		payload, err := json.Marshal(&cards[i])
		if err != nil {
			return fmt.Errorf("encode card %s: %w", cards[i].ID, err)
		}

		base := len(args)
		rows = append(rows, fmt.Sprintf("($%d, $%d, $%d)", base+1, base+2, base+3))
		args = append(args, cards[i].ID, i, payload)
	}

	if len(rows) == 0 {
		return nil
	}

	query := "INSERT INTO cards (id, position, payload) VALUES " + strings.Join(rows, ", ")

	_, err := pool.Exec(ctx, query, args...)
	return err
}
