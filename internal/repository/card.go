package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/kartikfr/card-genius/internal/domain"
)

// ListCards returns the catalog in its stored order.
func (r *Repository) ListCards(ctx context.Context) ([]domain.Card, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, payload FROM cards ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("query cards: %w", err)
	}
	defer rows.Close()

	var cards []domain.Card
	for rows.Next() {
		var id string
		var payload []byte
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		var card domain.Card
		if err := json.Unmarshal(payload, &card); err != nil {
			return nil, fmt.Errorf("decode card %s: %w", id, err)
		}
		cards = append(cards, card)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate over cards: %w", err)
	}
	return cards, nil
}

func (r *Repository) GetCard(ctx context.Context, id string) (*domain.Card, error) {
	var payload []byte
	err := r.pool.QueryRow(ctx, `SELECT payload FROM cards WHERE id = $1`, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCardNotFound
		}
		return nil, fmt.Errorf("query card id=%s: %w", id, err)
	}

	card := &domain.Card{}
	if err := json.Unmarshal(payload, card); err != nil {
		return nil, fmt.Errorf("decode card %s: %w", id, err)
	}
	return card, nil
}

// UpsertCard writes card into the slot of replaceID (or card.ID when empty),
// appending it when that slot does not exist.
func (r *Repository) UpsertCard(ctx context.Context, card *domain.Card, replaceID string) error {
	payload, err := json.Marshal(card)
	if err != nil {
		return fmt.Errorf("encode card %s: %w", card.ID, err)
	}

	target := replaceID
	if target == "" {
		target = card.ID
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin upsert card: %w", err)
	}
	defer tx.Rollback(ctx)

	var position int
	err = tx.QueryRow(ctx, `SELECT position FROM cards WHERE id = $1 FOR UPDATE`, target).Scan(&position)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		if err := tx.QueryRow(ctx, `SELECT COALESCE(MAX(position) + 1, 0) FROM cards`).Scan(&position); err != nil {
			return fmt.Errorf("next card position: %w", err)
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO cards (id, position, payload, updated_at) VALUES ($1, $2, $3, NOW())`,
			card.ID, position, payload,
		)
	case err != nil:
		return fmt.Errorf("lock card id=%s: %w", target, err)
	default:
		_, err = tx.Exec(ctx,
			`UPDATE cards SET id = $2, payload = $3, updated_at = NOW() WHERE id = $1`,
			target, card.ID, payload,
		)
	}
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateCard, card.ID)
		}
		return fmt.Errorf("write card id=%s: %w", card.ID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit upsert card: %w", err)
	}
	return nil
}

func (r *Repository) DeleteCard(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM cards WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete card id=%s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCardNotFound
	}
	return nil
}

// ReplaceCards swaps the whole catalog in one transaction.
func (r *Repository) ReplaceCards(ctx context.Context, cards []domain.Card) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace cards: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM cards`); err != nil {
		return fmt.Errorf("clear cards: %w", err)
	}

	batch := &pgx.Batch{}
	for i := range cards {
		payload, err := json.Marshal(&cards[i])
		if err != nil {
			return fmt.Errorf("encode card %s: %w", cards[i].ID, err)
		}
		batch.Queue(
			`INSERT INTO cards (id, position, payload, updated_at) VALUES ($1, $2, $3, NOW())`,
			cards[i].ID, i, payload,
		)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %v", domain.ErrDuplicateCard, err)
		}
		return fmt.Errorf("insert cards: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit replace cards: %w", err)
	}
	return nil
}

func (r *Repository) CountCards(ctx context.Context) (int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM cards`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count cards: %w", err)
	}
	return total, nil
}
