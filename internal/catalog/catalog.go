package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/kartikfr/card-genius/internal/domain"
)

// Snapshot is an immutable view of the catalog. Callers must not modify the
// cards it returns.
type Snapshot struct {
	Version uint64
	// Fingerprint identifies the catalog content independently of Version,
	// which is local to this process.
	Fingerprint string
	cards       []domain.Card
	index       map[string]int
}

func newSnapshot(version uint64, cards []domain.Card) *Snapshot {
	index := make(map[string]int, len(cards))
	for i, c := range cards {
		index[c.ID] = i
	}
	return &Snapshot{Version: version, Fingerprint: fingerprint(cards), cards: cards, index: index}
}

func fingerprint(cards []domain.Card) string {
	payload, err := json.Marshal(cards)
	if err != nil {
		return fmt.Sprintf("unhashable-%d", len(cards))
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:8])
}

func (s *Snapshot) Cards() []domain.Card {
	return s.cards
}

func (s *Snapshot) Len() int {
	return len(s.cards)
}

func (s *Snapshot) Get(id string) (domain.Card, bool) {
	i, ok := s.index[id]
	if !ok {
		return domain.Card{}, false
	}
	return s.cards[i], true
}

// Store publishes catalog snapshots. Readers never block; every write builds
// a new snapshot and swaps it in whole.
type Store struct {
	mu      sync.Mutex
	current atomic.Pointer[Snapshot]
}

func NewStore() *Store {
	s := &Store{}
	s.current.Store(newSnapshot(0, nil))
	return s
}

func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Replace installs a new card list.
func (s *Store) Replace(cards []domain.Card) (*Snapshot, error) {
	seen := make(map[string]struct{}, len(cards))
	for _, c := range cards {
		if _, dup := seen[c.ID]; dup {
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateCard, c.ID)
		}
		seen[c.ID] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]domain.Card, len(cards))
	copy(next, cards)
	return s.swap(next), nil
}

// Upsert stores card. When replaceID names an existing card that slot is
// overwritten in place, otherwise the card is appended.
func (s *Store) Upsert(card domain.Card, replaceID string) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.current.Load()
	target := replaceID
	if target == "" {
		target = card.ID
	}

	if i, ok := prev.index[card.ID]; ok && card.ID != target {
		return nil, fmt.Errorf("%w: %s (position %d)", domain.ErrDuplicateCard, card.ID, i)
	}

	next := make([]domain.Card, len(prev.cards), len(prev.cards)+1)
	copy(next, prev.cards)
	if i, ok := prev.index[target]; ok {
		next[i] = card
	} else {
		next = append(next, card)
	}
	return s.swap(next), nil
}

func (s *Store) Delete(id string) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.current.Load()
	i, ok := prev.index[id]
	if !ok {
		return nil, domain.ErrCardNotFound
	}

	next := make([]domain.Card, 0, len(prev.cards)-1)
	next = append(next, prev.cards[:i]...)
	next = append(next, prev.cards[i+1:]...)
	return s.swap(next), nil
}

// swap must be called with mu held.
func (s *Store) swap(cards []domain.Card) *Snapshot {
	next := newSnapshot(s.current.Load().Version+1, cards)
	s.current.Store(next)
	return next
}
