package enrichment

import (
	"context"
	"fmt"
	"time"

	"github.com/kartikfr/card-genius/internal/domain"
	log "github.com/sirupsen/logrus"
)

const (
	unavailableText = "Unable to fetch the latest updates at this moment. Please try again later."
	emptyText       = "No recent updates found."
	defaultTimeout  = 15 * time.Second
)

type SearchResult struct {
	Text    string
	Sources []domain.UpdateSource
}

// Searcher runs a grounded web search and summarises the findings.
type Searcher interface {
	Search(ctx context.Context, prompt string) (*SearchResult, error)
}

type Service struct {
	searcher Searcher
	timeout  time.Duration
	now      func() time.Time
}

// NewService returns an updates service. A nil searcher makes every fetch
// report the unavailable state.
func NewService(searcher Searcher, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Service{searcher: searcher, timeout: timeout, now: time.Now}
}

// Fetch never fails: any error becomes an unavailable result.
func (s *Service) Fetch(ctx context.Context, card domain.Card) domain.CardUpdates {
	updates := domain.CardUpdates{
		CardID:    card.ID,
		Status:    domain.UpdatesUnavailable,
		Text:      unavailableText,
		Sources:   []domain.UpdateSource{},
		FetchedAt: s.now().UTC().Format(time.RFC3339),
	}
	if s.searcher == nil {
		return updates
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.searcher.Search(ctx, prompt(card.Name))
	if err != nil {
		log.WithError(err).WithField("card_id", card.ID).Warn("card updates unavailable")
		return updates
	}

	updates.Status = domain.UpdatesAvailable
	updates.Text = result.Text
	if updates.Text == "" {
		updates.Text = emptyText
	}
	updates.Sources = dedupeSources(result.Sources)
	return updates
}

func prompt(cardName string) string {
	return fmt.Sprintf(`Find the latest official information, recent devaluations, changes in reward terms, or special limited-time offers for the %q credit card in India.
Focus on events from the last 6 months.
Summarize the key findings in 3-4 concise bullet points.
If there are no major changes, mention the current top active offer.`, cardName)
}

func dedupeSources(sources []domain.UpdateSource) []domain.UpdateSource {
	seen := make(map[string]struct{}, len(sources))
	out := make([]domain.UpdateSource, 0, len(sources))
	for _, src := range sources {
		if src.URI == "" {
			continue
		}
		if _, ok := seen[src.URI]; ok {
			continue
		}
		seen[src.URI] = struct{}{}
		out = append(out, src)
	}
	return out
}
