package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kartikfr/card-genius/internal/domain"
	log "github.com/sirupsen/logrus"
)

type session struct {
	issued  uint64
	profile domain.SpendingProfile
	latest  *domain.Recommendations
	touched time.Time
}

// SessionTracker keeps the latest result per session. Each computation takes
// a ticket and only the most recently issued ticket may deliver.
type SessionTracker struct {
	mu       sync.Mutex
	sessions map[string]*session
	now      func() time.Time
}

func NewSessionTracker() *SessionTracker {
	return &SessionTracker{sessions: make(map[string]*session), now: time.Now}
}

func (t *SessionTracker) Create() string {
	id := uuid.NewString()
	t.mu.Lock()
	t.sessions[id] = &session{touched: t.now()}
	t.mu.Unlock()
	return id
}

func (t *SessionTracker) Begin(id string) (uint64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[id]
	if !ok {
		return 0, domain.ErrSessionNotFound
	}
	s.issued++
	s.touched = t.now()
	return s.issued, nil
}

// Deliver stores recs unless a newer ticket has been issued since.
func (t *SessionTracker) Deliver(id string, ticket uint64, profile domain.SpendingProfile, recs *domain.Recommendations) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	if ticket != s.issued {
		return domain.ErrStaleRequest
	}
	s.profile = profile
	s.latest = recs
	s.touched = t.now()
	return nil
}

// Latest returns the last delivered result, or nil if nothing has been
// delivered yet.
func (t *SessionTracker) Latest(id string) (*domain.Recommendations, domain.SpendingProfile, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[id]
	if !ok {
		return nil, domain.SpendingProfile{}, domain.ErrSessionNotFound
	}
	s.touched = t.now()
	return s.latest, s.profile, nil
}

func (t *SessionTracker) Prune(maxIdle time.Duration) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := t.now().Add(-maxIdle)
	pruned := 0
	for id, s := range t.sessions {
		if s.touched.Before(cutoff) {
			delete(t.sessions, id)
			pruned++
		}
	}
	return pruned
}

func (s *Service) CreateSession() string {
	return s.sessions.Create()
}

// RecommendForSession computes recommendations for a session. If another
// request for the same session starts before this one finishes, the result is
// discarded and ErrStaleRequest is returned.
func (s *Service) RecommendForSession(ctx context.Context, sessionID string, profile domain.SpendingProfile, limit int) (*domain.Recommendations, error) {
	ticket, err := s.sessions.Begin(sessionID)
	if err != nil {
		return nil, err
	}

	recs, err := s.Recommend(ctx, profile, limit)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Deliver(sessionID, ticket, profile, recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (s *Service) LatestForSession(sessionID string) (*domain.Recommendations, error) {
	recs, _, err := s.sessions.Latest(sessionID)
	return recs, err
}

// RunSessionJanitor drops sessions idle for longer than ttl until ctx ends.
func (s *Service) RunSessionJanitor(ctx context.Context, ttl, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.sessions.Prune(ttl); n > 0 {
				log.WithField("pruned", n).Debug("idle sessions removed")
			}
		}
	}
}
