package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// ResetTokenStore holds outstanding password-reset tokens in memory with a
// TTL and a hard size bound. It is process-scoped state that used to live
// in a static map; it is now injected so tests and shutdown can reach it.
type ResetTokenStore struct {
	mu      sync.Mutex
	tokens  map[string]resetEntry
	ttl     time.Duration
	maxSize int

	stop chan struct{}
}

type resetEntry struct {
	username  string
	expiresAt time.Time
}

// NewResetTokenStore creates a bounded reset-token store.
func NewResetTokenStore(ttl time.Duration, maxSize int) *ResetTokenStore {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &ResetTokenStore{
		tokens:  make(map[string]resetEntry),
		ttl:     ttl,
		maxSize: maxSize,
		stop:    make(chan struct{}),
	}
}

// Issue creates a new single-use token for the username. When the store is
// full, expired entries are dropped first, then the entry closest to expiry
// is evicted to stay within the bound.
func (s *ResetTokenStore) Issue(username string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if len(s.tokens) >= s.maxSize {
		s.sweepLocked(now)
	}
	if len(s.tokens) >= s.maxSize {
		s.evictSoonestLocked()
	}

	token := uuid.NewString()
	s.tokens[token] = resetEntry{
		username:  username,
		expiresAt: now.Add(s.ttl),
	}
	return token
}

// Consume redeems a token. A token can be consumed at most once and only
// before it expires.
func (s *ResetTokenStore) Consume(token string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.tokens[token]
	if !ok {
		return "", false
	}
	delete(s.tokens, token)
	if time.Now().After(entry.expiresAt) {
		return "", false
	}
	return entry.username, true
}

// Len returns the number of outstanding tokens.
func (s *ResetTokenStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}

// StartSweeper drops expired tokens on an interval until Stop is called.
func (s *ResetTokenStore) StartSweeper(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.mu.Lock()
				s.sweepLocked(time.Now())
				s.mu.Unlock()
			case <-s.stop:
				return
			}
		}
	}()
}

// Stop stops the background sweep loop.
func (s *ResetTokenStore) Stop() {
	close(s.stop)
}

func (s *ResetTokenStore) sweepLocked(now time.Time) {
	for token, entry := range s.tokens {
		if now.After(entry.expiresAt) {
			delete(s.tokens, token)
		}
	}
}

func (s *ResetTokenStore) evictSoonestLocked() {
	var victim string
	var soonest time.Time
	for token, entry := range s.tokens {
		if victim == "" || entry.expiresAt.Before(soonest) {
			victim = token
			soonest = entry.expiresAt
		}
	}
	if victim != "" {
		delete(s.tokens, victim)
	}
}
