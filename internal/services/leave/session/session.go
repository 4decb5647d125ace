// Package session keeps the process-local token map used by MCP callers.
// Tokens are lost on restart.
package session

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/louisbranch/leaveledger/internal/platform/errors"
)

// entry binds a token to an employee.
type entry struct {
	employeeID string
	issuedAt   time.Time
}

// Store is a thread-safe in-memory token store.
type Store struct {
	mu     sync.RWMutex
	tokens map[string]entry
	ttl    time.Duration
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithTTL expires tokens ttl after issue. Zero keeps them for the process
// lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock overrides the time source used for expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore creates an empty token store.
func NewStore(opts ...Option) *Store {
	s := &Store{tokens: make(map[string]entry), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue mints an opaque token for employeeID.
func (s *Store) Issue(employeeID string) string {
	token := newToken()
	s.mu.Lock()
	s.tokens[token] = entry{employeeID: employeeID, issuedAt: s.now()}
	s.mu.Unlock()
	return token
}

// Validate returns the employee id bound to token.
func (s *Store) Validate(token string) (string, error) {
	token = strings.TrimSpace(token)
	s.mu.RLock()
	e, ok := s.tokens[token]
	s.mu.RUnlock()
	if !ok || token == "" {
		return "", apperrors.New(apperrors.CodeAuthFailed, "Invalid or expired token")
	}
	if s.ttl > 0 && s.now().Sub(e.issuedAt) > s.ttl {
		s.mu.Lock()
		delete(s.tokens, token)
		s.mu.Unlock()
		return "", apperrors.New(apperrors.CodeAuthFailed, "Invalid or expired token")
	}
	return e.employeeID, nil
}

// Revoke invalidates token. Unknown tokens fail with AUTH_FAILED.
func (s *Store) Revoke(token string) error {
	token = strings.TrimSpace(token)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tokens[token]; !ok {
		return apperrors.New(apperrors.CodeAuthFailed, "Invalid token")
	}
	delete(s.tokens, token)
	return nil
}

// Len reports the number of live tokens.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tokens)
}

// newToken returns a random UUIDv4 rendered as 32 hex characters.
func newToken() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")
}
