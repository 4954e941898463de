// Package session holds the operator's backend token behind an explicit object
// instead of ambient storage.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrOpaqueToken is returned by Claims when the token is not a JWT.
var ErrOpaqueToken = errors.New("session token is not a jwt")

// ErrNoSession is returned by Claims when no token is stored.
var ErrNoSession = errors.New("no active session")

// Store persists a single token. Load returns "" when nothing is stored.
type Store interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string, ttl time.Duration) error
	Clear(ctx context.Context) error
}

// Claims is the subset of the backend token the dashboard reads.
type Claims struct {
	UserID any    `json:"userId,omitempty"`
	Role   string `json:"role,omitempty"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Session is the token shared by every outgoing request of the process.
type Session struct {
	store Store
	now   func() time.Time

	mu     sync.Mutex
	loaded bool
	token  string
}

// Option customises a Session.
type Option func(*Session)

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

func New(store Store, opts ...Option) *Session {
	if store == nil {
		store = NewMemoryStore()
	}
	s := &Session{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Token returns the stored token, or "" when absent or expired.
func (s *Session) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		token, err := s.store.Load(ctx)
		if err != nil {
			return "", err
		}
		s.token = strings.TrimSpace(token)
		s.loaded = true
	}
	if s.token == "" {
		return "", nil
	}
	if s.expired(s.token) {
		return "", nil
	}
	return s.token, nil
}

// Save persists a new token. JWTs are stored until their expiry.
func (s *Session) Save(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return s.Clear(ctx)
	}
	var ttl time.Duration
	if claims, err := parseClaims(token); err == nil && claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Sub(s.now())
		if ttl <= 0 {
			return errors.New("session token already expired")
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Save(ctx, token, ttl); err != nil {
		return err
	}
	s.token = token
	s.loaded = true
	return nil
}

// Clear forgets the token. Clearing an empty session is a no-op.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.loaded = true
	return s.store.Clear(ctx)
}

// Claims decodes the stored token without verifying its signature; the backend does that.
func (s *Session) Claims(ctx context.Context) (*Claims, error) {
	token, err := s.Token(ctx)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, ErrNoSession
	}
	return parseClaims(token)
}

func (s *Session) expired(token string) bool {
	claims, err := parseClaims(token)
	if err != nil || claims.ExpiresAt == nil {
		return false
	}
	return !s.now().Before(claims.ExpiresAt.Time)
}

func parseClaims(token string) (*Claims, error) {
	if strings.Count(token, ".") != 2 {
		return nil, ErrOpaqueToken
	}
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, ErrOpaqueToken
	}
	return claims, nil
}
