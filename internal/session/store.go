package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"recipe-admin/internal/event"
	"recipe-admin/internal/model"
)

// Session is a point-in-time copy of the store.
type Session struct {
	User            *model.SessionUser `json:"user"`
	Token           string             `json:"-"`
	IsAuthenticated bool               `json:"isAuthenticated"`
}

type persistedState struct {
	User  *model.SessionUser `json:"user"`
	Token string             `json:"token"`
}

// Store holds the operator's identity and bearer token. It is the only
// writer of the token; everything else reads it per request.
type Store struct {
	mu            sync.RWMutex
	user          *model.SessionUser
	token         string
	authenticated bool

	persister Persister
	bus       event.Bus
	now       func() time.Time
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithBus(bus event.Bus) Option {
	return func(s *Store) { s.bus = bus }
}

// NewStore rehydrates the persisted session and validates its token.
func NewStore(ctx context.Context, persister Persister, opts ...Option) *Store {
	if persister == nil {
		persister = NewMemoryPersister()
	}

	s := &Store{persister: persister, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	s.rehydrate(ctx)
	s.CheckTokenValidity()

	return s
}

func (s *Store) Login(user model.SessionUser, token string) {
	s.mu.Lock()
	u := user
	s.user = &u
	s.token = token
	s.authenticated = true
	state := s.stateLocked()
	s.mu.Unlock()

	s.persist(state)
	s.publish(event.TypeSessionLogin)
}

func (s *Store) Logout() {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.authenticated = false
	state := s.stateLocked()
	s.mu.Unlock()

	s.persist(state)
	s.publish(event.TypeSessionLogout)
}

// CheckTokenValidity decodes the token expiry locally. It never contacts the
// server, so a token revoked upstream stays valid here until a request fails.
func (s *Store) CheckTokenValidity() {
	s.mu.RLock()
	token := s.token
	hasUser := s.user != nil
	s.mu.RUnlock()

	if token == "" {
		return
	}

	expired, err := s.tokenExpired(token)
	if err != nil {
		slog.Warn("invalid session token", "error", err)
		s.Logout()
		return
	}

	if expired {
		slog.Info("session token expired")
		s.Logout()
		return
	}

	s.mu.Lock()
	if s.token == token {
		s.authenticated = hasUser
	}
	s.mu.Unlock()
}

func (s *Store) tokenExpired(token string) (bool, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false, err
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return false, err
	}
	if exp == nil {
		return false, errors.New("token has no expiry claim")
	}

	return exp.Time.Before(s.now()), nil
}

// StartExpiryTicker re-checks the token on every tick until ctx is done.
func (s *Store) StartExpiryTicker(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.CheckTokenValidity()
		}
	}
}

func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var user *model.SessionUser
	if s.user != nil {
		u := *s.user
		user = &u
	}

	return Session{User: user, Token: s.token, IsAuthenticated: s.authenticated}
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// User returns a copy of the current user, or nil.
func (s *Store) User() *model.SessionUser {
	return s.Snapshot().User
}

func (s *Store) stateLocked() persistedState {
	return persistedState{User: s.user, Token: s.token}
}

func (s *Store) rehydrate(ctx context.Context) {
	data, err := s.persister.Load(ctx, StorageKey)
	if errors.Is(err, ErrStateNotFound) {
		return
	}
	if err != nil {
		slog.Warn("failed to load persisted session", "error", err)
		return
	}

	var state persistedState
	if err := json.Unmarshal(data, &state); err != nil {
		slog.Warn("discarding unreadable persisted session", "error", err)
		return
	}

	s.mu.Lock()
	s.user = state.User
	s.token = strings.TrimSpace(state.Token)
	s.authenticated = s.user != nil && s.token != ""
	s.mu.Unlock()
}

func (s *Store) persist(state persistedState) {
	data, err := json.Marshal(state)
	if err != nil {
		slog.Error("failed to encode session", "error", err)
		return
	}

	if err := s.persister.Save(context.Background(), StorageKey, data); err != nil {
		slog.Warn("failed to persist session", "error", err)
	}
}

func (s *Store) publish(typ event.Type) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(event.Event{Type: typ})
}
