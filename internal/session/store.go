package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"chargedash/internal/models"
	"chargedash/internal/storage"
)

const (
	tokenKey = "token"
	userKey  = "user"
)

// ErrNotAuthenticated is returned when an operation requires a session token.
var ErrNotAuthenticated = errors.New("session: not authenticated")

// AuthAPI is the backend auth surface the store depends on.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (string, error)
	Me(ctx context.Context, token string) (*models.User, error)
}

// Store holds the authenticated session and persists it across restarts
// through the key/value store. A failed profile refresh cascades into logout.
type Store struct {
	auth   AuthAPI
	kv     storage.Store
	logger *zap.Logger

	mu    sync.RWMutex
	token string
	user  *models.User
}

// NewStore returns an unauthenticated session store.
func NewStore(auth AuthAPI, kv storage.Store, logger *zap.Logger) *Store {
	return &Store{auth: auth, kv: kv, logger: logger}
}

// Restore rehydrates token and profile from persistence. An empty store is
// not an error; the session simply stays unauthenticated.
func (s *Store) Restore(ctx context.Context) error {
	token, err := s.kv.Get(ctx, tokenKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	raw, err := s.kv.Get(ctx, userKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		return nil
	}
	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.logger.Warn("discarding unreadable persisted profile", zap.Error(err))
		return nil
	}
	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
	return nil
}

// Login authenticates against the backend, stores the issued token and then
// fetches the profile. On failure the session stays unauthenticated.
func (s *Store) Login(ctx context.Context, username, password string) error {
	token, err := s.auth.Login(ctx, username, password)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	if err := s.kv.Set(ctx, tokenKey, token); err != nil {
		s.logger.Warn("failed to persist session token", zap.Error(err))
	}

	return s.FetchUser(ctx)
}

// FetchUser refreshes the profile behind the stored token. A failure (expired
// or invalid token) logs the session out before returning the error.
func (s *Store) FetchUser(ctx context.Context) error {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()
	if token == "" {
		return ErrNotAuthenticated
	}

	user, err := s.auth.Me(ctx, token)
	if err != nil {
		s.Logout(ctx)
		return err
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()

	data, err := json.Marshal(user)
	if err == nil {
		err = s.kv.Set(ctx, userKey, string(data))
	}
	if err != nil {
		s.logger.Warn("failed to persist session profile", zap.Error(err))
	}
	return nil
}

// Logout clears token and profile from memory and persistence.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	if err := s.kv.Delete(ctx, tokenKey, userKey); err != nil {
		s.logger.Warn("failed to clear persisted session", zap.Error(err))
	}
}

// IsAuthenticated reports whether a token is present.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// IsAdmin reports the profile admin flag; false without a profile.
func (s *Store) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.user.IsAdmin
}

// Token returns the current session token, empty when unauthenticated.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the current profile, nil when absent.
func (s *Store) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	user := *s.user
	return &user
}

// ExpiresAt returns the token expiry recovered from its claims, zero when the
// token is absent or carries none. The token is otherwise treated as opaque.
func (s *Store) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return time.Time{}
	}
	return tokenExpiry(s.token)
}
