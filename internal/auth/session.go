// Package auth implements the client-side sign-in gate: a single credential
// check and a persisted marker for the signed-in user. It does not protect the
// API; the server accepts requests regardless.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// StorageKey is the key the signed-in user is persisted under.
const StorageKey = "user"

// ErrInvalidCredentials is returned by Login when the Verifier rejects the pair.
var ErrInvalidCredentials = errors.New("invalid username or password")

// User is the persisted sign-in marker.
type User struct {
	Username string `json:"username"`
}

// Store is the client-local key/value storage the marker lives in.
// *localstore.SQLite satisfies it.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Session holds the signed-in user for the lifetime of the process.
// It is safe for concurrent use.
type Session struct {
	verifier Verifier
	store    Store
	log      *slog.Logger

	mu   sync.RWMutex
	user *User
}

// NewSession returns a signed-out Session. Call Init to restore a persisted sign-in.
func NewSession(v Verifier, s Store, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	return &Session{verifier: v, store: s, log: log}
}

// Init restores the signed-in user from the store. A marker that cannot be
// decoded is removed and the session stays signed out.
func (s *Session) Init(ctx context.Context) error {
	raw, ok, err := s.store.Get(ctx, StorageKey)
	if err != nil {
		return fmt.Errorf("auth.Session.Init: %w", err)
	}
	if !ok {
		return nil
	}

	var u User
	if err := json.Unmarshal(raw, &u); err != nil || strings.TrimSpace(u.Username) == "" {
		s.log.WarnContext(ctx, "discarding unreadable sign-in marker", "error", err)
		if err := s.store.Delete(ctx, StorageKey); err != nil {
			return fmt.Errorf("auth.Session.Init: %w", err)
		}
		return nil
	}

	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()
	return nil
}

// Login checks the credentials and, on success, persists and holds the user.
func (s *Session) Login(ctx context.Context, username, password string) error {
	if !s.verifier.Verify(ctx, username, password) {
		return ErrInvalidCredentials
	}

	u := User{Username: username}
	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("auth.Session.Login: %w", err)
	}
	if err := s.store.Set(ctx, StorageKey, raw); err != nil {
		return fmt.Errorf("auth.Session.Login: %w", err)
	}

	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()
	return nil
}

// Logout clears the user from the session and the store. The in-memory
// session is cleared even if the store fails.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()

	if err := s.store.Delete(ctx, StorageKey); err != nil {
		return fmt.Errorf("auth.Session.Logout: %w", err)
	}
	return nil
}

// User returns the signed-in user, if any.
func (s *Session) User() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

func (s *Session) IsAuthenticated() bool {
	_, ok := s.User()
	return ok
}
