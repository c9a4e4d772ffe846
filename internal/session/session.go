// Package session holds the client's authentication state: the bearer
// credential, where it is persisted, and what happens when the remote
// service rejects it.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Session is the credential shared by every call made through one client.
// The transport reads it before each request and clears it on a 401.
type Session struct {
	mu    sync.RWMutex
	token string
	store Store
}

// New creates an empty Session backed by store. A nil store keeps the
// token in memory only.
func New(store Store) *Session {
	if store == nil {
		store = NewMemoryStore("")
	}
	return &Session{store: store}
}

// Restore loads the persisted token, if any. A missing token is not an error.
func (s *Session) Restore(ctx context.Context) error {
	token, err := s.store.Load(ctx)
	if errors.Is(err, ErrNoToken) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

// Token returns the current credential and whether one is held.
func (s *Session) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

// Set replaces the credential and persists it.
func (s *Session) Set(ctx context.Context, token string) error {
	if token == "" {
		return errors.New("session token must not be empty")
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	if err := s.store.Save(ctx, token); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// Clear drops the credential from memory and from the store. The in-memory
// token is gone even when the store delete fails.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()

	if err := s.store.Delete(ctx); err != nil {
		return fmt.Errorf("delete persisted session: %w", err)
	}
	return nil
}
