// Package session persists the small amount of client state that survives a
// restart: the bearer token and the signed-in username.
package session

import (
	"context"
	"errors"
	"sync"
)

// Well-known keys.
const (
	KeyToken    = "token"
	KeyUsername = "username"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("session: key not found")

// Store is a string key/value store.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Clear removes the credentials written at login.
func Clear(ctx context.Context, s Store) error {
	var errs []error
	for _, key := range []string{KeyToken, KeyUsername} {
		if err := s.Delete(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Lookup returns the value for key, or "" if it is unset or unreadable.
func Lookup(ctx context.Context, s Store, key string) string {
	v, err := s.Get(ctx, key)
	if err != nil {
		return ""
	}
	return v
}

// MemoryStore keeps values in process memory. Used by tests and as a fallback
// when the session database cannot be opened.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// Len returns the number of stored keys.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}
