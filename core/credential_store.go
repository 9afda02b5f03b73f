package core

import (
	"context"
	"sync"
)

// CredentialStore holds username -> password associations.
// Put must reject an existing username with ErrDuplicateAccount atomically,
// so two concurrent signups for the same name never both succeed.
type CredentialStore interface {
	Exists(ctx context.Context, username string) (bool, error)
	Get(ctx context.Context, username string) (Credential, bool, error)
	Put(ctx context.Context, username, password string) error
}

// MemoryCredentialStore keeps accounts in process memory.
type MemoryCredentialStore struct {
	mu       sync.RWMutex
	accounts map[string]string
}

func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{accounts: make(map[string]string)}
}

func (s *MemoryCredentialStore) Exists(_ context.Context, username string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.accounts[username]
	return ok, nil
}

func (s *MemoryCredentialStore) Get(_ context.Context, username string) (Credential, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	password, ok := s.accounts[username]
	if !ok {
		return Credential{}, false, nil
	}
	return Credential{Username: username, Password: password}, true, nil
}

func (s *MemoryCredentialStore) Put(_ context.Context, username, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[username]; ok {
		return &AuthError{Kind: ErrDuplicateAccount}
	}
	s.accounts[username] = password
	return nil
}

// Ping always succeeds for the in-memory store.
func (s *MemoryCredentialStore) Ping(context.Context) error { return nil }
