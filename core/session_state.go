package core

import (
	"context"
	"sync"
)

// SessionState maps caller identities to their authentication state.
type SessionState interface {
	// Read returns the caller's session; unknown callers are anonymous.
	Read(ctx context.Context, callerID string) (Session, error)
	// SetAuthenticated records the caller as logged in, replacing any prior value.
	SetAuthenticated(ctx context.Context, callerID string, cred Credential) error
}

// MemorySessionState keeps sessions in process memory.
type MemorySessionState struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func NewMemorySessionState() *MemorySessionState {
	return &MemorySessionState{sessions: make(map[string]Session)}
}

func (s *MemorySessionState) Read(_ context.Context, callerID string) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[callerID], nil
}

func (s *MemorySessionState) SetAuthenticated(_ context.Context, callerID string, cred Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[callerID] = Session{Username: cred.Username, LoggedIn: true}
	return nil
}
