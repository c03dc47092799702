// Package devotp keeps plaintext codes by session identifier for GET /dev/otp. Only wired when
// dev OTP mode is enabled outside production.
package devotp

import (
	"context"
	"sync"
	"time"
)

// Store holds plain codes by session identifier for dev-only retrieval.
type Store interface {
	// Put stores otp for sessionID until expiresAt, replacing any earlier entry.
	Put(ctx context.Context, sessionID, otp string, expiresAt time.Time)
	// Get returns the otp for sessionID if present and not expired.
	Get(ctx context.Context, sessionID string) (otp string, expiresAt time.Time, ok bool)
	// Delete forgets the entry for sessionID.
	Delete(ctx context.Context, sessionID string)
}

type entry struct {
	otp       string
	expiresAt time.Time
}

// MemoryStore is an in-memory Store implementation.
type MemoryStore struct {
	mu   sync.Mutex
	m    map[string]entry
	nowF func() time.Time
}

// NewMemoryStore returns a new in-memory dev OTP store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		m:    make(map[string]entry),
		nowF: time.Now,
	}
}

func (s *MemoryStore) Put(ctx context.Context, sessionID, otp string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[sessionID] = entry{otp: otp, expiresAt: expiresAt}
}

// Get drops the entry when it has expired.
func (s *MemoryStore) Get(ctx context.Context, sessionID string) (string, time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.m[sessionID]
	if !ok {
		return "", time.Time{}, false
	}
	if !e.expiresAt.After(s.nowF()) {
		delete(s.m, sessionID)
		return "", time.Time{}, false
	}
	return e.otp, e.expiresAt, true
}

func (s *MemoryStore) Delete(ctx context.Context, sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, sessionID)
}
