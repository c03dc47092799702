package repository

import (
	"context"
	"sync"
	"time"

	"github.com/ninadrathod/my-website/internal/session/domain"
)

// MemoryRepository is an in-process Repository. State is lost on restart.
type MemoryRepository struct {
	mu sync.RWMutex
	m  map[string]domain.Session
}

// NewMemoryRepository returns an empty in-memory session repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{m: make(map[string]domain.Session)}
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.m[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *MemoryRepository) Upsert(ctx context.Context, id string, expiresAt, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.m[id]
	if !ok {
		s = domain.Session{ID: id, CreatedAt: truncMillis(now)}
	}
	s.ExpiresAt = truncMillis(expiresAt)
	s.UpdatedAt = truncMillis(now)
	r.m[id] = s
	return nil
}

func (r *MemoryRepository) Insert(ctx context.Context, id string, expiresAt, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.m[id]; ok {
		return false, nil
	}
	r.m[id] = domain.Session{
		ID:        id,
		ExpiresAt: truncMillis(expiresAt),
		CreatedAt: truncMillis(now),
		UpdatedAt: truncMillis(now),
	}
	return true, nil
}

func (r *MemoryRepository) Ping(ctx context.Context) error { return nil }

// truncMillis keeps memory records at the millisecond precision the durable stores use.
func truncMillis(t time.Time) time.Time {
	return time.UnixMilli(t.UnixMilli()).UTC()
}
