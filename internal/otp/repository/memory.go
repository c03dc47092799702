package repository

import (
	"context"
	"sync"

	"github.com/ninadrathod/my-website/internal/otp/domain"
)

// MemoryRepository is an in-process Repository.
type MemoryRepository struct {
	mu sync.Mutex
	m  map[string]domain.Code
}

// NewMemoryRepository returns an empty in-memory code repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{m: make(map[string]domain.Code)}
}

func (r *MemoryRepository) Put(ctx context.Context, c *domain.Code) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[c.SessionID] = *c
	return nil
}

func (r *MemoryRepository) Take(ctx context.Context, sessionID string) (*domain.Code, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.m[sessionID]
	if !ok {
		return nil, nil
	}
	delete(r.m, sessionID)
	return &c, nil
}

func (r *MemoryRepository) DeleteIf(ctx context.Context, sessionID, codeHash string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.m[sessionID]
	if !ok || c.CodeHash != codeHash {
		return false, nil
	}
	delete(r.m, sessionID)
	return true, nil
}

func (r *MemoryRepository) Ping(ctx context.Context) error { return nil }
