// Package repository persists expiry ledger records in memory, SQL (Postgres or SQLite) or Redis.
package repository

import (
	"context"
	"time"

	"github.com/ninadrathod/my-website/internal/session/domain"
)

// Repository defines persistence for session expiry records.
// Every mutating method is a single atomic store operation.
type Repository interface {
	// GetByID returns the record for id, or nil if not found.
	// It returns an error only for store failures, not for missing records.
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	// Upsert creates the record for id or overwrites its expiry in place. now stamps UpdatedAt
	// (and CreatedAt on insert).
	Upsert(ctx context.Context, id string, expiresAt, now time.Time) error
	// Insert creates the record for id only if none exists. It reports whether it wrote.
	Insert(ctx context.Context, id string, expiresAt, now time.Time) (bool, error)
	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}
