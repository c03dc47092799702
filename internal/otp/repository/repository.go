// Package repository persists active one-time codes keyed by session identifier.
package repository

import (
	"context"
	"time"

	"github.com/ninadrathod/my-website/internal/otp/domain"
)

// DefaultCodeTTL is the default lifetime of an unconsumed code.
const DefaultCodeTTL = 10 * time.Minute

// Repository defines persistence for one-time codes. Every method is a single atomic store operation.
type Repository interface {
	// Put stores c, replacing any code already held for c.SessionID.
	Put(ctx context.Context, c *domain.Code) error
	// Take removes and returns the code for sessionID, or nil if none. Two concurrent Takes for
	// the same sessionID never both receive the code.
	Take(ctx context.Context, sessionID string) (*domain.Code, error)
	// DeleteIf removes the code for sessionID only while it still has codeHash, so rolling back
	// one issuance never clears a newer one. Reports whether a row was removed.
	DeleteIf(ctx context.Context, sessionID, codeHash string) (bool, error)
	Ping(ctx context.Context) error
}
