package repository

import (
	"context"

	"github.com/ninadrathod/my-website/internal/audit/domain"
)

// Repository defines persistence for audit logs.
type Repository interface {
	Create(ctx context.Context, a *domain.AuditLog) error
	// ListBySession returns up to limit entries for sessionID, newest first.
	ListBySession(ctx context.Context, sessionID string, limit int) ([]*domain.AuditLog, error)
}
