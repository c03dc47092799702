package domain

import "time"

// AuditLog is one recorded gate decision.
type AuditLog struct {
	ID        string
	SessionID string
	// Actor is the admin email when known, otherwise the anonymous sentinel.
	Actor     string
	Action    string
	Outcome   string
	IP        string
	Metadata  string
	CreatedAt time.Time
}
