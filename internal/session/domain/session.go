package domain

import "time"

// Epoch is the expiry written by invalidation. Stored as 0 Unix milliseconds in every backend.
var Epoch = time.UnixMilli(0).UTC()

// Session is the expiry ledger record for one client-generated session identifier.
// A session is authorized iff now < ExpiresAt. Records are never hard-deleted.
type Session struct {
	ID        string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Invalidated reports whether the record was force-expired.
func (s *Session) Invalidated() bool {
	return s != nil && s.ExpiresAt.UnixMilli() <= 0
}

// ActiveAt reports whether the session is authorized at now.
func (s *Session) ActiveAt(now time.Time) bool {
	return s != nil && now.Before(s.ExpiresAt)
}
