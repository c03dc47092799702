package domain

import "time"

// Code is the active one-time code for one requester. Only the bcrypt hash of the code is kept.
// There is at most one Code per SessionID; issuing again replaces it.
type Code struct {
	SessionID string
	Email     string
	CodeHash  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// ExpiredAt reports whether the code can no longer be verified at now.
func (c *Code) ExpiredAt(now time.Time) bool {
	return c == nil || !now.Before(c.ExpiresAt)
}
