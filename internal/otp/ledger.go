// Package otp implements the one-time code ledger: issuing, one-shot verification and rollback of
// numeric codes keyed by session identifier.
package otp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ninadrathod/my-website/internal/otp/domain"
	"github.com/ninadrathod/my-website/internal/otp/repository"
	"github.com/ninadrathod/my-website/internal/security"
)

var (
	// ErrStoreUnavailable wraps any failure of the backing store.
	ErrStoreUnavailable = errors.New("otp: store unavailable")
	// ErrMalformedCode is returned by Verify for a candidate that is not a code of the configured
	// length. Nothing is consumed.
	ErrMalformedCode = errors.New("otp: malformed code")
)

// Outcome is the result of one verification attempt.
type Outcome string

const (
	OutcomeMatch    Outcome = "match"
	OutcomeMismatch Outcome = "mismatch"
	OutcomeExpired  Outcome = "expired"
	OutcomeNoCode   Outcome = "no_code"
)

// Issued is a freshly stored code. Code is the plaintext to dispatch and is never persisted.
type Issued struct {
	SessionID string
	Email     string
	Code      string
	ExpiresAt time.Time
	hash      string
}

// Verification is the result of Verify. Email is the address the code was issued to when one was held.
type Verification struct {
	Outcome Outcome
	Email   string
}

// OK reports whether the candidate matched a live code.
func (v Verification) OK() bool { return v.Outcome == OutcomeMatch }

// Ledger issues and verifies one-time codes.
type Ledger struct {
	repo   repository.Repository
	hasher *security.Hasher
	length int
	ttl    time.Duration
	nowF   func() time.Time
}

// NewLedger returns a code ledger. length outside MinLength..MaxLength uses DefaultLength; ttl <= 0
// uses repository.DefaultCodeTTL; nowF may be nil.
func NewLedger(repo repository.Repository, hasher *security.Hasher, length int, ttl time.Duration, nowF func() time.Time) *Ledger {
	if length < MinLength || length > MaxLength {
		length = DefaultLength
	}
	if ttl <= 0 {
		ttl = repository.DefaultCodeTTL
	}
	if nowF == nil {
		nowF = time.Now
	}
	return &Ledger{repo: repo, hasher: hasher, length: length, ttl: ttl, nowF: nowF}
}

// Length is the number of digits in issued codes.
func (l *Ledger) Length() int { return l.length }

// Issue generates a code for sessionID and stores its hash, replacing any prior code for that session.
func (l *Ledger) Issue(ctx context.Context, sessionID, email string) (*Issued, error) {
	code, err := Generate(l.length)
	if err != nil {
		return nil, err
	}
	hash, err := l.hasher.Hash(code)
	if err != nil {
		return nil, fmt.Errorf("otp: hash code: %w", err)
	}
	now := l.nowF().UTC()
	rec := &domain.Code{
		SessionID: sessionID,
		Email:     email,
		CodeHash:  hash,
		IssuedAt:  now,
		ExpiresAt: now.Add(l.ttl),
	}
	if err := l.repo.Put(ctx, rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return &Issued{SessionID: sessionID, Email: email, Code: code, ExpiresAt: rec.ExpiresAt, hash: hash}, nil
}

// Discard rolls back iss. A newer code issued for the same session in the meantime is left alone.
func (l *Ledger) Discard(ctx context.Context, iss *Issued) error {
	if iss == nil {
		return nil
	}
	if _, err := l.repo.DeleteIf(ctx, iss.SessionID, iss.hash); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Verify consumes the code held for sessionID, whatever the outcome, and compares it with candidate.
// The code is removed before the comparison, so concurrent attempts cannot both match.
func (l *Ledger) Verify(ctx context.Context, sessionID, candidate string) (Verification, error) {
	if !WellFormed(candidate, l.length) {
		return Verification{}, ErrMalformedCode
	}
	rec, err := l.repo.Take(ctx, sessionID)
	if err != nil {
		return Verification{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if rec == nil {
		return Verification{Outcome: OutcomeNoCode}, nil
	}
	if rec.ExpiredAt(l.nowF()) {
		return Verification{Outcome: OutcomeExpired, Email: rec.Email}, nil
	}
	ok, err := l.hasher.Matches(rec.CodeHash, candidate)
	if err != nil {
		return Verification{}, fmt.Errorf("otp: compare code: %w", err)
	}
	if !ok {
		return Verification{Outcome: OutcomeMismatch, Email: rec.Email}, nil
	}
	return Verification{Outcome: OutcomeMatch, Email: rec.Email}, nil
}

// Ping checks the backing store.
func (l *Ledger) Ping(ctx context.Context) error {
	if err := l.repo.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
