// Package session implements the expiry ledger: which client session identifiers are
// currently authorized, and until when.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ninadrathod/my-website/internal/session/domain"
	"github.com/ninadrathod/my-website/internal/session/repository"
)

var (
	// ErrStoreUnavailable wraps any failure of the backing store. A ledger read that fails
	// is never reported as an unauthorized session.
	ErrStoreUnavailable = errors.New("session: store unavailable")
	// ErrInvalidSessionID is returned when the identifier is not a UUID.
	ErrInvalidSessionID = errors.New("session: invalid session id")
)

// Reason explains why a session is not valid.
type Reason string

const (
	ReasonNone        Reason = ""
	ReasonNotFound    Reason = "not_found"
	ReasonExpired     Reason = "expired"
	ReasonInvalidated Reason = "invalidated"
)

// Validity is the result of IsValid.
type Validity struct {
	Valid     bool
	Reason    Reason
	ExpiresAt time.Time
}

// Ledger maps session identifiers to authorization expiry instants.
type Ledger struct {
	repo repository.Repository
	nowF func() time.Time
}

// NewLedger returns a ledger over repo. nowF may be nil (time.Now).
func NewLedger(repo repository.Repository, nowF func() time.Time) *Ledger {
	if nowF == nil {
		nowF = time.Now
	}
	return &Ledger{repo: repo, nowF: nowF}
}

// ParseID validates a client-supplied session identifier and returns its canonical form.
func ParseID(raw string) (string, error) {
	if raw == "" {
		return "", ErrInvalidSessionID
	}
	u, err := uuid.Parse(raw)
	if err != nil {
		return "", ErrInvalidSessionID
	}
	return u.String(), nil
}

// Exists reports whether a record is present for id, regardless of its expiry.
func (l *Ledger) Exists(ctx context.Context, id string) (bool, error) {
	s, err := l.get(ctx, id)
	if err != nil {
		return false, err
	}
	return s != nil, nil
}

// UpsertExpiry creates or overwrites the expiry for id in one atomic store call.
func (l *Ledger) UpsertExpiry(ctx context.Context, id string, expiresAt time.Time) error {
	if id == "" {
		return ErrInvalidSessionID
	}
	if err := l.repo.Upsert(ctx, id, expiresAt.UTC(), l.nowF().UTC()); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Invalidate force-expires id by writing the epoch. Idempotent, and creates the record if absent.
func (l *Ledger) Invalidate(ctx context.Context, id string) error {
	return l.UpsertExpiry(ctx, id, domain.Epoch)
}

// IsValid reports whether id is authorized now. Missing, expired and invalidated records are
// all invalid and are told apart by Reason.
func (l *Ledger) IsValid(ctx context.Context, id string) (Validity, error) {
	s, err := l.get(ctx, id)
	if err != nil {
		return Validity{}, err
	}
	switch {
	case s == nil:
		return Validity{Reason: ReasonNotFound}, nil
	case s.Invalidated():
		return Validity{Reason: ReasonInvalidated, ExpiresAt: s.ExpiresAt}, nil
	case !s.ActiveAt(l.nowF()):
		return Validity{Reason: ReasonExpired, ExpiresAt: s.ExpiresAt}, nil
	}
	return Validity{Valid: true, ExpiresAt: s.ExpiresAt}, nil
}

// Authorize applies expiresAt to id unless a record already exists. An existing record is
// never extended: it is reported as it stands, so replaying an authorization cannot prolong
// a session or revive one that was invalidated.
func (l *Ledger) Authorize(ctx context.Context, id string, expiresAt time.Time) (Validity, error) {
	if id == "" {
		return Validity{}, ErrInvalidSessionID
	}
	now := l.nowF().UTC()
	wrote, err := l.repo.Insert(ctx, id, expiresAt.UTC(), now)
	if err != nil {
		return Validity{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if wrote {
		s := domain.Session{ExpiresAt: expiresAt}
		if !s.ActiveAt(now) {
			return Validity{Reason: ReasonExpired, ExpiresAt: expiresAt.UTC()}, nil
		}
		return Validity{Valid: true, ExpiresAt: expiresAt.UTC()}, nil
	}
	return l.IsValid(ctx, id)
}

// Ping checks the backing store.
func (l *Ledger) Ping(ctx context.Context) error {
	if err := l.repo.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (l *Ledger) get(ctx context.Context, id string) (*domain.Session, error) {
	if id == "" {
		return nil, ErrInvalidSessionID
	}
	s, err := l.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return s, nil
}
