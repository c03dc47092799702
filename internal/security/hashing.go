package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes one-time codes with bcrypt so a leaked store row does not reveal a live code.
// Callers must not log plaintext codes.
type Hasher struct {
	Cost int
}

// NewHasher returns a Hasher with the given bcrypt cost, clamped to 4–31. 0 uses bcrypt.DefaultCost.
func NewHasher(cost int) *Hasher {
	switch {
	case cost <= 0:
		cost = bcrypt.DefaultCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &Hasher{Cost: cost}
}

// Hash returns the bcrypt hash of code.
func (h *Hasher) Hash(code string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(code), h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Matches reports whether code hashes to hash. A malformed hash is an error; a plain mismatch is not.
func (h *Hasher) Matches(hash, code string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(code))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}
