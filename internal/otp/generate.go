package otp

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strconv"
)

// Code length bounds. A code of n digits never starts with 0.
const (
	MinLength     = 4
	MaxLength     = 9
	DefaultLength = 5
)

// ErrInvalidLength is returned for a code length outside MinLength..MaxLength.
var ErrInvalidLength = errors.New("otp: invalid code length")

// Generate returns a numeric code of length digits drawn uniformly from [10^(length-1), 10^length)
// using crypto/rand.
func Generate(length int) (string, error) {
	if length < MinLength || length > MaxLength {
		return "", ErrInvalidLength
	}
	low := pow10(length - 1)
	span := new(big.Int).SetInt64(pow10(length) - low)
	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(low+n.Int64(), 10), nil
}

// WellFormed reports whether candidate is exactly length ASCII digits.
func WellFormed(candidate string, length int) bool {
	if len(candidate) != length {
		return false
	}
	for i := 0; i < len(candidate); i++ {
		if candidate[i] < '0' || candidate[i] > '9' {
			return false
		}
	}
	return true
}

func pow10(n int) int64 {
	p := int64(1)
	for i := 0; i < n; i++ {
		p *= 10
	}
	return p
}
