package security

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"time"
)

// NewTestGrantProvider returns a GrantProvider over a freshly generated P-256 key with a 2 minute
// grant lifetime. For unit tests only.
func NewTestGrantProvider(nowF func() time.Time) (*GrantProvider, error) {
	k, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, err
	}
	return NewGrantProvider(k, k.Public(), "test-issuer", "test-audience", 2*time.Minute, nowF), nil
}
