package security

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/rsa"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidGrant is returned when a grant is malformed, expired, or signed/issued for someone else.
var ErrInvalidGrant = errors.New("invalid grant")

// GrantClaims is the payload of a verification grant: proof that sid passed OTP verification at iat.
type GrantClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
}

// Grant is a validated verification grant.
type Grant struct {
	ID         string
	SessionID  string
	VerifiedAt time.Time
	ExpiresAt  time.Time
}

// GrantProvider issues and validates verification grants with RS256 or ES256.
type GrantProvider struct {
	privateKey crypto.Signer
	publicKey  crypto.PublicKey
	issuer     string
	audience   string
	ttl        time.Duration
	nowF       func() time.Time
}

// NewGrantProvider returns a provider that signs with privateKey and validates with publicKey.
// nowF may be nil (time.Now).
func NewGrantProvider(privateKey crypto.Signer, publicKey crypto.PublicKey, issuer, audience string, ttl time.Duration, nowF func() time.Time) *GrantProvider {
	if nowF == nil {
		nowF = time.Now
	}
	return &GrantProvider{
		privateKey: privateKey,
		publicKey:  publicKey,
		issuer:     issuer,
		audience:   audience,
		ttl:        ttl,
		nowF:       nowF,
	}
}

// Issue signs a grant for sessionID verified at verifiedAt. JWT timestamps have second
// precision, so verifiedAt should already be truncated to the second.
func (p *GrantProvider) Issue(sessionID string, verifiedAt time.Time) (string, error) {
	jti, err := generateJTI()
	if err != nil {
		return "", err
	}
	claims := GrantClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   sessionID,
			Issuer:    p.issuer,
			Audience:  jwt.ClaimStrings{p.audience},
			IssuedAt:  jwt.NewNumericDate(verifiedAt),
			ExpiresAt: jwt.NewNumericDate(verifiedAt.Add(p.ttl)),
		},
		SessionID: sessionID,
	}
	var method jwt.SigningMethod
	switch p.privateKey.Public().(type) {
	case *rsa.PublicKey:
		method = jwt.SigningMethodRS256
	case *ecdsa.PublicKey:
		method = jwt.SigningMethodES256
	default:
		return "", ErrInvalidKey
	}
	return jwt.NewWithClaims(method, claims).SignedString(p.privateKey)
}

// Validate parses tokenString and checks signature, exp, iss and aud.
func (p *GrantProvider) Validate(tokenString string) (*Grant, error) {
	alg := KeyAlg(p.publicKey)
	token, err := jwt.ParseWithClaims(tokenString, &GrantClaims{}, func(*jwt.Token) (interface{}, error) {
		return p.publicKey, nil
	},
		jwt.WithValidMethods([]string{alg}),
		jwt.WithIssuer(p.issuer),
		jwt.WithAudience(p.audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(p.nowF),
	)
	if err != nil {
		return nil, ErrInvalidGrant
	}
	claims, ok := token.Claims.(*GrantClaims)
	if !ok || !token.Valid || claims.SessionID == "" || claims.IssuedAt == nil {
		return nil, ErrInvalidGrant
	}
	return &Grant{
		ID:         claims.ID,
		SessionID:  claims.SessionID,
		VerifiedAt: claims.IssuedAt.Time.UTC(),
		ExpiresAt:  claims.ExpiresAt.Time.UTC(),
	}, nil
}

func generateJTI() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
