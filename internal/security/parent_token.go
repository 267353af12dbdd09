package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenInvalid = errors.New("invalid parent token")
	ErrTokenExpired = errors.New("parent token expired")
)

const parentTokenIssuer = "stellarstep"

// ParentTokenIssuer mints and verifies short-lived HS256 tokens that prove a
// successful parent-password check. An empty secret disables issuance and the
// corresponding route guard.
type ParentTokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewParentTokenIssuer creates a new issuer. secret may be empty to disable.
func NewParentTokenIssuer(secret string, ttl time.Duration) *ParentTokenIssuer {
	return &ParentTokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Enabled reports whether a signing secret is configured
func (i *ParentTokenIssuer) Enabled() bool {
	return len(i.secret) > 0
}

// Issue returns a signed token whose subject is the user's external identity id
func (i *ParentTokenIssuer) Issue(firebaseUID string) (string, error) {
	if !i.Enabled() {
		return "", nil
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    parentTokenIssuer,
		Subject:   firebaseUID,
		ID:        uuid.New().String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign parent token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry and returns the token's subject
func (i *ParentTokenIssuer) Verify(tokenString string) (string, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithIssuer(parentTokenIssuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrTokenInvalid
	}

	return claims.Subject, nil
}
