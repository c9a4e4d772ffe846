package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultDevTokenTTL is the lifetime of tokens minted for the dev server.
const DefaultDevTokenTTL = 24 * time.Hour

// ErrNotJWT is returned by Inspect for opaque credentials.
var ErrNotJWT = errors.New("token is not a JWT")

// TokenInfo is what the client can learn about a credential without the
// signing key.
type TokenInfo struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token carries an expiry that has passed.
func (i *TokenInfo) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && now.After(i.ExpiresAt)
}

// Inspect reads the registered claims of a JWT without verifying it.
// The remote service remains the authority on validity.
func Inspect(token string) (*TokenInfo, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotJWT, err)
	}

	info := &TokenInfo{Subject: claims.Subject}
	if claims.IssuedAt != nil {
		info.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info, nil
}

// MintDevToken signs an HS256 token for the local dev server.
func MintDevToken(secret, subject string, ttl time.Duration) (token string, expiresAt time.Time, err error) {
	if secret == "" {
		return "", time.Time{}, errors.New("JWT secret not configured")
	}
	if ttl <= 0 {
		ttl = DefaultDevTokenTTL
	}

	now := time.Now()
	expiresAt = now.Add(ttl)
	claims := &jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Subject:   subject,
	}

	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, expiresAt, nil
}
