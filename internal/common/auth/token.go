// internal/common/auth/token.go
package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "bursary-portal/internal/common/errors"
)

// TokenInfo is what the portal can read from a backend token without the
// signing key. The backend stays the only verifier.
type TokenInfo struct {
	Subject   string
	ExpiresAt time.Time
	Opaque    bool
}

// Inspect decodes token claims without verifying the signature. Tokens that
// are not JWTs are reported as opaque.
func Inspect(token string) TokenInfo {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return TokenInfo{Opaque: true}
	}
	info := TokenInfo{Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info
}

// CheckUsable rejects empty tokens and JWTs whose exp lies before now.
// Opaque tokens and tokens without exp are left for the backend to judge.
func CheckUsable(token string, now time.Time) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return apperrors.NewAuthenticationError("no bearer token in storage")
	}
	info := Inspect(token)
	if info.Opaque || info.ExpiresAt.IsZero() {
		return nil
	}
	if !now.Before(info.ExpiresAt) {
		return apperrors.NewAuthenticationError(jwt.ErrTokenExpired.Error())
	}
	return nil
}
