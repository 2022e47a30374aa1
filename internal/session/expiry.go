package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// expired reports whether token is a JWT whose exp claim is in the past.
// The signature is not checked; only the backend can do that. Opaque
// tokens and JWTs without exp are never considered expired.
func expired(token string) bool {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !claims.ExpiresAt.After(time.Now())
}
