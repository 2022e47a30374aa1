package devapi

import (
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func randomSecret() ([]byte, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("generate secret: %w", err)
	}
	return b, nil
}

// issueToken signs a session token for u.
func (s *Server) issueToken(u *userRecord) (string, error) {
	now := s.now()
	c := claims{
		Role: u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.cfg.Secret)
}

var errRevoked = errors.New("token revoked")

// parseToken verifies signature, expiry and revocation.
func (s *Server) parseToken(raw string) (*claims, error) {
	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (any, error) {
		return s.cfg.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	_, revoked := s.revoked[c.ID]
	s.mu.RUnlock()
	if revoked {
		return nil, errRevoked
	}
	return &c, nil
}

// revoke invalidates a token by its ID.
func (s *Server) revoke(tokenID string) {
	s.mu.Lock()
	s.revoked[tokenID] = struct{}{}
	s.mu.Unlock()
}
