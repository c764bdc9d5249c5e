package jwttoken

import (
	"chronoledger/internal/platform/middleware"
)

// Verifier exposes a JWTService to the principal middleware.
type Verifier struct {
	tokens *JWTService
}

// Verifier returns the middleware-facing view of s.
func (s *JWTService) Verifier() Verifier {
	return Verifier{tokens: s}
}

func (v Verifier) ValidateToken(raw string) (*middleware.TokenClaims, error) {
	claims, err := v.tokens.ValidateToken(raw)
	if err != nil {
		return nil, err
	}
	return &middleware.TokenClaims{Principal: claims.Subject, JTI: claims.ID}, nil
}
