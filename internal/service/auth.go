package service

import (
	"fmt"

	"github.com/planmoni/assistant-bfa-go/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

// SupabaseTokenVerifier validates Supabase access tokens locally with the
// project's HS256 JWT secret, avoiding a round trip to the auth server on
// every turn. Full authentication flows (login, refresh, registration)
// live in the identity service, not here.
type SupabaseTokenVerifier struct {
	secret []byte
}

// NewSupabaseTokenVerifier creates a verifier for the given JWT secret.
func NewSupabaseTokenVerifier(secret string) *SupabaseTokenVerifier {
	return &SupabaseTokenVerifier{secret: []byte(secret)}
}

type supabaseClaims struct {
	jwt.RegisteredClaims
}

// Verify parses and validates the token and returns its subject (the
// Supabase user id).
func (v *SupabaseTokenVerifier) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &supabaseClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return "", &domain.ErrUnauthorized{Message: "invalid or expired token"}
	}

	claims, ok := token.Claims.(*supabaseClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", &domain.ErrUnauthorized{Message: "invalid token"}
	}

	return claims.Subject, nil
}
