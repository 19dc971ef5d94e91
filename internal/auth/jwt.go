// Package auth holds the credential primitives of the API: bcrypt password
// hashing, the legacy SHA-256 body token, and expiring JWT access tokens.
//
// Two token kinds coexist:
//
//  1. The body token ({hash, email, expiry}) sent inside every JSON request.
//     It is what existing clients use and is verified by DigestService.
//  2. An optional HS256 JWT ("accessToken") sent as "Authorization: Bearer".
//     It carries the email in "sub" and expires. Enabled when a JWT secret
//     is configured.
//
// Neither is stored server-side.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// issuer is stamped into every access token and required on validation, so
// tokens minted by other services sharing the secret are rejected.
const issuer = "ess-backend"

// DefaultAccessTokenTTL is used when a non-positive TTL is configured.
const DefaultAccessTokenTTL = 24 * time.Hour

// TokenService signs and validates JWT access tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a TokenService. The secret should be at least
// 32 bytes of random data in production: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if ttl <= 0 {
		ttl = DefaultAccessTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Generate signs an access token for email with the configured lifetime.
func (s *TokenService) Generate(email string) (string, error) {
	return s.GenerateWithDuration(email, s.ttl)
}

// GenerateWithDuration signs an access token for email that expires after d.
func (s *TokenService) GenerateWithDuration(email string, d time.Duration) (string, error) {
	now := s.now()

	c := jwt.RegisteredClaims{
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(d)),
		Issuer:    issuer,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Validate verifies signature, algorithm, issuer and expiry and returns the
// email stored in "sub".
//
// WithValidMethods pins HS256, which shuts out "alg: none" and RSA/HMAC
// confusion tricks.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	var c jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&c,
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", fmt.Errorf("auth: token expired")
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", fmt.Errorf("auth: invalid token signature")
		case errors.Is(err, jwt.ErrTokenMalformed):
			return "", fmt.Errorf("auth: malformed token")
		}
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("auth: invalid token claims")
	}

	if c.Subject == "" {
		return "", fmt.Errorf("auth: token has no subject")
	}
	return c.Subject, nil
}
