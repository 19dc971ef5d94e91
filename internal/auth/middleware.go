package auth

import (
	"context"
	"net/http"
	"strings"
)

// contextKey is unexported so no other package can read or overwrite the
// identity stored by this middleware.
type contextKey string

const emailKey contextKey = "email"

// BearerAuth extracts the identity from an "Authorization: Bearer <jwt>"
// header when one is present and valid.
//
// It never rejects a request. Record endpoints fall back to the token object
// in the JSON body when no bearer identity is in the context, so a missing or
// bad header only means "authenticate the old way".
//
// A nil TokenService (access tokens disabled) makes this a pass-through.
func BearerAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokens != nil {
				if raw, ok := bearerToken(r); ok {
					if email, err := tokens.Validate(raw); err == nil {
						r = r.WithContext(WithEmail(r.Context(), email))
					}
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithEmail returns a copy of ctx carrying an authenticated email.
func WithEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, emailKey, email)
}

// EmailFromContext returns the email set by BearerAuth, or ("", false) when
// the request carried no valid bearer token.
func EmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(emailKey).(string)
	return email, ok && email != ""
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(h[len(prefix):]), true
}
