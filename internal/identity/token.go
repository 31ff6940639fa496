// Package identity integrates with the external identity provider: access
// token verification for requests that carry one, and a thin client for the
// provider's admin API.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates provider-issued HS256 access tokens and extracts the
// subject. The secret is the provider's JWT signing secret, shared with the
// backend through configuration.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) (*Verifier, error) {
	if len(secret) < 16 {
		return nil, errors.New("identity: JWT secret must be at least 16 characters")
	}
	return &Verifier{secret: []byte(secret)}, nil
}

type claims struct {
	jwt.RegisteredClaims
}

// Verify parses and verifies an access token, returning the subject (the
// provider's user id). Only HS256 is accepted.
func (v *Verifier) Verify(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("identity: unexpected signing method: %v", token.Header["alg"])
			}
			return v.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("identity: token expired")
		}
		return "", fmt.Errorf("identity: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("identity: invalid token claims")
	}
	if c.Subject == "" {
		return "", fmt.Errorf("identity: token has no subject")
	}
	return c.Subject, nil
}

type contextKey string

const userIDKey contextKey = "userID"

// Middleware verifies the Authorization bearer token when one is present and
// stores the subject in the request context. Requests without a header pass
// through unauthenticated; a header that fails verification is rejected.
// The provider fronts the app, so most traffic arrives without a token; the
// check protects direct API calls.
func Middleware(verifier *Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			tokenStr, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				http.Error(w, `{"error":"unauthorized","message":"malformed authorization header"}`, http.StatusUnauthorized)
				return
			}
			userID, err := verifier.Verify(tokenStr)
			if err != nil {
				http.Error(w, `{"error":"unauthorized","message":"invalid access token"}`, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithUserID(r.Context(), userID)))
		})
	}
}

// ContextWithUserID returns a copy of ctx carrying a verified user id, as the
// middleware stores it. Exposed for handler tests and non-HTTP callers.
func ContextWithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// UserIDFromContext returns the verified user id, or ("", false) for an
// unauthenticated request.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}
