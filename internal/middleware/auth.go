package middleware

import (
	"context"
	"net/http"
	"strings"

	"chat-notify/internal/auth"
)

type contextKey string

const identityKey contextKey = "identity"

// TokenVerifier is the consumed identity capability: given a bearer token,
// return the authenticated identity or fail.
type TokenVerifier interface {
	Verify(token string) (*auth.Identity, error)
}

// Auth rejects the request before any session resources are allocated when
// the bearer token is missing or invalid. The token is read from the
// Authorization header, with a token query parameter fallback because
// EventSource cannot set headers.
func Auth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				http.Error(w, `{"error":"Missing authentication token"}`, http.StatusUnauthorized)
				return
			}

			identity, err := verifier.Verify(token)
			if err != nil {
				http.Error(w, `{"error":"Invalid or expired token"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

// GetIdentity returns the authenticated identity stored by Auth.
func GetIdentity(ctx context.Context) (*auth.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(*auth.Identity)
	return identity, ok
}

// WithIdentity injects an identity into the context. Used by tests.
func WithIdentity(ctx context.Context, identity *auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}
