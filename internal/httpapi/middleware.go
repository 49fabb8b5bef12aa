package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/khan1-ui/go-storefront/internal/platform"
	"github.com/khan1-ui/go-storefront/internal/session"
)

type sessionCtxKey struct{}

// AuthMiddleware validates the bearer token, resolves the caller's session
// and forwards the same credential to platform API calls made downstream.
func AuthMiddleware(registry *session.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if raw == "" {
				respondError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
				return
			}

			s, err := registry.Authenticate(r.Context(), raw)
			if err != nil {
				respondError(w, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), sessionCtxKey{}, s)
			ctx = platform.WithToken(ctx, raw)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionFromContext(ctx context.Context) *session.Session {
	if s, ok := ctx.Value(sessionCtxKey{}).(*session.Session); ok {
		return s
	}
	return nil
}
