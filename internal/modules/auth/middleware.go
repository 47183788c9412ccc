package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/georgemunganga/nota-backend/internal/apperr"
	"github.com/georgemunganga/nota-backend/internal/httpx"
	"github.com/georgemunganga/nota-backend/internal/modules/tenant"
)

// Authenticate verifies the Bearer token and attaches its identity to the
// request context. Requests without a valid token stop here with 401.
func Authenticate(tokens *Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearer(r)
			if raw == "" {
				httpx.Fail(w, http.StatusUnauthorized, apperr.CodeUnauthorized, "authentication required")
				return
			}
			id, err := tokens.Verify(raw)
			if err != nil {
				msg := "invalid token"
				if errors.Is(err, ErrTokenExpired) {
					msg = err.Error()
				}
				httpx.Fail(w, http.StatusUnauthorized, apperr.CodeUnauthorized, msg)
				return
			}
			next.ServeHTTP(w, r.WithContext(tenant.WithIdentity(r.Context(), id)))
		})
	}
}

func bearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}
