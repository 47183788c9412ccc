package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/nota-backend/internal/httpx"
	"github.com/georgemunganga/nota-backend/internal/logger"
	"github.com/georgemunganga/nota-backend/internal/modules/auth"
	"github.com/georgemunganga/nota-backend/internal/modules/tenant"
)

type echoRoutes struct{}

func (echoRoutes) RegisterRoutes(r chi.Router) {
	r.Get("/whoami", func(w http.ResponseWriter, r *http.Request) {
		id, _ := tenant.IdentityFrom(r.Context())
		httpx.Respond(w, http.StatusOK, id)
	})
	r.Post("/echo", func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		_, _ = w.Write(body)
	})
}

func (echoRoutes) RegisterPublicRoutes(r chi.Router) {
	r.Get("/open", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func newRouter(t *testing.T, maxBody int64) (http.Handler, *auth.Tokens) {
	t.Helper()
	tokens := auth.NewTokens("test-secret", time.Hour)
	return NewRouter(Options{
		Tokens:       tokens,
		Log:          logger.Discard(),
		MaxBodyBytes: maxBody,
		CORSOrigins:  []string{"https://kasir.example"},
	}, echoRoutes{}), tokens
}

func TestNewRouter_PublicAndAuthenticated(t *testing.T) {
	h, tokens := newRouter(t, 0)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/open", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := tokens.Issue(tenant.Identity{TenantID: "user_a", Username: "budi", Role: "user"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"userId":"user_a"`)
}

func TestNewRouter_BodyLimit(t *testing.T) {
	h, tokens := newRouter(t, 8)
	token, err := tokens.Issue(tenant.Identity{TenantID: "user_a"})
	require.NoError(t, err)

	send := func(body string) int {
		req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}
	assert.Equal(t, http.StatusOK, send("short"))
	assert.Equal(t, http.StatusRequestEntityTooLarge, send("much longer than eight bytes"))
}

func TestCORS(t *testing.T) {
	h, _ := newRouter(t, 0)

	req := httptest.NewRequest(http.MethodOptions, "/whoami", nil)
	req.Header.Set("Origin", "https://kasir.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://kasir.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set("Origin", "https://elsewhere.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
