package catalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/nota-backend/internal/modules/tenant"
)

func TestHandler_Products(t *testing.T) {
	svc, resolver, _ := newTestService(t)
	r := chi.NewRouter()
	NewHandler(svc, resolver).RegisterRoutes(r)

	do := func(method, target, body string, id *tenant.Identity) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, target, strings.NewReader(body))
		if id != nil {
			req = req.WithContext(tenant.WithIdentity(req.Context(), *id))
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}
	caller := &tenant.Identity{TenantID: "user_1"}

	rec := do(http.MethodPost, "/api/v1/products", `{"name":"Kopi","price":5000,"stock":4}`, caller)
	require.Equal(t, http.StatusCreated, rec.Code)
	var p Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "Kopi", p.Name)

	rec = do(http.MethodGet, "/api/v1/products", "", caller)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Len(t, listed, 1)

	rec = do(http.MethodPost, "/api/v1/products", `{"price":1}`, caller)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_INPUT")

	rec = do(http.MethodDelete, "/api/v1/products/"+p.ID, "", caller)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(http.MethodDelete, "/api/v1/products/"+p.ID, "", caller)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(http.MethodGet, "/api/v1/products", "", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
