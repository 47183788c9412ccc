package settings

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/nota-backend/internal/apperr"
	"github.com/georgemunganga/nota-backend/internal/httpx"
	"github.com/georgemunganga/nota-backend/internal/modules/tenant"
)

// Handler exposes settings HTTP endpoints.
type Handler struct {
	service  Service
	resolver *tenant.Resolver
}

func NewHandler(service Service, resolver *tenant.Resolver) *Handler {
	return &Handler{service: service, resolver: resolver}
}

// RegisterRoutes mounts the authenticated routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/v1/settings", h.getSettings)          // GET  /api/v1/settings
	r.Put("/api/v1/settings", h.saveSettings)         // PUT  /api/v1/settings
	r.Post("/api/v1/settings/logo", h.uploadLogo)     // POST /api/v1/settings/logo
	r.Get("/api/v1/tenants/{tenant}/logo", h.getLogo) // GET  /api/v1/tenants/{tenant}/logo
}

// RegisterPublicRoutes mounts the unauthenticated routes.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/public/settings/{tenant}", h.publicSettings) // GET /public/settings/{tenant}
}

func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	ns, err := h.resolver.FromContext(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	st, err := h.service.GetSettings(r.Context(), ns)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusOK, st)
}

func (h *Handler) saveSettings(w http.ResponseWriter, r *http.Request) {
	ns, err := h.resolver.FromContext(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	var req StoreSettings
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	st, err := h.service.SaveSettings(r.Context(), ns, req)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusOK, st)
}

func (h *Handler) uploadLogo(w http.ResponseWriter, r *http.Request) {
	ns, err := h.resolver.FromContext(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	var req UploadLogoRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	url, err := h.service.UploadLogo(r.Context(), ns, req)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusOK, map[string]interface{}{"success": true, "logoUrl": url})
}

func (h *Handler) getLogo(w http.ResponseWriter, r *http.Request) {
	ns, err := h.resolver.AuthorizeContext(r.Context(), chi.URLParam(r, "tenant"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	img, contentType, err := h.service.GetLogo(r.Context(), ns)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(img)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img)
}

func (h *Handler) publicSettings(w http.ResponseWriter, r *http.Request) {
	ns, err := h.resolver.Resolve(chi.URLParam(r, "tenant"))
	if err != nil {
		httpx.Error(w, apperr.NotFound("store not found"))
		return
	}
	st, err := h.service.PublicSettings(r.Context(), ns)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusOK, st)
}
