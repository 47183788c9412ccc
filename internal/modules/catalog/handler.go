package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/nota-backend/internal/httpx"
	"github.com/georgemunganga/nota-backend/internal/modules/tenant"
)

// Handler exposes catalog HTTP endpoints.
type Handler struct {
	service  Service
	resolver *tenant.Resolver
}

func NewHandler(service Service, resolver *tenant.Resolver) *Handler {
	return &Handler{service: service, resolver: resolver}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", h.listProducts)
		r.Put("/", h.replaceProducts)
		r.Post("/", h.createProduct)
		r.Put("/{id}", h.updateProduct)
		r.Delete("/{id}", h.deleteProduct)
	})
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	ns, err := h.resolver.FromContext(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	products, err := h.service.ListProducts(r.Context(), ns)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusOK, products)
}

func (h *Handler) replaceProducts(w http.ResponseWriter, r *http.Request) {
	ns, err := h.resolver.FromContext(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	var req []ProductInput
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	products, err := h.service.ReplaceProducts(r.Context(), ns, req)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusOK, products)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	ns, err := h.resolver.FromContext(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	var req ProductInput
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	p, err := h.service.CreateProduct(r.Context(), ns, req)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusCreated, p)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	ns, err := h.resolver.FromContext(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	var req ProductInput
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	p, err := h.service.UpdateProduct(r.Context(), ns, chi.URLParam(r, "id"), req)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusOK, p)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	ns, err := h.resolver.FromContext(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	if err := h.service.DeleteProduct(r.Context(), ns, chi.URLParam(r, "id")); err != nil {
		httpx.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
