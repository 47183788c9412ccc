package invoicing

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/nota-backend/internal/httpx"
	"github.com/georgemunganga/nota-backend/internal/modules/tenant"
)

// Handler exposes the invoice number preview.
type Handler struct {
	service  Service
	resolver *tenant.Resolver
}

func NewHandler(service Service, resolver *tenant.Resolver) *Handler {
	return &Handler{service: service, resolver: resolver}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/v1/invoice-number/next", h.peek)
}

// NextNumberResponse previews the number the next sale will receive.
type NextNumberResponse struct {
	Number        int    `json:"number"`
	InvoiceNumber string `json:"invoiceNumber"`
}

func (h *Handler) peek(w http.ResponseWriter, r *http.Request) {
	ns, err := h.resolver.FromContext(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	n, err := h.service.PeekInvoiceNumber(r.Context(), ns)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusOK, NextNumberResponse{Number: n, InvoiceNumber: Format(n)})
}
