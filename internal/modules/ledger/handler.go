package ledger

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/nota-backend/internal/apperr"
	"github.com/georgemunganga/nota-backend/internal/httpx"
	"github.com/georgemunganga/nota-backend/internal/modules/tenant"
)

// Handler exposes transaction and invoice HTTP endpoints.
type Handler struct {
	service  Service
	resolver *tenant.Resolver
}

func NewHandler(service Service, resolver *tenant.Resolver) *Handler {
	return &Handler{service: service, resolver: resolver}
}

// RegisterRoutes mounts the routes that need a verified identity.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/transactions", func(r chi.Router) {
		r.Get("/", h.listTransactions)
		r.Post("/", h.createTransaction)
		r.Get("/{filename}", h.getInvoice)
		r.Put("/{filename}", h.updateTransaction)
		r.Delete("/{filename}", h.deleteTransaction)
	})
	r.Get("/api/v1/tenants/{tenant}/invoices/{filename}", h.getTenantInvoice)
}

// RegisterPublicRoutes mounts the shared-link route. It serves single
// documents only; there is no public listing.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/public/invoices/{tenant}/{filename}", h.getPublicInvoice)
}

func (h *Handler) listTransactions(w http.ResponseWriter, r *http.Request) {
	ns, err := h.resolver.FromContext(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	txs, err := h.service.ListTransactions(r.Context(), ns)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusOK, Presentable(txs))
}

func (h *Handler) createTransaction(w http.ResponseWriter, r *http.Request) {
	ns, err := h.resolver.FromContext(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	var req CreateTransactionRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	tx, err := h.service.CreateTransaction(r.Context(), ns, req)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusCreated, tx)
}

func (h *Handler) updateTransaction(w http.ResponseWriter, r *http.Request) {
	ns, err := h.resolver.FromContext(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	var req UpdateTransactionRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	tx, err := h.service.UpdateTransaction(r.Context(), ns, chi.URLParam(r, "filename"), req)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusOK, tx)
}

func (h *Handler) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	ns, err := h.resolver.FromContext(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	if err := h.service.DeleteTransaction(r.Context(), ns, chi.URLParam(r, "filename")); err != nil {
		httpx.Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	ns, err := h.resolver.FromContext(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	h.writeInvoice(w, r, ns)
}

func (h *Handler) getTenantInvoice(w http.ResponseWriter, r *http.Request) {
	ns, err := h.resolver.AuthorizeContext(r.Context(), chi.URLParam(r, "tenant"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	h.writeInvoice(w, r, ns)
}

func (h *Handler) getPublicInvoice(w http.ResponseWriter, r *http.Request) {
	ns, err := h.resolver.Resolve(chi.URLParam(r, "tenant"))
	if err != nil {
		// an unknown tenant looks the same as an unknown invoice
		httpx.Error(w, apperr.NotFound("invoice not found"))
		return
	}
	h.writeInvoice(w, r, ns)
}

func (h *Handler) writeInvoice(w http.ResponseWriter, r *http.Request, ns tenant.Namespace) {
	doc, err := h.service.GetInvoiceDocument(r.Context(), ns, chi.URLParam(r, "filename"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusOK, doc)
}
