package auth

import (
	"errors"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/nota-backend/internal/apperr"
	"github.com/georgemunganga/nota-backend/internal/httpx"
	"github.com/georgemunganga/nota-backend/internal/modules/tenant"
)

// Handler exposes account endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

// RegisterPublicRoutes mounts register and login.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/api/v1/auth/register", h.register)
	r.Post("/api/v1/auth/login", h.login)
}

// RegisterRoutes mounts the routes behind Authenticate.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/v1/auth/verify", h.verify)
	r.Put("/api/v1/auth/password", h.changePassword)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	sess, err := h.service.Register(r.Context(), req)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusCreated, sess)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	sess, err := h.service.Login(r.Context(), req, clientKey(r))
	if err != nil {
		var locked *LockedOutError
		switch {
		case errors.As(err, &locked):
			w.Header().Set("Retry-After", strconv.Itoa(int(locked.RetryAfter.Seconds())))
			httpx.Fail(w, http.StatusTooManyRequests, apperr.CodeUnauthorized, locked.Error())
		case apperr.CodeOf(err) == apperr.CodeUnauthorized:
			httpx.Fail(w, http.StatusUnauthorized, apperr.CodeUnauthorized, apperr.MessageOf(err))
		default:
			httpx.Error(w, err)
		}
		return
	}
	httpx.Respond(w, http.StatusOK, sess)
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	id, ok := tenant.IdentityFrom(r.Context())
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, apperr.CodeUnauthorized, "authentication required")
		return
	}
	httpx.Respond(w, http.StatusOK, map[string]interface{}{"valid": true, "user": id})
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := tenant.IdentityFrom(r.Context())
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, apperr.CodeUnauthorized, "authentication required")
		return
	}
	var req ChangePasswordRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	sess, err := h.service.ChangePassword(r.Context(), id, req)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusOK, sess)
}

// clientKey is the remote host. chi's RealIP middleware has already applied
// forwarding headers when it is installed.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
