// Package server assembles the HTTP surface over the store's modules.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/georgemunganga/nota-backend/internal/httpx"
	"github.com/georgemunganga/nota-backend/internal/modules/auth"
)

// Routes is a module handler. Authenticated routes are mounted behind the
// token check; public ones are not.
type Routes interface {
	RegisterRoutes(r chi.Router)
}

// PublicRoutes is implemented by handlers that also serve unauthenticated
// routes.
type PublicRoutes interface {
	RegisterPublicRoutes(r chi.Router)
}

// Options configures the router.
type Options struct {
	Tokens       *auth.Tokens
	Log          logrus.FieldLogger
	MaxBodyBytes int64
	CORSOrigins  []string
	Timeout      time.Duration
}

// NewRouter builds the chi router with every handler mounted.
func NewRouter(opts Options, handlers ...Routes) http.Handler {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(opts.Log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         600,
	}))
	r.Use(middleware.Timeout(opts.Timeout))
	r.Use(limitBody(opts.MaxBodyBytes))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.Respond(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	for _, h := range handlers {
		if p, ok := h.(PublicRoutes); ok {
			p.RegisterPublicRoutes(r)
		}
	}
	r.Group(func(r chi.Router) {
		r.Use(auth.Authenticate(opts.Tokens))
		for _, h := range handlers {
			h.RegisterRoutes(r)
		}
	})
	return r
}
