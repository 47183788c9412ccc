// Package app wires the store's modules together. The serve, migrate and
// reindex commands all build one App.
package app

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/georgemunganga/nota-backend/internal/config"
	"github.com/georgemunganga/nota-backend/internal/modules/auth"
	"github.com/georgemunganga/nota-backend/internal/modules/catalog"
	"github.com/georgemunganga/nota-backend/internal/modules/invoicing"
	"github.com/georgemunganga/nota-backend/internal/modules/ledger"
	"github.com/georgemunganga/nota-backend/internal/modules/migration"
	"github.com/georgemunganga/nota-backend/internal/modules/settings"
	"github.com/georgemunganga/nota-backend/internal/modules/tenant"
	"github.com/georgemunganga/nota-backend/internal/server"
	"github.com/georgemunganga/nota-backend/internal/storage"
)

// App holds the constructed services.
type App struct {
	Config   *config.Configuration
	Log      logrus.FieldLogger
	Store    *storage.Store
	Resolver *tenant.Resolver
	Tokens   *auth.Tokens

	Auth     auth.Service
	Settings settings.Service
	Catalog  catalog.Service
	Numbers  invoicing.Service
	Ledger   ledger.Service
	Migrator *migration.Migrator
}

// New opens the data directory and builds every service.
func New(cfg *config.Configuration, log logrus.FieldLogger) (*App, error) {
	store, err := storage.New(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	ledgerRepo := ledger.NewFileRepository(store)
	resolver := tenant.NewResolver(store, log,
		settings.Seed,
		catalog.Seed,
		invoicing.NewSeed(ledgerRepo.MaxInvoiceNumber),
		ledger.Seed,
	)

	// ── Ledger & numbering ──────────────────────────────────
	numbers := invoicing.NewService(store, ledgerRepo.MaxInvoiceNumber, log)
	ledgerService := ledger.NewService(ledgerRepo, ledger.NewFileMirror(store), numbers, log)

	// ── Accounts ────────────────────────────────────────────
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	authService := auth.NewService(auth.NewFileRepository(store), tokens, resolver, log, 0)

	return &App{
		Config:   cfg,
		Log:      log,
		Store:    store,
		Resolver: resolver,
		Tokens:   tokens,
		Auth:     authService,
		Settings: settings.NewService(settings.NewFileRepository(store), log),
		Catalog:  catalog.NewService(catalog.NewFileRepository(store), log),
		Numbers:  numbers,
		Ledger:   ledgerService,
		Migrator: migration.New(store, resolver, cfg.LegacyBucket, log),
	}, nil
}

// Handler returns the HTTP surface.
func (a *App) Handler() http.Handler {
	return server.NewRouter(server.Options{
		Tokens:       a.Tokens,
		Log:          a.Log,
		MaxBodyBytes: a.Config.MaxBodyBytes,
		CORSOrigins:  a.Config.CORSOrigins,
	},
		auth.NewHandler(a.Auth),
		settings.NewHandler(a.Settings, a.Resolver),
		catalog.NewHandler(a.Catalog, a.Resolver),
		invoicing.NewHandler(a.Numbers, a.Resolver),
		ledger.NewHandler(a.Ledger, a.Resolver),
	)
}

// ReindexReport is the outcome for one tenant.
type ReindexReport struct {
	TenantID string
	Written  int
	Err      error
}

// Reindex rebuilds invoice mirrors from the ledger for the given tenants, or
// for every tenant on disk when none are given.
func (a *App) Reindex(ctx context.Context, tenantIDs ...string) ([]ReindexReport, error) {
	if len(tenantIDs) == 0 {
		ids, err := a.Resolver.Tenants()
		if err != nil {
			return nil, err
		}
		tenantIDs = ids
	}
	reports := make([]ReindexReport, 0, len(tenantIDs))
	for _, id := range tenantIDs {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		rep := ReindexReport{TenantID: id}
		ns, err := a.Resolver.Resolve(id)
		if err == nil {
			rep.Written, err = a.Ledger.RebuildMirrors(ctx, ns)
		}
		rep.Err = err
		reports = append(reports, rep)
	}
	return reports, nil
}
