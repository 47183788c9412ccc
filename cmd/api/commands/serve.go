package commands

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/georgemunganga/nota-backend/internal/printer"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Migrate legacy invoices, then serve the HTTP API",
	Long: `Runs the one-shot legacy migration (unless SKIP_MIGRATION is set) and
starts the HTTP API. The server only accepts requests once the migration has
finished. SIGINT or SIGTERM shut it down gracefully.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	a, log, err := bootstrap()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if a.Config.SkipMigration {
		log.Info("legacy migration skipped")
	} else if _, err := a.Migrator.Run(ctx); err != nil {
		log.WithError(err).Error("legacy migration failed")
		return printer.Error("Legacy migration failed", err.Error())
	}

	srv := &http.Server{
		Addr:              ":" + a.Config.Port,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("nota-backend listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("server stopped")
			return printer.Error("Server stopped", err.Error())
		}
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("graceful shutdown failed")
			return err
		}
	}
	return nil
}
