package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rgehrsitz/splittax/internal/api"
	"github.com/rgehrsitz/splittax/internal/store/sqlite"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		port   string
		dbPath string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		Long: `Starts the HTTP API. Port and database default to SPLITTAX_PORT and
SPLITTAX_DB (read from the environment or a .env file).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("port") {
				port = a.settings.Port
			}
			if !cmd.Flags().Changed("db") {
				dbPath = a.settings.DBPath
			}

			store, err := sqlite.New(dbPath)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer store.Close()

			handler := api.NewHandler(store, a.tables)
			handler.Version = version

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, a, &http.Server{
				Addr:         ":" + port,
				Handler:      api.NewRouter(handler),
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 15 * time.Second,
				IdleTimeout:  60 * time.Second,
			})
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "8080", "HTTP port")
	cmd.Flags().StringVar(&dbPath, "db", "splittax.db", "SQLite database path")
	return cmd
}

// serve runs server until ctx is done, then shuts it down gracefully
func serve(ctx context.Context, a *app, server *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		a.log.Infof("server starting on http://localhost%s", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	a.log.Info("server stopped")
	return nil
}
