package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/prasenjit/swagger-hub/internal/api"
	"github.com/prasenjit/swagger-hub/internal/config"
	"github.com/prasenjit/swagger-hub/internal/logging"
	"github.com/prasenjit/swagger-hub/internal/stats"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the swagger-hub server",
	Long: `Starts the swagger-hub server.

The server will:
  - Resolve the document list from the configured hub section
  - Serve the merged document at /swagger/v1/swagger.json
  - Expose the Admin API at /_api/

Configuration is loaded from config.yaml in the current directory,
or specify a custom config file with the --config flag.` + hubSectionHelp,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntP("port", "p", 0, "Override server port")
	serveCmd.Flags().String("log-level", "", "Override log level (debug, info, warn, error)")

	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("logging.level", serveCmd.Flags().Lookup("log-level"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	logger := logging.NewLogger(cfg.Logging, os.Stderr)

	root, err := loadHubSection()
	if err != nil {
		return err
	}

	store, err := newStorage(cfg.Storage, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	collector := stats.NewCollector()

	provider, err := newProvider(cfg, root, store, collector, logger)
	if err != nil {
		return fmt.Errorf("invalid hub configuration: %w", err)
	}
	logger.Info("hub configured", "section", cfg.Hub.Section, "documents", len(provider.Option().Documents))

	router := api.NewRouter(provider, store, collector, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Hub.FetchTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting swagger-hub server", "addr", addr, "document", api.AggregatePath)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
	return nil
}
