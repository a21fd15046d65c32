package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/phillip/evently-go/config"
	"github.com/phillip/evently-go/routes"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server and begin accepting API requests.

Configuration comes from the environment (and --env-file). The server
connects to MongoDB, creates missing indexes and shuts down gracefully on
SIGINT/SIGTERM.

Examples:
  evently serve
  evently serve --port 9090 --log-level debug`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			if port != "" {
				cfg.Port = port
			}
			return runServer(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "listen port (default: $PORT or 8080)")
	return cmd
}

func runServer(parent context.Context, cfg config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := config.NewLogger(cfg.Logging)
	logger.Info().Str("environment", cfg.Environment).Msg("starting evently server")

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	mongo := config.NewMongo(cfg.Mongo)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongo.Close(closeCtx); err != nil {
			logger.Error().Err(err).Msg("mongo disconnect error")
		}
	}()

	registry, err := openRegistry(ctx, cfg, mongo)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	app, err := buildApp(cfg, logger, registry, mongo)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.NewRouter(app, &cfg),
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
		return err
	}
	return nil
}
