package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"charge-relay/internal/config"
	"charge-relay/internal/forwarder"
	"charge-relay/internal/logging"
	"charge-relay/internal/middleware"
	"charge-relay/internal/ratelimit"
	"charge-relay/internal/server"
	"charge-relay/internal/webhooks"

	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "charge-relay",
	Short: "Relay confirmed charges from the payment provider to the job intake service",
	Long: `charge-relay receives signed payment-provider webhooks, verifies them,
and forwards confirmed charges as job records to the intake service.

Running without a subcommand starts the HTTP server.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.AddCommand(signCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func runServer(ctx context.Context) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.New(os.Stdout, logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format)
	slog.SetDefault(logger)

	for _, warning := range cfg.Warnings() {
		logger.Warn(warning)
	}

	var limiter ratelimit.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter, err = ratelimit.NewRedisRateLimiter(ctx, cfg.RateLimit.RedisURL, cfg.RateLimit.Requests, cfg.RateLimit.Window)
		if err != nil {
			logger.Warn("Failed to initialize rate limiter, continuing without it", "error", err)
			limiter = ratelimit.NoOpRateLimiter{}
		} else {
			logger.Info("Rate limiting enabled", "requests", cfg.RateLimit.Requests, "window", cfg.RateLimit.Window)
		}
		defer limiter.Close()
	}

	fwd := forwarder.New(cfg.Sink.URL, cfg.Sink.Timeout, &http.Client{})
	webhookHandler := webhooks.NewHandler(logger, webhooks.NewNormalizer(), fwd)

	router := server.NewRouter(server.Options{
		Logger:  logger,
		Handler: webhookHandler,
		Signature: middleware.SignatureConfig{
			Secret:       cfg.Webhook.Secret,
			Header:       cfg.Webhook.SignatureHeader,
			MaxBodyBytes: cfg.Webhook.MaxBodyBytes,
		},
		WebhookPath: cfg.Webhook.Path,
		Limiter:     limiter,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "address", srv.Addr, "webhook_path", cfg.Webhook.Path)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			logger.Error("Server failed to start", "error", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
		return err
	}

	logger.Info("Server exited gracefully")
	return nil
}
