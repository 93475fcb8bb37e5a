package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"charge-relay/internal/middleware"
	"charge-relay/internal/ratelimit"
	"charge-relay/internal/webhooks"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Options struct {
	Logger    *slog.Logger
	Handler   *webhooks.Handler
	Signature middleware.SignatureConfig
	// WebhookPath defaults to /webhooks.
	WebhookPath string
	// Limiter is optional.
	Limiter ratelimit.RateLimiter
}

// NewRouter mounts the webhook endpoint plus health and metrics routes.
// Signature checks run only once chi has matched POST, so other methods get
// 405 without their body being read.
func NewRouter(opts Options) http.Handler {
	path := opts.WebhookPath
	if path == "" {
		path = "/webhooks"
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	})

	chain := []func(http.Handler) http.Handler{}
	if opts.Limiter != nil {
		chain = append(chain, ratelimit.Middleware(opts.Limiter, opts.Logger))
	}
	chain = append(chain, middleware.VerifySignature(opts.Logger, opts.Signature))

	router.With(chain...).Post(path, opts.Handler.HandleWebhook)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	router.Handle("/metrics", promhttp.Handler())

	return router
}
