package middleware

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"charge-relay/internal/contextkeys"
	"charge-relay/internal/metrics"
	"charge-relay/internal/signature"
)

var (
	ErrBodyRead     = errors.New("failed to read request body")
	ErrBodyTooLarge = errors.New("request body too large")
)

// ReadRawBody consumes r and returns the exact bytes received. A limit of
// zero or less reads without bound.
func ReadRawBody(r io.Reader, limit int64) ([]byte, error) {
	if limit > 0 {
		r = io.LimitReader(r, limit+1)
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBodyRead, err)
	}
	if limit > 0 && int64(len(body)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrBodyTooLarge, limit)
	}
	return body, nil
}

// SignatureConfig configures VerifySignature.
type SignatureConfig struct {
	Secret       string
	Header       string
	MaxBodyBytes int64
}

// VerifySignature is a Chi middleware that reads the raw body, checks its
// HMAC-SHA256 signature and stores the verified bytes in the request context
// under contextkeys.RequestBodyKey. An empty secret rejects every request.
func VerifySignature(logger *slog.Logger, cfg SignatureConfig) func(next http.Handler) http.Handler {
	header := cfg.Header
	if header == "" {
		header = signature.DefaultHeader
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := logger.With("request_id", GetRequestID(r.Context()))

			bodyBytes, err := ReadRawBody(r.Body, cfg.MaxBodyBytes)
			r.Body.Close()
			if err != nil {
				if errors.Is(err, ErrBodyTooLarge) {
					log.Warn("Webhook body exceeds limit", "limit", cfg.MaxBodyBytes)
					metrics.WebhooksTotal.WithLabelValues("too_large").Inc()
					http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
					return
				}
				log.Error("Failed to read request body", "error", err)
				metrics.WebhooksTotal.WithLabelValues("unreadable").Inc()
				http.Error(w, "Cannot read request body", http.StatusBadRequest)
				return
			}

			claimed := r.Header.Get(header)
			if !signature.Verify(bodyBytes, claimed, cfg.Secret) {
				log.Warn("Invalid webhook signature",
					"signature_present", claimed != "",
					"secret_configured", cfg.Secret != "",
				)
				metrics.WebhooksTotal.WithLabelValues("unauthorized").Inc()
				http.Error(w, "Invalid signature", http.StatusUnauthorized)
				return
			}

			metrics.WebhookBytesTotal.Add(float64(len(bodyBytes)))
			ctx := context.WithValue(r.Context(), contextkeys.RequestBodyKey, bodyBytes)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
