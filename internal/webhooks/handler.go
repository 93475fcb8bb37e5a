package webhooks

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"charge-relay/internal/contextkeys"
	"charge-relay/internal/forwarder"
	"charge-relay/internal/metrics"
	"charge-relay/internal/middleware"
	"charge-relay/internal/models"
)

// JobForwarder delivers a job record to the sink.
type JobForwarder interface {
	Forward(ctx context.Context, job models.JobRecord) error
}

// Handler contains dependencies for the webhook HTTP handlers.
type Handler struct {
	Logger     *slog.Logger
	Normalizer *Normalizer
	Forwarder  JobForwarder
}

// NewHandler creates a new instance of the webhook Handler.
func NewHandler(logger *slog.Logger, normalizer *Normalizer, fwd JobForwarder) *Handler {
	return &Handler{
		Logger:     logger,
		Normalizer: normalizer,
		Forwarder:  fwd,
	}
}

// HandleWebhook runs after VerifySignature: the body in the context is
// already authenticated. Confirmed charges are forwarded synchronously and
// the sink's verdict decides the status code, so the provider redelivers
// anything that was not accepted.
func (h *Handler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	logger := h.Logger.With("request_id", middleware.GetRequestID(r.Context()))

	bodyBytes, ok := r.Context().Value(contextkeys.RequestBodyKey).([]byte)
	if !ok {
		logger.Error("Could not retrieve request body from context")
		metrics.WebhooksTotal.WithLabelValues("internal_error").Inc()
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	event, err := h.Normalizer.Normalize(bodyBytes)
	if err != nil {
		logger.Error("Invalid JSON", "error", err)
		metrics.WebhooksTotal.WithLabelValues("malformed").Inc()
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	logger.Info("Received event", "event_type", event.EventType())

	switch ev := event.(type) {
	case models.ChargeConfirmed:
		h.forwardCharge(w, r, logger, ev)
	default:
		metrics.WebhooksTotal.WithLabelValues("ignored").Inc()
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ignored"))
	}
}

func (h *Handler) forwardCharge(w http.ResponseWriter, r *http.Request, logger *slog.Logger, ev models.ChargeConfirmed) {
	job := h.Normalizer.BuildJob(ev.Charge)
	logger = logger.With("order_id", job.OrderID)
	logger.Info("Enqueue job to sink", "email_present", job.Email != nil, "length", job.Length)

	start := time.Now()
	err := h.Forwarder.Forward(r.Context(), job)
	outcome := forwarder.OutcomeOf(err)
	metrics.ForwardDuration.WithLabelValues(string(outcome)).Observe(time.Since(start).Seconds())
	metrics.WebhooksTotal.WithLabelValues(string(outcome)).Inc()

	if err == nil {
		logger.Info("Forwarded to sink")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
		return
	}

	var rejected *forwarder.ErrSinkRejected
	if errors.As(err, &rejected) {
		logger.Error("Failed to forward to sink",
			"status", rejected.StatusCode,
			"sink_response", rejected.Body,
		)
		http.Error(w, "Failed to forward", http.StatusBadGateway)
		return
	}

	logger.Error("Error forwarding to sink", "outcome", outcome, "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}
