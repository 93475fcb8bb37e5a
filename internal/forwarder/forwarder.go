package forwarder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"charge-relay/internal/models"
)

const (
	// DefaultTimeout bounds a forwarding attempt when no timeout is configured.
	DefaultTimeout = 10 * time.Second

	maxRejectionBody = 64 << 10
)

// Forwarder posts job records to the sink. It makes exactly one attempt per
// call; redelivery is left to the webhook provider.
type Forwarder struct {
	url     string
	timeout time.Duration
	client  *http.Client
}

// New returns a Forwarder for sinkURL. A nil client uses a fresh http.Client.
// A non-positive timeout falls back to DefaultTimeout.
func New(sinkURL string, timeout time.Duration, client *http.Client) *Forwarder {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if client == nil {
		client = &http.Client{}
	}
	return &Forwarder{
		url:     strings.TrimSpace(sinkURL),
		timeout: timeout,
		client:  client,
	}
}

// Forward sends job to the sink. A nil error means the sink accepted it with
// a 2xx status; otherwise the error is one of ErrSinkNotConfigured,
// *ErrSinkRejected, *ErrSinkUnreachable or *ErrSinkTimeout.
func (f *Forwarder) Forward(ctx context.Context, job models.JobRecord) error {
	if f.url == "" {
		return ErrSinkNotConfigured
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job %s: %w", job.OrderID, err)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(payload))
	if err != nil {
		return &ErrSinkUnreachable{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			return &ErrSinkTimeout{Err: err}
		}
		return &ErrSinkUnreachable{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxRejectionBody))
		return &ErrSinkRejected{StatusCode: resp.StatusCode, Body: string(body)}
	}

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxRejectionBody))
	return nil
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
