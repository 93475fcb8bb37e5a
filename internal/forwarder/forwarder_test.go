package forwarder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"charge-relay/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJob() models.JobRecord {
	email := "a@b.com"
	return models.JobRecord{
		OrderID:   "ord1",
		Email:     &email,
		Length:    models.DefaultLength,
		RawCharge: json.RawMessage(`{"id":"ord1","metadata":{}}`),
	}
}

func TestForwardSuccess(t *testing.T) {
	var gotMethod, gotContentType string
	var gotBody map[string]any

	sink := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer sink.Close()

	err := New(sink.URL, time.Second, sink.Client()).Forward(context.Background(), testJob())
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "ord1", gotBody["orderId"])
	assert.Equal(t, "a@b.com", gotBody["email"])
	assert.Nil(t, gotBody["title_hint"])
	assert.Nil(t, gotBody["tone"])
	assert.Nil(t, gotBody["keywords"])
	assert.Equal(t, "medium", gotBody["length"])
	assert.Equal(t, map[string]any{"id": "ord1", "metadata": map[string]any{}}, gotBody["rawCharge"])
	assert.Equal(t, Forwarded, OutcomeOf(err))
}

func TestForwardRejected(t *testing.T) {
	testCases := []int{http.StatusBadRequest, http.StatusNotFound, http.StatusInternalServerError, http.StatusServiceUnavailable}

	for _, status := range testCases {
		t.Run(fmt.Sprintf("status %d", status), func(t *testing.T) {
			sink := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
				_, _ = w.Write([]byte("queue unavailable"))
			}))
			defer sink.Close()

			err := New(sink.URL, time.Second, nil).Forward(context.Background(), testJob())

			var rejected *ErrSinkRejected
			require.True(t, errors.As(err, &rejected))
			assert.Equal(t, status, rejected.StatusCode)
			assert.Equal(t, "queue unavailable", rejected.Body)
			assert.Equal(t, SinkRejected, OutcomeOf(err))
		})
	}
}

func TestForwardRejectedBodyIsCapped(t *testing.T) {
	sink := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(strings.Repeat("x", maxRejectionBody*2)))
	}))
	defer sink.Close()

	err := New(sink.URL, time.Second, nil).Forward(context.Background(), testJob())

	var rejected *ErrSinkRejected
	require.True(t, errors.As(err, &rejected))
	assert.Len(t, rejected.Body, maxRejectionBody)
}

func TestForwardUnreachable(t *testing.T) {
	sink := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := sink.URL
	sink.Close()

	err := New(url, time.Second, nil).Forward(context.Background(), testJob())

	var unreachable *ErrSinkUnreachable
	require.True(t, errors.As(err, &unreachable))
	assert.Equal(t, SinkUnreachable, OutcomeOf(err))
}

func TestForwardTimeout(t *testing.T) {
	release := make(chan struct{})
	sink := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer sink.Close()
	defer close(release)

	start := time.Now()
	err := New(sink.URL, 50*time.Millisecond, nil).Forward(context.Background(), testJob())

	var timeout *ErrSinkTimeout
	require.True(t, errors.As(err, &timeout), "got %v", err)
	assert.Equal(t, SinkTimeout, OutcomeOf(err))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestForwardNotConfigured(t *testing.T) {
	err := New("  ", time.Second, nil).Forward(context.Background(), testJob())

	assert.ErrorIs(t, err, ErrSinkNotConfigured)
	assert.Equal(t, SinkNotConfigured, OutcomeOf(err))
}

func TestNewAppliesDefaultTimeout(t *testing.T) {
	f := New("http://sink", 0, nil)
	assert.Equal(t, DefaultTimeout, f.timeout)
}

func TestOutcomeOfForeignError(t *testing.T) {
	assert.Equal(t, SinkUnreachable, OutcomeOf(errors.New("boom")))
}
