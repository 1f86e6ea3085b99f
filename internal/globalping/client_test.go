package globalping

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aleister1102/globalping-bots/internal/cache"
	"github.com/aleister1102/globalping-bots/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, serverURL string, opts ...func(*ClientBuilder)) *Client {
	t.Helper()
	b := NewClientBuilder(zerolog.Nop()).
		WithBaseURL(serverURL).
		WithPollInterval(5 * time.Millisecond).
		WithTimeout(2 * time.Second)
	for _, opt := range opts {
		opt(b)
	}
	client, err := b.Build()
	require.NoError(t, err)
	return client
}

func pingRequest() *models.PingRequest {
	return &models.PingRequest{
		Common: models.Common{
			Target:    "google.com",
			Limit:     1,
			Locations: []models.Location{{Magic: "New York"}},
		},
	}
}

func TestClient_CreateMeasurement(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/measurements", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"type": "ping",
			"target": "google.com",
			"limit": 1,
			"locations": [{"magic": "New York"}],
			"measurementOptions": {},
			"inProgressUpdates": false
		}`, string(body))

		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"id":"abc123","probesCount":1}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, func(b *ClientBuilder) {
		b.WithToken("secret").WithUserAgent("test-agent")
	})

	created, err := client.CreateMeasurement(context.Background(), pingRequest())
	require.NoError(t, err)
	assert.Equal(t, "abc123", created.ID)
	assert.Equal(t, 1, created.ProbesCount)
}

func TestClient_CreateMeasurement_ValidationError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"validation_error","message":"Parameter validation failed.","params":{"target":"\"target\" does not match any of the allowed types"}}}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.CreateMeasurement(context.Background(), pingRequest())
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, ErrTypeValidation, apiErr.Type)
	assert.Equal(t, "Parameter validation failed.\ntarget: \"target\" does not match any of the allowed types", apiErr.UserMessage())
}

func TestClient_CreateMeasurement_NoProbes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":{"type":"no_probes_found","message":"No suitable probes supporting IPv6 found."}}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.CreateMeasurement(context.Background(), pingRequest())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "No suitable probes found. No suitable probes supporting IPv6 found.", apiErr.UserMessage())
}

func TestClient_CreateMeasurement_RateLimited(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("X-RateLimit-Reset", "90")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"type":"too_many_requests","message":"Too many requests. Please retry in 90 seconds."}}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, func(b *ClientBuilder) {
		b.WithRetry(DefaultRetryHandlerConfig())
	})
	_, err := client.CreateMeasurement(context.Background(), pingRequest())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 90*time.Second, apiErr.RateLimitReset)
	assert.Contains(t, apiErr.UserMessage(), "Try again in 1m30s.")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "429 must not be retried")
}

func gatewayRetryConfig() RetryHandlerConfig {
	return RetryHandlerConfig{
		MaxRetries:       2,
		BaseDelay:        time.Millisecond,
		MaxDelay:         5 * time.Millisecond,
		RetryStatusCodes: []int{502},
	}
}

func TestClient_RetriesGatewayErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"rateLimit":{"measurements":{"create":{"type":"ip","limit":250,"remaining":249,"reset":10}}}}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, func(b *ClientBuilder) {
		b.WithRetry(gatewayRetryConfig())
	})

	limits, err := client.GetLimits(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 249, limits.RateLimit.Measurements.Create.Remaining)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_CreateMeasurement_NotRetriedOnGatewayError(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, func(b *ClientBuilder) {
		b.WithRetry(gatewayRetryConfig())
	})

	_, err := client.CreateMeasurement(context.Background(), pingRequest())
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "a POST must be sent once")
}

func TestRetryHandler_PostTransportErrorSentOnce(t *testing.T) {
	rh := NewRetryHandler(gatewayRetryConfig(), zerolog.Nop())

	attempts := 0
	_, err := rh.DoWithRetry(context.Background(), func(*apiRequest) (*apiResponse, error) {
		attempts++
		return nil, errors.New("connection reset by peer")
	}, &apiRequest{method: http.MethodPost, path: measurementsPath})
	require.Error(t, err)
	assert.Equal(t, 1, attempts)

	attempts = 0
	_, err = rh.DoWithRetry(context.Background(), func(*apiRequest) (*apiResponse, error) {
		attempts++
		return nil, errors.New("connection reset by peer")
	}, &apiRequest{method: http.MethodGet, path: limitsPath})
	require.Error(t, err)
	assert.Equal(t, 3, attempts)
}

func TestClient_UnstructuredErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.GetLimits(context.Background())

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)
	assert.Equal(t, "boom", httpErr.Body)
}

func TestClient_AwaitMeasurement_UsesETag(t *testing.T) {
	var polls int32
	inProgress := `{"id":"m1","type":"ping","status":"in-progress","target":"google.com","probesCount":1,"results":[]}`
	finished := `{"id":"m1","type":"ping","status":"finished","target":"google.com","probesCount":1,"results":[{"probe":{"continent":"NA","country":"US","city":"New York","asn":123,"network":"Net"},"result":{"status":"finished","rawOutput":"PING ok"}}]}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/measurements/m1", r.URL.Path)
		switch atomic.AddInt32(&polls, 1) {
		case 1:
			assert.Empty(t, r.Header.Get("If-None-Match"))
			w.Header().Set("ETag", `W/"v1"`)
			_, _ = w.Write([]byte(inProgress))
		case 2:
			assert.Equal(t, `W/"v1"`, r.Header.Get("If-None-Match"))
			w.WriteHeader(http.StatusNotModified)
		default:
			w.Header().Set("ETag", `W/"v2"`)
			_, _ = w.Write([]byte(finished))
		}
	}))
	defer server.Close()

	etags := cache.NewETagCache(8, time.Minute)
	client := newTestClient(t, server.URL, func(b *ClientBuilder) { b.WithCache(etags) })

	result, err := client.AwaitMeasurement(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusFinished, result.Status)
	require.Len(t, result.Results, 1)
	assert.Equal(t, "PING ok", result.Results[0].Result.RawOutput)
	assert.Equal(t, int32(3), atomic.LoadInt32(&polls))

	_, ok := etags.Get("m1")
	assert.False(t, ok, "finished measurements are evicted")
}

func TestClient_GetMeasurement_NotModifiedWithoutCache(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotModified)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.GetMeasurement(context.Background(), "m1")
	assert.ErrorIs(t, err, ErrNotModified)
}

func TestClient_AwaitMeasurement_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"slow","type":"ping","status":"in-progress","results":[]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := client.AwaitMeasurement(ctx, "slow")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled))
}

func TestClient_GetLimits(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/limits", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"rateLimit": map[string]any{
				"measurements": map[string]any{
					"create": map[string]any{"type": "ip", "limit": 250, "remaining": 240, "reset": 1800},
				},
			},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	limits, err := client.GetLimits(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ip", limits.RateLimit.Measurements.Create.Type)
	assert.Equal(t, 250, limits.RateLimit.Measurements.Create.Limit)
	assert.Equal(t, 240, limits.RateLimit.Measurements.Create.Remaining)
	assert.Nil(t, limits.Credits)
}
