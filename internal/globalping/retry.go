package globalping

import (
	"context"
	"math"
	"math/rand"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// RetryHandler handles API request retries with exponential backoff
type RetryHandler struct {
	maxRetries       int
	baseDelay        time.Duration
	maxDelay         time.Duration
	enableJitter     bool
	retryStatusCodes map[int]bool
	logger           zerolog.Logger
}

// NewRetryHandler creates a new retry handler
func NewRetryHandler(config RetryHandlerConfig, logger zerolog.Logger) *RetryHandler {
	statusCodeMap := make(map[int]bool)
	for _, code := range config.RetryStatusCodes {
		statusCodeMap[code] = true
	}

	return &RetryHandler{
		maxRetries:       config.MaxRetries,
		baseDelay:        config.BaseDelay,
		maxDelay:         config.MaxDelay,
		enableJitter:     config.EnableJitter,
		retryStatusCodes: statusCodeMap,
		logger:           logger.With().Str("component", "RetryHandler").Logger(),
	}
}

// ShouldRetry determines if a request should be retried based on status code
func (rh *RetryHandler) ShouldRetry(statusCode int, attempt int) bool {
	if attempt >= rh.maxRetries {
		return false
	}
	return rh.retryStatusCodes[statusCode]
}

// CalculateDelay calculates the delay for the next retry attempt using exponential backoff
func (rh *RetryHandler) CalculateDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return rh.baseDelay
	}

	delay := rh.baseDelay * time.Duration(math.Pow(2, float64(attempt)))
	if delay > rh.maxDelay {
		delay = rh.maxDelay
	}

	if rh.enableJitter && delay >= 10*time.Millisecond {
		jitter := time.Duration(rand.Int63n(int64(delay / 10)))
		delay += jitter
	}

	return delay
}

func (rh *RetryHandler) wait(ctx context.Context, attempt int, reason string, req *apiRequest) error {
	delay := rh.CalculateDelay(attempt)

	rh.logger.Warn().
		Str("method", req.method).
		Str("path", req.path).
		Str("reason", reason).
		Int("attempt", attempt+1).
		Int("max_retries", rh.maxRetries).
		Dur("delay", delay).
		Msg("Retrying API request")

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// idempotent reports whether a request may be sent again without repeating
// its side effects. A retried POST could create a second measurement.
func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}

// DoWithRetry executes a request, retrying transport failures and the
// configured status codes. Only idempotent methods are retried; anything
// else is sent exactly once.
func (rh *RetryHandler) DoWithRetry(ctx context.Context, doFunc func(*apiRequest) (*apiResponse, error), req *apiRequest) (*apiResponse, error) {
	var lastResp *apiResponse
	var lastErr error

	maxRetries := rh.maxRetries
	if !idempotent(req.method) {
		maxRetries = 0
	}

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := doFunc(req)
		if err != nil {
			lastErr, lastResp = err, nil
			if ctx.Err() != nil || attempt == maxRetries {
				break
			}
			if err := rh.wait(ctx, attempt, "transport error", req); err != nil {
				return nil, err
			}
			continue
		}

		lastErr, lastResp = nil, resp
		if attempt >= maxRetries || !rh.ShouldRetry(resp.StatusCode, attempt) {
			break
		}
		if err := rh.wait(ctx, attempt, "retryable status", req); err != nil {
			return nil, err
		}
	}

	if lastErr != nil {
		return nil, WrapError(lastErr, "all retry attempts failed")
	}
	return lastResp, nil
}
