package globalping

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/aleister1102/globalping-bots/internal/cache"
	"github.com/aleister1102/globalping-bots/internal/models"
)

const (
	measurementsPath = "/v1/measurements"
	limitsPath       = "/v1/limits"
)

// CreateMeasurement submits a measurement and returns its id.
func (c *Client) CreateMeasurement(ctx context.Context, m models.Measurement) (*models.CreatedMeasurement, error) {
	payload, err := json.Marshal(m.Payload())
	if err != nil {
		return nil, WrapError(err, "failed to encode measurement")
	}

	req := &apiRequest{ctx: ctx, method: http.MethodPost, path: measurementsPath, body: payload}
	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		return nil, c.parseError(req, resp)
	}

	var created models.CreatedMeasurement
	if err := json.Unmarshal(resp.Body, &created); err != nil {
		return nil, WrapError(err, "failed to decode created measurement")
	}
	if created.ID == "" {
		return nil, NewError("measurement created without an id")
	}

	c.logger.Info().
		Str("measurement_id", created.ID).
		Str("type", string(m.Type())).
		Int("probes", created.ProbesCount).
		Msg("Measurement created")
	return &created, nil
}

// GetMeasurement fetches the current state of a measurement. With a cache
// configured the request carries If-None-Match and a 304 is answered from the
// cached body.
func (c *Client) GetMeasurement(ctx context.Context, id string) (*models.MeasurementResult, error) {
	path := measurementsPath + "/" + url.PathEscape(id)
	req := &apiRequest{ctx: ctx, method: http.MethodGet, path: path}

	var cached cache.Entry
	var haveCached bool
	if c.cache != nil {
		if cached, haveCached = c.cache.Get(id); haveCached {
			req.headers = map[string]string{"If-None-Match": cached.ETag}
		}
	}

	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}

	body := resp.Body
	switch {
	case resp.StatusCode == http.StatusNotModified:
		if !haveCached {
			return nil, ErrNotModified
		}
		body = cached.Body
	case resp.StatusCode == http.StatusOK:
		if c.cache != nil {
			c.cache.Put(id, cache.Entry{ETag: resp.Headers.Get("ETag"), Body: resp.Body})
		}
	default:
		return nil, c.parseError(req, resp)
	}

	var result models.MeasurementResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, WrapError(err, "failed to decode measurement")
	}
	return &result, nil
}

// AwaitMeasurement polls until the measurement leaves the in-progress state
// or ctx is done.
func (c *Client) AwaitMeasurement(ctx context.Context, id string) (*models.MeasurementResult, error) {
	if c.cache != nil {
		defer c.cache.Remove(id)
	}

	ticker := time.NewTicker(c.config.PollInterval)
	defer ticker.Stop()

	polls := 0
	for {
		result, err := c.GetMeasurement(ctx, id)
		polls++
		if err != nil && !errors.Is(err, ErrNotModified) {
			return nil, err
		}
		if err == nil && !result.InProgress() {
			c.logger.Debug().
				Str("measurement_id", id).
				Str("status", string(result.Status)).
				Int("polls", polls).
				Msg("Measurement completed")
			return result, nil
		}

		select {
		case <-ctx.Done():
			return nil, WrapError(ctx.Err(), "measurement "+id+" did not finish")
		case <-ticker.C:
		}
	}
}

// GetLimits returns the rate limit and credits of the configured identity.
func (c *Client) GetLimits(ctx context.Context) (*models.Limits, error) {
	req := &apiRequest{ctx: ctx, method: http.MethodGet, path: limitsPath}
	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(req, resp)
	}

	var limits models.Limits
	if err := json.Unmarshal(resp.Body, &limits); err != nil {
		return nil, WrapError(err, "failed to decode limits")
	}
	return &limits, nil
}
