package globalping

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aleister1102/globalping-bots/internal/cache"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
)

// ResponseCache stores the last body and entity tag per measurement so polls
// can be conditional.
type ResponseCache interface {
	Get(key string) (cache.Entry, bool)
	Put(key string, e cache.Entry)
	Remove(key string)
}

// Client talks to the Globalping measurement API.
type Client struct {
	client       *http.Client
	config       ClientConfig
	logger       zerolog.Logger
	retryHandler *RetryHandler
	cache        ResponseCache
	bufferPool   sync.Pool
}

type apiRequest struct {
	ctx     context.Context
	method  string
	path    string
	headers map[string]string
	body    []byte
}

type apiResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// NewClient creates a client from config. A nil cache disables conditional
// polling.
func NewClient(config ClientConfig, responseCache ResponseCache, logger zerolog.Logger) (*Client, error) {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultClientConfig().PollInterval
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          config.MaxIdleConns,
		MaxIdleConnsPerHost:   config.MaxIdleConnsPerHost,
		IdleConnTimeout:       config.IdleConnTimeout,
		TLSHandshakeTimeout:   config.TLSHandshakeTimeout,
		ExpectContinueTimeout: config.ExpectContinueTimeout,
		DialContext: (&net.Dialer{
			Timeout:   config.DialTimeout,
			KeepAlive: config.KeepAlive,
		}).DialContext,
		TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
	}

	if config.EnableHTTP2 {
		if err := http2.ConfigureTransport(transport); err != nil {
			logger.Warn().Err(err).Msg("Failed to configure HTTP/2, falling back to HTTP/1.1")
		}
	}

	logger = logger.With().Str("component", "GlobalpingClient").Logger()
	logger.Debug().
		Str("base_url", config.BaseURL).
		Dur("timeout", config.Timeout).
		Dur("poll_interval", config.PollInterval).
		Bool("authenticated", config.Token != "").
		Bool("http2_enabled", config.EnableHTTP2).
		Msg("Globalping client created")

	return &Client{
		client: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
		},
		config: config,
		logger: logger,
		cache:  responseCache,
		bufferPool: sync.Pool{
			New: func() interface{} {
				b := make([]byte, 32*1024)
				return &b
			},
		},
	}, nil
}

// PollInterval reports the delay between measurement polls.
func (c *Client) PollInterval() time.Duration {
	return c.config.PollInterval
}

func (c *Client) send(req *apiRequest) (*apiResponse, error) {
	if c.retryHandler != nil {
		return c.retryHandler.DoWithRetry(req.ctx, c.do, req)
	}
	return c.do(req)
}

func (c *Client) do(req *apiRequest) (*apiResponse, error) {
	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}

	httpReq, err := http.NewRequestWithContext(req.ctx, req.method, c.config.BaseURL+req.path, body)
	if err != nil {
		return nil, WrapError(err, "failed to create HTTP request")
	}

	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.config.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.config.UserAgent)
	}
	if c.config.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.config.Token)
	}
	for key, value := range req.headers {
		httpReq.Header.Set(key, value)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, WrapError(err, "HTTP request failed")
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if c.config.MaxResponseSize > 0 {
		reader = io.LimitReader(reader, int64(c.config.MaxResponseSize))
	}

	bufPtr := c.bufferPool.Get().(*[]byte)
	defer c.bufferPool.Put(bufPtr)
	buf := bytes.NewBuffer((*bufPtr)[:0])

	if _, err = io.Copy(buf, reader); err != nil {
		return nil, WrapError(err, "failed to read response body")
	}

	bodyBytes := make([]byte, buf.Len())
	copy(bodyBytes, buf.Bytes())

	return &apiResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       bodyBytes,
	}, nil
}

// parseError turns a non-success response into an *APIError when the body
// carries one, else an *HTTPError.
func (c *Client) parseError(req *apiRequest, resp *apiResponse) error {
	var envelope apiErrorBody
	if err := json.Unmarshal(resp.Body, &envelope); err == nil && envelope.Error != nil {
		apiErr := envelope.Error
		apiErr.StatusCode = resp.StatusCode
		if resp.StatusCode == http.StatusTooManyRequests {
			if secs, err := strconv.Atoi(resp.Headers.Get("X-RateLimit-Reset")); err == nil {
				apiErr.RateLimitReset = time.Duration(secs) * time.Second
			}
		}
		return apiErr
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		apiErr := &APIError{StatusCode: resp.StatusCode, Type: ErrTypeAPI, Message: "too many requests"}
		if secs, err := strconv.Atoi(resp.Headers.Get("X-RateLimit-Reset")); err == nil {
			apiErr.RateLimitReset = time.Duration(secs) * time.Second
		}
		return apiErr
	}

	return NewHTTPErrorWithURL(resp.StatusCode, string(resp.Body), c.config.BaseURL+req.path)
}
