package globalping

import (
	"time"

	"github.com/rs/zerolog"
)

// ClientBuilder builds API clients with a fluent interface.
type ClientBuilder struct {
	config      ClientConfig
	retryConfig *RetryHandlerConfig
	cache       ResponseCache
	logger      zerolog.Logger
}

// NewClientBuilder creates a builder seeded with DefaultClientConfig.
func NewClientBuilder(logger zerolog.Logger) *ClientBuilder {
	return &ClientBuilder{
		config: DefaultClientConfig(),
		logger: logger,
	}
}

// WithConfig replaces the whole configuration.
func (b *ClientBuilder) WithConfig(config ClientConfig) *ClientBuilder {
	b.config = config
	return b
}

func (b *ClientBuilder) WithBaseURL(baseURL string) *ClientBuilder {
	b.config.BaseURL = baseURL
	return b
}

func (b *ClientBuilder) WithToken(token string) *ClientBuilder {
	b.config.Token = token
	return b
}

func (b *ClientBuilder) WithUserAgent(userAgent string) *ClientBuilder {
	b.config.UserAgent = userAgent
	return b
}

func (b *ClientBuilder) WithTimeout(timeout time.Duration) *ClientBuilder {
	b.config.Timeout = timeout
	return b
}

func (b *ClientBuilder) WithPollInterval(interval time.Duration) *ClientBuilder {
	b.config.PollInterval = interval
	return b
}

// WithHTTP2 enables or disables HTTP/2 support
func (b *ClientBuilder) WithHTTP2(enabled bool) *ClientBuilder {
	b.config.EnableHTTP2 = enabled
	return b
}

// WithCache enables conditional polling through c.
func (b *ClientBuilder) WithCache(c ResponseCache) *ClientBuilder {
	b.cache = c
	return b
}

// WithRetry enables retries of gateway errors and transport failures.
func (b *ClientBuilder) WithRetry(config RetryHandlerConfig) *ClientBuilder {
	b.retryConfig = &config
	return b
}

// Build creates and returns a new Client
func (b *ClientBuilder) Build() (*Client, error) {
	client, err := NewClient(b.config, b.cache, b.logger)
	if err != nil {
		return nil, err
	}
	if b.retryConfig != nil {
		client.retryHandler = NewRetryHandler(*b.retryConfig, b.logger)
	}
	return client, nil
}
