package globalping

import "time"

// DefaultBaseURL is the public measurement API.
const DefaultBaseURL = "https://api.globalping.io"

// ClientConfig holds the transport and polling settings of the API client.
type ClientConfig struct {
	BaseURL               string
	Token                 string // optional bearer token, raises rate limits
	UserAgent             string
	Timeout               time.Duration // per HTTP request
	PollInterval          time.Duration
	MaxIdleConns          int
	MaxIdleConnsPerHost   int
	IdleConnTimeout       time.Duration
	TLSHandshakeTimeout   time.Duration
	ExpectContinueTimeout time.Duration
	DialTimeout           time.Duration
	KeepAlive             time.Duration
	EnableHTTP2           bool
	MaxResponseSize       int // bytes, 0 for no limit
}

// DefaultClientConfig returns the default client configuration.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL:               DefaultBaseURL,
		UserAgent:             "globalping-bots/1.0 (https://github.com/aleister1102/globalping-bots)",
		Timeout:               30 * time.Second,
		PollInterval:          500 * time.Millisecond,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		DialTimeout:           10 * time.Second,
		KeepAlive:             30 * time.Second,
		EnableHTTP2:           true,
		MaxResponseSize:       10 * 1024 * 1024,
	}
}

// RetryHandlerConfig configures retries of idempotent-safe failures.
type RetryHandlerConfig struct {
	MaxRetries       int           `json:"max_retries"`
	BaseDelay        time.Duration `json:"base_delay"`
	MaxDelay         time.Duration `json:"max_delay"`
	EnableJitter     bool          `json:"enable_jitter"`
	RetryStatusCodes []int         `json:"retry_status_codes"`
}

// DefaultRetryHandlerConfig retries gateway failures only. 429 from this API
// means credits are exhausted, which waiting a few seconds will not fix.
func DefaultRetryHandlerConfig() RetryHandlerConfig {
	return RetryHandlerConfig{
		MaxRetries:       2,
		BaseDelay:        250 * time.Millisecond,
		MaxDelay:         2 * time.Second,
		EnableJitter:     true,
		RetryStatusCodes: []int{502, 503, 504},
	}
}
