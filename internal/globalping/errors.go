package globalping

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// ErrNotModified is returned when the API answers 304 and no cached body is
// available to stand in for it.
var ErrNotModified = NewError("measurement not modified")

// API error types carried in the error body.
const (
	ErrTypeValidation    = "validation_error"
	ErrTypeNoProbesFound = "no_probes_found"
	ErrTypeAPI           = "api_error"
)

// Error represents a general error in the client.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new general Error.
func NewError(message string) error {
	return &Error{Message: message}
}

// WrapError wraps an existing error with a message.
func WrapError(err error, message string) error {
	return &Error{Message: message, Err: err}
}

// HTTPError is a non-2xx response whose body was not a structured API error.
type HTTPError struct {
	StatusCode int
	Body       string
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http error for URL '%s': status %d, body: %s", e.URL, e.StatusCode, e.Body)
}

// NewHTTPErrorWithURL creates a new HTTPError.
func NewHTTPErrorWithURL(statusCode int, body string, url string) error {
	return &HTTPError{StatusCode: statusCode, Body: body, URL: url}
}

// APIError is the structured error body of the measurement API:
// {"error": {"message", "type", "params"}}.
type APIError struct {
	StatusCode int               `json:"-"`
	Message    string            `json:"message"`
	Type       string            `json:"type"`
	Params     map[string]string `json:"params,omitempty"`

	// RateLimitReset is set from X-RateLimit-Reset on 429 responses.
	RateLimitReset time.Duration `json:"-"`
}

type apiErrorBody struct {
	Error *APIError `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("globalping api %s (status %d): %s", e.Type, e.StatusCode, e.Message)
}

// UserMessage renders the error for a chat user.
func (e *APIError) UserMessage() string {
	if e.StatusCode == 429 {
		msg := "You have run out of measurement credits or hit the rate limit."
		if e.RateLimitReset > 0 {
			msg += fmt.Sprintf(" Try again in %s.", formatReset(e.RateLimitReset))
		}
		return msg
	}

	switch e.Type {
	case ErrTypeValidation:
		var b strings.Builder
		b.WriteString(e.Message)
		keys := make([]string, 0, len(e.Params))
		for k := range e.Params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "\n%s: %s", k, e.Params[k])
		}
		return b.String()
	case ErrTypeNoProbesFound:
		return "No suitable probes found. " + e.Message
	default:
		return "API error: " + e.Message
	}
}

func formatReset(d time.Duration) string {
	return d.Round(time.Second).String()
}
