package models

// Limits is the body of GET /v1/limits.
type Limits struct {
	RateLimit RateLimits `json:"rateLimit"`
	Credits   *Credits   `json:"credits,omitempty"`
}

type RateLimits struct {
	Measurements MeasurementLimits `json:"measurements"`
}

type MeasurementLimits struct {
	Create CreateLimit `json:"create"`
}

// CreateLimit describes the measurement creation window. Type is "ip" for
// anonymous use and "user" for token-authenticated use; Reset is in seconds.
type CreateLimit struct {
	Type      string `json:"type"`
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`
	Reset     int    `json:"reset"`
}

type Credits struct {
	Remaining int `json:"remaining"`
}
