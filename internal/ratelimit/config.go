package ratelimit

import "time"

// UserLimiterConfig holds the per-user command budget.
type UserLimiterConfig struct {
	CommandsPerMinute int
	BurstLimit        int
	MaxUsers          int           // limiters kept at once, least recently used evicted
	IdleTTL           time.Duration // a limiter unused this long is dropped
}

// DefaultUserLimiterConfig returns default limiter settings
func DefaultUserLimiterConfig() UserLimiterConfig {
	return UserLimiterConfig{
		CommandsPerMinute: 10,
		BurstLimit:        3,
		MaxUsers:          10000,
		IdleTTL:           10 * time.Minute,
	}
}
