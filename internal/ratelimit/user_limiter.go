package ratelimit

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// UserLimiter gives every chat user their own token bucket.
type UserLimiter struct {
	mu       sync.Mutex
	config   UserLimiterConfig
	limiters *expirable.LRU[string, *rate.Limiter]
	logger   zerolog.Logger
}

// NewUserLimiter creates a new per-user limiter
func NewUserLimiter(config UserLimiterConfig, logger zerolog.Logger) *UserLimiter {
	defaults := DefaultUserLimiterConfig()
	if config.CommandsPerMinute <= 0 {
		config.CommandsPerMinute = defaults.CommandsPerMinute
	}
	if config.BurstLimit <= 0 {
		config.BurstLimit = defaults.BurstLimit
	}
	if config.MaxUsers <= 0 {
		config.MaxUsers = defaults.MaxUsers
	}
	if config.IdleTTL <= 0 {
		config.IdleTTL = defaults.IdleTTL
	}

	return &UserLimiter{
		config:   config,
		limiters: expirable.NewLRU[string, *rate.Limiter](config.MaxUsers, nil, config.IdleTTL),
		logger:   logger.With().Str("component", "UserLimiter").Logger(),
	}
}

// Allow reports whether userID may run a command now, spending a token if so.
func (ul *UserLimiter) Allow(userID string) bool {
	return ul.AllowAt(userID, time.Now())
}

// AllowAt is Allow with an explicit clock.
func (ul *UserLimiter) AllowAt(userID string, now time.Time) bool {
	limiter := ul.get(userID)
	if limiter.AllowN(now, 1) {
		return true
	}
	ul.logger.Debug().Str("user", userID).Msg("Command rate limit exceeded")
	return false
}

// RetryAfter estimates how long userID must wait for the next token.
func (ul *UserLimiter) RetryAfter(userID string) time.Duration {
	limiter := ul.get(userID)
	now := time.Now()
	r := limiter.ReserveN(now, 1)
	if !r.OK() {
		return 0
	}
	delay := r.DelayFrom(now)
	r.CancelAt(now)
	return delay
}

// Update applies a new budget. Existing buckets keep their tokens.
func (ul *UserLimiter) Update(commandsPerMinute, burst int) {
	if commandsPerMinute <= 0 || burst <= 0 {
		return
	}

	ul.mu.Lock()
	ul.config.CommandsPerMinute = commandsPerMinute
	ul.config.BurstLimit = burst
	ul.mu.Unlock()

	for _, key := range ul.limiters.Keys() {
		if limiter, ok := ul.limiters.Peek(key); ok {
			limiter.SetLimit(perMinute(commandsPerMinute))
			limiter.SetBurst(burst)
		}
	}
}

func (ul *UserLimiter) get(userID string) *rate.Limiter {
	ul.mu.Lock()
	defer ul.mu.Unlock()

	if limiter, ok := ul.limiters.Get(userID); ok {
		return limiter
	}
	limiter := rate.NewLimiter(perMinute(ul.config.CommandsPerMinute), ul.config.BurstLimit)
	ul.limiters.Add(userID, limiter)
	return limiter
}

func perMinute(n int) rate.Limit {
	return rate.Every(time.Minute / time.Duration(n))
}
