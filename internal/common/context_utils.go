package common

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ContextCheckResult represents the result of a context cancellation check
type ContextCheckResult struct {
	Cancelled bool
	Error     error
}

// CheckCancellation checks if the context is cancelled and returns appropriate result
func CheckCancellation(ctx context.Context) ContextCheckResult {
	select {
	case <-ctx.Done():
		return ContextCheckResult{
			Cancelled: true,
			Error:     ctx.Err(),
		}
	default:
		return ContextCheckResult{}
	}
}

// CheckCancellationWithLog checks for context cancellation and logs if cancelled
func CheckCancellationWithLog(ctx context.Context, logger zerolog.Logger, operation string) ContextCheckResult {
	result := CheckCancellation(ctx)
	if result.Cancelled {
		logger.Info().Str("operation", operation).Msg("Context cancelled")
	}
	return result
}

// ErrExecutorStopped is returned by Go once Shutdown has begun.
var ErrExecutorStopped = errors.New("executor stopped")

// ConcurrentExecutor runs chat commands in the background with a bounded
// number in flight. Chat platforms expect their webhook or interaction to be
// acknowledged within a few seconds, so handlers hand work to Go and return.
type ConcurrentExecutor struct {
	ctx       context.Context
	cancel    context.CancelFunc
	logger    zerolog.Logger
	semaphore chan struct{}
	wg        sync.WaitGroup
	mu        sync.Mutex
	stopped   bool
}

// NewConcurrentExecutor creates a new concurrent executor. Tasks receive a
// context derived from parent that is cancelled by Shutdown.
func NewConcurrentExecutor(parent context.Context, logger zerolog.Logger, maxConcurrent int) *ConcurrentExecutor {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	ctx, cancel := context.WithCancel(parent)
	return &ConcurrentExecutor{
		ctx:       ctx,
		cancel:    cancel,
		logger:    logger.With().Str("component", "ConcurrentExecutor").Logger(),
		semaphore: make(chan struct{}, maxConcurrent),
	}
}

// Go schedules fn. It returns without waiting for a free slot; the task
// itself waits, and gives up if the executor shuts down first.
func (ce *ConcurrentExecutor) Go(operation string, fn func(ctx context.Context)) error {
	ce.mu.Lock()
	if ce.stopped {
		ce.mu.Unlock()
		return ErrExecutorStopped
	}
	ce.wg.Add(1)
	ce.mu.Unlock()

	go func() {
		defer ce.wg.Done()

		select {
		case ce.semaphore <- struct{}{}:
			defer func() { <-ce.semaphore }()
		case <-ce.ctx.Done():
			ce.logger.Debug().Str("operation", operation).Msg("Operation cancelled while waiting for slot")
			return
		}

		if cancelled := CheckCancellationWithLog(ce.ctx, ce.logger, operation); cancelled.Cancelled {
			return
		}

		defer func() {
			if r := recover(); r != nil {
				ce.logger.Error().Interface("panic", r).Str("operation", operation).Msg("Recovered from panic in task")
			}
		}()
		fn(ce.ctx)
	}()
	return nil
}

// Shutdown stops accepting tasks and waits up to timeout for running ones.
// Tasks still running after timeout have their context cancelled.
func (ce *ConcurrentExecutor) Shutdown(timeout time.Duration) error {
	ce.mu.Lock()
	ce.stopped = true
	ce.mu.Unlock()

	done := make(chan struct{})
	go func() {
		ce.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		ce.cancel()
		ce.logger.Info().Msg("All tasks finished")
		return nil
	case <-timer.C:
		ce.cancel()
		<-done
		ce.logger.Warn().Dur("timeout", timeout).Msg("Graceful shutdown timed out, tasks cancelled")
		return context.DeadlineExceeded
	}
}
