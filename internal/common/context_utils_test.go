package common

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	assert.False(t, CheckCancellation(ctx).Cancelled)

	cancel()
	result := CheckCancellationWithLog(ctx, zerolog.Nop(), "test")
	assert.True(t, result.Cancelled)
	assert.ErrorIs(t, result.Error, context.Canceled)
}

func TestConcurrentExecutor_RunsTasks(t *testing.T) {
	ce := NewConcurrentExecutor(context.Background(), zerolog.Nop(), 2)

	var ran int32
	for i := 0; i < 5; i++ {
		require.NoError(t, ce.Go("task", func(ctx context.Context) {
			atomic.AddInt32(&ran, 1)
		}))
	}

	require.NoError(t, ce.Shutdown(time.Second))
	assert.Equal(t, int32(5), atomic.LoadInt32(&ran))
	assert.ErrorIs(t, ce.Go("late", func(ctx context.Context) {}), ErrExecutorStopped)
}

func TestConcurrentExecutor_BoundsConcurrency(t *testing.T) {
	ce := NewConcurrentExecutor(context.Background(), zerolog.Nop(), 2)

	var current, peak int32
	for i := 0; i < 6; i++ {
		require.NoError(t, ce.Go("task", func(ctx context.Context) {
			n := atomic.AddInt32(&current, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&current, -1)
		}))
	}

	require.NoError(t, ce.Shutdown(time.Second))
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestConcurrentExecutor_ShutdownTimeoutCancels(t *testing.T) {
	ce := NewConcurrentExecutor(context.Background(), zerolog.Nop(), 1)

	cancelled := make(chan struct{})
	require.NoError(t, ce.Go("slow", func(ctx context.Context) {
		<-ctx.Done()
		close(cancelled)
	}))

	err := ce.Shutdown(20 * time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	select {
	case <-cancelled:
	default:
		t.Fatal("task context was not cancelled")
	}
}

func TestConcurrentExecutor_RecoversPanics(t *testing.T) {
	ce := NewConcurrentExecutor(context.Background(), zerolog.Nop(), 1)
	require.NoError(t, ce.Go("boom", func(ctx context.Context) { panic("boom") }))
	assert.NoError(t, ce.Shutdown(time.Second))
}
