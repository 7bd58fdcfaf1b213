package watch

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const defaultRetryDelay = 100 * time.Millisecond

// retryPolicy retries a sink write with doubling delays. sleep is swapped
// in tests.
type retryPolicy struct {
	maxRetries int
	baseDelay  time.Duration
	logger     *zap.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

func newRetryPolicy(maxRetries int, baseDelay time.Duration, logger *zap.Logger) retryPolicy {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = defaultRetryDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return retryPolicy{maxRetries: maxRetries, baseDelay: baseDelay, logger: logger, sleep: sleepContext}
}

// do runs fn until it succeeds, the retries run out, or ctx ends. A
// cancelled context is never retried.
func (p retryPolicy) do(ctx context.Context, op string, fields []zap.Field, fn func(context.Context) error) error {
	delay := p.baseDelay
	for attempt := 1; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			if attempt > 1 {
				p.logger.Info(op+" recovered", with(fields, zap.Int("attempt", attempt))...)
			}
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if attempt > p.maxRetries {
			p.logger.Error(op+" gave up", with(fields, zap.Int("attempts", attempt), zap.Error(err))...)
			return err
		}

		p.logger.Warn(op+" failed, retrying",
			with(fields, zap.Int("attempt", attempt), zap.Duration("delay", delay), zap.Error(err))...)
		if err := p.sleep(ctx, delay); err != nil {
			return err
		}
		delay *= 2
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func with(fields []zap.Field, more ...zap.Field) []zap.Field {
	return append(fields[:len(fields):len(fields)], more...)
}
