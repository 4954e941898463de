package retry

import (
	"context"
	"time"

	goretry "github.com/sethvargo/go-retry"
)

const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = time.Second
)

// Policy describes how a failing call is repeated. The delay before retry k is BaseDelay * 2^(k-1).
type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration
	// Retryable decides whether an error deserves another attempt. Nil retries every error.
	Retryable func(error) bool
	// Sleep waits between attempts; tests replace it to observe the schedule.
	Sleep func(ctx context.Context, d time.Duration) error
	// OnRetry runs before each retry with the 1-based retry number and the error that caused it.
	OnRetry func(retry int, err error)
}

// Default returns the backend client policy: three retries starting at one second.
func Default() Policy {
	return Policy{MaxRetries: DefaultMaxRetries, BaseDelay: DefaultBaseDelay}
}

// Delays lists the wait before every retry, in order.
func (p Policy) Delays() []time.Duration {
	backoff := p.backoff()
	delays := make([]time.Duration, 0, p.retries())
	for {
		next, stop := backoff.Next()
		if stop {
			return delays
		}
		delays = append(delays, next)
	}
}

// Attempts is the total number of calls the policy allows.
func (p Policy) Attempts() int {
	return p.retries() + 1
}

// Do calls fn until it succeeds, returns a non-retryable error, or the schedule is exhausted.
// The last error is returned. A cancelled ctx stops the loop with the context error.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context, attempt int) error) error {
	backoff := p.backoff()
	sleep := p.Sleep
	if sleep == nil {
		sleep = Sleep
	}

	attempt := 1
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := fn(ctx, attempt)
		if err == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
		delay, stop := backoff.Next()
		if stop {
			return err
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt, err)
		}
		if sleepErr := sleep(ctx, delay); sleepErr != nil {
			return err
		}
		attempt++
	}
}

func (p Policy) retries() int {
	if p.MaxRetries < 0 {
		return 0
	}
	return p.MaxRetries
}

func (p Policy) backoff() goretry.Backoff {
	base := p.BaseDelay
	if base <= 0 {
		base = DefaultBaseDelay
	}
	return goretry.WithMaxRetries(uint64(p.retries()), goretry.NewExponential(base))
}

// Sleep blocks for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
