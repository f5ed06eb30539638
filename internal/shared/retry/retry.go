// Package retry provides a fixed-interval polling policy used for
// long-running provider operations (payment and trade status checks).
package retry

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrMaxAttempts is returned when the poll function never reported done
	// within the allowed number of attempts.
	ErrMaxAttempts = errors.New("retry: max attempts exceeded")
	// ErrTimeout is returned when the overall deadline elapsed first.
	ErrTimeout = errors.New("retry: timeout exceeded")
)

// Policy describes a fixed-interval poll: at most MaxAttempts calls, spaced
// Interval apart, bounded by an overall Timeout.
type Policy struct {
	Interval    time.Duration
	MaxAttempts int
	Timeout     time.Duration
}

// DefaultPolicy matches the status-polling behavior of the payment and
// trade flows: every 2 seconds, up to 30 attempts.
func DefaultPolicy() Policy {
	return Policy{
		Interval:    2 * time.Second,
		MaxAttempts: 30,
		Timeout:     90 * time.Second,
	}
}

// PollFunc is called once per attempt. Returning done=true stops polling
// successfully. A non-nil error stops polling and is returned to the caller;
// transient provider errors should be handled inside the function.
type PollFunc func(ctx context.Context) (done bool, err error)

// Do runs fn under the policy. The first attempt happens immediately; each
// subsequent attempt waits Interval. Context cancellation is honored between
// attempts.
func (p Policy) Do(ctx context.Context, fn PollFunc) error {
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	for attempt := 1; ; attempt++ {
		done, err := fn(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if p.MaxAttempts > 0 && attempt >= p.MaxAttempts {
			return ErrMaxAttempts
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return ErrTimeout
			}
			return ctx.Err()
		case <-time.After(p.Interval):
		}
	}
}
