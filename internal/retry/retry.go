package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/companion-booking/internal/httperr"
)

// Policy retries read paths against the relational store.
type Policy struct {
	Attempts uint
	Delay    time.Duration
}

func DefaultPolicy() Policy {
	return Policy{Attempts: 3, Delay: 200 * time.Millisecond}
}

// Linear waits Delay, 2*Delay, 3*Delay ... between attempts.
type Linear struct {
	Delay   time.Duration
	attempt int
}

func (b *Linear) NextBackOff() time.Duration {
	b.attempt++
	return time.Duration(b.attempt) * b.Delay
}

func (b *Linear) Reset() {
	b.attempt = 0
}

// Do runs op until it succeeds, the attempts run out or the error is
// permanent. Not-found and business errors are never retried.
func Do[T any](ctx context.Context, p Policy, op func() (T, error)) (T, error) {
	attempts := p.Attempts
	if attempts == 0 {
		attempts = 1
	}

	v, err := backoff.Retry(ctx, func() (T, error) {
		v, err := op()
		if err != nil && isPermanent(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	},
		backoff.WithBackOff(&Linear{Delay: p.Delay}),
		backoff.WithMaxTries(attempts),
		backoff.WithMaxElapsedTime(0),
	)

	// the last attempt returns the wrapper untouched
	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		err = perm.Unwrap()
	}
	return v, err
}

func isPermanent(err error) bool {
	if errors.Is(err, gorm.ErrRecordNotFound) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var be httperr.BusinessError
	return errors.As(err, &be)
}
