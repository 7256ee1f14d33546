// Package retry runs fallible operations under an exponential backoff policy.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff"
)

// Policy describes how an operation is retried. Errors rejected by Retryable end the
// loop at once and are returned unwrapped; exhausted retries go through Wrap.
type Policy struct {
	Attempts     int
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration

	Retryable func(error) bool
	Wrap      func(attempts int, err error) error
	Notify    func(attempt int, err error, next time.Duration)
}

// Default mirrors the upstream client: five tries starting at one second, doubling.
func Default() Policy {
	return Policy{
		Attempts:     5,
		InitialDelay: time.Second,
		Multiplier:   2,
	}
}

func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.InitialDelay
	bo.Multiplier = p.Multiplier
	bo.RandomizationFactor = 0
	bo.MaxElapsedTime = 0
	if p.MaxDelay > 0 {
		bo.MaxInterval = p.MaxDelay
	} else {
		bo.MaxInterval = time.Hour
	}
	if bo.Multiplier < 1 {
		bo.Multiplier = 1
	}

	// WithMaxRetries treats zero retries as no limit.
	if p.Attempts <= 1 {
		return backoff.WithContext(&backoff.StopBackOff{}, ctx)
	}
	return backoff.WithContext(backoff.WithMaxRetries(bo, uint64(p.Attempts-1)), ctx)
}

// Do calls op until it succeeds, fails permanently or runs out of attempts.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempt := 0
	permanent := false

	err := backoff.RetryNotify(func() error {
		attempt++
		if err := ctx.Err(); err != nil {
			permanent = true
			return backoff.Permanent(err)
		}
		err := op(ctx)
		if err != nil && p.Retryable != nil && !p.Retryable(err) {
			permanent = true
			return backoff.Permanent(err)
		}
		return err
	}, p.backOff(ctx), func(err error, next time.Duration) {
		if p.Notify != nil {
			p.Notify(attempt, err, next)
		}
	})

	if err == nil || permanent || p.Wrap == nil {
		return err
	}
	return p.Wrap(attempt, err)
}
