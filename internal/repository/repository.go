package repository

import (
	"context"
	"errors"
	"time"
)

// ErrReviewNotFound is returned by all review adapters for unknown ids.
var ErrReviewNotFound = errors.New("review not found")

const (
	readRetryAttempts = 3
	readRetryDelay    = 50 * time.Millisecond
)

// withReadRetry retries idempotent read operations with a bounded, linearly
// growing delay. Not-found results are terminal and never retried.
func withReadRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 1; attempt <= readRetryAttempts; attempt++ {
		err = fn()
		if err == nil || errors.Is(err, ErrReviewNotFound) {
			return err
		}
		if attempt == readRetryAttempts {
			break
		}
		timer := time.NewTimer(time.Duration(attempt) * readRetryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}
