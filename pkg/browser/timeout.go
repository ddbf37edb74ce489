package browser

import (
	"context"
	"time"
)

type raceResult[T any] struct {
	val T
	err error
}

// Race runs op and returns its result if it completes within timeout,
// otherwise a *TimeoutError carrying label. The context handed to op is
// cancelled when the deadline fires so cancellation-aware work can abort;
// a late result is discarded. A timeout <= 0 disables the deadline.
func Race[T any](ctx context.Context, timeout time.Duration, label string, op func(ctx context.Context) (T, error)) (T, error) {
	opCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Buffered so the goroutine never blocks after we stop listening
	done := make(chan raceResult[T], 1)
	go func() {
		v, err := op(opCtx)
		done <- raceResult[T]{val: v, err: err}
	}()

	var deadline <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	var zero T
	select {
	case r := <-done:
		return r.val, r.err
	case <-deadline:
		return zero, &TimeoutError{Label: label, After: timeout}
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// RaceErr is Race for operations that only return an error.
func RaceErr(ctx context.Context, timeout time.Duration, label string, op func(ctx context.Context) error) error {
	_, err := Race(ctx, timeout, label, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
