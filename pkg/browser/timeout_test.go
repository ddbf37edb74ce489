package browser

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRace_ReturnsResultBeforeDeadline(t *testing.T) {
	v, err := Race(context.Background(), time.Second, "fast op", func(ctx context.Context) (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestRace_PropagatesOperationError(t *testing.T) {
	boom := errors.New("boom")
	err := RaceErr(context.Background(), time.Second, "failing op", func(ctx context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestRace_NeverResolvingOperationTimesOut(t *testing.T) {
	never := make(chan struct{})
	defer close(never)

	deadline := 100 * time.Millisecond
	start := time.Now()
	_, err := Race(context.Background(), deadline, "stuck op", func(ctx context.Context) (string, error) {
		<-never
		return "late", nil
	})
	elapsed := time.Since(start)

	var timeoutErr *TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, "stuck op", timeoutErr.Label)
	assert.Equal(t, deadline, timeoutErr.After)
	assert.Equal(t, CategoryTimeout, Categorize(err))
	assert.GreaterOrEqual(t, elapsed, deadline)
	assert.Less(t, elapsed, deadline+time.Second)
}

func TestRace_CancelsOperationContextOnTimeout(t *testing.T) {
	cancelled := make(chan struct{})
	_, err := Race(context.Background(), 20*time.Millisecond, "cancellable", func(ctx context.Context) (int, error) {
		<-ctx.Done()
		close(cancelled)
		return 0, ctx.Err()
	})
	require.Error(t, err)

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("operation context was not cancelled after the deadline")
	}
}

func TestRace_ZeroTimeoutWaitsForResult(t *testing.T) {
	v, err := Race(context.Background(), 0, "no deadline", func(ctx context.Context) (string, error) {
		time.Sleep(10 * time.Millisecond)
		return "done", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "done", v)
}

func TestRace_ParentCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Race(ctx, time.Second, "parent cancelled", func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	assert.ErrorIs(t, err, context.Canceled)
}
