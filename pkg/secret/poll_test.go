package secret_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sigtoken/pkg/secret"
)

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (r *countingRefresher) Refresh(context.Context) error {
	r.calls.Add(1)
	return r.err
}

func TestPoll(t *testing.T) {
	t.Parallel()

	t.Run("refreshes until cancelled", func(t *testing.T) {
		t.Parallel()

		r := &countingRefresher{}
		ctx, cancel := context.WithCancel(t.Context())
		done := make(chan error, 1)
		go func() { done <- secret.Poll(ctx, r, 5*time.Millisecond, nil) }()

		require.Eventually(t, func() bool { return r.calls.Load() >= 3 }, 5*time.Second, 5*time.Millisecond)

		cancel()
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("Poll did not return after cancel")
		}
	})

	t.Run("keeps polling after failures", func(t *testing.T) {
		t.Parallel()

		r := &countingRefresher{err: errors.New("unreachable")}
		ctx, cancel := context.WithCancel(t.Context())
		defer cancel()
		go func() { _ = secret.Poll(ctx, r, 5*time.Millisecond, nil) }()

		require.Eventually(t, func() bool { return r.calls.Load() >= 3 }, 5*time.Second, 5*time.Millisecond)
	})

	t.Run("invalid arguments", func(t *testing.T) {
		t.Parallel()

		require.ErrorIs(t, secret.Poll(t.Context(), nil, time.Second, nil), secret.ErrInvalidConfig)
		require.ErrorIs(t, secret.Poll(t.Context(), &countingRefresher{}, 0, nil), secret.ErrInvalidConfig)
	})
}
