package retry

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countingSleeper struct {
	calls  int
	delays []time.Duration
}

func (s *countingSleeper) Sleep(_ context.Context, d time.Duration) error {
	s.calls++
	s.delays = append(s.delays, d)
	return nil
}

func failingThenOK(failures int) (func(context.Context) (string, error), *int) {
	calls := 0
	return func(context.Context) (string, error) {
		calls++
		if calls <= failures {
			return "", errors.New("transient")
		}
		return "ok", nil
	}, &calls
}

func TestDoSucceedsAfterTransientFailures(t *testing.T) {
	t.Parallel()

	for failures := 0; failures < 4; failures++ {
		sleeper := &countingSleeper{}
		var diag bytes.Buffer
		policy := Policy{MaxAttempts: 4, Delay: 2 * time.Second, Diagnostics: &diag, Sleep: sleeper.Sleep}

		op, calls := failingThenOK(failures)
		out, err := Do(context.Background(), policy, op)
		require.NoError(t, err)
		require.Equal(t, "ok", out)
		require.Equal(t, failures+1, *calls)
		require.Equal(t, failures, sleeper.calls, "sleeps must equal attempts used minus one")
		for _, d := range sleeper.delays {
			require.Equal(t, 2*time.Second, d, "delay is fixed")
		}
	}
}

func TestDoExhaustsAttempts(t *testing.T) {
	t.Parallel()

	sleeper := &countingSleeper{}
	var diag bytes.Buffer
	cause := errors.New("boom")
	calls := 0
	policy := Policy{MaxAttempts: 3, Delay: 5 * time.Second, Diagnostics: &diag, Sleep: sleeper.Sleep}

	_, err := Do(context.Background(), policy, func(context.Context) (int, error) {
		calls++
		return 0, cause
	})

	require.ErrorIs(t, err, ErrRemoteCallExhausted)
	require.ErrorIs(t, err, cause)
	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	require.Equal(t, 3, exhausted.Attempts)
	require.Equal(t, 3, calls)
	require.Equal(t, 2, sleeper.calls)
	require.Equal(t,
		"attempt 1/3 failed, waiting 5s\nattempt 2/3 failed, waiting 5s\n",
		diag.String())
}

func TestDoTreatsNonPositiveAttemptsAsOne(t *testing.T) {
	t.Parallel()

	sleeper := &countingSleeper{}
	calls := 0
	err := Run(context.Background(), Policy{MaxAttempts: 0, Sleep: sleeper.Sleep}, func(context.Context) error {
		calls++
		return errors.New("nope")
	})
	require.ErrorIs(t, err, ErrRemoteCallExhausted)
	require.Equal(t, 1, calls)
	require.Zero(t, sleeper.calls)
}

func TestDoStopsWhenContextCancelledDuringWait(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Run(ctx, Policy{MaxAttempts: 5, Delay: time.Hour}, func(context.Context) error {
		calls++
		cancel()
		return errors.New("transient")
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, calls)
}
