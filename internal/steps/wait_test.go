package steps

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWait_SucceedsImmediately(t *testing.T) {
	remote := &fakeRemote{}
	w := &Wait{Condition: "test -f /ready", attempts: 5, interval: time.Millisecond}

	err := w.Run(context.Background(), newTestEnv(remote))
	require.NoError(t, err)
	assert.Len(t, remote.commands, 1)
}

func TestWait_SucceedsAfterRetries(t *testing.T) {
	calls := 0
	remote := &fakeRemote{runErr: func([]string) error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	}}
	w := &Wait{Condition: "test -f /ready", attempts: 5, interval: time.Millisecond}

	err := w.Run(context.Background(), newTestEnv(remote))
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWait_ExhaustsAttempts(t *testing.T) {
	remote := &fakeRemote{runErr: func([]string) error { return errors.New("never") }}
	w := &Wait{Condition: "test -f /ready", attempts: 4, interval: time.Millisecond}

	err := w.Run(context.Background(), newTestEnv(remote))
	require.Error(t, err)

	var timeoutErr *WaitTimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, "test -f /ready", timeoutErr.Condition)
	assert.Equal(t, 4, timeoutErr.Attempts)
	assert.Len(t, remote.commands, 4, "every attempt probes the condition exactly once")
}

func TestWait_ContextCancellation(t *testing.T) {
	remote := &fakeRemote{runErr: func([]string) error { return errors.New("never") }}
	w := &Wait{Condition: "test -f /ready", attempts: 10, interval: time.Minute}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := w.Run(ctx, newTestEnv(remote))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWait_FactoryDefaults(t *testing.T) {
	step, err := newWait(map[string]any{"condition": "test -f /ready"})
	require.NoError(t, err)

	w, ok := step.(*Wait)
	require.True(t, ok)
	assert.Equal(t, waitAttempts, w.attempts)
	assert.Equal(t, waitInterval, w.interval)
}
