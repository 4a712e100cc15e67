package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExpirer struct {
	calls    atomic.Int32
	maxAge   atomic.Int64
	deadline atomic.Bool
	err      error
}

func (f *fakeExpirer) ExpirePending(ctx context.Context, maxAge time.Duration) (int, error) {
	f.calls.Add(1)
	f.maxAge.Store(int64(maxAge))
	_, ok := ctx.Deadline()
	f.deadline.Store(ok)
	return 2, f.err
}

func TestNewScheduler(t *testing.T) {
	t.Run("Invalid Schedule", func(t *testing.T) {
		_, err := NewScheduler(&fakeExpirer{}, Config{Schedule: "not a schedule"}, nil)
		assert.Error(t, err)
	})
}

func TestRunOnce(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		exp := &fakeExpirer{}
		s, err := NewScheduler(exp, Config{Schedule: "@every 1h", MaxAge: 30 * time.Minute, RunTimeout: time.Second}, nil)
		require.NoError(t, err)

		s.RunOnce()
		assert.Equal(t, int32(1), exp.calls.Load())
		assert.Equal(t, int64(30*time.Minute), exp.maxAge.Load())
		assert.True(t, exp.deadline.Load())
	})

	t.Run("Expirer Error", func(t *testing.T) {
		exp := &fakeExpirer{err: errors.New("dynamodb unavailable")}
		s, err := NewScheduler(exp, Config{Schedule: "@every 1h"}, nil)
		require.NoError(t, err)

		assert.NotPanics(t, s.RunOnce)
		assert.Equal(t, int32(1), exp.calls.Load())
	})
}

func TestStartStop(t *testing.T) {
	exp := &fakeExpirer{}
	s, err := NewScheduler(exp, Config{Schedule: "@every 1s", MaxAge: time.Minute, RunTimeout: time.Second}, nil)
	require.NoError(t, err)

	s.Start()
	assert.Eventually(t, func() bool { return exp.calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
	s.Stop()
}
