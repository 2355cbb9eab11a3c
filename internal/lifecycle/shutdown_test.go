package lifecycle

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestShutdown_RunsAllHooks(t *testing.T) {
	s := NewShutdown(testLogger(), 0)

	var ran int32
	for i := 0; i < 3; i++ {
		s.Register("hook", func(context.Context) error {
			atomic.AddInt32(&ran, 1)
			return nil
		})
	}

	require.NoError(t, s.Execute(context.Background()))
	assert.Equal(t, int32(3), atomic.LoadInt32(&ran))
}

func TestShutdown_CollectsFailures(t *testing.T) {
	s := NewShutdown(testLogger(), 0)

	s.Register("good", func(context.Context) error { return nil })
	s.Register("bad", func(context.Context) error { return errors.New("boom") })

	err := s.Execute(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad: boom")
}

func TestShutdown_AppliesPerHookTimeout(t *testing.T) {
	s := NewShutdown(testLogger(), 20*time.Millisecond)

	s.Register("slow", func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
			return nil
		}
	})

	start := time.Now()
	err := s.Execute(context.Background())
	require.Error(t, err)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestShutdown_IgnoresNilHooks(t *testing.T) {
	s := NewShutdown(testLogger(), 0)
	s.Register("nil", nil)

	require.NoError(t, s.Execute(context.Background()))
}
