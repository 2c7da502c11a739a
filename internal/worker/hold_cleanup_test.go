package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingCleaner struct {
	calls atomic.Int32
}

func (c *countingCleaner) CleanupExpiredHolds(context.Context) int {
	c.calls.Add(1)
	return 2
}

func TestRunOnce(t *testing.T) {
	c := &countingCleaner{}
	w := NewHoldCleanupWorker(c, time.Minute)

	assert.Equal(t, 2, w.RunOnce(context.Background()))
	assert.Equal(t, int32(1), c.calls.Load())
}

func TestStartTicksUntilCancelled(t *testing.T) {
	c := &countingCleaner{}
	w := NewHoldCleanupWorker(c, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return c.calls.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestStartDisabled(t *testing.T) {
	c := &countingCleaner{}
	w := NewHoldCleanupWorker(c, 0)

	// returns immediately
	w.Start(context.Background())
	assert.Equal(t, int32(0), c.calls.Load())
}
