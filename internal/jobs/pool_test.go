package jobs

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_RunsSubmittedTasks(t *testing.T) {
	p := NewPool(2)
	p.Start(context.Background())

	var ran atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		require.NoError(t, p.Submit(func(_ context.Context) error {
			defer wg.Done()
			ran.Add(1)
			return nil
		}))
	}

	wg.Wait()
	p.Stop()
	assert.Equal(t, int64(10), ran.Load())
}

func TestPool_StopDrainsQueuedTasks(t *testing.T) {
	p := NewPool(1)

	var ran atomic.Int64
	for i := 0; i < 3; i++ {
		require.NoError(t, p.Submit(func(_ context.Context) error {
			ran.Add(1)
			return nil
		}))
	}

	// Workers start after tasks are queued; Stop must still run them all.
	p.Start(context.Background())
	p.Stop()
	assert.Equal(t, int64(3), ran.Load())
}

func TestPool_SubmitAfterStop(t *testing.T) {
	p := NewPool(1)
	p.Start(context.Background())
	p.Stop()

	err := p.Submit(func(_ context.Context) error { return nil })
	assert.Error(t, err)
}

func TestPool_SubmitNil(t *testing.T) {
	p := NewPool(1)
	assert.Error(t, p.Submit(nil))
}

func TestPool_SubmitBlocksUntilSpaceFrees(t *testing.T) {
	p := NewPool(1) // queue capacity 4, workers not yet started

	var ran atomic.Int64
	task := func(_ context.Context) error {
		ran.Add(1)
		return nil
	}
	for i := 0; i < 4; i++ {
		require.NoError(t, p.Submit(task))
	}

	// The fifth submit has no queue space; it must wait, not drop.
	submitted := make(chan error, 1)
	go func() { submitted <- p.Submit(task) }()

	select {
	case <-submitted:
		t.Fatal("submit returned while the queue was full")
	case <-time.After(50 * time.Millisecond):
	}

	p.Start(context.Background())

	select {
	case err := <-submitted:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("submit never unblocked after workers started")
	}

	p.Stop()
	assert.Equal(t, int64(5), ran.Load())
}

func TestPool_StopUnblocksPendingSubmit(t *testing.T) {
	p := NewPool(1) // workers never started, queue fills and stays full

	for i := 0; i < 4; i++ {
		require.NoError(t, p.Submit(func(_ context.Context) error { return nil }))
	}

	submitted := make(chan error, 1)
	go func() { submitted <- p.Submit(func(_ context.Context) error { return nil }) }()

	time.Sleep(50 * time.Millisecond)
	p.Stop()

	select {
	case err := <-submitted:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("pending submit never unblocked on Stop")
	}
}

func TestPool_StopDrainsDespiteShutdownSignal(t *testing.T) {
	// The pool runs on its own context; cancelling the signal context
	// that drives server shutdown must not abandon queued work.
	signalCtx, cancel := context.WithCancel(context.Background())

	p := NewPool(1)
	p.Start(context.Background())

	release := make(chan struct{})
	var ran atomic.Int64
	require.NoError(t, p.Submit(func(_ context.Context) error {
		<-release
		ran.Add(1)
		return nil
	}))
	for i := 0; i < 3; i++ {
		require.NoError(t, p.Submit(func(_ context.Context) error {
			ran.Add(1)
			return nil
		}))
	}

	cancel()
	<-signalCtx.Done()
	close(release)
	p.Stop()

	assert.Equal(t, int64(4), ran.Load())
}

func TestPool_TaskErrorDoesNotStopWorkers(t *testing.T) {
	p := NewPool(1)
	p.Start(context.Background())

	require.NoError(t, p.Submit(func(_ context.Context) error {
		return errors.New("boom")
	}))

	done := make(chan struct{})
	require.NoError(t, p.Submit(func(_ context.Context) error {
		close(done)
		return nil
	}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not survive a failing task")
	}
	p.Stop()
}
