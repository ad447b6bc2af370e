package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/StickerSwap_Go/internal/testing/leaktest"
	"github.com/osse101/StickerSwap_Go/internal/worker"
)

type countingJob struct {
	runs atomic.Int32
	done chan struct{}
}

func (j *countingJob) Process(ctx context.Context) error {
	j.runs.Add(1)
	select {
	case j.done <- struct{}{}:
	default:
	}
	return nil
}

func TestScheduler(t *testing.T) {
	pool := worker.NewPool(1, 10)
	pool.Start()
	defer func() { _ = pool.Stop(context.Background()) }()

	sched := New(pool)
	defer sched.Stop()

	job := &countingJob{done: make(chan struct{}, 1)}
	sched.Schedule("count", 10*time.Millisecond, job)

	select {
	case <-job.done:
	case <-time.After(time.Second):
		t.Fatal("job did not run")
	}
	assert.GreaterOrEqual(t, job.runs.Load(), int32(1))
}

func TestScheduler_StopIsIdempotentAndLeaksNothing(t *testing.T) {
	checker := leaktest.NewGoroutineChecker(t)

	pool := worker.NewPool(1, 1)
	pool.Start()

	sched := New(pool)
	sched.Schedule("a", time.Hour, &countingJob{done: make(chan struct{}, 1)})
	sched.Schedule("b", time.Hour, &countingJob{done: make(chan struct{}, 1)})
	sched.Stop()
	sched.Stop()

	require.NoError(t, pool.Stop(context.Background()))
	checker.Check(0)
}
