package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/codebuildervaibhav/video-translator-bot/internal/logging"
	"github.com/codebuildervaibhav/video-translator-bot/internal/types"
)

// gateProcessor blocks every job until release is closed.
type gateProcessor struct {
	started  chan string
	release  chan struct{}
	done     atomic.Int32
	current  atomic.Int32
	maxInUse atomic.Int32
}

func newGate() *gateProcessor {
	return &gateProcessor{started: make(chan string, 16), release: make(chan struct{})}
}

func (g *gateProcessor) Process(_ context.Context, job *types.Job) error {
	n := g.current.Add(1)
	for {
		m := g.maxInUse.Load()
		if n <= m || g.maxInUse.CompareAndSwap(m, n) {
			break
		}
	}
	g.started <- job.ID
	<-g.release
	g.current.Add(-1)
	g.done.Add(1)
	return nil
}

func waitStarted(t *testing.T, g *gateProcessor) string {
	t.Helper()
	select {
	case id := <-g.started:
		return id
	case <-time.After(5 * time.Second):
		t.Fatal("job did not start")
		return ""
	}
}

func TestEnqueueRejectsWhenFull(t *testing.T) {
	g := newGate()
	pool := NewWorkerPool(1, 1, g, logging.Discard())
	pool.Start(context.Background())

	if err := pool.Enqueue(&types.Job{ID: "running"}); err != nil {
		t.Fatalf("Enqueue 1: %v", err)
	}
	waitStarted(t, g)

	if err := pool.Enqueue(&types.Job{ID: "queued"}); err != nil {
		t.Fatalf("Enqueue 2: %v", err)
	}
	if err := pool.Enqueue(&types.Job{ID: "overflow"}); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("Enqueue 3 = %v, want ErrQueueFull", err)
	}
	if pool.QueueDepth() != 1 || pool.Active() != 1 {
		t.Errorf("depth = %d active = %d", pool.QueueDepth(), pool.Active())
	}

	close(g.release)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if g.done.Load() != 2 {
		t.Errorf("processed %d jobs, want 2 (queued jobs drain on stop)", g.done.Load())
	}
	if err := pool.Enqueue(&types.Job{ID: "late"}); !errors.Is(err, ErrPoolStopped) {
		t.Errorf("Enqueue after Stop = %v, want ErrPoolStopped", err)
	}
}

func TestWorkersRunConcurrently(t *testing.T) {
	g := newGate()
	pool := NewWorkerPool(2, 4, g, logging.Discard())
	pool.Start(context.Background())

	for i := 0; i < 4; i++ {
		if err := pool.Enqueue(&types.Job{ID: fmt.Sprint(i)}); err != nil {
			t.Fatalf("Enqueue %d: %v", i, err)
		}
	}
	waitStarted(t, g)
	waitStarted(t, g)
	close(g.release)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if got := g.maxInUse.Load(); got != 2 {
		t.Errorf("max concurrent jobs = %d, want 2", got)
	}
	if g.done.Load() != 4 {
		t.Errorf("processed %d, want 4", g.done.Load())
	}
}

func TestWorkerSurvivesPanic(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	proc := ProcessorFunc(func(_ context.Context, job *types.Job) error {
		mu.Lock()
		seen = append(seen, job.ID)
		mu.Unlock()
		if job.ID == "boom" {
			panic("unexpected nil")
		}
		job.State = types.StateDelivered
		return nil
	})

	pool := NewWorkerPool(1, 4, proc, logging.Discard())
	pool.Start(context.Background())

	boom := &types.Job{ID: "boom"}
	next := &types.Job{ID: "next"}
	if err := pool.Enqueue(boom); err != nil {
		t.Fatal(err)
	}
	if err := pool.Enqueue(next); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	if boom.State != types.StateFailed || boom.Error == nil {
		t.Errorf("panicking job = %+v, want FAILED", boom)
	}
	if next.State != types.StateDelivered {
		t.Errorf("worker should keep going after a panic, next = %s", next.State)
	}
	if len(seen) != 2 {
		t.Errorf("seen = %v", seen)
	}
}

func TestStopTimesOut(t *testing.T) {
	g := newGate()
	pool := NewWorkerPool(1, 1, g, logging.Discard())
	pool.Start(context.Background())
	if err := pool.Enqueue(&types.Job{ID: "slow"}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	waitStarted(t, g)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := pool.Stop(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Stop = %v, want deadline exceeded", err)
	}
	close(g.release)
}
