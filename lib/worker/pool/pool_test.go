package pool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"gfx.cafe/gfx/taffy/lib/worker"
)

func TestPool_TryAcquire(t *testing.T) {
	p := NewPool(Config{Size: 1})
	defer p.Close()

	w, st := p.TryAcquire()
	if st != StatusAcquired || w == nil {
		t.Fatal("expected to acquire a worker")
	}

	if _, st := p.TryAcquire(); st != StatusEmpty {
		t.Error("expected StatusEmpty while the worker is held, got", st)
	}

	p.Release(w)
	if w2, st := p.TryAcquire(); st != StatusAcquired || w2 != w {
		t.Error("expected the released worker back")
	}
}

func TestPool_TryAcquireClosed(t *testing.T) {
	p := NewPool(Config{Size: 1})
	p.Close()

	if _, st := p.TryAcquire(); st != StatusClosed {
		t.Error("expected StatusClosed, got", st)
	}
}

func TestPool_AcquireBlocks(t *testing.T) {
	p := NewPool(Config{Size: 1})
	defer p.Close()

	w, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	acquired := make(chan *worker.Worker)
	go func() {
		w2, err := p.Acquire(context.Background())
		if err != nil {
			t.Error(err)
		}
		acquired <- w2
	}()

	select {
	case <-acquired:
		t.Fatal("second acquire must block while the worker is held")
	case <-time.After(50 * time.Millisecond):
	}

	p.Release(w)
	select {
	case w2 := <-acquired:
		p.Release(w2)
	case <-time.After(time.Second):
		t.Fatal("second acquire did not wake after release")
	}
}

func TestPool_AcquireCancelled(t *testing.T) {
	p := NewPool(Config{Size: 1})
	defer p.Close()

	w, _ := p.TryAcquire()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := p.Acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Error("expected DeadlineExceeded, got", err)
	}

	// the cancelled wait must not have eaten a token
	p.Release(w)
	if _, st := p.TryAcquire(); st != StatusAcquired {
		t.Error("expected the worker to be acquirable after release, got", st)
	}
}

func TestPool_BoundedConcurrency(t *testing.T) {
	const size = 10
	const tasks = 100

	p := NewPool(Config{Size: size})
	defer p.Close()

	var current, peak atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < tasks; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w, err := p.Acquire(context.Background())
			if err != nil {
				t.Error(err)
				return
			}
			defer p.Release(w)

			c := current.Add(1)
			for {
				old := peak.Load()
				if c <= old || peak.CompareAndSwap(old, c) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			current.Add(-1)
		}()
	}
	wg.Wait()

	if got := peak.Load(); got > size {
		t.Error("expected at most", size, "workers held concurrently, saw", got)
	}
}

func TestPool_OrderLIFO(t *testing.T) {
	p := NewPool(Config{Size: 2, Order: OrderLIFO})
	defer p.Close()

	a, _ := p.TryAcquire()
	b, _ := p.TryAcquire()
	p.Release(a)
	p.Release(b)

	if w, _ := p.TryAcquire(); w != b {
		t.Error("expected the most recently released worker first")
	}
}

func TestPool_OrderFIFO(t *testing.T) {
	p := NewPool(Config{Size: 2, Order: OrderFIFO})
	defer p.Close()

	a, _ := p.TryAcquire()
	b, _ := p.TryAcquire()
	p.Release(a)
	p.Release(b)

	if w, _ := p.TryAcquire(); w != a {
		t.Error("expected the first released worker first")
	}
}

func TestPool_CloseWakesWaiters(t *testing.T) {
	p := NewPool(Config{Size: 1})

	w, _ := p.TryAcquire()

	done := make(chan error, 1)
	go func() {
		_, err := p.Acquire(context.Background())
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	p.Close()

	select {
	case err := <-done:
		if !errors.Is(err, ErrClosed) {
			t.Error("expected ErrClosed, got", err)
		}
	case <-time.After(time.Second):
		t.Fatal("waiter did not wake after Close")
	}

	// late release of a held worker is a no-op beyond reaping
	p.Release(w)
	p.Release(w)
}

func TestPool_ReleaseForeignWorker(t *testing.T) {
	p := NewPool(Config{Size: 1})
	defer p.Close()

	// releasing a worker the pool never handed out must not add capacity
	p.Release(worker.New(worker.Config{}))

	if _, st := p.TryAcquire(); st != StatusAcquired {
		t.Fatal("expected the pool's own worker")
	}
	if _, st := p.TryAcquire(); st != StatusEmpty {
		t.Error("expected no extra capacity, got", st)
	}
}

func TestPool_Invariant(t *testing.T) {
	p := NewPool(Config{Size: 3})
	defer p.Close()

	if p.Idle() != 3 {
		t.Fatal("expected 3 idle workers")
	}
	w, _ := p.TryAcquire()
	if p.Idle() != 2 {
		t.Error("expected 2 idle workers while one is held")
	}
	p.Release(w)
	if p.Idle() != 3 {
		t.Error("expected 3 idle workers after release")
	}
}
