package pool

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"gfx.cafe/gfx/taffy/lib/util/chans"
	"gfx.cafe/gfx/taffy/lib/util/ring"
	"gfx.cafe/gfx/taffy/lib/util/slices"
	"gfx.cafe/gfx/taffy/lib/worker"
)

// Order is the handout discipline for released workers.
type Order int

const (
	// OrderLIFO hands back the most recently released worker first,
	// favoring warm threads.
	OrderLIFO Order = iota
	// OrderFIFO rotates workers evenly. Pairs well with worker idle
	// timeouts since every thread keeps seeing work.
	OrderFIFO
)

type Config struct {
	// Size is the number of workers. Values below 1 are treated as 1.
	Size int

	Order Order

	// IdleTimeout is forwarded to each worker's thread (see worker.Config).
	IdleTimeout time.Duration

	Logger *zap.Logger
}

type Status int

const (
	StatusAcquired Status = iota
	StatusEmpty
	StatusClosed
)

var ErrClosed = errors.New("worker pool is closed")

// Pool is a bounded set of workers with a blocking Acquire. Capacity lives
// in the token channel, ordering lives in the handle deque; a token is a
// permit to pop one handle. Releases push the handle before returning the
// token, so a received token always finds a handle outside of shutdown.
type Pool struct {
	config Config

	tokens chan struct{}
	closed chan struct{}

	handles ring.Ring[*worker.Worker]
	held    []*worker.Worker
	mu      sync.Mutex

	closeOnce sync.Once
}

func NewPool(config Config) *Pool {
	if config.Size < 1 {
		config.Size = 1
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	T := &Pool{
		config: config,
		tokens: make(chan struct{}, config.Size),
		closed: make(chan struct{}),
	}
	for i := 0; i < config.Size; i++ {
		T.handles.PushBack(worker.New(worker.Config{
			IdleTimeout: config.IdleTimeout,
		}))
		T.tokens <- struct{}{}
	}
	return T
}

func (T *Pool) Size() int {
	return T.config.Size
}

// Idle reports how many workers are waiting to be acquired.
func (T *Pool) Idle() int {
	T.mu.Lock()
	defer T.mu.Unlock()

	return T.handles.Length()
}

func (T *Pool) pop() (*worker.Worker, bool) {
	T.mu.Lock()
	defer T.mu.Unlock()

	w, ok := T.handles.PopFront()
	if ok {
		T.held = append(T.held, w)
	}
	return w, ok
}

// TryAcquire pops a worker without blocking. StatusEmpty means no worker is
// ready right now; StatusClosed means the pool is shut down.
func (T *Pool) TryAcquire() (*worker.Worker, Status) {
	select {
	case <-T.closed:
		return nil, StatusClosed
	default:
	}

	if _, ok := chans.TryRecv(T.tokens); !ok {
		return nil, StatusEmpty
	}

	w, ok := T.pop()
	if !ok {
		// lost the token to a concurrent Close
		return nil, StatusClosed
	}
	return w, StatusAcquired
}

// Acquire blocks until a worker is ready, the pool is closed (ErrClosed), or
// ctx is done (ctx.Err()). On cancellation no token is consumed.
func (T *Pool) Acquire(ctx context.Context) (*worker.Worker, error) {
	select {
	case <-T.tokens:
	case <-T.closed:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	w, ok := T.pop()
	if !ok {
		return nil, ErrClosed
	}
	return w, nil
}

// Release returns a worker to the pool. Releasing a worker the pool did not
// hand out is a no-op, as is releasing after Close (the worker is reaped
// instead, since the pool can no longer own it).
func (T *Pool) Release(w *worker.Worker) {
	if w == nil {
		return
	}

	T.mu.Lock()
	if slices.Index(T.held, w) == -1 {
		T.mu.Unlock()
		return
	}
	T.held = slices.Remove(T.held, w)

	select {
	case <-T.closed:
		T.mu.Unlock()
		w.Close()
		return
	default:
	}

	switch T.config.Order {
	case OrderFIFO:
		T.handles.PushBack(w)
	default:
		T.handles.PushFront(w)
	}
	T.mu.Unlock()

	T.tokens <- struct{}{}
}

// Close wakes all waiters and reaps every worker not currently held. Held
// workers are reaped by their eventual Release.
func (T *Pool) Close() {
	T.closeOnce.Do(func() {
		close(T.closed)

		T.mu.Lock()
		defer T.mu.Unlock()

		for {
			w, ok := T.handles.PopFront()
			if !ok {
				break
			}
			w.Close()
		}
		for {
			if _, ok := chans.TryRecv(T.tokens); !ok {
				break
			}
		}
	})
}
