package worker

import (
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Config struct {
	// IdleTimeout is how long the thread may sit idle before it exits.
	// The thread is restarted transparently by the next Do.
	// Zero means the thread is never culled.
	IdleTimeout time.Duration
}

// Worker is a single OS thread servicing a FIFO job queue. The thread is
// started lazily on the first Do and stays locked (runtime.LockOSThread)
// until it exits, so every job handed to the same Worker observes the same
// thread.
type Worker struct {
	id     uuid.UUID
	config Config

	jobs     chan *job
	shutdown chan struct{}

	// running and exited describe the current thread generation. exited is
	// closed when that generation's thread returns, waking senders so they
	// can respawn it.
	running bool
	exited  chan struct{}

	closed bool
	mu     sync.Mutex
}

type job struct {
	fn       func()
	done     chan struct{}
	panicked any
}

func (j *job) run() {
	defer close(j.done)
	defer func() {
		j.panicked = recover()
	}()
	j.fn()
}

func New(config Config) *Worker {
	return &Worker{
		id:       uuid.New(),
		config:   config,
		jobs:     make(chan *job),
		shutdown: make(chan struct{}),
	}
}

func (T *Worker) ID() uuid.UUID {
	return T.id
}

// Do runs fn on the worker's thread and waits for it to return. It reports
// false, without running fn, if the worker is closed. If fn panics, the
// panic is rethrown on the caller's goroutine and the thread stays usable.
func (T *Worker) Do(fn func()) bool {
	j := &job{
		fn:   fn,
		done: make(chan struct{}),
	}

	for {
		T.mu.Lock()
		if T.closed {
			T.mu.Unlock()
			return false
		}
		if !T.running {
			T.running = true
			T.exited = make(chan struct{})
			go T.loop(T.exited)
		}
		exited := T.exited
		T.mu.Unlock()

		select {
		case T.jobs <- j:
			<-j.done
			if j.panicked != nil {
				panic(j.panicked)
			}
			return true
		case <-exited:
			// the thread was culled before accepting the job, respawn
			continue
		case <-T.shutdown:
			return false
		}
	}
}

func (T *Worker) loop(exited chan struct{}) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	exit := func() {
		T.mu.Lock()
		T.running = false
		close(exited)
		T.mu.Unlock()
	}

	var timer *time.Timer
	var timeout <-chan time.Time
	if T.config.IdleTimeout != 0 {
		timer = time.NewTimer(T.config.IdleTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	for {
		select {
		case j := <-T.jobs:
			j.run()
			if timer != nil {
				if !timer.Stop() {
					<-timer.C
				}
				timer.Reset(T.config.IdleTimeout)
			}
		case <-timeout:
			exit()
			return
		case <-T.shutdown:
			exit()
			return
		}
	}
}

// Close stops the worker. It is idempotent. Jobs already accepted run to
// completion; Do calls after Close report false.
func (T *Worker) Close() {
	T.mu.Lock()
	defer T.mu.Unlock()

	if T.closed {
		return
	}
	T.closed = true
	close(T.shutdown)
}
