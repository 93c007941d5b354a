package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"gfx.cafe/gfx/taffy/lib/instrumentation/prom"
	"gfx.cafe/gfx/taffy/lib/worker"
	"gfx.cafe/gfx/taffy/lib/worker/pool"
)

// Sticky is the affinity dispatcher. The outermost Run acquires a worker,
// runs fn on its thread and releases it on every exit path; nested Runs
// reuse the pinned worker without touching the pool.
type Sticky struct {
	config Config
	pool   *pool.Pool
	tracer trace.Tracer
	logger *zap.Logger
	labels prom.DispatcherLabels
}

func NewSticky(config Config) *Sticky {
	config = config.withDefaults()
	return &Sticky{
		config: config,
		pool: pool.NewPool(pool.Config{
			Size:        config.Size,
			Order:       config.Order,
			IdleTimeout: config.IdleTimeout.Duration(),
			Logger:      config.Logger,
		}),
		tracer: otel.Tracer("gfx.cafe/gfx/taffy/lib/dispatch"),
		logger: config.Logger,
		labels: prom.DispatcherLabels{Dispatcher: config.Name},
	}
}

func (T *Sticky) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := HandleFrom(ctx); ok {
		return fn(ctx)
	}

	w, err := T.acquire(ctx)
	if err != nil {
		return err
	}
	defer T.release(w)

	runCtx := WithHandle(ctx, &Handle{
		id:     uuid.New(),
		worker: w,
	})

	var fnErr error
	if ok := w.Do(func() {
		fnErr = fn(runCtx)
	}); !ok {
		return ErrClosed
	}
	return fnErr
}

func (T *Sticky) acquire(ctx context.Context) (*worker.Worker, error) {
	timeout := T.config.AcquireTimeout.Duration()
	start := time.Now()

	acquireCtx, span := T.tracer.Start(ctx, "worker.acquire")
	defer span.End()

	if timeout > 0 {
		var cancel context.CancelFunc
		acquireCtx, cancel = context.WithTimeout(acquireCtx, timeout)
		defer cancel()
	}

	w, err := T.pool.Acquire(acquireCtx)
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
			prom.Dispatcher.Timeouts(T.labels).Inc()
			T.emit(func(l Listener) {
				l.AcquireTimeout(TimeoutEvent{Timeout: timeout})
			})
			return nil, &TimeoutError{Timeout: timeout, cause: err}
		case errors.Is(err, pool.ErrClosed):
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, ErrClosed
		default:
			return nil, err
		}
	}

	elapsed := time.Since(start)
	prom.Dispatcher.Acquire(T.labels).Observe(float64(elapsed) / float64(time.Millisecond))
	prom.Dispatcher.Held(T.labels).Inc()

	if threshold := T.config.AcquireThreshold.Duration(); threshold > 0 && elapsed > threshold {
		prom.Dispatcher.Thresholds(T.labels).Inc()
		T.emit(func(l Listener) {
			l.AcquireThresholdExceeded(ThresholdExceededEvent{
				Elapsed:   elapsed,
				Threshold: threshold,
			})
		})
	}

	return w, nil
}

func (T *Sticky) release(w *worker.Worker) {
	T.pool.Release(w)
	prom.Dispatcher.Held(T.labels).Dec()
}

// emit notifies every listener, isolating their failures from the caller.
func (T *Sticky) emit(fn func(Listener)) {
	for _, l := range T.config.Listeners {
		func() {
			defer func() {
				if r := recover(); r != nil {
					T.logger.Error("dispatch listener panicked", zap.Any("panic", r))
				}
			}()
			fn(l)
		}()
	}
}

func (T *Sticky) Close() error {
	T.pool.Close()
	return nil
}

var _ Dispatcher = (*Sticky)(nil)
