package dispatch

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Passthrough is the dispatcher used when no worker pool is configured. It
// runs fn on the caller's thread under a single shared handle, so nested
// code paths still observe an affinity binding. Blocking drivers are only
// safe this way if the surrounding runtime never migrates the task, which is
// why the first Run logs an advisory.
type Passthrough struct {
	handle *Handle
	logger *zap.Logger
	once   sync.Once
}

func NewPassthrough(logger *zap.Logger) *Passthrough {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Passthrough{
		handle: &Handle{id: uuid.New()},
		logger: logger,
	}
}

func (T *Passthrough) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	T.once.Do(func() {
		T.logger.Warn("no worker pool configured, blocking sql work will run on the caller's thread")
	})

	if _, ok := HandleFrom(ctx); ok {
		return fn(ctx)
	}
	return fn(WithHandle(ctx, T.handle))
}

func (T *Passthrough) Close() error {
	return nil
}

var _ Dispatcher = (*Passthrough)(nil)
