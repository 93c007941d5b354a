package dispatch

import (
	"context"

	"github.com/google/uuid"

	"gfx.cafe/gfx/taffy/lib/worker"
)

// Handle marks a task as pinned to a worker. It lives in the task's context
// from the outermost Run until that Run returns.
type Handle struct {
	id     uuid.UUID
	worker *worker.Worker
}

func (T *Handle) ID() uuid.UUID {
	return T.id
}

// Worker is nil for passthrough handles.
func (T *Handle) Worker() *worker.Worker {
	return T.worker
}

type handleKey struct{}

func WithHandle(ctx context.Context, h *Handle) context.Context {
	return context.WithValue(ctx, handleKey{}, h)
}

func HandleFrom(ctx context.Context) (*Handle, bool) {
	h, ok := ctx.Value(handleKey{}).(*Handle)
	return h, ok
}
