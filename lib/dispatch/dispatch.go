// Package dispatch pins tasks to pooled single-thread workers so that
// blocking SQL drivers can be used safely from concurrent code. A task's
// first Run acquires a worker and records a dispatch handle in the context;
// nested Runs see the handle and stay on the pinned thread, which keeps an
// open transaction on the connection's thread from begin to commit.
package dispatch

import (
	"context"
	"io"
)

// Dispatcher runs fn with worker affinity. Implementations must guarantee
// that nested Run calls (fn calling Run again with the ctx it was given)
// execute on the same thread as the outer call.
type Dispatcher interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error

	io.Closer
}
