package dispatch

import (
	"errors"
	"fmt"
	"time"

	"gfx.cafe/gfx/taffy/lib/worker/pool"
)

// ErrClosed is returned by Run when the pool shut down while waiting for a
// worker.
var ErrClosed = pool.ErrClosed

// TimeoutError is returned by Run when no worker became available within the
// acquire timeout. The cause carries the underlying cancellation.
type TimeoutError struct {
	Timeout time.Duration

	cause error
}

func (T *TimeoutError) Error() string {
	return fmt.Sprintf("failed to acquire a worker within %s (try increasing acquire_timeout?)", T.Timeout)
}

func (T *TimeoutError) Unwrap() error {
	return T.cause
}

// IsTimeout reports whether err is an acquire timeout.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}
