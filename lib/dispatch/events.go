package dispatch

import (
	"time"

	"go.uber.org/zap"
)

// TimeoutEvent is emitted when an acquire gives up after the configured
// acquire timeout.
type TimeoutEvent struct {
	Timeout time.Duration
}

// ThresholdExceededEvent is emitted when an acquire succeeds but took longer
// than the configured threshold. Observational only.
type ThresholdExceededEvent struct {
	Elapsed   time.Duration
	Threshold time.Duration
}

type Listener interface {
	AcquireTimeout(ev TimeoutEvent)
	AcquireThresholdExceeded(ev ThresholdExceededEvent)
}

// LogListener is the listener installed by default when an acquire threshold
// is configured without any explicit listeners.
type LogListener struct {
	Logger *zap.Logger
}

func (T *LogListener) AcquireTimeout(ev TimeoutEvent) {
	T.Logger.Error("timed out waiting for a worker",
		zap.Duration("timeout", ev.Timeout),
	)
}

func (T *LogListener) AcquireThresholdExceeded(ev ThresholdExceededEvent) {
	T.Logger.Warn("acquiring a worker took longer than the configured threshold",
		zap.Duration("elapsed", ev.Elapsed),
		zap.Duration("threshold", ev.Threshold),
	)
}

var _ Listener = (*LogListener)(nil)
