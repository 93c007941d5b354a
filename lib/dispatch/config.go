package dispatch

import (
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"gfx.cafe/gfx/taffy/lib/poolmeta"
	"gfx.cafe/gfx/taffy/lib/util/dur"
	"gfx.cafe/gfx/taffy/lib/worker/pool"
)

const (
	DefaultSize           = 10
	DefaultIdleTimeout    = 1 * time.Minute
	DefaultAcquireTimeout = 30 * time.Second
)

type Config struct {
	// Name labels the dispatcher in logs and metrics.
	Name string `json:"name,omitempty"`

	// Size is the number of workers. Zero means derive it from the
	// connection pool (see ResolveConfig), falling back to DefaultSize.
	Size int `json:"pool_size,omitempty"`

	// IdleTimeout is how long a worker thread may sit idle before it exits.
	IdleTimeout dur.Duration `json:"idle_timeout,omitempty"`

	// AcquireTimeout bounds the wait for a worker. Zero means derive or
	// default; negative disables the bound.
	AcquireTimeout dur.Duration `json:"acquire_timeout,omitempty"`

	// AcquireThreshold, when positive, emits a ThresholdExceededEvent for
	// acquires slower than it. When it is set and Listeners is empty, a
	// LogListener is installed.
	AcquireThreshold dur.Duration `json:"acquire_threshold,omitempty"`

	Order pool.Order `json:"order,omitempty"`

	Listeners []Listener `json:"-"`

	Logger *zap.Logger `json:"-"`
}

func (T Config) withDefaults() Config {
	if T.Name == "" {
		T.Name = "default"
	}
	if T.Size == 0 {
		T.Size = DefaultSize
	}
	if T.IdleTimeout == 0 {
		T.IdleTimeout = dur.Duration(DefaultIdleTimeout)
	}
	if T.AcquireTimeout == 0 {
		T.AcquireTimeout = dur.Duration(DefaultAcquireTimeout)
	}
	if T.Logger == nil {
		T.Logger = zap.NewNop()
	}
	if T.AcquireThreshold > 0 && len(T.Listeners) == 0 {
		T.Listeners = []Listener{&LogListener{Logger: T.Logger}}
	}
	return T
}

// ResolveConfig fills the unset sizing fields of config from the metadata of
// connPool, a connection pool object recognized by package poolmeta. The
// adapter is only consulted when at least one field is actually unset; a nil
// connPool leaves config untouched (withDefaults applies the fallbacks
// later).
func ResolveConfig(config Config, connPool any) (Config, error) {
	if connPool == nil {
		return config, nil
	}
	if config.Size != 0 && config.IdleTimeout != 0 && config.AcquireTimeout != 0 {
		return config, nil
	}

	meta, err := poolmeta.Describe(connPool)
	if err != nil {
		return config, errors.Wrap(err, "deriving dispatcher config from connection pool")
	}

	if config.Size == 0 {
		config.Size = meta.Size
	}
	if config.IdleTimeout == 0 {
		config.IdleTimeout = dur.Duration(meta.IdleTimeout)
	}
	if config.AcquireTimeout == 0 {
		config.AcquireTimeout = dur.Duration(meta.AcquireTimeout)
	}
	return config, nil
}
