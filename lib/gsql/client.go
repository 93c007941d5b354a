package gsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"gfx.cafe/gfx/taffy/lib/dispatch"
	"gfx.cafe/gfx/taffy/lib/gsql/rx"
	"gfx.cafe/gfx/taffy/lib/instrumentation/prom"
)

type Config struct {
	// Enabled controls whether blocking transactions go through a worker
	// pool at all. Unset means enabled; disabling installs the passthrough
	// dispatcher.
	Enabled *bool `json:"enabled,omitempty"`

	Dispatcher dispatch.Config `json:"dispatcher,omitempty"`

	// ConnPool is the connection pool object backing the source, if the
	// caller has one. Dispatcher sizing fields left unset are derived from
	// it through lib/poolmeta.
	ConnPool any `json:"-"`

	Dialect Dialect `json:"dialect,omitempty"`

	Logger *zap.Logger `json:"-"`
}

// Client is the transaction facade. Blocking sources are driven through the
// sticky dispatcher; reactive sources through their own publisher.
type Client struct {
	blocking   BlockingSource
	reactive   ReactiveSource
	dispatcher dispatch.Dispatcher
	renderer   renderer
	tracer     trace.Tracer
	logger     *zap.Logger
}

func NewClient(source any, config Config) (*Client, error) {
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	T := &Client{
		renderer: renderer{dialect: config.Dialect},
		tracer:   otel.Tracer("gfx.cafe/gfx/taffy/lib/gsql"),
		logger:   config.Logger,
	}

	switch s := source.(type) {
	case ReactiveSource:
		T.reactive = s
	case BlockingSource:
		T.blocking = s
	default:
		return nil, fmt.Errorf("source %T is neither a blocking nor a reactive source", source)
	}

	if T.blocking != nil {
		if config.Enabled != nil && !*config.Enabled {
			T.dispatcher = dispatch.NewPassthrough(config.Logger)
		} else {
			dispatchConfig := config.Dispatcher
			if dispatchConfig.Logger == nil {
				dispatchConfig.Logger = config.Logger
			}
			dispatchConfig, err := dispatch.ResolveConfig(dispatchConfig, config.ConnPool)
			if err != nil {
				return nil, err
			}
			T.dispatcher = dispatch.NewSticky(dispatchConfig)
		}
	}

	return T, nil
}

// Dispatcher exposes the client's dispatcher, mainly so callers can run
// non-transactional work with the same affinity guarantees.
func (T *Client) Dispatcher() dispatch.Dispatcher {
	return T.dispatcher
}

// Transaction begins a transaction, runs body with a Tx bound to it, and
// commits or rolls back depending on body's error. For blocking sources the
// whole call is pinned to one worker thread; nested Transaction calls from
// inside body reuse that worker and, for sources that support it, the
// surrounding database transaction.
func (T *Client) Transaction(ctx context.Context, opts TxOptions, body func(ctx context.Context, tx *Tx) error) error {
	ctx, span := T.tracer.Start(ctx, "gsql.transaction")
	defer span.End()

	if T.reactive != nil {
		return T.reactiveTransaction(ctx, opts, body)
	}

	labels := prom.TransactionLabels{Mode: "blocking"}
	prom.Transaction.Begun(labels).Inc()
	start := time.Now()
	defer func() {
		prom.Transaction.Duration(labels).Observe(float64(time.Since(start)) / float64(time.Millisecond))
	}()

	err := T.dispatcher.Run(ctx, func(ctx context.Context) error {
		return T.blocking.Transaction(ctx, opts, func(s Session) error {
			return body(ctx, &Tx{session: s, renderer: T.renderer})
		})
	})
	if err != nil {
		if errors.Is(err, dispatch.ErrClosed) && ctx.Err() == nil {
			return &DataAccessError{Message: "worker pool is closed", Cause: err}
		}
		return Normalize(err)
	}
	return nil
}

func (T *Client) reactiveTransaction(ctx context.Context, opts TxOptions, body func(ctx context.Context, tx *Tx) error) error {
	if opts.ReadOnly {
		T.logger.Warn("read-only transactions are not supported by reactive sources, ignoring the flag")
		opts.ReadOnly = false
	}

	labels := prom.TransactionLabels{Mode: "reactive"}
	prom.Transaction.Begun(labels).Inc()
	start := time.Now()
	defer func() {
		prom.Transaction.Duration(labels).Observe(float64(time.Since(start)) / float64(time.Millisecond))
	}()

	p := T.reactive.TransactionPublisher(ctx, opts, func(s Session) error {
		return body(ctx, &Tx{session: s, renderer: T.renderer})
	})
	if _, err := rx.Block(ctx, p); err != nil {
		return Normalize(&DataAccessError{
			Message: MessageBlockingPublisher,
			Cause:   err,
		})
	}
	return nil
}

func (T *Client) withTx(ctx context.Context, fn func(ctx context.Context, tx *Tx) error) error {
	return T.Transaction(ctx, TxOptions{}, fn)
}

func (T *Client) Insert(ctx context.Context, record Record) (n int, err error) {
	err = T.withTx(ctx, func(ctx context.Context, tx *Tx) error {
		n, err = tx.Insert(ctx, record)
		return err
	})
	return
}

func (T *Client) InsertAll(ctx context.Context, records []Record) (n int, err error) {
	err = T.withTx(ctx, func(ctx context.Context, tx *Tx) error {
		n, err = tx.InsertAll(ctx, records)
		return err
	})
	return
}

func (T *Client) InsertOnConflictDoNothing(ctx context.Context, record Record) (n int, err error) {
	err = T.withTx(ctx, func(ctx context.Context, tx *Tx) error {
		n, err = tx.InsertOnConflictDoNothing(ctx, record)
		return err
	})
	return
}

func (T *Client) Update(ctx context.Context, record Record) (n int, err error) {
	err = T.withTx(ctx, func(ctx context.Context, tx *Tx) error {
		n, err = tx.Update(ctx, record)
		return err
	})
	return
}

func (T *Client) Store(ctx context.Context, record Record) (n int, err error) {
	err = T.withTx(ctx, func(ctx context.Context, tx *Tx) error {
		n, err = tx.Store(ctx, record)
		return err
	})
	return
}

func (T *Client) Delete(ctx context.Context, record Record) (n int, err error) {
	err = T.withTx(ctx, func(ctx context.Context, tx *Tx) error {
		n, err = tx.Delete(ctx, record)
		return err
	})
	return
}

func (T *Client) DeleteAll(ctx context.Context, records []Record) (n int, err error) {
	err = T.withTx(ctx, func(ctx context.Context, tx *Tx) error {
		n, err = tx.DeleteAll(ctx, records)
		return err
	})
	return
}

func (T *Client) Exists(ctx context.Context, record Record) (exists bool, err error) {
	err = T.withTx(ctx, func(ctx context.Context, tx *Tx) error {
		exists, err = tx.Exists(ctx, record)
		return err
	})
	return
}

func (T *Client) Count(ctx context.Context, table string, where Condition, groupBy string) (counts map[any]int64, err error) {
	err = T.withTx(ctx, func(ctx context.Context, tx *Tx) error {
		counts, err = tx.Count(ctx, table, where, groupBy)
		return err
	})
	return
}

// Close shuts down the worker pool. In-flight acquires resolve promptly;
// workers still held are reaped as their transactions finish.
func (T *Client) Close() error {
	if T.dispatcher == nil {
		return nil
	}
	return T.dispatcher.Close()
}
