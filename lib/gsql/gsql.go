// Package gsql makes a blocking SQL source safe and pleasant to use from
// concurrent code. Transactions are dispatched through a thread-affinity
// worker pool (lib/dispatch) so that every statement of a transaction runs
// on the OS thread that holds the connection; reactive sources bypass the
// pool and are bridged through lib/gsql/rx instead.
package gsql

import (
	"context"

	"gfx.cafe/gfx/taffy/lib/gsql/rx"
)

// Session is a handle on an in-progress transaction. Implementations run
// statements synchronously on the calling thread.
type Session interface {
	// Exec runs a statement and reports the number of affected rows.
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	// Query runs a statement that produces rows.
	Query(ctx context.Context, query string, args ...any) (Rows, error)
}

// Rows is the subset of result-set behavior the helpers need. *sql.Rows
// satisfies it directly.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// BlockingSource runs a transaction synchronously on the calling thread:
// begin before body, commit on nil, rollback otherwise. Isolation and
// read-only options are applied to the underlying connection before body
// runs. A body error must be wrapped in a *DataAccessError whose cause chain
// keeps the original error reachable.
type BlockingSource interface {
	Transaction(ctx context.Context, opts TxOptions, body func(Session) error) error
}

// ReactiveSource exposes the transaction as a single-value publisher. A
// source implementing ReactiveSource is driven through it and never touches
// the worker pool. Read-only is not part of this contract.
type ReactiveSource interface {
	TransactionPublisher(ctx context.Context, opts TxOptions, body func(Session) error) rx.Publisher[struct{}]
}
