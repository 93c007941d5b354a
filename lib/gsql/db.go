package gsql

import (
	"context"
	"database/sql"

	"go.uber.org/zap"
)

// DBSource adapts a *sql.DB into a BlockingSource. BeginTx applies the
// isolation level and read-only flag to the connection before any user code
// runs; nothing is restored on exit since the connection goes back to the
// driver's own pool.
type DBSource struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewDBSource(db *sql.DB, logger *zap.Logger) *DBSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DBSource{
		db:     db,
		logger: logger,
	}
}

func (T *DBSource) Transaction(ctx context.Context, opts TxOptions, body func(Session) error) error {
	tx, err := T.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: opts.Isolation.Level(),
		ReadOnly:  opts.ReadOnly,
	})
	if err != nil {
		return &DataAccessError{
			Message: "failed to begin transaction",
			Cause:   err,
		}
	}

	if err := body(&dbSession{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			T.logger.Error("failed to roll back transaction", zap.Error(rbErr))
		}
		return &DataAccessError{
			Message: MessageRollbackCaused,
			Cause:   err,
		}
	}

	if err := tx.Commit(); err != nil {
		return &DataAccessError{
			Message: "failed to commit transaction",
			Cause:   err,
		}
	}
	return nil
}

type dbSession struct {
	tx *sql.Tx
}

func (T *dbSession) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := T.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return affected, nil
}

func (T *dbSession) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := T.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

var _ BlockingSource = (*DBSource)(nil)
var _ Session = (*dbSession)(nil)
