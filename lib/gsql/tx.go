package gsql

import (
	"context"
	"errors"
)

var ErrNoPrimaryKey = errors.New("record has no primary key")

// Tx is the handle the transaction body works with. Every call runs
// synchronously on the transaction's worker thread.
type Tx struct {
	session  Session
	renderer renderer
}

func (T *Tx) Session() Session {
	return T.session
}

func (T *Tx) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	return T.session.Exec(ctx, query, args...)
}

func (T *Tx) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	return T.session.Query(ctx, query, args...)
}

// Insert writes the record's changed fields and syncs the record with the
// stored row, including generated keys. It reports 0 without touching the
// database when no field is changed.
func (T *Tx) Insert(ctx context.Context, record Record) (int, error) {
	return T.insert(ctx, record, false)
}

// InsertOnConflictDoNothing is Insert, except a conflicting row makes the
// INSERT a no-op and the count 0.
func (T *Tx) InsertOnConflictDoNothing(ctx context.Context, record Record) (int, error) {
	return T.insert(ctx, record, true)
}

func (T *Tx) insert(ctx context.Context, record Record, onConflictDoNothing bool) (int, error) {
	cols, vals := changedColumns(record)
	if len(cols) == 0 {
		return 0, nil
	}

	query := T.renderer.insert(record.Table(), cols, columnNames(record), onConflictDoNothing)
	rows, err := T.session.Query(ctx, query, vals...)
	if err != nil {
		return 0, err
	}
	ok, err := copyBack(rows, record)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	clearChanged(record)
	return 1, nil
}

// InsertAll inserts every record that has changes and reports the count
// inserted. Empty input and all-unchanged input are no-ops.
func (T *Tx) InsertAll(ctx context.Context, records []Record) (int, error) {
	var n int
	for _, record := range records {
		inserted, err := T.insert(ctx, record, false)
		if err != nil {
			return n, err
		}
		n += inserted
	}
	return n, nil
}

// Update writes the record's changed fields to the row addressed by its
// primary key, in declared key order, using the record's current values.
func (T *Tx) Update(ctx context.Context, record Record) (int, error) {
	cols, vals := changedColumns(record)
	if len(cols) == 0 {
		return 0, nil
	}
	pkCols, pkVals := primaryKey(record)
	if len(pkCols) == 0 {
		return 0, ErrNoPrimaryKey
	}

	query := T.renderer.update(record.Table(), cols, pkCols)
	affected, err := T.session.Exec(ctx, query, append(vals, pkVals...)...)
	if err != nil {
		return 0, err
	}
	clearChanged(record)
	if affected > 1 {
		affected = 1
	}
	return int(affected), nil
}

// Store inserts when any primary-key field is changed or holds null in a
// non-nullable column, and updates otherwise.
func (T *Tx) Store(ctx context.Context, record Record) (int, error) {
	insert := false
	for i, f := range record.Fields() {
		if !f.PrimaryKey {
			continue
		}
		if record.Changed(i) || (record.Get(i) == nil && !f.Nullable) {
			insert = true
			break
		}
	}
	if insert {
		return T.Insert(ctx, record)
	}
	return T.Update(ctx, record)
}

func (T *Tx) Delete(ctx context.Context, record Record) (int, error) {
	return T.DeleteAll(ctx, []Record{record})
}

// DeleteAll deletes the rows whose primary keys match the records' current
// key values. The WHERE is the OR over each record's key conjunction. An
// empty list reports 0.
func (T *Tx) DeleteAll(ctx context.Context, records []Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	pkCols, _ := primaryKey(records[0])
	if len(pkCols) == 0 {
		return 0, ErrNoPrimaryKey
	}
	var args []any
	for _, record := range records {
		_, vals := primaryKey(record)
		args = append(args, vals...)
	}

	query := T.renderer.delete(records[0].Table(), pkCols, len(records))
	affected, err := T.session.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

func (T *Tx) Exists(ctx context.Context, record Record) (bool, error) {
	pkCols, pkVals := primaryKey(record)
	if len(pkCols) == 0 {
		return false, ErrNoPrimaryKey
	}

	rows, err := T.session.Query(ctx, T.renderer.exists(record.Table(), pkCols), pkVals...)
	if err != nil {
		return false, err
	}
	defer func() {
		_ = rows.Close()
	}()

	if !rows.Next() {
		return false, rows.Err()
	}
	var exists bool
	if err := rows.Scan(&exists); err != nil {
		return false, err
	}
	return exists, rows.Err()
}

// Count groups the matching rows by groupBy and counts each group. Null
// group keys are rejected with *NullFieldError.
func (T *Tx) Count(ctx context.Context, table string, where Condition, groupBy string) (map[any]int64, error) {
	query := T.renderer.count(table, where, groupBy)
	rows, err := T.session.Query(ctx, query, where.Args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	out := make(map[any]int64)
	for rows.Next() {
		var key any
		var count int64
		if err := rows.Scan(&key, &count); err != nil {
			return nil, err
		}
		if key == nil {
			return nil, &NullFieldError{Field: table + "." + groupBy}
		}
		if b, ok := key.([]byte); ok {
			key = string(b)
		}
		out[key] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// copyBack scans the first returned row into the record. It reports false
// when the statement produced no row.
func copyBack(rows Rows, record Record) (bool, error) {
	defer func() {
		_ = rows.Close()
	}()

	if !rows.Next() {
		return false, rows.Err()
	}

	fields := record.Fields()
	slots := make([]any, len(fields))
	dests := make([]any, len(fields))
	for i := range slots {
		dests[i] = &slots[i]
	}
	if err := rows.Scan(dests...); err != nil {
		return false, err
	}
	for i := range fields {
		record.Set(i, slots[i])
	}
	return true, rows.Err()
}
