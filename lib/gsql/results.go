package gsql

// ScanFunc produces one value from the current row.
type ScanFunc[T any] func(rows Rows) (T, error)

// RecordScanner scans whole rows into fresh records produced by newRecord.
// The row's columns must match the record's declared fields.
func RecordScanner[T Record](newRecord func() T) ScanFunc[T] {
	return func(rows Rows) (T, error) {
		record := newRecord()
		fields := record.Fields()
		slots := make([]any, len(fields))
		dests := make([]any, len(fields))
		for i := range slots {
			dests[i] = &slots[i]
		}
		if err := rows.Scan(dests...); err != nil {
			return record, err
		}
		for i := range fields {
			record.Set(i, slots[i])
		}
		return record, nil
	}
}

func ToList[T any](rows Rows, scan ScanFunc[T]) ([]T, error) {
	defer func() {
		_ = rows.Close()
	}()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func ToSet[T comparable](rows Rows, scan ScanFunc[T]) (map[T]struct{}, error) {
	list, err := ToList(rows, scan)
	if err != nil {
		return nil, err
	}
	out := make(map[T]struct{}, len(list))
	for _, v := range list {
		out[v] = struct{}{}
	}
	return out, nil
}

func ToMap[K comparable, V any](rows Rows, scan ScanFunc[V], key func(V) K) (map[K]V, error) {
	list, err := ToList(rows, scan)
	if err != nil {
		return nil, err
	}
	out := make(map[K]V, len(list))
	for _, v := range list {
		out[key(v)] = v
	}
	return out, nil
}

// First returns the first row, failing with ErrNoRecords when there is
// none.
func First[T any](rows Rows, scan ScanFunc[T]) (T, error) {
	v, ok, err := firstOrNone(rows, scan)
	if err != nil {
		return *new(T), err
	}
	if !ok {
		return *new(T), ErrNoRecords
	}
	return v, nil
}

// FirstOrNull returns the first row, or nil when there is none.
func FirstOrNull[T any](rows Rows, scan ScanFunc[T]) (*T, error) {
	v, ok, err := firstOrNone(rows, scan)
	if err != nil || !ok {
		return nil, err
	}
	return &v, nil
}

// Single asserts exactly one row: a second row fails with ErrTooManyRecords
// and zero rows fail with ErrNoRecords.
func Single[T any](rows Rows, scan ScanFunc[T]) (T, error) {
	v, ok, err := singleOrNone(rows, scan)
	if err != nil {
		return *new(T), err
	}
	if !ok {
		return *new(T), ErrNoRecords
	}
	return v, nil
}

// SingleOrNull asserts at most one row: a second row fails with
// ErrTooManyRecords, zero rows yield nil.
func SingleOrNull[T any](rows Rows, scan ScanFunc[T]) (*T, error) {
	v, ok, err := singleOrNone(rows, scan)
	if err != nil || !ok {
		return nil, err
	}
	return &v, nil
}

func firstOrNone[T any](rows Rows, scan ScanFunc[T]) (T, bool, error) {
	defer func() {
		_ = rows.Close()
	}()

	if !rows.Next() {
		return *new(T), false, rows.Err()
	}
	v, err := scan(rows)
	if err != nil {
		return *new(T), false, err
	}
	return v, true, nil
}

func singleOrNone[T any](rows Rows, scan ScanFunc[T]) (T, bool, error) {
	defer func() {
		_ = rows.Close()
	}()

	if !rows.Next() {
		return *new(T), false, rows.Err()
	}
	v, err := scan(rows)
	if err != nil {
		return *new(T), false, err
	}
	if rows.Next() {
		return *new(T), false, ErrTooManyRecords
	}
	if err := rows.Err(); err != nil {
		return *new(T), false, err
	}
	return v, true, nil
}
