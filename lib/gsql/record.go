package gsql

// Field describes one column of a record.
type Field struct {
	Name       string
	PrimaryKey bool
	Nullable   bool
}

// Record is the contract the record operations work against. Field order is
// the declared column order and is stable; changed flags track which fields
// have been written since the record was last synced with the database.
type Record interface {
	Table() string
	Fields() []Field
	Get(i int) any
	Set(i int, v any)
	Changed(i int) bool
	SetChanged(i int, changed bool)
}

func changedColumns(record Record) (cols []string, vals []any) {
	for i, f := range record.Fields() {
		if !record.Changed(i) {
			continue
		}
		cols = append(cols, f.Name)
		vals = append(vals, record.Get(i))
	}
	return
}

// primaryKey returns the primary-key columns in declared order with the
// record's current values.
func primaryKey(record Record) (cols []string, vals []any) {
	for i, f := range record.Fields() {
		if !f.PrimaryKey {
			continue
		}
		cols = append(cols, f.Name)
		vals = append(vals, record.Get(i))
	}
	return
}

func clearChanged(record Record) {
	for i := range record.Fields() {
		record.SetChanged(i, false)
	}
}

func columnNames(record Record) []string {
	fields := record.Fields()
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = f.Name
	}
	return cols
}
