package gsql

import (
	"context"
	"fmt"
)

// fakeRows serves canned rows. Scan targets cover the types the helpers use.
type fakeRows struct {
	rows   [][]any
	i      int
	err    error
	closed bool
}

func (T *fakeRows) Next() bool {
	if T.i >= len(T.rows) {
		return false
	}
	T.i++
	return true
}

func (T *fakeRows) Scan(dest ...any) error {
	row := T.rows[T.i-1]
	if len(dest) != len(row) {
		return fmt.Errorf("expected %d scan targets, got %d", len(row), len(dest))
	}
	for i, d := range dest {
		src := row[i]
		switch d := d.(type) {
		case *any:
			*d = src
		case *int64:
			*d = src.(int64)
		case *bool:
			*d = src.(bool)
		case *string:
			*d = src.(string)
		default:
			return fmt.Errorf("unsupported scan target %T", d)
		}
	}
	return nil
}

func (T *fakeRows) Err() error { return T.err }

func (T *fakeRows) Close() error {
	T.closed = true
	return nil
}

type sessionCall struct {
	query string
	args  []any
}

// fakeSession records statements and delegates results to the test.
type fakeSession struct {
	calls   []sessionCall
	onExec  func(query string, args []any) (int64, error)
	onQuery func(query string, args []any) (Rows, error)
}

func (T *fakeSession) Exec(_ context.Context, query string, args ...any) (int64, error) {
	T.calls = append(T.calls, sessionCall{query: query, args: args})
	if T.onExec == nil {
		return 0, nil
	}
	return T.onExec(query, args)
}

func (T *fakeSession) Query(_ context.Context, query string, args ...any) (Rows, error) {
	T.calls = append(T.calls, sessionCall{query: query, args: args})
	if T.onQuery == nil {
		return &fakeRows{}, nil
	}
	return T.onQuery(query, args)
}

// userRecord mirrors the canonical test table.
type userRecord struct {
	values  [4]any
	changed [4]bool
}

var userFields = []Field{
	{Name: "id", PrimaryKey: true},
	{Name: "username"},
	{Name: "email"},
	{Name: "deactivated", Nullable: true},
}

func newUser(id any, username, email string) *userRecord {
	u := new(userRecord)
	u.Set(0, id)
	u.Set(1, username)
	u.Set(2, email)
	return u
}

func (T *userRecord) Table() string   { return "users" }
func (T *userRecord) Fields() []Field { return userFields }
func (T *userRecord) Get(i int) any   { return T.values[i] }

func (T *userRecord) Set(i int, v any) {
	T.values[i] = v
	T.changed[i] = true
}

func (T *userRecord) Changed(i int) bool { return T.changed[i] }

func (T *userRecord) SetChanged(i int, changed bool) { T.changed[i] = changed }

var _ Record = (*userRecord)(nil)

func newTx(session Session) *Tx {
	return &Tx{
		session:  session,
		renderer: renderer{dialect: DialectPostgres},
	}
}
