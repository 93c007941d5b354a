package gsql

import (
	"strconv"
	"strings"

	"gfx.cafe/gfx/taffy/lib/util/pools"
)

// Dialect selects the placeholder style of the rendered statements.
type Dialect int

const (
	// DialectPostgres renders $1, $2, ... placeholders.
	DialectPostgres Dialect = iota
	// DialectSQLite renders ? placeholders.
	DialectSQLite
)

// Condition is a raw SQL predicate with its arguments. Placeholders use the
// client's dialect and number from $1.
type Condition struct {
	SQL  string
	Args []any
}

func Where(sql string, args ...any) Condition {
	return Condition{
		SQL:  sql,
		Args: args,
	}
}

type renderer struct {
	dialect Dialect
}

var builders pools.Locked[*strings.Builder]

func getBuilder() *strings.Builder {
	b, ok := builders.Get()
	if !ok {
		b = new(strings.Builder)
	}
	b.Reset()
	return b
}

func putBuilder(b *strings.Builder) {
	builders.Put(b)
}

func (T renderer) placeholder(b *strings.Builder, i int) {
	switch T.dialect {
	case DialectSQLite:
		b.WriteByte('?')
	default:
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(i))
	}
}

func quoteIdent(b *strings.Builder, ident string) {
	b.WriteByte('"')
	b.WriteString(strings.ReplaceAll(ident, `"`, `""`))
	b.WriteByte('"')
}

func (T renderer) insert(table string, cols, returning []string, onConflictDoNothing bool) string {
	b := getBuilder()
	defer putBuilder(b)

	b.WriteString("INSERT INTO ")
	quoteIdent(b, table)
	b.WriteString(" (")
	for i, c := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		quoteIdent(b, c)
	}
	b.WriteString(") VALUES (")
	for i := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		T.placeholder(b, i+1)
	}
	b.WriteByte(')')
	if onConflictDoNothing {
		b.WriteString(" ON CONFLICT DO NOTHING")
	}
	b.WriteString(" RETURNING ")
	for i, c := range returning {
		if i > 0 {
			b.WriteString(", ")
		}
		quoteIdent(b, c)
	}
	return b.String()
}

func (T renderer) update(table string, cols, pkCols []string) string {
	b := getBuilder()
	defer putBuilder(b)

	b.WriteString("UPDATE ")
	quoteIdent(b, table)
	b.WriteString(" SET ")
	n := 0
	for i, c := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		quoteIdent(b, c)
		b.WriteString(" = ")
		n++
		T.placeholder(b, n)
	}
	b.WriteString(" WHERE ")
	for i, c := range pkCols {
		if i > 0 {
			b.WriteString(" AND ")
		}
		quoteIdent(b, c)
		b.WriteString(" = ")
		n++
		T.placeholder(b, n)
	}
	return b.String()
}

// delete renders the WHERE as the OR over each record's primary-key
// AND-conjunction.
func (T renderer) delete(table string, pkCols []string, records int) string {
	b := getBuilder()
	defer putBuilder(b)

	b.WriteString("DELETE FROM ")
	quoteIdent(b, table)
	b.WriteString(" WHERE ")
	n := 0
	for r := 0; r < records; r++ {
		if r > 0 {
			b.WriteString(" OR ")
		}
		b.WriteByte('(')
		for i, c := range pkCols {
			if i > 0 {
				b.WriteString(" AND ")
			}
			quoteIdent(b, c)
			b.WriteString(" = ")
			n++
			T.placeholder(b, n)
		}
		b.WriteByte(')')
	}
	return b.String()
}

func (T renderer) exists(table string, pkCols []string) string {
	b := getBuilder()
	defer putBuilder(b)

	b.WriteString("SELECT EXISTS(SELECT 1 FROM ")
	quoteIdent(b, table)
	b.WriteString(" WHERE ")
	for i, c := range pkCols {
		if i > 0 {
			b.WriteString(" AND ")
		}
		quoteIdent(b, c)
		b.WriteString(" = ")
		T.placeholder(b, i+1)
	}
	b.WriteString(")")
	return b.String()
}

func (T renderer) count(table string, where Condition, groupBy string) string {
	b := getBuilder()
	defer putBuilder(b)

	b.WriteString("SELECT ")
	quoteIdent(b, groupBy)
	b.WriteString(", COUNT(*) FROM ")
	quoteIdent(b, table)
	if where.SQL != "" {
		b.WriteString(" WHERE ")
		b.WriteString(where.SQL)
	}
	b.WriteString(" GROUP BY ")
	quoteIdent(b, groupBy)
	return b.String()
}
