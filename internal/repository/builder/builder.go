package builder

import (
	"fmt"
	"strings"
)

// SQLBuilder helps construct ledger queries. Conditions use "?" markers which
// are numbered into "$n" placeholders by Build; both lib/pq and go-sqlite3
// accept that form.
type SQLBuilder struct {
	table      string
	columns    []string
	values     []interface{}
	where      []string
	whereArgs  []interface{}
	orderBy    []string
	limit      int
	offset     int
	conflict   []string
	verb       verb
}

type verb int

const (
	verbSelect verb = iota + 1
	verbInsert
	verbDelete
)

// NewSQLBuilder creates a new instance of SQLBuilder.
func NewSQLBuilder() *SQLBuilder {
	return &SQLBuilder{}
}

// Select specifies the columns to retrieve.
func (b *SQLBuilder) Select(cols ...string) *SQLBuilder {
	b.verb = verbSelect
	b.columns = cols
	return b
}

// Insert specifies the table and columns for insertion.
func (b *SQLBuilder) Insert(table string, cols ...string) *SQLBuilder {
	b.verb = verbInsert
	b.table = table
	b.columns = cols
	return b
}

// Delete specifies the table to delete from.
func (b *SQLBuilder) Delete(table string) *SQLBuilder {
	b.verb = verbDelete
	b.table = table
	return b
}

// From specifies the table to select from.
func (b *SQLBuilder) From(table string) *SQLBuilder {
	b.table = table
	return b
}

// Values specifies the values for insertion.
func (b *SQLBuilder) Values(vals ...interface{}) *SQLBuilder {
	b.values = vals
	return b
}

// OnConflictDoNothing skips inserts violating the unique key over cols.
func (b *SQLBuilder) OnConflictDoNothing(cols ...string) *SQLBuilder {
	b.conflict = cols
	return b
}

// Where adds a condition; conditions are joined with AND.
func (b *SQLBuilder) Where(condition string, args ...interface{}) *SQLBuilder {
	b.where = append(b.where, condition)
	b.whereArgs = append(b.whereArgs, args...)
	return b
}

// OrderBy adds an ORDER BY clause.
func (b *SQLBuilder) OrderBy(order string) *SQLBuilder {
	b.orderBy = append(b.orderBy, order)
	return b
}

// Limit adds a LIMIT clause.
func (b *SQLBuilder) Limit(limit int) *SQLBuilder {
	b.limit = limit
	return b
}

// Offset adds an OFFSET clause.
func (b *SQLBuilder) Offset(offset int) *SQLBuilder {
	b.offset = offset
	return b
}

// BuildSafe is Build with a check that every argument has a placeholder.
func (b *SQLBuilder) BuildSafe() (string, []interface{}, error) {
	if b.verb == 0 {
		return "", nil, fmt.Errorf("no statement: call Select, Insert or Delete first")
	}
	if b.table == "" {
		return "", nil, fmt.Errorf("no table")
	}
	if b.verb == verbInsert && len(b.values) != len(b.columns) {
		return "", nil, fmt.Errorf("insert into %s: %d values for %d columns", b.table, len(b.values), len(b.columns))
	}
	markers := 0
	for _, w := range b.where {
		markers += strings.Count(w, "?")
	}
	if markers != len(b.whereArgs) {
		return "", nil, fmt.Errorf("placeholder count (%d) does not match argument count (%d)", markers, len(b.whereArgs))
	}
	sql, args := b.Build()
	return sql, args, nil
}

// Build constructs the final SQL string and arguments.
func (b *SQLBuilder) Build() (string, []interface{}) {
	var sb strings.Builder
	var args []interface{}
	n := 0
	next := func() string {
		n++
		return fmt.Sprintf("$%d", n)
	}

	switch b.verb {
	case verbSelect:
		sb.WriteString("SELECT ")
		sb.WriteString(strings.Join(b.columns, ", "))
		sb.WriteString(" FROM ")
		sb.WriteString(b.table)
	case verbInsert:
		placeholders := make([]string, len(b.values))
		for i := range b.values {
			placeholders[i] = next()
		}
		fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES (%s)", b.table, strings.Join(b.columns, ", "), strings.Join(placeholders, ", "))
		if len(b.conflict) > 0 {
			fmt.Fprintf(&sb, " ON CONFLICT (%s) DO NOTHING", strings.Join(b.conflict, ", "))
		}
		return sb.String(), append(args, b.values...)
	case verbDelete:
		sb.WriteString("DELETE FROM ")
		sb.WriteString(b.table)
	}

	if len(b.where) > 0 {
		sb.WriteString(" WHERE ")
		parts := strings.Split(strings.Join(b.where, " AND "), "?")
		for i, part := range parts {
			sb.WriteString(part)
			if i < len(parts)-1 {
				sb.WriteString(next())
			}
		}
		args = append(args, b.whereArgs...)
	}

	if len(b.orderBy) > 0 {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(b.orderBy, ", "))
	}
	if b.limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", b.limit)
	}
	if b.offset > 0 {
		fmt.Fprintf(&sb, " OFFSET %d", b.offset)
	}
	return sb.String(), args
}
