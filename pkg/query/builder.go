// Package query builds parameterized SQL against a JSONB document table.
// Document fields are addressed by key through the ->> operator. Keys are
// written into the SQL as literals so expression indexes on a field match;
// only identifier-shaped keys are accepted. Values are always parameters.
package query

import (
	"fmt"
	"regexp"
	"strings"
)

var fieldPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Comparison operators accepted by WhereField.
const (
	OpEqual     = "="
	OpGreater   = ">"
	OpGreaterEq = ">="
	OpLess      = "<"
	OpLessEq    = "<="
)

type condition struct {
	clause string
	args   []any
}

// Builder constructs SQL queries using a fluent API with automatic parameter numbering.
type Builder struct {
	table      string
	dataColumn string
	conditions []condition
	orderBy    *condition
	descending bool
}

// NewBuilder creates a Builder for table whose document body lives in dataColumn.
func NewBuilder(table, dataColumn string) *Builder {
	return &Builder{
		table:      table,
		dataColumn: dataColumn,
		conditions: make([]condition, 0),
	}
}

// WhereColumn adds an equality condition on a physical column.
func (b *Builder) WhereColumn(column string, value any) *Builder {
	b.conditions = append(b.conditions, condition{
		clause: fmt.Sprintf("%s = $%%d", column),
		args:   []any{value},
	})
	return b
}

// WhereField compares the text value of a document field using byte-wise collation.
// Unknown operators and invalid field names are ignored; callers validate both
// before building.
func (b *Builder) WhereField(field, op string, value string) *Builder {
	if !ValidOp(op) || !ValidField(field) {
		return b
	}
	b.conditions = append(b.conditions, condition{
		clause: fmt.Sprintf(`%s %s $%%d`, b.fieldExpr(field), op),
		args:   []any{value},
	})
	return b
}

// OrderByField sorts results by the text value of a document field.
// An empty or invalid field leaves results in storage order.
func (b *Builder) OrderByField(field string, descending bool) *Builder {
	if !ValidField(field) {
		b.orderBy = nil
		return b
	}
	b.orderBy = &condition{clause: b.fieldExpr(field)}
	b.descending = descending
	return b
}

// BuildSelect returns a SELECT of columns with the current conditions and ordering.
func (b *Builder) BuildSelect(columns ...string) (string, []any) {
	where, args, next := b.buildWhere(1)
	orderBy, orderArgs := b.buildOrderBy(next)
	args = append(args, orderArgs...)

	sql := fmt.Sprintf(
		"SELECT %s FROM %s%s%s",
		strings.Join(columns, ", "),
		b.table,
		where,
		orderBy,
	)
	return sql, args
}

// BuildCount returns a COUNT(*) query with the current conditions.
func (b *Builder) BuildCount() (string, []any) {
	where, args, _ := b.buildWhere(1)
	return fmt.Sprintf("SELECT COUNT(*) FROM %s%s", b.table, where), args
}

// ValidField reports whether field can be addressed as a document key.
func ValidField(field string) bool {
	return fieldPattern.MatchString(field)
}

// fieldExpr matches the expression indexes declared by the migrations.
func (b *Builder) fieldExpr(field string) string {
	return fmt.Sprintf(`(%s ->> '%s') COLLATE "C"`, b.dataColumn, field)
}

// ValidOp reports whether op is a supported comparison operator.
func ValidOp(op string) bool {
	switch op {
	case OpEqual, OpGreater, OpGreaterEq, OpLess, OpLessEq:
		return true
	default:
		return false
	}
}

func (b *Builder) buildOrderBy(startParam int) (string, []any) {
	if b.orderBy == nil {
		return "", nil
	}

	clause, args, _ := number(*b.orderBy, startParam)

	dir := "ASC"
	if b.descending {
		dir = "DESC"
	}

	return fmt.Sprintf(" ORDER BY %s %s", clause, dir), args
}

func (b *Builder) buildWhere(startParam int) (string, []any, int) {
	if len(b.conditions) == 0 {
		return "", nil, startParam
	}

	clauses := make([]string, 0, len(b.conditions))
	args := make([]any, 0)
	paramIdx := startParam

	for _, cond := range b.conditions {
		clause, condArgs, next := number(cond, paramIdx)
		clauses = append(clauses, clause)
		args = append(args, condArgs...)
		paramIdx = next
	}

	return " WHERE " + strings.Join(clauses, " AND "), args, paramIdx
}

func number(cond condition, paramIdx int) (string, []any, int) {
	clause := cond.clause
	for range cond.args {
		clause = strings.Replace(clause, "$%d", fmt.Sprintf("$%d", paramIdx), 1)
		paramIdx++
	}
	return clause, cond.args, paramIdx
}
