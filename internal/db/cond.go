package db

import "strings"

// Cond is a fluent accumulator for SQL WHERE clauses. Clauses combine with
// AND; arguments stay positional in the order the clauses were added.
type Cond struct {
	clauses []string
	args    []any
}

// NewCond starts an empty condition.
func NewCond() *Cond {
	return &Cond{}
}

// And appends one clause with its arguments.
func (c *Cond) And(clause string, args ...any) *Cond {
	c.clauses = append(c.clauses, clause)
	c.args = append(c.args, args...)
	return c
}

// Empty reports whether no clause was added.
func (c *Cond) Empty() bool {
	return len(c.clauses) == 0
}

// SQL returns the full WHERE clause with a leading space, or "" when empty,
// plus the accumulated arguments.
func (c *Cond) SQL() (string, []any) {
	if len(c.clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(c.clauses, " AND "), c.args
}

// Placeholders returns n comma-separated "?" markers for an IN list.
func Placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}
