// Package query assembles the SQL text sent to the Athena boundary.
// Athena takes a query string, so interpolated string values are escaped by
// doubling embedded single quotes and numeric values must parse as integers
// before they reach the text. The Postgres source does not use this package —
// it binds parameters instead.
package query

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrNotInteger marks a numeric filter value that does not parse as an
// integer. The whole request is rejected when this surfaces.
var ErrNotInteger = errors.New("filter value is not an integer")

// Builder accumulates WHERE clauses for one SELECT statement.
type Builder struct {
	table   string
	clauses []string
}

func New(table string) *Builder {
	return &Builder{table: table}
}

// DateBetween bounds a date column inclusively. Zero times are skipped.
func (b *Builder) DateBetween(col string, from, to time.Time) *Builder {
	if !from.IsZero() {
		b.clauses = append(b.clauses, fmt.Sprintf("date(%s) >= DATE('%s')", col, from.Format("2006-01-02")))
	}
	if !to.IsZero() {
		b.clauses = append(b.clauses, fmt.Sprintf("date(%s) <= DATE('%s')", col, to.Format("2006-01-02")))
	}
	return b
}

// Eq adds an exact string match. Empty values are skipped.
func (b *Builder) Eq(col, val string) *Builder {
	if val == "" {
		return b
	}
	b.clauses = append(b.clauses, fmt.Sprintf("%s = '%s'", col, escape(val)))
	return b
}

// ContainsFold adds a case-insensitive substring match. Blank values are
// skipped.
func (b *Builder) ContainsFold(col, val string) *Builder {
	val = strings.TrimSpace(val)
	if val == "" {
		return b
	}
	b.clauses = append(b.clauses, fmt.Sprintf("LOWER(%s) LIKE '%%%s%%'", col, escape(strings.ToLower(val))))
	return b
}

// IntMin adds an inclusive lower bound. The raw value must parse as an
// integer; blank values are skipped.
func (b *Builder) IntMin(col, raw string) error {
	return b.intBound(col, raw, ">=")
}

// IntMax adds an inclusive upper bound.
func (b *Builder) IntMax(col, raw string) error {
	return b.intBound(col, raw, "<=")
}

func (b *Builder) intBound(col, raw, op string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%w: %s=%q", ErrNotInteger, col, raw)
	}
	b.clauses = append(b.clauses, fmt.Sprintf("%s %s %d", col, op, n))
	return nil
}

// Build renders the statement. A builder with no clauses selects the whole
// table.
func (b *Builder) Build() string {
	if len(b.clauses) == 0 {
		return fmt.Sprintf("SELECT * FROM %s", b.table)
	}
	return fmt.Sprintf("SELECT * FROM %s WHERE %s", b.table, strings.Join(b.clauses, " AND "))
}

// escape doubles embedded single quotes so the value is matched literally.
// This is the only escaping the textual boundary needs: Athena string
// literals have no other metacharacters.
func escape(v string) string {
	return strings.ReplaceAll(v, "'", "''")
}
