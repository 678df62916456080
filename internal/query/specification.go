package query

import (
	"fmt"
	"strings"
	"time"
)

// Builder assembles a parameterized WHERE clause from criteria pieces.
// Conditions added through the top-level methods are AND-combined;
// OR-groups are built explicitly. Argument placeholders are numbered
// continuously so the clause can be appended to an existing query.
type Builder struct {
	conditions []string
	args       []any
	argOffset  int
	distinct   bool
}

// NewBuilder creates a Builder whose placeholders start at $1
func NewBuilder() *Builder {
	return &Builder{}
}

// NewBuilderAt creates a Builder whose placeholders start after the
// given number of already bound arguments.
func NewBuilderAt(offset int) *Builder {
	return &Builder{argOffset: offset}
}

func (b *Builder) next(arg any) string {
	b.args = append(b.args, arg)
	return fmt.Sprintf("$%d", b.argOffset+len(b.args))
}

// DateFrom adds col >= value when value is non-nil
func (b *Builder) DateFrom(col string, value *time.Time) *Builder {
	if value == nil {
		return b
	}
	b.conditions = append(b.conditions, fmt.Sprintf("%s >= %s", col, b.next(*value)))
	return b
}

// DateTo adds col <= value when value is non-nil
func (b *Builder) DateTo(col string, value *time.Time) *Builder {
	if value == nil {
		return b
	}
	b.conditions = append(b.conditions, fmt.Sprintf("%s <= %s", col, b.next(*value)))
	return b
}

// In adds col = ANY(values) when values is non-empty
func (b *Builder) In(col string, values []string) *Builder {
	if len(values) == 0 {
		return b
	}
	b.conditions = append(b.conditions, fmt.Sprintf("%s = ANY(%s)", col, b.next(values)))
	return b
}

// ContainsAny adds an OR-group of jsonb containment checks, one per
// value. A row matches when its jsonb array holds at least one of the
// values.
func (b *Builder) ContainsAny(col string, values []string) *Builder {
	if len(values) == 0 {
		return b
	}
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, fmt.Sprintf("%s @> %s", col, b.next(fmt.Sprintf("[%q]", v))))
	}
	b.conditions = append(b.conditions, group(parts, "OR"))
	return b
}

// NullCheck adds col IS NULL or col IS NOT NULL depending on wantNull.
// A nil wantNull adds nothing.
func (b *Builder) NullCheck(col string, wantNull *bool) *Builder {
	if wantNull == nil {
		return b
	}
	if *wantNull {
		b.conditions = append(b.conditions, fmt.Sprintf("%s IS NULL", col))
	} else {
		b.conditions = append(b.conditions, fmt.Sprintf("%s IS NOT NULL", col))
	}
	return b
}

// Search adds an OR-group of case-insensitive substring matches over
// the given columns. Non-text columns must be passed with a ::text
// cast. The term is matched anywhere in the value.
func (b *Builder) Search(term string, cols ...string) *Builder {
	term = strings.TrimSpace(term)
	if term == "" || len(cols) == 0 {
		return b
	}
	pattern := "%" + strings.ToLower(term) + "%"
	parts := make([]string, 0, len(cols))
	for _, col := range cols {
		parts = append(parts, fmt.Sprintf("lower(%s) LIKE %s", col, b.next(pattern)))
	}
	b.conditions = append(b.conditions, group(parts, "OR"))
	return b
}

// Equal adds col = value
func (b *Builder) Equal(col string, value any) *Builder {
	b.conditions = append(b.conditions, fmt.Sprintf("%s = %s", col, b.next(value)))
	return b
}

// Distinct requests SELECT DISTINCT in the final query. Needed when
// joins may multiply rows.
func (b *Builder) Distinct() *Builder {
	b.distinct = true
	return b
}

// IsDistinct reports whether Distinct was requested
func (b *Builder) IsDistinct() bool {
	return b.distinct
}

// Build returns the WHERE clause (leading "WHERE" included, "" when no
// conditions were added) and the bound arguments in placeholder order.
func (b *Builder) Build() (string, []any) {
	if len(b.conditions) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(b.conditions, " AND "), b.args
}

// Args returns the bound arguments without the clause
func (b *Builder) Args() []any {
	return b.args
}

func group(parts []string, op string) string {
	if len(parts) == 1 {
		return parts[0]
	}
	return "(" + strings.Join(parts, " "+op+" ") + ")"
}
