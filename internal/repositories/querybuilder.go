package repositories

import (
	"fmt"
	"strconv"
	"strings"
)

// ConditionBuilder accumulates SQL predicate fragments and their bound values,
// assigning $n placeholders strictly in append order. It owns the ordinal
// counter, so callers never do placeholder index arithmetic themselves.
type ConditionBuilder struct {
	conds []string
	args  []any
}

// Where appends one predicate. Each ? in the fragment is rewritten to the
// next ordinal placeholder and its value is bound in the same position.
// The number of ? markers must match the number of values.
func (b *ConditionBuilder) Where(fragment string, values ...any) error {
	if n := strings.Count(fragment, "?"); n != len(values) {
		return fmt.Errorf("condition %q has %d placeholders but %d values", fragment, n, len(values))
	}
	var sb strings.Builder
	for {
		i := strings.IndexByte(fragment, '?')
		if i < 0 {
			sb.WriteString(fragment)
			break
		}
		sb.WriteString(fragment[:i])
		sb.WriteString("$")
		sb.WriteString(strconv.Itoa(len(b.args) + 1))
		b.args = append(b.args, values[0])
		values = values[1:]
		fragment = fragment[i+1:]
	}
	b.conds = append(b.conds, sb.String())
	return nil
}

// Bind appends a value outside the WHERE clause (LIMIT, SET fields) and
// returns its placeholder token. The counter keeps running across Where and
// Bind calls, so mixed usage stays ordered.
func (b *ConditionBuilder) Bind(value any) string {
	b.args = append(b.args, value)
	return "$" + strconv.Itoa(len(b.args))
}

// Clause renders the accumulated predicates as a WHERE clause with a leading
// space, or an empty string when no predicate was added.
func (b *ConditionBuilder) Clause() string {
	if len(b.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.conds, " AND ")
}

// Conditions returns the predicate fragments in append order.
func (b *ConditionBuilder) Conditions() []string {
	return b.conds
}

// Args returns the bound values in placeholder order.
func (b *ConditionBuilder) Args() []any {
	return b.args
}

// Len reports how many predicates have been added.
func (b *ConditionBuilder) Len() int {
	return len(b.conds)
}
