package record

import (
	"fmt"
	"slices"
	"strings"
)

// Filter is a boolean predicate over the columns of a candidate Row.
//
// This is a sealed interface - only types in this package implement it.
// The marker method pattern prevents external implementations and keeps
// the type switch in Matches exhaustive.
//
// Filter types:
//   - Equals: column = value
//   - In: column is a member of a value set
//   - IsNull: column is unset
//   - NotNull: column is set
//   - And: all filters must be true
//
// A nil Filter matches every row.
type Filter interface {
	filterNode() // Marker method - seals interface to this package
}

// Equals matches rows whose column Field is set and equal to Value.
// An unset column never equals anything; use IsNull for that.
type Equals struct {
	Field string
	Value string
}

func (Equals) filterNode() {}

// In matches rows whose column Field is set and a member of Values.
// An empty Values slice matches nothing.
type In struct {
	Field  string
	Values []string
}

func (In) filterNode() {}

// IsNull matches rows whose column Field is unset.
type IsNull struct {
	Field string
}

func (IsNull) filterNode() {}

// NotNull matches rows whose column Field is set to any value.
type NotNull struct {
	Field string
}

func (NotNull) filterNode() {}

// And matches rows satisfying every member filter.
// An empty Filters slice is vacuously true.
type And struct {
	Filters []Filter
}

func (And) filterNode() {}

// Matches reports whether row satisfies f. A nil filter matches every row.
func Matches(f Filter, row Row) bool {
	switch f := f.(type) {
	case nil:
		return true
	case Equals:
		v, ok := row[f.Field]
		return ok && v == f.Value
	case In:
		v, ok := row[f.Field]
		return ok && slices.Contains(f.Values, v)
	case IsNull:
		_, ok := row[f.Field]
		return !ok
	case NotNull:
		_, ok := row[f.Field]
		return ok
	case And:
		for _, sub := range f.Filters {
			if !Matches(sub, row) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// FilterString renders f for log lines. It is not a parseable syntax.
func FilterString(f Filter) string {
	switch f := f.(type) {
	case nil:
		return "<any>"
	case Equals:
		return fmt.Sprintf("%s == %q", f.Field, f.Value)
	case In:
		quoted := make([]string, len(f.Values))
		for i, v := range f.Values {
			quoted[i] = fmt.Sprintf("%q", v)
		}
		return fmt.Sprintf("%s in [%s]", f.Field, strings.Join(quoted, ", "))
	case IsNull:
		return f.Field + " is null"
	case NotNull:
		return f.Field + " is not null"
	case And:
		parts := make([]string, len(f.Filters))
		for i, sub := range f.Filters {
			parts[i] = FilterString(sub)
		}
		return strings.Join(parts, " and ")
	default:
		return "<unknown>"
	}
}
