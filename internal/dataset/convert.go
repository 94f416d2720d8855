package dataset

import (
	"strconv"

	"github.com/shopspring/decimal"
)

func parseInt(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseDecimal(s string) (decimal.Decimal, bool) {
	if s == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

func parseDecimalPtr(s string) *decimal.Decimal {
	if d, ok := parseDecimal(s); ok {
		return &d
	}
	return nil
}

// FieldValues maps column names to new values for an update; a nil value
// clears the column.
type FieldValues map[string]*string

// Set wraps a literal string value for a FieldValues entry.
func Set(v string) *string { return &v }

// SetInt stringifies an int value for a FieldValues entry.
func SetInt(n int) *string {
	s := strconv.Itoa(n)
	return &s
}

// SetDecimal stringifies a decimal value for a FieldValues entry.
func SetDecimal(d decimal.Decimal) *string {
	s := d.String()
	return &s
}
