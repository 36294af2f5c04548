package domain

import (
	"fmt"
	"strings"
)

// ParseError reports a date value that does not match the expected layout
// or names an impossible calendar day.
type ParseError struct {
	Index  int
	Value  string
	Layout string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("record %d: could not parse date '%s' with layout '%s': %v", e.Index, e.Value, e.Layout, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// SchemaError reports a column or field that the record set does not have.
type SchemaError struct {
	Source  string
	Field   string
	Missing []string
	Reason  string
}

func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString("schema error")
	if e.Source != "" {
		b.WriteString(" in " + e.Source)
	}
	if len(e.Missing) > 0 {
		b.WriteString(": missing columns " + strings.Join(e.Missing, ", "))
	}
	if e.Field != "" {
		b.WriteString(": field '" + e.Field + "'")
	}
	if e.Reason != "" {
		b.WriteString(": " + e.Reason)
	}
	return b.String()
}
