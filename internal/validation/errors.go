// Package validation enforces the field rules a fitness center must satisfy
// before it is persisted.  Failures are collected per field rather than
// returned one at a time, so a client sees every problem in a single 400.
package validation

import (
	"sort"
	"strings"
)

// Errors maps a field name to the messages raised against it.  The JSON
// encoding of Errors is the 400 response body.
type Errors map[string][]string

func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Has reports whether any message is recorded for field.
func (e Errors) Has(field string) bool {
	return len(e[field]) > 0
}

// Fields returns the failing field names in sorted order.
func (e Errors) Fields() []string {
	out := make([]string, 0, len(e))
	for f := range e {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, f := range e.Fields() {
		parts = append(parts, f+": "+strings.Join(e[f], ", "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
