// Package query builds encoded filter expressions for the table API.
//
// A filter is a chain of clauses joined by "^" (AND). A clause may itself be
// an OR group joined by "^OR". An ordering directive may trail the chain but
// is never counted as a criterion.
package query

import (
	"strings"
)

const (
	AndSeparator = "^"
	OrSeparator  = "^OR"

	orderByPrefix     = "ORDERBY"
	orderByDescPrefix = "ORDERBYDESC"
)

// Clause is a single encoded condition or OR group
type Clause string

// IsZero reports whether the clause contributes nothing to a filter
func (c Clause) IsZero() bool { return c == "" }

func (c Clause) String() string { return string(c) }

// Equals matches field=value. Empty values produce no clause.
func Equals(field, value string) Clause {
	if field == "" || value == "" {
		return ""
	}
	return Clause(field + "=" + value)
}

// Like matches a substring of field
func Like(field, value string) Clause {
	if field == "" || value == "" {
		return ""
	}
	return Clause(field + "LIKE" + value)
}

// StartsWith matches a prefix of field
func StartsWith(field, prefix string) Clause {
	if field == "" || prefix == "" {
		return ""
	}
	return Clause(field + "STARTSWITH" + prefix)
}

// NotEmpty matches rows where field has any value
func NotEmpty(field string) Clause {
	if field == "" {
		return ""
	}
	return Clause(field + "ISNOTEMPTY")
}

// BoolEquals matches a boolean column
func BoolEquals(field string, v bool) Clause {
	if v {
		return Equals(field, "true")
	}
	return Equals(field, "false")
}

// In matches any of values. Empty values are skipped; no values, no clause.
func In(field string, values ...string) Clause {
	kept := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			kept = append(kept, v)
		}
	}
	if field == "" || len(kept) == 0 {
		return ""
	}
	return Clause(field + "IN" + strings.Join(kept, ","))
}

// Or joins clauses into one OR group, skipping zero clauses
func Or(clauses ...Clause) Clause {
	parts := make([]string, 0, len(clauses))
	for _, c := range clauses {
		if !c.IsZero() {
			parts = append(parts, string(c))
		}
	}
	return Clause(strings.Join(parts, OrSeparator))
}

// Builder accumulates AND-ed clauses and an optional ordering
type Builder struct {
	clauses []Clause
	order   string
}

// New creates an empty builder
func New() *Builder {
	return &Builder{}
}

// Where appends clauses, ignoring zero ones
func (b *Builder) Where(clauses ...Clause) *Builder {
	for _, c := range clauses {
		if !c.IsZero() {
			b.clauses = append(b.clauses, c)
		}
	}
	return b
}

// OrderBy sorts ascending by field. The last ordering call wins.
func (b *Builder) OrderBy(field string) *Builder {
	if field != "" {
		b.order = orderByPrefix + field
	}
	return b
}

// OrderByDesc sorts descending by field
func (b *Builder) OrderByDesc(field string) *Builder {
	if field != "" {
		b.order = orderByDescPrefix + field
	}
	return b
}

// Len is the number of criteria, not counting ordering
func (b *Builder) Len() int {
	return len(b.clauses)
}

// Build returns the encoded filter and whether it holds at least one
// criterion. An ordering directive alone is reported as false so callers
// never issue an unconstrained query by accident.
func (b *Builder) Build() (string, bool) {
	parts := make([]string, 0, len(b.clauses)+1)
	for _, c := range b.clauses {
		parts = append(parts, string(c))
	}
	if b.order != "" {
		parts = append(parts, b.order)
	}
	return strings.Join(parts, AndSeparator), len(b.clauses) > 0
}

// String returns the encoded filter regardless of emptiness
func (b *Builder) String() string {
	s, _ := b.Build()
	return s
}

// HasSeparator reports whether v would alter the structure of a filter
// if interpolated verbatim
func HasSeparator(v string) bool {
	return strings.Contains(v, AndSeparator)
}
