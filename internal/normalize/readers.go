package normalize

import (
	"strconv"
	"strings"
)

// GlobalScope is the name reported when a record carries no application scope
const GlobalScope = "Global"

// Preference chooses which half of a Field a text reader returns
type Preference int

const (
	// DisplayFirst returns the display value, falling back to the raw value
	DisplayFirst Preference = iota
	// ValueFirst returns the raw value, falling back to the display value
	ValueFirst
	// ValueOnly never consults the display value
	ValueOnly
	// DisplayOnly never consults the raw value
	DisplayOnly
)

func (p Preference) String() string {
	switch p {
	case DisplayFirst:
		return "display_first"
	case ValueFirst:
		return "value_first"
	case ValueOnly:
		return "value_only"
	case DisplayOnly:
		return "display_only"
	default:
		return "unknown"
	}
}

// Text returns the column as a string according to pref. Absent and empty
// halves both count as missing.
func (f Field) Text(pref Preference) string {
	switch pref {
	case ValueOnly:
		return f.Value
	case DisplayOnly:
		return f.Display
	case ValueFirst:
		if f.Value != "" {
			return f.Value
		}
		return f.Display
	default:
		if f.Display != "" {
			return f.Display
		}
		return f.Value
	}
}

// Flag reports whether the raw value is the literal string "true".
// The display half is never consulted; a display value of "true" over a raw
// "false" is still false.
func (f Field) Flag() bool {
	return f.Value == "true"
}

// Number parses a base-10 integer that may carry thousands separators.
// The raw value is tried before the display value. Unparseable input yields nil.
func (f Field) Number() *int {
	for _, candidate := range []string{f.Value, f.Display} {
		if n, ok := parseGroupedInt(candidate); ok {
			return &n
		}
	}
	return nil
}

func parseGroupedInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", "")
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	// the API sometimes sends integral values as "40.0"
	if fv, err := strconv.ParseFloat(s, 64); err == nil && fv == float64(int(fv)) {
		return int(fv), true
	}
	return 0, false
}

// Ref is a reference column split into target sys_id and label
type Ref struct {
	ID      string `json:"sys_id,omitempty"`
	Display string `json:"display_value,omitempty"`
}

// IsZero reports whether the reference points nowhere
func (r Ref) IsZero() bool {
	return r.ID == "" && r.Display == ""
}

// Reference splits the column into sys_id (raw) and label (display)
func (f Field) Reference() Ref {
	return Ref{ID: f.Value, Display: f.Display}
}

// ScopeName renders an application scope reference: display value, then raw
// value, then GlobalScope.
func (f Field) ScopeName() string {
	if name := f.Text(DisplayFirst); name != "" {
		return name
	}
	return GlobalScope
}
