// Package normalize collapses the table API's two field encodings into flat
// typed values.
//
// With sysparm_display_value=false (or true) every column arrives as a bare
// scalar. With sysparm_display_value=all every column arrives as
// {"value": ..., "display_value": ...}. Field accepts both, and the typed
// readers in this package decide which half to use so each call site
// declares a column's category exactly once.
package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Field is one column of a remote record in either encoding.
type Field struct {
	Value      string
	Display    string
	HasValue   bool // a non-null value was sent
	HasDisplay bool // a non-null display_value was sent
}

// Raw builds a Field as the API sends it in raw mode
func Raw(v string) Field {
	return Field{Value: v, HasValue: true}
}

// Pair builds a Field as the API sends it in display=all mode
func Pair(value, display string) Field {
	return Field{Value: value, Display: display, HasValue: true, HasDisplay: true}
}

type pairJSON struct {
	Value        json.RawMessage `json:"value"`
	DisplayValue json.RawMessage `json:"display_value"`
}

// UnmarshalJSON implements the value-or-pair union
func (f *Field) UnmarshalJSON(data []byte) error {
	*f = Field{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] == '{' {
		var p pairJSON
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("invalid field pair: %w", err)
		}
		f.Value, f.HasValue = scalarString(p.Value)
		f.Display, f.HasDisplay = scalarString(p.DisplayValue)
		return nil
	}

	v, ok := scalarString(data)
	if !ok && !bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("unsupported field encoding: %s", string(data))
	}
	f.Value, f.HasValue = v, ok
	return nil
}

// MarshalJSON writes the pair form when a display value is known, raw otherwise
func (f Field) MarshalJSON() ([]byte, error) {
	if f.HasDisplay {
		return json.Marshal(map[string]string{"value": f.Value, "display_value": f.Display})
	}
	if !f.HasValue {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// scalarString renders a JSON scalar as the string the remote system meant.
// Objects and arrays are not scalars.
func scalarString(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return s, true
	case 't', 'f':
		b, err := strconv.ParseBool(string(raw))
		if err != nil {
			return "", false
		}
		return strconv.FormatBool(b), true
	case '{', '[':
		return "", false
	default:
		// numbers keep their literal spelling
		return string(raw), true
	}
}

// Record is one row returned by the table API
type Record map[string]Field

// Get returns the named column, or the zero Field when absent
func (r Record) Get(name string) Field {
	if r == nil {
		return Field{}
	}
	return r[name]
}
