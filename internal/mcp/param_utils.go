package mcp

import (
	"encoding/json"
	"sort"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// UnknownField represents an unknown field that was passed but not recognized
type UnknownField struct {
	Name  string      `json:"name"`
	Value interface{} `json:"value"`
}

// collectUnknownFields parses raw JSON into a map, capturing any fields
// that aren't part of the provided known field set.
func collectUnknownFields(data []byte, known map[string]struct{}) (map[string]json.RawMessage, []UnknownField, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, err
	}

	var warnings []UnknownField
	for key, value := range raw {
		if _, ok := known[key]; !ok {
			warnings = append(warnings, decodeUnknownField(key, value))
		}
	}

	return raw, warnings, nil
}

func decodeUnknownField(name string, data json.RawMessage) UnknownField {
	var value interface{}
	if err := json.Unmarshal(data, &value); err != nil {
		value = string(data)
	}
	return UnknownField{Name: name, Value: value}
}

func sortUnknownFields(fields []UnknownField) []UnknownField {
	sorted := append([]UnknownField(nil), fields...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return sorted
}

// knownFields builds the lookup set used by the params UnmarshalJSON methods
func knownFields(names ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// decodeParams unmarshals tool arguments. Absent or null arguments decode
// as an empty object so required-field checks produce the error.
func decodeParams(req *mcp.CallToolRequest, dst interface{}) error {
	args := []byte("{}")
	if req != nil && req.Params != nil && len(req.Params.Arguments) > 0 && string(req.Params.Arguments) != "null" {
		args = req.Params.Arguments
	}
	return json.Unmarshal(args, dst)
}
