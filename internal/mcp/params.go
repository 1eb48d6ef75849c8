package mcp

import "encoding/json"

// Each params type accepts unknown keys and records them in Warnings so a
// client typo degrades to a warning instead of a rejected call.

type TableSchemaParams struct {
	TableName        string         `json:"table_name"`
	IncludeInherited bool           `json:"include_inherited,omitempty"`
	Warnings         []UnknownField `json:"-"`
}

type FieldChoicesParams struct {
	TableName string         `json:"table_name"`
	FieldName string         `json:"field_name"`
	Warnings  []UnknownField `json:"-"`
}

type ScriptSearchParams struct {
	TableName  string         `json:"table_name,omitempty"`
	Keyword    string         `json:"keyword,omitempty"`
	ScopeName  string         `json:"scope_name,omitempty"`
	ScriptType string         `json:"script_type,omitempty"`
	Limit      int            `json:"limit,omitempty"`
	Warnings   []UnknownField `json:"-"`
}

type BusinessRuleParams struct {
	BusinessRuleName string         `json:"business_rule_name,omitempty"`
	TableName        string         `json:"table_name,omitempty"`
	Warnings         []UnknownField `json:"-"`
}

type AclParams struct {
	TableName string         `json:"table_name"`
	Operation string         `json:"operation,omitempty"`
	FieldName string         `json:"field_name,omitempty"`
	Limit     int            `json:"limit,omitempty"`
	Warnings  []UnknownField `json:"-"`
}

type PropertyParams struct {
	Name      string         `json:"name"`
	ScopeName string         `json:"scope_name,omitempty"`
	Limit     int            `json:"limit,omitempty"`
	Warnings  []UnknownField `json:"-"`
}

type ScriptIncludeParams struct {
	ScriptIncludeName string         `json:"script_include_name"`
	Warnings          []UnknownField `json:"-"`
}

type InfoParams struct {
	Tool     string         `json:"tool,omitempty"`
	Warnings []UnknownField `json:"-"` // Captures unknown fields
}

var (
	tableSchemaFields   = knownFields("table_name", "include_inherited")
	fieldChoicesFields  = knownFields("table_name", "field_name")
	scriptSearchFields  = knownFields("table_name", "keyword", "scope_name", "script_type", "limit")
	businessRuleFields  = knownFields("business_rule_name", "table_name")
	aclFields           = knownFields("table_name", "operation", "field_name", "limit")
	propertyFields      = knownFields("name", "scope_name", "limit")
	scriptIncludeFields = knownFields("script_include_name")
	infoFields          = knownFields("tool")
)

// unmarshalKnown decodes data into dst (an alias type without a custom
// UnmarshalJSON) and reports keys outside known
func unmarshalKnown(data []byte, known map[string]struct{}, dst interface{}) ([]UnknownField, error) {
	_, warnings, err := collectUnknownFields(data, known)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return nil, err
	}
	return warnings, nil
}

// UnmarshalJSON implements custom unmarshaling that accepts unknown fields
func (p *TableSchemaParams) UnmarshalJSON(data []byte) error {
	type Alias TableSchemaParams // Type alias to avoid recursion
	warnings, err := unmarshalKnown(data, tableSchemaFields, (*Alias)(p))
	p.Warnings = warnings
	return err
}

// UnmarshalJSON implements custom unmarshaling that accepts unknown fields
func (p *FieldChoicesParams) UnmarshalJSON(data []byte) error {
	type Alias FieldChoicesParams
	warnings, err := unmarshalKnown(data, fieldChoicesFields, (*Alias)(p))
	p.Warnings = warnings
	return err
}

// UnmarshalJSON implements custom unmarshaling that accepts unknown fields
func (p *ScriptSearchParams) UnmarshalJSON(data []byte) error {
	type Alias ScriptSearchParams
	warnings, err := unmarshalKnown(data, scriptSearchFields, (*Alias)(p))
	p.Warnings = warnings
	return err
}

// UnmarshalJSON implements custom unmarshaling that accepts unknown fields
func (p *BusinessRuleParams) UnmarshalJSON(data []byte) error {
	type Alias BusinessRuleParams
	warnings, err := unmarshalKnown(data, businessRuleFields, (*Alias)(p))
	p.Warnings = warnings
	return err
}

// UnmarshalJSON implements custom unmarshaling that accepts unknown fields
func (p *AclParams) UnmarshalJSON(data []byte) error {
	type Alias AclParams
	warnings, err := unmarshalKnown(data, aclFields, (*Alias)(p))
	p.Warnings = warnings
	return err
}

// UnmarshalJSON implements custom unmarshaling that accepts unknown fields
func (p *PropertyParams) UnmarshalJSON(data []byte) error {
	type Alias PropertyParams
	warnings, err := unmarshalKnown(data, propertyFields, (*Alias)(p))
	p.Warnings = warnings
	return err
}

// UnmarshalJSON implements custom unmarshaling that accepts unknown fields
func (p *ScriptIncludeParams) UnmarshalJSON(data []byte) error {
	type Alias ScriptIncludeParams
	warnings, err := unmarshalKnown(data, scriptIncludeFields, (*Alias)(p))
	p.Warnings = warnings
	return err
}

// UnmarshalJSON implements custom unmarshaling that accepts unknown fields
func (i *InfoParams) UnmarshalJSON(data []byte) error {
	type Alias InfoParams
	warnings, err := unmarshalKnown(data, infoFields, (*Alias)(i))
	i.Warnings = warnings
	return err
}
