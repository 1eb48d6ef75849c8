package metadata

import (
	"github.com/standardbeagle/nowmeta/internal/signature"
)

// FieldSpec is one column of a remote table
type FieldSpec struct {
	Name           string `json:"name"`
	Label          string `json:"label"`
	Type           string `json:"type"`
	Description    string `json:"description"`
	ReferenceTable string `json:"referenceTable,omitempty"`
	MaxLength      *int   `json:"maxLength,omitempty"`
	Mandatory      bool   `json:"mandatory,omitempty"`
	ReadOnly       bool   `json:"readOnly,omitempty"`
	InheritedFrom  string `json:"inheritedFrom,omitempty"`
}

// TableSchema describes a table and its columns, sorted by name
type TableSchema struct {
	Label     string      `json:"label"`
	Name      string      `json:"name"`
	Hierarchy []string    `json:"hierarchy,omitempty"`
	Fields    []FieldSpec `json:"fields"`
}

// Choice is one active option of a choice list
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// ScriptType is the closed set of script sources the aggregator searches
type ScriptType string

const (
	BusinessRule  ScriptType = "BusinessRule"
	ScriptInclude ScriptType = "ScriptInclude"
	ClientScript  ScriptType = "ClientScript"
)

// ScriptTypes lists every source in search order
var ScriptTypes = []ScriptType{BusinessRule, ScriptInclude, ClientScript}

// ScriptRecord is one hit from the multi-source script search. Table is nil
// for sources with no table affinity.
type ScriptRecord struct {
	Name      string     `json:"name"`
	Type      ScriptType `json:"type"`
	Table     *string    `json:"table"`
	SysID     string     `json:"sys_id"`
	UpdatedOn string     `json:"updated_on"`
	Scope     string     `json:"scope"`
	Reason    string     `json:"reason"`
}

// SkippedSource records a script table whose query failed
type SkippedSource struct {
	Type  ScriptType `json:"type"`
	Table string     `json:"table"`
	Error string     `json:"error"`
}

// ScriptSearch holds the criteria of a script search. At least one of
// TableName, Keyword or ScopeName is required.
type ScriptSearch struct {
	TableName  string
	Keyword    string
	ScopeName  string
	ScriptType string
	Limit      int
}

// ScriptSearchResult is the merged, newest-first outcome of a script search.
// Criteria lists only the filters that were actually applied.
type ScriptSearchResult struct {
	Scripts        []ScriptRecord  `json:"scripts"`
	Criteria       []string        `json:"criteria"`
	SkippedSources []SkippedSource `json:"skipped_sources,omitempty"`
}

// BusinessRuleDetail is a server-side business rule
type BusinessRuleDetail struct {
	Name      string `json:"name"`
	Table     string `json:"table"`
	When      string `json:"when"`
	Order     int    `json:"order"`
	Active    bool   `json:"active"`
	Insert    bool   `json:"insert"`
	Update    bool   `json:"update"`
	Delete    bool   `json:"delete"`
	Query     bool   `json:"query"`
	Condition string `json:"condition"`
	Scope     string `json:"scope"`
	UpdatedOn string `json:"updated_on"`
	SysID     string `json:"sys_id"`
}

// BusinessRuleSearch selects rules by name, table or both
type BusinessRuleSearch struct {
	Name      string
	TableName string
}

// BusinessRuleResult carries the rules found plus data-quality warnings
type BusinessRuleResult struct {
	Rules    []BusinessRuleDetail `json:"rules"`
	Warnings []string             `json:"warnings,omitempty"`
}

// AclDetail is an access control rule with its required roles
type AclDetail struct {
	Name            string   `json:"name"`
	Type            string   `json:"type"`
	Operation       string   `json:"operation"`
	AdminOverrides  bool     `json:"admin_overrides"`
	Active          bool     `json:"active"`
	Description     string   `json:"description"`
	ConditionScript string   `json:"condition_script"`
	Roles           []string `json:"roles"`
	Scope           string   `json:"scope"`
	UpdatedOn       string   `json:"updated_on"`
	SysID           string   `json:"sys_id"`
}

// AclSearch selects ACLs guarding a table, optionally narrowed to one
// operation or field
type AclSearch struct {
	TableName string
	Operation string
	FieldName string
	Limit     int
}

// SystemProperty is one sys_properties row
type SystemProperty struct {
	Name        string `json:"name"`
	Value       string `json:"value"`
	Description string `json:"description"`
	Scope       string `json:"scope"`
	UpdatedOn   string `json:"updated_on"`
}

// PropertySearch selects properties by name glob and optional scope
type PropertySearch struct {
	Name      string
	ScopeName string
	Limit     int
}

// ScriptIncludeAPI is a script include with its callable surface
type ScriptIncludeAPI struct {
	Name           string                        `json:"name"`
	APIName        string                        `json:"api_name"`
	Description    string                        `json:"description"`
	ClientCallable bool                          `json:"client_callable"`
	Active         bool                          `json:"active"`
	Scope          string                        `json:"scope"`
	UpdatedOn      string                        `json:"updated_on"`
	SysID          string                        `json:"sys_id"`
	Functions      []signature.FunctionSignature `json:"functions"`
	Message        string                        `json:"message,omitempty"`
}

// PropertyResult carries matching properties plus notes about criteria
// that could not be applied
type PropertyResult struct {
	Properties []SystemProperty `json:"properties"`
	Warnings   []string         `json:"warnings,omitempty"`
}
