package mcp

// Tool names exposed over MCP
const (
	ToolInfo                = "info"
	ToolGetTableSchema      = "get_table_schema"
	ToolGetFieldChoices     = "get_field_choices"
	ToolFindRelevantScripts = "find_relevant_scripts"
	ToolFindBusinessRules   = "find_business_rules"
	ToolFindAcls            = "find_acls"
	ToolGetSystemProperties = "get_system_properties"
	ToolGetScriptIncludeAPI = "get_script_include_api"
)

// ToolNames lists every registered tool in registration order
var ToolNames = []string{
	ToolInfo,
	ToolGetTableSchema,
	ToolGetFieldChoices,
	ToolFindRelevantScripts,
	ToolFindBusinessRules,
	ToolFindAcls,
	ToolGetSystemProperties,
	ToolGetScriptIncludeAPI,
}

const (
	// ServerName is reported in the MCP implementation handshake
	ServerName = "nowmeta-mcp-server"

	// MaxToolSuggestionDistance bounds "did you mean" suggestions for info
	MaxToolSuggestionDistance = 6
	// Rationale: tool names are long snake_case identifiers, so a dropped
	// word prefix ("schema" vs "get_table_schema") still needs to match.

	// LogDirName is the diagnostic log directory under the temp dir
	LogDirName = "nowmeta-mcp-logs"
)
