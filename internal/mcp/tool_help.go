package mcp

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/hbollon/go-edlib"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/nowmeta/internal/config"
	"github.com/standardbeagle/nowmeta/internal/metrics"
	"github.com/standardbeagle/nowmeta/internal/version"
)

type toolInfo struct {
	Description string            `json:"description"`
	Parameters  map[string]string `json:"parameters"`
	Example     string            `json:"example"`
	Notes       []string          `json:"notes,omitempty"`
}

var toolHelp = map[string]toolInfo{
	ToolInfo: {
		Description: "Tool help, server version and usage counters",
		Parameters: map[string]string{
			"tool": "Optional: a tool name or 'version'",
		},
		Example: `{"tool": "find_relevant_scripts"}`,
	},
	ToolGetTableSchema: {
		Description: "Field definitions of a table sorted by field name",
		Parameters: map[string]string{
			"table_name":        "REQUIRED: table name, or its label",
			"include_inherited": "Merge parent table fields; child definitions win and inherited ones carry inheritedFrom",
		},
		Example: `{"table_name": "incident", "include_inherited": true}`,
		Notes: []string{
			"referenceTable is set only on reference fields",
			"An unknown table returns found=false, not an error",
		},
	},
	ToolGetFieldChoices: {
		Description: "Active choice values of a field sorted by label",
		Parameters: map[string]string{
			"table_name": "REQUIRED: table that owns the field",
			"field_name": "REQUIRED: field name",
		},
		Example: `{"table_name": "incident", "field_name": "state"}`,
		Notes:   []string{"Entries without a value or label are dropped"},
	},
	ToolFindRelevantScripts: {
		Description: "Scripts across business rules, script includes and client scripts, newest first",
		Parameters: map[string]string{
			"table_name":  "Table affinity (business rule collection, client script table)",
			"keyword":     "Matched against name and script body",
			"scope_name":  "Application scope name or namespace",
			"script_type": "BusinessRule, ScriptInclude or ClientScript; aliases like 'br', 'si', 'client_script' accepted",
			"limit":       fmt.Sprintf("Per source table (capped by configuration, default %d)", config.DefaultScriptsPerSource),
		},
		Example: `{"table_name": "incident", "keyword": "approval"}`,
		Notes: []string{
			"At least one of table_name, keyword or scope_name is required",
			"A scope that does not resolve is dropped when other criteria exist; alone it yields no results",
			"A table that fails to answer is listed in skipped_sources instead of failing the call",
		},
	},
	ToolFindBusinessRules: {
		Description: "Business rule details",
		Parameters: map[string]string{
			"business_rule_name": "Exact rule name",
			"table_name":         "Table the rule runs on",
		},
		Example: `{"business_rule_name": "Set priority", "table_name": "incident"}`,
		Notes: []string{
			"A name matching rules on several tables is an ambiguity error; add table_name",
			"A table alone lists rules in execution order",
		},
	},
	ToolFindAcls: {
		Description: "ACLs guarding a table or field with their required roles",
		Parameters: map[string]string{
			"table_name": "REQUIRED: table name",
			"operation":  "read, write, create, delete, ...",
			"field_name": "Field ACLs plus table.* rules",
			"limit":      "Maximum ACLs",
		},
		Example: `{"table_name": "incident", "operation": "write"}`,
	},
	ToolGetSystemProperties: {
		Description: "System properties by name prefix or glob",
		Parameters: map[string]string{
			"name":       "REQUIRED: prefix ('glide.ui') or glob ('glide.ui.*')",
			"scope_name": "Application scope filter; an unknown scope is reported as a warning",
			"limit":      "Maximum properties",
		},
		Example: `{"name": "glide.ui.*"}`,
	},
	ToolGetScriptIncludeAPI: {
		Description: "Public functions of a script include",
		Parameters: map[string]string{
			"script_include_name": "REQUIRED: name or api_name",
		},
		Example: `{"script_include_name": "IncidentUtils"}`,
		Notes: []string{
			"Functions nested inside other function bodies are not public, except this.x assignments in constructors",
			"When two definitions share a name the first one wins",
		},
	},
}

func (s *Server) handleInfo(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic(ToolInfo, func() (*mcp.CallToolResult, metrics.Outcome, error) {
		var params InfoParams
		if err := bindParams(req, &params); err != nil {
			return nil, metrics.OutcomeInvalid, err
		}
		warnings := unknownFieldWarnings(params.Warnings)
		tool := strings.ToLower(strings.TrimSpace(params.Tool))

		switch tool {
		case "":
			return respond(s.overview(), warnings)
		case "version":
			return respond(versionInfo(), warnings)
		}

		if help, ok := toolHelp[tool]; ok {
			return respond(map[string]interface{}{
				"name":        tool,
				"description": help.Description,
				"parameters":  help.Parameters,
				"example":     help.Example,
				"notes":       help.Notes,
				"usage":       s.stats.Tool(tool),
			}, warnings)
		}

		message := fmt.Sprintf("Unknown tool %q", params.Tool)
		if suggestion := suggestTool(tool); suggestion != "" {
			message += fmt.Sprintf(". Did you mean %q?", suggestion)
		}
		result, err := createNotFoundResponse(message)
		if err == nil {
			addWarningsToResponse(result, warnings)
		}
		return result, metrics.OutcomeNotFound, err
	})
}

func (s *Server) overview() map[string]interface{} {
	tools := make([]map[string]string, 0, len(ToolNames))
	for _, name := range ToolNames {
		tools = append(tools, map[string]string{
			"name":        name,
			"description": toolHelp[name].Description,
		})
	}
	return map[string]interface{}{
		"server":   ServerName,
		"version":  version.Version,
		"instance": s.cfg.Remote.URL,
		"tools":    tools,
		"usage":    s.stats.FormatAsJSON(),
		"log_path": s.diagnosticLogger.GetLogPath(),
	}
}

func versionInfo() map[string]interface{} {
	return map[string]interface{}{
		"server_name":    ServerName,
		"server_version": version.FullInfo(),
		"mcp_version":    version.MCPProtocolVersion,
		"go_version":     runtime.Version(),
		"platform":       runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// suggestTool finds the closest tool name by edit distance, or a tool whose
// name contains the input
func suggestTool(input string) string {
	if input == "" {
		return ""
	}
	best, bestDistance := "", MaxToolSuggestionDistance+1
	for _, name := range ToolNames {
		if strings.Contains(name, input) {
			return name
		}
		if d := edlib.LevenshteinDistance(input, name); d < bestDistance {
			best, bestDistance = name, d
		}
	}
	return best
}
