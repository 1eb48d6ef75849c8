package mcp

import (
	"context"
	"fmt"
	rtdebug "runtime/debug"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/nowmeta/internal/config"
	nmerrors "github.com/standardbeagle/nowmeta/internal/errors"
	"github.com/standardbeagle/nowmeta/internal/metadata"
	"github.com/standardbeagle/nowmeta/internal/metrics"
	"github.com/standardbeagle/nowmeta/internal/remote"
	"github.com/standardbeagle/nowmeta/internal/version"
)

// Server exposes the metadata service as MCP tools over stdio
type Server struct {
	server           *mcp.Server
	service          *metadata.Service
	cfg              *config.Config
	stats            *metrics.UsageStats
	diagnosticLogger *DiagnosticLogger
	handlers         map[string]mcp.ToolHandler
}

// NewServer creates an MCP server that answers from querier. Diagnostic
// output goes to a log file so stdio stays protocol-clean.
func NewServer(cfg *config.Config, querier remote.Querier) (*Server, error) {
	dir := ""
	if cfg != nil {
		dir = cfg.Logging.Dir
	}
	return newServer(cfg, querier, NewDiagnosticLogger(true, dir))
}

func newServer(cfg *config.Config, querier remote.Querier, logger *DiagnosticLogger) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	s := &Server{
		cfg:              cfg,
		stats:            metrics.NewUsageStats(),
		diagnosticLogger: logger,
		handlers:         make(map[string]mcp.ToolHandler),
	}

	service, err := metadata.NewService(querier, metadata.Options{
		Limits:     cfg.Limits,
		Concurrent: cfg.Aggregator.Concurrent,
		Logger:     logger,
		OnSkip:     s.recordSkip,
	})
	if err != nil {
		logger.Close()
		return nil, fmt.Errorf("failed to initialize metadata service: %w", err)
	}
	s.service = service
	logger.Printf("MCP server initialized (instance: %s)", cfg.Remote.URL)

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: version.Version,
	}, nil)
	s.registerTools()

	return s, nil
}

// recordSkip feeds aggregator skips into the usage stats and the log
func (s *Server) recordSkip(skipped metadata.SkippedSource) {
	s.stats.RecordSkippedSource(skipped.Table, skipped.Error)
	s.diagnosticLogger.Printf("Skipped %s source %s: %s", skipped.Type, skipped.Table, skipped.Error)
}

func (s *Server) addTool(tool *mcp.Tool, handler mcp.ToolHandler) {
	s.handlers[tool.Name] = handler
	s.server.AddTool(tool, handler)
}

func stringProp(description string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Description: description}
}

func integerProp(description string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "integer", Description: description}
}

func (s *Server) registerTools() {
	// Meta tool - always register first
	s.addTool(&mcp.Tool{
		Name:        ToolInfo,
		Description: "Help for every tool, server version and call counters. Use {} for an overview or {\"tool\": \"find_acls\"} for one tool.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"tool": stringProp("Tool name to describe, or 'version'"),
			},
		},
	}, s.handleInfo)

	s.addTool(&mcp.Tool{
		Name:        ToolGetTableSchema,
		Description: "Field definitions of a table (name, label, type, reference target, max length), sorted by field name. Looks the table up by name, then by label.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"table_name": stringProp("Table name or label, e.g. 'incident'"),
				"include_inherited": {
					Type:        "boolean",
					Description: "Merge fields from parent tables (child definitions win)",
				},
			},
			Required: []string{"table_name"},
		},
	}, s.handleGetTableSchema)

	s.addTool(&mcp.Tool{
		Name:        ToolGetFieldChoices,
		Description: "Active choice list entries (value and label) of a field, sorted by label.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"table_name": stringProp("Table that owns the field"),
				"field_name": stringProp("Choice field, e.g. 'state'"),
			},
			Required: []string{"table_name", "field_name"},
		},
	}, s.handleGetFieldChoices)

	s.addTool(&mcp.Tool{
		Name:        ToolFindRelevantScripts,
		Description: "Business rules, script includes and client scripts matching a table, keyword or scope, newest first. Tables that fail are listed in skipped_sources. At least one of table_name, keyword or scope_name is required.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"table_name":  stringProp("Table the scripts run against"),
				"keyword":     stringProp("Text matched against script name and body"),
				"scope_name":  stringProp("Application scope name or namespace"),
				"script_type": stringProp("BusinessRule, ScriptInclude or ClientScript (default: all)"),
				"limit":       integerProp("Maximum scripts per source table"),
			},
		},
	}, s.handleFindRelevantScripts)

	s.addTool(&mcp.Tool{
		Name:        ToolFindBusinessRules,
		Description: "Business rule details. A name alone must match exactly one rule; add table_name when it is ambiguous. A table alone lists its rules in execution order.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"business_rule_name": stringProp("Exact business rule name"),
				"table_name":         stringProp("Table the rule runs on"),
			},
		},
	}, s.handleFindBusinessRules)

	s.addTool(&mcp.Tool{
		Name:        ToolFindAcls,
		Description: "Access control rules guarding a table or one of its fields, with the roles each rule requires.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"table_name": stringProp("Table to inspect"),
				"operation":  stringProp("Operation filter, e.g. read, write, create, delete"),
				"field_name": stringProp("Restrict to ACLs for one field (includes table.* rules)"),
				"limit":      integerProp("Maximum ACLs to return"),
			},
			Required: []string{"table_name"},
		},
	}, s.handleFindAcls)

	s.addTool(&mcp.Tool{
		Name:        ToolGetSystemProperties,
		Description: "System properties by name. Plain names match as a prefix; globs like 'glide.ui.*' are matched exactly.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"name":       stringProp("Property name prefix or glob"),
				"scope_name": stringProp("Restrict to one application scope"),
				"limit":      integerProp("Maximum properties to return"),
			},
			Required: []string{"name"},
		},
	}, s.handleGetSystemProperties)

	s.addTool(&mcp.Tool{
		Name:        ToolGetScriptIncludeAPI,
		Description: "A script include's metadata and the public functions it defines, with parameter names and doc comments.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"script_include_name": stringProp("Script include name or api_name, e.g. 'global.IncidentUtils'"),
			},
			Required: []string{"script_include_name"},
		},
	}, s.handleGetScriptIncludeAPI)
}

// toolFunc runs one tool call and classifies a successful outcome
type toolFunc func() (*mcp.CallToolResult, metrics.Outcome, error)

// recoverFromPanic provides panic recovery and accounting for tool calls.
// Validation errors become protocol errors; everything else is reported in
// the tool result with IsError set.
func (s *Server) recoverFromPanic(operation string, handler toolFunc) (result *mcp.CallToolResult, err error) {
	start := time.Now()
	outcome := metrics.OutcomeOK

	defer func() {
		if r := recover(); r != nil {
			s.diagnosticLogger.Errorf("PANIC RECOVERED in %s: %v", operation, r)
			s.diagnosticLogger.Printf("Stack trace: %s", rtdebug.Stack())
			outcome = metrics.OutcomeInternal
			result, err = createErrorResponse(operation, fmt.Errorf("internal error: %v", r))
		}
		s.stats.RecordCall(operation, time.Since(start), outcome)
	}()

	result, outcome, err = handler()
	if err == nil {
		return result, nil
	}

	switch {
	case nmerrors.IsValidation(err):
		outcome = metrics.OutcomeInvalid
		s.diagnosticLogger.Printf("Rejected %s: %v", operation, err)
		return nil, err
	case nmerrors.IsAmbiguous(err):
		outcome = metrics.OutcomeAmbiguous
	case nmerrors.IsRemote(err):
		outcome = metrics.OutcomeRemoteError
	default:
		outcome = metrics.OutcomeInternal
	}

	s.diagnosticLogger.Printf("Error in %s: %v", operation, err)
	return createErrorResponse(operation, err)
}

// Start serves MCP over stdio until ctx is cancelled or the client disconnects
func (s *Server) Start(ctx context.Context) error {
	s.diagnosticLogger.Printf("Starting MCP server with stdio transport")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Shutdown releases the service and flushes the diagnostic log
func (s *Server) Shutdown(ctx context.Context) error {
	s.diagnosticLogger.Printf("Shutting down MCP server...")
	s.service.Close()
	s.diagnosticLogger.Printf("MCP server shutdown complete")
	return s.diagnosticLogger.Close()
}

// Stats exposes the usage counters
func (s *Server) Stats() *metrics.UsageStats {
	return s.stats
}

// LogPath returns the diagnostic log file, empty outside MCP mode
func (s *Server) LogPath() string {
	return s.diagnosticLogger.GetLogPath()
}

// GetHandlerForTesting returns a handler function for testing purposes
func (s *Server) GetHandlerForTesting(toolName string) mcp.ToolHandler {
	if h, ok := s.handlers[toolName]; ok {
		return h
	}
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return createErrorResponse("GetHandlerForTesting", fmt.Errorf("unknown tool: %s", toolName))
	}
}
