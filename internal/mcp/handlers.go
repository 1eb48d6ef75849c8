package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	nmerrors "github.com/standardbeagle/nowmeta/internal/errors"
	"github.com/standardbeagle/nowmeta/internal/metadata"
	"github.com/standardbeagle/nowmeta/internal/metrics"
)

// bindParams decodes tool arguments; malformed input is a validation error
func bindParams(req *mcp.CallToolRequest, dst interface{}) error {
	if err := decodeParams(req, dst); err != nil {
		return nmerrors.NewInvalidValueError("arguments", "", "must be a JSON object matching the tool schema: "+err.Error())
	}
	return nil
}

func respond(data interface{}, warnings []string) (*mcp.CallToolResult, metrics.Outcome, error) {
	result, err := createResponseWithWarnings(data, warnings)
	return result, metrics.OutcomeOK, err
}

func respondNotFound(message string, warnings []string) (*mcp.CallToolResult, metrics.Outcome, error) {
	result, err := createNotFoundResponse(message)
	if err == nil {
		addWarningsToResponse(result, warnings)
	}
	return result, metrics.OutcomeNotFound, err
}

func (s *Server) handleGetTableSchema(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic(ToolGetTableSchema, func() (*mcp.CallToolResult, metrics.Outcome, error) {
		var params TableSchemaParams
		if err := bindParams(req, &params); err != nil {
			return nil, metrics.OutcomeInvalid, err
		}
		table := strings.TrimSpace(params.TableName)
		if table == "" {
			return nil, metrics.OutcomeInvalid, nmerrors.NewMissingFieldError("table_name")
		}

		schema, err := s.service.GetTableSchema(ctx, table, params.IncludeInherited)
		if err != nil {
			return nil, metrics.OutcomeOK, err
		}
		warnings := unknownFieldWarnings(params.Warnings)
		if schema == nil {
			return respondNotFound(fmt.Sprintf("Table %q not found (looked up by name and label)", table), warnings)
		}
		return respond(schema, warnings)
	})
}

func (s *Server) handleGetFieldChoices(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic(ToolGetFieldChoices, func() (*mcp.CallToolResult, metrics.Outcome, error) {
		var params FieldChoicesParams
		if err := bindParams(req, &params); err != nil {
			return nil, metrics.OutcomeInvalid, err
		}
		table, field := strings.TrimSpace(params.TableName), strings.TrimSpace(params.FieldName)
		if table == "" {
			return nil, metrics.OutcomeInvalid, nmerrors.NewMissingFieldError("table_name")
		}
		if field == "" {
			return nil, metrics.OutcomeInvalid, nmerrors.NewMissingFieldError("field_name")
		}

		choices, err := s.service.GetFieldChoices(ctx, table, field)
		if err != nil {
			return nil, metrics.OutcomeOK, err
		}
		warnings := unknownFieldWarnings(params.Warnings)
		if len(choices) == 0 {
			return respondNotFound(fmt.Sprintf("No active choices found for %s.%s", table, field), warnings)
		}
		return respond(map[string]interface{}{
			"table":   table,
			"field":   field,
			"choices": choices,
		}, warnings)
	})
}

func (s *Server) handleFindRelevantScripts(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic(ToolFindRelevantScripts, func() (*mcp.CallToolResult, metrics.Outcome, error) {
		var params ScriptSearchParams
		if err := bindParams(req, &params); err != nil {
			return nil, metrics.OutcomeInvalid, err
		}

		res, err := s.service.FindRelevantScripts(ctx, metadata.ScriptSearch{
			TableName:  strings.TrimSpace(params.TableName),
			Keyword:    strings.TrimSpace(params.Keyword),
			ScopeName:  strings.TrimSpace(params.ScopeName),
			ScriptType: strings.TrimSpace(params.ScriptType),
			Limit:      params.Limit,
		})
		if err != nil {
			return nil, metrics.OutcomeOK, err
		}

		warnings := unknownFieldWarnings(params.Warnings)
		if len(res.Scripts) == 0 && len(res.SkippedSources) == 0 {
			return respondNotFound(noScriptsMessage(params, res.Criteria), warnings)
		}
		return respond(res, warnings)
	})
}

func noScriptsMessage(params ScriptSearchParams, criteria []string) string {
	if len(criteria) == 0 && strings.TrimSpace(params.ScopeName) != "" {
		return fmt.Sprintf("No scripts found: scope %q does not exist", strings.TrimSpace(params.ScopeName))
	}
	return fmt.Sprintf("No scripts found matching %s", strings.Join(criteria, ", "))
}

func (s *Server) handleFindBusinessRules(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic(ToolFindBusinessRules, func() (*mcp.CallToolResult, metrics.Outcome, error) {
		var params BusinessRuleParams
		if err := bindParams(req, &params); err != nil {
			return nil, metrics.OutcomeInvalid, err
		}
		search := metadata.BusinessRuleSearch{
			Name:      strings.TrimSpace(params.BusinessRuleName),
			TableName: strings.TrimSpace(params.TableName),
		}

		res, err := s.service.FindBusinessRules(ctx, search)
		if err != nil {
			return nil, metrics.OutcomeOK, err
		}

		warnings := append(res.Warnings, unknownFieldWarnings(params.Warnings)...)
		if len(res.Rules) == 0 {
			return respondNotFound(noRulesMessage(search), warnings)
		}
		return respond(map[string]interface{}{"rules": res.Rules}, warnings)
	})
}

func noRulesMessage(search metadata.BusinessRuleSearch) string {
	switch {
	case search.Name != "" && search.TableName != "":
		return fmt.Sprintf("No business rule named %q on table %q", search.Name, search.TableName)
	case search.Name != "":
		return fmt.Sprintf("No business rule named %q", search.Name)
	default:
		return fmt.Sprintf("No business rules on table %q", search.TableName)
	}
}

func (s *Server) handleFindAcls(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic(ToolFindAcls, func() (*mcp.CallToolResult, metrics.Outcome, error) {
		var params AclParams
		if err := bindParams(req, &params); err != nil {
			return nil, metrics.OutcomeInvalid, err
		}
		table := strings.TrimSpace(params.TableName)
		if table == "" {
			return nil, metrics.OutcomeInvalid, nmerrors.NewMissingFieldError("table_name")
		}

		acls, err := s.service.FindAcls(ctx, metadata.AclSearch{
			TableName: table,
			Operation: strings.TrimSpace(params.Operation),
			FieldName: strings.TrimSpace(params.FieldName),
			Limit:     params.Limit,
		})
		if err != nil {
			return nil, metrics.OutcomeOK, err
		}

		warnings := unknownFieldWarnings(params.Warnings)
		if len(acls) == 0 {
			return respondNotFound(fmt.Sprintf("No ACLs found for table %q", table), warnings)
		}
		return respond(map[string]interface{}{"acls": acls}, warnings)
	})
}

func (s *Server) handleGetSystemProperties(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic(ToolGetSystemProperties, func() (*mcp.CallToolResult, metrics.Outcome, error) {
		var params PropertyParams
		if err := bindParams(req, &params); err != nil {
			return nil, metrics.OutcomeInvalid, err
		}
		name := strings.TrimSpace(params.Name)
		if name == "" {
			return nil, metrics.OutcomeInvalid, nmerrors.NewMissingFieldError("name")
		}

		res, err := s.service.GetSystemProperties(ctx, metadata.PropertySearch{
			Name:      name,
			ScopeName: strings.TrimSpace(params.ScopeName),
			Limit:     params.Limit,
		})
		if err != nil {
			return nil, metrics.OutcomeOK, err
		}

		warnings := append(res.Warnings, unknownFieldWarnings(params.Warnings)...)
		if len(res.Properties) == 0 {
			return respondNotFound(fmt.Sprintf("No system properties match %q", name), warnings)
		}
		return respond(map[string]interface{}{"properties": res.Properties}, warnings)
	})
}

func (s *Server) handleGetScriptIncludeAPI(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic(ToolGetScriptIncludeAPI, func() (*mcp.CallToolResult, metrics.Outcome, error) {
		var params ScriptIncludeParams
		if err := bindParams(req, &params); err != nil {
			return nil, metrics.OutcomeInvalid, err
		}
		name := strings.TrimSpace(params.ScriptIncludeName)
		if name == "" {
			return nil, metrics.OutcomeInvalid, nmerrors.NewMissingFieldError("script_include_name")
		}

		api, err := s.service.GetScriptIncludeAPI(ctx, name)
		if err != nil {
			return nil, metrics.OutcomeOK, err
		}
		warnings := unknownFieldWarnings(params.Warnings)
		if api == nil {
			return respondNotFound(fmt.Sprintf("Script include %q not found (looked up by name and api_name)", name), warnings)
		}
		return respond(api, warnings)
	})
}
