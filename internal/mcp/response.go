package mcp

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	nmerrors "github.com/standardbeagle/nowmeta/internal/errors"
)

// createJSONResponse creates a standardized JSON response for MCP tools
func createJSONResponse(data interface{}) (*mcp.CallToolResult, error) {
	content, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response data: %v", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(content)},
		},
	}, nil
}

// createNotFoundResponse reports a zero-match lookup. Not-found is an
// informational result, never a tool error.
func createNotFoundResponse(message string) (*mcp.CallToolResult, error) {
	return createJSONResponse(map[string]interface{}{
		"found":   false,
		"message": message,
	})
}

// createErrorResponse creates a standardized error response for MCP tools
func createErrorResponse(operation string, err error) (*mcp.CallToolResult, error) {
	errorData := map[string]interface{}{
		"success":   false,
		"error":     err.Error(),
		"operation": operation,
	}
	for k, v := range errorDetails(err) {
		errorData[k] = v
	}

	response, marshalErr := createJSONResponse(errorData)
	if marshalErr != nil {
		return nil, marshalErr
	}

	// Tool failures travel inside the result so the model can see them
	response.IsError = true

	return response, nil
}

// errorDetails exposes the typed fields a client can act on
func errorDetails(err error) map[string]interface{} {
	var amb *nmerrors.AmbiguityError
	if errors.As(err, &amb) {
		return map[string]interface{}{
			"error_type": string(amb.Type),
			"name":       amb.Name,
			"count":      amb.Count,
			"hint":       amb.Hint,
		}
	}

	var remote *nmerrors.RemoteError
	if errors.As(err, &remote) {
		details := map[string]interface{}{
			"error_type": string(remote.Type),
			"table":      remote.Table,
		}
		if remote.Status != 0 {
			details["status"] = remote.Status
		}
		return details
	}

	var verr *nmerrors.ValidationError
	if errors.As(err, &verr) {
		details := map[string]interface{}{
			"error_type": string(verr.Type),
			"field":      verr.Field,
		}
		if verr.Suggestion != "" {
			details["suggestion"] = verr.Suggestion
		}
		return details
	}

	return nil
}
