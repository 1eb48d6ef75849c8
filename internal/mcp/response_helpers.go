package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// addWarningsToResponse adds warning messages to an MCP response.
// Existing warnings in the payload are kept ahead of the new ones.
func addWarningsToResponse(result *mcp.CallToolResult, warnings []string) {
	if result == nil || len(warnings) == 0 || len(result.Content) == 0 {
		return
	}

	textContent, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		return
	}

	var responseData map[string]interface{}
	if err := json.Unmarshal([]byte(textContent.Text), &responseData); err == nil {
		merged := make([]interface{}, 0, len(warnings))
		if existing, ok := responseData["warnings"].([]interface{}); ok {
			merged = append(merged, existing...)
		}
		for _, w := range warnings {
			merged = append(merged, w)
		}
		responseData["warnings"] = merged

		if updatedJSON, err := json.Marshal(responseData); err == nil {
			result.Content[0] = &mcp.TextContent{
				Text: string(updatedJSON),
			}
			return
		}
	}

	// If we couldn't parse as JSON, append warnings as text
	warningText := "\n\nWarnings:\n"
	for _, warning := range warnings {
		warningText += fmt.Sprintf("- %s\n", warning)
	}
	textContent.Text += warningText
}

// createResponseWithWarnings creates an MCP response with warnings included
func createResponseWithWarnings(data interface{}, warnings []string) (*mcp.CallToolResult, error) {
	response, err := createJSONResponse(data)
	if err != nil {
		return nil, err
	}

	if len(warnings) > 0 {
		addWarningsToResponse(response, warnings)
	}

	return response, nil
}

// unknownFieldWarnings renders ignored parameters, sorted by name
func unknownFieldWarnings(fields []UnknownField) []string {
	if len(fields) == 0 {
		return nil
	}
	out := make([]string, 0, len(fields))
	for _, f := range sortUnknownFields(fields) {
		out = append(out, fmt.Sprintf("unknown parameter %q ignored", f.Name))
	}
	return out
}
