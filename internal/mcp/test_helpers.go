package mcp

// In-process testing: CallTool invokes a registered handler directly,
// bypassing the stdio transport.
//
//	server, _ := mcp.NewServer(cfg, client)
//	resultJSON, err := server.CallTool("get_table_schema", map[string]interface{}{
//	    "table_name": "incident",
//	})

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// CallTool is a test helper method to simulate MCP tool calls. A protocol
// error is returned as err with an empty result; a tool error (IsError)
// returns both the payload and an error.
func (s *Server) CallTool(toolName string, params map[string]interface{}) (string, error) {
	handler, ok := s.handlers[toolName]
	if !ok {
		return "", fmt.Errorf("unknown tool: %s", toolName)
	}

	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("failed to marshal params: %w", err)
	}

	req := &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{
			Name:      toolName,
			Arguments: paramsJSON,
		},
	}

	result, err := handler(context.Background(), req)
	if err != nil {
		return "", err
	}
	if result == nil || len(result.Content) == 0 {
		return "", nil
	}

	textContent, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		return "", fmt.Errorf("unexpected content type %T", result.Content[0])
	}
	if result.IsError {
		var response map[string]interface{}
		if json.Unmarshal([]byte(textContent.Text), &response) == nil {
			if errorMsg, ok := response["error"].(string); ok {
				return textContent.Text, fmt.Errorf("MCP error: %s", errorMsg)
			}
		}
		return textContent.Text, fmt.Errorf("MCP error: %s", textContent.Text)
	}
	return textContent.Text, nil
}
