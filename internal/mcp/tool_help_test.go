package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/nowmeta/internal/version"
	"github.com/standardbeagle/nowmeta/testhelpers"
)

func TestInfo_Overview(t *testing.T) {
	s, _ := newTestServer(t, testhelpers.NewFakeQuerier())
	_, _ = s.CallTool(ToolGetTableSchema, map[string]interface{}{"table_name": "incident"})

	text, err := s.CallTool(ToolInfo, map[string]interface{}{})
	require.NoError(t, err)

	out := decode(t, text)
	assert.Equal(t, ServerName, out["server"])
	assert.Equal(t, version.Version, out["version"])
	assert.Len(t, out["tools"], len(ToolNames))

	usage := out["usage"].(map[string]interface{})
	tools := usage["tools"].([]interface{})
	require.Len(t, tools, 1, "only the schema call has completed when the snapshot is taken")
	assert.Equal(t, ToolGetTableSchema, tools[0].(map[string]interface{})["tool"])
}

func TestInfo_Version(t *testing.T) {
	s, _ := newTestServer(t, testhelpers.NewFakeQuerier())

	text, err := s.CallTool(ToolInfo, map[string]interface{}{"tool": "Version"})
	require.NoError(t, err)
	out := decode(t, text)
	assert.Equal(t, version.FullInfo(), out["server_version"])
	assert.Equal(t, version.MCPProtocolVersion, out["mcp_version"])
}

func TestInfo_ToolHelp(t *testing.T) {
	s, _ := newTestServer(t, testhelpers.NewFakeQuerier())

	text, err := s.CallTool(ToolInfo, map[string]interface{}{"tool": ToolFindRelevantScripts})
	require.NoError(t, err)
	out := decode(t, text)
	assert.Equal(t, ToolFindRelevantScripts, out["name"])
	assert.Contains(t, out["parameters"], "script_type")
	assert.NotEmpty(t, out["notes"])
}

func TestInfo_UnknownToolSuggests(t *testing.T) {
	s, _ := newTestServer(t, testhelpers.NewFakeQuerier())

	tests := []struct {
		input string
		want  string
	}{
		{"get_tabel_schema", ToolGetTableSchema},
		{"acls", ToolFindAcls},
		{"properties", ToolGetSystemProperties},
	}
	for _, tt := range tests {
		text, err := s.CallTool(ToolInfo, map[string]interface{}{"tool": tt.input})
		require.NoError(t, err, tt.input)
		out := decode(t, text)
		assert.Equal(t, false, out["found"])
		assert.Contains(t, out["message"], tt.want, tt.input)
	}
}

func TestSuggestTool(t *testing.T) {
	assert.Equal(t, ToolFindBusinessRules, suggestTool("find_business_rule"))
	assert.Equal(t, "", suggestTool("completely_unrelated_thing"))
	assert.Equal(t, "", suggestTool(""))
}
