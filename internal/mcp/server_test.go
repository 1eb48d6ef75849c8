package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/nowmeta/internal/remote"
	"github.com/standardbeagle/nowmeta/testhelpers"
)

var testClientImpl = &mcp.Implementation{Name: "nowmeta-test-client", Version: "1.0.0"}

// connect wires a client session to s over in-memory transports
func connect(t *testing.T, s *Server) *mcp.ClientSession {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serverSession, err := s.server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	client := mcp.NewClient(testClientImpl, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		session.Close()
		serverSession.Wait()
	})
	return session
}

func TestServer_ListTools(t *testing.T) {
	s, _ := newTestServer(t, testhelpers.NewFakeQuerier())
	session := connect(t, s)

	res, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	names := make([]string, 0, len(res.Tools))
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
		assert.NotEmpty(t, tool.Description, tool.Name)
		assert.NotNil(t, tool.InputSchema, tool.Name)
	}
	assert.ElementsMatch(t, ToolNames, names)
}

func TestServer_EndToEndAgainstFakeInstance(t *testing.T) {
	q := testhelpers.NewFakeQuerier().Returns("sys_choice",
		testhelpers.Rec("value", "1", "label", "New", "inactive", "false"),
		testhelpers.Rec("value", "", "label", "Broken", "inactive", "false"),
	)
	instance := testhelpers.NewFakeInstance(t, q)
	cfg := testhelpers.NewTestConfigBuilder().WithRemote(instance.Remote()).Build()

	s, err := newServer(cfg, remote.NewClient(cfg.Remote), NoOpLogger)
	require.NoError(t, err)
	t.Cleanup(func() { s.service.Close() })
	session := connect(t, s)

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      ToolGetFieldChoices,
		Arguments: map[string]interface{}{"table_name": "incident", "field_name": "state"},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	var out struct {
		Choices []struct {
			Value string `json:"value"`
			Label string `json:"label"`
		} `json:"choices"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].(*mcp.TextContent).Text), &out))
	require.Len(t, out.Choices, 1, "entries without a value are dropped")
	assert.Equal(t, "New", out.Choices[0].Label)

	calls := q.CallsFor("sys_choice")
	require.Len(t, calls, 1)
	assert.Equal(t, "name=incident^element=state^inactive=false", calls[0].Query)
}

func TestServer_ProtocolErrorForMissingInput(t *testing.T) {
	s, _ := newTestServer(t, testhelpers.NewFakeQuerier())
	session := connect(t, s)

	_, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      ToolGetTableSchema,
		Arguments: map[string]interface{}{},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table_name")
}

func TestServer_NewServerWritesLogFile(t *testing.T) {
	cfg := testhelpers.NewTestConfigBuilder().WithLogDir(t.TempDir()).Build()
	s, err := NewServer(cfg, testhelpers.NewFakeQuerier())
	require.NoError(t, err)

	assert.NotEmpty(t, s.LogPath())
	assert.FileExists(t, s.LogPath())
	require.NoError(t, s.Shutdown(context.Background()))
}

func TestGetHandlerForTesting_Unknown(t *testing.T) {
	s, _ := newTestServer(t, testhelpers.NewFakeQuerier())

	res, err := s.GetHandlerForTesting("nope")(context.Background(), &mcp.CallToolRequest{})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
