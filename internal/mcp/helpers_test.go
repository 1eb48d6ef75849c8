package mcp

import (
	"bytes"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/nowmeta/internal/config"
	"github.com/standardbeagle/nowmeta/testhelpers"
)

// syncBuffer collects diagnostic output from concurrent handlers
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestServer(t *testing.T, q *testhelpers.FakeQuerier, cfg ...*config.Config) (*Server, *syncBuffer) {
	t.Helper()
	c := testhelpers.NewTestConfigBuilder().Sequential().Build()
	if len(cfg) > 0 {
		c = cfg[0]
	}
	logs := &syncBuffer{}
	s, err := newServer(c, q, NewWriterLogger(logs))
	require.NoError(t, err)
	t.Cleanup(func() { s.service.Close() })
	return s, logs
}

func decode(t *testing.T, text string) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text), &out), text)
	return out
}
