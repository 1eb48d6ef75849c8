package metadata

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/nowmeta/internal/config"
	"github.com/standardbeagle/nowmeta/testhelpers"
)

type captureLogger struct {
	mu    sync.Mutex
	lines []string
}

func (c *captureLogger) Printf(format string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, fmt.Sprintf(format, args...))
}

func (c *captureLogger) Lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.lines...)
}

type serviceOption func(*Options)

func sequential() serviceOption {
	return func(o *Options) { o.Concurrent = false }
}

func withLimits(l config.Limits) serviceOption {
	return func(o *Options) { o.Limits = l }
}

func newTestService(t *testing.T, q *testhelpers.FakeQuerier, opts ...serviceOption) (*Service, *captureLogger) {
	t.Helper()
	log := &captureLogger{}
	o := Options{Concurrent: true, Logger: log}
	for _, opt := range opts {
		opt(&o)
	}
	svc, err := NewService(q, o)
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	return svc, log
}
