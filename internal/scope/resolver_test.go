package scope

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/nowmeta/internal/remote"
	"github.com/standardbeagle/nowmeta/testhelpers"
)

type captureLogger struct {
	lines []string
}

func (c *captureLogger) Printf(format string, args ...interface{}) {
	c.lines = append(c.lines, fmt.Sprintf(format, args...))
}

func TestFilter(t *testing.T) {
	assert.Equal(t, "scope=x_acme_hr^ORname=x_acme_hr", Filter("x_acme_hr"))
}

func TestResolve_Found(t *testing.T) {
	q := testhelpers.NewFakeQuerier().
		Returns(Table, testhelpers.Rec("sys_id", "abc123", "scope", "x_acme_hr", "name", "HR Core"))

	res := NewResolver(q, nil).Resolve(context.Background(), "HR Core")

	assert.True(t, res.Found)
	assert.Equal(t, "abc123", res.SysID)
	assert.Equal(t, "x_acme_hr", res.Scope)
	assert.Equal(t, "HR Core", res.Name)
	assert.NoError(t, res.Err)

	calls := q.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "scope=HR Core^ORname=HR Core", calls[0].Query)
	assert.Equal(t, 1, calls[0].Limit)
	assert.Equal(t, remote.DisplayRaw, calls[0].Display)
}

func TestResolve_NotFound(t *testing.T) {
	q := testhelpers.NewFakeQuerier()
	log := &captureLogger{}

	res := NewResolver(q, log).Resolve(context.Background(), "nope")

	assert.False(t, res.Found)
	assert.NoError(t, res.Err)
	assert.Len(t, log.lines, 1)
}

func TestResolve_FailsOpen(t *testing.T) {
	q := testhelpers.NewFakeQuerier().Fails(Table, errors.New("connection reset"))
	log := &captureLogger{}

	res := NewResolver(q, log).Resolve(context.Background(), "x_app")

	assert.False(t, res.Found)
	assert.Error(t, res.Err)
	require.Len(t, log.lines, 1)
	assert.Contains(t, log.lines[0], "connection reset")
}

func TestResolve_EmptyTokenMakesNoCall(t *testing.T) {
	q := testhelpers.NewFakeQuerier()
	res := NewResolver(q, nil).Resolve(context.Background(), "")

	assert.False(t, res.Found)
	assert.Empty(t, q.Calls())
}

func TestResolve_RecordWithoutSysID(t *testing.T) {
	q := testhelpers.NewFakeQuerier().Returns(Table, testhelpers.Rec("scope", "x_app"))
	res := NewResolver(q, nil).Resolve(context.Background(), "x_app")
	assert.False(t, res.Found)
}
