package testhelpers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nmerrors "github.com/standardbeagle/nowmeta/internal/errors"
	"github.com/standardbeagle/nowmeta/internal/remote"
)

func TestFakeInstance_RoundTrip(t *testing.T) {
	q := NewFakeQuerier().Returns("sys_scope", DisplayRec("sys_id", "abc", "name", "x_app|HR Core"))
	fi := NewFakeInstance(t, q)
	client := remote.NewClient(fi.Remote())

	recs, err := client.Query(context.Background(), remote.Request{
		Table:   "sys_scope",
		Query:   "scope=x_app^ORname=x_app",
		Fields:  []string{"sys_id", "name"},
		Limit:   1,
		Display: remote.DisplayBoth,
	})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "HR Core", recs[0].Get("name").Display)

	calls := q.CallsFor("sys_scope")
	require.Len(t, calls, 1)
	assert.Equal(t, "scope=x_app^ORname=x_app", calls[0].Query)
	assert.Equal(t, []string{"sys_id", "name"}, calls[0].Fields)
	assert.Equal(t, 1, calls[0].Limit)
	assert.Equal(t, remote.DisplayBoth, calls[0].Display)
}

func TestFakeInstance_RawDisplayFlattensPairs(t *testing.T) {
	q := NewFakeQuerier().Returns("sys_scope", DisplayRec("name", "x_app|HR Core"))
	client := remote.NewClient(NewFakeInstance(t, q).Remote())

	recs, err := client.Query(context.Background(), remote.Request{Table: "sys_scope", Display: remote.DisplayRaw})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	f := recs[0].Get("name")
	assert.Equal(t, "x_app", f.Value)
	assert.False(t, f.HasDisplay)
}

func TestFakeInstance_ErrorEnvelope(t *testing.T) {
	q := NewFakeQuerier().Fails("sys_script_client", nmerrors.NewRemoteError("sys_script_client", 403, "ACL denied", "no read"))
	client := remote.NewClient(NewFakeInstance(t, q).Remote())

	_, err := client.Query(context.Background(), remote.Request{Table: "sys_script_client"})
	var remoteErr *nmerrors.RemoteError
	require.True(t, errors.As(err, &remoteErr))
	assert.Equal(t, 403, remoteErr.Status)
	assert.Equal(t, "ACL denied", remoteErr.Message)
	assert.Equal(t, "no read", remoteErr.Detail)
}

func TestFakeInstance_RejectsBadCredentials(t *testing.T) {
	fi := NewFakeInstance(t, NewFakeQuerier())
	r := fi.Remote()
	r.Password = "wrong"

	_, err := remote.NewClient(r).Query(context.Background(), remote.Request{Table: "sys_scope"})
	var remoteErr *nmerrors.RemoteError
	require.True(t, errors.As(err, &remoteErr))
	assert.Equal(t, 401, remoteErr.Status)
}
