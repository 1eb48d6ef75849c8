package metadata

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nmerrors "github.com/standardbeagle/nowmeta/internal/errors"
	"github.com/standardbeagle/nowmeta/testhelpers"
)

func aclFixture() *testhelpers.FakeQuerier {
	return testhelpers.NewFakeQuerier().
		Returns("sys_security_acl",
			testhelpers.DisplayRec("name", "incident", "type", "record|Record", "operation", "read|read",
				"admin_overrides", "true", "active", "true", "description", "Read incidents",
				"script", "answer = true;", "sys_scope", "global|Global",
				"sys_updated_on", "2024-01-01 00:00:00", "sys_id", "a1"),
			testhelpers.DisplayRec("name", "incident.priority", "type", "record", "operation", "write|write",
				"admin_overrides", "false", "active", "false", "sys_id", "a2"),
		).
		Returns("sys_security_acl_role",
			testhelpers.DisplayRec("sys_security_acl", "a1|incident", "sys_user_role", "r1|itil"),
			testhelpers.DisplayRec("sys_security_acl", "a1|incident", "sys_user_role", "r2|admin"),
			testhelpers.DisplayRec("sys_security_acl", "a1|incident", "sys_user_role", "r1|itil"),
		)
}

func TestFindAcls_WithRoles(t *testing.T) {
	q := aclFixture()
	svc, _ := newTestService(t, q)

	out, err := svc.FindAcls(context.Background(), AclSearch{TableName: "incident"})
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "incident", out[0].Name)
	assert.Equal(t, "record", out[0].Type)
	assert.Equal(t, "read", out[0].Operation)
	assert.True(t, out[0].AdminOverrides)
	assert.True(t, out[0].Active)
	assert.Equal(t, "answer = true;", out[0].ConditionScript)
	assert.Equal(t, []string{"admin", "itil"}, out[0].Roles, "sorted and de-duplicated")
	assert.Equal(t, []string{}, out[1].Roles)
	assert.False(t, out[1].Active)
	assert.Equal(t, "Global", out[1].Scope)

	aclCall := q.CallsFor("sys_security_acl")[0]
	assert.Equal(t, "name=incident^ORnameSTARTSWITHincident.^ORDERBYname", aclCall.Query)
	assert.Equal(t, svc.Limits().Acls, aclCall.Limit)

	roleCall := q.CallsFor("sys_security_acl_role")[0]
	assert.Equal(t, "sys_security_aclINa1,a2", roleCall.Query)
	assert.Equal(t, 2*rolesPerAcl, roleCall.Limit)
}

func TestFindAcls_FieldAndOperation(t *testing.T) {
	q := aclFixture()
	svc, _ := newTestService(t, q)

	_, err := svc.FindAcls(context.Background(), AclSearch{TableName: "incident", FieldName: "priority", Operation: "write", Limit: 5})
	require.NoError(t, err)

	call := q.CallsFor("sys_security_acl")[0]
	assert.Equal(t, "name=incident.priority^ORname=incident.*^operation.name=write^ORDERBYname", call.Query)
	assert.Equal(t, 5, call.Limit)
}

func TestFindAcls_NoMatchesSkipsRoleQuery(t *testing.T) {
	q := testhelpers.NewFakeQuerier()
	svc, _ := newTestService(t, q)

	out, err := svc.FindAcls(context.Background(), AclSearch{TableName: "u_custom"})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Empty(t, q.CallsFor("sys_security_acl_role"))
}

func TestFindAcls_RoleQueryFailure(t *testing.T) {
	boom := errors.New("role table unavailable")
	q := aclFixture().Fails("sys_security_acl_role", boom)
	svc, _ := newTestService(t, q)

	_, err := svc.FindAcls(context.Background(), AclSearch{TableName: "incident"})
	assert.ErrorIs(t, err, boom)
}

func TestFindAcls_RequiresTable(t *testing.T) {
	svc, _ := newTestService(t, testhelpers.NewFakeQuerier())
	_, err := svc.FindAcls(context.Background(), AclSearch{})
	assert.True(t, nmerrors.IsValidation(err))
}
