package metadata

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/nowmeta/internal/config"
	nmerrors "github.com/standardbeagle/nowmeta/internal/errors"
	"github.com/standardbeagle/nowmeta/testhelpers"
)

func propertyFixture() *testhelpers.FakeQuerier {
	return testhelpers.NewFakeQuerier().Returns("sys_properties",
		testhelpers.DisplayRec("name", "glide.ui.list.max", "value", "100", "description", "Rows per page",
			"sys_scope", "global|Global", "sys_updated_on", "2024-02-02 00:00:00"),
		testhelpers.DisplayRec("name", "glide.ui.theme", "value", "dark"),
		testhelpers.DisplayRec("name", "glide.uix.flag", "value", "true"),
	)
}

func TestGetSystemProperties_Prefix(t *testing.T) {
	q := propertyFixture()
	svc, _ := newTestService(t, q)

	res, err := svc.GetSystemProperties(context.Background(), PropertySearch{Name: "glide.ui"})
	require.NoError(t, err)
	assert.Len(t, res.Properties, 3, "plain names match as a prefix")

	p := res.Properties[0]
	assert.Equal(t, "glide.ui.list.max", p.Name)
	assert.Equal(t, "100", p.Value)
	assert.Equal(t, "Rows per page", p.Description)
	assert.Equal(t, "Global", p.Scope)
	assert.Equal(t, "2024-02-02 00:00:00", p.UpdatedOn)

	call := q.CallsFor("sys_properties")[0]
	assert.Equal(t, "nameSTARTSWITHglide.ui^ORDERBYname", call.Query)
	assert.Equal(t, svc.Limits().Properties, call.Limit)
}

func TestGetSystemProperties_Glob(t *testing.T) {
	q := propertyFixture()
	svc, _ := newTestService(t, q, withLimits(config.Limits{Properties: 10}))

	res, err := svc.GetSystemProperties(context.Background(), PropertySearch{Name: "glide.ui.*"})
	require.NoError(t, err)

	names := []string{}
	for _, p := range res.Properties {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"glide.ui.list.max", "glide.ui.theme"}, names)

	call := q.CallsFor("sys_properties")[0]
	assert.Equal(t, "nameSTARTSWITHglide.ui.^ORDERBYname", call.Query)
	assert.Equal(t, 10*globOverfetch, call.Limit)
}

func TestGetSystemProperties_GlobTruncatesToLimit(t *testing.T) {
	svc, _ := newTestService(t, propertyFixture())
	res, err := svc.GetSystemProperties(context.Background(), PropertySearch{Name: "glide.*", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, res.Properties, 1)
}

func TestGetSystemProperties_ScopeMissWarns(t *testing.T) {
	q := propertyFixture()
	svc, _ := newTestService(t, q)

	res, err := svc.GetSystemProperties(context.Background(), PropertySearch{Name: "glide.ui", ScopeName: "x_nope"})
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "x_nope")
	assert.Equal(t, "nameSTARTSWITHglide.ui^ORDERBYname", q.CallsFor("sys_properties")[0].Query)
}

func TestGetSystemProperties_ScopeOnlyMiss(t *testing.T) {
	q := propertyFixture()
	svc, _ := newTestService(t, q)

	res, err := svc.GetSystemProperties(context.Background(), PropertySearch{Name: "*", ScopeName: "x_nope"})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Empty(t, res.Properties)
	assert.NotNil(t, res.Properties)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "x_nope")
	assert.Empty(t, q.CallsFor("sys_properties"), "no property query without criteria")
	assert.Equal(t, []string{"sys_scope"}, q.Tables())
}

func TestGetSystemProperties_ScopeFound(t *testing.T) {
	q := propertyFixture().Returns("sys_scope", testhelpers.Rec("sys_id", "s1", "scope", "x_app", "name", "App"))
	svc, _ := newTestService(t, q)

	res, err := svc.GetSystemProperties(context.Background(), PropertySearch{Name: "x_app.", ScopeName: "x_app"})
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, "nameSTARTSWITHx_app.^sys_scope=s1^ORDERBYname", q.CallsFor("sys_properties")[0].Query)
}

func TestGetSystemProperties_Validation(t *testing.T) {
	q := propertyFixture()
	svc, _ := newTestService(t, q)

	_, err := svc.GetSystemProperties(context.Background(), PropertySearch{})
	assert.True(t, nmerrors.IsValidation(err))

	_, err = svc.GetSystemProperties(context.Background(), PropertySearch{Name: "*"})
	assert.True(t, nmerrors.IsValidation(err), "bare wildcard needs a prefix or scope")

	_, err = svc.GetSystemProperties(context.Background(), PropertySearch{Name: "glide.[ui"})
	assert.True(t, nmerrors.IsValidation(err))

	assert.Empty(t, q.CallsFor("sys_properties"))
}

func TestLiteralPrefix(t *testing.T) {
	p, glob := literalPrefix("glide.ui.*")
	assert.Equal(t, "glide.ui.", p)
	assert.True(t, glob)

	p, glob = literalPrefix("glide.ui")
	assert.Equal(t, "glide.ui", p)
	assert.False(t, glob)
}
