package metadata

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nmerrors "github.com/standardbeagle/nowmeta/internal/errors"
	"github.com/standardbeagle/nowmeta/internal/normalize"
	"github.com/standardbeagle/nowmeta/internal/remote"
	"github.com/standardbeagle/nowmeta/testhelpers"
)

func ruleRec(name, table, order, sysID string) normalize.Record {
	return testhelpers.DisplayRec(
		"name", name, "collection", table, "when", "before|Before", "order", order,
		"active", "true", "action_insert", "true", "action_update", "false",
		"action_delete", "false", "action_query", "false", "condition", "current.active",
		"sys_scope", "global|Global", "sys_updated_on", "2024-01-01 00:00:00", "sys_id", sysID,
	)
}

// ruleFixture filters a small rule set by the name and collection clauses it understands
func ruleFixture(rules ...normalize.Record) testhelpers.QueryHandler {
	return func(req remote.Request) ([]normalize.Record, error) {
		var out []normalize.Record
		for _, r := range rules {
			name := "name=" + r.Get("name").Value
			table := "collection=" + r.Get("collection").Value
			switch req.Query {
			case name, name + "^" + table, table + "^ORDERBYorder":
				out = append(out, r)
			}
		}
		return testhelpers.Limit(out, req.Limit), nil
	}
}

func TestFindBusinessRules_NameOnlyAmbiguous(t *testing.T) {
	q := testhelpers.NewFakeQuerier().On("sys_script", ruleFixture(
		ruleRec("X", "incident", "100", "r1"),
		ruleRec("X", "problem", "100", "r2"),
	))
	svc, _ := newTestService(t, q)

	_, err := svc.FindBusinessRules(context.Background(), BusinessRuleSearch{Name: "X"})
	require.Error(t, err)

	var amb *nmerrors.AmbiguityError
	require.True(t, errors.As(err, &amb))
	assert.Equal(t, "X", amb.Name)
	assert.Equal(t, 2, amb.Count)
	assert.Contains(t, amb.Error(), "table_name")
	assert.Contains(t, amb.Hint, "incident")
	assert.False(t, nmerrors.IsRemote(err))

	assert.Equal(t, 2, q.CallsFor("sys_script")[0].Limit)
}

func TestFindBusinessRules_NameAndTableResolves(t *testing.T) {
	q := testhelpers.NewFakeQuerier().On("sys_script", ruleFixture(
		ruleRec("X", "incident", "100", "r1"),
		ruleRec("X", "problem", "100", "r2"),
	))
	svc, _ := newTestService(t, q)

	res, err := svc.FindBusinessRules(context.Background(), BusinessRuleSearch{Name: "X", TableName: "incident"})
	require.NoError(t, err)
	require.Len(t, res.Rules, 1)
	assert.Empty(t, res.Warnings)

	r := res.Rules[0]
	assert.Equal(t, "r1", r.SysID)
	assert.Equal(t, "incident", r.Table)
	assert.Equal(t, "before", r.When)
	assert.Equal(t, 100, r.Order)
	assert.True(t, r.Active)
	assert.True(t, r.Insert)
	assert.False(t, r.Update)
	assert.Equal(t, "Global", r.Scope)

	assert.Equal(t, "name=X^collection=incident", q.CallsFor("sys_script")[0].Query)
}

func TestFindBusinessRules_NameAndTableDuplicateWarns(t *testing.T) {
	q := testhelpers.NewFakeQuerier().On("sys_script", ruleFixture(
		ruleRec("X", "incident", "100", "r1"),
		ruleRec("X", "incident", "200", "r3"),
	))
	svc, _ := newTestService(t, q)

	res, err := svc.FindBusinessRules(context.Background(), BusinessRuleSearch{Name: "X", TableName: "incident"})
	require.NoError(t, err)
	require.Len(t, res.Rules, 1, "capped at one")
	assert.Equal(t, "r1", res.Rules[0].SysID)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "r1")
}

func TestFindBusinessRules_NameOnlySingle(t *testing.T) {
	q := testhelpers.NewFakeQuerier().On("sys_script", ruleFixture(ruleRec("Only", "incident", "1", "r1")))
	svc, _ := newTestService(t, q)

	res, err := svc.FindBusinessRules(context.Background(), BusinessRuleSearch{Name: "Only"})
	require.NoError(t, err)
	require.Len(t, res.Rules, 1)
}

func TestFindBusinessRules_TableOnlyOrdered(t *testing.T) {
	q := testhelpers.NewFakeQuerier().On("sys_script", ruleFixture(
		ruleRec("late", "incident", "1,000", "r1"),
		ruleRec("unordered", "incident", "", "r2"),
		ruleRec("early", "incident", "50", "r3"),
		ruleRec("other", "problem", "1", "r4"),
	))
	svc, _ := newTestService(t, q)

	res, err := svc.FindBusinessRules(context.Background(), BusinessRuleSearch{TableName: "incident"})
	require.NoError(t, err)

	require.Len(t, res.Rules, 3)
	assert.Equal(t, []string{"unordered", "early", "late"}, []string{res.Rules[0].Name, res.Rules[1].Name, res.Rules[2].Name})
	assert.Equal(t, 0, res.Rules[0].Order)
	assert.Equal(t, 1000, res.Rules[2].Order)

	call := q.CallsFor("sys_script")[0]
	assert.Equal(t, 50, call.Limit)
	assert.Equal(t, "collection=incident^ORDERBYorder", call.Query)
}

func TestFindBusinessRules_NotFound(t *testing.T) {
	svc, _ := newTestService(t, testhelpers.NewFakeQuerier())
	res, err := svc.FindBusinessRules(context.Background(), BusinessRuleSearch{Name: "ghost"})
	require.NoError(t, err)
	assert.Empty(t, res.Rules)
	assert.NotNil(t, res.Rules)
}

func TestFindBusinessRules_RequiresCriteria(t *testing.T) {
	q := testhelpers.NewFakeQuerier()
	svc, _ := newTestService(t, q)

	_, err := svc.FindBusinessRules(context.Background(), BusinessRuleSearch{})
	assert.True(t, nmerrors.IsValidation(err))
	assert.Empty(t, q.Calls())
}
