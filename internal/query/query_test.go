package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClauses(t *testing.T) {
	tests := []struct {
		name string
		got  Clause
		want Clause
	}{
		{"equals", Equals("name", "incident"), "name=incident"},
		{"equals empty value", Equals("name", ""), ""},
		{"like", Like("script", "GlideRecord"), "scriptLIKEGlideRecord"},
		{"starts with", StartsWith("name", "glide.ui."), "nameSTARTSWITHglide.ui."},
		{"not empty", NotEmpty("element"), "elementISNOTEMPTY"},
		{"bool true", BoolEquals("active", true), "active=true"},
		{"bool false", BoolEquals("inactive", false), "inactive=false"},
		{"in", In("sys_security_acl", "a", "", "b"), "sys_security_aclINa,b"},
		{"in nothing", In("sys_id"), ""},
		{"or", Or(Equals("scope", "x_app"), Equals("name", "x_app")), "scope=x_app^ORname=x_app"},
		{"or skips zero", Or(Equals("scope", ""), Equals("name", "x")), "name=x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestBuilder_Build(t *testing.T) {
	q, ok := New().
		Where(Equals("name", "incident"), NotEmpty("element")).
		OrderBy("element").
		Build()
	assert.True(t, ok)
	assert.Equal(t, "name=incident^elementISNOTEMPTY^ORDERBYelement", q)
}

func TestBuilder_OrderOnlyIsNotACriterion(t *testing.T) {
	b := New().OrderByDesc("sys_updated_on")
	q, ok := b.Build()
	assert.False(t, ok)
	assert.Equal(t, "ORDERBYDESCsys_updated_on", q)
	assert.Equal(t, 0, b.Len())
}

func TestBuilder_Empty(t *testing.T) {
	q, ok := New().Where("", Equals("a", "")).Build()
	assert.False(t, ok)
	assert.Empty(t, q)
}

func TestBuilder_LastOrderWins(t *testing.T) {
	q := New().Where(Equals("a", "1")).OrderBy("x").OrderByDesc("y").String()
	assert.Equal(t, "a=1^ORDERBYDESCy", q)
}

func TestHasSeparator(t *testing.T) {
	assert.True(t, HasSeparator("foo^ORname=bar"))
	assert.False(t, HasSeparator("plain_name"))
}
