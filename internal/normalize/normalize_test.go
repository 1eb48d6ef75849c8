package normalize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeRecord(t *testing.T, body string) Record {
	t.Helper()
	var r Record
	require.NoError(t, json.Unmarshal([]byte(body), &r))
	return r
}

func TestFieldUnmarshal_BothEncodings(t *testing.T) {
	r := decodeRecord(t, `{
		"name": "incident",
		"active": {"value": "true", "display_value": "Yes"},
		"sys_scope": {"value": "abc123", "display_value": "Customer Service", "link": "https://x/api"},
		"count": 42,
		"flag": true,
		"missing": null,
		"half": {"value": "x", "display_value": null}
	}`)

	assert.Equal(t, Raw("incident"), r["name"])
	assert.Equal(t, Pair("true", "Yes"), r["active"])
	assert.Equal(t, "abc123", r["sys_scope"].Value)
	assert.Equal(t, "Customer Service", r["sys_scope"].Display)
	assert.Equal(t, "42", r["count"].Value)
	assert.Equal(t, "true", r["flag"].Value)
	assert.False(t, r["missing"].HasValue)
	assert.True(t, r["half"].HasValue)
	assert.False(t, r["half"].HasDisplay)
}

func TestFieldUnmarshal_RejectsArrays(t *testing.T) {
	var f Field
	assert.Error(t, json.Unmarshal([]byte(`["a"]`), &f))
}

func TestFieldText(t *testing.T) {
	pair := Pair("raw", "Shown")
	rawOnly := Raw("raw")
	displayOnly := Field{Display: "Shown", HasDisplay: true}

	assert.Equal(t, "Shown", pair.Text(DisplayFirst))
	assert.Equal(t, "raw", pair.Text(ValueFirst))
	assert.Equal(t, "raw", pair.Text(ValueOnly))
	assert.Equal(t, "Shown", pair.Text(DisplayOnly))

	assert.Equal(t, "raw", rawOnly.Text(DisplayFirst), "falls back to raw")
	assert.Equal(t, "", rawOnly.Text(DisplayOnly))
	assert.Equal(t, "Shown", displayOnly.Text(ValueFirst), "falls back to display")
	assert.Equal(t, "", displayOnly.Text(ValueOnly))
}

func TestFieldFlag(t *testing.T) {
	tests := []struct {
		name  string
		field Field
		want  bool
	}{
		{"raw true", Raw("true"), true},
		{"raw false", Raw("false"), false},
		{"pair true", Pair("true", "false"), true},
		{"display true raw false", Pair("false", "true"), false},
		{"display only true", Field{Display: "true", HasDisplay: true}, false},
		{"capitalised", Raw("True"), false},
		{"one", Raw("1"), false},
		{"leading space", Raw(" true"), false},
		{"trailing newline", Raw("true\n"), false},
		{"absent", Field{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.field.Flag())
		})
	}
}

func TestFieldNumber(t *testing.T) {
	intPtr := func(n int) *int { return &n }
	tests := []struct {
		name  string
		field Field
		want  *int
	}{
		{"plain", Raw("40"), intPtr(40)},
		{"grouped", Raw("1,000"), intPtr(1000)},
		{"grouped display", Field{Display: "4,000", HasDisplay: true}, intPtr(4000)},
		{"negative", Raw("-7"), intPtr(-7)},
		{"integral float", Raw("100.0"), intPtr(100)},
		{"fractional", Raw("1.5"), nil},
		{"garbage", Raw("abc"), nil},
		{"empty", Raw(""), nil},
		{"absent", Field{}, nil},
		{"raw wins", Pair("5", "50"), intPtr(5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.field.Number())
		})
	}
}

func TestFieldScopeName(t *testing.T) {
	assert.Equal(t, "HR Core", Pair("id1", "HR Core").ScopeName())
	assert.Equal(t, "global", Raw("global").ScopeName())
	assert.Equal(t, GlobalScope, Field{}.ScopeName())
	assert.Equal(t, GlobalScope, Pair("", "").ScopeName())
}

func TestColumns(t *testing.T) {
	r := Record{
		"name":      Raw("x_util"),
		"active":    Pair("true", "true"),
		"order":     Raw("1,200"),
		"reference": Pair("task", "Task"),
		"sys_scope": Pair("", ""),
	}

	name := Text("name", ValueFirst)
	label := Text("label", DisplayFirst).Or("n/a")
	active := Flag("active")
	order := Number("order")
	ref := Reference("reference")
	scope := Scope("sys_scope")

	assert.Equal(t, "x_util", name.Read(r))
	assert.Equal(t, "n/a", label.Read(r))
	assert.True(t, active.Read(r))
	assert.Equal(t, 1200, order.ReadOr(r, 0))
	assert.Equal(t, 9, Number("missing").ReadOr(r, 9))
	assert.Equal(t, Ref{ID: "task", Display: "Task"}, ref.Read(r))
	assert.Equal(t, GlobalScope, scope.Read(r))

	assert.Equal(t, []string{"name", "label", "active", "order"}, Names(name, label, active, order, name))
}

func TestFieldMarshal(t *testing.T) {
	b, err := json.Marshal(Record{"a": Raw("1"), "b": Pair("2", "Two"), "c": {}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"1","b":{"value":"2","display_value":"Two"},"c":null}`, string(b))
}
