package prepass

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinodhalaharvi/formulac/diag"
	"github.com/vinodhalaharvi/formulac/model"
)

var taskProps = []model.Descriptor{
	{Identifier: "status", DisplayName: "Status", Kind: model.Select},
	{Identifier: "done", DisplayName: "Done", Kind: model.Checkbox},
	{Identifier: "blocked", DisplayName: "Blocked", Kind: model.Checkbox},
	{Identifier: "estimate", DisplayName: "Estimate", Kind: model.Number},
	{Identifier: "tags", DisplayName: "Tags", Kind: model.MultiSelect},
	{Identifier: "owner", DisplayName: "Owner", Kind: model.Person},
}

func taskEnv(t *testing.T) Env {
	t.Helper()
	table, err := model.NewTable(taskProps)
	require.NoError(t, err)
	return Env{Props: table}
}

func TestLower(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"brace-less if", `if (this.status === 'Done') return 0; else return 1;`, `if(prop("Status")=="Done"){0}else{1}`},
		{"bare property", `if (status == 'Done') return 0; else return 1;`, `if(prop("Status")=="Done"){0}else{1}`},
		{"else if chain", `if (this.done) { return 1; } else if (this.blocked) { return 2; } else { return 3; }`, `if(prop("Done")){1}elseif(prop("Blocked")){2}else{3}`},
		{"fallthrough", `if (this.done) { return 1; } return this.estimate / 2;`, `if(prop("Done")){1}else{prop("Estimate")/2}`},
		{"nested brace-less", `if (this.done) if (this.blocked) return 1; else return 2; else return 3;`, `if(prop("Done")){if(prop("Blocked")){1}else{2}}else{3}`},
		{"comments and value", "// score\nreturn this.estimate.value * 2; /* done */", `prop("Estimate")*2`},
		{"consts", `const limit = 5; const big = this.estimate > limit; return big ? 1 : 0;`, `if((prop("Estimate")>5)){1}else{0}`},
		{"statement ternary", `return this.done ? 1 : 2;`, `if(prop("Done")){1}else{2}`},
		{"ternary on a call", `return this.status.contains("a") ? "yes" : "no";`, `if(prop("Status").contains("a")){"yes"}else{"no"}`},
		{"ternary argument", `return this.round(this.done ? 1.5 : 2);`, `round(if(prop("Done")){1.5}else{2})`},
		{"ternary after fallthrough", `if (this.blocked) { return 0; } return this.done ? 1 : 2;`, `if(prop("Blocked")){0}else{if(prop("Done")){1}else{2}}`},
		{"const member untouched", `const length = 3; return this.tags.length() + length;`, `prop("Tags").length()+3`},
		{"word operators", `return this.done && !this.blocked;`, `prop("Done") and not prop("Blocked")`},
		{"grouped word operators", `return (this.done) || (this.blocked);`, `(prop("Done")) or (prop("Blocked"))`},
		{"literals", `return .5 ** 2 == TRUE;`, `0.5^2==true`},
		{"value accessor", `return this.owner._valueAccessor('Name');`, `prop("Owner").prop("Name")`},
		{"callback", `return this.tags.map((index, tag) => this.length(tag)).length();`, `prop("Tags").map(length(current)).length()`},
		{"callback ternary", `return this.tags.filter((index, current) => (current == 'a' ? true : false));`, `prop("Tags").filter(if(current=="a"){true}else{false})`},
		{"builtin call", `return this.round(this.estimate / 3);`, `round(prop("Estimate")/3)`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Lower(tt.body, taskEnv(t))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLowerSplicesHelpers(t *testing.T) {
	env := taskEnv(t)
	env.Helpers = map[string]string{
		"isDone": `prop("Status")=="Done"`,
		"weight": `prop("Estimate")+1`,
		"pick":   `if(prop("Done")){1}else{0}`,
	}
	tests := []struct{ body, want string }{
		{`if (this.isDone()) return 0; return 1;`, `if(prop("Status")=="Done"){0}else{1}`},
		{`return this.weight();`, `prop("Estimate")+1`},
		{`return 2 * this.weight();`, `2*(prop("Estimate")+1)`},
		{`return this.round(this.weight());`, `round(prop("Estimate")+1)`},
		{`return 1 + this.pick();`, `1+if(prop("Done")){1}else{0}`},
	}
	for _, tt := range tests {
		got, err := Lower(tt.body, env)
		require.NoError(t, err, tt.body)
		assert.Equal(t, tt.want, got, tt.body)
	}

	_, err := Lower(`return this.weight(1);`, env)
	assert.True(t, errors.Is(err, diag.ErrMalformedBlock))
}

func TestLowerWarnsOnUnknownMember(t *testing.T) {
	var buf bytes.Buffer
	env := taskEnv(t)
	env.Logger = diag.NewLogger(&buf, "warn")

	got, err := Lower(`return this.estimat + 1;`, env)
	require.NoError(t, err)
	assert.Equal(t, `estimat+1`, got)
	assert.Contains(t, buf.String(), "unknown member")
	assert.Contains(t, buf.String(), "suggestion=estimate")
	t.Logf("✓ %s", buf.String())
}

func TestLowerWithoutProperties(t *testing.T) {
	got, err := Lower(`return this.round(2.5) ? true : false;`, Env{})
	require.NoError(t, err)
	assert.Equal(t, `if(round(2.5)){true}else{false}`, got)
}

func TestLowerRejectsBadInput(t *testing.T) {
	_, err := Lower(`return 'open;`, taskEnv(t))
	assert.True(t, errors.Is(err, diag.ErrMalformedBlock))
}

func TestRaise(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want string
	}{
		{"wrapper", `round(if(prop("Done"),1,0))`, `this.round(if(this.done,1,0))`},
		{"number arithmetic", `prop("Estimate") * 2 > 3`, `this.estimate.value * 2 > 3`},
		{"number comparison", `prop("Estimate") > 3`, `this.estimate > 3`},
		{"words and constants", `not prop("Done") and pi > e`, `!this.done && this.pi > this.e`},
		{"spaced if", `if (prop("Done"), 1, 0)`, `if(this.done, 1, 0)`},
		{"strings", `prop("Status") == "Done"`, `this.status == 'Done'`},
		{"power", `2 ^ 3`, `2 ** 3`},
		{"value accessor", `prop("Owner").prop("Name")`, `this.owner._valueAccessor('Name')`},
		{"builtin property", `formatDate(prop("Created Time"), "YYYY")`, `this.formatDate(this.createdTime, 'YYYY')`},
		{"function callback", `map(prop("Tags"), format(current))`, `this.tags.map((index, current) => this.format(current))`},
		{"method callback", `prop("Tags").filter(if(current == "a", true, false))`, `this.tags.filter((index, current) => (current == 'a' ? true : false))`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Raise(tt.expr, taskProps, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Text)
			assert.Equal(t, taskProps, got.Properties)
		})
	}
}

func TestRaiseDeclaresUnknownProperties(t *testing.T) {
	var buf bytes.Buffer
	props := []model.Descriptor{{Identifier: "mystery", DisplayName: "Other", Kind: model.Text}}

	got, err := Raise(`prop("Mystery") + prop("Mystery")`, props, diag.NewLogger(&buf, "warn"))
	require.NoError(t, err)
	assert.Equal(t, `this.mystery2 + this.mystery2`, got.Text)
	assert.Equal(t, []model.Descriptor{
		props[0],
		{Identifier: "mystery2", DisplayName: "Mystery", Kind: model.Formula},
	}, got.Properties)
	assert.Contains(t, buf.String(), "undescribed property")
}
