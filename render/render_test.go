package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinodhalaharvi/formulac/helpers"
	"github.com/vinodhalaharvi/formulac/node"
)

func ret(text string) node.Node { return node.NewReturn(text) }

func logic(t *testing.T, c, a, b node.Node) *node.Logic {
	t.Helper()
	n, err := node.NewLogic(c, a, b, "", "")
	require.NoError(t, err)
	return n
}

func wrap(t *testing.T, chunk string, arg node.Node) *node.Wrapper {
	t.Helper()
	n, err := node.NewWrapper([]string{chunk}, []node.Node{arg}, "")
	require.NoError(t, err)
	return n
}

func comb(t *testing.T, parts ...node.Node) *node.Combination {
	t.Helper()
	n, err := node.NewCombination(parts)
	require.NoError(t, err)
	return n
}

func TestFlatAndBraced(t *testing.T) {
	prefixed, err := node.NewLogic(ret("a"), ret("1"), ret("2"), "not ", ".length()")
	require.NoError(t, err)

	tests := []struct {
		name   string
		tree   node.Node
		flat   string
		braced string
	}{
		{"leaf", ret(`prop("Estimate")`), `prop("Estimate")`, `prop("Estimate")`},
		{"logic", logic(t, ret("a"), ret("1"), ret("2")), "if(a,1,2)", "if(a){1}else{2}"},
		{"affixes", prefixed, "not if(a,1,2).length()", "not if(a){1}else{2}.length()"},
		{
			"wrapper",
			wrap(t, "round(", logic(t, ret("a"), ret("1"), ret("2"))),
			"round(if(a,1,2))",
			"round(if(a){1}else{2})",
		},
		{
			"combination",
			comb(t, ret("1"), ret("+"), logic(t, ret("a"), ret("1"), ret("2")), ret("*"), ret("2")),
			"1+if(a,1,2)*2",
			"1+if(a){1}else{2}*2",
		},
		{
			"nested",
			logic(t, ret("a"), ret("1"), logic(t, ret("b"), ret("2"), ret("3"))),
			"if(a,1,if(b,2,3))",
			"if(a){1}else{if(b){2}else{3}}",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.flat, Flat(tt.tree))
			assert.Equal(t, tt.braced, Braced(tt.tree))
		})
	}
}

func TestDSL(t *testing.T) {
	done := logic(t, ret("this.done"), ret("1"), ret("0"))
	doneBody := "if (this.done) { return 1; } else { return 0; }"

	tests := []struct {
		name    string
		tree    func(t *testing.T) node.Node
		want    string
		helpers []helpers.Helper
	}{
		{
			name: "statement",
			tree: func(*testing.T) node.Node { return done },
			want: doneBody,
		},
		{
			name: "else if",
			tree: func(t *testing.T) node.Node {
				return logic(t, ret("this.a"), ret("1"), logic(t, ret("this.b"), ret("2"), ret("3")))
			},
			want: "if (this.a) { return 1; } else if (this.b) { return 2; } else { return 3; }",
		},
		{
			name:    "wrapper",
			tree:    func(t *testing.T) node.Node { return wrap(t, "this.round(", done) },
			want:    "return this.round(this.func1());",
			helpers: []helpers.Helper{{Name: "func1", Body: doneBody}},
		},
		{
			name: "combination",
			tree: func(t *testing.T) node.Node {
				neg := logic(t, ret("this.x"), ret("-1"), ret("-2"))
				return comb(t, ret("1"), ret("+"), done, ret("-"), neg, ret("+"), ret("1"), ret(">="), ret("0"))
			},
			want: "return 1 + this.func1() - this.func2() + 1 >= 0;",
			helpers: []helpers.Helper{
				{Name: "func1", Body: doneBody},
				{Name: "func2", Body: "if (this.x) { return -1; } else { return -2; }"},
			},
		},
		{
			name: "conditional condition",
			tree: func(t *testing.T) node.Node {
				return logic(t, done, ret("1"), ret("0"))
			},
			want:    "if (this.func1()) { return 1; } else { return 0; }",
			helpers: []helpers.Helper{{Name: "func1", Body: doneBody}},
		},
		{
			name: "arguments",
			tree: func(t *testing.T) node.Node {
				return wrap(t, "this.max(", comb(t, done, ret(","), ret("3")))
			},
			want:    "return this.max(this.func1(), 3);",
			helpers: []helpers.Helper{{Name: "func1", Body: doneBody}},
		},
		{
			name: "nested wrapper",
			tree: func(t *testing.T) node.Node {
				inner := wrap(t, "this.format(", logic(t, ret("this.d"), ret("1"), ret("2")))
				return wrap(t, "this.round(", logic(t, ret("this.c"), inner, ret("0")))
			},
			want: "return this.round(this.func2());",
			helpers: []helpers.Helper{
				{Name: "func1", Body: "if (this.d) { return 1; } else { return 2; }"},
				{Name: "func2", Body: "if (this.c) { return this.format(this.func1()); } else { return 0; }"},
			},
		},
		{
			name: "callback",
			tree: func(*testing.T) node.Node {
				return ret("this.myProperty.map((index, current) => this.format(current))")
			},
			want: "return this.myProperty.map((index, current) => this.format(current));",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := &Registry{}
			assert.Equal(t, tt.want, DSL(tt.tree(t), reg))
			if len(tt.helpers) == 0 {
				assert.Empty(t, reg.Helpers())
				return
			}
			assert.Equal(t, tt.helpers, reg.Helpers())
		})
	}
}

func TestDSLKeepsAffixesOnCalls(t *testing.T) {
	n, err := node.NewLogic(ret("this.a"), ret("1"), ret("2"), "!", "")
	require.NoError(t, err)
	reg := &Registry{}
	assert.Equal(t, "return !this.func1();", DSL(n, reg))
	assert.Equal(t, "if (this.a) { return 1; } else { return 2; }", reg.Helpers()[0].Body)
}
