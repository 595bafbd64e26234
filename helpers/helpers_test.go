package helpers

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinodhalaharvi/formulac/diag"
)

// splice is a LowerFunc that only replaces helper calls.
func splice(body string, lowered map[string]string) (string, error) {
	for name, l := range lowered {
		body = strings.ReplaceAll(body, "this."+name+"()", "("+l+")")
	}
	return body, nil
}

func TestInlineOrdersCalleesFirst(t *testing.T) {
	var order []string
	lower := func(body string, lowered map[string]string) (string, error) {
		order = append(order, body)
		return splice(body, lowered)
	}
	got, err := Inline([]Func{
		{Name: "score", Body: "this.weight()*this.base()"},
		{Name: "weight", Body: "this.base()+1"},
		{Name: "base", Body: "this.round(2)"},
	}, lower, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"this.round(2)", "this.base()+1", "this.weight()*this.base()"}, order)
	assert.Equal(t, "((this.round(2))+1)*(this.round(2))", got["score"])
	assert.Len(t, got, 3)
}

func TestInlineDetectsCycles(t *testing.T) {
	tests := []struct {
		name  string
		funcs []Func
		path  string
	}{
		{"mutual", []Func{{"f", "return this.g() + 1;"}, {"g", "return this.f() + 1;"}}, "f -> g -> f"},
		{"self", []Func{{"f", "return this.f();"}}, "f -> f"},
		{"tail", []Func{{"a", "this.b()"}, {"b", "this.c()"}, {"c", "this.b()"}}, "b -> c -> b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Inline(tt.funcs, splice, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, diag.ErrUnresolvableReference))
			assert.Contains(t, err.Error(), tt.path)
			t.Logf("✓ %v", err)
		})
	}
}

func TestInlineRejectsDuplicates(t *testing.T) {
	_, err := Inline([]Func{{"f", "1"}, {"f", "2"}}, splice, nil)
	assert.ErrorContains(t, err, "declared twice")
}

func TestExtractMergesDuplicates(t *testing.T) {
	leaf := "if (this.done) { return 1; } else { return 0; }"
	root, got, err := Extract("return this.func3();", []Helper{
		{Name: "func1", Body: leaf},
		{Name: "func2", Body: leaf},
		{Name: "func3", Body: "if (this.func1() + this.func2()) { return 1; } else { return 2; }"},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "return this.func2();", root)
	assert.Equal(t, []Helper{
		{Name: "func2", Body: "if (this.func1() + this.func1()) { return 1; } else { return 2; }"},
		{Name: "func1", Body: leaf},
	}, got)
}

func TestExtractRenumbersCalleesLow(t *testing.T) {
	root, got, err := Extract("return this.func1() + this.func2();", []Helper{
		{Name: "func1", Body: "return this.func2() * 2;"},
		{Name: "func2", Body: "return 1;"},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "return this.func2() + this.func1();", root)
	assert.Equal(t, []Helper{
		{Name: "func2", Body: "return this.func1() * 2;"},
		{Name: "func1", Body: "return 1;"},
	}, got)
}

func TestExtractDetectsCycles(t *testing.T) {
	_, _, err := Extract("return this.func1();", []Helper{
		{Name: "func1", Body: "return this.func2();"},
		{Name: "func2", Body: "return this.func1();"},
	}, nil)
	assert.True(t, errors.Is(err, diag.ErrUnresolvableReference))
	assert.EqualError(t, err, "cycle found in function references: func1 -> func2 -> func1")
}

func TestExtractLeavesOtherCalls(t *testing.T) {
	root, got, err := Extract("return this.round(this.func1()) + this.func10;", []Helper{
		{Name: "func1", Body: "return 'this.func1()';"},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "return this.round(this.func1()) + this.func10;", root)
	assert.Equal(t, "return 'this.func1()';", got[0].Body)
}
