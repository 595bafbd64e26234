package node

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinodhalaharvi/formulac/diag"
)

func mustLogic(t *testing.T, c, a, b Node, prefix, suffix string) *Logic {
	t.Helper()
	n, err := NewLogic(c, a, b, prefix, suffix)
	require.NoError(t, err)
	return n
}

func TestConstructorsEnforceInvariants(t *testing.T) {
	leaf := NewReturn("1")

	_, err := NewLogic(leaf, nil, leaf, "", "")
	assert.True(t, errors.Is(err, diag.ErrMalformedBlock))

	_, err = NewWrapper([]string{"round("}, nil, "")
	assert.True(t, errors.Is(err, diag.ErrMalformedBlock))

	_, err = NewCombination([]Node{leaf, NewReturn("+")})
	assert.True(t, errors.Is(err, diag.ErrMalformedBlock))

	logic := mustLogic(t, leaf, leaf, leaf, "", "")
	_, err = NewCombination([]Node{leaf, logic, leaf})
	assert.ErrorContains(t, err, "operator 1 is a logic node")

	comb, err := NewCombination([]Node{leaf, NewReturn("+"), logic})
	require.NoError(t, err)
	assert.Len(t, comb.Children(), 3)
}

func TestWrapperCopiesInputs(t *testing.T) {
	chunks := []string{"round("}
	args := []Node{NewReturn("1")}
	w, err := NewWrapper(chunks, args, "")
	require.NoError(t, err)

	chunks[0] = "abs("
	args[0] = NewReturn("2")
	assert.Equal(t, "round(", w.Chunks[0])
	assert.Equal(t, "1", w.Args[0].(*Return).Text)
}

func TestWalkAndCount(t *testing.T) {
	inner := mustLogic(t, NewReturn("a"), NewReturn("1"), NewReturn("0"), "", "")
	w, err := NewWrapper([]string{"round("}, []Node{inner}, "")
	require.NoError(t, err)

	var kinds []Kind
	var depths []int
	Walk(w, func(n Node, depth int) bool {
		kinds = append(kinds, n.Kind())
		depths = append(depths, depth)
		return true
	})
	assert.Equal(t, []Kind{KindWrapper, KindLogic, KindReturn, KindReturn, KindReturn}, kinds)
	assert.Equal(t, []int{0, 1, 2, 2, 2}, depths)
	assert.Equal(t, map[Kind]int{KindWrapper: 1, KindLogic: 1, KindReturn: 3}, Count(w))
}

func TestEqual(t *testing.T) {
	a := mustLogic(t, NewReturn("x"), NewReturn("1"), NewReturn("0"), "3+", "")
	b := mustLogic(t, NewReturn("x"), NewReturn("1"), NewReturn("0"), "3+", "")
	c := mustLogic(t, NewReturn("x"), NewReturn("1"), NewReturn("0"), "", "")
	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, c))
	assert.False(t, Equal(a, NewReturn("x")))
}

func TestMarshalJSON(t *testing.T) {
	n := mustLogic(t, NewReturn(`prop("Done")`), NewReturn("1"), NewReturn("0"), "", "")
	out, err := json.Marshal(n)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"kind": "logic",
		"condition": {"kind": "return", "text": "prop(\"Done\")"},
		"then": {"kind": "return", "text": "1"},
		"else": {"kind": "return", "text": "0"}
	}`, string(out))
	t.Logf("✓ %s", out)
}
