// Package node defines the control-flow tree shared by both compile
// directions.
//
// There are four node types:
//   - Logic: a conditional with condition, then and else children, plus the
//     text that surrounds it at its position (prefix/suffix)
//   - Return: a leaf of literal expression text
//   - Wrapper: calls whose arguments contain conditionals; each chunk is the
//     text up to and including one call's open paren
//   - Combination: operands separated by operator leaves
//
// Nodes are built through the New* constructors, which enforce the
// invariants, and are never modified afterwards.
package node

import (
	"fmt"

	"github.com/vinodhalaharvi/formulac/diag"
)

// Kind discriminates node types.
type Kind int

const (
	KindLogic Kind = iota
	KindReturn
	KindWrapper
	KindCombination
)

func (k Kind) String() string {
	switch k {
	case KindLogic:
		return "logic"
	case KindReturn:
		return "return"
	case KindWrapper:
		return "wrapper"
	case KindCombination:
		return "combination"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Node is one of *Logic, *Return, *Wrapper or *Combination.
type Node interface {
	Kind() Kind
	Children() []Node
	sealed()
}

// ---------------------------------------------------------------------------
// Variants
// ---------------------------------------------------------------------------

// Logic is a conditional. Prefix and Suffix hold the text that surrounds the
// conditional where it appears, such as the "3+" of 3+if(...).
type Logic struct {
	Condition Node
	Then      Node
	Else      Node
	Prefix    string
	Suffix    string
}

// Return is a leaf of already-substituted expression text.
type Return struct {
	Text string
}

// Wrapper is a run of calls around conditional arguments. Rendering emits
// Chunks[i], then Args[i], then a closing paren, for every i, then Tail.
type Wrapper struct {
	Chunks []string
	Args   []Node
	Tail   string
}

// Combination alternates operands and operator leaves: Parts[0] operand,
// Parts[1] operator, Parts[2] operand, and so on.
type Combination struct {
	Parts []Node
}

func (*Logic) Kind() Kind       { return KindLogic }
func (*Return) Kind() Kind      { return KindReturn }
func (*Wrapper) Kind() Kind     { return KindWrapper }
func (*Combination) Kind() Kind { return KindCombination }

func (n *Logic) Children() []Node       { return []Node{n.Condition, n.Then, n.Else} }
func (*Return) Children() []Node        { return nil }
func (n *Wrapper) Children() []Node     { return append([]Node(nil), n.Args...) }
func (n *Combination) Children() []Node { return append([]Node(nil), n.Parts...) }

func (*Logic) sealed()       {}
func (*Return) sealed()      {}
func (*Wrapper) sealed()     {}
func (*Combination) sealed() {}

// ---------------------------------------------------------------------------
// Constructors
// ---------------------------------------------------------------------------

// NewLogic builds a conditional. All three children are required.
func NewLogic(cond, then, els Node, prefix, suffix string) (*Logic, error) {
	if cond == nil || then == nil || els == nil {
		return nil, diag.Malformed(prefix+"if(...)"+suffix, "conditional needs a condition and two branches")
	}
	return &Logic{Condition: cond, Then: then, Else: els, Prefix: prefix, Suffix: suffix}, nil
}

// NewReturn builds a leaf.
func NewReturn(text string) *Return {
	return &Return{Text: text}
}

// NewWrapper builds a call wrapper. There must be one argument per chunk.
func NewWrapper(chunks []string, args []Node, tail string) (*Wrapper, error) {
	if len(chunks) == 0 || len(chunks) != len(args) {
		return nil, diag.Malformed(fmt.Sprint(chunks), fmt.Sprintf("wrapper has %d chunks and %d arguments", len(chunks), len(args)))
	}
	for i, a := range args {
		if a == nil {
			return nil, diag.Malformed(chunks[i], "wrapper argument is missing")
		}
	}
	return &Wrapper{
		Chunks: append([]string(nil), chunks...),
		Args:   append([]Node(nil), args...),
		Tail:   tail,
	}, nil
}

// NewCombination builds an operator chain. parts must have odd length of at
// least three, with Return leaves at every odd index.
func NewCombination(parts []Node) (*Combination, error) {
	if len(parts) < 3 || len(parts)%2 == 0 {
		return nil, diag.Malformed("", fmt.Sprintf("combination needs an odd number of parts, got %d", len(parts)))
	}
	for i, p := range parts {
		if p == nil {
			return nil, diag.Malformed("", fmt.Sprintf("combination part %d is missing", i))
		}
		if i%2 == 1 {
			if _, ok := p.(*Return); !ok {
				return nil, diag.Malformed("", fmt.Sprintf("combination operator %d is a %s node", i, p.Kind()))
			}
		}
	}
	return &Combination{Parts: append([]Node(nil), parts...)}, nil
}

// ---------------------------------------------------------------------------
// Traversal
// ---------------------------------------------------------------------------

// Walk visits n and its descendants depth first. Returning false from fn
// skips the children of the visited node.
func Walk(n Node, fn func(n Node, depth int) bool) {
	walk(n, 0, fn)
}

func walk(n Node, depth int, fn func(Node, int) bool) {
	if n == nil || !fn(n, depth) {
		return
	}
	for _, c := range n.Children() {
		walk(c, depth+1, fn)
	}
}

// Equal reports whether two trees have the same shape and text.
func Equal(a, b Node) bool {
	switch x := a.(type) {
	case *Return:
		y, ok := b.(*Return)
		return ok && x.Text == y.Text
	case *Logic:
		y, ok := b.(*Logic)
		return ok && x.Prefix == y.Prefix && x.Suffix == y.Suffix &&
			Equal(x.Condition, y.Condition) && Equal(x.Then, y.Then) && Equal(x.Else, y.Else)
	case *Wrapper:
		y, ok := b.(*Wrapper)
		if !ok || x.Tail != y.Tail || len(x.Chunks) != len(y.Chunks) {
			return false
		}
		for i := range x.Chunks {
			if x.Chunks[i] != y.Chunks[i] || !Equal(x.Args[i], y.Args[i]) {
				return false
			}
		}
		return true
	case *Combination:
		y, ok := b.(*Combination)
		if !ok || len(x.Parts) != len(y.Parts) {
			return false
		}
		for i := range x.Parts {
			if !Equal(x.Parts[i], y.Parts[i]) {
				return false
			}
		}
		return true
	}
	return a == nil && b == nil
}

// Count returns the number of nodes of each kind in the tree.
func Count(n Node) map[Kind]int {
	counts := make(map[Kind]int)
	Walk(n, func(n Node, _ int) bool {
		counts[n.Kind()]++
		return true
	})
	return counts
}
