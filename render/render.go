// Package render folds node trees back into text: Flat produces the comma
// grammar, Braced the compact brace grammar and DSL the statements of a
// DSL method, pulling nested conditionals out into helpers.
package render

import (
	"strings"

	"github.com/vinodhalaharvi/formulac/node"
)

// Flat renders the flat formula grammar.
//
//	Flat(logic) // prefix + "if(" + cond + "," + then + "," + else + ")" + suffix
func Flat(n node.Node) string {
	var b strings.Builder
	flat(&b, n)
	return b.String()
}

func flat(b *strings.Builder, n node.Node) {
	switch n := n.(type) {
	case *node.Return:
		b.WriteString(n.Text)
	case *node.Logic:
		b.WriteString(n.Prefix)
		b.WriteString("if(")
		flat(b, n.Condition)
		b.WriteByte(',')
		flat(b, n.Then)
		b.WriteByte(',')
		flat(b, n.Else)
		b.WriteByte(')')
		b.WriteString(n.Suffix)
	case *node.Wrapper:
		for i, chunk := range n.Chunks {
			b.WriteString(chunk)
			flat(b, n.Args[i])
			b.WriteByte(')')
		}
		b.WriteString(n.Tail)
	case *node.Combination:
		for _, p := range n.Parts {
			flat(b, p)
		}
	}
}

// Braced renders the compact brace grammar Build reads, so that
// Build(Braced(t)) rebuilds t.
func Braced(n node.Node) string {
	var b strings.Builder
	braced(&b, n)
	return b.String()
}

func braced(b *strings.Builder, n node.Node) {
	switch n := n.(type) {
	case *node.Return:
		b.WriteString(n.Text)
	case *node.Logic:
		b.WriteString(n.Prefix)
		b.WriteString("if(")
		braced(b, n.Condition)
		b.WriteString("){")
		braced(b, n.Then)
		b.WriteString("}else{")
		braced(b, n.Else)
		b.WriteByte('}')
		b.WriteString(n.Suffix)
	case *node.Wrapper:
		for i, chunk := range n.Chunks {
			b.WriteString(chunk)
			braced(b, n.Args[i])
			b.WriteByte(')')
		}
		b.WriteString(n.Tail)
	case *node.Combination:
		for _, p := range n.Parts {
			braced(b, p)
		}
	}
}
