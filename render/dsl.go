package render

import (
	"strings"

	"github.com/vinodhalaharvi/formulac/helpers"
	"github.com/vinodhalaharvi/formulac/node"
)

// Registry collects the helpers DSL extracts, in the order they are
// finished: a helper is registered after every helper it calls.
type Registry struct {
	helpers []helpers.Helper
}

// Register adds a helper body and returns its placeholder name.
func (r *Registry) Register(body string) string {
	name := helpers.Name(len(r.helpers) + 1)
	r.helpers = append(r.helpers, helpers.Helper{Name: name, Body: body})
	return name
}

// Helpers returns the registered helpers.
func (r *Registry) Helpers() []helpers.Helper {
	return append([]helpers.Helper(nil), r.helpers...)
}

// DSL renders n as the statements of a method body. A conditional in
// statement position becomes an if statement; a conditional anywhere inside
// an expression is registered in reg and replaced by a this.funcN() call.
//
//	if (this.done) { return 1; } else { return 0; }
//	return this.round(this.func1());
func DSL(n node.Node, reg *Registry) string {
	if reg == nil {
		reg = &Registry{}
	}
	d := dsl{reg: reg}
	return d.statement(n)
}

type dsl struct {
	reg *Registry
}

func (d dsl) statement(n node.Node) string {
	l, ok := n.(*node.Logic)
	if !ok || l.Prefix != "" || l.Suffix != "" {
		return "return " + d.expr(n) + ";"
	}
	var b strings.Builder
	b.WriteString("if (")
	b.WriteString(d.expr(l.Condition))
	b.WriteString(") { ")
	b.WriteString(d.statement(l.Then))
	b.WriteString(" } else ")
	if e, ok := l.Else.(*node.Logic); ok && e.Prefix == "" && e.Suffix == "" {
		b.WriteString(d.statement(e))
		return b.String()
	}
	b.WriteString("{ ")
	b.WriteString(d.statement(l.Else))
	b.WriteString(" }")
	return b.String()
}

func (d dsl) expr(n node.Node) string {
	switch n := n.(type) {
	case *node.Return:
		return n.Text
	case *node.Logic:
		bare, _ := node.NewLogic(n.Condition, n.Then, n.Else, "", "")
		name := d.reg.Register(d.statement(bare))
		return n.Prefix + "this." + name + "()" + n.Suffix
	case *node.Wrapper:
		var b strings.Builder
		for i, chunk := range n.Chunks {
			b.WriteString(chunk)
			b.WriteString(d.expr(n.Args[i]))
			b.WriteByte(')')
		}
		b.WriteString(n.Tail)
		return b.String()
	case *node.Combination:
		var b strings.Builder
		for i, p := range n.Parts {
			if i%2 == 0 {
				b.WriteString(d.expr(p))
				continue
			}
			op := strings.TrimSpace(p.(*node.Return).Text)
			if op == "," {
				b.WriteString(", ")
			} else {
				b.WriteString(" " + op + " ")
			}
		}
		return b.String()
	}
	return ""
}
