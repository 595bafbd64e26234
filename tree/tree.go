// Package tree classifies formula text into node trees. Build reads the
// compact brace grammar produced by prepass.Lower; BuildReverse reads the
// comma grammar of flat expressions. Both apply the same priority:
//
//	combination  an operator split where an operand holds a conditional
//	wrapper      a parenthesised group, or calls around a conditional
//	logic        an if with optional prefix and suffix text
//	return       anything else
package tree

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/vinodhalaharvi/formulac/diag"
	"github.com/vinodhalaharvi/formulac/lexical"
	"github.com/vinodhalaharvi/formulac/node"
	"github.com/vinodhalaharvi/formulac/scan"
)

// Option configures a builder.
type Option func(*builder)

// WithLogger traces every classification at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(b *builder) { b.log = diag.OrDiscard(l) }
}

// dialect is the part of classification that depends on the grammar.
type dialect struct {
	name        string
	conditional func(s string, at int) (lexical.Conditional, error)
	nested      func(s string) bool
	strict      bool // braces outside a conditional are malformed
}

var (
	braces = dialect{name: "brace", conditional: lexical.IfBraces, nested: lexical.HasBracedConditional, strict: true}
	commas = dialect{name: "comma", conditional: lexical.IfCommas, nested: lexical.HasConditional}
)

type builder struct {
	dialect
	log *slog.Logger
}

// Build classifies brace-grammar text such as 1+if(a){2}else{3}.
func Build(text string, opts ...Option) (node.Node, error) {
	return run(braces, text, opts)
}

// BuildReverse classifies comma-grammar text such as 1+if(a,2,3).
func BuildReverse(text string, opts ...Option) (node.Node, error) {
	return run(commas, text, opts)
}

func run(d dialect, text string, opts []Option) (node.Node, error) {
	b := &builder{dialect: d, log: diag.Discard()}
	for _, o := range opts {
		o(b)
	}
	if err := scan.Balanced(text); err != nil {
		return nil, err
	}
	return b.build(text)
}

func (b *builder) trace(kind node.Kind, block string) {
	b.log.Debug("classified", "grammar", b.name, "kind", kind, "block", block)
}

func (b *builder) build(block string) (node.Node, error) {
	block = strings.TrimSpace(block)
	if block == "" {
		return nil, diag.Malformed(block, "empty block")
	}
	parts, err := lexical.Split(block)
	if err != nil {
		return nil, err
	}
	if !lexical.HasConditional(block) {
		return b.leaf(block)
	}
	for _, p := range parts {
		if b.nested(p) {
			return b.combination(parts)
		}
	}

	if lexical.IsWrapped(block) {
		inner, err := b.build(block[1 : len(block)-1])
		if err != nil {
			return nil, err
		}
		b.trace(node.KindWrapper, block)
		return node.NewWrapper([]string{"("}, []node.Node{inner}, "")
	}

	at := lexical.FindConditional(block)
	if at < 0 && lexical.StartsWithCall(block) {
		return b.wrapper(block)
	}
	if at >= 0 {
		return b.logic(block, at)
	}
	return b.leaf(block)
}

func (b *builder) leaf(block string) (node.Node, error) {
	if b.strict && lexical.HasBraces(block) {
		return nil, diag.Malformed(block, "braces outside a conditional")
	}
	b.trace(node.KindReturn, block)
	return node.NewReturn(block), nil
}

func (b *builder) combination(parts []string) (node.Node, error) {
	nodes := make([]node.Node, len(parts))
	for i, p := range parts {
		if i%2 == 1 {
			nodes[i] = node.NewReturn(p)
			continue
		}
		n, err := b.build(p)
		if err != nil {
			return nil, err
		}
		nodes[i] = n
	}
	b.trace(node.KindCombination, strings.Join(parts, ""))
	return node.NewCombination(nodes)
}

// wrapper peels the calls of block whose arguments hold a conditional.
func (b *builder) wrapper(block string) (node.Node, error) {
	p := lexical.PeelCalls(block, lexical.HasConditional)
	if len(p.Chunks) == 0 {
		return b.leaf(block)
	}
	if lexical.HasConditional(p.Tail) {
		return nil, diag.Malformed(block, "conditional outside a call argument")
	}
	args := make([]node.Node, len(p.Args))
	for i, a := range p.Args {
		n, err := b.arguments(a)
		if err != nil {
			return nil, err
		}
		args[i] = n
	}
	b.trace(node.KindWrapper, block)
	return node.NewWrapper(p.Chunks, args, p.Tail)
}

// arguments builds a call's argument list. Several arguments become a
// combination joined by "," leaves.
func (b *builder) arguments(list string) (node.Node, error) {
	args := lexical.SplitArgs(list)
	if len(args) < 2 {
		return b.build(list)
	}
	parts := make([]node.Node, 0, 2*len(args)-1)
	for i, a := range args {
		if a == "" {
			return nil, diag.Malformed(list, fmt.Sprintf("argument %d is empty", i+1))
		}
		n, err := b.build(a)
		if err != nil {
			return nil, err
		}
		if i > 0 {
			parts = append(parts, node.NewReturn(","))
		}
		parts = append(parts, n)
	}
	return node.NewCombination(parts)
}

func (b *builder) logic(block string, at int) (node.Node, error) {
	prefix := block[:at]
	if lexical.HasBraces(prefix) {
		return nil, diag.Malformed(block, "braces before a conditional")
	}
	c, err := b.conditional(block, at)
	if err != nil {
		return nil, err
	}
	suffix := block[c.End:]
	if lexical.HasConditional(suffix) {
		return nil, diag.Malformed(block, "conditional after a conditional")
	}
	if b.strict && lexical.HasBraces(suffix) {
		return nil, diag.Malformed(suffix, "residual brace")
	}
	if strings.TrimSpace(c.Cond) == "" {
		return nil, diag.Malformed(block[at:c.End], "empty condition")
	}

	cond, err := b.build(c.Cond)
	if err != nil {
		return nil, err
	}
	then, err := b.build(c.Then)
	if err != nil {
		return nil, err
	}
	els, err := b.build(c.Else)
	if err != nil {
		return nil, err
	}
	b.trace(node.KindLogic, block)
	return node.NewLogic(cond, then, els, prefix, suffix)
}
