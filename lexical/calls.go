package lexical

import (
	"github.com/vinodhalaharvi/formulac/scan"
)

// Peeled is a call chain split around the arguments that need their own
// subtree.
type Peeled struct {
	Chunks []string // text up to and including each kept call's "("
	Args   []string // argument text of each kept call
	Tail   string   // text after the last kept call
}

// PeelCalls splits a call chain such as prop("a").contains(if(...)) at its
// depth-one argument lists. Only arguments for which keep returns true
// become separate entries; the other calls stay as literal text folded into
// the next chunk or the tail.
func PeelCalls(block string, keep func(arg string) bool) Peeled {
	var (
		p       Peeled
		bottom  int
		chunk   string
		pending string
	)
	s := scan.New(block)
	for s.Next() {
		if s.InQuote() {
			continue
		}
		switch s.Current() {
		case '(':
			if s.Depth() == 1 {
				chunk = block[bottom : s.Pos()+1]
				bottom = s.Pos() + 1
			}
		case ')':
			if s.Depth() == 0 {
				arg := block[bottom:s.Pos()]
				bottom = s.Pos() + 1
				if keep(arg) {
					p.Chunks = append(p.Chunks, pending+chunk)
					p.Args = append(p.Args, arg)
					pending = ""
				} else {
					pending += chunk + arg + ")"
				}
			}
		}
	}
	p.Tail = pending + block[bottom:]
	return p
}

// StartsWithCall reports whether block begins with a possibly dotted name
// (round, this.round) directly followed by "(", other than the if keyword.
func StartsWithCall(block string) bool {
	i := 0
	for i < len(block) && (isIdentByte(block[i]) || (i > 0 && block[i] == '.')) {
		i++
	}
	if i == 0 || i >= len(block) || block[i] != '(' || isDigit(block[0]) {
		return false
	}
	return block[:i] != "if"
}
