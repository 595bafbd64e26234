// Package helpers resolves named helper functions in both directions:
// Inline lowers the helpers a DSL class declares so their bodies can be
// spliced into the formula, and Extract deduplicates and renumbers the
// helpers the reverse renderer pulls out of a flat expression.
//
// Both sides build an explicit call graph first, so a cycle is reported
// with its path before any body is touched.
package helpers

import (
	"strings"

	"github.com/vinodhalaharvi/formulac/diag"
	"github.com/vinodhalaharvi/formulac/grammar"
)

// graph is a call graph over helper names. Edges point from caller to
// callee.
type graph struct {
	names []string
	edges map[string][]string
}

func newGraph() *graph {
	return &graph{edges: make(map[string][]string)}
}

func (g *graph) add(name string, callees []string) {
	if _, ok := g.edges[name]; !ok {
		g.names = append(g.names, name)
	}
	g.edges[name] = callees
}

// order returns every name with callees before their callers. Names are
// visited in insertion order. A cycle is an unresolvable-reference error
// naming the path, as in "f -> g -> f".
func (g *graph) order() ([]string, error) {
	const (
		unvisited = iota
		active
		finished
	)
	state := make(map[string]int, len(g.names))
	var (
		out  []string
		path []string
	)
	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case finished:
			return nil
		case active:
			start := 0
			for i, p := range path {
				if p == name {
					start = i
					break
				}
			}
			cycle := append(append([]string(nil), path[start:]...), name)
			return diag.Unresolvable(strings.Join(cycle, " -> "))
		}
		state[name] = active
		path = append(path, name)
		for _, callee := range g.edges[name] {
			if _, known := g.edges[callee]; !known {
				continue
			}
			if err := visit(callee); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		state[name] = finished
		out = append(out, name)
		return nil
	}
	for _, name := range g.names {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// calls returns the distinct this.name( calls in src whose name satisfies
// known, in order of first appearance.
func calls(src string, known func(string) bool) ([]string, error) {
	toks, err := grammar.Tokenize(src)
	if err != nil {
		return nil, err
	}
	var out []string
	seen := make(map[string]bool)
	forEachCall(toks, func(i int) {
		name := toks[i].Text
		if known(name) && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	})
	return out, nil
}

// forEachCall calls fn with the index of the name token of every
// this.name( call.
func forEachCall(toks []grammar.Token, fn func(i int)) {
	for i, t := range toks {
		if !t.Is(grammar.Ident, "this") {
			continue
		}
		dot := grammar.NextSignificant(toks, i+1)
		if dot >= len(toks) || !toks[dot].Is(grammar.Punct, ".") {
			continue
		}
		name := grammar.NextSignificant(toks, dot+1)
		if name >= len(toks) || toks[name].Kind != grammar.Ident {
			continue
		}
		open := grammar.NextSignificant(toks, name+1)
		if open < len(toks) && toks[open].Is(grammar.Punct, "(") {
			fn(name)
		}
	}
}

// renameCalls rewrites this.name( calls according to names. All renames
// apply at once, so swapping two names is safe.
func renameCalls(src string, names map[string]string) (string, error) {
	toks, err := grammar.Tokenize(src)
	if err != nil {
		return "", err
	}
	forEachCall(toks, func(i int) {
		if to, ok := names[toks[i].Text]; ok {
			toks[i].Text = to
		}
	})
	return grammar.Join(toks), nil
}
