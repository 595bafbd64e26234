package prepass

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/vinodhalaharvi/formulac/diag"
	"github.com/vinodhalaharvi/formulac/grammar"
	"github.com/vinodhalaharvi/formulac/lexical"
	"github.com/vinodhalaharvi/formulac/model"
)

// Raised is a flat expression rewritten into DSL expression text together
// with the properties the class has to declare.
type Raised struct {
	Text       string
	Properties []model.Descriptor
}

// Raise rewrites a flat expression for the reverse builder:
//
//	round(if(prop("Done"),1,0))
//
// becomes
//
//	this.round(if(this.done,1,0))
//
// Display names missing from props are declared as formula properties with a
// camel-cased identifier and a warning.
func Raise(expr string, props []model.Descriptor, logger *slog.Logger) (Raised, error) {
	table, err := model.NewTable(props)
	if err != nil {
		return Raised{}, err
	}
	r := &raiser{
		table:    table,
		declared: append([]model.Descriptor(nil), props...),
		taken:    make(map[string]bool),
		extra:    make(map[string]model.Descriptor),
		log:      diag.OrDiscard(logger),
	}
	for _, id := range table.Identifiers() {
		r.taken[id] = true
	}

	all, err := grammar.Tokenize(expr)
	if err != nil {
		return Raised{}, err
	}
	toks := all[:0]
	for _, t := range all {
		if t.Kind == grammar.Comment {
			continue
		}
		if t.Kind == grammar.Space {
			t.Text = " "
		}
		toks = append(toks, t)
	}

	text, err := r.tokens(toks)
	if err != nil {
		return Raised{}, err
	}
	if text, err = raiseCallbacks(strings.TrimSpace(text)); err != nil {
		return Raised{}, fmt.Errorf("callbacks: %w", err)
	}
	return Raised{Text: text, Properties: r.declared}, nil
}

type raiser struct {
	table    *model.Table
	declared []model.Descriptor
	taken    map[string]bool
	extra    map[string]model.Descriptor
	log      *slog.Logger
}

var arithmetic = map[string]bool{"+": true, "-": true, "*": true, "/": true, "%": true}

var raisedWords = map[string]string{"and": "&&", "or": "||"}

func (r *raiser) tokens(toks []grammar.Token) (string, error) {
	var b strings.Builder
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		next := grammar.NextSignificant(toks, i+1)
		call := next < len(toks) && toks[next].Is(grammar.Punct, "(")
		prev := grammar.PrevSignificant(toks, i)
		member := prev >= 0 && toks[prev].Is(grammar.Punct, ".")

		switch {
		case t.Kind == grammar.Space:
			if prev >= 0 && toks[prev].Is(grammar.Ident, "if") && call {
				continue
			}
			b.WriteString(" ")

		case (t.Text == "prop" || t.Text == "Prop") && t.Kind == grammar.Ident && call:
			lit, closeAt, ok := propArgument(toks, next)
			if !ok {
				b.WriteString("this.prop")
				continue
			}
			display, err := grammar.Unquote(lit)
			if err != nil {
				return "", diag.Malformed(lit, err.Error())
			}
			if member {
				b.WriteString("_valueAccessor(" + grammar.SingleQuote(display) + ")")
				i = closeAt
				continue
			}
			d := r.resolve(display)
			b.WriteString("this." + d.Identifier)
			if d.Kind == model.Number && nearArithmetic(toks, prev, closeAt) {
				b.WriteString(".value")
			}
			i = closeAt

		case t.Kind == grammar.Ident && !member && raisedWords[t.Text] != "" && !call && valueEnd(toks, prev):
			b.WriteString(raisedWords[t.Text])

		case t.Is(grammar.Ident, "not") && !member && !call:
			b.WriteString("!")
			if i+1 < len(toks) && toks[i+1].Kind == grammar.Space {
				i++
			}

		case t.Kind == grammar.Ident && !member && model.IsConstant(t.Text) && !call:
			b.WriteString("this." + t.Text)

		case t.Kind == grammar.Ident && !member && call && t.Text != "if":
			b.WriteString("this." + t.Text)

		case t.Kind == grammar.String:
			s, err := grammar.Unquote(t.Text)
			if err != nil {
				return "", diag.Malformed(t.Text, err.Error())
			}
			b.WriteString(grammar.SingleQuote(s))

		case t.Is(grammar.Operator, "^"):
			b.WriteString("**")

		default:
			b.WriteString(t.Text)
		}
	}
	return b.String(), nil
}

// propArgument reads the ("Display") argument of a prop call whose "(" is
// at open.
func propArgument(toks []grammar.Token, open int) (lit string, closeAt int, ok bool) {
	arg := grammar.NextSignificant(toks, open+1)
	if arg >= len(toks) || toks[arg].Kind != grammar.String {
		return "", 0, false
	}
	closeAt = grammar.NextSignificant(toks, arg+1)
	if closeAt >= len(toks) || !toks[closeAt].Is(grammar.Punct, ")") {
		return "", 0, false
	}
	return toks[arg].Text, closeAt, true
}

func valueEnd(toks []grammar.Token, prev int) bool {
	if prev < 0 {
		return false
	}
	p := toks[prev]
	return p.IsWord() || p.Kind == grammar.String || p.Is(grammar.Punct, ")") || p.Is(grammar.Punct, "]")
}

func nearArithmetic(toks []grammar.Token, before, closeAt int) bool {
	if before >= 0 && toks[before].Kind == grammar.Operator && arithmetic[toks[before].Text] {
		return true
	}
	after := grammar.NextSignificant(toks, closeAt+1)
	return after < len(toks) && toks[after].Kind == grammar.Operator && arithmetic[toks[after].Text]
}

// resolve maps a display name to its descriptor, declaring a formula
// property for names the metadata does not describe.
func (r *raiser) resolve(display string) model.Descriptor {
	if d, ok := r.table.ByDisplayName(display); ok {
		return d
	}
	if d, ok := r.extra[display]; ok {
		return d
	}
	base := model.LowerCamel(display)
	id := base
	for n := 2; r.taken[id]; n++ {
		id = fmt.Sprintf("%s%d", base, n)
	}
	d := model.Descriptor{Identifier: id, DisplayName: display, Kind: model.Formula}
	r.taken[id] = true
	r.extra[display] = d
	r.declared = append(r.declared, d)
	r.log.Warn("undescribed property", "display", display, "identifier", id, "kind", d.Kind)
	return d
}

// ---------------------------------------------------------------------------
// Callbacks
// ---------------------------------------------------------------------------

// raiseCallbacks moves list callbacks to the method form with an explicit
// lambda: this.map(list, body) and list.map(body) both become
// list.map((index, current) => body).
func raiseCallbacks(s string) (string, error) {
	toks, err := grammar.Tokenize(s)
	if err != nil {
		return "", err
	}
	for i, t := range toks {
		if t.Kind != grammar.Ident || !model.TakesCallback(t.Text) {
			continue
		}
		open := grammar.NextSignificant(toks, i+1)
		if open >= len(toks) || !toks[open].Is(grammar.Punct, "(") {
			continue
		}
		dot := grammar.PrevSignificant(toks, i)
		if dot < 0 || !toks[dot].Is(grammar.Punct, ".") {
			continue
		}
		closeAt := grammar.MatchToken(toks, open)
		if closeAt < 0 {
			return "", diag.Malformed(s[t.Offset:], "unclosed callback call")
		}
		from, to := toks[open].Offset, toks[closeAt].Offset
		rest, err := raiseCallbacks(s[to+1:])
		if err != nil {
			return "", err
		}
		args := lexical.SplitArgs(s[from+1 : to])
		receiver := grammar.PrevSignificant(toks, dot)
		function := false
		if receiver >= 0 && toks[receiver].Is(grammar.Ident, "this") {
			p := grammar.PrevSignificant(toks, receiver)
			function = p < 0 || !toks[p].Is(grammar.Punct, ".")
		}

		switch {
		case function && len(args) == 2:
			list, err := raiseCallbacks(args[0])
			if err != nil {
				return "", err
			}
			body, err := lambda(args[1])
			if err != nil {
				return "", err
			}
			return s[:toks[receiver].Offset] + list + "." + t.Text + "(" + body + ")" + rest, nil
		case !function && len(args) == 1:
			body, err := lambda(args[0])
			if err != nil {
				return "", err
			}
			return s[:from+1] + body + ")" + rest, nil
		default:
			inner, err := raiseCallbacks(s[from+1 : to])
			if err != nil {
				return "", err
			}
			return s[:from+1] + inner + ")" + rest, nil
		}
	}
	return s, nil
}

// lambda turns a callback body into a canonical arrow function. Conditionals
// inside become ternaries so the body stays self-contained.
func lambda(body string) (string, error) {
	if lexical.IsLambda(body) {
		return lexical.CanonicalLambda(body)
	}
	raised, err := raiseCallbacks(body)
	if err != nil {
		return "", err
	}
	if raised, err = lexical.Ternary(raised); err != nil {
		return "", err
	}
	return lexical.MakeLambda(strings.TrimSpace(raised)), nil
}
