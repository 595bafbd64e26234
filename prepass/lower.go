// Package prepass rewrites formula text between the two grammars before a
// tree is built. Lower takes a DSL method body to the compact brace text the
// forward builder reads; Raise takes a flat expression to the DSL-flavoured
// text the reverse builder reads.
//
// Both passes work on grammar tokens, so string contents and member
// accesses are never touched by a substitution.
package prepass

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/vinodhalaharvi/formulac/diag"
	"github.com/vinodhalaharvi/formulac/grammar"
	"github.com/vinodhalaharvi/formulac/lexical"
	"github.com/vinodhalaharvi/formulac/model"
)

// Env is what a body is lowered against.
type Env struct {
	Props   *model.Table
	Helpers map[string]string // already lowered helper bodies by name
	Logger  *slog.Logger
}

// Lower turns the source of a DSL method body into compact brace text:
//
//	if (this.status === 'Done') return 0; else return 1;
//
// becomes
//
//	if(prop("Status")=="Done"){0}else{1}
func Lower(body string, env Env) (string, error) {
	log := diag.OrDiscard(env.Logger)
	props := env.Props
	if props == nil {
		var err error
		if props, err = model.NewTable(nil); err != nil {
			return "", err
		}
	}

	toks, err := significant(body)
	if err != nil {
		return "", err
	}
	toks = braceStatements(toks)
	toks = inlineBindings(toks)
	if toks, err = spliceHelpers(toks, env.Helpers); err != nil {
		return "", err
	}
	sub := substitution{props: props, helpers: env.Helpers, params: lambdaParams(toks), log: log}
	if toks, err = sub.apply(toks); err != nil {
		return "", err
	}

	text := compact(toks)
	if text, err = lexical.ReduceCallbacks(text); err != nil {
		return "", fmt.Errorf("callbacks: %w", err)
	}
	if text, err = lexical.Fallthrough(text); err != nil {
		return "", fmt.Errorf("fallthrough: %w", err)
	}
	if text, err = lexical.BraceTernaries(text); err != nil {
		return "", err
	}
	log.Debug("lowered body", "text", text)
	return text, nil
}

// significant tokenizes src and drops whitespace and comments.
func significant(src string) ([]grammar.Token, error) {
	all, err := grammar.Tokenize(src)
	if err != nil {
		return nil, err
	}
	toks := all[:0]
	for _, t := range all {
		if !t.Trivia() {
			toks = append(toks, t)
		}
	}
	return toks, nil
}

func opens(t grammar.Token) bool {
	return t.Is(grammar.Punct, "(") || t.Is(grammar.Punct, "[") || t.Is(grammar.Brace, "{")
}

func closes(t grammar.Token) bool {
	return t.Is(grammar.Punct, ")") || t.Is(grammar.Punct, "]") || t.Is(grammar.Brace, "}")
}

func isIf(toks []grammar.Token, i int) bool {
	return i+1 < len(toks) && toks[i].Is(grammar.Ident, "if") && toks[i+1].Is(grammar.Punct, "(")
}

func isElse(toks []grammar.Token, i int) bool {
	return i < len(toks) && toks[i].Is(grammar.Ident, "else")
}

// ---------------------------------------------------------------------------
// Brace-less statements
// ---------------------------------------------------------------------------

// braceStatements gives every if and else body braces, so
// if (a) return 1; else return 2; reads if(a){return 1;}else{return 2;}.
// An else directly followed by if stays an else-if chain.
func braceStatements(toks []grammar.Token) []grammar.Token {
	var out []grammar.Token
	for i := 0; i < len(toks); {
		if !isIf(toks, i) {
			out = append(out, toks[i])
			i++
			continue
		}
		closeParen := grammar.MatchToken(toks, i+1)
		if closeParen < 0 {
			return append(out, toks[i:]...)
		}
		out = append(out, toks[i:closeParen+1]...)
		end := statementEnd(toks, closeParen+1)
		out = append(out, braced(toks[closeParen+1:end])...)
		i = end
		if isElse(toks, i) {
			out = append(out, toks[i])
			i++
			if isIf(toks, i) {
				continue
			}
			end = statementEnd(toks, i)
			out = append(out, braced(toks[i:end])...)
			i = end
		}
	}
	return out
}

func braced(stmt []grammar.Token) []grammar.Token {
	open := grammar.Token{Kind: grammar.Brace, Text: "{"}
	closeBrace := grammar.Token{Kind: grammar.Brace, Text: "}"}
	if len(stmt) > 0 && stmt[0].Is(grammar.Brace, "{") && grammar.MatchToken(stmt, 0) == len(stmt)-1 {
		stmt = stmt[1 : len(stmt)-1]
	}
	out := []grammar.Token{open}
	out = append(out, braceStatements(stmt)...)
	return append(out, closeBrace)
}

// statementEnd returns the index just past the statement starting at i.
func statementEnd(toks []grammar.Token, i int) int {
	if i >= len(toks) {
		return i
	}
	if toks[i].Is(grammar.Brace, "{") {
		if end := grammar.MatchToken(toks, i); end >= 0 {
			return end + 1
		}
		return len(toks)
	}
	if isIf(toks, i) {
		closeParen := grammar.MatchToken(toks, i+1)
		if closeParen < 0 {
			return len(toks)
		}
		j := statementEnd(toks, closeParen+1)
		if isElse(toks, j) {
			return statementEnd(toks, j+1)
		}
		return j
	}
	depth := 0
	for j := i; j < len(toks); j++ {
		switch {
		case opens(toks[j]):
			depth++
		case closes(toks[j]):
			if depth--; depth < 0 {
				return j
			}
		case depth == 0 && toks[j].Is(grammar.Punct, ";"):
			return j + 1
		case depth == 0 && j > i && isElse(toks, j):
			return j
		}
	}
	return len(toks)
}

// ---------------------------------------------------------------------------
// Local bindings
// ---------------------------------------------------------------------------

var declarationWords = map[string]bool{"const": true, "let": true, "var": true}

// statementWords can never continue an expression.
var statementWords = map[string]bool{"return": true, "if": true, "const": true, "let": true, "var": true}

func isDeclaration(toks []grammar.Token, i int) bool {
	return i+2 < len(toks) && toks[i].Kind == grammar.Ident && declarationWords[toks[i].Text] &&
		toks[i+1].Kind == grammar.Ident && toks[i+2].Is(grammar.Operator, "=")
}

// declarationEnd returns the end of the value starting at i.
func declarationEnd(toks []grammar.Token, i int) int {
	depth := 0
	for j := i; j < len(toks); j++ {
		switch {
		case opens(toks[j]):
			depth++
		case closes(toks[j]):
			if depth--; depth < 0 {
				return j
			}
		case depth == 0 && toks[j].Is(grammar.Punct, ";"):
			return j
		case depth == 0 && j > i && toks[j].Kind == grammar.Ident && statementWords[toks[j].Text]:
			return j
		}
	}
	return len(toks)
}

// inlineBindings removes const, let and var declarations and substitutes
// their values at every later whole-word use. Values with a top-level
// operator are parenthesised.
func inlineBindings(toks []grammar.Token) []grammar.Token {
	bindings := make(map[string][]grammar.Token)
	var out []grammar.Token
	for i := 0; i < len(toks); {
		if isDeclaration(toks, i) {
			name := toks[i+1].Text
			end := declarationEnd(toks, i+3)
			value := bindValues(nil, toks[i+3:end], bindings)
			bindings[name] = group(value, needsGroup(value))
			i = end
			if i < len(toks) && toks[i].Is(grammar.Punct, ";") {
				i++
			}
			continue
		}
		out = bindValues(out, toks[i:i+1], bindings)
		i++
	}
	return out
}

// bindValues appends toks to out, replacing bound names.
func bindValues(out, toks []grammar.Token, bindings map[string][]grammar.Token) []grammar.Token {
	for _, t := range toks {
		if v, ok := bindings[t.Text]; ok && t.Kind == grammar.Ident && !afterDot(out) {
			out = append(out, v...)
			continue
		}
		out = append(out, t)
	}
	return out
}

func afterDot(out []grammar.Token) bool {
	return len(out) > 0 && out[len(out)-1].Is(grammar.Punct, ".")
}

// needsGroup reports whether toks has a binary operator at depth zero.
func needsGroup(toks []grammar.Token) bool {
	depth := 0
	for i, t := range toks {
		switch {
		case opens(t):
			depth++
		case closes(t):
			depth--
		case depth > 0 || i == 0:
		case t.Kind == grammar.Operator && toks[i-1].Kind != grammar.Operator && t.Text != "!" && t.Text != "not":
			return true
		case wordOperator(toks, i):
			return true
		}
	}
	return false
}

func group(toks []grammar.Token, paren bool) []grammar.Token {
	if !paren {
		return toks
	}
	out := make([]grammar.Token, 0, len(toks)+2)
	out = append(out, grammar.Token{Kind: grammar.Punct, Text: "("})
	out = append(out, toks...)
	return append(out, grammar.Token{Kind: grammar.Punct, Text: ")"})
}

// ---------------------------------------------------------------------------
// Helper calls
// ---------------------------------------------------------------------------

// spliceHelpers replaces this.name() calls of known helpers by their
// lowered bodies.
func spliceHelpers(toks []grammar.Token, helpers map[string]string) ([]grammar.Token, error) {
	if len(helpers) == 0 {
		return toks, nil
	}
	var out []grammar.Token
	for i := 0; i < len(toks); i++ {
		body, ok := helperCall(toks, i, helpers)
		if !ok {
			out = append(out, toks[i])
			continue
		}
		name := toks[i+2].Text
		if !toks[i+4].Is(grammar.Punct, ")") {
			return nil, diag.Malformed(grammar.Join(toks[i:]), fmt.Sprintf("helper %s takes no arguments", name))
		}
		inner, err := significant(body)
		if err != nil {
			return nil, fmt.Errorf("helper %s: %w", name, err)
		}
		next := i + 5
		out = append(out, group(inner, needsGroup(inner) && !delimited(out, toks, next))...)
		i = next - 1
	}
	return out, nil
}

func helperCall(toks []grammar.Token, i int, helpers map[string]string) (string, bool) {
	if i+4 >= len(toks) || !toks[i].Is(grammar.Ident, "this") || !toks[i+1].Is(grammar.Punct, ".") ||
		toks[i+2].Kind != grammar.Ident || !toks[i+3].Is(grammar.Punct, "(") {
		return "", false
	}
	body, ok := helpers[toks[i+2].Text]
	return body, ok
}

// delimited reports whether the tokens around a call site already separate
// it from any operator.
func delimited(before, toks []grammar.Token, next int) bool {
	if len(before) > 0 {
		p := before[len(before)-1]
		switch {
		case p.Is(grammar.Punct, "("), p.Is(grammar.Punct, ","), p.Is(grammar.Punct, ";"),
			p.Is(grammar.Brace, "{"), p.Is(grammar.Ident, "return"), p.Is(grammar.Ident, "else"):
		default:
			return false
		}
	}
	if next >= len(toks) {
		return true
	}
	n := toks[next]
	return n.Is(grammar.Punct, ")") || n.Is(grammar.Punct, ",") || n.Is(grammar.Punct, ";") || n.Is(grammar.Brace, "}")
}

// ---------------------------------------------------------------------------
// Substitution
// ---------------------------------------------------------------------------

var operatorWords = map[string]string{
	"&&":  "and",
	"||":  "or",
	"!":   "not",
	"===": "==",
	"!==": "!=",
	"**":  "^",
}

type substitution struct {
	props   *model.Table
	helpers map[string]string
	params  map[string]bool
	log     *slog.Logger
}

// lambdaParams collects the parameter names of every arrow function.
func lambdaParams(toks []grammar.Token) map[string]bool {
	params := make(map[string]bool)
	for i, t := range toks {
		if !t.Is(grammar.Operator, "=>") || i == 0 {
			continue
		}
		p := toks[i-1]
		if p.Kind == grammar.Ident {
			params[p.Text] = true
			continue
		}
		for j := i - 2; j >= 0 && p.Is(grammar.Punct, ")") && !toks[j].Is(grammar.Punct, "("); j-- {
			if toks[j].Kind == grammar.Ident {
				params[toks[j].Text] = true
			}
		}
	}
	return params
}

// bareProperty reports whether toks[i] names a property without this.
func (s substitution) bareProperty(toks []grammar.Token, i int) (model.Descriptor, bool) {
	t := toks[i]
	if t.Kind != grammar.Ident || s.params[t.Text] {
		return model.Descriptor{}, false
	}
	if i > 0 && toks[i-1].Is(grammar.Punct, ".") {
		return model.Descriptor{}, false
	}
	if i+1 < len(toks) && (toks[i+1].Is(grammar.Punct, "(") || toks[i+1].Is(grammar.Punct, ":")) {
		return model.Descriptor{}, false
	}
	return s.props.ByIdentifier(t.Text)
}

func (s substitution) apply(toks []grammar.Token) ([]grammar.Token, error) {
	out := make([]grammar.Token, 0, len(toks))
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch {
		case t.Is(grammar.Ident, "this") && i+2 < len(toks) && toks[i+1].Is(grammar.Punct, ".") && toks[i+2].Kind == grammar.Ident:
			name := toks[i+2].Text
			i += 2
			if d, ok := s.props.ByIdentifier(name); ok {
				out = append(out, propRef(d.DisplayName)...)
				continue
			}
			s.member(name)
			out = append(out, ident(name))
		case t.Is(grammar.Punct, ".") && i+1 < len(toks) && toks[i+1].Is(grammar.Ident, "_valueAccessor"):
			out = append(out, t, ident("prop"))
			i++
		case t.Is(grammar.Punct, ".") && i+1 < len(toks) && toks[i+1].Is(grammar.Ident, "value") &&
			!(i+2 < len(toks) && toks[i+2].Is(grammar.Punct, "(")):
			i++
		case t.Kind == grammar.Operator:
			if w, ok := operatorWords[t.Text]; ok {
				t.Text = w
			}
			out = append(out, t)
		case t.Kind == grammar.String:
			q, err := grammar.Requote(t.Text)
			if err != nil {
				return nil, diag.Malformed(t.Text, err.Error())
			}
			t.Text = q
			out = append(out, t)
		case t.Kind == grammar.Number && strings.HasPrefix(t.Text, "."):
			t.Text = "0" + t.Text
			out = append(out, t)
		case t.Kind == grammar.Ident && (strings.EqualFold(t.Text, "true") || strings.EqualFold(t.Text, "false")):
			t.Text = strings.ToLower(t.Text)
			out = append(out, t)
		case t.Is(grammar.Ident, "return"), t.Is(grammar.Punct, ";"):
		default:
			if d, ok := s.bareProperty(toks, i); ok {
				out = append(out, propRef(d.DisplayName)...)
				continue
			}
			out = append(out, t)
		}
	}
	return out, nil
}

// member warns about this.name references that resolve to nothing.
func (s substitution) member(name string) {
	if _, ok := s.helpers[name]; ok || model.IsBuiltinFunc(name) || model.IsConstant(name) {
		return
	}
	if hint := s.suggest(name); hint != "" {
		s.log.Warn("unknown member", "name", name, "suggestion", hint)
		return
	}
	s.log.Warn("unknown member", "name", name)
}

// suggest returns the closest known name, if any is close.
func (s substitution) suggest(name string) string {
	candidates := s.props.Identifiers()
	for h := range s.helpers {
		candidates = append(candidates, h)
	}
	sort.Strings(candidates)
	candidates = append(candidates, model.BuiltinNames()...)

	ranks := fuzzy.RankFindFold(name, candidates)
	if len(ranks) > 0 {
		sort.Sort(ranks)
		return ranks[0].Target
	}
	best, bestDist := "", 3
	for _, c := range candidates {
		if d := fuzzy.LevenshteinDistance(strings.ToLower(name), strings.ToLower(c)); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func ident(name string) grammar.Token {
	return grammar.Token{Kind: grammar.Ident, Text: name}
}

func propRef(display string) []grammar.Token {
	return []grammar.Token{
		ident("prop"),
		{Kind: grammar.Punct, Text: "("},
		{Kind: grammar.String, Text: grammar.DoubleQuote(display)},
		{Kind: grammar.Punct, Text: ")"},
	}
}

// ---------------------------------------------------------------------------
// Compaction
// ---------------------------------------------------------------------------

// compact joins tokens without whitespace, except one space between two
// words and around the binary word operators. else followed by if joins
// into elseif.
func compact(toks []grammar.Token) string {
	var b strings.Builder
	for i, t := range toks {
		if i > 0 && spaced(toks, i) {
			b.WriteByte(' ')
		}
		b.WriteString(t.Text)
	}
	return b.String()
}

func spaced(toks []grammar.Token, i int) bool {
	prev, cur := toks[i-1], toks[i]
	if prev.Is(grammar.Ident, "else") && cur.Is(grammar.Ident, "if") {
		return false
	}
	if (prev.IsWord() || prev.Is(grammar.Operator, "not")) && cur.IsWord() {
		return true
	}
	return wordOperator(toks, i) || wordOperator(toks, i-1)
}

// wordOperator reports whether toks[i] is a binary and/or. Lexed words
// count when they follow a value, which a call such as and(a, b) never
// does.
func wordOperator(toks []grammar.Token, i int) bool {
	t := toks[i]
	if t.Kind == grammar.Operator {
		return t.Text == "and" || t.Text == "or"
	}
	if i == 0 || (!t.Is(grammar.Ident, "and") && !t.Is(grammar.Ident, "or")) {
		return false
	}
	p := toks[i-1]
	return p.IsWord() || p.Kind == grammar.String || p.Is(grammar.Punct, ")") || p.Is(grammar.Punct, "]")
}
