package lexical

import (
	"strings"

	"github.com/vinodhalaharvi/formulac/diag"
	"github.com/vinodhalaharvi/formulac/grammar"
	"github.com/vinodhalaharvi/formulac/scan"
)

// Positional lambda parameter names of the flat grammar.
const (
	ParamIndex   = "index"
	ParamCurrent = "current"
)

// Lambda is an arrow function located in a piece of text.
type Lambda struct {
	Start  int // first byte of the parameter list
	End    int // index just past the body
	Params []string
	Body   string
}

// FindLambda locates the first arrow function in s outside strings.
func FindLambda(s string) (Lambda, bool, error) {
	arrow := -1
	sc := scan.New(s)
	for sc.Next() {
		if !sc.InQuote() && sc.Current() == '=' && sc.Peek() == '>' {
			arrow = sc.Pos()
			break
		}
	}
	if arrow < 0 {
		return Lambda{}, false, nil
	}

	var l Lambda
	j := arrow - 1
	for j >= 0 && s[j] == ' ' {
		j--
	}
	switch {
	case j >= 0 && s[j] == ')':
		open := openerOf(s, j)
		if open < 0 {
			return l, false, diag.Malformed(s[:arrow], "unmatched lambda parameter list")
		}
		l.Start = open
		for _, p := range SplitArgs(s[open+1 : j]) {
			if name, _, _ := strings.Cut(p, ":"); strings.TrimSpace(name) != "" {
				l.Params = append(l.Params, strings.TrimSpace(name))
			}
		}
	default:
		k := j
		for k >= 0 && isIdentByte(s[k]) {
			k--
		}
		if k == j {
			return l, false, diag.Malformed(s[:arrow+2], "lambda without parameters")
		}
		l.Start = k + 1
		l.Params = []string{s[k+1 : j+1]}
	}

	b := arrow + 2
	for b < len(s) && s[b] == ' ' {
		b++
	}
	if b < len(s) && s[b] == '{' {
		end := scan.Match(s, b)
		if end < 0 {
			return l, false, diag.Malformed(s[b:], "unclosed lambda body")
		}
		l.Body = blockBody(s[b+1 : end])
		l.End = end + 1
		return l, true, nil
	}

	end := len(s)
	body := scan.New(s[b:])
	for body.Next() {
		if body.InQuote() {
			continue
		}
		if body.Depth() < 0 || (body.Current() == ',' && body.Depth() == 0) {
			end = b + body.Pos()
			break
		}
	}
	l.Body = strings.TrimSpace(s[b:end])
	l.End = end
	return l, true, nil
}

// blockBody reduces a statement-bodied lambda to its returned expression.
func blockBody(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "return ")
	s = strings.TrimPrefix(s, "return")
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), ";"))
}

// openerOf returns the index of the "(" matching the ")" at closeAt.
func openerOf(s string, closeAt int) int {
	var stack []int
	sc := scan.New(s)
	for sc.Next() {
		if sc.InQuote() {
			continue
		}
		switch sc.Current() {
		case '(':
			stack = append(stack, sc.Pos())
		case ')':
			if len(stack) == 0 {
				return -1
			}
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if sc.Pos() == closeAt {
				return open
			}
		}
	}
	return -1
}

// positional returns the flat-grammar names for a lambda's parameters.
func positional(params []string) ([]string, error) {
	switch len(params) {
	case 0:
		return nil, nil
	case 1:
		return []string{ParamCurrent}, nil
	case 2:
		return []string{ParamIndex, ParamCurrent}, nil
	}
	return nil, diag.Malformed(strings.Join(params, ","), "a callback takes at most two parameters")
}

// RenameParams renames whole-word uses of params in body to the positional
// names index and current. Member accesses (.name) are left alone.
func RenameParams(body string, params []string) (string, error) {
	names, err := positional(params)
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return body, nil
	}
	rename := make(map[string]string, len(params))
	for i, p := range params {
		rename[p] = names[i]
	}
	toks, err := grammar.Tokenize(body)
	if err != nil {
		return "", err
	}
	for i, t := range toks {
		if t.Kind != grammar.Ident {
			continue
		}
		to, ok := rename[t.Text]
		if !ok {
			continue
		}
		if p := grammar.PrevSignificant(toks, i); p >= 0 && toks[p].Is(grammar.Punct, ".") {
			continue
		}
		toks[i].Text = to
	}
	return grammar.Join(toks), nil
}

// ReduceCallbacks replaces every arrow function in s by its body, with the
// parameters renamed to index and current. Nested lambdas are reduced
// first, each against its own parameter list.
//
//	ReduceCallbacks(`map((a,e)=>a.length()+e)`) // map(index.length()+current)
func ReduceCallbacks(s string) (string, error) {
	for {
		l, ok, err := FindLambda(s)
		if err != nil {
			return "", err
		}
		if !ok {
			return s, nil
		}
		body, err := ReduceCallbacks(l.Body)
		if err != nil {
			return "", err
		}
		if body, err = RenameParams(body, l.Params); err != nil {
			return "", err
		}
		s = s[:l.Start] + body + s[l.End:]
	}
}

// CanonicalLambda rewrites an arrow function at the start of s so its
// parameters are (index, current).
func CanonicalLambda(s string) (string, error) {
	l, ok, err := FindLambda(s)
	if err != nil || !ok || l.Start != 0 {
		return s, err
	}
	body, err := RenameParams(l.Body, l.Params)
	if err != nil {
		return "", err
	}
	return MakeLambda(body) + s[l.End:], nil
}

// MakeLambda wraps body in the canonical DSL callback.
func MakeLambda(body string) string {
	return "(" + ParamIndex + ", " + ParamCurrent + ") => " + body
}

// IsLambda reports whether s starts with an arrow function.
func IsLambda(s string) bool {
	l, ok, err := FindLambda(s)
	return err == nil && ok && l.Start == 0
}
