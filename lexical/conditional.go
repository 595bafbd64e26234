package lexical

import (
	"fmt"
	"strings"

	"github.com/vinodhalaharvi/formulac/diag"
	"github.com/vinodhalaharvi/formulac/scan"
)

// Conditional is one extracted if construct.
type Conditional struct {
	Start  int    // index of the "if(" keyword
	End    int    // index just past the construct
	Cond   string // condition text
	Then   string // true branch text
	Else   string // false branch text
	ElseIf bool   // Else is itself an if chain
}

// FindConditional returns the index of the first depth-zero "if(" keyword
// in s, or -1.
func FindConditional(s string) int {
	at := -1
	scan.Depth0(s, func(i int) bool {
		if isKeyword(s, i) {
			at = i
			return false
		}
		return true
	})
	return at
}

// IndexConditional returns the index of the first "if(" keyword at any
// depth outside strings, or -1.
func IndexConditional(s string) int {
	sc := scan.New(s)
	for sc.Next() {
		if !sc.InQuote() && isKeyword(s, sc.Pos()) {
			return sc.Pos()
		}
	}
	return -1
}

// HasConditional reports whether s contains an if( keyword outside strings.
func HasConditional(s string) bool { return IndexConditional(s) >= 0 }

// HasBracedConditional reports whether s holds a brace-grammar conditional:
// an if( keyword and a brace, both outside strings.
func HasBracedConditional(s string) bool {
	if !HasConditional(s) {
		return false
	}
	sc := scan.New(s)
	for sc.Next() {
		if !sc.InQuote() && sc.Current() == '{' {
			return true
		}
	}
	return false
}

func isKeyword(s string, i int) bool {
	if !strings.HasPrefix(s[i:], "if(") {
		return false
	}
	return i == 0 || (!isIdentByte(s[i-1]) && s[i-1] != '.')
}

// IsWrapped reports whether s is entirely enclosed in one pair of parens.
func IsWrapped(s string) bool {
	return len(s) >= 2 && s[0] == '(' && scan.Match(s, 0) == len(s)-1
}

// HasBraces reports whether s has a brace outside strings.
func HasBraces(s string) bool {
	sc := scan.New(s)
	for sc.Next() {
		if !sc.InQuote() && (sc.Current() == '{' || sc.Current() == '}') {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Brace grammar: if(c){a}elseif(d){b}else{e}
// ---------------------------------------------------------------------------

// Segment is one if(cond){body} link of a chain.
type Segment struct {
	Start int
	Cond  string
	Body  string
}

// Chain is a parsed if/elseif/else sequence.
type Chain struct {
	Segments []Segment
	Final    *string // body of the closing else, if any
	End      int     // index just past the chain
}

// ParseChain reads the brace-grammar chain starting at s[at:], which must
// begin with "if(".
func ParseChain(s string, at int) (Chain, error) {
	var c Chain
	pos := at
	for {
		if !strings.HasPrefix(s[pos:], "if(") {
			return c, diag.Malformed(s[pos:], "expected if(")
		}
		open := pos + 2
		closeParen := scan.Match(s, open)
		if closeParen < 0 {
			return c, diag.Malformed(s[pos:], "unclosed condition")
		}
		body := closeParen + 1
		if body >= len(s) || s[body] != '{' {
			return c, diag.Malformed(s[pos:], "conditional without a braced body")
		}
		end := scan.Match(s, body)
		if end < 0 {
			return c, diag.Malformed(s[pos:], "unclosed block")
		}
		c.Segments = append(c.Segments, Segment{Start: pos, Cond: s[open+1 : closeParen], Body: s[body+1 : end]})
		pos = end + 1

		rest := s[pos:]
		switch {
		case strings.HasPrefix(rest, "elseif("):
			pos += len("else")
		case strings.HasPrefix(rest, "else if("):
			pos += len("else ")
		case strings.HasPrefix(rest, "else{"):
			elseOpen := pos + len("else")
			elseEnd := scan.Match(s, elseOpen)
			if elseEnd < 0 {
				return c, diag.Malformed(s[pos:], "unclosed else block")
			}
			final := s[elseOpen+1 : elseEnd]
			c.Final = &final
			c.End = elseEnd + 1
			return c, nil
		default:
			c.End = pos
			return c, nil
		}
	}
}

// IfBraces extracts the brace-grammar conditional at s[at:]. An else-if
// chain becomes a false branch starting with a fresh "if(".
func IfBraces(s string, at int) (Conditional, error) {
	ch, err := ParseChain(s, at)
	if err != nil {
		return Conditional{}, err
	}
	first := ch.Segments[0]
	c := Conditional{Start: at, End: ch.End, Cond: first.Cond, Then: first.Body}
	switch {
	case len(ch.Segments) > 1:
		c.Else = s[ch.Segments[1].Start:ch.End]
		c.ElseIf = true
		if ch.Final == nil {
			return c, diag.MissingAlternative(s[ch.Segments[1].Start:ch.End])
		}
	case ch.Final != nil:
		c.Else = *ch.Final
	default:
		return c, diag.MissingAlternative(s[at:ch.End])
	}
	return c, nil
}

// ---------------------------------------------------------------------------
// Comma grammar: if(c,a,b)
// ---------------------------------------------------------------------------

// IfCommas extracts the comma-grammar conditional at s[at:]. The argument
// list must hold exactly three depth-one arguments.
func IfCommas(s string, at int) (Conditional, error) {
	if !strings.HasPrefix(s[at:], "if(") {
		return Conditional{}, diag.Malformed(s[at:], "expected if(")
	}
	open := at + 2
	closeParen := scan.Match(s, open)
	if closeParen < 0 {
		return Conditional{}, diag.Malformed(s[at:], "unclosed conditional")
	}
	args := SplitArgs(s[open+1 : closeParen])
	if len(args) != 3 {
		return Conditional{}, diag.Malformed(s[at:closeParen+1], fmt.Sprintf("conditional needs three arguments, got %d", len(args)))
	}
	return Conditional{
		Start:  at,
		End:    closeParen + 1,
		Cond:   args[0],
		Then:   args[1],
		Else:   args[2],
		ElseIf: strings.HasPrefix(args[2], "if("),
	}, nil
}

// Ternary rewrites every comma-grammar conditional in s into a
// parenthesised ternary: if(c,a,b) becomes (c ? a : b).
func Ternary(s string) (string, error) {
	at := IndexConditional(s)
	if at < 0 {
		return s, nil
	}
	c, err := IfCommas(s, at)
	if err != nil {
		return "", err
	}
	parts := make([]string, 3)
	for i, p := range []string{c.Cond, c.Then, c.Else} {
		if parts[i], err = Ternary(p); err != nil {
			return "", err
		}
	}
	rest, err := Ternary(s[c.End:])
	if err != nil {
		return "", err
	}
	return s[:at] + "(" + parts[0] + " ? " + parts[1] + " : " + parts[2] + ")" + rest, nil
}

// BraceTernaries rewrites every ternary c ? a : b in s, at any depth, into
// the brace conditional if(c){a}else{b}. Grouping parens that hold nothing but a ternary are
// dropped, so (c ? a : b)+1 reads if(c){a}else{b}+1.
func BraceTernaries(s string) (string, error) {
	q, c := ternaryMarks(s)
	if q < 0 {
		return braceNested(s)
	}
	parts := make([]string, 3)
	for i, p := range []string{s[:q], s[q+1 : c], s[c+1:]} {
		p = strings.TrimSpace(p)
		if p == "" {
			return "", diag.Malformed(s, "ternary with an empty operand")
		}
		r, err := BraceTernaries(p)
		if err != nil {
			return "", err
		}
		parts[i] = r
	}
	return "if(" + parts[0] + "){" + parts[1] + "}else{" + parts[2] + "}", nil
}

// braceNested rewrites the ternaries inside the brackets of s, which has
// none at its own depth.
func braceNested(s string) (string, error) {
	open := -1
	sc := scan.New(s)
	for sc.Next() {
		if !sc.InQuote() && (sc.Current() == '(' || sc.Current() == '{') {
			open = sc.Pos()
			break
		}
	}
	if open < 0 {
		return s, nil
	}
	closeAt := scan.Match(s, open)
	if closeAt < 0 {
		return "", diag.Malformed(s[open:], "unclosed bracket")
	}
	inner := s[open+1 : closeAt]

	var mid string
	switch {
	case s[open] == '{':
		r, err := BraceTernaries(inner)
		if err != nil {
			return "", err
		}
		mid = "{" + r + "}"
	case open > 0 && (isIdentByte(s[open-1]) || s[open-1] == ')'):
		args := SplitArgs(inner)
		for i, a := range args {
			r, err := BraceTernaries(a)
			if err != nil {
				return "", err
			}
			args[i] = r
		}
		mid = "(" + strings.Join(args, ",") + ")"
	default:
		r, err := BraceTernaries(inner)
		if err != nil {
			return "", err
		}
		if q, _ := ternaryMarks(inner); q >= 0 {
			mid = r
		} else {
			mid = "(" + r + ")"
		}
	}
	rest, err := braceNested(s[closeAt+1:])
	if err != nil {
		return "", err
	}
	return s[:open] + mid + rest, nil
}

// ternaryMarks returns the depth-zero "?" and its matching ":" in s, or -1.
func ternaryMarks(s string) (int, int) {
	q, c, nest := -1, -1, 0
	scan.Depth0(s, func(i int) bool {
		switch s[i] {
		case '?':
			if q < 0 {
				q = i
			} else {
				nest++
			}
		case ':':
			if q < 0 {
				return true
			}
			if nest == 0 {
				c = i
				return false
			}
			nest--
		}
		return true
	})
	if c < 0 {
		return -1, -1
	}
	return q, c
}
