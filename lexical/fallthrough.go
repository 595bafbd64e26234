package lexical

import (
	"strings"
)

// Fallthrough turns statement sequences into nested else branches. A chain
// with no final else is followed by whatever comes after it, so
//
//	if(a){1}if(b){2}3
//
// becomes
//
//	if(a){1}else{if(b){2}else{3}}
//
// A conditional that is directly followed by an operator is an expression
// operand and stays as it is. Code after a chain that ends in else is
// unreachable and is dropped.
func Fallthrough(s string) (string, error) {
	return sequence(s, "")
}

// sequence normalises the statements in s, appending cont to every path
// that would otherwise fall off the end.
func sequence(s, cont string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return cont, nil
	}
	if !strings.HasPrefix(s, "if(") {
		return s, nil
	}
	ch, err := ParseChain(s, 0)
	if err != nil {
		return "", err
	}
	rest := strings.TrimSpace(s[ch.End:])
	if startsWithOperator(rest) {
		return s, nil
	}
	next, err := sequence(rest, cont)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i, seg := range ch.Segments {
		body, err := sequence(seg.Body, next)
		if err != nil {
			return "", err
		}
		if i > 0 {
			b.WriteString("else")
		}
		b.WriteString("if(" + seg.Cond + "){" + body + "}")
	}
	switch {
	case ch.Final != nil:
		body, err := sequence(*ch.Final, next)
		if err != nil {
			return "", err
		}
		b.WriteString("else{" + body + "}")
	case next != "":
		b.WriteString("else{" + next + "}")
	}
	return b.String(), nil
}

func startsWithOperator(rest string) bool {
	if rest == "" {
		return false
	}
	if strings.IndexByte("+-*/%^<>=!&|?:.,)", rest[0]) >= 0 {
		return true
	}
	for _, w := range []string{"and", "or"} {
		if strings.HasPrefix(rest, w) && (len(rest) == len(w) || !isIdentByte(rest[len(w)])) {
			return true
		}
	}
	return false
}
