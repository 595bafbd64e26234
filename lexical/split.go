// Package lexical holds the text-level helpers both tree builders share:
// operator splitting, conditional extraction for the brace and comma
// grammars, call peeling, lambda callbacks and fallthrough normalisation.
//
// Every function works on raw text through the scan cursor, so brackets and
// operators inside string literals are never mistaken for structure.
package lexical

import (
	"strings"

	"github.com/vinodhalaharvi/formulac/diag"
	"github.com/vinodhalaharvi/formulac/scan"
)

// operators are the binary operators a combination splits on, longest first.
var operators = []string{
	"===", "!==",
	"**", "==", "!=", "<=", ">=", "&&", "||",
	"+", "-", "*", "/", "%", "^", "<", ">",
}

// wordOperators never end an operand.
var wordOperators = []string{"and", "or", "not"}

// operatorAt returns the operator starting at s[i]. The binary word
// operators are only recognised with a space on both sides and are returned
// with those spaces.
func operatorAt(s string, i int) string {
	if s[i] == ' ' {
		for _, w := range []string{" and ", " or "} {
			if strings.HasPrefix(s[i:], w) {
				return w
			}
		}
		return ""
	}
	for _, op := range operators {
		if strings.HasPrefix(s[i:], op) {
			return op
		}
	}
	return ""
}

// IsOperator reports whether s is one of the split operators.
func IsOperator(s string) bool {
	if s = strings.TrimSpace(s); s == "and" || s == "or" {
		return true
	}
	for _, op := range operators {
		if s == op {
			return true
		}
	}
	return false
}

// Split breaks block into [operand, operator, operand, ...] at depth-zero
// binary operators. It returns nil when the block has no such operator.
//
//	Split("1+if(a){1}else{2}>=0") // ["1", "+", "if(a){1}else{2}", ">=", "0"]
func Split(block string) ([]string, error) {
	var (
		parts  []string
		bottom int
		skip   int
		err    error
	)
	scan.Depth0(block, func(i int) bool {
		if i < skip {
			return true
		}
		op := operatorAt(block, i)
		if op == "" {
			return true
		}
		if op == ">" && i > 0 && block[i-1] == '=' {
			return true // lambda arrow
		}

		operand := strings.TrimSpace(block[bottom:i])
		switch {
		case operand == "":
			if op == "-" || op == "+" {
				skip = i + 1
				return true
			}
			err = diag.AmbiguousSplit(block, "operator "+op+" has no left operand")
			return false
		case unaryContext(operand), (op == "-" || op == "+") && isExponent(operand):
			skip = i + len(op)
			return true
		}

		parts = append(parts, operand, op)
		bottom = i + len(op)
		skip = bottom
		return true
	})
	if err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return nil, nil
	}
	rest := strings.TrimSpace(block[bottom:])
	if rest == "" {
		return nil, diag.AmbiguousSplit(block, "operator "+strings.TrimSpace(parts[len(parts)-1])+" has no right operand")
	}
	return append(parts, rest), nil
}

// unaryContext reports whether an operator following operand cannot be
// binary: after a comma, a ternary mark or a word operator.
func unaryContext(operand string) bool {
	switch operand[len(operand)-1] {
	case ',', '?', ':':
		return true
	}
	for _, w := range wordOperators {
		if strings.HasSuffix(operand, w) {
			before := len(operand) - len(w)
			if before == 0 || !isIdentByte(operand[before-1]) {
				return true
			}
		}
	}
	return false
}

// isExponent reports whether operand ends inside a number such as 1e.
func isExponent(operand string) bool {
	last := operand[len(operand)-1]
	if last != 'e' && last != 'E' {
		return false
	}
	i := len(operand) - 1
	for i > 0 && (isDigit(operand[i-1]) || operand[i-1] == '.') {
		i--
	}
	if i == len(operand)-1 || !isDigit(operand[i]) {
		return false
	}
	return i == 0 || !isIdentByte(operand[i-1])
}

// SplitArgs splits an argument list at depth-zero commas, trimming each
// argument. Empty input yields nil; empty arguments are kept.
func SplitArgs(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var args []string
	bottom := 0
	scan.Depth0(text, func(i int) bool {
		if text[i] == ',' {
			args = append(args, strings.TrimSpace(text[bottom:i]))
			bottom = i + 1
		}
		return true
	})
	return append(args, strings.TrimSpace(text[bottom:]))
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// isIdentByte reports whether c can be part of an identifier. Every byte of
// a multi-byte rune counts, so Unicode names are never split.
func isIdentByte(c byte) bool {
	return c >= 0x80 || c == '_' || c == '$' || isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
