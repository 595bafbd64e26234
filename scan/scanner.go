// Package scan provides the depth and quote aware cursor used to split
// blocks of formula text.
//
// The cursor walks one byte at a time. After Next returns, Depth reports the
// combined paren and brace nesting including the current byte, and InQuote
// reports whether the current byte sits inside (or opens) a string literal.
// Brackets inside strings never change the depth.
package scan

import (
	"github.com/vinodhalaharvi/formulac/diag"
)

// Scanner is a single-pass cursor over a string.
type Scanner struct {
	src     string
	pos     int
	depth   int
	single  bool
	double  bool
	escaped bool
	closing bool // current byte closed a quote
}

// New returns a Scanner positioned before the first byte of src.
func New(src string) *Scanner {
	return &Scanner{src: src, pos: -1}
}

// Next advances to the next byte and updates state. It returns false once
// the end of input is reached.
func (s *Scanner) Next() bool {
	if s.pos+1 >= len(s.src) {
		s.pos = len(s.src)
		return false
	}
	s.pos++
	s.closing = false
	c := s.src[s.pos]

	if s.single || s.double {
		switch {
		case s.escaped:
			s.escaped = false
		case c == '\\':
			s.escaped = true
		case c == '"' && s.double:
			s.double = false
			s.closing = true
		case c == '\'' && s.single:
			s.single = false
			s.closing = true
		}
		return true
	}

	switch c {
	case '"':
		s.double = true
	case '\'':
		s.single = true
	case '(', '{':
		s.depth++
	case ')', '}':
		s.depth--
	}
	return true
}

// Pos is the index of the current byte.
func (s *Scanner) Pos() int { return s.pos }

// Depth is the paren plus brace nesting at the current byte.
func (s *Scanner) Depth() int { return s.depth }

// InQuote reports whether the current byte belongs to a string literal,
// including its opening and closing quote.
func (s *Scanner) InQuote() bool { return s.single || s.double || s.closing }

// Current returns the byte under the cursor, or 0 outside the input.
func (s *Scanner) Current() byte { return s.at(s.pos) }

// Peek returns the byte after the cursor, or 0.
func (s *Scanner) Peek() byte { return s.at(s.pos + 1) }

// Previous returns the byte before the cursor, or 0.
func (s *Scanner) Previous() byte { return s.at(s.pos - 1) }

// Rest returns the input from the cursor to the end.
func (s *Scanner) Rest() string {
	if s.pos < 0 {
		return s.src
	}
	if s.pos >= len(s.src) {
		return ""
	}
	return s.src[s.pos:]
}

func (s *Scanner) at(i int) byte {
	if i < 0 || i >= len(s.src) {
		return 0
	}
	return s.src[i]
}

// Match returns the index of the bracket that closes the one at open, or -1
// when src[open] is not an opening bracket or it is never closed.
func Match(src string, open int) int {
	if open < 0 || open >= len(src) || (src[open] != '(' && src[open] != '{') {
		return -1
	}
	s := New(src)
	for s.Next() {
		if s.Pos() < open {
			continue
		}
		if s.Pos() == open {
			if s.InQuote() {
				return -1
			}
			base := s.Depth() - 1
			for s.Next() {
				if !s.InQuote() && s.Depth() == base {
					return s.Pos()
				}
			}
			return -1
		}
	}
	return -1
}

// Balanced returns a malformed-block error when src has an unterminated
// string or an unmatched bracket.
func Balanced(src string) error {
	s := New(src)
	for s.Next() {
		if s.Depth() < 0 {
			return diag.Malformed(src[s.Pos():], "unmatched closing bracket")
		}
	}
	if s.single || s.double {
		return diag.Malformed(src, "unterminated string literal")
	}
	if s.depth != 0 {
		return diag.Malformed(src, "unclosed bracket")
	}
	return nil
}

// Depth0 calls fn with the index of every byte outside strings whose
// nesting depth, measured before the byte is applied, is zero. Returning
// false stops the walk.
func Depth0(src string, fn func(i int) bool) {
	s := New(src)
	prev := 0
	for s.Next() {
		if prev == 0 && !s.InQuote() && !fn(s.Pos()) {
			return
		}
		prev = s.Depth()
	}
}
