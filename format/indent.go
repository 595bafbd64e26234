// Package format lays out generated DSL class source. Indenter is the
// built-in layout; Command hands the source to an external formatter such
// as prettier.
package format

import (
	"context"
	"strings"

	"github.com/vinodhalaharvi/formulac/scan"
)

// Indenter puts one statement per line and indents blocks by Width spaces.
// A closing brace stays on the line of a following else, ")" , ";" or ",".
// Input blank lines collapse to a single blank line.
type Indenter struct {
	Width int
}

// Format implements compiler.Formatter.
func (f Indenter) Format(_ context.Context, src string) (string, error) {
	width := f.Width
	if width <= 0 {
		width = 2
	}
	w := &writer{unit: strings.Repeat(" ", width)}

	var stack []byte // 'b' block brace, 'i' inline brace, '(' or '['
	inline := func() bool {
		for _, c := range stack {
			if c != 'b' {
				return true
			}
		}
		return false
	}

	s := scan.New(src)
	for s.Next() {
		c := s.Current()
		if s.InQuote() {
			w.write(c)
			continue
		}
		switch c {
		case '\n':
			w.inputNewline()
		case '\r', '\t', ' ':
			w.write(' ')
		case '(', '[':
			stack = append(stack, c)
			w.write(c)
		case ')', ']':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			w.write(c)
		case '{':
			if inline() || strings.HasPrefix(w.current(), "import") || strings.HasPrefix(w.current(), "export {") {
				stack = append(stack, 'i')
				w.write(c)
				continue
			}
			stack = append(stack, 'b')
			w.write(c)
			w.flush()
			w.depth++
		case '}':
			var top byte
			if len(stack) > 0 {
				top = stack[len(stack)-1]
				stack = stack[:len(stack)-1]
			}
			if top != 'b' {
				w.write(c)
				continue
			}
			w.flush()
			w.dropBlank()
			if w.depth > 0 {
				w.depth--
			}
			w.write(c)
			rest := strings.TrimLeft(s.Rest()[1:], " \t")
			switch {
			case strings.HasPrefix(rest, "else"):
				w.write(' ')
			case rest != "" && strings.ContainsRune("),;", rune(rest[0])):
			default:
				w.flush()
			}
		case ';':
			w.write(c)
			if !inline() {
				w.flush()
			}
		default:
			w.write(c)
		}
	}
	w.flush()
	return w.String(), nil
}

type writer struct {
	unit     string
	depth    int
	line     strings.Builder
	lines    []string
	newlines int // input newlines since the last emitted content
}

func (w *writer) current() string { return strings.TrimSpace(w.line.String()) }

func (w *writer) write(c byte) {
	if c == ' ' {
		cur := w.line.String()
		if cur == "" || strings.HasSuffix(cur, " ") {
			return
		}
	}
	w.line.WriteByte(c)
}

// flush ends the current line, if it has content.
func (w *writer) flush() {
	text := strings.TrimSpace(w.line.String())
	w.line.Reset()
	if text == "" {
		return
	}
	w.lines = append(w.lines, strings.Repeat(w.unit, w.depth)+text)
	w.newlines = 0
}

func (w *writer) inputNewline() {
	if w.current() != "" {
		w.flush()
		w.newlines = 1
		return
	}
	w.newlines++
	if w.newlines != 2 || len(w.lines) == 0 {
		return
	}
	if last := w.lines[len(w.lines)-1]; last != "" && !strings.HasSuffix(last, "{") {
		w.lines = append(w.lines, "")
	}
}

func (w *writer) dropBlank() {
	for len(w.lines) > 0 && w.lines[len(w.lines)-1] == "" {
		w.lines = w.lines[:len(w.lines)-1]
	}
}

func (w *writer) String() string {
	w.dropBlank()
	if len(w.lines) == 0 {
		return ""
	}
	return strings.Join(w.lines, "\n") + "\n"
}
