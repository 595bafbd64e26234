package grammar

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/vinodhalaharvi/formulac/diag"
)

// Kind classifies a token of formula text.
type Kind int

const (
	Ident Kind = iota
	Number
	String
	Operator
	Brace
	Punct
	Space
	Comment
	Other
)

var kindNames = [...]string{"Ident", "Number", "String", "Operator", "Brace", "Punct", "Space", "Comment", "Other"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token is one lexeme with its byte offset in the source.
type Token struct {
	Kind   Kind
	Text   string
	Offset int
}

// Is reports whether the token has the given kind and text.
func (t Token) Is(kind Kind, text string) bool { return t.Kind == kind && t.Text == text }

// IsWord reports whether the token is an identifier or a number.
func (t Token) IsWord() bool { return t.Kind == Ident || t.Kind == Number }

// Trivia reports whether the token is whitespace or a comment.
func (t Token) Trivia() bool { return t.Kind == Space || t.Kind == Comment }

var kinds = func() map[lexer.TokenType]Kind {
	sym := formulaLexer.Symbols()
	return map[lexer.TokenType]Kind{
		sym["Ident"]:      Ident,
		sym["Number"]:     Number,
		sym["String"]:     String,
		sym["Op"]:         Operator,
		sym["Brace"]:      Brace,
		sym["Punct"]:      Punct,
		sym["Whitespace"]: Space,
		sym["Comment"]:    Comment,
		sym["Other"]:      Other,
	}
}()

// Tokenize splits formula or DSL text into tokens. Whitespace and comments
// are kept so callers can decide how to compact them.
func Tokenize(src string) ([]Token, error) {
	lex, err := formulaLexer.LexString("", src)
	if err != nil {
		return nil, fmt.Errorf("tokenize: %w", err)
	}
	var out []Token
	for {
		tok, err := lex.Next()
		if err != nil {
			return nil, fmt.Errorf("tokenize: %w", err)
		}
		if tok.EOF() {
			return out, nil
		}
		t := Token{Kind: kinds[tok.Type], Text: tok.Value, Offset: tok.Pos.Offset}
		if t.Kind == Other && strings.ContainsAny(t.Text, "\"'`") {
			return nil, diag.Malformed(src[t.Offset:], "unterminated string literal")
		}
		out = append(out, t)
	}
}

// Join concatenates token texts.
func Join(toks []Token) string {
	var b strings.Builder
	for _, t := range toks {
		b.WriteString(t.Text)
	}
	return b.String()
}

// NextSignificant returns the index of the first non-trivia token at or
// after i, or len(toks).
func NextSignificant(toks []Token, i int) int {
	for i < len(toks) && toks[i].Trivia() {
		i++
	}
	return i
}

// PrevSignificant returns the index of the last non-trivia token before i,
// or -1.
func PrevSignificant(toks []Token, i int) int {
	i--
	for i >= 0 && toks[i].Trivia() {
		i--
	}
	return i
}

// MatchToken returns the index of the token closing the bracket at open,
// or -1.
func MatchToken(toks []Token, open int) int {
	if open < 0 || open >= len(toks) {
		return -1
	}
	var closer string
	switch toks[open].Text {
	case "(":
		closer = ")"
	case "{":
		closer = "}"
	case "[":
		closer = "]"
	default:
		return -1
	}
	opener := toks[open].Text
	depth := 0
	for i := open; i < len(toks); i++ {
		switch toks[i].Text {
		case opener:
			if toks[i].Kind != String {
				depth++
			}
		case closer:
			if toks[i].Kind != String {
				depth--
				if depth == 0 {
					return i
				}
			}
		}
	}
	return -1
}

// ---------------------------------------------------------------------------
// String literals
// ---------------------------------------------------------------------------

// Unquote returns the contents of a string literal in any of the three
// quote styles.
func Unquote(lit string) (string, error) {
	if len(lit) < 2 {
		return "", fmt.Errorf("invalid string literal %q", lit)
	}
	switch lit[0] {
	case '"', '`':
		return strconv.Unquote(lit)
	case '\'':
		body := lit[1 : len(lit)-1]
		body = strings.ReplaceAll(body, `\'`, `'`)
		body = strings.ReplaceAll(body, `"`, `\"`)
		return strconv.Unquote(`"` + body + `"`)
	}
	return "", fmt.Errorf("invalid string literal %q", lit)
}

// DoubleQuote renders s as a double-quoted literal.
func DoubleQuote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// SingleQuote renders s as a single-quoted literal.
func SingleQuote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`)
	return "'" + r.Replace(s) + "'"
}

// Requote converts a string literal in any quote style to double quotes.
func Requote(lit string) (string, error) {
	if strings.HasPrefix(lit, `"`) {
		return lit, nil
	}
	s, err := Unquote(lit)
	if err != nil {
		return "", err
	}
	return DoubleQuote(s), nil
}
