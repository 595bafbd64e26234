// Package grammar defines the lexer shared by both formula grammars and the
// typed AST for DSL class files.
//
// A class file is the TypeScript-flavoured source a formula author writes:
//
//	import { NotionFormulaGenerator } from './src/NotionFormulaGenerator';
//	import * as Model from './src/model';
//
//	class MyFormula extends NotionFormulaGenerator {
//	    public done = new Model.Checkbox('Done');
//	    formula() { return this.done ? 1 : 0; }
//	}
//
// The grammar only captures structure: imports, property declarations and
// method signatures. Method bodies are kept as raw source spans (see
// Block.Text) and handed to the compiler untouched.
package grammar

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// ---------------------------------------------------------------------------
// Lexer — strings in three quote styles, multi-char operators, comments
// ---------------------------------------------------------------------------

var formulaLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*|/\*(?s:.*?)\*/`},
	{Name: "String", Pattern: `"(?:[^"\\\n]|\\.)*"|'(?:[^'\\\n]|\\.)*'|` + "`[^`]*`"},
	{Name: "Number", Pattern: `(?:\d+(?:\.\d+)?|\.\d+)(?:[eE][+-]?\d+)?`},
	{Name: "Ident", Pattern: `[\p{L}_$][\p{L}\p{Nd}_$]*`},
	{Name: "Op", Pattern: `===|!==|==|!=|<=|>=|=>|&&|\|\||\*\*|[-+*/%^<>!=&|?]`},
	{Name: "Brace", Pattern: `[{}]`},
	{Name: "Punct", Pattern: `[()\[\],.;:]`},
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Other", Pattern: `.`},
})

// ---------------------------------------------------------------------------
// Top-level
// ---------------------------------------------------------------------------

// File is the root of a DSL class file.
type File struct {
	Pos     lexer.Position
	Imports []*Import `@@*`
	Class   *Class    `@@`
	Rest    []string  `@( Ident | String | Number | Op | Brace | Punct | Other )*`
}

// Import: import { A, B } from '...'; or import * as M from '...';
type Import struct {
	Pos    lexer.Position
	Clause *ImportClause `"import" @@`
	From   string        `"from" @String ";"?`
}

// ImportClause is the part between import and from.
type ImportClause struct {
	Pos       lexer.Position
	Names     []string `  "{" @Ident ( "," @Ident )* ","? "}"`
	Namespace string   `| "*" "as" @Ident`
	Default   string   `| @Ident`
}

// Class: export? class Name extends Base { members }
type Class struct {
	Pos     lexer.Position
	Export  bool      `@"export"? "default"?`
	Name    string    `"class" @Ident`
	Extends []string  `( "extends" @Ident ( "." @Ident )* )?`
	Members []*Member `"{" @@* "}" ";"?`
}

// ---------------------------------------------------------------------------
// Members
// ---------------------------------------------------------------------------

// Member is one property or method declaration.
type Member struct {
	Pos       lexer.Position
	Modifiers []string `@( "public" | "private" | "protected" | "readonly" | "static" | "async" | "override" )*`
	Decl      *Decl    `@@`
}

// Decl — ordered for participle's PEG-style parsing; properties and methods
// share a leading identifier.
type Decl struct {
	Pos      lexer.Position
	Property *Property `  @@`
	Method   *Method   `| @@`
}

// Property: done = new Model.Checkbox('Done');
type Property struct {
	Pos        lexer.Position
	Name       string   `@Ident`
	Annotation *TypeRef `( ":" @@ )?`
	Ctor       *TypeRef `"=" "new" @@`
	Display    string   `"(" @String ")" ";"?`
}

// Method: name(params): Result { body }
type Method struct {
	Pos    lexer.Position
	Name   string   `@Ident`
	Params []*Param `"(" ( @@ ( "," @@ )* )? ")"`
	Result *TypeRef `( ":" @@ )?`
	Body   *Block   `@@`
}

// Param is a method parameter with an optional annotation.
type Param struct {
	Pos  lexer.Position
	Name string   `@Ident`
	Type *TypeRef `( ":" @@ )?`
}

// TypeRef: Model.Formula<number>, string[], A | B
type TypeRef struct {
	Pos   lexer.Position
	Name  []string   `@Ident ( "." @Ident )*`
	Args  []*TypeRef `( "<" @@ ( "," @@ )* ">" )?`
	Array bool       `@( "[" "]" )?`
	Union []*TypeRef `( "|" @@ )*`
}

// Block is a brace-delimited body. Nested blocks are captured so the closing
// brace can be located; everything else is skipped.
type Block struct {
	Pos    lexer.Position
	Blocks []*Block `"{" ( @@ | Ident | String | Number | Op | Punct | Other )*`
	Close  *Closer  `@@`
}

// Closer records the position of a block's closing brace.
type Closer struct {
	Pos   lexer.Position
	Brace string `@"}"`
}

// Text returns the source between the block's braces.
func (b *Block) Text(src string) string {
	start, end := b.Pos.Offset+1, b.Close.Pos.Offset
	if start < 0 || end > len(src) || start > end {
		return ""
	}
	return src[start:end]
}

// Kind returns the last segment of a type reference (Checkbox for
// Model.Checkbox).
func (t *TypeRef) Kind() string {
	if t == nil || len(t.Name) == 0 {
		return ""
	}
	return t.Name[len(t.Name)-1]
}

// ---------------------------------------------------------------------------
// Parser constructor
// ---------------------------------------------------------------------------

// NewParser builds the participle parser for class files.
func NewParser() (*participle.Parser[File], error) {
	return participle.Build[File](
		participle.Lexer(formulaLexer),
		participle.UseLookahead(5),
		participle.Elide("Comment", "Whitespace"),
	)
}
