package grammar

import (
	"encoding/json"
	"fmt"
	"testing"
)

func TestClassFile(t *testing.T) {
	input := `
import { NotionFormulaGenerator } from './src/NotionFormulaGenerator';
import * as Model from './src/model';

// define DB properties here:
export class MyFirstFormula extends NotionFormulaGenerator {
    public myProperty = new Model.Checkbox('myProperty name');
    private readonly days: Model.Number = new Model.Number("Days");

    formula() {
        if (this.myProperty.value) {
            return { nested: 1 }.nested;
        }
        return 0;
    }

    nameOfFunction(): number {
        return 0; // a comment with } in it
    }

    public buildFunctionMap(): Map<string, string> {
        return new Map([
            ['nameOfFunction', this.nameOfFunction.toString()],
        ]);
    }
}

const formula = new MyFirstFormula();
console.log(formula.compile());
`
	parser, err := NewParser()
	if err != nil {
		t.Fatalf("failed to build parser: %v", err)
	}

	file, err := parser.ParseString("test.ts", input)
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}

	if len(file.Imports) != 2 {
		t.Fatalf("expected 2 imports, got %d", len(file.Imports))
	}
	if got := file.Imports[0].Clause.Names; len(got) != 1 || got[0] != "NotionFormulaGenerator" {
		t.Errorf("expected named import NotionFormulaGenerator, got %v", got)
	}
	if got := file.Imports[1].Clause.Namespace; got != "Model" {
		t.Errorf("expected namespace import Model, got %q", got)
	}

	class := file.Class
	if !class.Export || class.Name != "MyFirstFormula" {
		t.Fatalf("expected exported MyFirstFormula, got export=%v name=%q", class.Export, class.Name)
	}
	if len(class.Extends) != 1 || class.Extends[0] != "NotionFormulaGenerator" {
		t.Errorf("unexpected base %v", class.Extends)
	}
	if len(class.Members) != 5 {
		t.Fatalf("expected 5 members, got %d", len(class.Members))
	}

	prop := class.Members[0].Decl.Property
	if prop == nil || prop.Name != "myProperty" || prop.Ctor.Kind() != "Checkbox" || prop.Display != `'myProperty name'` {
		t.Errorf("unexpected first property %+v", prop)
	}
	days := class.Members[1]
	if len(days.Modifiers) != 2 || days.Decl.Property == nil || days.Decl.Property.Annotation.Kind() != "Number" {
		t.Errorf("unexpected second property %+v", days.Decl.Property)
	}

	formula := class.Members[2].Decl.Method
	if formula == nil || formula.Name != "formula" {
		t.Fatalf("expected formula method, got %+v", class.Members[2].Decl)
	}
	body := formula.Body.Text(input)
	want := `
        if (this.myProperty.value) {
            return { nested: 1 }.nested;
        }
        return 0;
    `
	if body != want {
		t.Errorf("formula body:\n got: %q\nwant: %q", body, want)
	}

	helper := class.Members[3].Decl.Method
	if helper.Result.Kind() != "number" {
		t.Errorf("expected number result, got %q", helper.Result.Kind())
	}

	registry := class.Members[4].Decl.Method
	if registry.Name != "buildFunctionMap" || len(registry.Result.Args) != 2 {
		t.Errorf("unexpected registry signature %+v", registry.Result)
	}

	out, _ := json.MarshalIndent(class.Members[0], "", "  ")
	t.Logf("✓ parsed member:\n%s", string(out))
}

func TestMethodParams(t *testing.T) {
	parser, err := NewParser()
	if err != nil {
		t.Fatalf("failed to build parser: %v", err)
	}

	file, err := parser.ParseString("", `class A { formula() { return 1; } scale(value: number, by): number[] { return value; } }`)
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	m := file.Class.Members[1].Decl.Method
	if len(m.Params) != 2 || m.Params[0].Name != "value" || m.Params[0].Type.Kind() != "number" || m.Params[1].Type != nil {
		t.Errorf("unexpected params %+v", m.Params)
	}
	if !m.Result.Array {
		t.Errorf("expected array result")
	}
	t.Logf("✓ %s(%d params)", m.Name, len(m.Params))
}

func TestParseErrors(t *testing.T) {
	parser, err := NewParser()
	if err != nil {
		t.Fatalf("failed to build parser: %v", err)
	}
	for _, input := range []string{
		`class { formula() { return 1; } }`,
		`class A { formula() { return 1; }`,
		`class A { public p = new Model.Text(); }`,
		`import from './x'; class A {}`,
	} {
		if _, err := parser.ParseString("", input); err == nil {
			t.Errorf("expected parse error for %q", input)
		} else {
			t.Logf("✓ %v", err)
		}
	}
}

func TestTokenize(t *testing.T) {
	toks, err := Tokenize(`this.done === 'it\'s' && x>=.5 // note`)
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	var got []string
	for _, tok := range toks {
		if !tok.Trivia() {
			got = append(got, fmt.Sprintf("%s:%s", tok.Kind, tok.Text))
		}
	}
	want := []string{
		"Ident:this", "Punct:.", "Ident:done", "Operator:===", `String:'it\'s'`,
		"Operator:&&", "Ident:x", "Operator:>=", "Number:.5",
	}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("tokens:\n got: %v\nwant: %v", got, want)
	}
	if last := toks[len(toks)-1]; last.Kind != Comment {
		t.Errorf("expected trailing comment, got %s", last.Kind)
	}
	if Join(toks) != `this.done === 'it\'s' && x>=.5 // note` {
		t.Errorf("Join does not restore the source")
	}

	uni, err := Tokenize(`this.díasRestantes+número2`)
	if err != nil {
		t.Fatalf("tokenize unicode: %v", err)
	}
	if len(uni) != 5 || uni[2].Kind != Ident || uni[2].Text != "díasRestantes" || uni[4].Text != "número2" {
		t.Errorf("unicode identifiers: %v", uni)
	}

	if _, err := Tokenize(`'open`); err == nil {
		t.Errorf("expected unterminated string error")
	}
}

func TestTokenNavigation(t *testing.T) {
	toks, err := Tokenize(`f( a , (b) )`)
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	if i := NextSignificant(toks, 2); toks[i].Text != "a" {
		t.Errorf("NextSignificant: got %q", toks[i].Text)
	}
	if i := PrevSignificant(toks, 4); toks[i].Text != "a" {
		t.Errorf("PrevSignificant: got %q", toks[i].Text)
	}
	if i := MatchToken(toks, 1); i != len(toks)-1 {
		t.Errorf("MatchToken: got %d, want %d", i, len(toks)-1)
	}
	if PrevSignificant(toks, 0) != -1 {
		t.Errorf("PrevSignificant before the start should be -1")
	}
}

func TestQuotes(t *testing.T) {
	tests := []struct {
		lit, want string
	}{
		{`'Done'`, `"Done"`},
		{`'say "hi"'`, `"say \"hi\""`},
		{`'it\'s'`, `"it's"`},
		{`"kept"`, `"kept"`},
		{"`tpl`", `"tpl"`},
	}
	for _, tt := range tests {
		got, err := Requote(tt.lit)
		if err != nil {
			t.Fatalf("Requote(%s): %v", tt.lit, err)
		}
		if got != tt.want {
			t.Errorf("Requote(%s) = %s, want %s", tt.lit, got, tt.want)
		}
	}
	if got := SingleQuote(`it's`); got != `'it\'s'` {
		t.Errorf("SingleQuote = %s", got)
	}
	if s, _ := Unquote(`'a\'b'`); s != "a'b" {
		t.Errorf("Unquote = %q", s)
	}
	t.Log("✓ quote conversions")
}
