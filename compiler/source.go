package compiler

import (
	"fmt"
	"sync"

	"github.com/vinodhalaharvi/formulac/grammar"
	"github.com/vinodhalaharvi/formulac/model"
)

const (
	formulaMethod  = "formula"
	registryMethod = "buildFunctionMap"
)

var classParser = sync.OnceValues(grammar.NewParser)

// CompileSource parses a class file and compiles it.
func CompileSource(src string, opts ...Option) (string, error) {
	class, err := ParseClass(src)
	if err != nil {
		return "", err
	}
	return Compile(class, opts...)
}

// ParseClass reads a class file. Properties come from declarations such as
//
//	public done = new Model.Checkbox('Done');
//
// and helpers from the names buildFunctionMap registers. Without a
// buildFunctionMap every parameterless method other than formula is a
// helper.
func ParseClass(src string) (Class, error) {
	parser, err := classParser()
	if err != nil {
		return Class{}, fmt.Errorf("build parser: %w", err)
	}
	file, err := parser.ParseString("", src)
	if err != nil {
		return Class{}, fmt.Errorf("parse class: %w", err)
	}

	class := Class{Name: file.Class.Name}
	methods := make(map[string]*grammar.Method)
	var order []string
	var registry []string
	hasFormula, hasRegistry := false, false

	for _, m := range file.Class.Members {
		switch {
		case m.Decl.Property != nil:
			p := m.Decl.Property
			kind, err := model.ParseKind(p.Ctor.Kind())
			if err != nil {
				return Class{}, fmt.Errorf("property %s: %w", p.Name, err)
			}
			display, err := grammar.Unquote(p.Display)
			if err != nil {
				return Class{}, fmt.Errorf("property %s: %w", p.Name, err)
			}
			class.Properties = append(class.Properties, model.Descriptor{Identifier: p.Name, DisplayName: display, Kind: kind})

		case m.Decl.Method != nil:
			meth := m.Decl.Method
			body := meth.Body.Text(src)
			switch meth.Name {
			case formulaMethod:
				class.Formula, hasFormula = body, true
			case registryMethod:
				if registry, err = registeredNames(body); err != nil {
					return Class{}, fmt.Errorf("%s: %w", registryMethod, err)
				}
				hasRegistry = true
			case "constructor":
			default:
				if _, dup := methods[meth.Name]; dup {
					return Class{}, fmt.Errorf("method %s declared twice", meth.Name)
				}
				methods[meth.Name] = meth
				order = append(order, meth.Name)
			}
		}
	}
	if !hasFormula {
		return Class{}, fmt.Errorf("class %s has no %s() method", class.Name, formulaMethod)
	}

	if !hasRegistry {
		for _, name := range order {
			if len(methods[name].Params) == 0 {
				registry = append(registry, name)
			}
		}
	}
	for _, name := range registry {
		meth, ok := methods[name]
		if !ok {
			return Class{}, fmt.Errorf("%s registers %s, which is not a method", registryMethod, name)
		}
		if len(meth.Params) > 0 {
			return Class{}, fmt.Errorf("helper %s takes no parameters", name)
		}
		class.Helpers = append(class.Helpers, Helper{Name: name, Body: meth.Body.Text(src)})
	}
	return class, nil
}

// registeredNames reads the helper names of a buildFunctionMap body:
//
//	return new Map([['func1', this.func1.toString()]]);
func registeredNames(body string) ([]string, error) {
	toks, err := grammar.Tokenize(body)
	if err != nil {
		return nil, err
	}
	var sig []grammar.Token
	for _, t := range toks {
		if !t.Trivia() {
			sig = append(sig, t)
		}
	}

	var names []string
	for i := 0; i+4 < len(sig); i++ {
		if sig[i].Kind != grammar.String || !sig[i+1].Is(grammar.Punct, ",") ||
			!sig[i+2].Is(grammar.Ident, "this") || !sig[i+3].Is(grammar.Punct, ".") || sig[i+4].Kind != grammar.Ident {
			continue
		}
		key, err := grammar.Unquote(sig[i].Text)
		if err != nil {
			return nil, err
		}
		if key != sig[i+4].Text {
			return nil, fmt.Errorf("entry %q names method %s", key, sig[i+4].Text)
		}
		names = append(names, key)
	}
	return names, nil
}
