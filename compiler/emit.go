package compiler

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/vinodhalaharvi/formulac/config"
	"github.com/vinodhalaharvi/formulac/grammar"
	"github.com/vinodhalaharvi/formulac/model"
)

// Templates for the generated class. ${Name} is replaced by a binding and
// ${Name | transform} applies a transform to it first.
const (
	classTemplate = `import { ${Generator} } from ${GeneratorImport | quote};
import * as ${Namespace} from ${ModelImport | quote};

class ${Name} extends ${Generator} {
${Members}
}
`
	propertyTemplate = `public ${Identifier} = new ${Namespace}.${Kind}(${DisplayName | quote});`
	methodTemplate   = `${Name}() { ${Body} }`
	registryTemplate = `public buildFunctionMap(): Map<string, string> { return new Map([${Entries}]); }`
	entryTemplate    = `[${Name | quote}, this.${Name}.toString()]`
)

var placeholder = regexp.MustCompile(`\$\{(\w+)(?:\s*\|\s*(\w+))?\}`)

type bindings map[string]string

// interpolate fills every placeholder of text. An unbound name or an
// unknown transform is an error.
func interpolate(text string, b bindings) (string, error) {
	var err error
	out := placeholder.ReplaceAllStringFunc(text, func(match string) string {
		parts := placeholder.FindStringSubmatch(match)
		val, ok := b[parts[1]]
		if !ok {
			err = fmt.Errorf("template: unbound placeholder %s", match)
			return match
		}
		if parts[2] == "" {
			return val
		}
		transformed, terr := applyTransform(val, parts[2])
		if terr != nil {
			err = terr
			return match
		}
		return transformed
	})
	return out, err
}

func applyTransform(s, transform string) (string, error) {
	switch transform {
	case "quote":
		return grammar.SingleQuote(s), nil
	case "camel":
		return model.LowerCamel(s), nil
	case "pascal":
		return model.UpperCamel(s), nil
	case "lower":
		return strings.ToLower(s), nil
	case "upper":
		return strings.ToUpper(s), nil
	}
	return "", fmt.Errorf("template: unknown transform %q", transform)
}

// emit renders the unformatted class source of d.
func emit(c config.ClassConfig, d *Decompiled) (string, error) {
	ns := c.ModelNamespace
	var members []string

	if len(d.Properties) > 0 {
		props := make([]string, 0, len(d.Properties))
		for _, p := range d.Properties {
			line, err := interpolate(propertyTemplate, bindings{
				"Identifier":  p.Identifier,
				"Namespace":   ns,
				"Kind":        p.Kind.String(),
				"DisplayName": p.DisplayName,
			})
			if err != nil {
				return "", err
			}
			props = append(props, line)
		}
		members = append(members, strings.Join(props, "\n"))
	}

	method := func(name, body string) (string, error) {
		return interpolate(methodTemplate, bindings{"Name": name, "Body": body})
	}
	formula, err := method("formula", d.Formula)
	if err != nil {
		return "", err
	}
	members = append(members, formula)

	entries := make([]string, 0, len(d.Helpers))
	for _, h := range d.Helpers {
		m, err := method(h.Name, h.Body)
		if err != nil {
			return "", err
		}
		members = append(members, m)
		entry, err := interpolate(entryTemplate, bindings{"Name": h.Name})
		if err != nil {
			return "", err
		}
		entries = append(entries, entry)
	}
	if len(entries) > 0 {
		reg, err := interpolate(registryTemplate, bindings{"Entries": strings.Join(entries, ", ")})
		if err != nil {
			return "", err
		}
		members = append(members, reg)
	}

	return interpolate(classTemplate, bindings{
		"Generator":       generatorName(c.GeneratorImport),
		"GeneratorImport": c.GeneratorImport,
		"Namespace":       ns,
		"ModelImport":     c.ModelImport,
		"Name":            c.Name,
		"Members":         strings.Join(members, "\n\n"),
	})
}

// generatorName is the exported base class name: the last path element of
// its import without an extension.
func generatorName(importPath string) string {
	base := path.Base(importPath)
	return strings.TrimSuffix(base, path.Ext(base))
}
