package model

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Descriptor binds a DSL identifier to a property display name.
type Descriptor struct {
	Identifier  string `json:"identifier" yaml:"identifier"`
	DisplayName string `json:"displayName" yaml:"displayName"`
	Kind        Kind   `json:"kind" yaml:"kind"`
}

// Builtins are the properties every formula class inherits.
var Builtins = []Descriptor{
	{Identifier: "createdTime", DisplayName: "Created Time", Kind: CreatedTime},
	{Identifier: "createdBy", DisplayName: "Created By", Kind: CreatedBy},
	{Identifier: "lastEditedTime", DisplayName: "Last Edited Time", Kind: LastEditedTime},
	{Identifier: "lastEditedBy", DisplayName: "Last Edited By", Kind: LastEditedBy},
}

// Table indexes descriptors both ways. Declared descriptors shadow the
// built-in ones.
type Table struct {
	declared  []Descriptor
	byIdent   map[string]Descriptor
	byDisplay map[string]Descriptor
}

// NewTable builds a Table from declared descriptors. Duplicate identifiers
// are an error.
func NewTable(declared []Descriptor) (*Table, error) {
	t := &Table{
		byIdent:   make(map[string]Descriptor),
		byDisplay: make(map[string]Descriptor),
	}
	for _, d := range Builtins {
		t.byIdent[d.Identifier] = d
		t.byDisplay[d.DisplayName] = d
	}
	seen := make(map[string]bool)
	for _, d := range declared {
		if d.Identifier == "" {
			return nil, fmt.Errorf("property %q has no identifier", d.DisplayName)
		}
		if seen[d.Identifier] {
			return nil, fmt.Errorf("duplicate property identifier %q", d.Identifier)
		}
		seen[d.Identifier] = true
		t.declared = append(t.declared, d)
		t.byIdent[d.Identifier] = d
		t.byDisplay[d.DisplayName] = d
	}
	return t, nil
}

// ByIdentifier resolves a DSL identifier.
func (t *Table) ByIdentifier(id string) (Descriptor, bool) {
	d, ok := t.byIdent[id]
	return d, ok
}

// ByDisplayName resolves a display name.
func (t *Table) ByDisplayName(name string) (Descriptor, bool) {
	d, ok := t.byDisplay[name]
	return d, ok
}

// Declared returns the declared descriptors in declaration order.
func (t *Table) Declared() []Descriptor { return t.declared }

// Identifiers returns every identifier the table resolves, declared first.
func (t *Table) Identifiers() []string {
	ids := make([]string, 0, len(t.byIdent))
	for _, d := range t.declared {
		ids = append(ids, d.Identifier)
	}
	for _, d := range Builtins {
		if t.byIdent[d.Identifier] == d {
			ids = append(ids, d.Identifier)
		}
	}
	return ids
}

// IsBuiltin reports whether d is one of the inherited properties.
func IsBuiltin(d Descriptor) bool {
	for _, b := range Builtins {
		if b == d {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Decompile metadata
// ---------------------------------------------------------------------------

// Meta is the property metadata a caller supplies when decompiling: the
// display name, an optional identifier hint and the kind.
type Meta struct {
	DisplayName string
	Hint        string
	Kind        Kind
}

// Resolve turns metadata into descriptors. Identifiers come from the hint,
// or from the camel-cased display name. A derived identifier that is
// already taken gets a numeric suffix: "Days Left" and "days-left" become
// daysLeft and daysLeft2. Hints are used as given.
func Resolve(metas []Meta) []Descriptor {
	taken := make(map[string]bool, len(metas))
	for _, m := range metas {
		if m.Hint != "" {
			taken[m.Hint] = true
		}
	}
	out := make([]Descriptor, 0, len(metas))
	for _, m := range metas {
		id := m.Hint
		if id == "" {
			base := LowerCamel(m.DisplayName)
			id = base
			for n := 2; taken[id]; n++ {
				id = fmt.Sprintf("%s%d", base, n)
			}
			taken[id] = true
		}
		out = append(out, Descriptor{Identifier: id, DisplayName: m.DisplayName, Kind: m.Kind})
	}
	return out
}

// metaEntry is one value of a properties file.
type metaEntry struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// LoadMeta reads a properties file: a YAML (or JSON) mapping from display
// name to {name, type}, in file order.
//
//	Done:
//	  type: checkbox
//	Days Till Due:
//	  name: daysTillDue
//	  type: number
func LoadMeta(r io.Reader) ([]Meta, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode properties: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("properties: expected a mapping at line %d", root.Line)
	}

	metas := make([]Meta, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		var entry metaEntry
		switch val.Kind {
		case yaml.ScalarNode:
			entry.Type = val.Value
		default:
			if err := val.Decode(&entry); err != nil {
				return nil, fmt.Errorf("property %q: %w", key.Value, err)
			}
		}
		kind, err := ParseKind(entry.Type)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", key.Value, err)
		}
		metas = append(metas, Meta{DisplayName: key.Value, Hint: entry.Name, Kind: kind})
	}
	return metas, nil
}
