// Package model describes formula properties: their kinds, how display
// names map to DSL identifiers, and the catalog of built-in functions the
// substitution passes must leave unqualified.
package model

import (
	"fmt"
	"strings"
)

// Kind is a property type.
type Kind int

const (
	Text Kind = iota
	Number
	Checkbox
	Date
	Select
	MultiSelect
	Status
	Relation
	Rollup
	Formula
	Person
	File
	URL
	Email
	Phone
	CreatedTime
	CreatedBy
	LastEditedTime
	LastEditedBy
)

// dslNames are the Model class names used in generated declarations.
var dslNames = [...]string{
	Text:           "Text",
	Number:         "Number",
	Checkbox:       "Checkbox",
	Date:           "Date",
	Select:         "Select",
	MultiSelect:    "MultiSelect",
	Status:         "Status",
	Relation:       "Relation",
	Rollup:         "Rollup",
	Formula:        "Formula",
	Person:         "Person",
	File:           "File",
	URL:            "URL",
	Email:          "Email",
	Phone:          "Phone",
	CreatedTime:    "CreatedTime",
	CreatedBy:      "CreatedBy",
	LastEditedTime: "LastEditedTime",
	LastEditedBy:   "LastEditedBy",
}

// String returns the Model class name of the kind.
func (k Kind) String() string {
	if k >= 0 && int(k) < len(dslNames) {
		return dslNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// apiAliases maps Notion API type names that do not camel-case onto a kind.
var apiAliases = map[string]Kind{
	"rich_text":    Text,
	"title":        Text,
	"string":       Text,
	"url":          URL,
	"phone_number": Phone,
	"files":        File,
	"people":       Person,
	"boolean":      Checkbox,
}

// ParseKind accepts a Model class name (MultiSelect) or a Notion API type
// name (multi_select, rich_text).
func ParseKind(name string) (Kind, error) {
	key := strings.TrimSpace(name)
	if k, ok := apiAliases[strings.ToLower(key)]; ok {
		return k, nil
	}
	camel := UpperCamel(key)
	for k, n := range dslNames {
		if strings.EqualFold(n, camel) {
			return Kind(k), nil
		}
	}
	return Text, fmt.Errorf("unknown property kind %q", name)
}

// MarshalText encodes the kind by its Model class name.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText decodes any name accepted by ParseKind.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
