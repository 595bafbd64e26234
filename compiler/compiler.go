// Package compiler is the public face of formulac. Compile and
// CompileSource turn a DSL formula class into a flat formula expression;
// Decompile turns a flat expression back into a DSL class, pulling every
// nested conditional out into a numbered helper method.
//
//	flat, err := compiler.CompileSource(src)
//	class, err := compiler.Decompile(ctx, `round(if(prop("Done"),1,0))`, metas)
//
// Calls share no state and are safe to run concurrently.
package compiler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vinodhalaharvi/formulac/config"
	"github.com/vinodhalaharvi/formulac/diag"
	"github.com/vinodhalaharvi/formulac/format"
	"github.com/vinodhalaharvi/formulac/helpers"
	"github.com/vinodhalaharvi/formulac/model"
	"github.com/vinodhalaharvi/formulac/node"
	"github.com/vinodhalaharvi/formulac/prepass"
	"github.com/vinodhalaharvi/formulac/render"
	"github.com/vinodhalaharvi/formulac/tree"
)

// Helper is a helper method of a class: a name and the source of its body.
type Helper = helpers.Helper

// Class is a DSL formula class with its method bodies given as source.
type Class struct {
	Name       string
	Properties []model.Descriptor
	Formula    string
	Helpers    []Helper
}

// Decompiled is the result of Decompile.
type Decompiled struct {
	// Source is the formatted class file.
	Source string
	// Formula is the body of the formula() method.
	Formula string
	// Helpers are the extracted helper methods, highest index first.
	Helpers []Helper
	// Properties are the declared properties, including any the
	// expression referenced without a description.
	Properties []model.Descriptor
}

// Formatter lays out generated class source.
type Formatter interface {
	Format(ctx context.Context, src string) (string, error)
}

// Option configures Compile and Decompile.
type Option func(*options)

type options struct {
	log       *slog.Logger
	formatter Formatter
	class     config.ClassConfig
}

func newOptions(opts []Option) *options {
	d := config.Default()
	o := &options{
		log:       diag.Discard(),
		formatter: format.Indenter{Width: d.Format.Indent},
		class:     d.Class,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets the logger for warnings and debug traces.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = diag.OrDiscard(l) }
}

// WithFormatter replaces the default indenter for decompiled source.
func WithFormatter(f Formatter) Option {
	return func(o *options) {
		if f != nil {
			o.formatter = f
		}
	}
}

// WithClass sets the class name and import paths of decompiled source.
// Empty fields keep their defaults.
func WithClass(c config.ClassConfig) Option {
	return func(o *options) {
		if c.Name != "" {
			o.class.Name = c.Name
		}
		if c.GeneratorImport != "" {
			o.class.GeneratorImport = c.GeneratorImport
		}
		if c.ModelImport != "" {
			o.class.ModelImport = c.ModelImport
		}
		if c.ModelNamespace != "" {
			o.class.ModelNamespace = c.ModelNamespace
		}
	}
}

// WithClassName sets the name of the decompiled class.
func WithClassName(name string) Option {
	return WithClass(config.ClassConfig{Name: name})
}

// Compile lowers class to a flat formula expression. Helper calls are
// inlined callees first; a cycle between helpers is an
// ErrUnresolvableReference.
func Compile(class Class, opts ...Option) (string, error) {
	o := newOptions(opts)
	root, err := forward(class, o)
	if err != nil {
		return "", err
	}
	flat := render.Flat(root)
	o.log.Debug("compiled", "class", class.Name, "nodes", node.Count(root), "formula", flat)
	return flat, nil
}

// Tree returns the node tree Compile renders.
func Tree(class Class, opts ...Option) (node.Node, error) {
	return forward(class, newOptions(opts))
}

func forward(class Class, o *options) (node.Node, error) {
	table, err := model.NewTable(class.Properties)
	if err != nil {
		return nil, fmt.Errorf("class %s: %w", class.Name, err)
	}

	lower := func(body string, lowered map[string]string) (string, error) {
		return prepass.Lower(body, prepass.Env{Props: table, Helpers: lowered, Logger: o.log})
	}
	funcs := make([]helpers.Func, len(class.Helpers))
	for i, h := range class.Helpers {
		funcs[i] = helpers.Func{Name: h.Name, Body: h.Body}
	}
	lowered, err := helpers.Inline(funcs, lower, o.log)
	if err != nil {
		return nil, err
	}

	text, err := lower(class.Formula, lowered)
	if err != nil {
		return nil, fmt.Errorf("formula: %w", err)
	}
	return tree.Build(text, tree.WithLogger(o.log))
}

// Decompile raises a flat expression into a DSL class. props describes the
// properties the expression may reference; unknown display names are
// declared as formula properties with a warning.
func Decompile(ctx context.Context, expr string, props []model.Meta, opts ...Option) (*Decompiled, error) {
	o := newOptions(opts)
	root, declared, err := reverse(expr, props, o)
	if err != nil {
		return nil, err
	}

	reg := &render.Registry{}
	body := render.DSL(root, reg)
	body, extracted, err := helpers.Extract(body, reg.Helpers(), o.log)
	if err != nil {
		return nil, err
	}

	d := &Decompiled{
		Formula:    body,
		Helpers:    extracted,
		Properties: declared,
	}
	src, err := emit(o.class, d)
	if err != nil {
		return nil, err
	}
	if d.Source, err = o.formatter.Format(ctx, src); err != nil {
		return nil, fmt.Errorf("format class: %w", err)
	}
	return d, nil
}

// ReverseTree returns the node tree Decompile renders, over the raised
// expression text.
func ReverseTree(expr string, props []model.Meta, opts ...Option) (node.Node, error) {
	root, _, err := reverse(expr, props, newOptions(opts))
	return root, err
}

func reverse(expr string, props []model.Meta, o *options) (node.Node, []model.Descriptor, error) {
	raised, err := prepass.Raise(expr, model.Resolve(props), o.log)
	if err != nil {
		return nil, nil, err
	}
	root, err := tree.BuildReverse(raised.Text, tree.WithLogger(o.log))
	if err != nil {
		return nil, nil, err
	}
	return root, raised.Properties, nil
}
