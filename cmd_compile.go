package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vinodhalaharvi/formulac/compiler"
	"github.com/vinodhalaharvi/formulac/model"
)

func compileCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "compile <file.ts>",
		Short: "Compile a formula class to a flat expression",
		Long:  "Compile a formula class file (or - for stdin) to a flat formula expression.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			opts, err := a.options()
			if err != nil {
				return err
			}
			flat, err := compiler.CompileSource(src, opts...)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), flat)
			return nil
		},
	}
}

func decompileCmd(a *app) *cobra.Command {
	var (
		propsPath string
		className string
		outPath   string
	)
	cmd := &cobra.Command{
		Use:   "decompile [expr]",
		Short: "Decompile a flat expression to a formula class",
		Long: `Decompile a flat formula expression, given as an argument or on stdin, into a
formula class. Nested conditionals become numbered helper methods.

The properties file maps display names to a kind and an optional identifier:

  Done:
    type: checkbox
  Days Till Due:
    name: daysTillDue
    type: number`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			expr := "-"
			if len(args) == 1 {
				expr = args[0]
			}
			if expr == "-" {
				in, err := readInput(cmd, "-")
				if err != nil {
					return err
				}
				expr = in
			}
			expr = strings.TrimSpace(expr)

			metas, err := loadProps(propsPath)
			if err != nil {
				return err
			}
			opts, err := a.options()
			if err != nil {
				return err
			}
			if className != "" {
				opts = append(opts, compiler.WithClassName(className))
			}

			d, err := compiler.Decompile(cmd.Context(), expr, metas, opts...)
			if err != nil {
				return err
			}
			if outPath == "" {
				fmt.Fprint(cmd.OutOrStdout(), d.Source)
				return nil
			}
			if err := os.WriteFile(outPath, []byte(d.Source), 0o644); err != nil {
				return err
			}
			a.log.Info("wrote class", "path", outPath, "helpers", len(d.Helpers))
			return nil
		},
	}
	cmd.Flags().StringVarP(&propsPath, "props", "p", "", "properties file (YAML)")
	cmd.Flags().StringVar(&className, "class", "", "class name (overrides class.name)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the class to this file instead of stdout")
	return cmd
}

func loadProps(path string) ([]model.Meta, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	metas, err := model.LoadMeta(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return metas, nil
}
