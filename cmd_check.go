package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/vinodhalaharvi/formulac/compiler"
	"github.com/vinodhalaharvi/formulac/model"
)

// errMismatch is returned by check when a round trip changes the formula.
var errMismatch = errors.New("round trip changed the formula")

func checkCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check <file.ts>...",
		Short: "Compile, decompile and compile again, comparing the results",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := a.options()
			if err != nil {
				return err
			}
			failed := 0
			for _, path := range args {
				ok, err := a.check(cmd, path, opts)
				if err != nil {
					return err
				}
				if !ok {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%w in %d of %d file(s)", errMismatch, failed, len(args))
			}
			return nil
		},
	}
}

func (a *app) check(cmd *cobra.Command, path string, opts []compiler.Option) (bool, error) {
	out := cmd.OutOrStdout()
	src, err := readInput(cmd, path)
	if err != nil {
		return false, err
	}
	class, err := compiler.ParseClass(src)
	if err != nil {
		return false, fmt.Errorf("%s: %w", path, err)
	}
	flat, err := compiler.Compile(class, opts...)
	if err != nil {
		return false, fmt.Errorf("%s: %w", path, err)
	}

	metas := make([]model.Meta, len(class.Properties))
	for i, p := range class.Properties {
		metas[i] = model.Meta{DisplayName: p.DisplayName, Hint: p.Identifier, Kind: p.Kind}
	}
	d, err := compiler.Decompile(cmd.Context(), flat, metas, append(opts, compiler.WithClassName(class.Name))...)
	if err != nil {
		return false, fmt.Errorf("%s: decompile: %w", path, err)
	}
	again, err := compiler.CompileSource(d.Source, opts...)
	if err != nil {
		return false, fmt.Errorf("%s: recompile: %w", path, err)
	}

	if again == flat {
		color.New(color.FgGreen).Fprintf(out, "✓ %s\n", path)
		fmt.Fprintf(out, "  %s\n", flat)
		return true, nil
	}
	color.New(color.FgRed).Fprintf(out, "✗ %s\n", path)
	printDiff(out, flat, again)
	return false, nil
}

// printDiff writes a character diff from want to got.
func printDiff(w io.Writer, want, got string) {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(want, got, false))
	fmt.Fprintf(w, "  want: %s\n", want)
	fmt.Fprintf(w, "   got: %s\n", got)
	fmt.Fprintf(w, "  diff: %s\n", dmp.DiffPrettyText(diffs))
}
