package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/vinodhalaharvi/formulac/compiler"
	"github.com/vinodhalaharvi/formulac/node"
	"github.com/vinodhalaharvi/formulac/render"
)

func inspectCmd(a *app) *cobra.Command {
	var (
		expr      string
		propsPath string
		asTable   bool
	)
	cmd := &cobra.Command{
		Use:   "inspect [file.ts]",
		Short: "Show the formula tree of a class or a flat expression",
		Long: `Show the node tree the compiler builds, as JSON or as a table.

With a class file the tree is the forward one; with --expr it is the reverse
tree of a flat expression.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (expr == "") == (len(args) == 0) {
				return errors.New("inspect needs either a class file or --expr")
			}
			opts, err := a.options()
			if err != nil {
				return err
			}

			var root node.Node
			if expr != "" {
				metas, err := loadProps(propsPath)
				if err != nil {
					return err
				}
				if root, err = compiler.ReverseTree(expr, metas, opts...); err != nil {
					return err
				}
			} else {
				src, err := readInput(cmd, args[0])
				if err != nil {
					return err
				}
				class, err := compiler.ParseClass(src)
				if err != nil {
					return fmt.Errorf("%s: %w", args[0], err)
				}
				if root, err = compiler.Tree(class, opts...); err != nil {
					return fmt.Errorf("%s: %w", args[0], err)
				}
			}

			if asTable {
				fmt.Fprintln(cmd.OutOrStdout(), nodeTable(root))
				return nil
			}
			data, err := json.MarshalIndent(root, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	cmd.Flags().StringVarP(&expr, "expr", "e", "", "flat expression to inspect")
	cmd.Flags().StringVarP(&propsPath, "props", "p", "", "properties file for --expr")
	cmd.Flags().BoolVar(&asTable, "table", false, "print a node table instead of JSON")
	return cmd
}

// nodeTable lists the nodes depth first with their own text.
func nodeTable(root node.Node) string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Format.Footer = text.FormatDefault
	tbl.AppendHeader(table.Row{"Depth", "Kind", "Text"})
	rows := 0
	node.Walk(root, func(n node.Node, depth int) bool {
		tbl.AppendRow(table.Row{depth, strings.Repeat("  ", depth) + n.Kind().String(), ownText(n)})
		rows++
		return true
	})
	tbl.AppendFooter(table.Row{"", fmt.Sprintf("Total: %d nodes", rows), render.Flat(root)})
	return tbl.Render()
}

func ownText(n node.Node) string {
	switch n := n.(type) {
	case *node.Return:
		return n.Text
	case *node.Logic:
		return n.Prefix + "if(...)" + n.Suffix
	case *node.Wrapper:
		return strings.Join(n.Chunks, "...)") + "...)" + n.Tail
	case *node.Combination:
		var ops []string
		for i := 1; i < len(n.Parts); i += 2 {
			ops = append(ops, strings.TrimSpace(n.Parts[i].(*node.Return).Text))
		}
		return strings.Join(ops, " ")
	}
	return ""
}
