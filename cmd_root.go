package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vinodhalaharvi/formulac/compiler"
	"github.com/vinodhalaharvi/formulac/config"
	"github.com/vinodhalaharvi/formulac/diag"
	"github.com/vinodhalaharvi/formulac/format"
)

// app carries what the subcommands share once flags are parsed.
type app struct {
	configPath string
	logLevel   string

	cfg *config.Config
	log *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "formulac",
		Short:         "Compile formula classes to flat formula expressions and back",
		Long:          "formulac compiles a class-based formula DSL into the flat if(cond,a,b) formula grammar,\nand decompiles flat expressions into classes with extracted helper methods.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default is ./.formulac.yaml or $HOME/.formulac.yaml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(
		compileCmd(a),
		decompileCmd(a),
		checkCmd(a),
		inspectCmd(a),
		versionCmd(),
	)
	return root
}

func (a *app) load(stderr io.Writer) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	a.cfg = cfg
	a.log = diag.NewLogger(stderr, cfg.Log.Level)
	return nil
}

// options turns the loaded configuration into compiler options.
func (a *app) options() ([]compiler.Option, error) {
	var f compiler.Formatter = format.Indenter{Width: a.cfg.Format.Indent}
	if a.cfg.Format.Command != "" {
		c, err := format.ParseCommand(a.cfg.Format.Command)
		if err != nil {
			return nil, err
		}
		f = c
	}
	return []compiler.Option{
		compiler.WithLogger(a.log),
		compiler.WithClass(a.cfg.Class),
		compiler.WithFormatter(f),
	}, nil
}

// readInput returns the contents of path, or stdin for "-".
func readInput(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "formulac v%s\n", version)
		},
	}
}
