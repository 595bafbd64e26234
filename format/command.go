package format

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrEmptyCommand is returned by Command.Format when no program is set.
var ErrEmptyCommand = errors.New("format: empty command")

// Command pipes source through an external formatter: the source goes to
// the program's stdin and its stdout is the result.
//
//	format.Command{Name: "prettier", Args: []string{"--parser", "typescript"}}
type Command struct {
	Name string
	Args []string
}

// ParseCommand splits a command line on whitespace.
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, ErrEmptyCommand
	}
	return Command{Name: fields[0], Args: fields[1:]}, nil
}

// Format implements compiler.Formatter.
func (c Command) Format(ctx context.Context, src string) (string, error) {
	if c.Name == "" {
		return "", ErrEmptyCommand
	}
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Stdin = strings.NewReader(src)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("format: %s: %w: %s", c.Name, err, msg)
		}
		return "", fmt.Errorf("format: %s: %w", c.Name, err)
	}
	return stdout.String(), nil
}
