package diag

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
		want string
	}{
		{"malformed", Malformed("a}b", "residual brace"), ErrMalformedBlock, `malformed block: residual brace (at "a}b")`},
		{"missing", MissingAlternative("if(a){1}"), ErrMissingAlternative, `every conditional requires a paired alternative branch (at "if(a){1}")`},
		{"cycle", Unresolvable("f -> g -> f"), ErrUnresolvableReference, "cycle found in function references: f -> g -> f"},
		{"split", AmbiguousSplit("1+*2", "operator without operand"), ErrAmbiguousSplit, `ambiguous operator split: operator without operand (at "1+*2")`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, errors.Is(tt.err, tt.kind))
			assert.Equal(t, tt.want, tt.err.Error())

			wrapped := fmt.Errorf("compile: %w", tt.err)
			var de *Error
			require.True(t, errors.As(wrapped, &de))
			assert.Equal(t, tt.kind, de.Kind)
		})
	}
}

func TestErrorClipsLongFragments(t *testing.T) {
	err := Malformed(strings.Repeat("x", 200), "")
	assert.Contains(t, err.Error(), "...")
	assert.Less(t, len(err.Error()), 120)
}

func TestErrorClipsOnRuneBoundary(t *testing.T) {
	got := clip(strings.Repeat("x", maxFragment-1) + strings.Repeat("é", 10))
	assert.True(t, utf8.ValidString(got), got)
	assert.Equal(t, strings.Repeat("x", maxFragment-1)+"...", got)
}

func TestLoggerDropsTime(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, "debug")
	log.Debug("classified", "kind", "logic")

	out := buf.String()
	assert.NotContains(t, out, "time=")
	assert.Contains(t, out, "kind=logic")
	t.Logf("✓ logger output: %s", strings.TrimSpace(out))
}

func TestLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, "warn")
	log.Info("hidden")
	log.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
