package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinodhalaharvi/formulac/config"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   error
	}{
		{"class name", func(c *config.Config) { c.Class.Name = "My Formula" }, config.ErrInvalidClassName},
		{"leading digit", func(c *config.Config) { c.Class.Name = "1Formula" }, config.ErrInvalidClassName},
		{"namespace", func(c *config.Config) { c.Class.ModelNamespace = "" }, config.ErrInvalidNamespace},
		{"indent", func(c *config.Config) { c.Format.Indent = 0 }, config.ErrInvalidIndent},
		{"log level", func(c *config.Config) { c.Log.Level = "loud" }, config.ErrInvalidLogLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "formulac.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
class:
  name: TaskScore
format:
  indent: 4
log:
  level: debug
`), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "TaskScore", cfg.Class.Name)
	assert.Equal(t, config.DefaultModelImport, cfg.Class.ModelImport)
	assert.Equal(t, 4, cfg.Format.Indent)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("FORMULAC_CLASS_NAME", "FromEnv")
	t.Setenv("FORMULAC_FORMAT_COMMAND", "prettier --parser typescript")
	t.Setenv("HOME", t.TempDir())

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "FromEnv", cfg.Class.Name)
	assert.Equal(t, "prettier --parser typescript", cfg.Format.Command)
}

func TestLoadRejects(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("format:\n  indent: 12\n"), 0o600))
	_, err = config.Load(path)
	assert.True(t, errors.Is(err, config.ErrInvalidIndent))
}
