// Package config loads formulac settings from defaults, an optional YAML
// file and FORMULAC_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	configName      = ".formulac"
	configType      = "yaml"
	envPrefix       = "FORMULAC"
	envKeySeparator = "_"
)

// Defaults.
const (
	DefaultClassName       = "MyFirstFormula"
	DefaultGeneratorImport = "./src/NotionFormulaGenerator"
	DefaultModelImport     = "./src/model"
	DefaultModelNamespace  = "Model"
	DefaultIndent          = 2
	DefaultLogLevel        = "warn"
)

// Config is the full configuration.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Class  ClassConfig  `mapstructure:"class"`
	Format FormatConfig `mapstructure:"format"`
	Log    LogConfig    `mapstructure:"log"`
}

// ClassConfig shapes the class a decompile generates.
type ClassConfig struct {
	Name            string `mapstructure:"name"`
	GeneratorImport string `mapstructure:"generator_import"`
	ModelImport     string `mapstructure:"model_import"`
	ModelNamespace  string `mapstructure:"model_namespace"`
}

// FormatConfig selects the formatter for generated source. A non-empty
// Command replaces the built-in indenter.
type FormatConfig struct {
	Indent  int    `mapstructure:"indent"`
	Command string `mapstructure:"command"`
}

// LogConfig sets the minimum log level.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

var (
	// ErrInvalidClassName indicates the class name is not an identifier.
	ErrInvalidClassName = errors.New("class.name must be an identifier")
	// ErrInvalidNamespace indicates the model namespace is not an identifier.
	ErrInvalidNamespace = errors.New("class.model_namespace must be an identifier")
	// ErrInvalidIndent indicates the indent width is out of range.
	ErrInvalidIndent = errors.New("format.indent must be between 1 and 8")
	// ErrInvalidLogLevel indicates an unknown log level.
	ErrInvalidLogLevel = errors.New("log.level must be debug, info, warn or error")
)

// Validate checks the values a generated class depends on.
func (c *Config) Validate() error {
	if !isIdentifier(c.Class.Name) {
		return fmt.Errorf("%w: %q", ErrInvalidClassName, c.Class.Name)
	}
	if !isIdentifier(c.Class.ModelNamespace) {
		return fmt.Errorf("%w: %q", ErrInvalidNamespace, c.Class.ModelNamespace)
	}
	if c.Format.Indent < 1 || c.Format.Indent > 8 {
		return fmt.Errorf("%w: %d", ErrInvalidIndent, c.Format.Indent)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Log.Level)
	}
	return nil
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Class: ClassConfig{
			Name:            DefaultClassName,
			GeneratorImport: DefaultGeneratorImport,
			ModelImport:     DefaultModelImport,
			ModelNamespace:  DefaultModelNamespace,
		},
		Format: FormatConfig{Indent: DefaultIndent},
		Log:    LogConfig{Level: DefaultLogLevel},
	}
}

// Load reads configuration from file, env vars and defaults. An explicit
// path must exist; otherwise .formulac.yaml is searched in the working
// directory and $HOME, and a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	applyDefaults(v)

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("class.name", d.Class.Name)
	v.SetDefault("class.generator_import", d.Class.GeneratorImport)
	v.SetDefault("class.model_import", d.Class.ModelImport)
	v.SetDefault("class.model_namespace", d.Class.ModelNamespace)
	v.SetDefault("format.indent", d.Format.Indent)
	v.SetDefault("format.command", d.Format.Command)
	v.SetDefault("log.level", d.Log.Level)
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
		case i > 0 && c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}
