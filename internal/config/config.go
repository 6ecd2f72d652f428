package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/john/chatexport/internal/logging"
	"github.com/john/chatexport/internal/pipeline"
	"github.com/john/chatexport/internal/recorder"
)

// Config holds the exporter configuration
type Config struct {
	Input          string       `yaml:"input" validate:"required"`
	Output         string       `yaml:"output" validate:"required"`
	Format         string       `yaml:"format" validate:"oneof=json jsonl"`
	Filter         FilterConfig `yaml:"filter"`
	RedactionToken string       `yaml:"redaction_token" validate:"required"`
	Log            LogConfig    `yaml:"log"`
}

// FilterConfig selects the pipeline stages
type FilterConfig struct {
	User      string   `yaml:"user"`
	Keyword   string   `yaml:"keyword"`
	Blacklist []string `yaml:"blacklist"` // Present but empty redacts nothing
	Report    bool     `yaml:"report"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json console"`
}

// Environment variables that override file values
const (
	EnvRedactionToken = "CHATEXPORT_REDACTION_TOKEN"
	EnvLogLevel       = "CHATEXPORT_LOG_LEVEL"
	EnvLogFormat      = "CHATEXPORT_LOG_FORMAT"
)

// Load loads configuration from a YAML file on fsys, applies environment
// overrides and defaults. An empty path skips the file. Validation is left to
// Validate so command-line flags can be merged first.
func Load(fsys afero.Fs, path string) (*Config, error) {
	var cfg Config

	if path != "" {
		// Read YAML file
		data, err := afero.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		// Parse YAML
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	// Apply environment variable overrides
	if token := os.Getenv(EnvRedactionToken); token != "" {
		cfg.RedactionToken = token
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		cfg.Log.Level = level
	}
	if format := os.Getenv(EnvLogFormat); format != "" {
		cfg.Log.Format = format
	}

	// Set defaults
	if cfg.RedactionToken == "" {
		cfg.RedactionToken = pipeline.DefaultRedactionToken
	}
	if cfg.Format == "" {
		cfg.Format = recorder.FormatJSON
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = logging.FormatConsole
	}

	return &cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (default ".env")
// into the environment without overriding variables already set. Missing
// files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Validate checks required fields and enumerations
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	err := v.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", field, fe.Tag()))
		}
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// Options converts the filter section into pipeline options. A blank user or
// an empty keyword disables its stage; the keyword is otherwise kept verbatim.
func (c *Config) Options() pipeline.Options {
	opts := pipeline.Options{
		FilterUser:     strings.TrimSpace(c.Filter.User),
		FilterKeyword:  c.Filter.Keyword,
		Report:         c.Filter.Report,
		RedactionToken: c.RedactionToken,
	}

	if c.Filter.Blacklist != nil {
		opts.Blacklist = make([]string, 0, len(c.Filter.Blacklist))
		for _, w := range c.Filter.Blacklist {
			if w = strings.TrimSpace(w); w != "" {
				opts.Blacklist = append(opts.Blacklist, w)
			}
		}
	}

	return opts
}

// Logging returns the logger settings
func (c *Config) Logging() logging.Config {
	return logging.Config{Level: c.Log.Level, Format: c.Log.Format}
}
