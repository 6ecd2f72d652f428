package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/john/chatexport/internal/pipeline"
)

const sampleYAML = `
input: chat.txt
output: out/chat.json
format: jsonl
filter:
  user: " bob "
  keyword: pie
  blacklist: [pie, "  ", yes]
  report: true
redaction_token: "[x]"
log:
  level: debug
  format: json
`

func TestLoad_File(t *testing.T) {
	memFs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(memFs, "config.yaml", []byte(sampleYAML), 0644))

	cfg, err := Load(memFs, "config.yaml")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "chat.txt", cfg.Input)
	assert.Equal(t, "out/chat.json", cfg.Output)
	assert.Equal(t, "jsonl", cfg.Format)
	assert.Equal(t, "[x]", cfg.RedactionToken)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)

	assert.Equal(t, pipeline.Options{
		FilterUser:     "bob",
		FilterKeyword:  "pie",
		Blacklist:      []string{"pie", "yes"},
		Report:         true,
		RedactionToken: "[x]",
	}, cfg.Options())
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(afero.NewMemMapFs(), "")
	require.NoError(t, err)

	assert.Equal(t, pipeline.DefaultRedactionToken, cfg.RedactionToken)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)

	opts := cfg.Options()
	assert.Nil(t, opts.Blacklist)
	assert.Empty(t, pipeline.Plan(opts))
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvRedactionToken, "###")
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv(EnvLogFormat, "json")

	memFs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(memFs, "config.yaml", []byte(sampleYAML), 0644))

	cfg, err := Load(memFs, "config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "###", cfg.RedactionToken)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_Errors(t *testing.T) {
	memFs := afero.NewMemMapFs()

	_, err := Load(memFs, "missing.yaml")
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	require.NoError(t, afero.WriteFile(memFs, "bad.yaml", []byte("filter: [unclosed"), 0644))
	_, err = Load(memFs, "bad.yaml")
	assert.ErrorContains(t, err, "parse config file")
}

func TestValidate(t *testing.T) {
	cfg, err := Load(afero.NewMemMapFs(), "")
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input is required")
	assert.Contains(t, err.Error(), "output is required")

	cfg.Input, cfg.Output = "in.txt", "out.json"
	cfg.Log.Format = "xml"
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.format must be one of [json console]")

	cfg.Log.Format = "console"
	assert.NoError(t, cfg.Validate())
}

func TestOptions_EmptyBlacklistIsPresent(t *testing.T) {
	cfg := &Config{Filter: FilterConfig{Blacklist: []string{" "}}}
	opts := cfg.Options()
	assert.NotNil(t, opts.Blacklist)
	assert.Empty(t, opts.Blacklist)
}

func TestOptions_KeywordVerbatim(t *testing.T) {
	tests := []struct {
		keyword string
		stages  int
	}{
		{"", 0},
		{" pie", 1},
		{"   ", 1},
	}

	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			cfg := &Config{Filter: FilterConfig{Keyword: tt.keyword}}
			opts := cfg.Options()
			assert.Equal(t, tt.keyword, opts.FilterKeyword)
			assert.Len(t, pipeline.Plan(opts), tt.stages)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte(EnvLogFormat+"=json\n"), 0644))

	t.Setenv(EnvLogFormat, "")
	require.NoError(t, os.Unsetenv(EnvLogFormat))

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "json", os.Getenv(EnvLogFormat))
}
