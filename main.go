package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/john/chatexport/internal/config"
	"github.com/john/chatexport/internal/logging"
	"github.com/john/chatexport/internal/pipeline"
	"github.com/john/chatexport/internal/recorder"
	"github.com/john/chatexport/internal/transcript"
)

// Exit codes
const (
	ExitSuccess     = 0
	ExitConfigError = 1
	ExitInputError  = 2
	ExitExportError = 3
)

// Set via ldflags during build
var version = "dev"

// exitError carries the process exit code for a failed command
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

func withCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

func main() {
	cmd := newRootCmd(afero.NewOsFs(), os.Stdin, os.Stdout, os.Stderr)
	if err := cmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return ExitConfigError
}

// exportFlags holds command-line values; they win over the config file when set
type exportFlags struct {
	configPath     string
	input          string
	output         string
	format         string
	user           string
	keyword        string
	blacklist      []string
	report         bool
	redactionToken string
	logLevel       string
	logFormat      string
}

func newRootCmd(fs afero.Fs, stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "chatexport",
		Short: "Export chat transcripts to JSON",
		Long: `chatexport reads a chat transcript (a conversation name line followed by
"<timestamp> <sender> <content>" lines), optionally filters, redacts or
summarizes it, and writes the result as JSON with epoch-second timestamps.`,
		SilenceUsage: true,
	}
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.AddCommand(newExportCmd(fs))
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "chatexport %s\n", version)
		},
	})

	return rootCmd
}

func newExportCmd(fs afero.Fs) *cobra.Command {
	var flags exportFlags

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a transcript",
		Long: `Export a transcript, applying the enabled stages in this order:
sender filter, keyword filter, blacklist redaction, report.

Use "-" as input or output to read stdin or write stdout.

Exit codes:
  0 - Export written
  1 - Configuration or usage error
  2 - Transcript missing or malformed
  3 - Pipeline or write failure

Examples:
  chatexport export -i chat.txt -o chat.json
  chatexport export -i chat.txt -o - --user bob --keyword pie
  chatexport export -i chat.txt -o report.json --blacklist pie,cake --report`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd, fs, flags)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.configPath, "config", "c", "", "YAML config file")
	f.StringVarP(&flags.input, "input", "i", "", "transcript to read (- for stdin)")
	f.StringVarP(&flags.output, "output", "o", "", "file to write (- for stdout)")
	f.StringVar(&flags.format, "format", "", "output format: json or jsonl")
	f.StringVarP(&flags.user, "user", "u", "", "keep only messages from this sender")
	f.StringVarP(&flags.keyword, "keyword", "k", "", "keep only messages containing this text")
	f.StringSliceVarP(&flags.blacklist, "blacklist", "b", nil, "words to redact (comma separated)")
	f.BoolVarP(&flags.report, "report", "r", false, "replace messages with per-sender statistics")
	f.StringVar(&flags.redactionToken, "redaction-token", "", "text that replaces blacklisted words")
	f.StringVar(&flags.logLevel, "log-level", "", "debug, info, warn or error")
	f.StringVar(&flags.logFormat, "log-format", "", "console or json")

	return cmd
}

func runExport(cmd *cobra.Command, fs afero.Fs, flags exportFlags) error {
	// Load configuration
	if err := config.LoadDotEnv(); err != nil {
		return withCode(ExitConfigError, err)
	}
	cfg, err := config.Load(fs, flags.configPath)
	if err != nil {
		return withCode(ExitConfigError, fmt.Errorf("load config: %w", err))
	}
	applyFlags(cmd, cfg, flags)
	if err := cfg.Validate(); err != nil {
		return withCode(ExitConfigError, err)
	}

	logger, err := logging.NewWithWriter(cfg.Logging(), cmd.ErrOrStderr())
	if err != nil {
		return withCode(ExitConfigError, err)
	}
	defer logger.Sync()

	rec, err := recorder.New(fs, cfg.Format)
	if err != nil {
		return withCode(ExitConfigError, err)
	}
	rec.WithStdout(cmd.OutOrStdout())

	// Read the transcript
	conv, err := transcript.NewLoader(fs).WithStdin(cmd.InOrStdin()).Load(cfg.Input)
	if err != nil {
		logger.Error("Failed to read transcript", zap.String("input", cfg.Input), zap.Error(err))
		return withCode(ExitInputError, err)
	}
	logger.Info("Conversation loaded",
		zap.String("input", cfg.Input),
		zap.String("name", conv.Name),
		zap.Int("messages", conv.Len()),
	)

	// Apply the stages
	opts := cfg.Options()
	p := pipeline.New(opts, pipeline.WithLogger(logger))
	for _, stage := range p.Stages() {
		logger.Debug("Stage enabled", zap.Stringer("stage", stage.Kind()))
	}
	conv, err = p.Run(conv)
	if err != nil {
		return withCode(ExitExportError, fmt.Errorf("apply options: %w", err))
	}
	logger.Info("Options have been applied to the conversation", zap.Int("stages", len(p.Stages())))

	// Write the export
	if err := rec.Write(cfg.Output, conv); err != nil {
		logger.Error("Failed to write export", zap.String("output", cfg.Output), zap.Error(err))
		return withCode(ExitExportError, fmt.Errorf("write export: %w", err))
	}
	logger.Info("Export complete", zap.String("output", cfg.Output), zap.String("format", cfg.Format))

	return nil
}

// applyFlags copies explicitly set flags over the loaded configuration
func applyFlags(cmd *cobra.Command, cfg *config.Config, flags exportFlags) {
	changed := cmd.Flags().Changed

	if changed("input") {
		cfg.Input = flags.input
	}
	if changed("output") {
		cfg.Output = flags.output
	}
	if changed("format") {
		cfg.Format = flags.format
	}
	if changed("user") {
		cfg.Filter.User = flags.user
	}
	if changed("keyword") {
		cfg.Filter.Keyword = flags.keyword
	}
	if changed("blacklist") {
		cfg.Filter.Blacklist = append([]string{}, flags.blacklist...)
	}
	if changed("report") {
		cfg.Filter.Report = flags.report
	}
	if changed("redaction-token") {
		cfg.RedactionToken = flags.redactionToken
	}
	if changed("log-level") {
		cfg.Log.Level = flags.logLevel
	}
	if changed("log-format") {
		cfg.Log.Format = flags.logFormat
	}
}
