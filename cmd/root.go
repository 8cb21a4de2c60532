package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agentic-research/fextract/internal/config"
	"github.com/agentic-research/fextract/internal/diag"
	"github.com/agentic-research/fextract/internal/ingest"
	"github.com/agentic-research/fextract/internal/output"
)

// Version is stamped at build time with -ldflags "-X".
var Version = "dev"

var (
	configPath string
	logLevel   string
	workers    int
	disabled   []string

	recursive  bool
	outputPath string
	summary    bool
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "YAML config file (default $FEXTRACT_CONFIG)")
	pf.StringVar(&logLevel, "log", "INFO", "Log level: DEBUG, INFO, WARNING, ERROR, CRITICAL")
	pf.IntVarP(&workers, "workers", "w", 1, "Files extracted concurrently")
	pf.StringSliceVar(&disabled, "disable", nil, "Capabilities to switch off: html, image, pdf, spreadsheet, code")

	rootCmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Descend into subdirectories")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write JSON to this file instead of stdout")
	rootCmd.Flags().BoolVar(&summary, "summary", false, "Print a per-type summary to stderr")
}

var rootCmd = &cobra.Command{
	Use:   "fextract <directory>",
	Short: "Extract structured content from every file in a directory",
	Long: `fextract walks a directory, picks a handler for each file by its
extension and prints one JSON record per file, keyed by path.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. Resolve configuration
		cfg, logger, reg, err := setup(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		// 2. Walk
		w := ingest.NewWalker(reg, logger)
		w.Recursive = cfg.Recursive
		w.Workers = cfg.Workers
		results, err := w.Walk(args[0])
		if err != nil {
			diag.Critical(logger, err.Error())
			return &reportedError{err}
		}

		// 3. Emit
		if err := emit(cmd.OutOrStdout(), cfg.Output, results); err != nil {
			diag.Critical(logger, "failed to write results", zap.Error(err))
			return &reportedError{err}
		}
		if cfg.Output != "" {
			logger.Info("Results written to " + cfg.Output)
		}

		// 4. Summary
		if cfg.Summary {
			return ingest.Summarize(results).Write(cmd.ErrOrStderr(), results)
		}
		return nil
	},
}

// reportedError marks a failure that has already been logged.
type reportedError struct{ err error }

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		var reported *reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		stop()
		os.Exit(1)
	}
}

// flagOverlay converts explicitly set flags into a config overlay.
func flagOverlay(cmd *cobra.Command) config.Overlay {
	var ov config.Overlay
	flags := cmd.Flags()
	if flags.Changed("recursive") {
		ov.Recursive = &recursive
	}
	if flags.Changed("log") {
		ov.LogLevel = &logLevel
	}
	if flags.Changed("output") {
		ov.Output = &outputPath
	}
	if flags.Changed("workers") {
		ov.Workers = &workers
	}
	if flags.Changed("disable") {
		ov.Disable = disabled
		if ov.Disable == nil {
			ov.Disable = []string{}
		}
	}
	if flags.Changed("summary") {
		ov.Summary = &summary
	}
	return ov
}

// setup resolves configuration and builds the logger and registry shared by
// every subcommand.
func setup(cmd *cobra.Command) (config.Config, *zap.Logger, *ingest.Registry, error) {
	cfg, err := config.Resolve(configPath, flagOverlay(cmd))
	if err != nil {
		return cfg, nil, nil, err
	}
	logger, err := diag.NewLogger(cfg.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return cfg, nil, nil, err
	}
	caps, err := ingest.DetectCapabilities(cfg.Disable)
	if err != nil {
		return cfg, nil, nil, err
	}
	for _, c := range ingest.AllCapabilities {
		if !caps.Available(c) {
			logger.Debug("capability unavailable", zap.String("capability", string(c)))
		}
	}
	return cfg, logger, ingest.DefaultRegistry(caps), nil
}

func emit(stdout io.Writer, path string, results ingest.ResultMap) error {
	if path == "" {
		return output.Encode(stdout, results)
	}
	dir, name, err := output.Destination(path)
	if err != nil {
		return err
	}
	return output.WriteFile(osfs.New(dir), name, results)
}
