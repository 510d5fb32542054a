// Package cli provides the command-line interface for luna.
//
// Import rules:
//   - CAN import: internal/crew, internal/web, internal/tui, internal/config,
//     internal/logging, internal/metrics, internal/present, internal/archive,
//     internal/router, internal/agent, internal/tools, internal/signal,
//     internal/domain, internal/errors
//   - MUST NOT be imported by any other internal package
package cli

import (
	"cmp"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lunacore/luna/internal/config"
	"github.com/lunacore/luna/internal/crew"
	"github.com/lunacore/luna/internal/errors"
	"github.com/lunacore/luna/internal/logging"
	"github.com/lunacore/luna/internal/tui"
)

// BuildInfo is stamped into cmd/luna with -ldflags.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// newOrchestrator is swapped by tests for one with scripted backends.
var newOrchestrator = crew.FromConfig //nolint:gochecknoglobals // test seam

// newRootCmd creates the root command for the luna CLI.
func newRootCmd(flags *GlobalFlags, info BuildInfo) *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "luna",
		Short: "luna - multi-agent Python project generator",
		Long: `luna turns a short project brief into a working Python project.

A planner, a developer and a tester agent run one after another: the planner
writes plan.json, the developer implements it and the tester writes pytest
tests. Each run gets its own directory under the output folder.

Features:
  • Cloud (OpenAI-compatible or Gemini) and local (Ollama) model backends
  • Complexity routing of agents between backends
  • Python syntax validation of generated files
  • A web dashboard with live activity log and ZIP downloads`,
		Version: formatVersion(info),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := BindGlobalFlags(v, cmd); err != nil {
				return fmt.Errorf("bind flags: %w", err)
			}
			if !IsValidOutputFormat(flags.Output) {
				return fmt.Errorf("%w: %q must be one of %v", errors.ErrInvalidOutputFormat, flags.Output, ValidOutputFormats())
			}

			ec := prepareExecution(cmd.Context(), flags)
			cmd.SetContext(withExecutionContext(cmd.Context(), ec))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	AddGlobalFlags(cmd, flags)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errors.NewExitCode2Error(err)
	})

	AddGenerateCommand(cmd)
	AddCheckCommand(cmd)
	AddRouteCommand(cmd)
	AddServeCommand(cmd)
	AddConfigCommand(cmd)
	AddToolsCommand(cmd)

	return cmd
}

// prepareExecution loads .env and the configuration, then creates the
// activity log and the logger. Load failures fall back to defaults with a
// warning so that read-only commands keep working.
func prepareExecution(ctx context.Context, flags *GlobalFlags) *ExecutionContext {
	envErr := config.LoadDotEnv("")

	cfg, cfgErr := config.Load(ctx)
	if cfgErr != nil {
		cfg = config.DefaultConfig()
	}

	activity := logging.NewActivityLog(cfg.Log.ActivityCapacity)

	logger := InitLogger(flags.Verbose, flags.Quiet, activity)

	cfgLogger := logging.WithCategory(logger, logging.CategoryConfig)
	if envErr != nil {
		cfgLogger.Warn().Err(envErr).Msg("could not load .env")
	}
	if cfgErr != nil {
		cfgLogger.Warn().Err(cfgErr).Msg("could not load configuration, using defaults")
	}

	return &ExecutionContext{
		Config:   cfg,
		Logger:   logger,
		Activity: activity,
		Output:   flags.Output,
	}
}

// formatVersion renders --version, filling unset build fields.
func formatVersion(info BuildInfo) string {
	return fmt.Sprintf("%s (commit: %s, built: %s)",
		cmp.Or(info.Version, "dev"), cmp.Or(info.Commit, "none"), cmp.Or(info.Date, "unknown"))
}

// Execute runs luna. A failing command's error is printed to stderr in the
// selected output format (text when -o itself was bad) and returned so main
// can pick the exit code.
func Execute(ctx context.Context, info BuildInfo) error {
	defer CloseLogFile()

	flags := &GlobalFlags{}
	//nolint:contextcheck // Cobra command pattern uses cmd.Context() internally
	cmd := newRootCmd(flags, info)
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		format := flags.Output
		if !IsValidOutputFormat(format) {
			format = OutputText
		}
		tui.NewOutput(os.Stderr, format).Error(err)
	}
	return err
}
