// Package cmd provides the fileaudit command line interface.
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tuannvm/fileaudit/internal/config"
	"github.com/tuannvm/fileaudit/internal/runner"
	"github.com/tuannvm/fileaudit/internal/types"
)

var version = "dev"

// SetVersion sets the version string
func SetVersion(v string) {
	version = v
}

// Execute runs the CLI
func Execute() error {
	return newRootCommand().Execute()
}

// ExitCode maps a command error to the process exit status: 0 on success,
// 2 when the inputs or options were rejected, 1 for any other failure.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case types.IsInvalidInput(err):
		return 2
	default:
		return 1
	}
}

// commandContext carries the persistent flags to every subcommand.
type commandContext struct {
	verbose    bool
	quiet      bool
	configPath string
}

func (c *commandContext) verbosity() string {
	switch {
	case c.quiet:
		return config.VerbosityQuiet
	case c.verbose:
		return config.VerbosityVerbose
	}
	return config.VerbosityNormal
}

// loadConfig loads the --config file, falling back to the default locations.
func (c *commandContext) loadConfig() (*config.Config, error) {
	return config.LoadOrDefault(strings.TrimSpace(c.configPath))
}

func (c *commandContext) logger(cmd *cobra.Command) *runner.StdLogger {
	return runner.NewWriterLogger(cmd.OutOrStdout(), cmd.ErrOrStderr(), c.verbose, c.quiet)
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:   "fileaudit",
		Short: "Multi-agent file audit",
		Long: `fileaudit runs four cooperating agents over file descriptors (name, size,
modification time) and produces one consolidated audit report. File contents
are never read.

Example:
  fileaudit run ./uploads
  fileaudit run -m manifest.yaml --format markdown --stdout
  fileaudit agents
  fileaudit status`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&ctx.verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&ctx.quiet, "quiet", "q", false, "quiet output (errors only)")
	rootCmd.PersistentFlags().StringVarP(&ctx.configPath, "config", "c", "", "config file path")

	rootCmd.AddCommand(newRunCommand(ctx))
	rootCmd.AddCommand(newUICommand(ctx))
	rootCmd.AddCommand(newInitCommand(ctx))
	rootCmd.AddCommand(newAgentsCommand(ctx))
	rootCmd.AddCommand(newReportCommand(ctx))
	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newMCPCommand(ctx))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "fileaudit version %s\n", version)
		},
	}
}
