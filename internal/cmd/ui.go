package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tuannvm/fileaudit/internal/runner"
	"github.com/tuannvm/fileaudit/internal/tui"
)

func newUICommand(ctx *commandContext) *cobra.Command {
	var accessible bool

	cmd := &cobra.Command{
		Use:   "ui [input]",
		Short: "Interactive dashboard for running audits",
		Long: `Launch the interactive dashboard.

Every run option is available through the form. Defaults are pre-filled
from your .fileaudit/config.yaml.

Examples:
  fileaudit ui
  fileaudit ui ./uploads
  fileaudit ui --accessible`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.loadConfig()
			if err != nil {
				return err
			}

			prefilled := ""
			if len(args) > 0 {
				prefilled = args[0]
			}

			result, err := tui.RunDashboard(tui.DashboardOptions{
				PrefilledInput: prefilled,
				Config:         cfg,
				Accessible:     accessible,
			})
			if err != nil {
				return err
			}

			logger := ctx.logger(cmd)
			if result.Cancelled {
				logger.Info("Cancelled")
				return nil
			}
			if result.InputPath == "" {
				return fmt.Errorf("no input selected")
			}

			opts := result.RunOptions()
			if opts.ConfigPath == "" {
				opts.ConfigPath = ctx.configPath
			}
			if ctx.quiet || ctx.verbose {
				opts.Verbosity = ctx.verbosity()
			}
			logger = runner.NewWriterLogger(cmd.OutOrStdout(), cmd.ErrOrStderr(), opts.IsVerbose(), opts.IsQuiet())

			display := append([]string{}, opts.Inputs...)
			if opts.Manifest != "" {
				display = append(display, "-m", opts.Manifest)
			}
			logger.Info("Running: fileaudit run %s", strings.Join(display, " "))
			logger.Info("")

			res, err := runner.Execute(cmd.Context(), opts, logger)
			if err != nil {
				return err
			}
			if !res.Reused {
				logger.Info("")
				logger.Info("%s", tui.RenderReport(res.Report))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&accessible, "accessible", false, "enable accessible mode for screen readers")
	return cmd
}
