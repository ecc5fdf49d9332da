package cmd

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tuannvm/fileaudit/internal/report"
	"github.com/tuannvm/fileaudit/internal/state"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var (
		outputDir string
		all       bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show recent audits",
		Long: `Show the audits recorded in the output directory history.

By default only the most recent audit is shown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := ctx.logger(cmd)

			if outputDir == "" {
				cfg, err := ctx.loadConfig()
				if err != nil {
					return err
				}
				outputDir = cfg.OutputDir
			}

			history := state.NewManager(outputDir)
			if err := history.Load(); err != nil {
				return err
			}

			entries := history.Entries()
			if len(entries) == 0 {
				logger.Info("No audits recorded in %s", outputDir)
				return nil
			}
			if !all {
				entries = entries[:1]
			}

			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{
					e.AuditID,
					humanize.Time(e.CompletedAt),
					strconv.Itoa(e.TotalFiles),
					e.RiskLevel,
					fmt.Sprintf("%dms", e.TotalExecutionTime),
					e.ReportPath,
				})
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), report.RenderTable(
				[]string{"Audit ID", "Completed", "Files", "Risk", "Time", "Report"}, rows))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory holding the history (default from config)")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "show every recorded audit")
	return cmd
}
