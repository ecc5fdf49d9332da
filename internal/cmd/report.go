package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tuannvm/fileaudit/internal/report"
	"github.com/tuannvm/fileaudit/internal/tui"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	var (
		format string
		styled bool
	)

	cmd := &cobra.Command{
		Use:   "report <report.json>",
		Short: "Re-render a saved JSON report",
		Long: `Render a report written by 'fileaudit run --format json' in another
format, or as a styled terminal view.

Examples:
  fileaudit report audits/AUDIT-1700000000000-1A2B3C4D5.json -f markdown
  fileaudit report audits/AUDIT-1700000000000-1A2B3C4D5.json --styled`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := loadReport(args[0])
			if err != nil {
				return err
			}

			if styled {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), tui.RenderReport(rep))
				return nil
			}

			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}
			cfg, err := ctx.loadConfig()
			if err != nil {
				return err
			}
			return report.NewRenderer(cfg.TemplatesDir).Render(cmd.OutOrStdout(), rep, f)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(report.FormatTable), "output format: json, yaml, markdown, table")
	cmd.Flags().BoolVar(&styled, "styled", false, "print a styled terminal view")
	return cmd
}

func loadReport(path string) (report.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return report.Report{}, fmt.Errorf("failed to read report: %w", err)
	}
	var rep report.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return report.Report{}, fmt.Errorf("failed to parse report %s: %w", path, err)
	}
	if rep.AuditID == "" {
		return report.Report{}, fmt.Errorf("%s is not a fileaudit report", path)
	}
	return rep, nil
}
