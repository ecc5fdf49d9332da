package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tuannvm/fileaudit/internal/config"
	"github.com/tuannvm/fileaudit/internal/report"
)

const configHeader = `# fileaudit configuration
# Durations accept Go syntax (300ms, 1s). Environment variables prefixed
# with FILEAUDIT_ override these values.

`

func newInitCommand(ctx *commandContext) *cobra.Command {
	var (
		path      string
		templates bool
		force     bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize fileaudit configuration",
		Long: `Create a .fileaudit/config.yaml file in the current directory with the
default settings.

With --templates the report templates are exported next to it so the
markdown report can be customised.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := ctx.logger(cmd)

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
			}

			cfg := config.Default()
			if templates {
				dir := filepath.Join(filepath.Dir(path), "templates")
				written, err := report.ExportTemplates(dir)
				if err != nil {
					return err
				}
				cfg.TemplatesDir = dir
				for _, f := range written {
					logger.Info("Created %s", f)
				}
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return fmt.Errorf("failed to create config directory: %w", err)
			}
			if err := os.WriteFile(path, []byte(configHeader+string(data)), 0644); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}

			logger.Info("Created %s", path)
			logger.Info("")
			logger.Info("You can now customize the settings and run:")
			logger.Info("  fileaudit run ./uploads")
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", config.Locations()[0], "where to write the config file")
	cmd.Flags().BoolVar(&templates, "templates", false, "also export the report templates")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}
