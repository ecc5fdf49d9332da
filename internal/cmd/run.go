package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tuannvm/fileaudit/internal/config"
	"github.com/tuannvm/fileaudit/internal/runner"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	opts := config.RunOptions{}
	var (
		sequential bool
		resume     bool
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "run [paths...]",
		Short: "Audit files, directories or a descriptor manifest",
		Long: `Run the audit pipeline over the given files and directories.

File analysis runs first; batch processing, aggregation and security
analysis then run together (or one at a time with --sequential). The
report is written to the output directory as <audit id>.<ext>.

Examples:
  fileaudit run ./uploads
  fileaudit run a.pdf b.exe --format yaml
  fileaudit run -m manifest.yaml --stdout --format table
  fileaudit run ./uploads --resume`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Inputs = args
			opts.ConfigPath = ctx.configPath
			opts.Verbosity = ctx.verbosity()
			if sequential {
				opts.Execution = config.ExecutionSequential
			}
			switch {
			case force:
				opts.ResumeMode = config.ResumeModeForce
			case resume:
				opts.ResumeMode = config.ResumeModeResume
			default:
				opts.ResumeMode = config.ResumeModeNormal
			}

			runner.Stdout = cmd.OutOrStdout()
			_, err := runner.Execute(cmd.Context(), opts, ctx.logger(cmd))
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.Manifest, "manifest", "m", "", "YAML/JSON descriptor manifest")
	flags.StringVarP(&opts.OutputDir, "output", "o", "", "output directory (default from config: "+config.DefaultOutputDir+")")
	flags.StringVarP(&opts.Format, "format", "f", "", "report format: json, yaml, markdown, table")
	flags.StringVarP(&opts.Execution, "execution", "e", "", "execution mode: parallel, sequential")
	flags.BoolVarP(&sequential, "sequential", "s", false, "shorthand for --execution sequential")
	flags.IntVarP(&opts.BatchSize, "batch-size", "b", 0, "files per batch (default from config: 5)")
	flags.BoolVarP(&resume, "resume", "r", false, "reuse the last report when inputs and config are unchanged")
	flags.BoolVar(&force, "force", false, "clear the audit history and audit again")
	flags.BoolVar(&opts.NoLatency, "no-latency", false, "skip the simulated per-agent processing delays")
	flags.BoolVar(&opts.Stdout, "stdout", false, "print the report instead of writing a file")
	flags.IntVarP(&opts.Timeout, "timeout", "t", 0, "audit timeout in seconds (0=none)")
	cmd.MarkFlagsMutuallyExclusive("resume", "force")

	return cmd
}
