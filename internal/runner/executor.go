// Package runner provides the execution logic for running audits.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/tuannvm/fileaudit/internal/agent"
	"github.com/tuannvm/fileaudit/internal/config"
	"github.com/tuannvm/fileaudit/internal/coordinator"
	"github.com/tuannvm/fileaudit/internal/input"
	"github.com/tuannvm/fileaudit/internal/logging"
	"github.com/tuannvm/fileaudit/internal/report"
	"github.com/tuannvm/fileaudit/internal/state"
	"github.com/tuannvm/fileaudit/internal/types"
)

// Result describes a finished Execute call
type Result struct {
	Report     report.Report
	ReportPath string // empty when the report went to stdout
	Reused     bool   // true when resume found an up-to-date report
	Records    map[coordinator.Role]agent.Record
}

// Stdout receives reports when RunOptions.Stdout is set
var Stdout io.Writer = os.Stdout

// Execute runs an audit with the given options.
// This is the shared execution path for both CLI and TUI.
func Execute(ctx context.Context, opts config.RunOptions, logger Logger) (*Result, error) {
	files, err := ResolveInputs(opts)
	if err != nil {
		return nil, fmt.Errorf("input error: %w", err)
	}

	cfg, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	cfg = opts.Apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !config.IsValidResumeMode(opts.ResumeMode) {
		return nil, fmt.Errorf("invalid resume mode %q", opts.ResumeMode)
	}
	format, err := report.ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}

	slogger, err := logging.NewFromConfig(cfg, os.Stderr)
	if err != nil {
		return nil, err
	}

	// History only applies when reports are written to disk
	var history *state.Manager
	if !opts.Stdout {
		if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
		history, err = prepareHistory(cfg, files, opts.ResumeMode)
		if err != nil {
			return nil, err
		}
		if opts.ResumeMode == config.ResumeModeResume {
			rerun, reason, last := history.ShouldReaudit()
			if !rerun {
				logger.Info("✓ Up to date: %s (%s)", last.ReportPath, last.AuditID)
				return &Result{ReportPath: last.ReportPath, Reused: true}, nil
			}
			logger.Verbose("Re-auditing: %s", reason)
		}
	}

	logStartup(logger, files, cfg, opts)

	// Set up signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("\nReceived interrupt, cancelling audit...")
			cancel()
		case <-ctx.Done():
		}
	}()

	if cfg.Timeout > 0 {
		var stop context.CancelFunc
		ctx, stop = context.WithTimeout(ctx, time.Duration(cfg.Timeout)*time.Second)
		defer stop()
	}

	rep, coord, err := Audit(ctx, cfg, files, slogger, func(rec agent.Record) {
		printAgentStatus(rec, logger)
	})
	var records map[coordinator.Role]agent.Record
	if coord != nil {
		records = coord.Records()
	}
	printSummary(records, logger)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("audit timed out after %ds: %w", cfg.Timeout, err)
		}
		return nil, fmt.Errorf("audit failed: %w", err)
	}

	result := &Result{Report: rep, Records: records}
	renderer := report.NewRenderer(cfg.TemplatesDir)

	if opts.Stdout {
		if err := renderer.Render(Stdout, rep, format); err != nil {
			return nil, err
		}
		return result, nil
	}

	path, err := WriteReport(cfg.OutputDir, rep, format, renderer)
	if err != nil {
		return nil, err
	}
	result.ReportPath = path
	logger.Info("Report: %s", path)

	if err := history.Record(state.Entry{
		AuditID:            rep.AuditID,
		ReportPath:         path,
		Format:             string(format),
		TotalFiles:         rep.Summary.TotalFiles,
		RiskLevel:          string(rep.Summary.RiskLevel),
		TotalExecutionTime: rep.TotalExecutionTime,
		CompletedAt:        rep.Timestamp,
	}); err != nil {
		return nil, err
	}
	if err := history.Save(); err != nil {
		return nil, err
	}

	return result, nil
}

// Audit builds the standard coordinator from cfg and runs it over files.
// onRecord, when set, receives every agent's run record as it finishes.
func Audit(ctx context.Context, cfg *config.Config, files []types.FileDescriptor, logger *slog.Logger, onRecord agent.Subscriber) (report.Report, *coordinator.Coordinator, error) {
	coord, err := coordinator.NewFromConfig(cfg, logger)
	if err != nil {
		return report.Report{}, nil, err
	}
	if onRecord != nil {
		unsubscribe := coord.Forward(onRecord)
		defer unsubscribe()
	}
	rep, err := coord.Run(ctx, files)
	return rep, coord, err
}

// ResolveInputs collects descriptors from paths and the manifest.
func ResolveInputs(opts config.RunOptions) ([]types.FileDescriptor, error) {
	var files []types.FileDescriptor
	if len(opts.Inputs) > 0 {
		discovered, err := input.DiscoverAll(opts.Inputs)
		if err != nil {
			return nil, err
		}
		files = append(files, discovered...)
	}
	if opts.Manifest != "" {
		listed, err := input.LoadManifest(opts.Manifest)
		if err != nil {
			return nil, err
		}
		files = append(files, listed...)
	}
	files = input.Dedupe(files)
	if len(files) == 0 {
		return nil, types.InvalidInput("inputs", "no files to audit: pass files, directories or a manifest")
	}
	return files, nil
}

// WriteReport renders rep into dir as <audit id><ext> and returns the path.
func WriteReport(dir string, rep report.Report, format report.Format, renderer *report.Renderer) (string, error) {
	path := filepath.Join(dir, rep.AuditID+format.Extension())
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	if err := renderer.Render(f, rep, format); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}
	return path, nil
}

// reportSettings are the config values that change report content.
type reportSettings struct {
	Format       string `json:"format"`
	BatchSize    int    `json:"batch_size"`
	TemplatesDir string `json:"templates_dir"`
}

func prepareHistory(cfg *config.Config, files []types.FileDescriptor, resumeMode string) (*state.Manager, error) {
	history := state.NewManager(cfg.OutputDir)
	if resumeMode == config.ResumeModeForce {
		if err := history.Clear(); err != nil {
			return nil, fmt.Errorf("failed to clear audit history: %w", err)
		}
	} else if err := history.Load(); err != nil {
		return nil, err
	}

	history.UpdateInputHash(files)
	if err := history.UpdateConfigHash(reportSettings{
		Format:       cfg.Format,
		BatchSize:    cfg.BatchSize,
		TemplatesDir: cfg.TemplatesDir,
	}); err != nil {
		return nil, err
	}
	return history, nil
}

func logStartup(logger Logger, files []types.FileDescriptor, cfg *config.Config, opts config.RunOptions) {
	logger.Info("Starting fileaudit")
	logger.Info("Input: %s", input.Describe(files))

	logger.Verbose("Input files:")
	for _, f := range files {
		logger.Verbose("  - %s", f.Name)
	}

	if opts.Stdout {
		logger.Info("Output: stdout (%s)", cfg.Format)
	} else {
		logger.Info("Output: %s (%s)", cfg.OutputDir, cfg.Format)
	}
	logger.Info("Execution: %s", cfg.Execution)
	logger.Info("Batch size: %d", cfg.BatchSize)
	if !cfg.SimulateLatency {
		logger.Verbose("Latency simulation disabled")
	}
	logger.Info("")
}

func printAgentStatus(rec agent.Record, logger Logger) {
	if rec.Succeeded() {
		logger.Info("✓ %s: completed in %dms", rec.Agent, rec.ExecutionTime)
	} else {
		logger.Info("✗ %s: failed (%s)", rec.Agent, rec.Error)
	}
}

func printSummary(records map[coordinator.Role]agent.Record, logger Logger) {
	logger.Info("")
	logger.Info("=== Summary ===")

	succeeded := 0
	for _, rec := range records {
		if rec.Succeeded() {
			succeeded++
		}
	}

	logger.Info("%d/%d agents succeeded", succeeded, len(records))

	if succeeded < len(records) {
		logger.Info("No report produced.")
	}
}
