package mcp

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/tuannvm/fileaudit/internal/config"
	"github.com/tuannvm/fileaudit/internal/coordinator"
	"github.com/tuannvm/fileaudit/internal/input"
	"github.com/tuannvm/fileaudit/internal/report"
	"github.com/tuannvm/fileaudit/internal/runner"
	"github.com/tuannvm/fileaudit/internal/types"
)

// Handlers provides the business logic for MCP tool handlers.
// It can be used standalone or injected into the MCP server.
type Handlers struct {
	configPath string // Optional config file path
	logger     *slog.Logger

	mu      sync.Mutex
	last    *coordinator.Coordinator
	lastRep *report.Report
}

// NewHandlers creates a new Handlers instance.
func NewHandlers() *Handlers {
	return &Handlers{logger: slog.Default()}
}

// WithConfigPath sets the config file path.
func (h *Handlers) WithConfigPath(path string) *Handlers {
	h.configPath = path
	return h
}

// WithLogger sets the logger passed to the agents.
func (h *Handlers) WithLogger(logger *slog.Logger) *Handlers {
	if logger != nil {
		h.logger = logger
	}
	return h
}

// loadConfig loads the config file or returns defaults.
func (h *Handlers) loadConfig() *config.Config {
	cfg, err := config.LoadOrDefault(h.configPath)
	if err != nil {
		h.logger.Warn("using default config", "error", err)
		return config.Default()
	}
	return cfg
}

// RunAudit resolves the inputs, runs every agent and returns the report.
// Invalid input is returned as an error; a failing agent yields
// Success false with the partial agent outcomes.
func (h *Handlers) RunAudit(ctx context.Context, in RunAuditInput) (RunAuditOutput, error) {
	opts := config.RunOptions{
		Inputs:    in.Paths,
		Manifest:  in.Manifest,
		Execution: in.Execution,
		BatchSize: in.BatchSize,
		NoLatency: in.NoLatency,
		Format:    in.Format,
	}
	cfg := opts.Apply(h.loadConfig())
	if err := cfg.Validate(); err != nil {
		return RunAuditOutput{}, err
	}

	files, err := h.resolveFiles(opts, in.Files)
	if err != nil {
		return RunAuditOutput{}, err
	}

	rep, coord, err := runner.Audit(ctx, cfg, files, h.logger, nil)
	if coord != nil {
		h.mu.Lock()
		h.last = coord
		h.lastRep = nil
		if err == nil {
			h.lastRep = &rep
		}
		h.mu.Unlock()
	}

	if types.IsInvalidInput(err) {
		return RunAuditOutput{}, err
	}
	out := RunAuditOutput{TotalFiles: len(files), Agents: agentRuns(coord)}
	if err != nil {
		out.Error = err.Error()
		return out, nil
	}
	out.Success = true
	out.AuditID = rep.AuditID
	out.RiskLevel = string(rep.Summary.RiskLevel)

	renderer := report.NewRenderer(cfg.TemplatesDir)
	format, err := report.ParseFormat(cfg.Format)
	if err != nil {
		return RunAuditOutput{}, err
	}

	if in.OutputDir != "" {
		if err := os.MkdirAll(in.OutputDir, 0755); err != nil {
			return RunAuditOutput{}, fmt.Errorf("failed to create output directory: %w", err)
		}
		path, err := runner.WriteReport(in.OutputDir, rep, format, renderer)
		if err != nil {
			return RunAuditOutput{}, err
		}
		out.ReportPath = path
	}

	if in.Format == "" {
		out.Report = &rep
		return out, nil
	}
	var buf bytes.Buffer
	if err := renderer.Render(&buf, rep, format); err != nil {
		return RunAuditOutput{}, err
	}
	out.Rendered = buf.String()
	return out, nil
}

func (h *Handlers) resolveFiles(opts config.RunOptions, inline []FileInput) ([]types.FileDescriptor, error) {
	var files []types.FileDescriptor
	if len(opts.Inputs) > 0 || opts.Manifest != "" {
		resolved, err := runner.ResolveInputs(opts)
		if err != nil {
			return nil, err
		}
		files = append(files, resolved...)
	}

	now := time.Now()
	for i, f := range inline {
		modified := now
		if f.LastModified != "" {
			t, err := time.Parse(time.RFC3339, f.LastModified)
			if err != nil {
				return nil, types.InvalidInput("run_audit", "files[%d]: last_modified: %v", i, err)
			}
			modified = t
		}
		fd, err := types.NewFileDescriptor(f.Name, f.Size, modified)
		if err != nil {
			return nil, fmt.Errorf("files[%d]: %w", i, err)
		}
		files = append(files, fd)
	}

	files = input.Dedupe(files)
	if len(files) == 0 {
		return nil, types.InvalidInput("run_audit", "paths, manifest or files is required")
	}
	return files, nil
}

// agentRuns lists the records of the last run in plan order.
func agentRuns(coord *coordinator.Coordinator) []AgentRun {
	runs := []AgentRun{}
	if coord == nil {
		return runs
	}
	records := coord.Records()
	for _, role := range coordinator.Roles {
		rec, ok := records[role]
		if !ok {
			continue
		}
		runs = append(runs, AgentRun{
			Name:          rec.Agent,
			Role:          rec.Role,
			Status:        string(rec.Status),
			ExecutionTime: rec.ExecutionTime,
			Error:         rec.Error,
		})
	}
	return runs
}

// ListAgents returns the execution plan of the configured pipeline.
func (h *Handlers) ListAgents(_ context.Context, _ ListAgentsInput) (ListAgentsOutput, error) {
	cfg := h.loadConfig()
	coord, err := coordinator.NewFromConfig(cfg, h.logger)
	if err != nil {
		return ListAgentsOutput{}, err
	}
	levels, err := coord.Levels()
	if err != nil {
		return ListAgentsOutput{}, err
	}

	agents := []AgentInfo{}
	for i, level := range levels {
		for _, step := range level {
			deps := make([]string, 0, len(step.DependsOn))
			for _, d := range step.DependsOn {
				deps = append(deps, string(d))
			}
			agents = append(agents, AgentInfo{
				Role:        string(step.Role),
				Name:        step.Agent,
				DependsOn:   deps,
				Level:       i,
				Description: step.Role.Description(),
			})
		}
	}
	return ListAgentsOutput{Execution: string(coord.Mode()), Agents: agents}, nil
}

// GetStatus returns the agent states of the last run served by h.
func (h *Handlers) GetStatus(_ context.Context, _ GetStatusInput) GetStatusOutput {
	h.mu.Lock()
	coord, rep := h.last, h.lastRep
	h.mu.Unlock()

	out := GetStatusOutput{Agents: []AgentState{}}
	if coord == nil {
		return out
	}
	out.HasRun = true
	if rep != nil {
		out.AuditID = rep.AuditID
		out.RiskLevel = rep.Summary.RiskLevel
	}

	records := coord.Records()
	for _, snap := range coord.Snapshots() {
		state := AgentState{
			Name:          snap.Name,
			Role:          snap.Role,
			Status:        string(snap.Status),
			Done:          snap.Status.Terminal(),
			ExecutionTime: snap.ExecutionTime,
			HasResult:     snap.HasResult,
		}
		for _, rec := range records {
			if rec.Agent == snap.Name {
				state.Error = rec.Error
			}
		}
		out.Agents = append(out.Agents, state)
	}
	return out
}
