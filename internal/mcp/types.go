// Package mcp provides MCP (Model Context Protocol) server functionality for fileaudit.
// It exposes the audit pipeline as MCP tools.
package mcp

import (
	"github.com/tuannvm/fileaudit/internal/report"
	"github.com/tuannvm/fileaudit/internal/types"
)

// FileInput describes one file passed inline instead of by path.
type FileInput struct {
	Name         string `json:"name" jsonschema:"File name including extension"`
	Size         int64  `json:"size" jsonschema:"File size in bytes"`
	LastModified string `json:"last_modified,omitempty" jsonschema:"RFC 3339 modification time (default: now)"`
}

// RunAuditInput defines parameters for running an audit.
type RunAuditInput struct {
	Paths     []string    `json:"paths,omitempty" jsonschema:"Files or directories to audit (contents are never read)"`
	Files     []FileInput `json:"files,omitempty" jsonschema:"Inline file descriptors to audit"`
	Manifest  string      `json:"manifest,omitempty" jsonschema:"Path to a YAML or JSON descriptor manifest"`
	Execution string      `json:"execution,omitempty" jsonschema:"parallel or sequential (default: from config)"`
	BatchSize int         `json:"batch_size,omitempty" jsonschema:"Files per batch (default: 5)"`
	NoLatency bool        `json:"no_latency,omitempty" jsonschema:"Skip the simulated per-agent processing delays"`
	Format    string      `json:"format,omitempty" jsonschema:"Render the report as json/yaml/markdown/table instead of returning it structured"`
	OutputDir string      `json:"output_dir,omitempty" jsonschema:"Also write the report file into this directory"`
}

// AgentRun is the outcome of one agent in a run.
type AgentRun struct {
	Name          string `json:"name"`
	Role          string `json:"role"`
	Status        string `json:"status"`
	ExecutionTime int64  `json:"execution_time_ms"`
	Error         string `json:"error,omitempty"`
}

// RunAuditOutput contains the result of an audit.
type RunAuditOutput struct {
	Success    bool           `json:"success"`
	AuditID    string         `json:"audit_id,omitempty"`
	RiskLevel  string         `json:"risk_level,omitempty"`
	TotalFiles int            `json:"total_files"`
	Agents     []AgentRun     `json:"agents"`
	Report     *report.Report `json:"report,omitempty"`
	Rendered   string         `json:"rendered,omitempty"`
	ReportPath string         `json:"report_path,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// ListAgentsInput defines parameters for listing agents.
type ListAgentsInput struct{}

// AgentInfo describes one step of the plan.
type AgentInfo struct {
	Role        string   `json:"role"`
	Name        string   `json:"name"`
	DependsOn   []string `json:"depends_on"`
	Level       int      `json:"level"`
	Description string   `json:"description"`
}

// ListAgentsOutput contains the execution plan.
type ListAgentsOutput struct {
	Execution string      `json:"execution"`
	Agents    []AgentInfo `json:"agents"`
}

// GetStatusInput defines parameters for getting status.
type GetStatusInput struct{}

// AgentState is the current status of one agent of the last run.
type AgentState struct {
	Name          string `json:"name"`
	Role          string `json:"role"`
	Status        string `json:"status"`
	Done          bool   `json:"done"`
	ExecutionTime int64  `json:"execution_time_ms"`
	HasResult     bool   `json:"has_result"`
	Error         string `json:"error,omitempty"`
}

// GetStatusOutput contains the status of the last run in this server.
type GetStatusOutput struct {
	HasRun    bool            `json:"has_run"`
	AuditID   string          `json:"audit_id,omitempty"`
	RiskLevel types.RiskLevel `json:"risk_level,omitempty"`
	Agents    []AgentState    `json:"agents"`
}
