// options.go provides shared option definitions for CLI, TUI and MCP.
package config

import (
	"slices"
	"strings"
)

// Option represents a selectable option with value and label
type Option struct {
	Value       string
	Label       string
	Description string
}

// RunOptions contains all parameters for running an audit.
// This is the single source of truth used by CLI, TUI and MCP.
type RunOptions struct {
	Inputs     []string // files or directories to audit
	Manifest   string   // YAML/JSON descriptor manifest
	OutputDir  string
	Format     string
	Execution  string
	BatchSize  int
	ResumeMode string // "normal", "resume", "force"
	NoLatency  bool
	Stdout     bool // print the report instead of writing a file
	Timeout    int
	ConfigPath string
	Verbosity  string // "normal", "verbose", "quiet"
}

// FormatJSON, FormatYAML, FormatMarkdown, FormatTable are report format constants
const (
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	FormatMarkdown = "markdown"
	FormatTable    = "table"
)

// Shared option definitions - SINGLE SOURCE OF TRUTH
var FormatOptions = []Option{
	{Value: FormatJSON, Label: "JSON", Description: "Machine readable"},
	{Value: FormatYAML, Label: "YAML", Description: "Machine readable"},
	{Value: FormatMarkdown, Label: "Markdown", Description: "Human readable"},
	{Value: FormatTable, Label: "Table", Description: "Terminal tables"},
}

// VerbosityNormal, VerbosityVerbose, VerbosityQuiet are verbosity constants
const (
	VerbosityNormal  = "normal"
	VerbosityVerbose = "verbose"
	VerbosityQuiet   = "quiet"
)

var VerbosityOptions = []Option{
	{Value: VerbosityNormal, Label: "Normal", Description: "Standard output"},
	{Value: VerbosityVerbose, Label: "Verbose", Description: "Debug info"},
	{Value: VerbosityQuiet, Label: "Quiet", Description: "Errors only"},
}

// ExecutionParallel, ExecutionSequential are execution mode constants
const (
	ExecutionParallel   = "parallel"
	ExecutionSequential = "sequential"
)

var ExecutionOptions = []Option{
	{Value: ExecutionParallel, Label: "Parallel", Description: "Independent agents run together"},
	{Value: ExecutionSequential, Label: "Sequential", Description: "One agent at a time"},
}

// ResumeModeNormal, ResumeModeResume, ResumeModeForce are resume mode constants
const (
	ResumeModeNormal = "normal"
	ResumeModeResume = "resume"
	ResumeModeForce  = "force"
)

var ResumeModeOptions = []Option{
	{Value: ResumeModeNormal, Label: "Normal", Description: "Always audit"},
	{Value: ResumeModeResume, Label: "Resume", Description: "Reuse report if inputs unchanged"},
	{Value: ResumeModeForce, Label: "Force", Description: "Audit and overwrite history"},
}

var BatchSizeOptions = []Option{
	{Value: "1", Label: "1", Description: "One file per batch"},
	{Value: "5", Label: "5", Description: "Default"},
	{Value: "10", Label: "10", Description: "Larger batches"},
	{Value: "25", Label: "25", Description: "Bulk"},
}

// LogLevels lists the accepted log levels
var LogLevels = []string{"debug", "info", "warn", "error"}

// DefaultRunOptions returns RunOptions with sensible defaults from config
func DefaultRunOptions(cfg *Config) RunOptions {
	if cfg == nil {
		cfg = Default()
	}
	return RunOptions{
		OutputDir:  cfg.OutputDir,
		Format:     cfg.Format,
		Execution:  cfg.Execution,
		BatchSize:  cfg.BatchSize,
		NoLatency:  !cfg.SimulateLatency,
		Timeout:    cfg.Timeout,
		ResumeMode: ResumeModeNormal,
		Verbosity:  VerbosityNormal,
	}
}

// Apply copies every explicitly set option onto a copy of cfg
func (o RunOptions) Apply(cfg *Config) *Config {
	if cfg == nil {
		cfg = Default()
	}
	out := *cfg
	if o.OutputDir != "" {
		out.OutputDir = o.OutputDir
	}
	if o.Format != "" {
		out.Format = o.Format
	}
	if o.Execution != "" {
		out.Execution = o.Execution
	}
	if o.BatchSize > 0 {
		out.BatchSize = o.BatchSize
	}
	if o.NoLatency {
		out.SimulateLatency = false
	}
	if o.Timeout > 0 {
		out.Timeout = o.Timeout
	}
	if o.IsVerbose() {
		out.Log.Level = "debug"
	}
	return &out
}

// IsVerbose returns true if verbosity is set to verbose
func (o RunOptions) IsVerbose() bool {
	return o.Verbosity == VerbosityVerbose
}

// IsQuiet returns true if verbosity is set to quiet
func (o RunOptions) IsQuiet() bool {
	return o.Verbosity == VerbosityQuiet
}

// IsValidFormat checks if a report format is supported
func IsValidFormat(format string) bool {
	return hasValue(FormatOptions, format)
}

// IsValidExecution checks if an execution mode is supported
func IsValidExecution(mode string) bool {
	return hasValue(ExecutionOptions, mode)
}

// IsValidResumeMode checks if a resume mode is supported
func IsValidResumeMode(mode string) bool {
	return mode == "" || hasValue(ResumeModeOptions, mode)
}

// Values returns the option values in order
func Values(opts []Option) []string {
	values := make([]string, len(opts))
	for i, o := range opts {
		values[i] = o.Value
	}
	return values
}

func hasValue(opts []Option, value string) bool {
	return slices.Contains(Values(opts), value)
}

func joinValues(opts []Option) string {
	return strings.Join(Values(opts), ", ")
}
