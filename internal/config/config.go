package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values
const (
	DefaultOutputDir = "./audits"
	DefaultFormat    = FormatJSON
	DefaultBatchSize = 5
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Config represents the fileaudit configuration
type Config struct {
	OutputDir       string    `yaml:"output_dir"`
	Format          string    `yaml:"format"`
	Execution       string    `yaml:"execution"`
	BatchSize       int       `yaml:"batch_size"`
	SimulateLatency bool      `yaml:"simulate_latency"`
	Delays          Delays    `yaml:"delays"`
	TemplatesDir    string    `yaml:"templates_dir"`
	Timeout         int       `yaml:"timeout"` // seconds, 0 disables
	Log             LogConfig `yaml:"log"`
}

// Delays are the simulated per-agent latencies. The batch delay applies to
// every batch.
type Delays struct {
	FileAnalysis time.Duration `yaml:"file_analysis"`
	Batch        time.Duration `yaml:"batch"`
	Aggregation  time.Duration `yaml:"aggregation"`
	Security     time.Duration `yaml:"security"`
}

// LogConfig configures the structured logger
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Locations lists the config files checked when no path is given
func Locations() []string {
	return []string{
		".fileaudit/config.yaml",
		".fileaudit/config.yml",
		filepath.Join(os.Getenv("HOME"), ".fileaudit/config.yaml"),
	}
}

// Load reads config from file, checking multiple locations.
// Returns os.ErrNotExist when no path is given and no standard location exists.
func Load(path string) (*Config, error) {
	configPath := path
	if configPath == "" {
		for _, loc := range Locations() {
			if _, err := os.Stat(loc); err == nil {
				configPath = loc
				break
			}
		}
	}

	if configPath == "" {
		return nil, os.ErrNotExist
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Fields absent from the file keep their defaults
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", configPath, err)
	}
	cfg.applyDefaults()

	// Apply environment variable overrides
	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, falling back to Default (with environment
// overrides) when no config file exists at the standard locations.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if path == "" && errors.Is(err, os.ErrNotExist) {
		cfg = Default()
		cfg.ApplyEnvOverrides()
		return cfg, cfg.Validate()
	}
	return nil, err
}

func (c *Config) applyDefaults() {
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	if c.Format == "" {
		c.Format = DefaultFormat
	}
	if c.Execution == "" {
		c.Execution = ExecutionParallel
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}

// ApplyEnvOverrides applies environment variable overrides to config
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("FILEAUDIT_OUTPUT_DIR"); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv("FILEAUDIT_FORMAT"); v != "" {
		c.Format = v
	}
	if v := os.Getenv("FILEAUDIT_EXECUTION"); v != "" {
		c.Execution = v
	}
	if v := os.Getenv("FILEAUDIT_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.BatchSize = n
		}
	}
	if v := os.Getenv("FILEAUDIT_SIMULATE_LATENCY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.SimulateLatency = b
		}
	}
	if v := os.Getenv("FILEAUDIT_TEMPLATES_DIR"); v != "" {
		c.TemplatesDir = v
	}
	if v := os.Getenv("FILEAUDIT_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Timeout = n
		}
	}
	if v := os.Getenv("FILEAUDIT_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate checks enumerated settings
func (c *Config) Validate() error {
	if !IsValidFormat(c.Format) {
		return fmt.Errorf("unknown format %q (valid: %s)", c.Format, joinValues(FormatOptions))
	}
	if !IsValidExecution(c.Execution) {
		return fmt.Errorf("unknown execution mode %q (valid: %s)", c.Execution, joinValues(ExecutionOptions))
	}
	if !slices.Contains(LogLevels, c.Log.Level) {
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	if c.BatchSize < 0 {
		return fmt.Errorf("batch_size must not be negative, got %d", c.BatchSize)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %d", c.Timeout)
	}
	return nil
}

// EffectiveDelays returns Delays, or zero delays when latency simulation
// is disabled.
func (c *Config) EffectiveDelays() Delays {
	if !c.SimulateLatency {
		return Delays{}
	}
	return c.Delays
}

// Save writes the config as YAML
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		OutputDir:       DefaultOutputDir,
		Format:          DefaultFormat,
		Execution:       ExecutionParallel,
		BatchSize:       DefaultBatchSize,
		SimulateLatency: true,
		Delays: Delays{
			FileAnalysis: 300 * time.Millisecond,
			Batch:        200 * time.Millisecond,
			Aggregation:  250 * time.Millisecond,
			Security:     400 * time.Millisecond,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
