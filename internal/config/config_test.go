package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
output_dir: /tmp/audits
format: markdown
execution: sequential
batch_size: 3
delays:
  batch: 50ms
  security: 1s
log:
  level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.OutputDir != "/tmp/audits" || cfg.Format != FormatMarkdown || cfg.Execution != ExecutionSequential {
		t.Errorf("Load() = %+v", cfg)
	}
	if cfg.BatchSize != 3 {
		t.Errorf("BatchSize = %d, want 3", cfg.BatchSize)
	}
	if cfg.Delays.Batch != 50*time.Millisecond || cfg.Delays.Security != time.Second {
		t.Errorf("Delays = %+v", cfg.Delays)
	}
	// Absent fields keep their defaults
	if cfg.Delays.FileAnalysis != 300*time.Millisecond || !cfg.SimulateLatency {
		t.Errorf("defaults lost: %+v", cfg)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != DefaultLogFormat {
		t.Errorf("Log = %+v", cfg.Log)
	}
}

func TestLoadDefaultsEmptyFields(t *testing.T) {
	cfg, err := Load(writeConfig(t, "output_dir: \"\"\nbatch_size: 0\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.OutputDir != DefaultOutputDir || cfg.BatchSize != DefaultBatchSize {
		t.Errorf("OutputDir = %q, BatchSize = %d", cfg.OutputDir, cfg.BatchSize)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad execution", "execution: random\n"},
		{"bad format", "format: html\n"},
		{"bad log level", "log:\n  level: loud\n"},
		{"negative timeout", "timeout: -1\n"},
		{"not yaml", "output_dir: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("Load() expected error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() expected error for missing file")
	}
}

func TestLoadOrDefault(t *testing.T) {
	// Run from an empty directory with no HOME config
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("FILEAUDIT_FORMAT", "table")

	cfg, err := LoadOrDefault("")
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if cfg.Format != FormatTable {
		t.Errorf("Format = %q, want env override %q", cfg.Format, FormatTable)
	}
	if _, err := Load(""); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load(\"\") error = %v, want os.ErrNotExist", err)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("FILEAUDIT_OUTPUT_DIR", "/env/out")
	t.Setenv("FILEAUDIT_EXECUTION", ExecutionSequential)
	t.Setenv("FILEAUDIT_BATCH_SIZE", "9")
	t.Setenv("FILEAUDIT_SIMULATE_LATENCY", "false")
	t.Setenv("FILEAUDIT_TEMPLATES_DIR", "/env/templates")
	t.Setenv("FILEAUDIT_TIMEOUT", "30")
	t.Setenv("FILEAUDIT_LOG_LEVEL", "warn")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.OutputDir != "/env/out" || cfg.Execution != ExecutionSequential || cfg.BatchSize != 9 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.SimulateLatency || cfg.TemplatesDir != "/env/templates" || cfg.Timeout != 30 || cfg.Log.Level != "warn" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestApplyEnvOverridesIgnoresGarbage(t *testing.T) {
	t.Setenv("FILEAUDIT_BATCH_SIZE", "many")
	t.Setenv("FILEAUDIT_SIMULATE_LATENCY", "maybe")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.BatchSize != DefaultBatchSize || !cfg.SimulateLatency {
		t.Errorf("garbage overrides applied: %+v", cfg)
	}
}

func TestEffectiveDelays(t *testing.T) {
	cfg := Default()
	if cfg.EffectiveDelays() != cfg.Delays {
		t.Error("expected configured delays when simulation is on")
	}
	cfg.SimulateLatency = false
	if cfg.EffectiveDelays() != (Delays{}) {
		t.Error("expected zero delays when simulation is off")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".fileaudit", "config.yaml")
	cfg := Default()
	cfg.Format = FormatYAML

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Format != FormatYAML || loaded.Delays != cfg.Delays {
		t.Errorf("Load(Save()) = %+v", loaded)
	}
}
