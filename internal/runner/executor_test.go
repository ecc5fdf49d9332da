package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tuannvm/fileaudit/internal/agent"
	"github.com/tuannvm/fileaudit/internal/config"
	"github.com/tuannvm/fileaudit/internal/logging"
	"github.com/tuannvm/fileaudit/internal/report"
	"github.com/tuannvm/fileaudit/internal/types"
)

// isolate runs the test from an empty directory so no config file is found.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	return dir
}

func writeInputs(t *testing.T, dir string) string {
	t.Helper()
	in := filepath.Join(dir, "uploads")
	if err := os.MkdirAll(in, 0755); err != nil {
		t.Fatal(err)
	}
	for name, size := range map[string]int{"a.pdf": 100, "b.exe": 200} {
		if err := os.WriteFile(filepath.Join(in, name), make([]byte, size), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return in
}

func TestExecuteWritesReport(t *testing.T) {
	dir := isolate(t)
	in := writeInputs(t, dir)
	var out, errOut bytes.Buffer

	res, err := Execute(context.Background(), config.RunOptions{
		Inputs:    []string{in},
		OutputDir: filepath.Join(dir, "out"),
		NoLatency: true,
	}, NewWriterLogger(&out, &errOut, false, false))
	if err != nil {
		t.Fatalf("Execute() error = %v\n%s", err, errOut.String())
	}

	if filepath.Ext(res.ReportPath) != ".json" {
		t.Errorf("ReportPath = %q, want .json", res.ReportPath)
	}
	data, err := os.ReadFile(res.ReportPath)
	if err != nil {
		t.Fatal(err)
	}
	var rep report.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		t.Fatalf("report is not JSON: %v", err)
	}
	if rep.Summary.TotalFiles != 2 || rep.AuditID != res.Report.AuditID {
		t.Errorf("report = %+v", rep.Summary)
	}
	if len(res.Records) != 4 {
		t.Errorf("len(Records) = %d, want 4", len(res.Records))
	}

	logged := out.String()
	for _, want := range []string{"✓ FileAnalysisAgent", "✓ SecurityAnalysisAgent", "4/4 agents succeeded", "Report: "} {
		if !strings.Contains(logged, want) {
			t.Errorf("output missing %q:\n%s", want, logged)
		}
	}
}

func TestExecuteResume(t *testing.T) {
	dir := isolate(t)
	in := writeInputs(t, dir)
	opts := config.RunOptions{
		Inputs:     []string{in},
		OutputDir:  filepath.Join(dir, "out"),
		NoLatency:  true,
		ResumeMode: config.ResumeModeResume,
	}
	logger := NewWriterLogger(&bytes.Buffer{}, &bytes.Buffer{}, false, true)

	first, err := Execute(context.Background(), opts, logger)
	if err != nil {
		t.Fatalf("first Execute() error = %v", err)
	}
	if first.Reused {
		t.Fatal("first run reported reuse")
	}

	second, err := Execute(context.Background(), opts, logger)
	if err != nil {
		t.Fatalf("second Execute() error = %v", err)
	}
	if !second.Reused || second.ReportPath != first.ReportPath {
		t.Errorf("second = %+v, want reuse of %s", second, first.ReportPath)
	}

	// A changed setting forces a new audit
	opts.BatchSize = 1
	third, err := Execute(context.Background(), opts, logger)
	if err != nil {
		t.Fatalf("third Execute() error = %v", err)
	}
	if third.Reused {
		t.Error("changed batch size should re-audit")
	}
}

func TestExecuteResumeReorderedManifest(t *testing.T) {
	dir := isolate(t)
	manifest := filepath.Join(dir, "files.yaml")
	write := func(body string) {
		t.Helper()
		if err := os.WriteFile(manifest, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}
	const pdf = "  - name: a.pdf\n    size: 100\n    last_modified: 2024-01-01T00:00:00Z\n"
	const exe = "  - name: b.exe\n    size: 200\n    last_modified: 2024-01-01T00:00:00Z\n"
	opts := config.RunOptions{
		Manifest:   manifest,
		OutputDir:  filepath.Join(dir, "out"),
		NoLatency:  true,
		ResumeMode: config.ResumeModeResume,
	}
	logger := NewWriterLogger(&bytes.Buffer{}, &bytes.Buffer{}, false, true)

	write("files:\n" + pdf + exe)
	if _, err := Execute(context.Background(), opts, logger); err != nil {
		t.Fatalf("first Execute() error = %v", err)
	}

	write("files:\n" + exe + pdf)
	second, err := Execute(context.Background(), opts, logger)
	if err != nil {
		t.Fatalf("second Execute() error = %v", err)
	}
	if second.Reused {
		t.Fatal("reordered manifest reused the previous report")
	}
	if got := second.Report.DetailedResults.Files[0].Name; got != "b.exe" {
		t.Errorf("first file = %q, want b.exe", got)
	}
}

func TestExecuteStdout(t *testing.T) {
	dir := isolate(t)
	in := writeInputs(t, dir)

	var buf bytes.Buffer
	prev := Stdout
	Stdout = &buf
	t.Cleanup(func() { Stdout = prev })

	res, err := Execute(context.Background(), config.RunOptions{
		Inputs:    []string{in},
		Format:    config.FormatMarkdown,
		Stdout:    true,
		NoLatency: true,
	}, NewWriterLogger(&bytes.Buffer{}, &bytes.Buffer{}, false, true))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.ReportPath != "" {
		t.Errorf("ReportPath = %q, want empty", res.ReportPath)
	}
	if !strings.Contains(buf.String(), "# File Audit Report") {
		t.Errorf("stdout = %q", buf.String())
	}
	if _, err := os.Stat(filepath.Join(dir, config.DefaultOutputDir)); !os.IsNotExist(err) {
		t.Error("output directory created for stdout run")
	}
}

func TestExecuteNoInputs(t *testing.T) {
	isolate(t)
	_, err := Execute(context.Background(), config.RunOptions{}, NewWriterLogger(&bytes.Buffer{}, &bytes.Buffer{}, false, true))
	if !errors.Is(err, types.ErrInvalidInput) {
		t.Errorf("Execute() error = %v, want ErrInvalidInput", err)
	}
}

func TestExecuteInvalidOptions(t *testing.T) {
	dir := isolate(t)
	in := writeInputs(t, dir)
	logger := NewWriterLogger(&bytes.Buffer{}, &bytes.Buffer{}, false, true)

	tests := []struct {
		name string
		opts config.RunOptions
	}{
		{"format", config.RunOptions{Inputs: []string{in}, Format: "pdf"}},
		{"execution", config.RunOptions{Inputs: []string{in}, Execution: "random"}},
		{"resume mode", config.RunOptions{Inputs: []string{in}, ResumeMode: "maybe"}},
		{"missing config", config.RunOptions{Inputs: []string{in}, ConfigPath: filepath.Join(dir, "nope.yaml")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Execute(context.Background(), tt.opts, logger); err == nil {
				t.Error("Execute() expected error")
			}
		})
	}
}

func TestExecuteCancelled(t *testing.T) {
	dir := isolate(t)
	in := writeInputs(t, dir)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	_, err := Execute(ctx, config.RunOptions{Inputs: []string{in}, OutputDir: filepath.Join(dir, "out")}, NewWriterLogger(&out, &bytes.Buffer{}, false, false))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Execute() error = %v, want context.Canceled", err)
	}
	entries, _ := os.ReadDir(filepath.Join(dir, "out"))
	for _, e := range entries {
		if !e.IsDir() {
			t.Errorf("report written for cancelled audit: %s", e.Name())
		}
	}
}

func TestAuditForwardsRecords(t *testing.T) {
	cfg := config.Default()
	cfg.SimulateLatency = false

	var names []string
	rep, coord, err := Audit(context.Background(), cfg, []types.FileDescriptor{{Name: "a.txt", Size: 1}}, logging.Discard(), nil)
	if err != nil {
		t.Fatalf("Audit() error = %v", err)
	}
	if rep.Summary.TotalFiles != 1 || coord == nil {
		t.Errorf("Audit() = %+v", rep.Summary)
	}

	cfg.Execution = config.ExecutionSequential
	_, _, err = Audit(context.Background(), cfg, []types.FileDescriptor{{Name: "a.txt", Size: 1}}, logging.Discard(), func(rec agent.Record) {
		names = append(names, rec.Agent)
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 4 || names[0] != "FileAnalysisAgent" {
		t.Errorf("forwarded = %v", names)
	}
}

func TestResolveInputsManifest(t *testing.T) {
	dir := isolate(t)
	manifest := filepath.Join(dir, "files.yaml")
	if err := os.WriteFile(manifest, []byte("files:\n  - name: x.zip\n    size: 3\n  - name: x.zip\n    size: 3\n"), 0644); err != nil {
		t.Fatal(err)
	}

	files, err := ResolveInputs(config.RunOptions{Manifest: manifest})
	if err != nil {
		t.Fatalf("ResolveInputs() error = %v", err)
	}
	if len(files) != 1 {
		t.Errorf("len(files) = %d, want 1 after dedupe", len(files))
	}
}

func TestStdLoggerLevels(t *testing.T) {
	var out, errOut bytes.Buffer
	quiet := NewWriterLogger(&out, &errOut, true, true)
	quiet.Info("info")
	quiet.Verbose("verbose")
	quiet.Error("bad %d", 1)
	if out.Len() != 0 || errOut.String() != "Error: bad 1\n" {
		t.Errorf("quiet out = %q, err = %q", out.String(), errOut.String())
	}

	out.Reset()
	verbose := NewWriterLogger(&out, &errOut, true, false)
	verbose.Verbose("detail")
	if out.String() != "[DEBUG] detail\n" {
		t.Errorf("verbose out = %q", out.String())
	}
}
