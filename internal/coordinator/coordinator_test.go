package coordinator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/tuannvm/fileaudit/internal/agent"
	"github.com/tuannvm/fileaudit/internal/audit"
	"github.com/tuannvm/fileaudit/internal/config"
	"github.com/tuannvm/fileaudit/internal/types"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func twoFiles() []types.FileDescriptor {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return []types.FileDescriptor{
		{Name: "report.pdf", Size: 2048, LastModified: now},
		{Name: "setup.exe", Size: 4096, LastModified: now},
	}
}

func newFull(t *testing.T, mode Mode) *Coordinator {
	t.Helper()
	opts := audit.Options{Logger: quietLogger()}
	c := New(WithMode(mode), WithLogger(quietLogger()))
	c.RegisterFileAnalysis(audit.NewFileAnalysisAgent(opts))
	c.RegisterBatchProcessing(audit.NewBatchProcessingAgent(5, opts))
	c.RegisterAggregation(audit.NewAggregationAgent(opts))
	c.RegisterSecurityAnalysis(audit.NewSecurityAnalysisAgent(opts))
	return c
}

func TestRunAllAgents(t *testing.T) {
	for _, mode := range []Mode{ModeParallel, ModeSequential} {
		t.Run(string(mode), func(t *testing.T) {
			c := newFull(t, mode)

			r, err := c.Run(context.Background(), twoFiles())
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			if r.Summary.TotalFiles != 2 {
				t.Errorf("TotalFiles = %d, want 2", r.Summary.TotalFiles)
			}
			if r.Summary.RiskLevel != types.RiskMedium {
				t.Errorf("RiskLevel = %q, want medium", r.Summary.RiskLevel)
			}

			var sum int64
			records := c.Records()
			if len(records) != len(Roles) {
				t.Fatalf("len(Records()) = %d, want %d", len(records), len(Roles))
			}
			for _, rec := range records {
				if rec.Status != agent.StatusCompleted {
					t.Errorf("%s status = %q", rec.Agent, rec.Status)
				}
				sum += rec.ExecutionTime
			}
			if r.TotalExecutionTime != sum {
				t.Errorf("TotalExecutionTime = %d, want %d", r.TotalExecutionTime, sum)
			}
			for _, s := range r.AgentReports.All() {
				if !s.Ran() {
					t.Errorf("%s did not run", s.Name)
				}
			}
			if got := c.Status().Status; got != agent.StatusCompleted {
				t.Errorf("coordinator status = %q", got)
			}
		})
	}
}

func TestTotalExecutionTimeSumsAgents(t *testing.T) {
	c, err := NewFromConfig(&config.Config{
		Execution:       config.ExecutionParallel,
		BatchSize:       1,
		SimulateLatency: true,
		Delays: config.Delays{
			FileAnalysis: 5 * time.Millisecond,
			Batch:        5 * time.Millisecond,
			Aggregation:  5 * time.Millisecond,
			Security:     5 * time.Millisecond,
		},
	}, quietLogger())
	if err != nil {
		t.Fatalf("NewFromConfig() error = %v", err)
	}

	r, err := c.Run(context.Background(), twoFiles())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	var sum int64
	for _, snap := range c.Snapshots() {
		sum += snap.ExecutionTime
	}
	if r.TotalExecutionTime != sum {
		t.Errorf("TotalExecutionTime = %d, want sum of agents %d", r.TotalExecutionTime, sum)
	}
	if r.TotalExecutionTime < 20 {
		t.Errorf("TotalExecutionTime = %d, want at least 20", r.TotalExecutionTime)
	}
}

func TestRunWithoutSecurity(t *testing.T) {
	opts := audit.Options{Logger: quietLogger()}
	c := New(WithLogger(quietLogger()))
	c.RegisterFileAnalysis(audit.NewFileAnalysisAgent(opts))
	c.RegisterBatchProcessing(audit.NewBatchProcessingAgent(5, opts))
	c.RegisterAggregation(audit.NewAggregationAgent(opts))

	r, err := c.Run(context.Background(), twoFiles())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(r.Findings) != 0 {
		t.Errorf("Findings = %v, want empty", r.Findings)
	}
	if r.Summary.RiskLevel != types.RiskUnknown {
		t.Errorf("RiskLevel = %q, want unknown", r.Summary.RiskLevel)
	}
	if r.AgentReports.Security.Ran() {
		t.Error("security reported as ran")
	}
	if _, ok := c.Records()[RoleSecurityAnalysis]; ok {
		t.Error("unexpected security record")
	}
	if r.Summary.TotalFiles != 2 {
		t.Errorf("TotalFiles = %d, want 2", r.Summary.TotalFiles)
	}
}

func TestRunWithNoAgents(t *testing.T) {
	c := New(WithLogger(quietLogger()))
	r, err := c.Run(context.Background(), twoFiles())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if r.TotalExecutionTime != 0 || r.Summary.TotalFiles != 0 || r.Summary.RiskLevel != types.RiskUnknown {
		t.Errorf("report = %+v", r)
	}
}

func TestRunWithoutFileAnalysisFailsDownstream(t *testing.T) {
	c := New(WithLogger(quietLogger()))
	c.RegisterAggregation(audit.NewAggregationAgent(audit.Options{Logger: quietLogger()}))

	_, err := c.Run(context.Background(), twoFiles())
	if !errors.Is(err, types.ErrInvalidInput) {
		t.Fatalf("Run() error = %v, want ErrInvalidInput", err)
	}
}

func TestRunRejectsEmptyInput(t *testing.T) {
	c := newFull(t, ModeParallel)
	_, err := c.Run(context.Background(), nil)
	if !errors.Is(err, types.ErrInvalidInput) {
		t.Fatalf("Run() error = %v, want ErrInvalidInput", err)
	}
	if _, ok := c.Result(); ok {
		t.Error("failed run left a result")
	}
	for _, snap := range c.Snapshots() {
		if snap.Status != agent.StatusIdle {
			t.Errorf("%s status = %q, want idle", snap.Name, snap.Status)
		}
	}
}

func failing(name string, err error) BatchProcessor {
	return agent.New[[]types.FileMetadata, audit.BatchReport](name, "Failing",
		agent.ExecutorFunc[[]types.FileMetadata, audit.BatchReport](func(context.Context, []types.FileMetadata) (audit.BatchReport, error) {
			return audit.BatchReport{}, err
		}))
}

func TestFailingAgentAbortsRun(t *testing.T) {
	boom := errors.New("boom")

	for _, mode := range []Mode{ModeParallel, ModeSequential} {
		t.Run(string(mode), func(t *testing.T) {
			c := newFull(t, mode)
			c.RegisterBatchProcessing(failing("BrokenBatch", boom))

			r, err := c.Run(context.Background(), twoFiles())
			if !errors.Is(err, boom) {
				t.Fatalf("Run() error = %v, want boom", err)
			}
			if r.AuditID != "" {
				t.Errorf("partial report returned: %+v", r)
			}
			if _, ok := c.Result(); ok {
				t.Error("coordinator stored a result")
			}
			if c.Status().Status != agent.StatusFailed {
				t.Errorf("coordinator status = %q, want failed", c.Status().Status)
			}
			if rec := c.Records()[RoleBatchProcessing]; rec.Status != agent.StatusFailed || rec.Error != "boom" {
				t.Errorf("batch record = %+v", rec)
			}
		})
	}
}

func TestSequentialStopsAtFirstFailure(t *testing.T) {
	c := newFull(t, ModeSequential)
	c.RegisterBatchProcessing(failing("BrokenBatch", errors.New("boom")))

	if _, err := c.Run(context.Background(), twoFiles()); err == nil {
		t.Fatal("Run() expected error")
	}
	records := c.Records()
	if _, ok := records[RoleAggregation]; ok {
		t.Error("aggregation ran after failure")
	}
	if _, ok := records[RoleSecurityAnalysis]; ok {
		t.Error("security ran after failure")
	}
}

func TestParallelFailureCancelsSiblings(t *testing.T) {
	opts := audit.Options{Delay: time.Hour, Logger: quietLogger()}
	c := New(WithLogger(quietLogger()))
	c.RegisterFileAnalysis(audit.NewFileAnalysisAgent(audit.Options{Logger: quietLogger()}))
	c.RegisterBatchProcessing(failing("BrokenBatch", errors.New("boom")))
	c.RegisterSecurityAnalysis(audit.NewSecurityAnalysisAgent(opts))

	done := make(chan error, 1)
	go func() {
		_, err := c.Run(context.Background(), twoFiles())
		done <- err
	}()

	select {
	case err := <-done:
		if err == nil || err.Error() != "boom" {
			t.Fatalf("Run() error = %v, want boom", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("sibling step was not cancelled")
	}
}

func TestRunHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newFull(t, ModeParallel)
	if _, err := c.Run(ctx, twoFiles()); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
}

func TestForwardReceivesEveryAgentRecord(t *testing.T) {
	c := newFull(t, ModeParallel)

	var mu sync.Mutex
	seen := map[string]int{}
	c.Forward(func(rec agent.Record) {
		mu.Lock()
		defer mu.Unlock()
		seen[rec.Agent]++
	})
	// A panicking listener must not break the run or other listeners
	c.Forward(func(agent.Record) { panic("listener") })

	if _, err := c.Run(context.Background(), twoFiles()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for _, name := range []string{audit.FileAnalysisName, audit.BatchProcessingName, audit.AggregationName, audit.SecurityAnalysisName} {
		if seen[name] != 1 {
			t.Errorf("%s forwarded %d times, want 1", name, seen[name])
		}
	}
}

func TestReregisterReplacesForwarding(t *testing.T) {
	c := New(WithLogger(quietLogger()))
	first := audit.NewAggregationAgent(audit.Options{})
	second := audit.NewAggregationAgent(audit.Options{})
	c.RegisterAggregation(first)
	c.RegisterAggregation(second)

	count := 0
	c.Forward(func(agent.Record) { count++ })

	_, _ = first.Run(context.Background(), nil)
	if count != 0 {
		t.Errorf("replaced agent still forwarded %d records", count)
	}
	_, _ = second.Run(context.Background(), nil)
	if count != 1 {
		t.Errorf("current agent forwarded %d records, want 1", count)
	}
}

func TestCoordinatorSubscribers(t *testing.T) {
	c := newFull(t, ModeParallel)

	var got []agent.Record
	c.Subscribe(func(rec agent.Record) { got = append(got, rec) })

	if _, err := c.Run(context.Background(), twoFiles()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(got) != 1 || got[0].Agent != Name || got[0].Status != agent.StatusCompleted {
		t.Errorf("coordinator records = %+v", got)
	}
}

func TestRerunResetsResults(t *testing.T) {
	c := newFull(t, ModeParallel)
	if _, err := c.Run(context.Background(), twoFiles()); err != nil {
		t.Fatal(err)
	}

	c.RegisterBatchProcessing(nil)
	c.RegisterAggregation(nil)
	r, err := c.Run(context.Background(), twoFiles()[:1])
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if r.Summary.TotalFiles != 0 || r.AgentReports.BatchProcessing.Ran() {
		t.Errorf("stale results leaked into second report: %+v", r.Summary)
	}
	if r.AgentReports.FileAnalysis.FilesAnalyzed != 1 {
		t.Errorf("FilesAnalyzed = %d, want 1", r.AgentReports.FileAnalysis.FilesAnalyzed)
	}
}
