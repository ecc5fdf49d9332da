package agent

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/tuannvm/fileaudit/internal/types"
)

func echoExecutor() Executor[[]string, int] {
	return ExecutorFunc[[]string, int](func(_ context.Context, in []string) (int, error) {
		if len(in) == 0 {
			return 0, types.InvalidInput("echo", "requires items")
		}
		return len(in), nil
	})
}

func TestAgentStartsIdle(t *testing.T) {
	a := New("EchoAgent", "Echo", echoExecutor())
	s := a.Status()
	if s.Status != StatusIdle {
		t.Errorf("initial status = %q, want %q", s.Status, StatusIdle)
	}
	if s.HasResult || s.HasError {
		t.Errorf("idle agent should have neither result nor error: %+v", s)
	}
	if _, ok := a.LastRecord(); ok {
		t.Error("idle agent should have no record")
	}
}

func TestAgentRunCompleted(t *testing.T) {
	a := New("EchoAgent", "Echo", echoExecutor())

	var got []Record
	a.Subscribe(func(r Record) { got = append(got, r) })

	out, err := a.Run(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out != 2 {
		t.Errorf("Run() = %d, want 2", out)
	}

	if len(got) != 1 {
		t.Fatalf("subscriber called %d times, want 1", len(got))
	}
	rec := got[0]
	if rec.Agent != "EchoAgent" || rec.Role != "Echo" {
		t.Errorf("record identity = %s/%s", rec.Agent, rec.Role)
	}
	if rec.Status != StatusCompleted || !rec.Succeeded() {
		t.Errorf("record status = %q, want completed", rec.Status)
	}
	if rec.Result != 2 {
		t.Errorf("record result = %v, want 2", rec.Result)
	}
	if rec.Error != "" {
		t.Errorf("completed record should carry no error, got %q", rec.Error)
	}
	if rec.ExecutionTime < 0 {
		t.Errorf("execution time must be non-negative, got %d", rec.ExecutionTime)
	}
	if rec.Timestamp.IsZero() {
		t.Error("record timestamp not set")
	}

	s := a.Status()
	if s.Status != StatusCompleted || !s.HasResult || s.HasError {
		t.Errorf("status after success = %+v", s)
	}
	if last, ok := a.LastRecord(); !ok || last.Status != StatusCompleted {
		t.Errorf("LastRecord() = %+v, %v", last, ok)
	}
}

func TestAgentRunFailed(t *testing.T) {
	a := New("EchoAgent", "Echo", echoExecutor())

	var got []Record
	a.Subscribe(func(r Record) { got = append(got, r) })

	_, err := a.Run(context.Background(), nil)
	if !errors.Is(err, types.ErrInvalidInput) {
		t.Fatalf("Run(nil) error = %v, want ErrInvalidInput", err)
	}

	if len(got) != 1 {
		t.Fatalf("subscriber called %d times, want 1", len(got))
	}
	if got[0].Status != StatusFailed {
		t.Errorf("record status = %q, want failed", got[0].Status)
	}
	if got[0].Error != err.Error() {
		t.Errorf("record error = %q, want %q", got[0].Error, err.Error())
	}
	if got[0].Result != nil {
		t.Errorf("failed record should carry no result, got %v", got[0].Result)
	}

	s := a.Status()
	if s.Status != StatusFailed || !s.HasError || s.HasResult {
		t.Errorf("status after failure = %+v", s)
	}
}

func TestAgentRerunOverwrites(t *testing.T) {
	a := New("EchoAgent", "Echo", echoExecutor())
	ctx := context.Background()

	if _, err := a.Run(ctx, []string{"x"}); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := a.Run(ctx, nil); err == nil {
		t.Fatal("second run should fail")
	}
	s := a.Status()
	if s.Status != StatusFailed || s.HasResult || !s.HasError {
		t.Errorf("status after failing rerun = %+v", s)
	}

	if _, err := a.Run(ctx, []string{"x", "y", "z"}); err != nil {
		t.Fatalf("third run: %v", err)
	}
	s = a.Status()
	if s.Status != StatusCompleted || !s.HasResult || s.HasError {
		t.Errorf("status after recovering rerun = %+v", s)
	}
	if out, ok := a.Result(); !ok || out != 3 {
		t.Errorf("Result() = %d, %v, want 3, true", out, ok)
	}
	if a.Err() != nil {
		t.Errorf("Err() = %v, want nil", a.Err())
	}
}

func TestAgentMultipleSubscribers(t *testing.T) {
	a := New("EchoAgent", "Echo", echoExecutor())

	var mu sync.Mutex
	received := make(map[int][]Record)
	for i := 0; i < 3; i++ {
		i := i
		a.Subscribe(func(r Record) {
			mu.Lock()
			defer mu.Unlock()
			received[i] = append(received[i], r)
		})
	}

	if _, err := a.Run(context.Background(), []string{"a"}); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		if len(received[i]) != 1 {
			t.Fatalf("subscriber %d got %d records, want 1", i, len(received[i]))
		}
	}
	if received[0][0].Timestamp != received[1][0].Timestamp || received[1][0].Timestamp != received[2][0].Timestamp {
		t.Error("subscribers should receive the same record")
	}
}

func TestAgentPanickingSubscriberIsIsolated(t *testing.T) {
	a := New("EchoAgent", "Echo", echoExecutor())

	calls := 0
	a.Subscribe(func(Record) { panic("boom") })
	a.Subscribe(func(Record) { calls++ })

	out, err := a.Run(context.Background(), []string{"a"})
	if err != nil || out != 1 {
		t.Fatalf("Run() = %d, %v", out, err)
	}
	if calls != 1 {
		t.Errorf("second subscriber called %d times, want 1", calls)
	}
}

func TestAgentUnsubscribe(t *testing.T) {
	a := New("EchoAgent", "Echo", echoExecutor())

	calls := 0
	unsubscribe := a.Subscribe(func(Record) { calls++ })

	ctx := context.Background()
	_, _ = a.Run(ctx, []string{"a"})
	unsubscribe()
	unsubscribe()
	_, _ = a.Run(ctx, []string{"a"})

	if calls != 1 {
		t.Errorf("subscriber called %d times, want 1", calls)
	}
}

func TestStatusTerminal(t *testing.T) {
	tests := []struct {
		status   Status
		expected bool
	}{
		{StatusIdle, false},
		{StatusRunning, false},
		{StatusCompleted, true},
		{StatusFailed, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.Terminal(); got != tt.expected {
				t.Errorf("%q.Terminal() = %v, want %v", tt.status, got, tt.expected)
			}
		})
	}
}
