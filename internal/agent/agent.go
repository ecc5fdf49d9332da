// Package agent provides the lifecycle contract shared by every audit agent:
// status tracking, timing, run records and fan-out of those records to
// subscribers through an explicit event bus.
package agent

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Status is an agent lifecycle state.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal reports whether the status ends a run.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Executor is the domain computation an agent wraps. Implementations must
// return an error tagged with types.ErrInvalidInput when the input does not
// satisfy their precondition.
type Executor[In, Out any] interface {
	Execute(ctx context.Context, in In) (Out, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc[In, Out any] func(ctx context.Context, in In) (Out, error)

// Execute calls f(ctx, in).
func (f ExecutorFunc[In, Out]) Execute(ctx context.Context, in In) (Out, error) {
	return f(ctx, in)
}

// Snapshot is a read-only view of an agent for external inspection.
type Snapshot struct {
	Name          string `json:"name"`
	Role          string `json:"role"`
	Status        Status `json:"status"`
	ExecutionTime int64  `json:"executionTime"`
	HasResult     bool   `json:"hasResult"`
	HasError      bool   `json:"hasError"`
}

// Option configures an Agent.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger used for lifecycle debug output and for
// reporting subscriber panics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Agent runs an Executor through the idle → running → completed|failed state
// machine. A single Run may be in flight per instance; re-running a finished
// agent starts again from running and overwrites the previous outcome.
type Agent[In, Out any] struct {
	name   string
	role   string
	exec   Executor[In, Out]
	bus    *Bus
	logger *slog.Logger

	mu        sync.RWMutex
	status    Status
	result    Out
	hasResult bool
	err       error
	elapsed   int64
	last      *Record
}

// New creates an idle agent around exec.
func New[In, Out any](name, role string, exec Executor[In, Out], opts ...Option) *Agent[In, Out] {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Agent[In, Out]{
		name:   name,
		role:   role,
		exec:   exec,
		bus:    NewBus(o.logger),
		logger: o.logger,
		status: StatusIdle,
	}
}

// Name returns the agent name.
func (a *Agent[In, Out]) Name() string { return a.name }

// Role returns the agent role label.
func (a *Agent[In, Out]) Role() string { return a.role }

// Run executes the agent. The run record is published to every subscriber
// exactly once, after the terminal status is set and before Run returns.
// Execution errors are returned unchanged.
func (a *Agent[In, Out]) Run(ctx context.Context, in In) (Out, error) {
	a.mu.Lock()
	a.status = StatusRunning
	a.hasResult = false
	a.err = nil
	a.mu.Unlock()

	a.logger.Debug("agent started", "agent", a.name)

	start := time.Now()
	out, err := a.exec.Execute(ctx, in)
	elapsed := time.Since(start).Milliseconds()
	if elapsed < 0 {
		elapsed = 0
	}

	rec := Record{
		Agent:         a.name,
		Role:          a.role,
		ExecutionTime: elapsed,
		Timestamp:     time.Now().UTC(),
	}

	a.mu.Lock()
	a.elapsed = elapsed
	if err != nil {
		a.status = StatusFailed
		a.err = err
		rec.Status = StatusFailed
		rec.Error = err.Error()
	} else {
		a.status = StatusCompleted
		a.result = out
		a.hasResult = true
		rec.Status = StatusCompleted
		rec.Result = out
	}
	stored := rec
	a.last = &stored
	a.mu.Unlock()

	a.logger.Debug("agent finished", "agent", a.name, "status", rec.Status, "elapsed_ms", elapsed)
	a.bus.Publish(rec)

	if err != nil {
		var zero Out
		return zero, err
	}
	return out, nil
}

// Subscribe registers fn for every future run record of this agent and
// returns a function that removes the subscription.
func (a *Agent[In, Out]) Subscribe(fn Subscriber) func() {
	return a.bus.Subscribe(fn)
}

// Status returns a snapshot of the agent state.
func (a *Agent[In, Out]) Status() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return Snapshot{
		Name:          a.name,
		Role:          a.role,
		Status:        a.status,
		ExecutionTime: a.elapsed,
		HasResult:     a.hasResult,
		HasError:      a.err != nil,
	}
}

// Result returns the output of the last successful run.
func (a *Agent[In, Out]) Result() (Out, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.result, a.hasResult
}

// Err returns the error of the last failed run, if any.
func (a *Agent[In, Out]) Err() error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.err
}

// LastRecord returns the record produced by the most recent run.
func (a *Agent[In, Out]) LastRecord() (Record, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.last == nil {
		return Record{}, false
	}
	return *a.last, true
}
