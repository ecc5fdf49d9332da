// Package coordinator sequences the audit agents according to a fixed
// dependency plan and synthesizes the final report.
package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tuannvm/fileaudit/internal/agent"
	"github.com/tuannvm/fileaudit/internal/report"
	"github.com/tuannvm/fileaudit/internal/types"
)

// Coordinator identity.
const (
	Name     = "CoordinatorAgent"
	RoleName = "Coordinator"
)

// Mode selects how independent steps are executed.
type Mode string

const (
	// ModeParallel runs each dependency level concurrently.
	ModeParallel Mode = "parallel"
	// ModeSequential runs steps one at a time in plan order.
	ModeSequential Mode = "sequential"
)

// ParseMode validates an execution mode. Empty means parallel.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeParallel:
		return ModeParallel, nil
	case ModeSequential:
		return ModeSequential, nil
	}
	return "", fmt.Errorf("unknown execution mode %q", s)
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithMode sets the execution mode.
func WithMode(m Mode) Option {
	return func(c *Coordinator) { c.mode = m }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock overrides the report timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

// Coordinator is itself an agent whose input is the descriptor sequence and
// whose output is the final report. Registered agents' run records are
// re-broadcast to Forward subscribers for progress reporting.
type Coordinator struct {
	*agent.Agent[[]types.FileDescriptor, report.Report]

	logger *slog.Logger
	mode   Mode
	now    func() time.Time
	events *agent.Bus

	mu           sync.RWMutex
	fileAnalysis FileAnalyzer
	batch        BatchProcessor
	aggregation  Aggregator
	security     SecurityAnalyzer
	forwarding   map[Role]func()

	resultsMu sync.Mutex
	results   report.Inputs
}

// New creates a coordinator with no registered agents.
func New(opts ...Option) *Coordinator {
	c := &Coordinator{
		logger:     slog.Default(),
		mode:       ModeParallel,
		now:        time.Now,
		forwarding: make(map[Role]func()),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.events = agent.NewBus(c.logger)
	c.Agent = agent.New[[]types.FileDescriptor, report.Report](Name, RoleName, agent.ExecutorFunc[[]types.FileDescriptor, report.Report](c.execute), agent.WithLogger(c.logger))
	return c
}

// Mode returns the execution mode.
func (c *Coordinator) Mode() Mode { return c.mode }

// Forward subscribes fn to the run records of every registered agent,
// including agents registered later.
func (c *Coordinator) Forward(fn agent.Subscriber) func() {
	return c.events.Subscribe(fn)
}

// RegisterFileAnalysis fills the file analysis role, replacing any
// previous registration.
func (c *Coordinator) RegisterFileAnalysis(r FileAnalyzer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fileAnalysis = r
	c.attach(RoleFileAnalysis, r)
}

// RegisterBatchProcessing fills the batch processing role.
func (c *Coordinator) RegisterBatchProcessing(r BatchProcessor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batch = r
	c.attach(RoleBatchProcessing, r)
}

// RegisterAggregation fills the aggregation role.
func (c *Coordinator) RegisterAggregation(r Aggregator) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aggregation = r
	c.attach(RoleAggregation, r)
}

// RegisterSecurityAnalysis fills the security analysis role.
func (c *Coordinator) RegisterSecurityAnalysis(r SecurityAnalyzer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.security = r
	c.attach(RoleSecurityAnalysis, r)
}

// attach swaps the forwarding subscription for role. Caller holds c.mu.
func (c *Coordinator) attach(role Role, m member) {
	if unsub, ok := c.forwarding[role]; ok {
		unsub()
		delete(c.forwarding, role)
	}
	if m == nil {
		return
	}
	c.forwarding[role] = m.Subscribe(c.events.Publish)
	c.logger.Debug("agent registered", "role", role, "agent", m.Name())
}

// Registered reports whether role has an agent.
func (c *Coordinator) Registered(role Role) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.memberLocked(role) != nil
}

func (c *Coordinator) memberLocked(role Role) member {
	switch role {
	case RoleFileAnalysis:
		if c.fileAnalysis != nil {
			return c.fileAnalysis
		}
	case RoleBatchProcessing:
		if c.batch != nil {
			return c.batch
		}
	case RoleAggregation:
		if c.aggregation != nil {
			return c.aggregation
		}
	case RoleSecurityAnalysis:
		if c.security != nil {
			return c.security
		}
	}
	return nil
}

// Snapshots returns the status of every registered agent in plan order.
func (c *Coordinator) Snapshots() []agent.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []agent.Snapshot
	for _, role := range Roles {
		if m := c.memberLocked(role); m != nil {
			out = append(out, m.Status())
		}
	}
	return out
}

// Records returns the run records stored by the latest run, keyed by role.
// A failed run keeps the records of the steps that ran.
func (c *Coordinator) Records() map[Role]agent.Record {
	c.resultsMu.Lock()
	defer c.resultsMu.Unlock()
	out := make(map[Role]agent.Record)
	put := func(role Role, rec *agent.Record) {
		if rec != nil {
			out[role] = *rec
		}
	}
	put(RoleFileAnalysis, c.results.FileAnalysis.Record)
	put(RoleBatchProcessing, c.results.BatchProcessing.Record)
	put(RoleAggregation, c.results.Aggregation.Record)
	put(RoleSecurityAnalysis, c.results.Security.Record)
	return out
}

func (c *Coordinator) execute(ctx context.Context, files []types.FileDescriptor) (report.Report, error) {
	if len(files) == 0 {
		return report.Report{}, types.InvalidInput(Name, "requires a non-empty list of files")
	}

	c.resultsMu.Lock()
	c.results = report.Inputs{}
	c.resultsMu.Unlock()

	plan := c.plan(files)
	var err error
	if c.mode == ModeSequential {
		err = c.runSequential(ctx, plan)
	} else {
		err = c.runParallel(ctx, plan)
	}
	if err != nil {
		return report.Report{}, err
	}

	c.resultsMu.Lock()
	in := c.results
	c.resultsMu.Unlock()
	return report.Build(in, c.now()), nil
}

func (c *Coordinator) runSequential(ctx context.Context, plan []Step) error {
	order, err := orderOf(plan)
	if err != nil {
		return err
	}
	for _, s := range order {
		if err := c.runStep(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

// runParallel runs each level concurrently and waits for it before starting
// the next. The first failure cancels the rest of its level and is returned.
func (c *Coordinator) runParallel(ctx context.Context, plan []Step) error {
	levels, err := levelsOf(plan)
	if err != nil {
		return err
	}
	for i, level := range levels {
		c.logger.Debug("running level", "level", i, "steps", len(level))
		g, gctx := errgroup.WithContext(ctx)
		for _, s := range level {
			g.Go(func() error {
				return c.runStep(gctx, s)
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Coordinator) runStep(ctx context.Context, s Step) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.logger.Debug("step started", "role", s.Role, "key", s.Key)
	if err := s.run(ctx); err != nil {
		c.logger.Debug("step failed", "role", s.Role, "error", err)
		return err
	}
	return nil
}

// metadata is the lazily computed input of the steps after file analysis:
// the stored FileMetadata, or an empty sequence when file analysis has no
// output.
func (c *Coordinator) metadata() []types.FileMetadata {
	c.resultsMu.Lock()
	defer c.resultsMu.Unlock()
	if out := c.results.FileAnalysis.Output; out != nil && out.Files != nil {
		return out.Files
	}
	return []types.FileMetadata{}
}

// invoke runs r and stores its record and output in dst from the call's own
// return values.
func invoke[In, Out any](ctx context.Context, mu *sync.Mutex, r Runner[In, Out], in In, dst *report.Outcome[Out]) error {
	out, err := r.Run(ctx, in)
	rec, ok := r.LastRecord()

	mu.Lock()
	defer mu.Unlock()
	if ok {
		dst.Record = &rec
	}
	if err != nil {
		return err
	}
	dst.Output = &out
	return nil
}
