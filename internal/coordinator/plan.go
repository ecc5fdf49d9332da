package coordinator

import (
	"context"

	"github.com/tuannvm/fileaudit/internal/agent"
	"github.com/tuannvm/fileaudit/internal/types"
)

// Step is one entry of the execution plan.
type Step struct {
	Role       Role   `json:"role"`
	Key        string `json:"key"`
	Agent      string `json:"agent,omitempty"`
	DependsOn  []Role `json:"dependsOn,omitempty"`
	Registered bool   `json:"registered"`

	run func(ctx context.Context) error
}

// dependencies of each role. Steps after file analysis only need its output.
var dependencies = map[Role][]Role{
	RoleBatchProcessing:  {RoleFileAnalysis},
	RoleAggregation:      {RoleFileAnalysis},
	RoleSecurityAnalysis: {RoleFileAnalysis},
}

// Plan describes the fixed execution plan against the current registrations.
func (c *Coordinator) Plan() []Step {
	steps := c.plan(nil)
	for i := range steps {
		steps[i].run = nil
	}
	return steps
}

// plan builds the steps for one run over files. Unregistered roles are
// included with Registered false and are skipped at execution.
func (c *Coordinator) plan(files []types.FileDescriptor) []Step {
	c.mu.RLock()
	defer c.mu.RUnlock()

	steps := make([]Step, 0, len(Roles))
	add := func(role Role, m member, run func(ctx context.Context) error) {
		s := Step{Role: role, Key: string(role), DependsOn: dependencies[role]}
		if m != nil {
			s.Agent = m.Name()
			s.Registered = true
			s.run = run
		}
		steps = append(steps, s)
	}

	fa, bp, agg, sec := c.fileAnalysis, c.batch, c.aggregation, c.security
	mu := &c.resultsMu

	add(RoleFileAnalysis, nilIfNone(fa), func(ctx context.Context) error {
		return invoke(ctx, mu, fa, files, &c.results.FileAnalysis)
	})
	add(RoleBatchProcessing, nilIfNone(bp), func(ctx context.Context) error {
		return invoke(ctx, mu, bp, c.metadata(), &c.results.BatchProcessing)
	})
	add(RoleAggregation, nilIfNone(agg), func(ctx context.Context) error {
		return invoke(ctx, mu, agg, c.metadata(), &c.results.Aggregation)
	})
	add(RoleSecurityAnalysis, nilIfNone(sec), func(ctx context.Context) error {
		return invoke(ctx, mu, sec, c.metadata(), &c.results.Security)
	})
	return steps
}

// Levels groups the registered steps of the plan by dependency level, the
// order a parallel run executes them in.
func (c *Coordinator) Levels() ([][]Step, error) {
	return levelsOf(c.Plan())
}

// nilIfNone converts a nil typed runner into a nil member.
func nilIfNone[In, Out any](r Runner[In, Out]) member {
	if r == nil {
		return nil
	}
	return r
}

// levelsOf drops unregistered steps and groups the rest by dependency level.
// Dependencies on unregistered roles are ignored.
func levelsOf(plan []Step) ([][]Step, error) {
	byKey, names := registeredSteps(plan)
	levels, err := agent.DependencyLevels(names, roleDependencies)
	if err != nil {
		return nil, err
	}

	out := make([][]Step, len(levels))
	for i, level := range levels {
		for _, name := range level {
			out[i] = append(out[i], byKey[name])
		}
	}
	return out, nil
}

// orderOf flattens the registered steps into a single dependency order, the
// order a sequential run executes them in.
func orderOf(plan []Step) ([]Step, error) {
	byKey, names := registeredSteps(plan)
	sorted, err := agent.TopologicalSort(names, roleDependencies)
	if err != nil {
		return nil, err
	}

	out := make([]Step, len(sorted))
	for i, name := range sorted {
		out[i] = byKey[name]
	}
	return out, nil
}

func registeredSteps(plan []Step) (map[string]Step, []string) {
	byKey := make(map[string]Step, len(plan))
	var names []string
	for _, s := range plan {
		if !s.Registered {
			continue
		}
		byKey[string(s.Role)] = s
		names = append(names, string(s.Role))
	}
	return byKey, names
}

func roleDependencies(name string) []string {
	deps := dependencies[Role(name)]
	out := make([]string, len(deps))
	for i, d := range deps {
		out[i] = string(d)
	}
	return out
}

// Upstream returns every role r waits on, directly or through another role,
// farthest first.
func (r Role) Upstream() []Role {
	names := agent.TransitiveDependencies(string(r), roleDependencies)
	out := make([]Role, len(names))
	for i, n := range names {
		out[i] = Role(n)
	}
	return out
}
