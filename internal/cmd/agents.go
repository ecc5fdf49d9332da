package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tuannvm/fileaudit/internal/config"
	"github.com/tuannvm/fileaudit/internal/coordinator"
	"github.com/tuannvm/fileaudit/internal/report"
)

func newAgentsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agents",
		Short: "List the audit agents and their execution plan",
		Long: `List every agent with its role, dependencies, execution level and
simulated delay.

Example:
  fileaudit agents
  fileaudit agents show security`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.loadConfig()
			if err != nil {
				return err
			}
			coord, err := coordinator.NewFromConfig(cfg, nil)
			if err != nil {
				return err
			}
			levels, err := coord.Levels()
			if err != nil {
				return err
			}

			delays := cfg.EffectiveDelays()
			var rows [][]string
			for i, level := range levels {
				for _, step := range level {
					rows = append(rows, []string{
						strconv.Itoa(i),
						string(step.Role),
						step.Agent,
						dependsOn(step.DependsOn),
						delayOf(step.Role, delays).String(),
					})
				}
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Execution: %s\n", coord.Mode())
			_, _ = fmt.Fprintln(out, report.RenderTable([]string{"Level", "Role", "Agent", "Depends On", "Delay"}, rows))
			return nil
		},
	}

	cmd.AddCommand(newAgentsShowCommand(ctx))
	return cmd
}

func newAgentsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <role>",
		Short: "Show one agent of the plan",
		Long: `Show the details of one agent.

Roles: fileAnalysis, batchProcessing, aggregation, security

Example:
  fileaudit agents show aggregation`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			role := coordinator.Role(args[0])
			if !role.Valid() {
				names := make([]string, len(coordinator.Roles))
				for i, r := range coordinator.Roles {
					names[i] = string(r)
				}
				return fmt.Errorf("unknown role: %s (valid: %s)", args[0], strings.Join(names, ", "))
			}

			cfg, err := ctx.loadConfig()
			if err != nil {
				return err
			}
			coord, err := coordinator.NewFromConfig(cfg, nil)
			if err != nil {
				return err
			}

			for _, step := range coord.Plan() {
				if step.Role != role {
					continue
				}
				out := cmd.OutOrStdout()
				_, _ = fmt.Fprintf(out, "Role: %s\n", step.Role)
				_, _ = fmt.Fprintf(out, "Agent: %s\n", step.Agent)
				_, _ = fmt.Fprintf(out, "Depends on: %s\n", dependsOn(role.Upstream()))
				_, _ = fmt.Fprintf(out, "Delay: %s\n", delayOf(role, cfg.EffectiveDelays()))
				_, _ = fmt.Fprintln(out)
				_, _ = fmt.Fprintln(out, role.Description())
			}
			return nil
		},
	}
}

func dependsOn(roles []coordinator.Role) string {
	if len(roles) == 0 {
		return "-"
	}
	deps := make([]string, len(roles))
	for i, d := range roles {
		deps[i] = string(d)
	}
	return strings.Join(deps, ", ")
}

func delayOf(role coordinator.Role, d config.Delays) time.Duration {
	switch role {
	case coordinator.RoleFileAnalysis:
		return d.FileAnalysis
	case coordinator.RoleBatchProcessing:
		return d.Batch
	case coordinator.RoleAggregation:
		return d.Aggregation
	case coordinator.RoleSecurityAnalysis:
		return d.Security
	}
	return 0
}
