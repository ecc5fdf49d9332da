package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tuannvm/fileaudit/internal/report"
)

// RenderReport returns a styled terminal view of a report
func RenderReport(r report.Report) string {
	var b strings.Builder

	b.WriteString(HeaderStyle().Render("Audit " + r.AuditID))
	b.WriteString("\n")

	label := MutedStyle().Width(14)
	line := func(k, v string) {
		b.WriteString(label.Render(k) + v + "\n")
	}
	line("Files", fmt.Sprintf("%d", r.Summary.TotalFiles))
	line("Total size", r.Summary.TotalSize)
	line("Risk", RiskStyle(r.Summary.RiskLevel).Render(strings.ToUpper(string(r.Summary.RiskLevel))))
	line("Duration", fmt.Sprintf("%dms", r.TotalExecutionTime))

	if len(r.Summary.FileTypes) > 0 {
		b.WriteString("\n" + TitleStyle().Render("File types") + "\n")
		for _, ft := range r.Summary.FileTypes {
			b.WriteString(fmt.Sprintf("  %-20s %3d  %s\n", ft.Type, ft.Count, MutedStyle().Render(fmt.Sprintf("%d%%", ft.Percentage))))
		}
	}

	b.WriteString("\n" + TitleStyle().Render("Agents") + "\n")
	for _, a := range r.AgentReports.All() {
		if !a.Ran() {
			b.WriteString(MutedStyle().Render(fmt.Sprintf("  - %s: skipped", a.Name)) + "\n")
			continue
		}
		b.WriteString(SuccessStyle().Render("  ✓ ") + fmt.Sprintf("%s: %s in %dms\n", a.Name, a.Status, a.ExecutionTime))
	}

	b.WriteString("\n" + TitleStyle().Render("Findings") + "\n")
	if len(r.Findings) == 0 {
		b.WriteString(MutedStyle().Render("  No findings.") + "\n")
	}
	for _, f := range r.Findings {
		tag := FindingStyle(f.Type).Render(fmt.Sprintf("[%s/%s]", f.Type, f.Severity))
		b.WriteString(fmt.Sprintf("  %s %s: %s\n", tag, f.File, f.Message))
	}

	return lipgloss.NewStyle().Padding(0, 1).Render(strings.TrimRight(b.String(), "\n"))
}
