package tui

import (
	"strings"
	"testing"

	"github.com/tuannvm/fileaudit/internal/types"
)

func TestAuditTheme(t *testing.T) {
	if AuditTheme() == nil {
		t.Error("AuditTheme() returned nil")
	}
}

func TestStylesRender(t *testing.T) {
	styles := map[string]func() string{
		"header":  func() string { return HeaderStyle().Render("test") },
		"title":   func() string { return TitleStyle().Render("test") },
		"success": func() string { return SuccessStyle().Render("test") },
		"muted":   func() string { return MutedStyle().Render("test") },
	}
	for name, render := range styles {
		t.Run(name, func(t *testing.T) {
			if !strings.Contains(render(), "test") {
				t.Errorf("%s style dropped its text", name)
			}
		})
	}
}

func TestRiskAndFindingStyles(t *testing.T) {
	for _, level := range []types.RiskLevel{types.RiskLow, types.RiskMedium, types.RiskHigh, types.RiskCritical, types.RiskUnknown} {
		if !strings.Contains(RiskStyle(level).Render(string(level)), string(level)) {
			t.Errorf("RiskStyle(%s) dropped its text", level)
		}
	}
	for _, ft := range []types.FindingType{types.FindingSuccess, types.FindingInfo, types.FindingWarning, types.FindingError} {
		if !strings.Contains(FindingStyle(ft).Render("x"), "x") {
			t.Errorf("FindingStyle(%s) dropped its text", ft)
		}
	}
}

func TestBanner(t *testing.T) {
	banner := Banner()
	if !strings.Contains(banner, "F I L E A U D I T") {
		t.Errorf("Banner() = %q", banner)
	}
}
