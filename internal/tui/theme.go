package tui

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/tuannvm/fileaudit/internal/types"
)

// Colors matching gum's aesthetic
var (
	ColorPrimary   = lipgloss.Color("6")   // Teal
	ColorSecondary = lipgloss.Color("14")  // Bright cyan
	ColorMuted     = lipgloss.Color("241") // Gray
	ColorSuccess   = lipgloss.Color("42")  // Green
	ColorWarning   = lipgloss.Color("214") // Amber
	ColorDanger    = lipgloss.Color("196") // Red
)

// Banner returns the styled app banner
func Banner() string {
	logo := lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(ColorSecondary).
		Padding(0, 3).
		Render("F I L E A U D I T")

	tagline := lipgloss.NewStyle().
		Foreground(ColorMuted).
		Italic(true).
		Render(" Four agents, one report.")

	return logo + "\n" + tagline + "\n"
}

// AuditTheme returns a gum-inspired theme for forms
func AuditTheme() *huh.Theme {
	t := huh.ThemeCharm()

	t.Focused.Title = t.Focused.Title.
		Foreground(ColorPrimary).
		Bold(true)

	t.Focused.SelectedOption = t.Focused.SelectedOption.
		Foreground(ColorSuccess)

	t.Focused.Description = t.Focused.Description.
		Foreground(ColorMuted)

	// Blurred state - more subtle
	t.Blurred.Title = t.Blurred.Title.
		Foreground(ColorMuted)

	return t
}

// HeaderStyle returns styled header for the dashboard
func HeaderStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(ColorMuted).
		Padding(0, 1).
		MarginBottom(1)
}

// TitleStyle returns style for section titles
func TitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary)
}

// SuccessStyle returns style for success messages
func SuccessStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(ColorSuccess)
}

// MutedStyle returns style for muted/secondary text
func MutedStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(ColorMuted)
}

// RiskStyle colors a risk level badge
func RiskStyle(level types.RiskLevel) lipgloss.Style {
	style := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	switch level {
	case types.RiskLow:
		return style.Foreground(ColorSuccess)
	case types.RiskMedium:
		return style.Foreground(ColorWarning)
	case types.RiskHigh, types.RiskCritical:
		return style.Foreground(ColorDanger)
	default:
		return style.Foreground(ColorMuted)
	}
}

// FindingStyle colors a finding by type
func FindingStyle(t types.FindingType) lipgloss.Style {
	switch t {
	case types.FindingSuccess:
		return SuccessStyle()
	case types.FindingWarning:
		return lipgloss.NewStyle().Foreground(ColorWarning)
	case types.FindingError:
		return lipgloss.NewStyle().Foreground(ColorDanger)
	default:
		return lipgloss.NewStyle().Foreground(ColorSecondary)
	}
}
