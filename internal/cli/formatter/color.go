package formatter

import (
	"fmt"
	"strings"

	"github.com/Victorkib/kisheka-construction-sub013/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorOrange = lipgloss.Color("#fe8019")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleOrange = lipgloss.NewStyle().Foreground(ColorOrange)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorOrange).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// BudgetStatusStyle maps a phase budget status to its color. Anything over
// budget is red; approaching and estimated overruns are warnings.
func BudgetStatusStyle(s domain.BudgetStatus) lipgloss.Style {
	switch s {
	case domain.StatusOverBudget, domain.StatusCommittedOverBudget:
		return StyleRed
	case domain.StatusEstimatedOverBudget:
		return StyleOrange
	case domain.StatusApproachingBudget:
		return StyleYellow
	case domain.StatusWithinBudget:
		return StyleGreen
	default:
		return StyleDim
	}
}

// BudgetStatusIndicator renders e.g. "● OVER BUDGET".
func BudgetStatusIndicator(s domain.BudgetStatus) string {
	if s == "" {
		return StyleDim.Render("● UNKNOWN")
	}
	label := strings.ToUpper(strings.ReplaceAll(string(s), "_", " "))
	return BudgetStatusStyle(s).Render("● " + label)
}

func ReallocationStatusPill(s domain.ReallocationStatus) string {
	switch s {
	case domain.ReallocationPending:
		return StyleYellow.Render("○ Pending")
	case domain.ReallocationExecuted:
		return StyleGreen.Render("✔ Executed")
	case domain.ReallocationRejected:
		return StyleRed.Render("✖ Rejected")
	default:
		return StyleDim.Render(string(s))
	}
}

func ProjectStatusPill(s domain.ProjectStatus) string {
	switch s {
	case domain.ProjectActive:
		return StyleGreen.Render("● Active")
	case domain.ProjectPlanning:
		return StyleBlue.Render("◌ Planning")
	case domain.ProjectOnHold:
		return StyleYellow.Render("○ On hold")
	case domain.ProjectCompleted:
		return StyleDim.Render("✔ Completed")
	default:
		return StyleDim.Render(string(s))
	}
}

func SpendStatusLabel(s domain.SpendStatus) string {
	switch s {
	case domain.SpendApproved:
		return StyleGreen.Render(string(s))
	case domain.SpendCommitted:
		return StyleBlue.Render(string(s))
	case domain.SpendPending:
		return StyleYellow.Render(string(s))
	default:
		return StyleDim.Render(string(s))
	}
}

// Header renders an upper-cased section header with an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

func Dim(text string) string {
	return StyleDim.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title, content string) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		Padding(0, 2)
	if title != "" {
		content = StyleHeader.Render(strings.ToUpper(title)) + "\n\n" + content
	}
	return box.Render(content)
}
