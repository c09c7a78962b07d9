package formatter

import (
	"fmt"
	"strings"

	"github.com/Victorkib/kisheka-construction-sub013/internal/app"
	"github.com/Victorkib/kisheka-construction-sub013/internal/domain"
)

// FormatProjectList renders projects with their budget ceiling.
func FormatProjectList(projects []*domain.Project) string {
	if len(projects) == 0 {
		return Dim("No projects yet. Create one with: kisheka project add --code TWR01 --name \"...\"") + "\n"
	}
	cols := []Column{{Title: "CODE"}, {Title: "NAME"}, {Title: "STATUS"}, {Title: "BUDGET", Right: true}, {Title: "ID"}}
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		name := Bold(p.Name)
		if p.IsDeleted() {
			name = Dim(p.Name + " (deleted)")
		}
		rows = append(rows, []string{
			p.DisplayID(),
			name,
			ProjectStatusPill(p.Status),
			Money(p.Budget.Total),
			Dim(TruncID(p.ID)),
		})
	}
	return RenderBox("Projects", RenderTable(cols, rows))
}

func FormatProjectDetail(p *domain.Project, phases []*domain.Phase) string {
	var b strings.Builder
	b.WriteString(Bold(p.Name) + "\n\n")
	b.WriteString(kv("code", p.Code))
	b.WriteString(kv("status", ProjectStatusPill(p.Status)))
	b.WriteString(kv("id", Dim(p.ID)))
	b.WriteString(kv("version", fmt.Sprintf("%d", p.Version)))
	b.WriteString("\n" + Header("Budget") + "\n")
	b.WriteString(kv("total", Money(p.Budget.Total)))
	b.WriteString(kv("materials", Money(p.Budget.Materials)))
	b.WriteString(kv("labour", Money(p.Budget.Labour)))
	b.WriteString(kv("contingency", Money(p.Budget.Contingency)))
	if len(phases) > 0 {
		b.WriteString("\n" + Header("Phases") + "\n")
		b.WriteString(phaseTable(phases))
	}
	return RenderBox("", b.String())
}

// FormatProjectTotals renders the project roll-up with the capital position.
func FormatProjectTotals(p *domain.Project, t *app.ProjectTotals) string {
	var b strings.Builder
	b.WriteString(Bold(p.Name) + " " + Dim(p.Code) + "\n\n")
	b.WriteString(kv("phases", fmt.Sprintf("%d", t.PhaseCount)))
	b.WriteString(kv("budget", Money(t.BudgetTotal)))
	b.WriteString(kv("allocated", Money(t.TotalPhaseBudgets)))
	b.WriteString(kv("unallocated", MoneyStyled(t.Unallocated)))
	b.WriteString("\n" + Header("Spending") + "\n")
	b.WriteString(kv("actual", Money(t.TotalActual)))
	b.WriteString(kv("committed", Money(t.TotalCommitted)))
	b.WriteString(kv("estimated", Money(t.TotalEstimated)))
	b.WriteString(kv("remaining", MoneyStyled(t.TotalRemaining)))
	b.WriteString("\n" + Header("Capital") + "\n")
	b.WriteString(kv("invested", Money(t.TotalInvested)))
	b.WriteString(kv("used", Money(t.TotalUsed)))
	b.WriteString(kv("available", MoneyStyled(t.CapitalAvailable)))
	return RenderBox("Project totals", b.String())
}
