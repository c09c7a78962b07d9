package formatter

import (
	"fmt"
	"strings"

	"github.com/Victorkib/kisheka-construction-sub013/internal/domain"
	"github.com/Victorkib/kisheka-construction-sub013/internal/finance"
	"github.com/shopspring/decimal"
)

func phaseTable(phases []*domain.Phase) string {
	cols := []Column{
		{Title: "#", Right: true}, {Title: "NAME"}, {Title: "STATUS"},
		{Title: "ALLOCATION", Right: true}, {Title: "ACTUAL", Right: true},
		{Title: "COMMITTED", Right: true}, {Title: "REMAINING", Right: true},
		{Title: "BUDGET"},
	}
	rows := make([][]string, 0, len(phases))
	for _, p := range phases {
		status := finance.ClassifyStatus(p.Allocation.Total, p.Actual.Total, p.Financial.Committed, p.Financial.Estimated)
		rows = append(rows, []string{
			fmt.Sprintf("%d", p.Sequence),
			p.Name,
			string(p.Status),
			Money(p.Allocation.Total),
			Money(p.Actual.Total),
			Money(p.Financial.Committed),
			MoneyStyled(p.Financial.Remaining),
			BudgetStatusIndicator(status),
		})
	}
	return RenderTable(cols, rows)
}

// FormatPhaseList renders the phases of one project in sequence order.
func FormatPhaseList(project *domain.Project, phases []*domain.Phase) string {
	if len(phases) == 0 {
		return Dim(fmt.Sprintf("No phases in %s yet.", project.DisplayID())) + "\n"
	}
	var total decimal.Decimal
	for _, p := range phases {
		total = total.Add(p.Allocation.Total)
	}
	footer := fmt.Sprintf("\n%s %s of %s allocated", Dim("Σ"), Money(total), Money(project.Budget.Total))
	return RenderBox(project.DisplayID()+" phases", phaseTable(phases)+footer)
}

// FormatPhaseDetail shows a phase's stored figures. byID resolves dependency
// ids to labels; unknown ids print truncated.
func FormatPhaseDetail(p *domain.Phase, byID map[string]*domain.Phase) string {
	var b strings.Builder
	b.WriteString(Bold(p.Label()) + "\n\n")
	b.WriteString(kv("id", Dim(p.ID)))
	b.WriteString(kv("status", string(p.Status)))
	b.WriteString(kv("start", OptDate(p.StartDate)))
	b.WriteString(kv("planned end", OptDate(p.PlannedEndDate)))
	b.WriteString(kv("start after", OptDate(p.CanStartAfter)))
	if len(p.DependsOn) > 0 {
		labels := make([]string, 0, len(p.DependsOn))
		for _, id := range p.DependsOn {
			if dep, ok := byID[id]; ok {
				labels = append(labels, dep.Label())
			} else {
				labels = append(labels, TruncID(id))
			}
		}
		b.WriteString(kv("depends on", strings.Join(labels, ", ")))
	}

	b.WriteString("\n" + Header("Allocation") + "\n")
	b.WriteString(kv("total", Money(p.Allocation.Total)))
	b.WriteString(kv("materials", Money(p.Allocation.Materials)))
	b.WriteString(kv("labour", Money(p.Allocation.Labour)))
	b.WriteString(kv("equipment", Money(p.Allocation.Equipment)))
	b.WriteString(kv("subcontract", Money(p.Allocation.Subcontractors)))
	b.WriteString(kv("contingency", Money(p.Allocation.Contingency)))
	if cats := p.Allocation.CategorySum(); !cats.IsZero() {
		b.WriteString(kv("categorised", Money(cats)+" "+Dim("of "+Money(p.Allocation.Total))))
	}

	b.WriteString("\n" + Header("Spending") + "\n")
	b.WriteString(kv("actual", Money(p.Actual.Total)))
	b.WriteString(kv("committed", Money(p.Financial.Committed)))
	b.WriteString(kv("estimated", Money(p.Financial.Estimated)))
	b.WriteString(kv("remaining", MoneyStyled(p.Financial.Remaining)))
	b.WriteString(kv("version", fmt.Sprintf("%d", p.Version)))
	return RenderBox("Phase", b.String())
}

// FormatSummary renders a derived financial summary with the per-source
// breakdown of actual spend.
func FormatSummary(label string, s finance.Summary) string {
	var b strings.Builder
	b.WriteString(Bold(label) + "  " + BudgetStatusIndicator(s.Status) + "\n\n")
	b.WriteString(kv("allocation", Money(s.BudgetAllocation)))
	b.WriteString(kv("actual", Money(s.ActualSpending.Total)))
	b.WriteString(kv("committed", Money(s.Committed)))
	b.WriteString(kv("estimated", Money(s.Estimated)))
	b.WriteString(kv("remaining", MoneyStyled(s.Remaining)))

	b.WriteString("\n" + Header("Actual by source") + "\n")
	cols := []Column{{Title: "SOURCE"}, {Title: "AMOUNT", Right: true}}
	rows := [][]string{
		{string(domain.CostMaterials), Money(s.ActualSpending.Materials)},
		{string(domain.CostExpenses), Money(s.ActualSpending.Expenses)},
		{string(domain.CostEquipment), Money(s.ActualSpending.Equipment)},
		{string(domain.CostLabour), Money(s.ActualSpending.Labour)},
	}
	b.WriteString(RenderTable(cols, rows))
	return RenderBox("Financial summary", b.String())
}

// FormatRecalculated lists the outcome of a project-wide recalculation.
func FormatRecalculated(labels map[string]string, summaries []finance.Summary) string {
	cols := []Column{{Title: "PHASE"}, {Title: "REMAINING", Right: true}, {Title: "BUDGET"}}
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		label, ok := labels[s.PhaseID]
		if !ok {
			label = TruncID(s.PhaseID)
		}
		rows = append(rows, []string{label, MoneyStyled(s.Remaining), BudgetStatusIndicator(s.Status)})
	}
	return RenderTable(cols, rows) + Dim(fmt.Sprintf("%d phase(s) recalculated", len(summaries))) + "\n"
}
