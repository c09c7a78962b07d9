package formatter

import (
	"fmt"
	"strings"

	"github.com/Victorkib/kisheka-construction-sub013/internal/app"
	"github.com/Victorkib/kisheka-construction-sub013/internal/domain"
	"github.com/Victorkib/kisheka-construction-sub013/internal/finance"
	"github.com/Victorkib/kisheka-construction-sub013/internal/outbox"
)

func FormatSpendList(entries []*domain.SpendEntry) string {
	if len(entries) == 0 {
		return Dim("No spend recorded.") + "\n"
	}
	cols := []Column{
		{Title: "ID"}, {Title: "CATEGORY"}, {Title: "DESCRIPTION"},
		{Title: "QTY", Right: true}, {Title: "UNIT", Right: true}, {Title: "COST", Right: true},
		{Title: "STATUS"},
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.ID,
			string(e.Category),
			e.Description,
			e.Quantity.String(),
			Money(e.UnitCost),
			Money(e.Cost()),
			SpendStatusLabel(e.Status),
		})
	}
	return RenderTable(cols, rows)
}

func FormatSpendResult(res *app.SpendResult) string {
	e := res.Entry
	line := fmt.Sprintf("Recorded %s %s (%s) %s\n", e.Category, Money(e.Cost()), SpendStatusLabel(e.Status), Dim(TruncID(e.ID)))
	return line + FormatWarnings(res.Warnings)
}

// FormatCapitalCheck renders the advisory capital check. It never reads as a
// failure; an over-threshold amount is shown as a warning.
func FormatCapitalCheck(c finance.CapitalCheck) string {
	var b strings.Builder
	b.WriteString(kv("requested", Money(c.Requested)))
	b.WriteString(kv("invested", Money(c.TotalInvested)))
	b.WriteString(kv("used", Money(c.TotalUsed)))
	b.WriteString(kv("available", MoneyStyled(c.Available)))
	b.WriteString(kv("threshold", Money(c.WarningThreshold)))
	switch {
	case !c.IsValid:
		b.WriteString(StyleRed.Render("⚠ requested amount exceeds available capital") + "\n")
	case c.Warning:
		b.WriteString(StyleYellow.Render("⚠ requested amount is above 80% of available capital") + "\n")
	default:
		b.WriteString(StyleGreen.Render("✔ within available capital") + "\n")
	}
	return RenderBox("Capital check", b.String())
}

func FormatCapitalEntries(entries []*domain.CapitalEntry) string {
	if len(entries) == 0 {
		return Dim("No capital entries.") + "\n"
	}
	cols := []Column{{Title: "DATE"}, {Title: "KIND"}, {Title: "AMOUNT", Right: true}, {Title: "NOTE"}}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{HumanDate(e.CreatedAt), string(e.Kind), Money(e.Amount), e.Note})
	}
	return RenderTable(cols, rows)
}

func FormatImportResult(res *app.ImportResult) string {
	return fmt.Sprintf("%s Imported %s %s: %d phase(s), %d dependency link(s), budget %s\n",
		StyleGreen.Render("✔"), Bold(res.Project.Code), res.Project.Name,
		res.PhaseCount, res.DependencyCount, Money(res.Project.Budget.Total))
}

func FormatDrainResult(res outbox.Result) string {
	return fmt.Sprintf("Outbox: %d processed, %d published, %d failed, %d skipped\n",
		res.Processed, res.Published, res.Failed, res.Skipped)
}
