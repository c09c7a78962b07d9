package formatter

import (
	"fmt"
	"strings"

	"github.com/Victorkib/kisheka-construction-sub013/internal/app"
	"github.com/Victorkib/kisheka-construction-sub013/internal/domain"
)

// PhaseLabels maps phase ids to display labels for request rendering.
type PhaseLabels map[string]string

func (l PhaseLabels) of(id *string) string {
	if id == nil || *id == "" {
		return Dim("project")
	}
	if label, ok := l[*id]; ok {
		return label
	}
	return TruncID(*id)
}

// Route renders "source → target" for a request.
func (l PhaseLabels) Route(r *domain.BudgetReallocationRequest) string {
	return l.of(r.FromPhaseID) + " → " + l.of(r.ToPhaseID)
}

func FormatReallocationList(reqs []*domain.BudgetReallocationRequest, labels PhaseLabels) string {
	if len(reqs) == 0 {
		return Dim("No reallocation requests.") + "\n"
	}
	cols := []Column{
		{Title: "ID"}, {Title: "TYPE"}, {Title: "ROUTE"},
		{Title: "AMOUNT", Right: true}, {Title: "STATUS"}, {Title: "REQUESTED"},
	}
	rows := make([][]string, 0, len(reqs))
	for _, r := range reqs {
		rows = append(rows, []string{
			r.ID,
			string(r.Type),
			labels.Route(r),
			Money(r.Amount),
			ReallocationStatusPill(r.Status),
			Dim(r.RequestedBy + ", " + Ago(r.CreatedAt)),
		})
	}
	return RenderBox("Reallocations", RenderTable(cols, rows))
}

// FormatReallocationDetail renders a request and its audit trail.
func FormatReallocationDetail(r *domain.BudgetReallocationRequest, labels PhaseLabels, trail []*domain.AuditRecord) string {
	var b strings.Builder
	b.WriteString(Bold(string(r.Type)) + "  " + ReallocationStatusPill(r.Status) + "\n\n")
	b.WriteString(kv("id", Dim(r.ID)))
	b.WriteString(kv("route", labels.Route(r)))
	b.WriteString(kv("amount", Money(r.Amount)))
	b.WriteString(kv("reason", r.Reason))
	b.WriteString(kv("requested", r.RequestedBy+" "+Dim(HumanDate(r.CreatedAt))))

	switch r.Status {
	case domain.ReallocationExecuted:
		b.WriteString(kv("approved by", OptString(r.ApprovedBy)))
		b.WriteString(kv("notes", OptString(r.ApprovalNotes)))
		if r.ExecutedAt != nil {
			b.WriteString(kv("executed", HumanDate(*r.ExecutedAt)))
		}
	case domain.ReallocationRejected:
		b.WriteString(kv("rejected by", OptString(r.RejectedBy)))
		b.WriteString(kv("rejection", OptString(r.RejectionReason)))
		if r.RejectedAt != nil {
			b.WriteString(kv("rejected", HumanDate(*r.RejectedAt)))
		}
	}

	if len(trail) > 0 {
		b.WriteString("\n" + Header("Audit trail") + "\n")
		cols := Cols("WHEN", "ACTION", "ACTOR", "TRANSITION")
		rows := make([][]string, 0, len(trail))
		for _, a := range trail {
			rows = append(rows, []string{
				a.CreatedAt.Format("2006-01-02 15:04"),
				a.Action,
				a.Actor,
				a.OldStatus + " → " + a.NewStatus,
			})
		}
		b.WriteString(RenderTable(cols, rows))
	}
	return RenderBox("Reallocation", b.String())
}

// FormatApproval reports an executed transfer, the refreshed phase
// positions and any warnings.
func FormatApproval(resp *app.ApproveReallocationResponse, labels PhaseLabels) string {
	var b strings.Builder
	r := resp.Request
	b.WriteString(StyleGreen.Render("✔ Executed") + " " + Money(r.Amount) + " " + labels.Route(r) + "\n")
	if len(resp.Summaries) > 0 {
		b.WriteString("\n")
		cols := []Column{{Title: "PHASE"}, {Title: "ALLOCATION", Right: true}, {Title: "REMAINING", Right: true}, {Title: "BUDGET"}}
		rows := make([][]string, 0, len(resp.Summaries))
		for _, s := range resp.Summaries {
			id := s.PhaseID
			rows = append(rows, []string{
				labels.of(&id),
				Money(s.BudgetAllocation),
				MoneyStyled(s.Remaining),
				BudgetStatusIndicator(s.Status),
			})
		}
		b.WriteString(RenderTable(cols, rows))
	}
	b.WriteString(FormatWarnings(resp.Warnings))
	return b.String()
}

// FormatWarnings renders one line per warning, or nothing.
func FormatWarnings(warnings []app.Warning) string {
	if len(warnings) == 0 {
		return ""
	}
	var b strings.Builder
	for _, w := range warnings {
		b.WriteString(StyleYellow.Render(fmt.Sprintf("⚠ %s: %s", w.Code, w.Message)) + "\n")
	}
	return b.String()
}
