package formatter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/efficiency/internal/reconcile"
	"github.com/alexanderramin/efficiency/internal/service"
)

const windowLayout = "15:04"

// FormatStopPreview renders what a stop would submit.
func FormatStopPreview(p *service.StopPreview) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", SourceBadge(p.Session.Source), Bold(p.Session.Title))
	fmt.Fprintf(&b, "Elapsed  %s\n", FormatClock(p.ElapsedSeconds))
	fmt.Fprintf(&b, "Window   %s\n", formatWindow(p.Window))
	fmt.Fprintf(&b, "Hours    %s", FormatHours(p.HoursSpent))
	return RenderBox("Stop", b.String())
}

// FormatReport renders the outcome of each reconciliation step.
func FormatReport(r *reconcile.Report) string {
	var b strings.Builder

	switch {
	case r.WorkLog != nil:
		b.WriteString(Check(fmt.Sprintf("Work log %s: %s on %s (%s)",
			r.WorkLog.ID, FormatHours(r.Draft.HoursSpent), r.Draft.WorkDate, formatWindow(r.Window))))
	case r.LedgerErr != nil:
		b.WriteString(Cross(fmt.Sprintf("Work log not saved: %v", r.LedgerErr)))
	}
	b.WriteString("\n")

	if r.LedgerErr != nil {
		if r.JournalErr != nil {
			b.WriteString(Cross(fmt.Sprintf("Journal write failed: %v", r.JournalErr)))
		} else {
			b.WriteString(Dim(fmt.Sprintf("  Kept in journal as %s; retry with: efficiency worklog resubmit %s",
				r.JournalID, r.JournalID)))
		}
		b.WriteString("\n")
	}

	writeStep(&b, "Follow-up completed", r.Completion)
	writeStep(&b, "Successor follow-up created", r.Successor)

	switch r.Outcome() {
	case reconcile.OutcomePartial:
		b.WriteString(StyleYellow.Render("Stopped with warnings."))
	case reconcile.OutcomeFailed:
		b.WriteString(StyleRed.Render("Stopped, but the work log was not recorded."))
	default:
		b.WriteString(StyleGreen.Render("Stopped."))
	}
	b.WriteString("\n")
	return b.String()
}

func writeStep(b *strings.Builder, label string, step reconcile.StepResult) {
	if !step.Attempted {
		return
	}
	if step.Err == nil {
		b.WriteString(Check(label))
	} else {
		msg := step.Err.Error()
		if errors.Is(step.Err, reconcile.ErrCompletionRejected) {
			msg = "completion rejected by the ledger: " + msg
		}
		b.WriteString(Cross(fmt.Sprintf("%s failed: %s", label, msg)))
	}
	b.WriteString("\n")
}

func formatWindow(w reconcile.Window) string {
	return fmt.Sprintf("%s → %s", w.Start.Local().Format(windowLayout), w.End.Local().Format(windowLayout))
}
