package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/efficiency/internal/domain"
	"github.com/alexanderramin/efficiency/internal/timer"
)

// FormatStatus renders the active session, its clock and the parked stack.
func FormatStatus(st timer.Status) string {
	var b strings.Builder

	if st.Session == nil {
		b.WriteString(StatePill(domain.StateIdle))
		b.WriteString("  ")
		b.WriteString(Dim("no active session"))
		b.WriteString("\n")
	} else {
		b.WriteString(FormatStatusLine(st))
		b.WriteString("\n")
		if st.Session.OriginalStart != nil {
			b.WriteString(Dim(fmt.Sprintf("  started %s", st.Session.OriginalStart.Local().Format("15:04"))))
		} else {
			b.WriteString(Dim("  resumed from stack"))
		}
		b.WriteString("\n")
	}

	if len(st.Suspended) > 0 {
		b.WriteString("\n")
		b.WriteString(FormatStack(st.Suspended, st.At))
	}
	return b.String()
}

// FormatStatusLine renders the one-line live view, e.g.
// "● RUNNING  0:12:05  story:101  Fix login".
func FormatStatusLine(st timer.Status) string {
	if st.Session == nil {
		return StatePill(domain.StateIdle)
	}
	clock := StyleClock.Render(FormatClock(st.ElapsedSeconds))
	if st.State == domain.StatePaused {
		clock = StyleYellow.Bold(true).PaddingLeft(1).PaddingRight(1).Render(FormatClock(st.ElapsedSeconds))
	}
	return fmt.Sprintf("%s %s  %s  %s",
		StatePill(st.State), clock, SourceBadge(st.Session.Source), st.Session.Title)
}

// FormatStack renders the suspension stack, most recent first.
func FormatStack(entries []domain.SuspendedEntry, now time.Time) string {
	if len(entries) == 0 {
		return Dim("Suspension stack is empty.") + "\n"
	}
	headers := []string{"ID", "SOURCE", "TITLE", "ELAPSED", "PARKED"}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			strconv.FormatInt(e.ID, 10),
			SourceBadge(e.Source),
			Truncate(e.Title, 40),
			FormatElapsed(e.SnapshotSeconds),
			Dim(HumanTimestamp(e.SuspendedAt, now)),
		})
	}
	return Header("Suspended") + "\n" + RenderTableAligned(headers, rows, 0, 3)
}

// FormatCommand renders the result of a state-changing timer command.
func FormatCommand(verb string, applied bool, st timer.Status) string {
	if !applied {
		return Dim(fmt.Sprintf("%s ignored: timer is %s.", verb, st.State)) + "\n"
	}
	return Check(verb) + "  " + FormatStatusLine(st) + "\n"
}
