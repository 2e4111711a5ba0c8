package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/efficiency/internal/domain"
)

// FormatWorkLogs renders ledger work logs with a total row.
func FormatWorkLogs(records []domain.WorkLogRecord) string {
	if len(records) == 0 {
		return Dim("No work logs in range.") + "\n"
	}
	headers := []string{"ID", "DATE", "SOURCE", "PROJECT", "HOURS", "DESCRIPTION"}
	rows := make([][]string, 0, len(records)+1)
	total := 0.0
	for _, r := range records {
		total += r.HoursSpent
		rows = append(rows, []string{
			r.ID,
			r.WorkDate,
			StylePurple.Render(string(r.SourceType) + ":" + r.SourceID),
			r.ProjectID,
			FormatHours(r.HoursSpent),
			Truncate(r.Description, 48),
		})
	}
	rows = append(rows, []string{"", "", "", Bold("total"), Bold(FormatHours(total)), ""})
	return RenderTableAligned(headers, rows, 4)
}

// FormatSummary renders per-project totals with their share of the range.
func FormatSummary(s domain.WorkLogSummary, from, to time.Time) string {
	var b strings.Builder
	b.WriteString(Header(fmt.Sprintf("Hours %s – %s", from.Format(domain.WorkDateLayout), to.Format(domain.WorkDateLayout))))
	b.WriteString("\n")
	if len(s.ByProject) == 0 {
		b.WriteString(Dim("Nothing logged.") + "\n")
		return b.String()
	}
	headers := []string{"PROJECT", "HOURS", "SHARE"}
	rows := make([][]string, 0, len(s.ByProject))
	for _, p := range s.ByProject {
		rows = append(rows, []string{p.ProjectID, FormatHours(p.Hours), RenderShare(p.Hours, s.TotalHours, 20)})
	}
	b.WriteString(RenderTableAligned(headers, rows, 1))
	b.WriteString(fmt.Sprintf("\nTotal %s\n", Bold(FormatHours(s.TotalHours))))
	return b.String()
}

// FormatJournal renders local submission attempts, newest first.
func FormatJournal(entries []*domain.JournalEntry, now time.Time) string {
	if len(entries) == 0 {
		return Dim("Journal is empty.") + "\n"
	}
	headers := []string{"ID", "STATUS", "SOURCE", "HOURS", "TRIES", "WHEN", "DETAIL"}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		detail := e.RemoteID
		if e.Status == domain.JournalFailed {
			detail = Truncate(e.Error, 48)
		}
		rows = append(rows, []string{
			TruncID(e.ID),
			journalStatus(e.Status),
			StylePurple.Render(string(e.Draft.SourceType) + ":" + e.Draft.SourceID),
			FormatHours(e.Draft.HoursSpent),
			strconv.Itoa(e.Attempts),
			Dim(HumanTimestamp(e.CreatedAt, now)),
			detail,
		})
	}
	return RenderTableAligned(headers, rows, 3, 4)
}

func journalStatus(s domain.JournalStatus) string {
	if s == domain.JournalSubmitted {
		return StyleGreen.Render(string(s))
	}
	return StyleRed.Render(string(s))
}
