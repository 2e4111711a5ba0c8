package formatter

import (
	"time"

	"github.com/alexanderramin/efficiency/internal/domain"
)

// FormatSources renders the task catalog with follow-up action dates.
func FormatSources(sources []domain.TaskSource, now time.Time) string {
	if len(sources) == 0 {
		return Dim("No task sources.") + "\n"
	}
	headers := []string{"SOURCE", "PROJECT", "TITLE", "NEXT ACTION"}
	rows := make([][]string, 0, len(sources))
	for _, s := range sources {
		next := ""
		if s.NextActionDate != nil {
			next = nextAction(*s.NextActionDate, now)
		}
		rows = append(rows, []string{SourceBadge(s.Ref()), s.ProjectID, Truncate(s.Title, 56), next})
	}
	return RenderTable(headers, rows)
}

func nextAction(d, now time.Time) string {
	label := HumanDate(d, now)
	y, m, dd := now.Date()
	today := time.Date(y, m, dd, 0, 0, 0, 0, now.Location())
	if d.Before(today) {
		return StyleRed.Render(label)
	}
	return label
}
