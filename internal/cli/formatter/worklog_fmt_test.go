package formatter

import (
	"testing"
	"time"

	"github.com/alexanderramin/efficiency/internal/domain"
	"github.com/alexanderramin/efficiency/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestFormatWorkLogs_Total(t *testing.T) {
	recs := []domain.WorkLogRecord{
		{ID: "1", WorkLogDraft: domain.WorkLogDraft{SourceType: domain.SourceStory, SourceID: "101", ProjectID: "7", HoursSpent: 1.25, WorkDate: "2025-03-10", Description: "login"}},
		{ID: "2", WorkLogDraft: domain.WorkLogDraft{SourceType: domain.SourceStoryFollowUp, SourceID: "5", ProjectID: "7", HoursSpent: 0.5, WorkDate: "2025-03-11"}},
	}
	out := stripANSI(FormatWorkLogs(recs))
	assert.Contains(t, out, "story:101")
	assert.Contains(t, out, "story_follow_up:5")
	assert.Contains(t, out, "1.75h")
	assert.Contains(t, out, "total")
}

func TestFormatWorkLogs_Empty(t *testing.T) {
	assert.Contains(t, stripANSI(FormatWorkLogs(nil)), "No work logs")
}

func TestFormatSummary(t *testing.T) {
	from := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	s := domain.WorkLogSummary{
		TotalHours: 4,
		ByProject:  []domain.ProjectHours{{ProjectID: "7", Hours: 3}, {ProjectID: "9", Hours: 1}},
	}
	out := stripANSI(FormatSummary(s, from, from.AddDate(0, 0, 6)))
	assert.Contains(t, out, "HOURS 2025-03-10 – 2025-03-16")
	assert.Contains(t, out, " 75%")
	assert.Contains(t, out, " 25%")
	assert.Contains(t, out, "Total 4.00h")
}

func TestFormatJournal(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	draft := testutil.NewTestDraft(story, now.Add(-time.Hour), now, 1)
	failed := testutil.NewTestJournalEntry(draft, domain.JournalFailed, now.Add(-5*time.Minute))
	failed.ID = "0123456789abcdef"
	failed.Error = "ledger unavailable"
	ok := testutil.NewTestJournalEntry(draft, domain.JournalSubmitted, now.Add(-2*time.Hour))
	ok.RemoteID = "88"

	out := stripANSI(FormatJournal([]*domain.JournalEntry{failed, ok}, now))
	assert.Contains(t, out, "01234567")
	assert.NotContains(t, out, "0123456789")
	assert.Contains(t, out, "ledger unavailable")
	assert.Contains(t, out, "88")
	assert.Contains(t, out, "5m ago")
}

func TestFormatSources(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	overdue := now.AddDate(0, 0, -3)
	srcs := []domain.TaskSource{
		*testutil.NewTestSource(domain.SourceStory, "Fix login", testutil.WithProject("7")),
		*testutil.NewTestSource(domain.SourceStoryFollowUp, "Call vendor", testutil.WithParentStory("101"), testutil.WithNextActionDate(overdue)),
	}
	out := stripANSI(FormatSources(srcs, now))
	assert.Contains(t, out, "Fix login")
	assert.Contains(t, out, "story_follow_up:")
	assert.Contains(t, out, overdue.Format("Jan 2, 2006"))
}
