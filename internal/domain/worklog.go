package domain

import (
	"errors"
	"fmt"
	"time"
)

// WorkDateLayout is the wire format of calendar dates.
const WorkDateLayout = "2006-01-02"

// WorkLogDraft is a work-log entry that has not been accepted by the ledger yet.
type WorkLogDraft struct {
	ProjectID   string
	SourceType  SourceType
	SourceID    string
	Description string
	HoursSpent  float64
	WorkDate    string
	StartedAt   time.Time
	EndedAt     time.Time
}

// WorkLogRecord is a work-log entry as stored by the ledger.
type WorkLogRecord struct {
	ID string
	WorkLogDraft
}

// WorkLogSummary aggregates logged hours over a date range.
type WorkLogSummary struct {
	TotalHours float64
	ByProject  []ProjectHours
}

type ProjectHours struct {
	ProjectID string
	Hours     float64
}

// FollowUpRecord is one follow-up item attached to a story.
type FollowUpRecord struct {
	ID          string
	Content     string
	EventDate   *time.Time
	CreatedAt   time.Time
	CompletedAt *time.Time
	Result      string
}

// OrderingDate is the date a completion must not precede: the event date,
// or the creation date when no event date was recorded.
func (r FollowUpRecord) OrderingDate() time.Time {
	if r.EventDate != nil {
		return *r.EventDate
	}
	return r.CreatedAt
}

type FollowUpCompletion struct {
	RecordID    string
	CompletedAt time.Time
	ResultNote  string
}

type FollowUpSuccessor struct {
	Content        string
	NextActionDate time.Time
	EventDate      time.Time
}

type JournalStatus string

const (
	JournalSubmitted JournalStatus = "submitted"
	JournalFailed    JournalStatus = "failed"
)

// JournalEntry is the local record of one work-log submission attempt.
type JournalEntry struct {
	ID        string
	Draft     WorkLogDraft
	Status    JournalStatus
	RemoteID  string
	Error     string
	Attempts  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the fields the ledger requires of every entry.
func (d WorkLogDraft) Validate() error {
	if !ValidSourceTypes[d.SourceType] {
		return fmt.Errorf("invalid source type %q", d.SourceType)
	}
	if d.SourceID == "" || d.ProjectID == "" {
		return errors.New("work log needs a source id and a project id")
	}
	if d.HoursSpent <= 0 {
		return fmt.Errorf("hours spent %.2f: must be positive", d.HoursSpent)
	}
	if _, err := time.Parse(WorkDateLayout, d.WorkDate); err != nil {
		return fmt.Errorf("work date %q: %w", d.WorkDate, err)
	}
	if !d.StartedAt.IsZero() && !d.EndedAt.IsZero() && d.EndedAt.Before(d.StartedAt) {
		return errors.New("work log ends before it starts")
	}
	return nil
}
