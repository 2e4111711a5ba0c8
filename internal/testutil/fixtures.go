package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/efficiency/internal/domain"
	"github.com/google/uuid"
)

var testSourceCounter atomic.Int64

// SourceOption customizes a fixture source.
type SourceOption func(*domain.TaskSource)

func WithProject(projectID string) SourceOption {
	return func(s *domain.TaskSource) {
		s.ProjectID = projectID
	}
}

func WithParentStory(storyID string) SourceOption {
	return func(s *domain.TaskSource) {
		s.ParentStoryID = storyID
	}
}

func WithNextActionDate(d time.Time) SourceOption {
	return func(s *domain.TaskSource) {
		s.NextActionDate = &d
	}
}

// NewTestSource returns a task source with a unique id in project "1".
func NewTestSource(typ domain.SourceType, title string, opts ...SourceOption) *domain.TaskSource {
	n := testSourceCounter.Add(1)
	s := &domain.TaskSource{
		Type:      typ,
		SourceID:  fmt.Sprintf("%d", 100+n),
		ProjectID: "1",
		Title:     title,
	}
	if typ.IsFollowUp() {
		s.ParentStoryID = fmt.Sprintf("%d", 900+n)
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// NewTestDraft returns a draft spanning start to end for ref.
func NewTestDraft(ref domain.SourceRef, start, end time.Time, hours float64) domain.WorkLogDraft {
	return domain.WorkLogDraft{
		ProjectID:   ref.ProjectID,
		SourceType:  ref.Type,
		SourceID:    ref.SourceID,
		Description: "test work",
		HoursSpent:  hours,
		WorkDate:    start.Format(domain.WorkDateLayout),
		StartedAt:   start,
		EndedAt:     end,
	}
}

// NewTestJournalEntry returns a journal entry for draft with the given status.
func NewTestJournalEntry(draft domain.WorkLogDraft, status domain.JournalStatus, createdAt time.Time) *domain.JournalEntry {
	return &domain.JournalEntry{
		ID:        uuid.New().String(),
		Draft:     draft,
		Status:    status,
		Attempts:  1,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}
