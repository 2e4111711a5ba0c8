package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alexanderramin/efficiency/internal/domain"
)

// flexID accepts identifiers encoded as JSON strings or numbers.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*f = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("id: %w", err)
		}
		*f = flexID(n.String())
	}
	return nil
}

// parseWireTime accepts RFC 3339 timestamps and bare dates.
func parseWireTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation(domain.WorkDateLayout, s, time.Local)
}

func parseOptionalTime(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := parseWireTime(*s)
	if err != nil {
		return nil
	}
	return &t
}

// listEnvelope accepts a bare array or an object with a "results" array, so
// paginated and unpaginated list endpoints decode the same way.
type listEnvelope[T any] struct {
	items []T
}

func (l *listEnvelope[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		return json.Unmarshal(b, &l.items)
	}
	var page struct {
		Results []T `json:"results"`
	}
	if err := json.Unmarshal(b, &page); err != nil {
		return err
	}
	l.items = page.Results
	return nil
}

type taskSourceDTO struct {
	SourceType     string  `json:"source_type"`
	SourceID       flexID  `json:"source_id"`
	ProjectID      flexID  `json:"project_id"`
	Title          string  `json:"title"`
	ParentStoryID  flexID  `json:"parent_story_id"`
	NextActionDate *string `json:"next_action_date"`
}

func (d taskSourceDTO) toDomain() domain.TaskSource {
	return domain.TaskSource{
		Type:           domain.SourceType(d.SourceType),
		SourceID:       string(d.SourceID),
		ProjectID:      string(d.ProjectID),
		Title:          d.Title,
		ParentStoryID:  string(d.ParentStoryID),
		NextActionDate: parseOptionalTime(d.NextActionDate),
	}
}

type workLogBody struct {
	ProjectID   string  `json:"project_id"`
	SourceType  string  `json:"source_type"`
	SourceID    string  `json:"source_id"`
	Description string  `json:"description"`
	HoursSpent  float64 `json:"hours_spent"`
	WorkDate    string  `json:"work_date"`
	StartedAt   string  `json:"started_at"`
	EndedAt     string  `json:"ended_at"`
}

func newWorkLogBody(d domain.WorkLogDraft) workLogBody {
	return workLogBody{
		ProjectID:   d.ProjectID,
		SourceType:  string(d.SourceType),
		SourceID:    d.SourceID,
		Description: d.Description,
		HoursSpent:  d.HoursSpent,
		WorkDate:    d.WorkDate,
		StartedAt:   d.StartedAt.Format(time.RFC3339),
		EndedAt:     d.EndedAt.Format(time.RFC3339),
	}
}

type workLogDTO struct {
	ID          flexID  `json:"id"`
	ProjectID   flexID  `json:"project_id"`
	SourceType  string  `json:"source_type"`
	SourceID    flexID  `json:"source_id"`
	Description string  `json:"description"`
	HoursSpent  float64 `json:"hours_spent"`
	WorkDate    string  `json:"work_date"`
	StartedAt   *string `json:"started_at"`
	EndedAt     *string `json:"ended_at"`
}

func (d workLogDTO) toDomain() domain.WorkLogRecord {
	rec := domain.WorkLogRecord{
		ID: string(d.ID),
		WorkLogDraft: domain.WorkLogDraft{
			ProjectID:   string(d.ProjectID),
			SourceType:  domain.SourceType(d.SourceType),
			SourceID:    string(d.SourceID),
			Description: d.Description,
			HoursSpent:  d.HoursSpent,
			WorkDate:    d.WorkDate,
		},
	}
	if t := parseOptionalTime(d.StartedAt); t != nil {
		rec.StartedAt = *t
	}
	if t := parseOptionalTime(d.EndedAt); t != nil {
		rec.EndedAt = *t
	}
	return rec
}

type summaryDTO struct {
	TotalHours float64 `json:"total_hours"`
	ByProject  []struct {
		ProjectID flexID  `json:"project_id"`
		Hours     float64 `json:"hours"`
	} `json:"by_project"`
}

type followUpRecordDTO struct {
	ID          flexID  `json:"id"`
	Content     string  `json:"content"`
	EventDate   *string `json:"event_date"`
	CreatedAt   *string `json:"created_at"`
	CompletedAt *string `json:"completed_at"`
	Result      string  `json:"result"`
}

func (d followUpRecordDTO) toDomain() domain.FollowUpRecord {
	rec := domain.FollowUpRecord{
		ID:          string(d.ID),
		Content:     d.Content,
		EventDate:   parseOptionalTime(d.EventDate),
		CompletedAt: parseOptionalTime(d.CompletedAt),
		Result:      d.Result,
	}
	if t := parseOptionalTime(d.CreatedAt); t != nil {
		rec.CreatedAt = *t
	}
	return rec
}

type completionBody struct {
	Result      string `json:"result"`
	CompletedAt string `json:"completed_at"`
}

type storySuccessorBody struct {
	Content    string `json:"content"`
	ActionDate string `json:"action_date"`
	EventDate  string `json:"event_date"`
}

type programSuccessorBody struct {
	Content          string `json:"content"`
	NextFollowUpDate string `json:"next_follow_up_date"`
	EventDate        string `json:"event_date"`
}
