package api

import (
	"time"

	"github.com/alexanderramin/efficiency/internal/domain"
	"github.com/alexanderramin/efficiency/internal/reconcile"
	"github.com/alexanderramin/efficiency/internal/service"
	"github.com/alexanderramin/efficiency/internal/timer"
)

type sessionView struct {
	ID             string           `json:"id"`
	Source         domain.SourceRef `json:"source"`
	Title          string           `json:"title"`
	State          string           `json:"state"`
	ElapsedSeconds int64            `json:"elapsed_seconds"`
	OriginalStart  *time.Time       `json:"original_start,omitempty"`
}

type stackEntryView struct {
	ID              int64            `json:"id"`
	Source          domain.SourceRef `json:"source"`
	Title           string           `json:"title"`
	SnapshotSeconds int64            `json:"snapshot_seconds"`
	SuspendedAt     time.Time        `json:"suspended_at"`
}

type statusView struct {
	State     string           `json:"state"`
	Session   *sessionView     `json:"session"`
	Suspended []stackEntryView `json:"suspended"`
	At        time.Time        `json:"at"`
}

type commandView struct {
	Applied bool       `json:"applied"`
	Status  statusView `json:"status"`
}

type windowView struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type previewView struct {
	Session    sessionView `json:"session"`
	Window     windowView  `json:"window"`
	HoursSpent float64     `json:"hours_spent"`
}

type stepView struct {
	Attempted bool   `json:"attempted"`
	Error     string `json:"error,omitempty"`
}

type stopView struct {
	Applied    bool        `json:"applied"`
	Outcome    string      `json:"outcome,omitempty"`
	Window     *windowView `json:"window,omitempty"`
	HoursSpent float64     `json:"hours_spent,omitempty"`
	WorkLogID  string      `json:"work_log_id,omitempty"`
	LedgerErr  string      `json:"ledger_error,omitempty"`
	JournalID  string      `json:"journal_id,omitempty"`
	Completion stepView    `json:"completion"`
	Successor  stepView    `json:"successor"`
}

type sourceView struct {
	SourceType     domain.SourceType `json:"source_type"`
	SourceID       string            `json:"source_id"`
	ProjectID      string            `json:"project_id"`
	Title          string            `json:"title"`
	ParentStoryID  string            `json:"parent_story_id,omitempty"`
	NextActionDate string            `json:"next_action_date,omitempty"`
}

func toStatusView(st timer.Status) statusView {
	v := statusView{
		State:     string(st.State),
		Suspended: toStackView(st.Suspended),
		At:        st.At,
	}
	if st.Session != nil {
		s := toSessionView(*st.Session, st.ElapsedSeconds)
		v.Session = &s
	}
	return v
}

func toSessionView(s domain.Session, elapsed int64) sessionView {
	return sessionView{
		ID:             s.ID,
		Source:         s.Source,
		Title:          s.Title,
		State:          string(s.State),
		ElapsedSeconds: elapsed,
		OriginalStart:  s.OriginalStart,
	}
}

func toStackView(entries []domain.SuspendedEntry) []stackEntryView {
	out := make([]stackEntryView, 0, len(entries))
	for _, e := range entries {
		out = append(out, stackEntryView{
			ID:              e.ID,
			Source:          e.Source,
			Title:           e.Title,
			SnapshotSeconds: e.SnapshotSeconds,
			SuspendedAt:     e.SuspendedAt,
		})
	}
	return out
}

func toCommandView(res service.CommandResult) commandView {
	return commandView{Applied: res.Applied, Status: toStatusView(res.Status)}
}

func toPreviewView(p *service.StopPreview) previewView {
	return previewView{
		Session:    toSessionView(p.Session, p.ElapsedSeconds),
		Window:     windowView{Start: p.Window.Start, End: p.Window.End},
		HoursSpent: p.HoursSpent,
	}
}

func toStepView(s reconcile.StepResult) stepView {
	v := stepView{Attempted: s.Attempted}
	if s.Err != nil {
		v.Error = s.Err.Error()
	}
	return v
}

func toStopView(res *service.StopResult) stopView {
	v := stopView{Applied: res.Applied}
	r := res.Report
	if r == nil {
		return v
	}
	v.Outcome = string(r.Outcome())
	v.Window = &windowView{Start: r.Window.Start, End: r.Window.End}
	v.HoursSpent = r.Draft.HoursSpent
	if r.WorkLog != nil {
		v.WorkLogID = r.WorkLog.ID
	}
	if r.LedgerErr != nil {
		v.LedgerErr = r.LedgerErr.Error()
		v.JournalID = r.JournalID
	}
	v.Completion = toStepView(r.Completion)
	v.Successor = toStepView(r.Successor)
	return v
}

func toSourceView(s domain.TaskSource) sourceView {
	v := sourceView{
		SourceType:    s.Type,
		SourceID:      s.SourceID,
		ProjectID:     s.ProjectID,
		Title:         s.Title,
		ParentStoryID: s.ParentStoryID,
	}
	if s.NextActionDate != nil {
		v.NextActionDate = s.NextActionDate.Format(domain.WorkDateLayout)
	}
	return v
}
