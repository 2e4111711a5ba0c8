package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/efficiency/internal/domain"
	"github.com/alexanderramin/efficiency/internal/ledger"
	"github.com/alexanderramin/efficiency/internal/timer"
	"github.com/google/uuid"
)

// Ledger accepts work-log drafts.
type Ledger interface {
	CreateWorkLog(ctx context.Context, draft domain.WorkLogDraft, idempotencyKey string) (domain.WorkLogRecord, error)
}

// FollowUpGateway is one family of follow-up endpoints, addressed by the
// owning story.
type FollowUpGateway interface {
	ListRecords(ctx context.Context, storyID string) ([]domain.FollowUpRecord, error)
	Complete(ctx context.Context, storyID string, done domain.FollowUpCompletion) error
	CreateSuccessor(ctx context.Context, storyID string, next domain.FollowUpSuccessor) error
}

// Gateways selects a FollowUpGateway by source type.
type Gateways map[domain.SourceType]FollowUpGateway

// SourceResolver looks up catalog metadata for a source.
type SourceResolver interface {
	Resolve(ctx context.Context, ref domain.SourceRef) (domain.TaskSource, error)
}

// Journal records each submission locally.
type Journal interface {
	Create(ctx context.Context, e *domain.JournalEntry) error
}

// SuccessorRequest seeds the next follow-up on the same story.
type SuccessorRequest struct {
	Content        string
	NextActionDate time.Time
}

// StopRequest carries the operator's choices at stop time. Nil bounds keep
// the default window.
type StopRequest struct {
	Start            *time.Time
	End              *time.Time
	Description      string
	CompleteFollowUp bool
	ResultNote       string
	Successor        *SuccessorRequest
}

func (r StopRequest) wantsFollowUp() bool {
	return r.CompleteFollowUp || r.Successor != nil
}

// Plan is a validated StopRequest for one stopped session.
type Plan struct {
	Stopped timer.StoppedSession
	Window  Window
	Draft   domain.WorkLogDraft
	Request StopRequest
}

// Coordinator turns stopped sessions into work logs and follow-up updates.
type Coordinator struct {
	ledger   Ledger
	gateways Gateways
	sources  SourceResolver
	journal  Journal
	newID    func() string
}

// NewCoordinator creates a Coordinator. sources and journal may be nil.
func NewCoordinator(l Ledger, gateways Gateways, sources SourceResolver, journal Journal) *Coordinator {
	return &Coordinator{
		ledger:   l,
		gateways: gateways,
		sources:  sources,
		journal:  journal,
		newID:    uuid.NewString,
	}
}

// Prepare validates req against stopped without any side effects. A plan
// that fails here must not be executed, so the session can stay active.
func (c *Coordinator) Prepare(stopped timer.StoppedSession, req StopRequest) (Plan, error) {
	ref := stopped.Session.Source
	if req.wantsFollowUp() && !ref.Type.IsFollowUp() {
		return Plan{}, fmt.Errorf("%w: %s", ErrNotFollowUp, ref.Key())
	}
	if req.Successor != nil && strings.TrimSpace(req.Successor.Content) == "" {
		return Plan{}, errors.New("successor follow-up needs content")
	}

	window := DefaultWindow(stopped).Override(req.Start, req.End)
	hours, err := window.Hours()
	if err != nil {
		return Plan{}, err
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		description = stopped.Session.Title
	}
	return Plan{
		Stopped: stopped,
		Window:  window,
		Request: req,
		Draft: domain.WorkLogDraft{
			ProjectID:   ref.ProjectID,
			SourceType:  ref.Type,
			SourceID:    ref.SourceID,
			Description: description,
			HoursSpent:  hours,
			WorkDate:    window.Start.Format(domain.WorkDateLayout),
			StartedAt:   window.Start,
			EndedAt:     window.End,
		},
	}, nil
}

// Execute submits the work log, then the follow-up steps the plan asks for.
// No step rolls back another, and none is retried.
func (c *Coordinator) Execute(ctx context.Context, plan Plan) Report {
	report := Report{Window: plan.Window, Draft: plan.Draft}
	report.JournalID = c.newID()

	rec, err := c.ledger.CreateWorkLog(ctx, plan.Draft, report.JournalID)
	if err != nil {
		report.LedgerErr = fmt.Errorf("submitting work log: %w", err)
	} else {
		report.WorkLog = &rec
	}
	report.JournalErr = c.record(ctx, report)

	if !plan.Request.wantsFollowUp() {
		return report
	}

	ref := plan.Stopped.Session.Source
	gw, storyID, err := c.followUpTarget(ctx, ref)
	if plan.Request.CompleteFollowUp {
		report.Completion.Attempted = true
		if err != nil {
			report.Completion.Err = err
		} else {
			report.Completion.Err = c.complete(ctx, gw, storyID, ref.SourceID, plan)
		}
	}
	if next := plan.Request.Successor; next != nil {
		report.Successor.Attempted = true
		if err != nil {
			report.Successor.Err = err
		} else if serr := gw.CreateSuccessor(ctx, storyID, domain.FollowUpSuccessor{
			Content:        next.Content,
			NextActionDate: next.NextActionDate,
			EventDate:      plan.Window.End,
		}); serr != nil {
			report.Successor.Err = fmt.Errorf("creating successor follow-up: %w", serr)
		}
	}
	return report
}

// followUpTarget resolves the gateway and the owning story of a follow-up.
func (c *Coordinator) followUpTarget(ctx context.Context, ref domain.SourceRef) (FollowUpGateway, string, error) {
	gw, ok := c.gateways[ref.Type]
	if !ok || gw == nil {
		return nil, "", fmt.Errorf("%w: %s", ErrNoGateway, ref.Type)
	}
	storyID := ref.ParentStoryID
	if storyID == "" && c.sources != nil {
		src, err := c.sources.Resolve(ctx, ref)
		if err != nil {
			return nil, "", fmt.Errorf("resolving owning story of %s: %w", ref.Key(), err)
		}
		storyID = src.ParentStoryID
	}
	if storyID == "" {
		return nil, "", fmt.Errorf("%w: %s", ErrNoParentStory, ref.Key())
	}
	return gw, storyID, nil
}

func (c *Coordinator) complete(ctx context.Context, gw FollowUpGateway, storyID, recordID string, plan Plan) error {
	records, err := gw.ListRecords(ctx, storyID)
	if err != nil {
		return fmt.Errorf("listing follow-up records: %w", err)
	}
	found := false
	for _, r := range records {
		if r.ID == recordID {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: record %s on story %s", ErrFollowUpNotFound, recordID, storyID)
	}

	err = gw.Complete(ctx, storyID, domain.FollowUpCompletion{
		RecordID:    recordID,
		CompletedAt: plan.Window.End,
		ResultNote:  plan.Request.ResultNote,
	})
	switch {
	case err == nil:
		return nil
	case ledger.IsValidationError(err):
		return fmt.Errorf("%w: %w", ErrCompletionRejected, err)
	default:
		return fmt.Errorf("completing follow-up: %w", err)
	}
}

func (c *Coordinator) record(ctx context.Context, report Report) error {
	if c.journal == nil {
		return nil
	}
	now := time.Now().UTC()
	entry := &domain.JournalEntry{
		ID:        report.JournalID,
		Draft:     report.Draft,
		Status:    domain.JournalSubmitted,
		Attempts:  1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if report.WorkLog != nil {
		entry.RemoteID = report.WorkLog.ID
	} else {
		entry.Status = domain.JournalFailed
		if report.LedgerErr != nil {
			entry.Error = report.LedgerErr.Error()
		}
	}
	if err := c.journal.Create(ctx, entry); err != nil {
		return fmt.Errorf("journaling work log: %w", err)
	}
	return nil
}
