package reconcile

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/alexanderramin/efficiency/internal/domain"
	"github.com/alexanderramin/efficiency/internal/ledger"
	"github.com/alexanderramin/efficiency/internal/timer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLedger struct {
	drafts []domain.WorkLogDraft
	keys   []string
	err    error
}

func (f *fakeLedger) CreateWorkLog(_ context.Context, d domain.WorkLogDraft, key string) (domain.WorkLogRecord, error) {
	f.drafts = append(f.drafts, d)
	f.keys = append(f.keys, key)
	if f.err != nil {
		return domain.WorkLogRecord{}, f.err
	}
	return domain.WorkLogRecord{ID: "wl-1", WorkLogDraft: d}, nil
}

type fakeGateway struct {
	name        string
	records     []domain.FollowUpRecord
	listErr     error
	completeErr error
	successErr  error
	calls       []string
	completed   []domain.FollowUpCompletion
	successors  []domain.FollowUpSuccessor
}

func (g *fakeGateway) ListRecords(_ context.Context, storyID string) ([]domain.FollowUpRecord, error) {
	g.calls = append(g.calls, "list:"+storyID)
	return g.records, g.listErr
}

func (g *fakeGateway) Complete(_ context.Context, storyID string, done domain.FollowUpCompletion) error {
	g.calls = append(g.calls, "complete:"+storyID)
	g.completed = append(g.completed, done)
	return g.completeErr
}

func (g *fakeGateway) CreateSuccessor(_ context.Context, storyID string, next domain.FollowUpSuccessor) error {
	g.calls = append(g.calls, "successor:"+storyID)
	g.successors = append(g.successors, next)
	return g.successErr
}

type fakeJournal struct {
	entries []*domain.JournalEntry
}

func (j *fakeJournal) Create(_ context.Context, e *domain.JournalEntry) error {
	j.entries = append(j.entries, e)
	return nil
}

type fakeResolver struct {
	source domain.TaskSource
	err    error
}

func (r fakeResolver) Resolve(context.Context, domain.SourceRef) (domain.TaskSource, error) {
	return r.source, r.err
}

var (
	story    = domain.SourceRef{Type: domain.SourceStory, SourceID: "101", ProjectID: "7"}
	followUp = domain.SourceRef{Type: domain.SourceStoryFollowUp, SourceID: "5", ProjectID: "7", ParentStoryID: "12"}
	progFU   = domain.SourceRef{Type: domain.SourceProgramFollowUp, SourceID: "9", ProjectID: "7", ParentStoryID: "3"}
)

func stoppedAt(ref domain.SourceRef, elapsed int64, end time.Time) timer.StoppedSession {
	start := at(9, 0, 0)
	return timer.StoppedSession{
		Session:        domain.Session{ID: "s", Source: ref, Title: "Tracked work", OriginalStart: &start},
		ElapsedSeconds: elapsed,
		StoppedAt:      end,
	}
}

type harness struct {
	ledger  *fakeLedger
	story   *fakeGateway
	program *fakeGateway
	journal *fakeJournal
	coord   *Coordinator
}

func newHarness() *harness {
	h := &harness{
		ledger:  &fakeLedger{},
		story:   &fakeGateway{name: "story", records: []domain.FollowUpRecord{{ID: "5"}}},
		program: &fakeGateway{name: "program", records: []domain.FollowUpRecord{{ID: "9"}}},
		journal: &fakeJournal{},
	}
	h.coord = NewCoordinator(h.ledger, Gateways{
		domain.SourceStoryFollowUp:   h.story,
		domain.SourceProgramFollowUp: h.program,
	}, nil, h.journal)
	h.coord.newID = func() string { return "journal-1" }
	return h
}

func TestCoordinator_EditedWindowScenario(t *testing.T) {
	h := newHarness()
	editStart, editEnd := at(9, 0, 0), at(9, 30, 0)

	plan, err := h.coord.Prepare(stoppedAt(story, 75, at(9, 5, 10)), StopRequest{Start: &editStart, End: &editEnd})
	require.NoError(t, err)
	report := h.coord.Execute(context.Background(), plan)

	assert.Equal(t, OutcomeOK, report.Outcome())
	require.Len(t, h.ledger.drafts, 1)
	d := h.ledger.drafts[0]
	assert.Equal(t, 0.5, d.HoursSpent)
	assert.Equal(t, at(9, 0, 0), d.StartedAt)
	assert.Equal(t, at(9, 30, 0), d.EndedAt)
	assert.Equal(t, "2025-03-10", d.WorkDate)
	assert.Equal(t, "Tracked work", d.Description, "title is the default description")
	assert.Equal(t, "7", d.ProjectID)
	assert.Equal(t, []string{"journal-1"}, h.ledger.keys, "journal id doubles as idempotency key")

	require.Len(t, h.journal.entries, 1)
	assert.Equal(t, domain.JournalSubmitted, h.journal.entries[0].Status)
	assert.Equal(t, "wl-1", h.journal.entries[0].RemoteID)
}

func TestCoordinator_DefaultWindowUsesOriginalStart(t *testing.T) {
	h := newHarness()
	plan, err := h.coord.Prepare(stoppedAt(story, 75, at(9, 5, 10)), StopRequest{Description: " ship it "})
	require.NoError(t, err)
	assert.Equal(t, at(9, 0, 0), plan.Window.Start)
	assert.Equal(t, 0.09, plan.Draft.HoursSpent)
	assert.Equal(t, "ship it", plan.Draft.Description)
}

func TestCoordinator_PrepareRejectsEmptyWindow(t *testing.T) {
	h := newHarness()
	same := at(9, 0, 0)
	_, err := h.coord.Prepare(stoppedAt(story, 10, at(9, 0, 10)), StopRequest{Start: &same, End: &same})
	assert.ErrorIs(t, err, ErrEmptyWindow)
	assert.Empty(t, h.ledger.drafts)
}

func TestCoordinator_PrepareRejectsFollowUpOptionsOnStory(t *testing.T) {
	h := newHarness()
	_, err := h.coord.Prepare(stoppedAt(story, 60, at(9, 1, 0)), StopRequest{CompleteFollowUp: true})
	assert.ErrorIs(t, err, ErrNotFollowUp)

	_, err = h.coord.Prepare(stoppedAt(followUp, 60, at(9, 1, 0)), StopRequest{Successor: &SuccessorRequest{Content: "  "}})
	assert.Error(t, err)
}

func TestCoordinator_LedgerFailureIsJournaled(t *testing.T) {
	h := newHarness()
	h.ledger.err = ledger.ErrUnavailable

	plan, err := h.coord.Prepare(stoppedAt(story, 60, at(9, 1, 0)), StopRequest{})
	require.NoError(t, err)
	report := h.coord.Execute(context.Background(), plan)

	assert.Equal(t, OutcomeFailed, report.Outcome())
	assert.ErrorIs(t, report.LedgerErr, ledger.ErrUnavailable)
	require.Len(t, h.journal.entries, 1)
	assert.Equal(t, domain.JournalFailed, h.journal.entries[0].Status)
	assert.Contains(t, h.journal.entries[0].Error, "ledger unavailable")
}

func TestCoordinator_CompletesFollowUpThenSeedsSuccessor(t *testing.T) {
	h := newHarness()
	next := time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC)
	plan, err := h.coord.Prepare(stoppedAt(followUp, 600, at(9, 10, 0)), StopRequest{
		CompleteFollowUp: true,
		ResultNote:       "agreed on terms",
		Successor:        &SuccessorRequest{Content: "Send contract", NextActionDate: next},
	})
	require.NoError(t, err)
	report := h.coord.Execute(context.Background(), plan)

	assert.Equal(t, OutcomeOK, report.Outcome())
	assert.True(t, report.Completion.Attempted)
	assert.True(t, report.Successor.Attempted)
	assert.Equal(t, []string{"list:12", "complete:12", "successor:12"}, h.story.calls)
	assert.Empty(t, h.program.calls)

	require.Len(t, h.story.completed, 1)
	assert.Equal(t, "5", h.story.completed[0].RecordID)
	assert.Equal(t, at(9, 10, 0), h.story.completed[0].CompletedAt)
	assert.Equal(t, "agreed on terms", h.story.completed[0].ResultNote)
	require.Len(t, h.story.successors, 1)
	assert.Equal(t, next, h.story.successors[0].NextActionDate)
	assert.Equal(t, at(9, 10, 0), h.story.successors[0].EventDate)
}

func TestCoordinator_DispatchesProgramFollowUps(t *testing.T) {
	h := newHarness()
	plan, err := h.coord.Prepare(stoppedAt(progFU, 60, at(9, 1, 0)), StopRequest{CompleteFollowUp: true})
	require.NoError(t, err)
	report := h.coord.Execute(context.Background(), plan)

	assert.Equal(t, OutcomeOK, report.Outcome())
	assert.Equal(t, []string{"list:3", "complete:3"}, h.program.calls)
	assert.Empty(t, h.story.calls)
}

func TestCoordinator_CompletionRejectedIsPartial(t *testing.T) {
	h := newHarness()
	h.story.completeErr = &ledger.APIError{Method: http.MethodPut, Status: http.StatusBadRequest, Body: "completed_at precedes event_date"}
	plan, err := h.coord.Prepare(stoppedAt(followUp, 60, at(9, 1, 0)), StopRequest{
		CompleteFollowUp: true,
		Successor:        &SuccessorRequest{Content: "again", NextActionDate: at(0, 0, 0).AddDate(0, 0, 3)},
	})
	require.NoError(t, err)
	report := h.coord.Execute(context.Background(), plan)

	assert.Equal(t, OutcomePartial, report.Outcome())
	assert.NotNil(t, report.WorkLog, "work log stays committed")
	assert.ErrorIs(t, report.Completion.Err, ErrCompletionRejected)
	assert.ErrorIs(t, report.Completion.Err, ledger.ErrRejected)
	assert.NoError(t, report.Successor.Err, "successor still runs after a rejected completion")
}

func TestCoordinator_SuccessorFailureIsIndependent(t *testing.T) {
	h := newHarness()
	h.story.successErr = errors.New("boom")
	plan, err := h.coord.Prepare(stoppedAt(followUp, 60, at(9, 1, 0)), StopRequest{
		CompleteFollowUp: true,
		Successor:        &SuccessorRequest{Content: "next", NextActionDate: at(0, 0, 0)},
	})
	require.NoError(t, err)
	report := h.coord.Execute(context.Background(), plan)

	assert.Equal(t, OutcomePartial, report.Outcome())
	assert.NoError(t, report.Completion.Err)
	assert.Error(t, report.Successor.Err)
}

func TestCoordinator_RecordNotFound(t *testing.T) {
	h := newHarness()
	h.story.records = []domain.FollowUpRecord{{ID: "other"}}
	plan, err := h.coord.Prepare(stoppedAt(followUp, 60, at(9, 1, 0)), StopRequest{CompleteFollowUp: true})
	require.NoError(t, err)
	report := h.coord.Execute(context.Background(), plan)

	assert.ErrorIs(t, report.Completion.Err, ErrFollowUpNotFound)
	assert.Equal(t, []string{"list:12"}, h.story.calls)
}

func TestCoordinator_ResolvesMissingParentFromCatalog(t *testing.T) {
	h := newHarness()
	h.coord.sources = fakeResolver{source: domain.TaskSource{ParentStoryID: "44"}}
	ref := followUp
	ref.ParentStoryID = ""

	plan, err := h.coord.Prepare(stoppedAt(ref, 60, at(9, 1, 0)), StopRequest{CompleteFollowUp: true})
	require.NoError(t, err)
	h.coord.Execute(context.Background(), plan)
	assert.Equal(t, []string{"list:44", "complete:44"}, h.story.calls)
}

func TestCoordinator_MissingGatewayOrParent(t *testing.T) {
	h := newHarness()
	delete(h.coord.gateways, domain.SourceProgramFollowUp)
	plan, err := h.coord.Prepare(stoppedAt(progFU, 60, at(9, 1, 0)), StopRequest{CompleteFollowUp: true})
	require.NoError(t, err)
	report := h.coord.Execute(context.Background(), plan)
	assert.ErrorIs(t, report.Completion.Err, ErrNoGateway)
	assert.Equal(t, OutcomePartial, report.Outcome())

	ref := followUp
	ref.ParentStoryID = ""
	plan, err = h.coord.Prepare(stoppedAt(ref, 60, at(9, 1, 0)), StopRequest{CompleteFollowUp: true})
	require.NoError(t, err)
	report = h.coord.Execute(context.Background(), plan)
	assert.ErrorIs(t, report.Completion.Err, ErrNoParentStory)
}
