package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/alexanderramin/efficiency/internal/domain"
)

// FakeLedger is an in-memory work-log ledger and task catalog. Accepted
// work logs get the id "wl-<idempotency key>".
type FakeLedger struct {
	mu sync.Mutex

	Created   []domain.WorkLogDraft
	Keys      []string
	CreateErr error

	Updated map[string]domain.WorkLogDraft
	Deleted []string

	Records       []domain.WorkLogRecord
	SummaryResult domain.WorkLogSummary

	Sources   []domain.TaskSource
	SourceErr error
	ListCalls int
}

func NewFakeLedger() *FakeLedger {
	return &FakeLedger{Updated: map[string]domain.WorkLogDraft{}}
}

func (f *FakeLedger) CreateWorkLog(_ context.Context, d domain.WorkLogDraft, key string) (domain.WorkLogRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Created = append(f.Created, d)
	f.Keys = append(f.Keys, key)
	if f.CreateErr != nil {
		return domain.WorkLogRecord{}, f.CreateErr
	}
	return domain.WorkLogRecord{ID: "wl-" + key, WorkLogDraft: d}, nil
}

func (f *FakeLedger) UpdateWorkLog(_ context.Context, id string, d domain.WorkLogDraft) (domain.WorkLogRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Updated[id] = d
	return domain.WorkLogRecord{ID: id, WorkLogDraft: d}, nil
}

func (f *FakeLedger) DeleteWorkLog(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Deleted = append(f.Deleted, id)
	return nil
}

func (f *FakeLedger) ListWorkLogs(context.Context, time.Time, time.Time) ([]domain.WorkLogRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Records, nil
}

func (f *FakeLedger) Summary(context.Context, time.Time, time.Time) (domain.WorkLogSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.SummaryResult, nil
}

func (f *FakeLedger) ListTaskSources(_ context.Context, projectID string) ([]domain.TaskSource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ListCalls++
	if f.SourceErr != nil {
		return nil, f.SourceErr
	}
	var out []domain.TaskSource
	for _, s := range f.Sources {
		if projectID == "" || s.ProjectID == projectID {
			out = append(out, s)
		}
	}
	return out, nil
}

// FakeFollowUps is an in-memory follow-up gateway keyed by story id.
type FakeFollowUps struct {
	mu sync.Mutex

	Records      map[string][]domain.FollowUpRecord
	Completed    []domain.FollowUpCompletion
	Successors   []domain.FollowUpSuccessor
	CompleteErr  error
	SuccessorErr error
}

func NewFakeFollowUps() *FakeFollowUps {
	return &FakeFollowUps{Records: map[string][]domain.FollowUpRecord{}}
}

func (f *FakeFollowUps) ListRecords(_ context.Context, storyID string) ([]domain.FollowUpRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Records[storyID], nil
}

func (f *FakeFollowUps) Complete(_ context.Context, storyID string, done domain.FollowUpCompletion) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CompleteErr != nil {
		return f.CompleteErr
	}
	for _, r := range f.Records[storyID] {
		if r.ID == done.RecordID {
			f.Completed = append(f.Completed, done)
			return nil
		}
	}
	return fmt.Errorf("record %s not found on story %s", done.RecordID, storyID)
}

func (f *FakeFollowUps) CreateSuccessor(_ context.Context, _ string, next domain.FollowUpSuccessor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SuccessorErr != nil {
		return f.SuccessorErr
	}
	f.Successors = append(f.Successors, next)
	return nil
}
