package service

import (
	"context"
	"time"

	"github.com/alexanderramin/efficiency/internal/domain"
	"github.com/alexanderramin/efficiency/internal/reconcile"
	"github.com/alexanderramin/efficiency/internal/timer"
)

// CommandResult is the outcome of one timer command. Applied is false when
// the command was not valid in the current state.
type CommandResult struct {
	Applied bool
	Status  timer.Status
}

// StopPreview is what a stop would submit if confirmed now.
type StopPreview struct {
	Session        domain.Session
	ElapsedSeconds int64
	Window         reconcile.Window
	HoursSpent     float64
}

// StopResult is the outcome of a confirmed stop.
type StopResult struct {
	Applied bool
	Stopped timer.StoppedSession
	Report  *reconcile.Report
}

type TimerService interface {
	Status(ctx context.Context) timer.Status
	Start(ctx context.Context, ref domain.SourceRef, title string) (CommandResult, error)
	Pause(ctx context.Context) (CommandResult, error)
	Resume(ctx context.Context) (CommandResult, error)
	Interrupt(ctx context.Context, ref domain.SourceRef, title string) (CommandResult, error)
	ResumeFromStack(ctx context.Context, id int64) (CommandResult, error)
	PrepareStop(ctx context.Context) (*StopPreview, error)
	Stop(ctx context.Context, req reconcile.StopRequest) (*StopResult, error)
	RestoreReport() timer.RestoreReport
}

type SourceService interface {
	List(ctx context.Context, projectID string) ([]domain.TaskSource, error)
	Resolve(ctx context.Context, ref domain.SourceRef) (domain.TaskSource, error)
}

type WorkLogService interface {
	List(ctx context.Context, from, to time.Time) ([]domain.WorkLogRecord, error)
	Summary(ctx context.Context, from, to time.Time) (domain.WorkLogSummary, error)
	Update(ctx context.Context, id string, draft domain.WorkLogDraft) (domain.WorkLogRecord, error)
	Delete(ctx context.Context, id string) error
	Journal(ctx context.Context, limit int) ([]*domain.JournalEntry, error)
	Resubmit(ctx context.Context, journalID string) (*domain.JournalEntry, error)
}
