package service

import (
	"context"
	"time"

	"github.com/alexanderramin/efficiency/internal/domain"
)

// SourceCatalog lists trackable task sources.
type SourceCatalog interface {
	ListTaskSources(ctx context.Context, projectID string) ([]domain.TaskSource, error)
}

// WorkLogLedger is the read and edit side of the external work-log ledger.
type WorkLogLedger interface {
	CreateWorkLog(ctx context.Context, draft domain.WorkLogDraft, idempotencyKey string) (domain.WorkLogRecord, error)
	UpdateWorkLog(ctx context.Context, id string, draft domain.WorkLogDraft) (domain.WorkLogRecord, error)
	DeleteWorkLog(ctx context.Context, id string) error
	ListWorkLogs(ctx context.Context, from, to time.Time) ([]domain.WorkLogRecord, error)
	Summary(ctx context.Context, from, to time.Time) (domain.WorkLogSummary, error)
}
