package repository

import (
	"context"

	"github.com/alexanderramin/efficiency/internal/domain"
)

// JournalRepo stores the local record of work-log submissions.
type JournalRepo interface {
	Create(ctx context.Context, e *domain.JournalEntry) error
	GetByID(ctx context.Context, id string) (*domain.JournalEntry, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.JournalEntry, error)
	ListByStatus(ctx context.Context, status domain.JournalStatus) ([]*domain.JournalEntry, error)
	MarkSubmitted(ctx context.Context, id, remoteID string) error
	MarkFailed(ctx context.Context, id, errMsg string) error
}
