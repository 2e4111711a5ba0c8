package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/efficiency/internal/domain"
	"github.com/alexanderramin/efficiency/internal/repository"
)

type workLogService struct {
	ledger   WorkLogLedger
	journal  repository.JournalRepo
	observer UseCaseObserver
}

func NewWorkLogService(ledger WorkLogLedger, journal repository.JournalRepo, observers ...UseCaseObserver) WorkLogService {
	return &workLogService{
		ledger:   ledger,
		journal:  journal,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *workLogService) List(ctx context.Context, from, to time.Time) ([]domain.WorkLogRecord, error) {
	if to.Before(from) {
		return nil, ErrInvalidRange
	}
	records, err := s.ledger.ListWorkLogs(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("listing work logs: %w", err)
	}
	return records, nil
}

func (s *workLogService) Summary(ctx context.Context, from, to time.Time) (domain.WorkLogSummary, error) {
	if to.Before(from) {
		return domain.WorkLogSummary{}, ErrInvalidRange
	}
	sum, err := s.ledger.Summary(ctx, from, to)
	if err != nil {
		return domain.WorkLogSummary{}, fmt.Errorf("summarizing work logs: %w", err)
	}
	return sum, nil
}

func (s *workLogService) Update(ctx context.Context, id string, draft domain.WorkLogDraft) (rec domain.WorkLogRecord, err error) {
	startedAt := time.Now().UTC()
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "update-work-log",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    map[string]any{"work_log_id": id, "hours_spent": draft.HoursSpent},
		})
	}()

	if err = draft.Validate(); err != nil {
		return domain.WorkLogRecord{}, fmt.Errorf("invalid work log: %w", err)
	}
	rec, err = s.ledger.UpdateWorkLog(ctx, id, draft)
	if err != nil {
		return domain.WorkLogRecord{}, fmt.Errorf("updating work log %s: %w", id, err)
	}
	return rec, nil
}

func (s *workLogService) Delete(ctx context.Context, id string) (err error) {
	startedAt := time.Now().UTC()
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "delete-work-log",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    map[string]any{"work_log_id": id},
		})
	}()

	if err = s.ledger.DeleteWorkLog(ctx, id); err != nil {
		return fmt.Errorf("deleting work log %s: %w", id, err)
	}
	return nil
}

func (s *workLogService) Journal(ctx context.Context, limit int) ([]*domain.JournalEntry, error) {
	entries, err := s.journal.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("reading journal: %w", err)
	}
	return entries, nil
}

// Resubmit posts a failed journal entry again under its original
// idempotency key, so a submission that did reach the ledger is not
// duplicated.
func (s *workLogService) Resubmit(ctx context.Context, journalID string) (entry *domain.JournalEntry, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"journal_id": journalID}
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "resubmit-work-log",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	entry, err = s.journal.GetByID(ctx, journalID)
	if err != nil {
		return nil, err
	}
	if entry.Status == domain.JournalSubmitted {
		return entry, fmt.Errorf("%w: %s", ErrAlreadySubmitted, journalID)
	}
	fields["attempts"] = entry.Attempts

	rec, submitErr := s.ledger.CreateWorkLog(ctx, entry.Draft, entry.ID)
	if submitErr != nil {
		markErr := s.journal.MarkFailed(ctx, entry.ID, submitErr.Error())
		return nil, errors.Join(fmt.Errorf("resubmitting work log: %w", submitErr), markErr)
	}
	if err = s.journal.MarkSubmitted(ctx, entry.ID, rec.ID); err != nil {
		return nil, fmt.Errorf("work log %s accepted but journal not updated: %w", rec.ID, err)
	}
	return s.journal.GetByID(ctx, entry.ID)
}
