package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/efficiency/internal/db"
	"github.com/alexanderramin/efficiency/internal/domain"
)

// SQLiteJournalRepo implements JournalRepo on the worklog_journal table.
type SQLiteJournalRepo struct {
	db db.DBTX
}

// NewSQLiteJournalRepo creates a new SQLiteJournalRepo.
func NewSQLiteJournalRepo(conn db.DBTX) *SQLiteJournalRepo {
	return &SQLiteJournalRepo{db: conn}
}

var _ JournalRepo = (*SQLiteJournalRepo)(nil)

const journalColumns = `id, project_id, source_type, source_id, description, hours_spent, work_date,
	started_at, ended_at, status, remote_id, error, attempts, created_at, updated_at`

func (r *SQLiteJournalRepo) Create(ctx context.Context, e *domain.JournalEntry) error {
	if e.Attempts == 0 {
		e.Attempts = 1
	}
	query := `INSERT INTO worklog_journal (` + journalColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		e.ID,
		e.Draft.ProjectID,
		string(e.Draft.SourceType),
		e.Draft.SourceID,
		e.Draft.Description,
		e.Draft.HoursSpent,
		e.Draft.WorkDate,
		e.Draft.StartedAt.UTC().Format(time.RFC3339),
		e.Draft.EndedAt.UTC().Format(time.RFC3339),
		string(e.Status),
		nullableString(e.RemoteID),
		e.Error,
		e.Attempts,
		e.CreatedAt.UTC().Format(time.RFC3339),
		e.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting journal entry: %w", err)
	}
	return nil
}

func (r *SQLiteJournalRepo) GetByID(ctx context.Context, id string) (*domain.JournalEntry, error) {
	query := `SELECT ` + journalColumns + ` FROM worklog_journal WHERE id = ?`
	e, err := scanJournalEntry(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("journal entry %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning journal entry: %w", err)
	}
	return e, nil
}

// ListRecent returns up to limit entries, newest first. A non-positive limit
// returns everything.
func (r *SQLiteJournalRepo) ListRecent(ctx context.Context, limit int) ([]*domain.JournalEntry, error) {
	if limit <= 0 {
		limit = -1
	}
	query := `SELECT ` + journalColumns + ` FROM worklog_journal
		ORDER BY created_at DESC, rowid DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing journal entries: %w", err)
	}
	defer rows.Close()
	return scanJournalEntries(rows)
}

func (r *SQLiteJournalRepo) ListByStatus(ctx context.Context, status domain.JournalStatus) ([]*domain.JournalEntry, error) {
	query := `SELECT ` + journalColumns + ` FROM worklog_journal
		WHERE status = ? ORDER BY created_at, rowid`
	rows, err := r.db.QueryContext(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("listing journal entries by status: %w", err)
	}
	defer rows.Close()
	return scanJournalEntries(rows)
}

// MarkSubmitted records that the ledger accepted the entry under remoteID.
func (r *SQLiteJournalRepo) MarkSubmitted(ctx context.Context, id, remoteID string) error {
	query := `UPDATE worklog_journal SET status = ?, remote_id = ?, error = '', attempts = attempts + 1,
		updated_at = ? WHERE id = ?`
	return r.update(ctx, query, string(domain.JournalSubmitted), nullableString(remoteID), nowUTC(), id)
}

// MarkFailed records another failed submission attempt.
func (r *SQLiteJournalRepo) MarkFailed(ctx context.Context, id, errMsg string) error {
	query := `UPDATE worklog_journal SET status = ?, error = ?, attempts = attempts + 1, updated_at = ?
		WHERE id = ?`
	return r.update(ctx, query, string(domain.JournalFailed), errMsg, nowUTC(), id)
}

func (r *SQLiteJournalRepo) update(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating journal entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating journal entry: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("journal entry %v: %w", args[len(args)-1], ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJournalEntry(row rowScanner) (*domain.JournalEntry, error) {
	var e domain.JournalEntry
	var sourceType, status string
	var remoteID sql.NullString
	var startedAt, endedAt, createdAt, updatedAt string

	err := row.Scan(
		&e.ID, &e.Draft.ProjectID, &sourceType, &e.Draft.SourceID, &e.Draft.Description,
		&e.Draft.HoursSpent, &e.Draft.WorkDate, &startedAt, &endedAt, &status, &remoteID,
		&e.Error, &e.Attempts, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Draft.SourceType = domain.SourceType(sourceType)
	e.Status = domain.JournalStatus(status)
	e.RemoteID = remoteID.String

	for _, f := range []struct {
		name string
		raw  string
		dst  *time.Time
	}{
		{"started_at", startedAt, &e.Draft.StartedAt},
		{"ended_at", endedAt, &e.Draft.EndedAt},
		{"created_at", createdAt, &e.CreatedAt},
		{"updated_at", updatedAt, &e.UpdatedAt},
	} {
		t, err := time.Parse(time.RFC3339, f.raw)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", f.name, err)
		}
		*f.dst = t
	}
	return &e, nil
}

func scanJournalEntries(rows *sql.Rows) ([]*domain.JournalEntry, error) {
	var entries []*domain.JournalEntry
	for rows.Next() {
		e, err := scanJournalEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning journal row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating journal entries: %w", err)
	}
	return entries, nil
}
