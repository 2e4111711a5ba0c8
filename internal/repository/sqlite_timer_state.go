package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alexanderramin/efficiency/internal/db"
	"github.com/alexanderramin/efficiency/internal/domain"
	"github.com/alexanderramin/efficiency/internal/timer"
)

const (
	slotActiveSession  = "active_session"
	slotSuspendedStack = "suspended_stack"
)

// SQLiteStateRepo implements timer.StateStore on the timer_slots table.
// Each slot is one row holding a JSON payload that is replaced on every save.
type SQLiteStateRepo struct {
	db  db.DBTX
	uow db.UnitOfWork
}

// NewSQLiteStateRepo creates a state repo on conn. Without a unit of work,
// SaveSnapshot writes the two slots one after the other.
func NewSQLiteStateRepo(conn db.DBTX) *SQLiteStateRepo {
	return &SQLiteStateRepo{db: conn}
}

// WithUnitOfWork makes SaveSnapshot rewrite both slots in one transaction.
func (r *SQLiteStateRepo) WithUnitOfWork(uow db.UnitOfWork) *SQLiteStateRepo {
	return &SQLiteStateRepo{db: r.db, uow: uow}
}

var (
	_ timer.StateStore     = (*SQLiteStateRepo)(nil)
	_ timer.SnapshotWriter = (*SQLiteStateRepo)(nil)
)

func (r *SQLiteStateRepo) LoadActive(ctx context.Context) (*domain.Session, error) {
	payload, err := r.loadSlot(ctx, slotActiveSession)
	if err != nil || payload == nil {
		return nil, err
	}
	var s domain.Session
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", timer.ErrCorruptState, slotActiveSession, err)
	}
	return &s, nil
}

func (r *SQLiteStateRepo) SaveActive(ctx context.Context, s *domain.Session) error {
	return r.saveSlot(ctx, slotActiveSession, s)
}

func (r *SQLiteStateRepo) ClearActive(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM timer_slots WHERE slot = ?`, slotActiveSession)
	if err != nil {
		return fmt.Errorf("clearing %s: %w", slotActiveSession, err)
	}
	return nil
}

func (r *SQLiteStateRepo) LoadStack(ctx context.Context) (*domain.StackState, error) {
	payload, err := r.loadSlot(ctx, slotSuspendedStack)
	if err != nil || payload == nil {
		return nil, err
	}
	var st domain.StackState
	if err := json.Unmarshal(payload, &st); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", timer.ErrCorruptState, slotSuspendedStack, err)
	}
	return &st, nil
}

func (r *SQLiteStateRepo) SaveStack(ctx context.Context, st *domain.StackState) error {
	return r.saveSlot(ctx, slotSuspendedStack, st)
}

// SaveSnapshot rewrites the stack slot and then the active slot (cleared
// when active is nil).
func (r *SQLiteStateRepo) SaveSnapshot(ctx context.Context, active *domain.Session, st *domain.StackState) error {
	if r.uow == nil {
		return writeSnapshot(ctx, r, active, st)
	}
	return r.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return writeSnapshot(ctx, NewSQLiteStateRepo(tx), active, st)
	})
}

func writeSnapshot(ctx context.Context, r *SQLiteStateRepo, active *domain.Session, st *domain.StackState) error {
	if err := r.SaveStack(ctx, st); err != nil {
		return err
	}
	if active == nil {
		return r.ClearActive(ctx)
	}
	return r.SaveActive(ctx, active)
}

func (r *SQLiteStateRepo) loadSlot(ctx context.Context, slot string) ([]byte, error) {
	var payload string
	err := r.db.QueryRowContext(ctx, `SELECT payload FROM timer_slots WHERE slot = ?`, slot).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", slot, err)
	}
	return []byte(payload), nil
}

func (r *SQLiteStateRepo) saveSlot(ctx context.Context, slot string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", slot, err)
	}
	query := `INSERT INTO timer_slots (slot, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`
	if _, err := r.db.ExecContext(ctx, query, slot, string(data), nowUTC()); err != nil {
		return fmt.Errorf("writing %s: %w", slot, err)
	}
	return nil
}
