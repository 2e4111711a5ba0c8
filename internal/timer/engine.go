package timer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/efficiency/internal/domain"
	"github.com/google/uuid"
)

// Status is a point-in-time read of the engine.
type Status struct {
	State          domain.SessionState
	Session        *domain.Session
	ElapsedSeconds int64
	Suspended      []domain.SuspendedEntry
	At             time.Time
}

// StoppedSession is the final view of a session handed to reconciliation.
type StoppedSession struct {
	Session        domain.Session
	ElapsedSeconds int64
	StoppedAt      time.Time
}

// Handoff receives a session at stop time, before the engine goes idle.
type Handoff func(ctx context.Context, stopped StoppedSession)

// Engine owns the single active session and the suspension stack. Commands
// issued in a state that does not allow them are ignored and report
// applied=false. Every applied command rewrites the affected store slots; a
// failed write is returned but the in-memory transition stands.
//
// Engine is not safe for concurrent use; callers serialize commands.
type Engine struct {
	clock  Clock
	store  StateStore
	active *domain.Session
	stack  *Stack
}

// NewEngine returns an idle engine with an empty stack.
func NewEngine(clock Clock, store StateStore) *Engine {
	if clock == nil {
		clock = SystemClock{}
	}
	if store == nil {
		store = NewMemoryStore()
	}
	return &Engine{clock: clock, store: store, stack: NewStack()}
}

// State returns the current state; Idle when no session is active.
func (e *Engine) State() domain.SessionState {
	if e.active == nil {
		return domain.StateIdle
	}
	return e.active.State
}

// Elapsed returns the active session's elapsed seconds at the current time.
func (e *Engine) Elapsed() int64 {
	return e.active.ElapsedSeconds(e.clock.Now())
}

// Active returns a copy of the active session, or nil when idle.
func (e *Engine) Active() *domain.Session {
	if e.active == nil {
		return nil
	}
	cp := *e.active
	return &cp
}

func (e *Engine) Suspended() []domain.SuspendedEntry {
	return e.stack.List()
}

func (e *Engine) Snapshot() Status {
	now := e.clock.Now()
	return Status{
		State:          e.State(),
		Session:        e.Active(),
		ElapsedSeconds: e.active.ElapsedSeconds(now),
		Suspended:      e.stack.List(),
		At:             now,
	}
}

// Start begins a new session. Valid from Idle only.
func (e *Engine) Start(ctx context.Context, ref domain.SourceRef, title string) (bool, error) {
	if e.active != nil {
		return false, nil
	}
	e.begin(ref, title)
	return true, e.saveActive(ctx)
}

// Pause freezes elapsed time into BaseSeconds. Valid from Running.
func (e *Engine) Pause(ctx context.Context) (bool, error) {
	if e.State() != domain.StateRunning {
		return false, nil
	}
	e.active.BaseSeconds, e.active.CarryNanos = e.active.Freeze(e.clock.Now())
	e.active.SegmentStart = nil
	e.active.State = domain.StatePaused
	return true, e.saveActive(ctx)
}

// Resume opens a new segment. Valid from Paused.
func (e *Engine) Resume(ctx context.Context) (bool, error) {
	if e.State() != domain.StatePaused {
		return false, nil
	}
	now := e.clock.Now()
	e.active.SegmentStart = &now
	e.active.State = domain.StateRunning
	return true, e.saveActive(ctx)
}

// Interrupt parks the active session on the stack with its current elapsed
// time and starts a new session for ref. Valid from Running or Paused.
func (e *Engine) Interrupt(ctx context.Context, ref domain.SourceRef, title string) (bool, error) {
	if e.active == nil {
		return false, nil
	}
	e.suspendActive()
	e.begin(ref, title)
	return true, e.persistBoth(ctx)
}

// ResumeFromStack reactivates the parked entry with the given id, which
// need not be the most recent one. An active session is parked first.
// The reactivated session has no original start, so its default stop
// window is derived from elapsed time. Unknown ids are ignored.
//
// Without a SnapshotWriter the slots are written in three steps: the stack
// with both sessions parked, the new active slot, then the stack without
// the resumed entry. A crash after any step leaves every session either
// active or parked, and Restore collapses the duplicate.
func (e *Engine) ResumeFromStack(ctx context.Context, id int64) (bool, error) {
	if _, ok := e.stack.Get(id); !ok {
		return false, nil
	}
	_, atomic := e.store.(SnapshotWriter)

	var staged error
	if e.active != nil {
		e.suspendActive()
		if !atomic {
			staged = e.saveStack(ctx)
		}
	}
	entry, _ := e.stack.Pop(id)

	now := e.clock.Now()
	e.active = &domain.Session{
		ID:           entry.SessionID,
		Source:       entry.Source,
		Title:        entry.Title,
		State:        domain.StateRunning,
		SegmentStart: &now,
		BaseSeconds:  entry.SnapshotSeconds,
		CarryNanos:   entry.SnapshotCarry,
	}
	if e.active.ID == "" {
		e.active.ID = uuid.NewString()
	}
	if atomic {
		return true, e.persistBoth(ctx)
	}
	return true, errors.Join(staged, e.saveActive(ctx), e.saveStack(ctx))
}

// Stop finalizes the active session, passes it to handoff and returns to
// Idle. The session is released whatever handoff does. Valid from Running
// or Paused.
func (e *Engine) Stop(ctx context.Context, handoff Handoff) (bool, error) {
	if e.active == nil {
		return false, nil
	}
	now := e.clock.Now()
	stopped := StoppedSession{
		Session:        *e.active,
		ElapsedSeconds: e.active.ElapsedSeconds(now),
		StoppedAt:      now,
	}
	if handoff != nil {
		handoff(ctx, stopped)
	}
	e.active = nil
	if err := e.store.ClearActive(ctx); err != nil {
		return true, fmt.Errorf("clearing active session: %w", err)
	}
	return true, nil
}

func (e *Engine) begin(ref domain.SourceRef, title string) {
	now := e.clock.Now()
	seg, origin := now, now
	e.active = &domain.Session{
		ID:            uuid.NewString(),
		Source:        ref,
		Title:         title,
		State:         domain.StateRunning,
		SegmentStart:  &seg,
		OriginalStart: &origin,
	}
}

func (e *Engine) suspendActive() {
	now := e.clock.Now()
	secs, carry := e.active.Freeze(now)
	e.stack.Push(domain.SuspendedEntry{
		SessionID:       e.active.ID,
		Source:          e.active.Source,
		Title:           e.active.Title,
		SnapshotSeconds: secs,
		SnapshotCarry:   carry,
		SuspendedAt:     now,
	})
	e.active = nil
}

func (e *Engine) saveActive(ctx context.Context) error {
	if e.active == nil {
		if err := e.store.ClearActive(ctx); err != nil {
			return fmt.Errorf("clearing active session: %w", err)
		}
		return nil
	}
	if err := e.store.SaveActive(ctx, e.active); err != nil {
		return fmt.Errorf("persisting active session: %w", err)
	}
	return nil
}

// persistBoth writes both slots after an interrupt. Without a
// SnapshotWriter the stack goes first, so a crash between the writes leaves
// the parked session still in the active slot as well, which Restore
// collapses.
func (e *Engine) persistBoth(ctx context.Context) error {
	if w, ok := e.store.(SnapshotWriter); ok {
		if err := w.SaveSnapshot(ctx, e.active, e.stack.State()); err != nil {
			return fmt.Errorf("persisting timer snapshot: %w", err)
		}
		return nil
	}
	return errors.Join(e.saveStack(ctx), e.saveActive(ctx))
}

func (e *Engine) saveStack(ctx context.Context) error {
	if err := e.store.SaveStack(ctx, e.stack.State()); err != nil {
		return fmt.Errorf("persisting suspended stack: %w", err)
	}
	return nil
}
