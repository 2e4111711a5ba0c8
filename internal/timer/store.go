package timer

import (
	"context"
	"errors"

	"github.com/alexanderramin/efficiency/internal/domain"
)

// ErrCorruptState indicates a persisted slot exists but cannot be decoded.
var ErrCorruptState = errors.New("corrupt timer state")

// StateStore mirrors the engine's state into two independent durable slots.
// Each Save rewrites its slot completely; LoadActive returns (nil, nil) when
// no session was persisted.
type StateStore interface {
	LoadActive(ctx context.Context) (*domain.Session, error)
	SaveActive(ctx context.Context, s *domain.Session) error
	ClearActive(ctx context.Context) error
	LoadStack(ctx context.Context) (*domain.StackState, error)
	SaveStack(ctx context.Context, st *domain.StackState) error
}

// SnapshotWriter is implemented by stores that can rewrite both slots in
// one step. Engine prefers it for commands that touch both.
type SnapshotWriter interface {
	SaveSnapshot(ctx context.Context, active *domain.Session, st *domain.StackState) error
}

// MemoryStore is a StateStore that keeps slots in memory. It is used when no
// durable backend is configured and in tests.
type MemoryStore struct {
	active *domain.Session
	stack  *domain.StackState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) LoadActive(context.Context) (*domain.Session, error) {
	if m.active == nil {
		return nil, nil
	}
	cp := *m.active
	return &cp, nil
}

func (m *MemoryStore) SaveActive(_ context.Context, s *domain.Session) error {
	cp := *s
	m.active = &cp
	return nil
}

func (m *MemoryStore) ClearActive(context.Context) error {
	m.active = nil
	return nil
}

func (m *MemoryStore) LoadStack(context.Context) (*domain.StackState, error) {
	if m.stack == nil {
		return nil, nil
	}
	cp := domain.StackState{NextID: m.stack.NextID, Entries: append([]domain.SuspendedEntry(nil), m.stack.Entries...)}
	return &cp, nil
}

func (m *MemoryStore) SaveStack(_ context.Context, st *domain.StackState) error {
	cp := domain.StackState{NextID: st.NextID, Entries: append([]domain.SuspendedEntry(nil), st.Entries...)}
	m.stack = &cp
	return nil
}
