package timer

import (
	"time"

	"github.com/alexanderramin/efficiency/internal/domain"
)

// Stack holds preempted sessions. Entries are pushed in preemption order and
// listed most-recent-first, but any entry can be popped by id, so it is kept
// as a map plus an ordering slice rather than a strict LIFO.
type Stack struct {
	nextID  int64
	entries map[int64]domain.SuspendedEntry
	order   []int64
}

// NewStack returns an empty stack whose first entry gets id 1.
func NewStack() *Stack {
	return &Stack{nextID: 1, entries: make(map[int64]domain.SuspendedEntry)}
}

// stackFromState rebuilds a stack from its persisted form, keeping the
// persisted order. Duplicate ids keep their first occurrence.
func stackFromState(st *domain.StackState) *Stack {
	s := NewStack()
	if st == nil {
		return s
	}
	for _, e := range st.Entries {
		if _, dup := s.entries[e.ID]; dup {
			continue
		}
		if e.SnapshotCarry < 0 || e.SnapshotCarry >= int64(time.Second) {
			e.SnapshotCarry = 0
		}
		s.entries[e.ID] = e
		s.order = append(s.order, e.ID)
		if e.ID >= s.nextID {
			s.nextID = e.ID + 1
		}
	}
	if st.NextID > s.nextID {
		s.nextID = st.NextID
	}
	return s
}

// Push assigns the next id to e, places it on top and returns the stored entry.
func (s *Stack) Push(e domain.SuspendedEntry) domain.SuspendedEntry {
	e.ID = s.nextID
	s.nextID++
	s.entries[e.ID] = e
	s.order = append([]int64{e.ID}, s.order...)
	return e
}

// Pop removes the entry with the given id wherever it sits.
func (s *Stack) Pop(id int64) (domain.SuspendedEntry, bool) {
	e, ok := s.entries[id]
	if !ok {
		return domain.SuspendedEntry{}, false
	}
	delete(s.entries, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return e, true
}

func (s *Stack) Get(id int64) (domain.SuspendedEntry, bool) {
	e, ok := s.entries[id]
	return e, ok
}

// Peek returns the most recently pushed entry.
func (s *Stack) Peek() (domain.SuspendedEntry, bool) {
	if len(s.order) == 0 {
		return domain.SuspendedEntry{}, false
	}
	return s.entries[s.order[0]], true
}

func (s *Stack) Len() int {
	return len(s.order)
}

// List returns the entries most-recent-first.
func (s *Stack) List() []domain.SuspendedEntry {
	out := make([]domain.SuspendedEntry, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.entries[id])
	}
	return out
}

// State returns the persisted form of the stack.
func (s *Stack) State() *domain.StackState {
	return &domain.StackState{NextID: s.nextID, Entries: s.List()}
}

// remove drops entries matching pred and reports how many were removed.
func (s *Stack) remove(pred func(domain.SuspendedEntry) bool) int {
	n := 0
	for _, e := range s.List() {
		if pred(e) {
			s.Pop(e.ID)
			n++
		}
	}
	return n
}
