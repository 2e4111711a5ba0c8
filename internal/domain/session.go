package domain

import (
	"fmt"
	"time"
)

type SessionState string

const (
	StateIdle    SessionState = "idle"
	StateRunning SessionState = "running"
	StatePaused  SessionState = "paused"
)

// Session is the single active unit of tracked work. Elapsed time is never
// stored as a ticking counter: it is derived from BaseSeconds, CarryNanos
// and the start of the current segment on every read. CarryNanos holds the
// sub-second remainder of the last freeze, in [0, 1s).
type Session struct {
	ID            string       `json:"id"`
	Source        SourceRef    `json:"source"`
	Title         string       `json:"title"`
	State         SessionState `json:"state"`
	SegmentStart  *time.Time   `json:"segment_start,omitempty"`
	BaseSeconds   int64        `json:"base_seconds"`
	CarryNanos    int64        `json:"carry_nanos,omitempty"`
	OriginalStart *time.Time   `json:"original_start,omitempty"`
}

func (s *Session) elapsed(now time.Time) time.Duration {
	d := time.Duration(s.BaseSeconds)*time.Second + time.Duration(s.CarryNanos)
	if s.State == StateRunning && s.SegmentStart != nil {
		if seg := now.Sub(*s.SegmentStart); seg > 0 {
			d += seg
		}
	}
	return d
}

// ElapsedSeconds returns the whole seconds of BaseSeconds, CarryNanos and
// the running segment. A segment that appears to end before it started
// counts as zero.
func (s *Session) ElapsedSeconds(now time.Time) int64 {
	if s == nil {
		return 0
	}
	return int64(s.elapsed(now) / time.Second)
}

// Freeze splits the elapsed time at now into whole seconds and the
// sub-second carry, so repeated pauses do not drop fractions.
func (s *Session) Freeze(now time.Time) (seconds, carryNanos int64) {
	if s == nil {
		return 0, 0
	}
	d := s.elapsed(now)
	return int64(d / time.Second), int64(d % time.Second)
}

// Active reports whether the session is running or paused.
func (s *Session) Active() bool {
	return s != nil && (s.State == StateRunning || s.State == StatePaused)
}

// Validate checks that a restored session is internally consistent.
func (s *Session) Validate() error {
	if s == nil {
		return fmt.Errorf("session is nil")
	}
	if err := s.Source.Validate(); err != nil {
		return err
	}
	if s.BaseSeconds < 0 {
		return fmt.Errorf("negative base seconds %d", s.BaseSeconds)
	}
	if s.CarryNanos < 0 || s.CarryNanos >= int64(time.Second) {
		return fmt.Errorf("carry %dns outside one second", s.CarryNanos)
	}
	switch s.State {
	case StateRunning:
		if s.SegmentStart == nil || s.SegmentStart.IsZero() {
			return fmt.Errorf("running session without segment start")
		}
	case StatePaused:
	default:
		return fmt.Errorf("invalid persisted session state %q", s.State)
	}
	return nil
}

// SuspendedEntry is a session parked on the suspension stack with its
// elapsed time frozen at the moment it was preempted.
type SuspendedEntry struct {
	ID              int64     `json:"id"`
	SessionID       string    `json:"session_id"`
	Source          SourceRef `json:"source"`
	Title           string    `json:"title"`
	SnapshotSeconds int64     `json:"snapshot_seconds"`
	SnapshotCarry   int64     `json:"snapshot_carry_nanos,omitempty"`
	SuspendedAt     time.Time `json:"suspended_at"`
}

// StackState is the persisted form of the suspension stack. NextID survives
// restarts so entry ids are never reused.
type StackState struct {
	NextID  int64            `json:"next_id"`
	Entries []SuspendedEntry `json:"entries"`
}
