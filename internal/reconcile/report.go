package reconcile

import "github.com/alexanderramin/efficiency/internal/domain"

// Outcome summarizes a Report.
type Outcome string

const (
	OutcomeOK      Outcome = "ok"
	OutcomePartial Outcome = "partial"
	OutcomeFailed  Outcome = "failed"
)

// StepResult is the result of an optional follow-up step.
type StepResult struct {
	Attempted bool
	Err       error
}

// Failed reports whether the step ran and failed.
func (s StepResult) Failed() bool { return s.Attempted && s.Err != nil }

// Report describes what reconciliation did with one stopped session. Steps
// are independent: a failed follow-up step leaves the work log in place.
type Report struct {
	Window     Window
	Draft      domain.WorkLogDraft
	WorkLog    *domain.WorkLogRecord
	LedgerErr  error
	JournalID  string
	JournalErr error
	Completion StepResult
	Successor  StepResult
}

// Outcome is failed when the work log was not accepted, partial when it was
// but a follow-up step failed, and ok otherwise.
func (r Report) Outcome() Outcome {
	switch {
	case r.LedgerErr != nil || r.WorkLog == nil:
		return OutcomeFailed
	case r.Completion.Failed() || r.Successor.Failed():
		return OutcomePartial
	default:
		return OutcomeOK
	}
}
