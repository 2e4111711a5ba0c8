package reconcile

import (
	"fmt"
	"math"
	"time"

	"github.com/alexanderramin/efficiency/internal/timer"
)

// MinimumHours is the smallest duration a non-empty window is billed as.
const MinimumHours = 0.01

// Window is the billed interval of a stopped session.
type Window struct {
	Start time.Time
	End   time.Time
}

// DefaultWindow runs from the session's original start, or from
// stop time minus elapsed when the session has none, to stop time.
func DefaultWindow(stopped timer.StoppedSession) Window {
	end := stopped.StoppedAt
	start := end.Add(-time.Duration(stopped.ElapsedSeconds) * time.Second)
	if stopped.Session.OriginalStart != nil {
		start = *stopped.Session.OriginalStart
	}
	return Window{Start: start, End: end}
}

// Override replaces the window bounds the operator edited.
func (w Window) Override(start, end *time.Time) Window {
	if start != nil {
		w.Start = *start
	}
	if end != nil {
		w.End = *end
	}
	return w
}

// Hours returns the billed duration of w. See DurationHours.
func (w Window) Hours() (float64, error) {
	return DurationHours(w.Start, w.End)
}

// DurationHours returns end minus start in hours rounded to two decimals.
// An end before start is read as crossing midnight. A window that rounds to
// zero bills MinimumHours; one that covers no time at all is ErrEmptyWindow.
func DurationHours(start, end time.Time) (float64, error) {
	d := end.Sub(start)
	if d < 0 {
		d += 24 * time.Hour
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: %s to %s", ErrEmptyWindow, start.Format(time.Kitchen), end.Format(time.Kitchen))
	}
	hours := math.Round(d.Seconds()/3600*100) / 100
	if hours == 0 {
		hours = MinimumHours
	}
	return hours, nil
}
