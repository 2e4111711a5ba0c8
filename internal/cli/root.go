package cli

import (
	"errors"
	"time"

	"github.com/alexanderramin/efficiency/internal/service"
	"github.com/spf13/cobra"
)

// ErrWorkLogNotRecorded is returned by stop when the ledger did not accept
// the work log. Follow-up failures alone do not produce it.
var ErrWorkLogNotRecorded = errors.New("work log was not recorded")

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Timer    service.TimerService
	Sources  service.SourceService
	WorkLogs service.WorkLogService

	// IsInteractive reports whether stdin is a terminal. Nil means never,
	// which disables the stop form and the full-screen watch view.
	IsInteractive func() bool

	RefreshInterval time.Duration
	Listen          string
	RateLimit       int

	// Now overrides the wall clock used for relative dates in output.
	Now func() time.Time
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// NewRootCmd creates the top-level "efficiency" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "efficiency",
		Short:         "Interrupt-driven work timer that bills tracked time to a work ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newStartCmd(app),
		newPauseCmd(app),
		newResumeCmd(app),
		newInterruptCmd(app),
		newStopCmd(app),
		newStatusCmd(app),
		newWatchCmd(app),
		newStackCmd(app),
		newSourcesCmd(app),
		newWorkLogCmd(app),
		newServeCmd(app),
	)

	return root
}
