package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/alexanderramin/efficiency/internal/cli/formatter"
	"github.com/alexanderramin/efficiency/internal/domain"
	"github.com/alexanderramin/efficiency/internal/timer"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newWatchCmd(app *App) *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Show the live elapsed time of the active session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if plain || !app.interactive() {
				ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
				defer stop()
				return watchPlain(ctx, cmd, app)
			}
			p := tea.NewProgram(newWatchModel(app.Timer, app.RefreshInterval),
				tea.WithInput(cmd.InOrStdin()), tea.WithOutput(cmd.OutOrStdout()))
			_, err := p.Run()
			return err
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "Print one status line per tick instead of the full-screen view")
	return cmd
}

// watchPlain prints a status line per refresh until the session leaves
// Running or ctx is cancelled.
func watchPlain(ctx context.Context, cmd *cobra.Command, app *App) error {
	out := cmd.OutOrStdout()
	st := app.Timer.Status(ctx)
	fmt.Fprintln(out, formatter.FormatStatusLine(st))
	if st.State != domain.StateRunning {
		return nil
	}

	ended := make(chan struct{})
	r := timer.NewRefresher(app.RefreshInterval,
		func() timer.Status {
			s := app.Timer.Status(ctx)
			if s.State != domain.StateRunning {
				fmt.Fprintln(out, formatter.FormatStatusLine(s))
				close(ended)
			}
			return s
		},
		func(s timer.Status) { fmt.Fprintln(out, formatter.FormatStatusLine(s)) },
	)
	r.Sync(ctx, st.State)
	defer r.Stop()

	select {
	case <-ctx.Done():
	case <-ended:
	}
	return nil
}
