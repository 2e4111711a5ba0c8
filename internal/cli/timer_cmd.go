package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/efficiency/internal/cli/formatter"
	"github.com/alexanderramin/efficiency/internal/domain"
	"github.com/alexanderramin/efficiency/internal/service"
	"github.com/spf13/cobra"
)

// sourceFlags are the optional fields that complete a "type:id" argument
// when the catalog cannot.
type sourceFlags struct {
	project string
	parent  string
	title   string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.project, "project", "", "Project ID to bill (looked up from the catalog when omitted)")
	cmd.Flags().StringVar(&f.parent, "parent", "", "Parent story ID for follow-up sources")
	cmd.Flags().StringVar(&f.title, "title", "", "Display title (looked up from the catalog when omitted)")
}

func (f *sourceFlags) ref(arg string) (domain.SourceRef, error) {
	ref, err := domain.ParseSourceKey(arg)
	if err != nil {
		return domain.SourceRef{}, err
	}
	ref.ProjectID = f.project
	ref.ParentStoryID = f.parent
	return ref, nil
}

func newStartCmd(app *App) *cobra.Command {
	var flags sourceFlags
	cmd := &cobra.Command{
		Use:   "start TYPE:ID",
		Short: "Start timing a task source",
		Example: `  efficiency start story:101
  efficiency start story_follow_up:55 --parent 101 --project 7`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := flags.ref(args[0])
			if err != nil {
				return err
			}
			res, err := app.Timer.Start(context.Background(), ref, flags.title)
			return printCommand(cmd, "start", res, err)
		},
	}
	flags.register(cmd)
	return cmd
}

func newInterruptCmd(app *App) *cobra.Command {
	var flags sourceFlags
	cmd := &cobra.Command{
		Use:   "interrupt TYPE:ID",
		Short: "Park the current session and start timing another source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := flags.ref(args[0])
			if err != nil {
				return err
			}
			res, err := app.Timer.Interrupt(context.Background(), ref, flags.title)
			return printCommand(cmd, "interrupt", res, err)
		},
	}
	flags.register(cmd)
	return cmd
}

func newPauseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "pause",
		Short: "Pause the running session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.Timer.Pause(context.Background())
			return printCommand(cmd, "pause", res, err)
		},
	}
}

func newResumeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Resume the paused session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.Timer.Resume(context.Background())
			return printCommand(cmd, "resume", res, err)
		},
	}
}

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the active session and the suspension stack",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			report := app.Timer.RestoreReport()
			if report.ActiveErr != nil {
				fmt.Fprintln(out, formatter.Cross("Saved session was unreadable and has been discarded."))
			}
			if report.StackErr != nil {
				fmt.Fprintln(out, formatter.Cross("Saved suspension stack was unreadable and has been reset."))
			}
			if report.RepairErr != nil {
				fmt.Fprintln(out, formatter.Cross(fmt.Sprintf("Saved timer state could not be repaired: %v", report.RepairErr)))
			}
			fmt.Fprint(out, formatter.FormatStatus(app.Timer.Status(context.Background())))
			return nil
		},
	}
}

// printCommand reports a command result. A failed persist after an applied
// transition is shown as a warning: the transition itself held.
func printCommand(cmd *cobra.Command, verb string, res service.CommandResult, err error) error {
	if err != nil && !res.Applied {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), formatter.FormatCommand(verb, res.Applied, res.Status))
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), formatter.Cross(fmt.Sprintf("state not saved: %v", err)))
	}
	return nil
}
