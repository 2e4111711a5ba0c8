package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/efficiency/internal/cli/formatter"
	"github.com/alexanderramin/efficiency/internal/domain"
	"github.com/spf13/cobra"
)

func newWorkLogCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "worklog",
		Aliases: []string{"wl"},
		Short:   "Browse and correct recorded work logs",
	}

	cmd.AddCommand(
		newWorkLogListCmd(app),
		newWorkLogSummaryCmd(app),
		newWorkLogEditCmd(app),
		newWorkLogDeleteCmd(app),
		newWorkLogJournalCmd(app),
		newWorkLogResubmitCmd(app),
	)
	return cmd
}

// rangeFlags is an inclusive date range defaulting to the last seven days.
type rangeFlags struct {
	from string
	to   string
}

func (f *rangeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.from, "from", "", "First day (YYYY-MM-DD, default six days ago)")
	cmd.Flags().StringVar(&f.to, "to", "", "Last day (YYYY-MM-DD, default today)")
}

func (f *rangeFlags) bounds(now time.Time) (time.Time, time.Time, error) {
	y, m, d := now.Date()
	to := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	from := to.AddDate(0, 0, -6)
	var err error
	if f.from != "" {
		if from, err = parseDate(f.from); err != nil {
			return from, to, fmt.Errorf("--from: %w", err)
		}
	}
	if f.to != "" {
		if to, err = parseDate(f.to); err != nil {
			return from, to, fmt.Errorf("--to: %w", err)
		}
	}
	return from, to, nil
}

func newWorkLogListCmd(app *App) *cobra.Command {
	var rng rangeFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List work logs in a date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to, err := rng.bounds(app.now())
			if err != nil {
				return err
			}
			records, err := app.WorkLogs.List(context.Background(), from, to)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatWorkLogs(records))
			return nil
		},
	}
	rng.register(cmd)
	return cmd
}

func newWorkLogSummaryCmd(app *App) *cobra.Command {
	var rng rangeFlags
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show logged hours per project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to, err := rng.bounds(app.now())
			if err != nil {
				return err
			}
			sum, err := app.WorkLogs.Summary(context.Background(), from, to)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSummary(sum, from, to))
			return nil
		},
	}
	rng.register(cmd)
	return cmd
}

func newWorkLogEditCmd(app *App) *cobra.Command {
	var source, projectID, date, description, start, end string
	var hours float64

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Replace a recorded work log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := domain.ParseSourceKey(source)
			if err != nil {
				return err
			}
			day, err := parseDate(date)
			if err != nil {
				return fmt.Errorf("--date: %w", err)
			}
			draft := domain.WorkLogDraft{
				ProjectID:   projectID,
				SourceType:  ref.Type,
				SourceID:    ref.SourceID,
				Description: description,
				HoursSpent:  hours,
				WorkDate:    day.Format(domain.WorkDateLayout),
			}
			if start != "" {
				if draft.StartedAt, err = parseClockOn(start, day); err != nil {
					return fmt.Errorf("--start: %w", err)
				}
			}
			if end != "" {
				if draft.EndedAt, err = parseClockOn(end, day); err != nil {
					return fmt.Errorf("--end: %w", err)
				}
			}

			rec, err := app.WorkLogs.Update(context.Background(), args[0], draft)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Check(fmt.Sprintf("Updated work log %s: %s on %s",
				rec.ID, formatter.FormatHours(rec.HoursSpent), rec.WorkDate)))
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "Source as TYPE:ID")
	cmd.Flags().StringVar(&projectID, "project", "", "Project ID")
	cmd.Flags().Float64Var(&hours, "hours", 0, "Hours spent")
	cmd.Flags().StringVar(&date, "date", "", "Work date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&description, "description", "m", "", "Description")
	cmd.Flags().StringVar(&start, "start", "", "Start time on the work date (HH:MM)")
	cmd.Flags().StringVar(&end, "end", "", "End time on the work date (HH:MM)")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("hours")
	_ = cmd.MarkFlagRequired("date")

	return cmd
}

func newWorkLogDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a recorded work log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.WorkLogs.Delete(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Check(fmt.Sprintf("Deleted work log %s", args[0])))
			return nil
		},
	}
}

func newWorkLogJournalCmd(app *App) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show local work-log submission attempts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := app.WorkLogs.Journal(context.Background(), limit)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatJournal(entries, app.now()))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum entries to show (0 for all)")
	return cmd
}

func newWorkLogResubmitCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "resubmit JOURNAL_ID",
		Short: "Retry a work log that the ledger did not accept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := app.WorkLogs.Resubmit(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Check(fmt.Sprintf("Recorded work log %s (%s, attempt %d)",
				entry.RemoteID, formatter.FormatHours(entry.Draft.HoursSpent), entry.Attempts)))
			return nil
		},
	}
}
