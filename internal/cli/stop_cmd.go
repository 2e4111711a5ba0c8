package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/efficiency/internal/cli/formatter"
	"github.com/alexanderramin/efficiency/internal/reconcile"
	"github.com/alexanderramin/efficiency/internal/service"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

// stopOptions are the operator's stop-time choices in their textual form,
// shared by the flag set and the interactive form.
type stopOptions struct {
	start       string
	end         string
	description string
	complete    bool
	result      string
	successor   string
	nextDate    string

	// Clock strings the form pre-filled from the default window. A bound
	// left at its pre-filled value is not an override.
	defaultStart string
	defaultEnd   string
}

// request converts the options into a StopRequest. Clock times are placed
// on the day of the corresponding default bound.
func (o stopOptions) request(p *service.StopPreview) (reconcile.StopRequest, error) {
	req := reconcile.StopRequest{
		Description:      strings.TrimSpace(o.description),
		CompleteFollowUp: o.complete,
		ResultNote:       strings.TrimSpace(o.result),
	}
	if s := strings.TrimSpace(o.start); s != "" && s != o.defaultStart {
		t, err := parseClockOn(s, p.Window.Start.Local())
		if err != nil {
			return req, fmt.Errorf("--start: %w", err)
		}
		req.Start = &t
	}
	if s := strings.TrimSpace(o.end); s != "" && s != o.defaultEnd {
		t, err := parseClockOn(s, p.Window.End.Local())
		if err != nil {
			return req, fmt.Errorf("--end: %w", err)
		}
		req.End = &t
	}

	content, date := strings.TrimSpace(o.successor), strings.TrimSpace(o.nextDate)
	switch {
	case content == "" && date == "":
	case content == "":
		return req, errors.New("--next-date needs --successor")
	case date == "":
		return req, errors.New("--successor needs --next-date")
	default:
		next, err := parseDate(date)
		if err != nil {
			return req, fmt.Errorf("--next-date: %w", err)
		}
		req.Successor = &reconcile.SuccessorRequest{Content: content, NextActionDate: next}
	}
	return req, nil
}

func newStopCmd(app *App) *cobra.Command {
	var opts stopOptions
	var yes bool

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the session and record a work log",
		Long: `Stop the active session and submit a work log for it.

The default window runs from the session start to now, or from now minus
the elapsed time for sessions resumed from the stack. --start and --end
override it with local HH:MM times. Follow-up sources can be completed and
given a successor in the same step.

Exits non-zero only when the work log itself was not recorded.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			out := cmd.OutOrStdout()

			preview, err := app.Timer.PrepareStop(ctx)
			if err != nil {
				return err
			}
			if preview == nil {
				fmt.Fprintln(out, formatter.Dim("stop ignored: timer is idle."))
				return nil
			}

			interactive := app.interactive() && !yes
			if interactive {
				fmt.Fprintln(out, formatter.FormatStopPreview(preview))
				if err := stopForm(&opts, preview).Run(); err != nil {
					return err
				}
			}

			req, err := opts.request(preview)
			if err != nil {
				return err
			}

			done := func() {}
			if interactive {
				done = formatter.StartSpinner(cmd.ErrOrStderr(), "Recording work log…")
			}
			res, err := app.Timer.Stop(ctx, req)
			done()
			if errors.Is(err, reconcile.ErrEmptyWindow) {
				return fmt.Errorf("%w; the session is still active", err)
			}
			if err != nil && (res == nil || !res.Applied) {
				return err
			}
			if !res.Applied {
				fmt.Fprintln(out, formatter.Dim("stop ignored: timer is idle."))
				return nil
			}
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), formatter.Cross(fmt.Sprintf("state not saved: %v", err)))
			}

			fmt.Fprint(out, formatter.FormatReport(res.Report))
			if res.Report.Outcome() == reconcile.OutcomeFailed {
				return ErrWorkLogNotRecorded
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.start, "start", "", "Override window start (HH:MM local)")
	cmd.Flags().StringVar(&opts.end, "end", "", "Override window end (HH:MM local)")
	cmd.Flags().StringVarP(&opts.description, "description", "m", "", "Work log description (defaults to the source title)")
	cmd.Flags().BoolVar(&opts.complete, "complete", false, "Complete the follow-up record being timed")
	cmd.Flags().StringVar(&opts.result, "result", "", "Result note for the completed follow-up")
	cmd.Flags().StringVar(&opts.successor, "successor", "", "Content of a successor follow-up to create")
	cmd.Flags().StringVar(&opts.nextDate, "next-date", "", "Next action date of the successor (YYYY-MM-DD)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the interactive form")

	return cmd
}

// stopForm prompts for the window and description, plus the follow-up
// choices when the session is timing a follow-up record.
func stopForm(opts *stopOptions, p *service.StopPreview) *huh.Form {
	if opts.start == "" {
		opts.start = p.Window.Start.Local().Format(clockLayout)
		opts.defaultStart = opts.start
	}
	if opts.end == "" {
		opts.end = p.Window.End.Local().Format(clockLayout)
		opts.defaultEnd = opts.end
	}
	if opts.description == "" {
		opts.description = p.Session.Title
	}

	groups := []*huh.Group{
		huh.NewGroup(
			huh.NewInput().Title("Start (HH:MM)").Value(&opts.start).Validate(validateClock),
			huh.NewInput().Title("End (HH:MM)").Value(&opts.end).Validate(validateClock),
			huh.NewInput().Title("Description").Value(&opts.description),
		),
	}
	if p.Session.Source.Type.IsFollowUp() {
		groups = append(groups,
			huh.NewGroup(
				huh.NewConfirm().Title("Complete this follow-up?").Value(&opts.complete),
				huh.NewInput().Title("Result note").Value(&opts.result),
			),
			huh.NewGroup(
				huh.NewInput().Title("Successor follow-up (blank for none)").Value(&opts.successor),
				huh.NewInput().Title("Next action date (YYYY-MM-DD)").Value(&opts.nextDate).Validate(validateOptionalDate),
			),
		)
	}
	return huh.NewForm(groups...).WithTheme(efficiencyHuhTheme()).WithShowHelp(false)
}
