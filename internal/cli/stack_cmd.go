package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/alexanderramin/efficiency/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newStackCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stack",
		Short: "Inspect and resume parked sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st := app.Timer.Status(context.Background())
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatStack(st.Suspended, st.At))
			return nil
		},
	}

	cmd.AddCommand(newStackResumeCmd(app))
	return cmd
}

func newStackResumeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "resume ID",
		Short: "Resume a parked session by stack ID, parking the active one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("stack id must be a number, got %q", args[0])
			}
			res, err := app.Timer.ResumeFromStack(context.Background(), id)
			if err == nil && !res.Applied {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim(fmt.Sprintf("No suspended session with id %d.", id)))
				return nil
			}
			return printCommand(cmd, "resume", res, err)
		},
	}
}
