package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/efficiency/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newSourcesCmd(app *App) *cobra.Command {
	var projectID string
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List task sources that time can be billed to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sources, err := app.Sources.List(context.Background(), projectID)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSources(sources, app.now()))
			return nil
		},
	}
	cmd.Flags().StringVar(&projectID, "project", "", "Only sources of this project")
	return cmd
}
