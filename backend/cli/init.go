package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"jmssh/backend"
)

func newInitCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the data directory and database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, e, func(ctx context.Context, app *backend.App) error {
				fmt.Fprintf(cmd.OutOrStdout(), "database ready at %s\n", app.DatabasePath())
				return nil
			})
		},
	}
}
