package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"jmssh/backend"
	"jmssh/backend/internal/types"
	"jmssh/backend/service/sshgate"
)

func newConnectCmd(e *env) *cobra.Command {
	connectCmd := &cobra.Command{
		Use:   "connect [label]",
		Short: "Connect to a profile, through its jump chain if any",
		Long: `Resolve the profile's jump chain and run ssh in the foreground.
The exit code of ssh is passed through.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeLabels(e),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConnect(cmd, e, args)
		},
	}
	connectCmd.Flags().Uint("id", 0, "Connect by numeric profile id (takes precedence over label)")
	connectCmd.Flags().Bool("dry-run", false, "Print the ssh command instead of running it")
	return connectCmd
}

func runConnect(cmd *cobra.Command, e *env, args []string) error {
	var in types.ConnectInput
	if len(args) > 0 {
		in.Target = args[0]
	}
	if cmd.Flags().Changed("id") {
		id, err := cmd.Flags().GetUint("id")
		if err != nil {
			return err
		}
		in.ID = &id
	}
	if in.Target == "" && in.ID == nil {
		return errors.New("connect requires a profile label or --id")
	}
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return err
	}

	return withApp(cmd, e, func(ctx context.Context, app *backend.App) error {
		res, err := app.Gate.Connect(ctx, sshgate.ConnectRequest{Input: in, DryRun: dryRun})
		if err != nil {
			return err
		}
		if res.DryRun || res.Status.Success() {
			return nil
		}
		if res.Status.Signaled || res.Status.Code <= 0 {
			return &ExitError{Code: 1}
		}
		return &ExitError{Code: res.Status.Code}
	})
}
