package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"jmssh/backend"
)

func newPasswordCmd(e *env) *cobra.Command {
	passwordCmd := &cobra.Command{
		Use:     "password",
		Aliases: []string{"pw"},
		Short:   "Manage passwords stored in the system keyring",
	}

	setCmd := &cobra.Command{
		Use:               "set <label>",
		Short:             "Store a password (read from the terminal, or the first line of stdin)",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeLabels(e),
		RunE: func(cmd *cobra.Command, args []string) error {
			label := args[0]
			return withApp(cmd, e, func(ctx context.Context, app *backend.App) error {
				// 先确认 profile 存在，避免白白输入密码
				if _, err := app.Profiles.Show(ctx, label); err != nil {
					return err
				}
				pw, err := readSecret(e, fmt.Sprintf("password for %s: ", label))
				if err != nil {
					return err
				}
				if err := app.Passwords.Set(ctx, label, pw); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "password stored for %s\n", label)
				return nil
			})
		},
	}

	showCmd := &cobra.Command{
		Use:               "show <label>",
		Short:             "Print the stored password",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeLabels(e),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, e, func(ctx context.Context, app *backend.App) error {
				pw, found, err := app.Passwords.Show(ctx, args[0])
				if err != nil {
					return err
				}
				if !found {
					fmt.Fprintf(cmd.ErrOrStderr(), "no password stored for %s\n", args[0])
					return &ExitError{Code: 1}
				}
				fmt.Fprintln(cmd.OutOrStdout(), pw)
				return nil
			})
		},
	}

	clearCmd := &cobra.Command{
		Use:               "clear <label>",
		Aliases:           []string{"rm"},
		Short:             "Remove the stored password",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeLabels(e),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, e, func(ctx context.Context, app *backend.App) error {
				if err := app.Passwords.Clear(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "password cleared for %s\n", args[0])
				return nil
			})
		},
	}

	passwordCmd.AddCommand(setCmd, showCmd, clearCmd)
	return passwordCmd
}
