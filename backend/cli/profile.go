package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"jmssh/backend"
	"jmssh/backend/internal/config"
	"jmssh/backend/internal/types"
)

func newProfileCmd(e *env) *cobra.Command {
	profileCmd := &cobra.Command{
		Use:     "profile",
		Aliases: []string{"p"},
		Short:   "Add, change, remove and list connection profiles",
	}

	addCmd := &cobra.Command{
		Use:   "add <label>",
		Short: "Add a profile (defaults: root@127.0.0.1:22, agent auth)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := editInput(cmd, args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, e, func(ctx context.Context, app *backend.App) error {
				v, err := app.Profiles.Add(ctx, in)
				if err != nil {
					return err
				}
				printProfile(cmd.OutOrStdout(), v)
				return nil
			})
		},
	}
	addEditFlags(addCmd)

	setCmd := &cobra.Command{
		Use:               "set <label>",
		Short:             "Change fields of a profile; --jump replaces the whole jump chain",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeLabels(e),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := editInput(cmd, args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, e, func(ctx context.Context, app *backend.App) error {
				v, err := app.Profiles.Set(ctx, in)
				if err != nil {
					return err
				}
				printProfile(cmd.OutOrStdout(), v)
				return nil
			})
		},
	}
	addEditFlags(setCmd)

	rmCmd := &cobra.Command{
		Use:               "rm <label>",
		Aliases:           []string{"remove"},
		Short:             "Remove a profile, its jump chain and its stored password",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeLabels(e),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, e, func(ctx context.Context, app *backend.App) error {
				if err := app.Profiles.Remove(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
				return nil
			})
		},
	}

	showCmd := &cobra.Command{
		Use:               "show <label>",
		Short:             "Show a profile",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeLabels(e),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, e, func(ctx context.Context, app *backend.App) error {
				v, err := app.Profiles.Show(ctx, args[0])
				if err != nil {
					return err
				}
				printProfile(cmd.OutOrStdout(), v)
				return nil
			})
		},
	}

	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all profiles",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, e, func(ctx context.Context, app *backend.App) error {
				views, err := app.Profiles.List(ctx)
				if err != nil {
					return err
				}
				return printProfileList(cmd.OutOrStdout(), views, !app.Settings().NoColor)
			})
		},
	}

	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Import concrete Host entries from an ssh config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, e, func(ctx context.Context, app *backend.App) error {
				path := app.Settings().SSHConfigPath
				if cmd.Flags().Changed("file") {
					path, _ = cmd.Flags().GetString("file")
				}
				res, err := app.Profiles.Import(ctx, config.ExpandHome(path))
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, label := range res.Created {
					fmt.Fprintf(out, "imported %s\n", label)
				}
				for _, s := range res.Skipped {
					fmt.Fprintf(out, "skipped  %s: %s\n", s.Alias, s.Reason)
				}
				return nil
			})
		},
	}
	importCmd.Flags().String("file", "", "ssh config file to read (default $JMSSH_SSH_CONFIG or ~/.ssh/config)")

	profileCmd.AddCommand(addCmd, setCmd, rmCmd, showCmd, listCmd, importCmd)
	return profileCmd
}

func addEditFlags(cmd *cobra.Command) {
	cmd.Flags().String("host", "", "Hostname or IP address")
	cmd.Flags().String("user", "", "Login user")
	cmd.Flags().Int("port", types.DefaultPort, "SSH port")
	cmd.Flags().String("mode", "", "Auth mode: agent, password or key")
	cmd.Flags().String("tags", "", "Free-form tags")
	cmd.Flags().String("note", "", "Free-form note")
	cmd.Flags().String("key", "", "Local private key path (empty string clears it)")
	cmd.Flags().StringArray("jump", nil, "Jump host label, repeat in hop order (replaces the chain)")
	_ = cmd.RegisterFlagCompletionFunc("mode", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"agent", "password", "key"}, cobra.ShellCompDirectiveNoFileComp
	})
}

// editInput 只收集用户显式给出的参数
func editInput(cmd *cobra.Command, label string) (types.EditProfileInput, error) {
	in := types.EditProfileInput{Label: label}
	flags := cmd.Flags()

	stringFlag := func(name string) (*string, error) {
		if !flags.Changed(name) {
			return nil, nil
		}
		v, err := flags.GetString(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read --%s flag: %w", name, err)
		}
		return &v, nil
	}

	var err error
	if in.Host, err = stringFlag("host"); err != nil {
		return in, err
	}
	if in.User, err = stringFlag("user"); err != nil {
		return in, err
	}
	if in.Tags, err = stringFlag("tags"); err != nil {
		return in, err
	}
	if in.Note, err = stringFlag("note"); err != nil {
		return in, err
	}
	if in.KeyPath, err = stringFlag("key"); err != nil {
		return in, err
	}
	if flags.Changed("port") {
		port, err := flags.GetInt("port")
		if err != nil {
			return in, fmt.Errorf("failed to read --port flag: %w", err)
		}
		in.Port = &port
	}
	if flags.Changed("mode") {
		raw, _ := flags.GetString("mode")
		mode, err := types.ParseAuthMode(raw)
		if err != nil {
			return in, err
		}
		in.Mode = &mode
	}
	if flags.Changed("jump") {
		jumps, err := flags.GetStringArray("jump")
		if err != nil {
			return in, fmt.Errorf("failed to read --jump flag: %w", err)
		}
		in.Jumps = jumps
	}
	return in, nil
}
