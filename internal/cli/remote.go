package cli

import (
	"github.com/spf13/cobra"

	"github.com/psomani16k/gittwo/internal/git"
)

// newRemoteCmd creates the remote command and its subcommands
func newRemoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Manage the set of tracked remote repositories",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := openRepository()
			if err != nil {
				return err
			}

			remotes, err := ctx.Repo.Remotes()
			if err != nil {
				return err
			}
			for _, remote := range remotes {
				ctx.Splog.Info("%s\t%s", remote.Name, remote.URL)
			}
			return nil
		},
	}

	cmd.AddCommand(newRemoteAddCmd())
	cmd.AddCommand(newRemoteRemoveCmd())
	cmd.AddCommand(newRemoteSetHeadCmd())

	return cmd
}

// newRemoteAddCmd creates the remote add subcommand
func newRemoteAddCmd() *cobra.Command {
	var track []string

	cmd := &cobra.Command{
		Use:   "add <name> <url>",
		Short: "Add a remote named <name> for the repository at <url>",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := openRepository()
			if err != nil {
				return err
			}

			return ctx.Repo.AddRemote(args[0], args[1], git.AddRemoteOptions{
				Track: track,
			})
		},
	}

	cmd.Flags().StringArrayVarP(&track, "track", "t", nil, "Track only the given branches instead of all heads")

	return cmd
}

// newRemoteRemoveCmd creates the remote remove subcommand
func newRemoteRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <name>",
		Aliases: []string{"rm"},
		Short:   "Remove a remote and its tracking associations",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := openRepository()
			if err != nil {
				return err
			}

			return ctx.Repo.RemoveRemote(args[0])
		},
	}
}

// newRemoteSetHeadCmd creates the remote set-head subcommand
func newRemoteSetHeadCmd() *cobra.Command {
	var deleteHead bool

	cmd := &cobra.Command{
		Use:   "set-head <name> [branch]",
		Short: "Set or delete the default branch pointer for a remote",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := openRepository()
			if err != nil {
				return err
			}

			branch := ""
			if len(args) > 1 {
				branch = args[1]
			}

			return ctx.Repo.SetRemoteHead(args[0], branch, git.SetHeadOptions{
				Delete: deleteHead,
			})
		},
	}

	cmd.Flags().BoolVarP(&deleteHead, "delete", "d", false, "Delete the remote's default branch pointer")

	return cmd
}
