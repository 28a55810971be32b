package cli

import (
	"github.com/spf13/cobra"

	"github.com/psomani16k/gittwo/internal/git"
)

// newPullCmd creates the pull command
func newPullCmd() *cobra.Command {
	var creds credentialFlags

	cmd := &cobra.Command{
		Use:   "pull [remote]",
		Short: "Fetch from a remote and fast-forward the current branch",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := openRepository()
			if err != nil {
				return err
			}

			opts := git.PullOptions{
				Credentials: credentialProvider(creds, ctx.Config),
				Progress:    progressWriter(ctx.Splog),
			}
			if len(args) > 0 {
				opts.RemoteName = args[0]
			}

			return ctx.Repo.Pull(cmd.Context(), opts, ctx.Splog)
		},
	}

	addCredentialFlags(cmd, &creds)

	return cmd
}
