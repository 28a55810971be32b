package cli

import (
	"github.com/spf13/cobra"

	"github.com/psomani16k/gittwo/internal/git"
)

// newPushCmd creates the push command
func newPushCmd() *cobra.Command {
	var (
		all         bool
		force       bool
		setUpstream bool
		creds       credentialFlags
	)

	cmd := &cobra.Command{
		Use:   "push [remote] [branch]",
		Short: "Update remote refs along with associated objects",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := openRepository()
			if err != nil {
				return err
			}

			opts := git.PushOptions{
				All:         all,
				Force:       force,
				SetUpstream: setUpstream,
				Credentials: credentialProvider(creds, ctx.Config),
				Progress:    progressWriter(ctx.Splog),
			}
			if len(args) > 0 {
				opts.RemoteName = args[0]
			}
			if len(args) > 1 {
				opts.Branch = args[1]
			}

			return ctx.Repo.Push(cmd.Context(), opts, ctx.Splog)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Push all local branches")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip the fast-forward check")
	cmd.Flags().BoolVarP(&setUpstream, "set-upstream", "u", false, "Record the pushed branches as tracking their remote counterparts")
	addCredentialFlags(cmd, &creds)

	return cmd
}
