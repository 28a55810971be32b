package cli

import (
	"github.com/spf13/cobra"

	"github.com/psomani16k/gittwo/internal/git"
)

// newFetchCmd creates the fetch command
func newFetchCmd() *cobra.Command {
	var (
		depth int
		creds credentialFlags
	)

	cmd := &cobra.Command{
		Use:   "fetch [remote]",
		Short: "Download objects and refs from a remote",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := openRepository()
			if err != nil {
				return err
			}

			opts := git.FetchOptions{
				Depth:       depth,
				Credentials: credentialProvider(creds, ctx.Config),
				Progress:    progressWriter(ctx.Splog),
			}
			if len(args) > 0 {
				opts.RemoteName = args[0]
			}

			return ctx.Repo.Fetch(cmd.Context(), opts, ctx.Splog)
		},
	}

	cmd.Flags().IntVar(&depth, "depth", 0, "Limit fetching to the given number of commits from each remote tip")
	addCredentialFlags(cmd, &creds)

	return cmd
}
