package cli

import (
	"github.com/spf13/cobra"

	"github.com/psomani16k/gittwo/internal/git"
)

// newCommitCmd creates the commit command
func newCommitCmd() *cobra.Command {
	var (
		message           string
		allowEmptyMessage bool
		authorName        string
		authorEmail       string
	)

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Record staged changes as a new commit",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := openRepository()
			if err != nil {
				return err
			}

			opts := git.CommitOptions{
				AllowEmptyMessage: allowEmptyMessage,
				AuthorName:        authorName,
				AuthorEmail:       authorEmail,
			}
			// The config file identity applies when no explicit flags are given
			if opts.AuthorName == "" {
				opts.AuthorName = ctx.Config.User.Name
			}
			if opts.AuthorEmail == "" {
				opts.AuthorEmail = ctx.Config.User.Email
			}

			hash, err := ctx.Repo.Commit(message, opts)
			if err != nil {
				return err
			}

			branch, berr := ctx.Repo.CurrentBranch()
			if berr != nil {
				branch = "HEAD"
			}
			ctx.Splog.Info("[%s %s] %s", branch, hash.String()[:7], firstLine(message))
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "Use the given commit message")
	cmd.Flags().BoolVar(&allowEmptyMessage, "allow-empty-message", false, "Create a commit with an empty message")
	cmd.Flags().StringVar(&authorName, "author-name", "", "Override the configured author name")
	cmd.Flags().StringVar(&authorEmail, "author-email", "", "Override the configured author email")

	return cmd
}

func firstLine(message string) string {
	for i, r := range message {
		if r == '\n' {
			return message[:i]
		}
	}
	return message
}
