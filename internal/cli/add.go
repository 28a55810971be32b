package cli

import (
	"github.com/spf13/cobra"

	"github.com/psomani16k/gittwo/internal/git"
)

// newAddCmd creates the add command
func newAddCmd() *cobra.Command {
	var (
		update bool
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "add <pathspec>...",
		Short: "Add file contents to the index",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := openRepository()
			if err != nil {
				return err
			}

			changes, err := ctx.Repo.Stage(args, git.StageOptions{
				Update: update,
				DryRun: dryRun,
			})
			if err != nil {
				return err
			}

			if dryRun {
				for _, change := range changes {
					ctx.Splog.Info("%s %s", change.State, change.Path)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&update, "update", "u", false, "Stage updates to tracked files only, never new files")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would be staged without changing the index")

	return cmd
}
