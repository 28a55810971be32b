package cli

import (
	"github.com/spf13/cobra"

	"github.com/psomani16k/gittwo/internal/git"
)

// newInitCmd creates the init command
func newInitCmd() *cobra.Command {
	var (
		bare           bool
		initialBranch  string
		separateGitDir string
	)

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create an empty repository",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := workDir
			if len(args) > 0 {
				dir = args[0]
			}

			repo, err := git.Init(dir, git.InitOptions{
				Bare:           bare,
				InitialBranch:  initialBranch,
				SeparateGitDir: separateGitDir,
			})
			if err != nil {
				return err
			}

			newSplog().Info("Initialized empty repository in %s", repo.Root())
			return nil
		},
	}

	cmd.Flags().BoolVar(&bare, "bare", false, "Create a bare repository without a working tree")
	cmd.Flags().StringVarP(&initialBranch, "initial-branch", "b", "", "Use the given name for the initial branch")
	cmd.Flags().StringVar(&separateGitDir, "separate-git-dir", "", "Create the repository database at the given path instead of ./.git")

	return cmd
}
