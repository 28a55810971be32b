package cli

import (
	"github.com/spf13/cobra"

	"github.com/psomani16k/gittwo/internal/git"
)

// newCloneCmd creates the clone command
func newCloneCmd() *cobra.Command {
	var (
		branch       string
		depth        int
		singleBranch bool
		bare         bool
		recursive    bool
		creds        credentialFlags
	)

	cmd := &cobra.Command{
		Use:   "clone <url> [directory]",
		Short: "Clone a repository into a new directory",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			splog := newSplog()
			opts := git.CloneOptions{
				URL:          args[0],
				ParentDir:    workDir,
				Branch:       branch,
				Depth:        depth,
				SingleBranch: singleBranch,
				Bare:         bare,
				Recursive:    recursive,
				Credentials:  credentialProvider(creds, loadConfig()),
				Progress:     progressWriter(splog),
			}
			if len(args) > 1 {
				opts.DirName = args[1]
			}

			splog.Info("Cloning into '%s'...", opts.TargetDir())

			repo, err := git.Clone(cmd.Context(), opts, splog)
			if err != nil {
				return err
			}

			splog.Debug("clone complete at %s", repo.Root())
			return nil
		},
	}

	cmd.Flags().StringVarP(&branch, "branch", "b", "", "Checkout the given branch instead of the remote's default")
	cmd.Flags().IntVar(&depth, "depth", 0, "Create a shallow clone truncated to the given number of commits")
	cmd.Flags().BoolVar(&singleBranch, "single-branch", false, "Clone only the history leading to the tip of one branch")
	cmd.Flags().BoolVar(&bare, "bare", false, "Create a bare repository")
	cmd.Flags().BoolVar(&recursive, "recursive", false, "Clone submodules recursively after the primary transfer")
	addCredentialFlags(cmd, &creds)

	return cmd
}
