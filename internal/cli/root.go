package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// workDir is the value of the persistent -C flag; commands resolve the
// repository relative to it
var workDir string

// quietMode is the value of the persistent -q flag; it suppresses console
// output and remote progress
var quietMode bool

// NewRootCmd creates the root cobra command
func NewRootCmd(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gittwo",
		Short: "Gittwo is a command line front end over the git object model",
		Long: `Gittwo is a command line front end over the git object model.

It maps the familiar git command surface (clone, init, add, commit, push,
remote management) onto a pure-Go repository engine.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVarP(&workDir, "directory", "C", ".", "Run as if gittwo was started in the given path")
	rootCmd.PersistentFlags().BoolVarP(&quietMode, "quiet", "q", false, "Suppress console output and remote progress")

	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newCloneCmd())
	rootCmd.AddCommand(newAddCmd())
	rootCmd.AddCommand(newCommitCmd())
	rootCmd.AddCommand(newPushCmd())
	rootCmd.AddCommand(newFetchCmd())
	rootCmd.AddCommand(newPullCmd())
	rootCmd.AddCommand(newCheckoutCmd())
	rootCmd.AddCommand(newRemoteCmd())

	return rootCmd
}
