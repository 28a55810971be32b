package cli

import (
	"github.com/spf13/cobra"
)

// newCheckoutCmd creates the checkout command
func newCheckoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkout <spec>",
		Short: "Switch the working tree to a branch, tag or commit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := openRepository()
			if err != nil {
				return err
			}

			if err := ctx.Repo.Checkout(args[0]); err != nil {
				return err
			}

			ctx.Splog.Info("Switched to '%s'", args[0])
			return nil
		},
	}

	return cmd
}
