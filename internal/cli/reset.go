package cli

import (
	"fmt"

	"github.com/harun/sesh/pkg/session"
	"github.com/spf13/cobra"
)

func newResetCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset --yes",
		Short: "Delete the active Sesh and all history",
		Long: `Discard the active Sesh, if any, and delete every recorded Sesh and tag.
This cannot be undone, so --yes is required.`,
		Args: cobra.NoArgs,
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm deletion of all data")

	cmd.RunE = a.wrap(func(cmd *cobra.Command, args []string) error {
		if !yes {
			return fmt.Errorf("refusing to delete all data without --yes")
		}

		return a.withStore(cmd, func(store *session.Store) error {
			if err := store.Reset(cmd.Context()); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "All Sesh data has been reset")
			return nil
		})
	})

	return cmd
}
