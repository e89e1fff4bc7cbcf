package cli

import (
	"fmt"

	"github.com/harun/sesh/pkg/session"
	"github.com/harun/sesh/pkg/tag"
	"github.com/spf13/cobra"
)

func newStopCmd(a *app) *cobra.Command {
	var (
		tags    string
		details string
	)

	cmd := &cobra.Command{
		Use:   "stop [--tag a,b] [--details text]",
		Short: "Stop the active Sesh",
		Long: `Stop the active Sesh and record it in the history.
Extra tags are added to the ones given at start.`,
		Args: cobra.NoArgs,
	}
	cmd.Flags().StringVarP(&tags, "tag", "t", "", "comma-separated tags to add")
	cmd.Flags().StringVarP(&details, "details", "d", "", "completion note")

	cmd.RunE = a.wrap(func(cmd *cobra.Command, args []string) error {
		extra, err := tag.ParseList(tags)
		if err != nil {
			return err
		}

		return a.withStore(cmd, func(store *session.Store) error {
			ref, err := store.Stop(cmd.Context(), extra, details)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Sesh stopped successfully (%s)\n", ref)
			return nil
		})
	})

	return cmd
}
