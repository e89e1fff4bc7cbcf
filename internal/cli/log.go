package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/harun/sesh/pkg/session"
	"github.com/spf13/cobra"
)

const historyTimeLayout = "2006-01-02 15:04"

func newLogCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "List completed Seshes, newest first",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of sessions to show (0 for all)")

	cmd.RunE = a.wrap(func(cmd *cobra.Command, args []string) error {
		if limit < 0 {
			return fmt.Errorf("--limit must not be negative")
		}

		return a.withStore(cmd, func(store *session.Store) error {
			sessions, err := store.History(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(sessions) == 0 {
				fmt.Fprintln(out, "No completed Sesh yet")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "REF\tSTARTED\tDURATION\tTITLE\tTAGS")
			for _, s := range sessions {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					s.ShortUID(),
					s.StartTime.Local().Format(historyTimeLayout),
					formatDuration(s.Duration()),
					s.Title,
					strings.Join(s.Tags, ", "),
				)
			}
			return tw.Flush()
		})
	})

	return cmd
}
