package cli

import (
	"fmt"
	"strings"

	"github.com/harun/sesh/pkg/session"
	"github.com/harun/sesh/pkg/tag"
	"github.com/spf13/cobra"
)

func newStartCmd(a *app) *cobra.Command {
	var tags string

	cmd := &cobra.Command{
		Use:   "start [--tag a,b] WORDS...",
		Short: "Start a new Sesh",
		Long: `Start a new Sesh with the given title. Only one Sesh can be active.

Words written as +name become tags and stay in the title:

  sesh start --tag urgent fix +bug in login`,
		Args: cobra.MinimumNArgs(1),
	}
	cmd.Flags().StringVarP(&tags, "tag", "t", "", "comma-separated tags")

	cmd.RunE = a.wrap(func(cmd *cobra.Command, args []string) error {
		explicit, err := tag.ParseList(tags)
		if err != nil {
			return err
		}
		tokens, err := session.ParseTokens(args)
		if err != nil {
			return err
		}
		if title, _ := session.BuildTitle(tokens); title == "" {
			return fmt.Errorf("a title is required")
		}

		return a.withStore(cmd, func(store *session.Store) error {
			started, err := store.Start(cmd.Context(), explicit, tokens)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Sesh started: %s\n", started.Title)
			if started.Tags.Len() > 0 {
				fmt.Fprintf(out, "Tags: %s\n", strings.Join(started.Tags.Names(), ", "))
			}
			return nil
		})
	})

	return cmd
}
