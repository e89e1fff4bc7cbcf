package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/harun/sesh/pkg/current"
	"github.com/harun/sesh/pkg/session"
	"github.com/spf13/cobra"
)

const startTimeLayout = "Monday, 02 January, 15:04:05"

func newStatusCmd(a *app) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the active Sesh",
		Long: `Show the title, tags, start time and elapsed time of the active Sesh.
With --watch, the status is printed again whenever it changes.`,
		Args: cobra.NoArgs,
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep running and reprint on changes")

	cmd.RunE = a.wrap(func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		return a.withStore(cmd, func(store *session.Store) error {
			out := cmd.OutOrStdout()
			if !watch {
				return a.printStatus(ctx, out, store)
			}

			var (
				mu     sync.Mutex
				closed bool
			)
			render := func() {
				mu.Lock()
				defer mu.Unlock()
				if closed {
					return
				}
				fmt.Fprintln(out, "---")
				if err := a.printStatus(ctx, out, store); err != nil {
					fmt.Fprintf(out, "Error: %s\n", userMessage(err))
				}
			}

			render()
			err := store.Record().Watch(ctx, render)

			mu.Lock()
			closed = true
			mu.Unlock()
			return err
		})
	})

	return cmd
}

func (a *app) printStatus(ctx context.Context, out io.Writer, store *session.Store) error {
	sess, err := store.Status(ctx)
	if err != nil {
		return err
	}
	writeStatus(out, sess, a.now())
	return nil
}

func writeStatus(out io.Writer, sess *current.Session, now time.Time) {
	if sess == nil {
		fmt.Fprintln(out, "No active Sesh")
		return
	}
	fmt.Fprintf(out, "Active Sesh: %s\n", sess.Title)
	fmt.Fprintf(out, "Tags: %s\n", strings.Join(sess.Tags.Names(), ", "))
	fmt.Fprintf(out, "Start time: %s\n", sess.StartTime.Local().Format(startTimeLayout))
	fmt.Fprintf(out, "Elapsed time: %s\n", formatDuration(sess.Elapsed(now)))
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
