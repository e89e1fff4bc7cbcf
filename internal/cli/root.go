package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/harun/sesh/internal/config"
	"github.com/harun/sesh/internal/logger"
	"github.com/harun/sesh/internal/metrics"
	"github.com/harun/sesh/pkg/session"
	"github.com/spf13/cobra"
)

const version = "0.2.0"

// app carries per-invocation state shared by the subcommands.
type app struct {
	cfgFile  string
	logLevel string
	root     string
	verbose  bool

	cfg *config.Config
	log *logger.Logger
	now func() time.Time
}

// NewRootCmd builds the sesh command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(time.Now)
}

func newRootCmd(now func() time.Time) *cobra.Command {
	a := &app{now: now}

	cmd := &cobra.Command{
		Use:   "sesh",
		Short: "Sesh - track focused work sessions",
		Long: `Sesh tracks one work session at a time. Start a session with a title
and tags, stop it with a note, and review the history of completed sessions.

Words written as +tag in the title are also added as tags.`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	cmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.sesh/sesh.json)")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&a.root, "root", "", "storage directory (overrides data_dir and SESH_DATA_DIR)")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "also write logs to stderr")

	cmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}}
`)

	cmd.AddCommand(
		newStartCmd(a),
		newStopCmd(a),
		newStatusCmd(a),
		newResetCmd(a),
		newLogCmd(a),
	)

	return cmd
}

// Execute runs the sesh command tree. Errors are reported on stderr.
// This is called by main.main().
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := NewRootCmd()
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", userMessage(err))
	}
	return err
}

// GetRootCmd returns a fresh root command for testing
func GetRootCmd() *cobra.Command {
	return NewRootCmd()
}

// GetVersion returns the current version
func GetVersion() string {
	return version
}

// setup loads configuration and starts logging.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}

	if a.root != "" {
		root, err := config.ExpandHome(a.root)
		if err != nil {
			return err
		}
		cfg.DataDir = root
	}
	if cmd.Flags().Changed("log-level") {
		if err := config.NewValidator().ValidateLogLevel(a.logLevel); err != nil {
			return err
		}
		cfg.Logging.Level = a.logLevel
	}
	if a.verbose {
		cfg.Logging.Console = true
	}

	var stderr io.Writer
	if w := cmd.ErrOrStderr(); w != os.Stderr {
		stderr = w
	}

	log, err := logger.New(logger.Config{
		Level:    cfg.Logging.Level,
		File:     cfg.LogFile(),
		Console:  cfg.Logging.Console,
		Pretty:   cfg.Logging.Pretty,
		MaxSize:  cfg.Logging.MaxSize,
		MaxAge:   cfg.Logging.MaxAge,
		Compress: cfg.Logging.Compress,
		Stderr:   stderr,
	})
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.log = log
	log.Debug().
		Str("command", cmd.Name()).
		Str("data_dir", cfg.DataDir).
		Msg("Command starting")
	return nil
}

// wrap runs fn and closes the logger afterwards, whether or not fn fails.
func (a *app) wrap(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		defer a.teardown()
		return fn(cmd, args)
	}
}

func (a *app) teardown() error {
	if a.log == nil {
		return nil
	}
	err := a.log.Close()
	a.log = nil
	return err
}

// openStore opens the session store for one command.
func (a *app) openStore(ctx context.Context) (*session.Store, error) {
	opts := session.Options{
		Root:        a.cfg.DataDir,
		Logger:      a.log.Zerolog(),
		BusyTimeout: a.cfg.Ledger.BusyTimeout(),
		Now:         a.now,
	}
	if dir := a.cfg.Ledger.MigrationsDir; dir != "" {
		opts.Migrations = os.DirFS(dir)
	}
	return session.Open(ctx, opts)
}

// withStore opens the store, runs fn and exports metrics if configured.
func (a *app) withStore(cmd *cobra.Command, fn func(*session.Store) error) error {
	store, err := a.openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	err = fn(store)
	a.exportMetrics(context.WithoutCancel(cmd.Context()), cmd.Name(), store, err)
	return err
}

func (a *app) exportMetrics(ctx context.Context, command string, store *session.Store, cmdErr error) {
	path := a.cfg.Metrics.Textfile
	if path == "" {
		return
	}
	log := a.log.Component("metrics")

	stats, err := store.Stats(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Skipping metrics export")
		return
	}
	active, err := store.Status(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Skipping metrics export")
		return
	}

	now := a.now()
	snap := metrics.Snapshot{
		Sessions:     stats.Sessions,
		Tags:         stats.Tags,
		Associations: stats.Associations,
	}
	if active != nil {
		snap.Active = true
		snap.Elapsed = active.Elapsed(now)
	}

	m := metrics.NewMetrics()
	m.Observe(snap)
	m.RecordCommand(command, cmdErr, now)
	if err := m.WriteTextfile(path); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Metrics export failed")
		return
	}
	log.Debug().Str("path", path).Msg("Metrics exported")
}
