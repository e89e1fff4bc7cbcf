package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harun/sesh/pkg/current"
	"github.com/harun/sesh/pkg/ledger"
	"github.com/harun/sesh/pkg/sesherr"
	"github.com/harun/sesh/pkg/tag"
	"github.com/rs/zerolog"
)

// Store tracks the active session and commits finished ones to the ledger.
// A Store owns its storage root for the lifetime of the process.
type Store struct {
	root    string
	current *current.Record
	ledger  *ledger.Ledger
	logger  zerolog.Logger
	now     func() time.Time
}

// Options configures Open.
type Options struct {
	Root        string           // storage root; defaults to ~/.sesh
	Logger      zerolog.Logger
	Migrations  fs.FS            // defaults to the embedded migration set
	BusyTimeout time.Duration    // SQLite busy timeout
	Now         func() time.Time // clock; defaults to time.Now
}

// DefaultRoot returns ~/.sesh.
func DefaultRoot() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".sesh"), nil
}

// Open prepares the storage root, opens the ledger and applies pending
// migrations.
func Open(ctx context.Context, opts Options) (*Store, error) {
	root := opts.Root
	if root == "" {
		var err error
		if root, err = DefaultRoot(); err != nil {
			return nil, sesherr.New(sesherr.ErrStorageUnavailable, "session.open", err)
		}
	}

	if err := os.MkdirAll(root, 0700); err != nil {
		return nil, sesherr.New(sesherr.ErrStorageUnavailable, "session.open", err)
	}

	led, err := ledger.Open(ledger.Config{
		Path:        filepath.Join(root, ledger.FileName),
		Logger:      opts.Logger,
		BusyTimeout: opts.BusyTimeout,
	})
	if err != nil {
		return nil, err
	}

	migrations := opts.Migrations
	if migrations == nil {
		migrations = ledger.DefaultMigrations()
	}
	if err := led.Migrate(ctx, migrations); err != nil {
		led.Close()
		return nil, err
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	s := &Store{
		root:    root,
		current: current.NewRecord(root, opts.Logger),
		ledger:  led,
		logger:  opts.Logger.With().Str("component", "session").Logger(),
		now:     now,
	}
	s.logger.Debug().Str("root", root).Msg("Session store opened")
	return s, nil
}

// Close releases the ledger.
func (s *Store) Close() error {
	return s.ledger.Close()
}

// Root returns the storage root directory.
func (s *Store) Root() string {
	return s.root
}

// Record returns the active-session record.
func (s *Store) Record() *current.Record {
	return s.current
}

// Start begins a session. The title is built from tokens; its inline tags
// are merged with the explicit ones. Fails with ErrSessionAlreadyActive
// if a session is in progress.
func (s *Store) Start(ctx context.Context, explicit []tag.Tag, tokens []Token) (*current.Session, error) {
	const op = "session.start"

	active, err := s.current.Read()
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, sesherr.Detailed(sesherr.ErrSessionAlreadyActive, op,
			fmt.Sprintf("%q started at %s", active.Title, current.FormatTime(active.StartTime)))
	}

	title, inline := BuildTitle(tokens)
	sess := &current.Session{
		Title:     title,
		Tags:      tag.NewSet(explicit...).Union(tag.NewSet(inline...)),
		StartTime: s.now().Round(time.Second),
	}

	if err := s.current.Write(sess); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("title", sess.Title).
		Strs("tags", sess.Tags.Names()).
		Msg("Session started")
	return sess, nil
}

// Stop ends the active session, adds extra tags and commits it to the
// ledger. It returns the short uid of the committed session.
//
// The record is removed before the ledger write. If the write fails the
// session is no longer active and the returned error carries its data.
func (s *Store) Stop(ctx context.Context, extra []tag.Tag, details string) (string, error) {
	const op = "session.stop"

	sess, err := s.current.Pop()
	if err != nil {
		if sess != nil {
			// File still on disk: the session stays active and nothing is committed.
			s.logger.Error().Err(err).Str("title", sess.Title).Msg("Failed to remove current session")
		}
		return "", err
	}
	if sess == nil {
		return "", sesherr.New(sesherr.ErrNoActiveSession, op, nil)
	}

	tags := sess.Tags.Union(tag.NewSet(extra...))
	end := s.now()
	if end.Before(sess.StartTime) {
		end = sess.StartTime
	}

	uid, err := s.ledger.CommitSession(ctx, ledger.CommitParams{
		Title:     sess.Title,
		Details:   details,
		StartTime: sess.StartTime,
		EndTime:   end,
		Tags:      tags.Names(),
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("title", sess.Title).
			Strs("tags", tags.Names()).
			Str("start_time", current.FormatTime(sess.StartTime)).
			Str("end_time", current.FormatTime(end)).
			Str("details", details).
			Msg("Session lost: ledger commit failed after the record was removed")
		detail := fmt.Sprintf("session %q [%s] started %s was not recorded",
			sess.Title, strings.Join(tags.Names(), ", "), current.FormatTime(sess.StartTime))
		return "", &sesherr.Error{
			Kind:   sesherr.ErrStorageUnavailable,
			Op:     op,
			Detail: detail,
			Err:    err,
		}
	}

	short := ledger.ShortUID(uid)
	s.logger.Info().
		Str("uid", short).
		Dur("duration", end.Sub(sess.StartTime)).
		Msg("Session stopped")
	return short, nil
}

// Status returns the active session, or nil when idle. Unreadable or
// corrupt records are reported as errors, not as idle.
func (s *Store) Status(ctx context.Context) (*current.Session, error) {
	return s.current.Read()
}

// Reset discards the active session, if any, and deletes every completed
// session and tag. There is no undo.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.current.Pop(); err != nil {
		if !errors.Is(err, sesherr.ErrCorruptData) {
			return err
		}
		s.logger.Warn().Err(err).Msg("Discarding corrupt current session")
		if err := s.current.Remove(); err != nil {
			return err
		}
	}

	if err := s.ledger.ResetAll(ctx); err != nil {
		return err
	}

	s.logger.Warn().Str("root", s.root).Msg("All session data reset")
	return nil
}

// History returns completed sessions, newest first.
func (s *Store) History(ctx context.Context, limit int) ([]ledger.CompletedSession, error) {
	return s.ledger.ListSessions(ctx, limit)
}

// Stats returns ledger row counts.
func (s *Store) Stats(ctx context.Context) (ledger.Stats, error) {
	return s.ledger.Stats(ctx)
}
