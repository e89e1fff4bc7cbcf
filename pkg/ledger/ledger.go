package ledger

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/harun/sesh/pkg/sesherr"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// FileName is the database file inside the storage root.
const FileName = "store.db"

// ShortUIDLength is the number of uid characters shown to users.
const ShortUIDLength = 6

// Ledger stores completed sessions and the tag vocabulary in SQLite.
type Ledger struct {
	db     *sql.DB
	logger zerolog.Logger
}

// Config holds ledger configuration
type Config struct {
	Path        string
	Logger      zerolog.Logger
	BusyTimeout time.Duration // defaults to 5s
}

// Open opens (creating if needed) the database at cfg.Path. The schema is
// not touched; call Migrate before use.
func Open(cfg Config) (*Ledger, error) {
	const op = "ledger.open"

	if cfg.Path == "" {
		return nil, sesherr.New(sesherr.ErrStorageUnavailable, op, errors.New("database path is required"))
	}
	busy := cfg.BusyTimeout
	if busy <= 0 {
		busy = 5 * time.Second
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=%d",
		cfg.Path, busy.Milliseconds())
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, sesherr.New(sesherr.ErrStorageUnavailable, op, err)
	}

	// One process, one writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, sesherr.New(sesherr.ErrStorageUnavailable, op, err)
	}

	l := &Ledger{
		db:     db,
		logger: cfg.Logger.With().Str("component", "ledger").Logger(),
	}
	l.logger.Debug().Str("path", cfg.Path).Msg("Ledger opened")
	return l, nil
}

// Close closes the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// ShortUID returns the user-facing prefix of a session uid.
func ShortUID(uid string) string {
	if len(uid) <= ShortUIDLength {
		return uid
	}
	return uid[:ShortUIDLength]
}

// formatTime formats t for storage. All stored instants are UTC, whole
// seconds, so lexical and chronological order agree.
func formatTime(t time.Time) string {
	return t.Round(time.Second).UTC().Format(time.RFC3339)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

func storageErr(op string, err error) error {
	return sesherr.New(sesherr.ErrStorageUnavailable, op, err)
}
