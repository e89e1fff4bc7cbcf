package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CompletedSession is a committed ledger row with its tag names.
type CompletedSession struct {
	ID        int64
	UID       string
	Title     string
	Details   string
	StartTime time.Time
	EndTime   time.Time
	Tags      []string
}

// ShortUID returns the user-facing uid prefix.
func (s CompletedSession) ShortUID() string {
	return ShortUID(s.UID)
}

// Duration returns the session length.
func (s CompletedSession) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

// CommitParams describes a finished session to record.
type CommitParams struct {
	Title     string
	Details   string
	StartTime time.Time
	EndTime   time.Time
	Tags      []string
}

// Stats holds row counts for the ledger tables.
type Stats struct {
	Sessions     int
	Tags         int
	Associations int
}

// newUID generates a session uid: 32 lowercase hex characters.
func newUID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(id.String(), "-", ""), nil
}

// CommitSession records a finished session, its tags and their
// associations in one transaction and returns the new uid. On failure
// nothing is written.
func (l *Ledger) CommitSession(ctx context.Context, p CommitParams) (string, error) {
	const op = "ledger.commit_session"

	uid, err := newUID()
	if err != nil {
		return "", storageErr(op, err)
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return "", storageErr(op, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO session (uid, title, details, start_time, end_time)
		VALUES (?, ?, ?, ?, ?)`,
		uid, p.Title, p.Details, formatTime(p.StartTime), formatTime(p.EndTime))
	if err != nil {
		return "", storageErr(op, fmt.Errorf("insert session: %w", err))
	}
	sessionID, err := res.LastInsertId()
	if err != nil {
		return "", storageErr(op, err)
	}

	tagIDs, err := upsertTags(ctx, tx, p.Tags)
	if err != nil {
		return "", storageErr(op, err)
	}

	for _, name := range dedupe(p.Tags) {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO session_tag (session_id, tag_id) VALUES (?, ?)`,
			sessionID, tagIDs[name]); err != nil {
			return "", storageErr(op, fmt.Errorf("insert session tag %q: %w", name, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return "", storageErr(op, err)
	}

	l.logger.Info().
		Str("uid", uid).
		Int("tags", len(tagIDs)).
		Msg("Session committed")
	return uid, nil
}

// UpsertTags inserts the names that are not yet known and returns the id
// of every requested name.
func (l *Ledger) UpsertTags(ctx context.Context, names []string) (map[string]int64, error) {
	const op = "ledger.upsert_tags"

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageErr(op, err)
	}
	defer tx.Rollback()

	ids, err := upsertTags(ctx, tx, names)
	if err != nil {
		return nil, storageErr(op, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, storageErr(op, err)
	}
	return ids, nil
}

func upsertTags(ctx context.Context, tx *sql.Tx, names []string) (map[string]int64, error) {
	names = dedupe(names)
	ids := make(map[string]int64, len(names))
	if len(names) == 0 {
		return ids, nil
	}

	for _, name := range names {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO tag (name) VALUES (?)`, name); err != nil {
			return nil, fmt.Errorf("insert tag %q: %w", name, err)
		}
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(names)), ",")
	args := make([]any, len(names))
	for i, name := range names {
		args[i] = name
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT id, name FROM tag WHERE name IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("resolve tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		ids[name] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("resolve tags: %w", err)
	}

	for _, name := range names {
		if _, ok := ids[name]; !ok {
			panic(fmt.Sprintf("ledger: tag %q missing after insert", name))
		}
	}
	return ids, nil
}

// ResetAll deletes every session, tag and association in one transaction.
func (l *Ledger) ResetAll(ctx context.Context) error {
	const op = "ledger.reset_all"

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr(op, err)
	}
	defer tx.Rollback()

	for _, table := range []string{"session_tag", "session", "tag"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return storageErr(op, fmt.Errorf("clear %s: %w", table, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return storageErr(op, err)
	}

	l.logger.Warn().Msg("Ledger reset")
	return nil
}

// ListSessions returns completed sessions, newest first. A limit of zero
// or less returns all of them.
func (l *Ledger) ListSessions(ctx context.Context, limit int) ([]CompletedSession, error) {
	const op = "ledger.list_sessions"

	if limit <= 0 {
		limit = -1
	}

	rows, err := l.db.QueryContext(ctx, `
		SELECT s.id, s.uid, s.title, s.details, s.start_time, s.end_time,
		       COALESCE(GROUP_CONCAT(t.name, ','), '')
		FROM session s
		LEFT JOIN session_tag st ON st.session_id = s.id
		LEFT JOIN tag t ON t.id = st.tag_id
		GROUP BY s.id
		ORDER BY s.start_time DESC, s.id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, storageErr(op, err)
	}
	defer rows.Close()

	sessions := []CompletedSession{}
	for rows.Next() {
		var s CompletedSession
		var start, end, tags string
		if err := rows.Scan(&s.ID, &s.UID, &s.Title, &s.Details, &start, &end, &tags); err != nil {
			return nil, storageErr(op, err)
		}
		if s.StartTime, err = parseTime(start); err != nil {
			return nil, storageErr(op, fmt.Errorf("session %s start_time: %w", s.UID, err))
		}
		if s.EndTime, err = parseTime(end); err != nil {
			return nil, storageErr(op, fmt.Errorf("session %s end_time: %w", s.UID, err))
		}
		s.Tags = []string{}
		if tags != "" {
			s.Tags = strings.Split(tags, ",")
			sort.Strings(s.Tags)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(op, err)
	}
	return sessions, nil
}

// Stats returns the row counts of the ledger tables.
func (l *Ledger) Stats(ctx context.Context) (Stats, error) {
	const op = "ledger.stats"

	var st Stats
	err := l.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM session),
			(SELECT COUNT(*) FROM tag),
			(SELECT COUNT(*) FROM session_tag)`).
		Scan(&st.Sessions, &st.Tags, &st.Associations)
	if err != nil {
		return Stats{}, storageErr(op, err)
	}
	return st, nil
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
