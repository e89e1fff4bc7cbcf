package current

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/harun/sesh/pkg/sesherr"
	"github.com/harun/sesh/pkg/tag"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRecord(t *testing.T) (*Record, string) {
	root := t.TempDir()
	return NewRecord(root, zerolog.Nop()), root
}

func sampleSession() *Session {
	return &Session{
		Title:     "fix bug in login",
		Tags:      tag.NewSet(tag.MustNew("urgent"), tag.MustNew("bug")),
		StartTime: time.Date(2026, 10, 19, 8, 30, 15, 600_000_000, time.UTC),
	}
}

func TestRecord_ReadMissing(t *testing.T) {
	rec, _ := setupTestRecord(t)

	s, err := rec.Read()
	assert.NoError(t, err)
	assert.Nil(t, s)
}

func TestRecord_RoundTrip(t *testing.T) {
	rec, _ := setupTestRecord(t)
	in := sampleSession()

	require.NoError(t, rec.Write(in))

	out, err := rec.Read()
	require.NoError(t, err)
	require.NotNil(t, out)

	assert.Equal(t, in.Title, out.Title)
	assert.Equal(t, in.Tags.Names(), out.Tags.Names())
	// Sub-second precision is rounded away on persistence.
	assert.Equal(t, in.StartTime.Round(time.Second), out.StartTime)
	assert.WithinDuration(t, in.StartTime, out.StartTime, time.Second)
}

func TestRecord_RoundTripLocalTime(t *testing.T) {
	rec, _ := setupTestRecord(t)
	loc := time.FixedZone("UTC+7", 7*3600)
	in := &Session{Title: "x", StartTime: time.Date(2026, 1, 2, 3, 4, 5, 0, loc)}

	require.NoError(t, rec.Write(in))
	out, err := rec.Read()
	require.NoError(t, err)
	assert.True(t, in.StartTime.Equal(out.StartTime))
	assert.Equal(t, 0, out.Tags.Len())
}

func TestRecord_WriteIsHumanReadable(t *testing.T) {
	rec, root := setupTestRecord(t)
	require.NoError(t, rec.Write(sampleSession()))

	data, err := os.ReadFile(filepath.Join(root, FileName))
	require.NoError(t, err)

	want := `{
  "title": "fix bug in login",
  "tags": [
    "urgent",
    "bug"
  ],
  "start_time": "2026-10-19T08:30:16Z"
}
`
	assert.Equal(t, want, string(data))
}

func TestRecord_WriteOverwrites(t *testing.T) {
	rec, root := setupTestRecord(t)
	require.NoError(t, rec.Write(sampleSession()))

	second := &Session{Title: "second", StartTime: time.Now()}
	require.NoError(t, rec.Write(second))

	out, err := rec.Read()
	require.NoError(t, err)
	assert.Equal(t, "second", out.Title)

	// No temporary files are left behind.
	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRecord_WriteNilIsAbsent(t *testing.T) {
	rec, root := setupTestRecord(t)
	require.NoError(t, rec.Write(nil))

	_, err := os.Stat(filepath.Join(root, FileName))
	require.NoError(t, err)

	s, err := rec.Read()
	assert.NoError(t, err)
	assert.Nil(t, s)
}

func TestRecord_WriteFailure(t *testing.T) {
	root := t.TempDir()
	blocker := filepath.Join(root, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	rec := NewRecord(filepath.Join(blocker, "nested"), zerolog.Nop())
	err := rec.Write(sampleSession())
	require.Error(t, err)
	assert.True(t, errors.Is(err, sesherr.ErrStorageUnavailable))
}

func TestRecord_ReadPayloads(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		absent  bool
		corrupt bool
	}{
		{"empty file", "", true, false},
		{"whitespace", "  \n\t", true, false},
		{"null", "null", true, false},
		{"empty object", "{}", true, false},
		{"not json", "{title: nope", false, true},
		{"truncated", `{"title": "x", "tags": [`, false, true},
		{"array", `["title", "tags"]`, false, true},
		{"string", `"hello"`, false, true},
		{"number", `42`, false, true},
		{"missing title", `{"tags": [], "start_time": "2026-10-19T08:30:00Z"}`, false, true},
		{"missing tags", `{"title": "x", "start_time": "2026-10-19T08:30:00Z"}`, false, true},
		{"missing start", `{"title": "x", "tags": []}`, false, true},
		{"tags not array", `{"title": "x", "tags": "a,b", "start_time": "2026-10-19T08:30:00Z"}`, false, true},
		{"bad timestamp", `{"title": "x", "tags": [], "start_time": "yesterday"}`, false, true},
		{"invalid tag", `{"title": "x", "tags": ["Bad_Tag"], "start_time": "2026-10-19T08:30:00Z"}`, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, root := setupTestRecord(t)
			require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte(tt.payload), 0600))

			s, err := rec.Read()
			assert.Nil(t, s)
			if tt.corrupt {
				require.Error(t, err)
				assert.True(t, errors.Is(err, sesherr.ErrCorruptData), "got %v", err)
				assert.Equal(t, sesherr.ErrCorruptData, sesherr.KindOf(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRecord_ReadValidPayload(t *testing.T) {
	rec, root := setupTestRecord(t)
	payload := `{"title": "write docs", "tags": ["docs", "docs", "v2"], "start_time": "2026-10-19T08:30:00Z", "extra": true}`
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte(payload), 0600))

	s, err := rec.Read()
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "write docs", s.Title)
	assert.Equal(t, []string{"docs", "v2"}, s.Tags.Names())
	assert.Equal(t, time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC), s.StartTime)
}

func TestRecord_ReadUnreadable(t *testing.T) {
	rec, root := setupTestRecord(t)
	// A directory where the file should be cannot be read as a file.
	require.NoError(t, os.Mkdir(filepath.Join(root, FileName), 0700))

	s, err := rec.Read()
	assert.Nil(t, s)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sesherr.ErrStorageUnavailable))
	assert.False(t, errors.Is(err, sesherr.ErrCorruptData))
}

func TestRecord_Pop(t *testing.T) {
	rec, root := setupTestRecord(t)
	require.NoError(t, rec.Write(sampleSession()))

	s, err := rec.Pop()
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "fix bug in login", s.Title)

	_, err = os.Stat(filepath.Join(root, FileName))
	assert.True(t, os.IsNotExist(err))

	// Second pop finds nothing.
	s, err = rec.Pop()
	assert.NoError(t, err)
	assert.Nil(t, s)
}

func TestRecord_PopCorrupt(t *testing.T) {
	rec, root := setupTestRecord(t)
	path := filepath.Join(root, FileName)
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0600))

	s, err := rec.Pop()
	assert.Nil(t, s)
	assert.True(t, errors.Is(err, sesherr.ErrCorruptData))

	// The corrupt file is left for inspection.
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestRecord_PopRemoveFails(t *testing.T) {
	rec, root := setupTestRecord(t)
	path := filepath.Join(root, FileName)
	require.NoError(t, rec.Write(sampleSession()))
	rec.remove = func(string) error { return fs.ErrPermission }

	s, err := rec.Pop()
	require.Error(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "fix bug in login", s.Title)
	assert.Equal(t, sesherr.ErrStorageUnavailable, sesherr.KindOf(err))
	assert.True(t, errors.Is(err, fs.ErrPermission))

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestRecord_PopReadOnlyRoot(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions do not apply to root")
	}
	rec, root := setupTestRecord(t)
	require.NoError(t, rec.Write(sampleSession()))
	require.NoError(t, os.Chmod(root, 0500))
	t.Cleanup(func() { os.Chmod(root, 0700) })

	s, err := rec.Pop()
	require.NotNil(t, s)
	assert.True(t, errors.Is(err, sesherr.ErrStorageUnavailable), "got %v", err)

	_, err = os.Stat(filepath.Join(root, FileName))
	assert.NoError(t, err)
}

func TestRecord_Remove(t *testing.T) {
	rec, root := setupTestRecord(t)
	path := filepath.Join(root, FileName)
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0600))

	require.NoError(t, rec.Remove())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Removing again is fine.
	assert.NoError(t, rec.Remove())
}

func TestSession_Elapsed(t *testing.T) {
	start := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	s := &Session{StartTime: start}

	assert.Equal(t, 90*time.Minute, s.Elapsed(start.Add(90*time.Minute)))
	assert.Equal(t, time.Duration(0), s.Elapsed(start.Add(-time.Minute)))
}
