package current

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/harun/sesh/pkg/sesherr"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

// FileName is the sidecar file inside the storage root.
const FileName = "current.json"

// Record persists zero or one active session in a single JSON file.
type Record struct {
	path   string
	logger zerolog.Logger
	remove func(string) error
}

// NewRecord binds a record to <root>/current.json.
func NewRecord(root string, logger zerolog.Logger) *Record {
	return &Record{
		path:   filepath.Join(root, FileName),
		logger: logger.With().Str("component", "current").Logger(),
		remove: os.Remove,
	}
}

// Path returns the backing file path.
func (r *Record) Path() string {
	return r.path
}

// Read returns the active session, or nil if there is none.
func (r *Record) Read() (*Session, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, sesherr.New(sesherr.ErrStorageUnavailable, "current.read", err)
	}

	s, err := Decode(data)
	if err != nil {
		r.logger.Warn().Err(err).Str("path", r.path).Msg("Current session file is corrupt")
		return nil, err
	}
	return s, nil
}

// Write replaces the record with s. The file is written to a temporary
// sibling and renamed into place, so readers see the old or the new
// payload and never a partial one.
func (r *Record) Write(s *Session) error {
	const op = "current.write"

	data, err := Encode(s)
	if err != nil {
		return sesherr.New(sesherr.ErrStorageUnavailable, op, err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return sesherr.New(sesherr.ErrStorageUnavailable, op, err)
	}

	suffix, err := gonanoid.Generate("abcdefghijklmnopqrstuvwxyz0123456789", 10)
	if err != nil {
		return sesherr.New(sesherr.ErrStorageUnavailable, op, err)
	}
	tempPath := filepath.Join(dir, "."+FileName+"."+suffix+".tmp")

	if err := writeFileSync(tempPath, data); err != nil {
		os.Remove(tempPath)
		return sesherr.New(sesherr.ErrStorageUnavailable, op, err)
	}

	if err := os.Rename(tempPath, r.path); err != nil {
		os.Remove(tempPath)
		return sesherr.New(sesherr.ErrStorageUnavailable, op, err)
	}

	r.logger.Debug().Str("path", r.path).Int("bytes", len(data)).Msg("Current session written")
	return nil
}

// Pop reads the record and, if a session was present, deletes the file.
// When deletion fails the session is returned along with the error; the
// caller holds the data even though the file is still on disk.
func (r *Record) Pop() (*Session, error) {
	s, err := r.Read()
	if err != nil || s == nil {
		return nil, err
	}

	if err := r.remove(r.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return s, sesherr.New(sesherr.ErrStorageUnavailable, "current.pop", err)
	}

	r.logger.Debug().Str("path", r.path).Msg("Current session removed")
	return s, nil
}

// Remove deletes the backing file without decoding it. A missing file is
// not an error.
func (r *Record) Remove() error {
	if err := r.remove(r.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return sesherr.New(sesherr.ErrStorageUnavailable, "current.remove", err)
	}
	return nil
}

func writeFileSync(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
