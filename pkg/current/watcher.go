package current

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/harun/sesh/pkg/sesherr"
	"github.com/rs/zerolog"
)

// DefaultDebounce is the quiet period before a change is reported.
const DefaultDebounce = 200 * time.Millisecond

// Watcher reports changes to the current-session file.
type Watcher struct {
	watcher  *fsnotify.Watcher
	logger   zerolog.Logger
	target   string
	onChange func()
	debounce time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// NewWatcher watches the directory holding r's file. The directory is
// watched rather than the file so that atomic renames and deletions are
// seen.
func NewWatcher(r *Record, logger zerolog.Logger, onChange func()) (*Watcher, error) {
	const op = "current.watch"

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, sesherr.New(sesherr.ErrStorageUnavailable, op, err)
	}
	if err := fw.Add(filepath.Dir(r.path)); err != nil {
		fw.Close()
		return nil, sesherr.New(sesherr.ErrStorageUnavailable, op, err)
	}

	return &Watcher{
		watcher:  fw,
		logger:   logger,
		target:   filepath.Clean(r.path),
		onChange: onChange,
		debounce: DefaultDebounce,
	}, nil
}

// Run processes events until ctx is cancelled or the watcher fails.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.stopTimer()
	defer w.watcher.Close()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				w.logger.Debug().
					Str("file", filepath.Base(event.Name)).
					Str("op", event.Op.String()).
					Msg("Current session change detected")
				w.schedule()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error().Err(err).Msg("Current session watcher error")
			return err

		case <-ctx.Done():
			return nil
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.onChange)
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
}

// Watch is a convenience wrapper that builds a Watcher and runs it.
func (r *Record) Watch(ctx context.Context, onChange func()) error {
	w, err := NewWatcher(r, r.logger, onChange)
	if err != nil {
		return err
	}
	return w.Run(ctx)
}
