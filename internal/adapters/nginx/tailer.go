package nginx

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/zerr"

	"github.com/cordata/heroku-buildpack-ember-cli/internal/core/domain"
)

// Tailer follows an append-only log file and copies new content to a
// writer. nginx writes its logs to files, but on a dyno everything
// must reach stdout for the log router to pick it up.
type Tailer struct {
	path    string
	out     io.Writer
	watcher *fsnotify.Watcher
	offset  int64
}

// NewTailer creates a Tailer for path. The file does not need to exist
// yet; its directory does.
func NewTailer(path string, out io.Writer) (*Tailer, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLogFollowFailed, err)
	}

	t := &Tailer{
		path:    path,
		out:     out,
		watcher: watcher,
	}

	// Watch the parent so creation of the file itself is seen.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, zerr.With(fmt.Errorf("%w: %w", domain.ErrLogFollowFailed, err), "dir", dir)
	}

	return t, nil
}

// Run follows the file until ctx is cancelled.
func (t *Tailer) Run(ctx context.Context) error {
	defer func() {
		_ = t.watcher.Close()
	}()

	// Drain anything already present.
	t.drain()

	for {
		select {
		case <-ctx.Done():
			t.drain()
			return nil
		case event, ok := <-t.watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != t.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				t.drain()
			}
		case err, ok := <-t.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("%w: %w", domain.ErrLogFollowFailed, err)
		}
	}
}

// drain copies everything past the current offset to the output.
func (t *Tailer) drain() {
	f, err := os.Open(t.path) //nolint:gosec // log path is chosen by the buildpack
	if err != nil {
		return
	}
	defer func() {
		_ = f.Close()
	}()

	if _, err := f.Seek(t.offset, io.SeekStart); err != nil {
		return
	}

	n, err := io.Copy(t.out, f)
	if err != nil {
		return
	}
	t.offset += n
}
