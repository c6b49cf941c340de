package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/quizrag/internal/core/ports/driven"
	"github.com/custodia-labs/quizrag/internal/logger"
)

// Ensure Watcher implements the interface.
var _ driven.TranscriptWatcher = (*Watcher)(nil)

// Watcher emits source IDs of transcripts created or written in a directory.
// Editors often write a file several times; consumers rely on the ingestion
// tracker to ignore repeats.
type Watcher struct {
	dir string

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	closed  bool
}

// NewWatcher creates a watcher for dir. Nothing is watched until Watch is called.
func NewWatcher(dir string) *Watcher {
	return &Watcher{dir: dir}
}

// Watch starts watching the directory. The returned channel is closed when
// ctx is cancelled or the watcher is closed.
func (w *Watcher) Watch(ctx context.Context) (<-chan string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, errors.New("watcher is closed")
	}
	if w.watcher != nil {
		return nil, errors.New("watcher already started")
	}

	info, err := os.Stat(w.dir)
	if err != nil {
		return nil, fmt.Errorf("transcript directory error: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("transcript directory error: %s is not a directory", w.dir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(w.dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.watcher = fsw

	out := make(chan string)
	go w.loop(ctx, fsw, out)
	return out, nil
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher, out chan<- string) {
	defer close(out)
	defer fsw.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			id, ok := handleFsEvent(event)
			if !ok {
				continue
			}
			select {
			case out <- id:
			case <-ctx.Done():
				return
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("transcript watcher: %v", err)
		}
	}
}

// Close stops the watcher. Safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}

// handleFsEvent maps a filesystem event to a source ID.
// Only creates and writes of regular transcript files are reported.
func handleFsEvent(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", false
	}
	id, ok := SourceIDFromPath(event.Name)
	if !ok {
		return "", false
	}
	info, err := os.Stat(event.Name)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return id, true
}
