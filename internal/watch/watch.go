package watch

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"ocr-batch/internal/fileset"
	"ocr-batch/internal/image"
	"ocr-batch/internal/logger"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher feeds images dropped into a directory to a handler once their
// writes have settled. Events are debounced because most tools emit several
// Write events while a file is still being copied in.
type Watcher struct {
	dir      string
	debounce time.Duration
	handler  func(paths []string)
}

func New(dir string, handler func(paths []string)) *Watcher {
	return &Watcher{dir: dir, debounce: defaultDebounce, handler: handler}
}

// Run blocks watching the directory until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}
	logger.DebugLog("[watch]: watching %s (debounce %s)", w.dir, w.debounce)

	pending := map[string]time.Time{}
	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !wantsEvent(ev) {
				continue
			}
			logger.DebugLog("[watch]: pending %s (%s)", ev.Name, ev.Op)
			pending[ev.Name] = time.Now()

		case <-ticker.C:
			settled := collectSettled(pending, w.debounce)
			if len(settled) > 0 {
				w.handler(settled)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warnf("watcher error: %v", err)

		case <-ctx.Done():
			return nil
		}
	}
}

// wantsEvent keeps Create/Write events for recognizable images, ignoring the
// preprocessor's own temporary files.
func wantsEvent(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return false
	}
	return fileset.IsImageFile(ev.Name) && !image.IsProcessedFile(ev.Name)
}

// collectSettled removes and returns pending paths whose last event is older
// than the debounce window, sorted for deterministic processing order.
func collectSettled(pending map[string]time.Time, debounce time.Duration) []string {
	var settled []string
	now := time.Now()
	for path, last := range pending {
		if now.Sub(last) >= debounce {
			settled = append(settled, path)
			delete(pending, path)
		}
	}
	sort.Strings(settled)
	return settled
}
