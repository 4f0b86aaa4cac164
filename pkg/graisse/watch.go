package graisse

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces the burst of events an editor save produces into
// a single callback.
const watchDebounce = 250 * time.Millisecond

// Watch re-runs fn after every settled change to a fragment file in the
// working directory, until ctx is cancelled. fn runs once up front so the
// caller sees the initial state. Callback errors are reported to fn's own
// output path by the caller; watcher errors end the watch.
func (w *Workspace) Watch(ctx context.Context, fn func(ctx context.Context) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.Config.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.Config.Dir, err)
	}

	if err := fn(ctx); err != nil {
		return err
	}

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.log.Debug("change detected", "file", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
				fire = timer.C
			} else {
				if !timer.Stop() {
					<-timer.C
				}
				timer.Reset(watchDebounce)
			}

		case <-fire:
			timer = nil
			fire = nil
			if err := fn(ctx); err != nil {
				return err
			}

		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher: %w", werr)
		}
	}
}

// relevant filters watcher noise down to fragment file changes. The store
// file and its journal live next to the dotfile, so touching them must not
// retrigger the callback.
func (w *Workspace) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	return strings.HasSuffix(event.Name, w.Config.Extension)
}
