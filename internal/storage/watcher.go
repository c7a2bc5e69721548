package storage

import (
	"context"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/thinkpad-online/notes/internal/notify"
)

// DefaultDebounce is used when Watch is given a non-positive debounce.
const DefaultDebounce = 50 * time.Millisecond

// Watcher publishes a remote notify.Event for every key another process
// changes in a Dir. Changes made through the same Dir are not reported.
type Watcher struct {
	dir      *Dir
	fsw      *fsnotify.Watcher
	bus      *notify.Bus
	debounce time.Duration

	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op

	closed atomic.Bool
	done   chan struct{}
}

// Watch starts watching the directory until ctx is done or Close is called.
func (d *Dir) Watch(ctx context.Context, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := fsw.Add(d.path); err != nil {
		fsw.Close()
		return nil, err
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w := &Watcher{
		dir:      d,
		fsw:      fsw,
		bus:      notify.NewBus(),
		debounce: debounce,
		pending:  make(map[string]fsnotify.Op),
		done:     make(chan struct{}),
	}

	go w.processEvents(ctx)

	logrus.WithFields(logrus.Fields{
		"dir":      d.path,
		"debounce": debounce,
	}).Debugln("State watcher started")

	return w, nil
}

func (w *Watcher) Subscribe(fn notify.Listener) notify.Subscription {
	return w.bus.Subscribe(fn)
}

// Close stops the watcher and waits for the event loop to exit.
func (w *Watcher) Close() error {
	if !w.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := w.fsw.Close()
	<-w.done
	return err
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if w.closed.CompareAndSwap(false, true) {
				w.fsw.Close()
			}
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logrus.WithError(err).Warnln("State watcher error")

		case <-ticker.C:
			w.flushPending()
		}
	}
}

func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	key := filepath.Base(event.Name)

	// Temp files from atomic writes start with a dot.
	if strings.HasPrefix(key, ".") || ValidateKey(key) != nil {
		return
	}

	if event.Op == fsnotify.Chmod {
		return
	}

	w.pendingMu.Lock()
	w.pending[key] |= event.Op
	w.pendingMu.Unlock()

	logrus.WithFields(logrus.Fields{
		"key": key,
		"op":  event.Op.String(),
	}).Debugln("State change detected")
}

func (w *Watcher) flushPending() {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	keys := make([]string, 0, len(w.pending))
	for key := range w.pending {
		keys = append(keys, key)
	}
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	slices.Sort(keys)

	for _, key := range keys {
		if w.closed.Load() {
			return
		}

		if w.dir.isOwnState(key) {
			continue
		}

		w.bus.Publish(notify.Event{Origin: notify.OriginRemote, Key: key})
	}
}
