package kb

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nanoform/nanoform/errors"
	"github.com/nanoform/nanoform/logger"
	"github.com/nanoform/nanoform/rdr"
)

// ReloadCallback is called after the watcher publishes a rebuilt snapshot.
type ReloadCallback func(*rdr.Snapshot)

// Watcher watches an external rule table and atomically republishes a fresh
// snapshot when the table changes. Readers call Snapshot per evaluation and
// always see either the previous or the fully rebuilt tree, never a partial
// one; a table edit that fails assembly keeps the last good snapshot live.
type Watcher struct {
	tablePath      string
	watcher        *fsnotify.Watcher
	current        atomic.Pointer[rdr.Snapshot]
	callbacks      []ReloadCallback
	mu             sync.Mutex
	debounceTimer  *time.Timer
	debouncePeriod time.Duration
}

// NewWatcher builds the table once and starts watching its path. The initial
// build must succeed; subsequent rebuild failures only log.
func NewWatcher(tablePath string) (*Watcher, error) {
	initial, err := LoadFile(tablePath)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create fsnotify watcher")
	}
	if err := fsw.Add(tablePath); err != nil {
		fsw.Close()
		return nil, errors.Wrapf(err, "watch rule table %s", tablePath)
	}

	w := &Watcher{
		tablePath:      tablePath,
		watcher:        fsw,
		debouncePeriod: 500 * time.Millisecond,
	}
	w.current.Store(initial)
	return w, nil
}

// Snapshot returns the currently published snapshot.
func (w *Watcher) Snapshot() *rdr.Snapshot {
	return w.current.Load()
}

// OnReload registers a callback invoked after each successful republish.
func (w *Watcher) OnReload(callback ReloadCallback) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

// Start begins watching for rule table changes.
func (w *Watcher) Start() {
	go w.watchLoop()
}

func (w *Watcher) watchLoop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				logger.Debugw("Rule table change detected",
					logger.FieldPath, event.Name,
					logger.FieldOperation, event.Op.String())
				w.scheduleRebuild()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warnw("Rule table watcher error",
				logger.FieldError, err)
		}
	}
}

// scheduleRebuild debounces rapid writes before rebuilding. Editors often
// emit several events per save.
func (w *Watcher) scheduleRebuild() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debouncePeriod, func() {
		if err := w.rebuild(); err != nil {
			logger.Errorw("Rule table rebuild failed, keeping previous snapshot",
				logger.FieldPath, w.tablePath,
				logger.FieldError, err)
		}
	})
}

func (w *Watcher) rebuild() error {
	snap, err := LoadFile(w.tablePath)
	if err != nil {
		return err
	}
	w.current.Store(snap)

	logger.Infow("Rule table reloaded",
		logger.FieldPath, w.tablePath,
		logger.FieldKBVersion, snap.Version(),
		logger.FieldRuleCount, snap.Len())

	w.mu.Lock()
	callbacks := make([]ReloadCallback, len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.Unlock()

	for _, callback := range callbacks {
		callback(snap)
	}
	return nil
}

// Stop stops watching. A pending debounced rebuild may still run.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}
