package watch

import (
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"folio/internal/errors"
	"folio/internal/log"

	"github.com/fsnotify/fsnotify"
)

// DefaultRenameWindow is how long a Rename waits for its paired Create.
const DefaultRenameWindow = 50 * time.Millisecond

// Options controls watcher behavior.
type Options struct {
	// RenameWindow bounds how long an unpaired rename is held before it is
	// reported as a removal.
	RenameWindow time.Duration
	// EmitNone reports events that classify as nothing (chmod, unknown ops)
	// as None records instead of dropping them.
	EmitNone bool
	Logger   *log.Logger
}

// Stats reports watcher counters.
type Stats struct {
	Folders   int
	RawEvents uint64
	Records   uint64
	Errors    uint64
}

// Watcher monitors folders with fsnotify and pushes classified changes to a
// sink.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	sink      Sink
	options   Options
	logger    *log.Logger

	// Guards folders, nextID and closed.
	mutex   sync.RWMutex
	folders map[string]FolderWatch
	nextID  FolderID
	closed  bool

	stopChan chan struct{}
	doneChan chan struct{}

	rawEvents atomic.Uint64
	records   atomic.Uint64
	errCount  atomic.Uint64
}

// New creates a watcher and starts its event loop.
func New(sink Sink, options Options) (*Watcher, error) {
	if sink == nil {
		return nil, errors.New("watch: nil sink")
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.NewFileError("failed to create fsnotify watcher", "", errors.WatchFailed, err)
	}

	if options.RenameWindow <= 0 {
		options.RenameWindow = DefaultRenameWindow
	}
	logger := options.Logger
	if logger == nil {
		logger = log.Default()
	}

	w := &Watcher{
		fsWatcher: fsWatcher,
		sink:      sink,
		options:   options,
		logger:    logger.With(log.F("component", "watcher")),
		folders:   make(map[string]FolderWatch),
		stopChan:  make(chan struct{}),
		doneChan:  make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// AddFolder starts watching path and returns its FolderID. Adding a folder
// that is already watched returns the existing ID.
func (w *Watcher) AddFolder(path string) (FolderID, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return 0, errors.NewFileError("cannot resolve folder", path, errors.InvalidPath, err)
	}
	abs = filepath.Clean(abs)

	info, err := os.Stat(abs)
	if err != nil {
		return 0, errors.NewFileError("cannot access folder", abs, errors.InvalidPath, err)
	}
	if !info.IsDir() {
		return 0, errors.NewFileError("not a directory", abs, errors.InvalidPath, nil)
	}

	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.closed {
		return 0, errors.NewFileError("watcher is closed", abs, errors.WatchFailed, nil)
	}
	if existing, ok := w.folders[abs]; ok {
		return existing.ID, nil
	}

	if err := w.fsWatcher.Add(abs); err != nil {
		return 0, errors.NewFileError("failed to watch folder", abs, errors.WatchFailed, err)
	}
	w.nextID++
	fw := FolderWatch{ID: w.nextID, Path: abs}
	w.folders[abs] = fw

	w.logger.With(log.F("folder", abs), log.F("folder_id", fw.ID)).Info("watching folder")
	return fw.ID, nil
}

// RemoveFolder stops watching path. Changes already classified for it may
// still reach the sink afterwards. Unknown paths are ignored.
func (w *Watcher) RemoveFolder(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.NewFileError("cannot resolve folder", path, errors.InvalidPath, err)
	}
	abs = filepath.Clean(abs)

	w.mutex.Lock()
	defer w.mutex.Unlock()

	fw, ok := w.folders[abs]
	if !ok {
		return nil
	}
	delete(w.folders, abs)

	// The folder may already be gone, in which case fsnotify dropped the
	// watch on its own.
	if err := w.fsWatcher.Remove(abs); err != nil && !errors.Is(err, fsnotify.ErrNonExistentWatch) {
		w.logger.WithError(err).With(log.F("folder", abs)).Debug("fsnotify remove failed")
	}
	w.logger.With(log.F("folder", abs), log.F("folder_id", fw.ID)).Info("stopped watching folder")
	return nil
}

// Folders returns the active registrations ordered by ID.
func (w *Watcher) Folders() []FolderWatch {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	out := make([]FolderWatch, 0, len(w.folders))
	for _, fw := range w.folders {
		out = append(out, fw)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Stats returns a snapshot of the watcher counters.
func (w *Watcher) Stats() Stats {
	w.mutex.RLock()
	folders := len(w.folders)
	w.mutex.RUnlock()
	return Stats{
		Folders:   folders,
		RawEvents: w.rawEvents.Load(),
		Records:   w.records.Load(),
		Errors:    w.errCount.Load(),
	}
}

// Close stops the event loop and releases the fsnotify watcher. It is safe
// to call more than once.
func (w *Watcher) Close() error {
	w.mutex.Lock()
	if w.closed {
		w.mutex.Unlock()
		return nil
	}
	w.closed = true
	w.folders = make(map[string]FolderWatch)
	w.mutex.Unlock()

	close(w.stopChan)
	<-w.doneChan

	if err := w.fsWatcher.Close(); err != nil {
		return errors.NewFileError("failed to close fsnotify watcher", "", errors.WatchFailed, err)
	}
	w.logger.Info("watcher stopped")
	return nil
}

func (w *Watcher) lookup(path string) (FolderWatch, bool) {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	fw, ok := w.folders[path]
	return fw, ok
}

func (w *Watcher) forget(fw FolderWatch) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if cur, ok := w.folders[fw.Path]; ok && cur.ID == fw.ID {
		delete(w.folders, fw.Path)
		_ = w.fsWatcher.Remove(fw.Path)
	}
}

func (w *Watcher) emit(changes []Change) {
	for _, c := range changes {
		w.records.Add(1)
		w.logger.With(log.F("change", c.String())).Debug("change classified")
		w.sink.Push(c)
	}
}

func (w *Watcher) run() {
	defer close(w.doneChan)

	c := &classifier{lookup: w.lookup, isDir: isDirectory, emitNone: w.options.EmitNone}
	renameTimer := time.NewTimer(w.options.RenameWindow)
	renameTimer.Stop()
	defer renameTimer.Stop()

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				w.emit(c.flush())
				return
			}
			w.rawEvents.Add(1)

			changes, folderGone := c.classify(event, time.Now())
			w.emit(changes)
			if folderGone {
				if fw, ok := w.lookup(filepath.Clean(event.Name)); ok {
					w.forget(fw)
				}
			}
			if c.pending != nil {
				renameTimer.Reset(w.options.RenameWindow)
			}

		case <-renameTimer.C:
			w.emit(c.flush())

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.errCount.Add(1)
			w.logger.WithError(err).Error("fsnotify watcher error")

		case <-w.stopChan:
			return
		}
	}
}
