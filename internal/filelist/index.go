// Package filelist keeps the sorted list of files in one watched folder and
// tracks which of them is open.
//
// An Index is owned by a single consumer goroutine. Folder changes arrive
// as watch.Change records, usually delivered through a mailbox, and are
// applied in order. Records tagged with a folder ID other than the current
// one are stale and discarded, so a folder switch never mixes entries from
// two folders.
package filelist

import (
	"math"
	"path/filepath"
	"sort"

	"folio/internal/errors"
	"folio/internal/log"
	"folio/internal/sorter"
	"folio/internal/watch"
)

// Unset is the current index when no entry is open.
const Unset = -1

// Sentinel steps for JumpDelta.
const (
	JumpFirst = math.MinInt
	JumpLast  = math.MaxInt
)

// State describes what the index holds.
type State int

const (
	Empty     State = iota // no folder loaded yet
	Populated              // a folder has been scanned
)

func (s State) String() string {
	if s == Populated {
		return "populated"
	}
	return "empty"
}

// Stats counts how change records were handled.
type Stats struct {
	Applied    uint64
	Stale      uint64
	Duplicates uint64
	Ignored    uint64
}

// Option configures an Index.
type Option func(*Index)

// WithHooks sets the callbacks run when the open file changes on disk.
func WithHooks(h ReloadHooks) Option {
	return func(ix *Index) {
		if h != nil {
			ix.hooks = h
		}
	}
}

// WithNotifier sets the display sink.
func WithNotifier(n Notifier) Option {
	return func(ix *Index) {
		if n != nil {
			ix.notifier = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(ix *Index) {
		if l != nil {
			ix.logger = l
		}
	}
}

// WithExclude hides base names matching any of the glob patterns.
func WithExclude(patterns ...string) Option {
	return func(ix *Index) {
		ix.exclude = append(ix.exclude, patterns...)
	}
}

// Index is the sorted file list of one folder plus the open entry.
type Index struct {
	watcher  FolderWatcher
	sorter   sorter.Sorter
	hooks    ReloadHooks
	notifier Notifier
	logger   *log.Logger
	exclude  []string

	folder   string
	folderID watch.FolderID
	watched  bool
	filter   *nameFilter

	entries []string
	current int
	// active is the name of the open entry. It survives list edits and is
	// the key used to recompute current.
	active string

	stats Stats
}

// New creates an empty index. s orders the entries; nil means lexical.
func New(watcher FolderWatcher, s sorter.Sorter, opts ...Option) *Index {
	if s == nil {
		s = sorter.Lexical()
	}
	ix := &Index{
		watcher:  watcher,
		sorter:   s,
		hooks:    NopHooks{},
		notifier: nopNotifier{},
		logger:   log.Default(),
		current:  Unset,
	}
	for _, opt := range opts {
		opt(ix)
	}
	ix.logger = ix.logger.With(log.F("component", "filelist"))
	return ix
}

// SetFolder scans path, replaces the list with its accepted files and
// starts watching it. Selecting the folder that is already watched is a
// no-op. A folder that cannot be scanned or watched leaves the index, and
// the watch on the previous folder, untouched.
func (ix *Index) SetFolder(path string, knownExtensions []string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.NewFileError("cannot resolve folder", path, errors.InvalidPath, err)
	}
	abs = filepath.Clean(abs)

	if abs == ix.folder && ix.watched {
		return nil
	}

	filter, err := newNameFilter(knownExtensions, ix.exclude)
	if err != nil {
		return err
	}
	entries, err := scanFolder(abs, filter, ix.sorter)
	if err != nil {
		return err
	}

	id, err := ix.watcher.AddFolder(abs)
	if err != nil {
		return errors.NewFileError("cannot watch folder", abs, errors.WatchFailed, err)
	}
	ix.unwatch()

	ix.folder = abs
	ix.folderID = id
	ix.watched = true
	ix.filter = filter
	ix.entries = entries
	ix.current = Unset
	ix.active = ""

	ix.logger.With(log.F("folder", abs), log.F("id", uint64(id)), log.F("entries", len(entries))).
		Debug("folder loaded")
	ix.notify(ListReloaded, "")
	return nil
}

// unwatch stops watching the current folder. Pending records for it become
// stale.
func (ix *Index) unwatch() {
	if !ix.watched {
		return
	}
	if err := ix.watcher.RemoveFolder(ix.folder); err != nil {
		ix.logger.WithError(err).Warn("failed to stop watching folder")
	}
	ix.watched = false
	ix.folderID = 0
}

// SetCurrentIndexByElementName opens the entry called name. It reports
// false and changes nothing when there is no such entry.
func (ix *Index) SetCurrentIndexByElementName(name string) bool {
	i := ix.find(name)
	if i < 0 {
		return false
	}
	ix.setCurrent(i)
	return true
}

// JumpDelta moves the open entry by step. JumpFirst and JumpLast select
// the ends and work from the unset state; any other step needs an open
// entry and must stay within the list.
func (ix *Index) JumpDelta(step int) error {
	n := len(ix.entries)
	if n == 0 {
		return errors.NewListError("list is empty", "", errors.InvalidState, nil)
	}

	var target int
	switch step {
	case JumpFirst:
		target = 0
	case JumpLast:
		target = n - 1
	default:
		if ix.current == Unset {
			return errors.NewListError("no entry is open", "", errors.OutOfRange, nil)
		}
		if (step > 0 && step > n-1-ix.current) || (step < 0 && -step > ix.current) {
			return errors.NewListError("step leaves the list", ix.active, errors.OutOfRange, nil)
		}
		target = ix.current + step
	}
	ix.setCurrent(target)
	return nil
}

// ApplyChange folds one change record into the list. Only a duplicate Add
// returns an error; the list is unchanged in that case. Stale records are
// counted and logged at debug level with the StaleFolderID kind.
func (ix *Index) ApplyChange(c watch.Change) error {
	if !ix.watched || c.Folder != ix.folderID {
		ix.stats.Stale++
		stale := errors.NewListError("change for a folder no longer watched", c.Name, errors.StaleFolderID, nil)
		ix.logger.WithError(stale).With(log.F("change", c.String())).Debug("discarding stale change")
		return nil
	}

	switch c.Op {
	case watch.Add:
		if err := ix.add(c.Name); err != nil {
			ix.stats.Duplicates++
			return err
		}
	case watch.Remove:
		ix.remove(c.Name)
	case watch.Rename:
		ix.rename(c.Name, c.NewName)
	case watch.Modify:
		if c.Name != "" && c.Name == ix.active {
			ix.hooks.OnActiveFileModified(c.Name)
		}
	case watch.WatchedFolderRemoved:
		ix.detach()
	default:
		ix.stats.Ignored++
		return nil
	}
	ix.stats.Applied++
	return nil
}

func (ix *Index) add(name string) error {
	if !ix.filter.accepts(name) {
		return nil
	}
	i, found := ix.search(name)
	if found {
		return errors.NewListError("entry already listed", name, errors.DuplicateEntry, nil)
	}
	ix.insertAt(i, name)
	ix.relocate()
	ix.notify(ListChanged, name)
	return nil
}

func (ix *Index) remove(name string) {
	i := ix.find(name)
	if i < 0 {
		return
	}
	ix.eraseAt(i)

	if name == ix.active {
		ix.active = ""
		ix.current = Unset
		ix.notify(ListChanged, name)
		ix.hooks.OnActiveFileRemoved(name)
		return
	}
	ix.relocate()
	ix.notify(ListChanged, name)
}

// rename erases oldName and inserts newName when it is accepted. A rename
// onto an existing entry replaces it, as the file system does.
func (ix *Index) rename(oldName, newName string) {
	wasActive := oldName != "" && oldName == ix.active
	replacedActive := !wasActive && newName != "" && newName == ix.active

	if i := ix.find(oldName); i >= 0 {
		ix.eraseAt(i)
	}
	listed := false
	if ix.filter.accepts(newName) {
		i, found := ix.search(newName)
		if !found {
			ix.insertAt(i, newName)
		}
		listed = true
	}

	if wasActive {
		if listed {
			ix.active = newName
		} else {
			ix.active = ""
		}
	}
	ix.relocate()
	ix.notify(ListChanged, newName)

	switch {
	case wasActive:
		ix.hooks.OnActiveFileRenamed(oldName, newName)
	case replacedActive:
		ix.hooks.OnActiveFileModified(newName)
	}
}

// detach keeps the entries as a snapshot of a folder that no longer exists.
func (ix *Index) detach() {
	ix.logger.With(log.F("folder", ix.folder)).Warn("watched folder removed")
	ix.watched = false
	ix.folderID = 0
	ix.notify(FolderUnwatched, "")
}

// Close stops watching the folder. The list stays readable.
func (ix *Index) Close() {
	ix.unwatch()
}

// search returns the lower bound of name and whether it is listed there.
func (ix *Index) search(name string) (int, bool) {
	i := sort.Search(len(ix.entries), func(i int) bool {
		return !ix.sorter.Less(ix.entries[i], name)
	})
	return i, i < len(ix.entries) && ix.entries[i] == name
}

func (ix *Index) find(name string) int {
	if name == "" {
		return -1
	}
	i, found := ix.search(name)
	if !found {
		return -1
	}
	return i
}

func (ix *Index) insertAt(i int, name string) {
	ix.entries = append(ix.entries, "")
	copy(ix.entries[i+1:], ix.entries[i:])
	ix.entries[i] = name
}

func (ix *Index) eraseAt(i int) {
	ix.entries = append(ix.entries[:i], ix.entries[i+1:]...)
}

// relocate recomputes current from the active name.
func (ix *Index) relocate() {
	ix.current = ix.find(ix.active)
	if ix.current < 0 {
		ix.current = Unset
	}
}

func (ix *Index) setCurrent(i int) {
	ix.current = i
	ix.active = ix.entries[i]
	ix.notify(ActiveChanged, ix.active)
}

func (ix *Index) notify(kind EventKind, name string) {
	ix.notifier.Notify(Event{
		Kind:   kind,
		Folder: ix.folder,
		Name:   name,
		Index:  ix.current,
		Size:   len(ix.entries),
	})
}

// Folder returns the absolute path of the loaded folder.
func (ix *Index) Folder() string { return ix.folder }

// FolderID returns the watch ID of the folder, or 0 when not watched.
func (ix *Index) FolderID() watch.FolderID { return ix.folderID }

// Watched reports whether changes to the folder are being followed.
func (ix *Index) Watched() bool { return ix.watched }

func (ix *Index) Len() int { return len(ix.entries) }

// Entries returns a copy of the sorted list.
func (ix *Index) Entries() []string {
	return append([]string(nil), ix.entries...)
}

// CurrentIndex returns the position of the open entry, or Unset.
func (ix *Index) CurrentIndex() int { return ix.current }

// Current returns the open entry name.
func (ix *Index) Current() (string, bool) {
	if ix.current == Unset {
		return "", false
	}
	return ix.entries[ix.current], true
}

// CurrentPath returns the absolute path of the open entry.
func (ix *Index) CurrentPath() (string, bool) {
	name, ok := ix.Current()
	if !ok {
		return "", false
	}
	return filepath.Join(ix.folder, name), true
}

func (ix *Index) State() State {
	if ix.folder == "" {
		return Empty
	}
	return Populated
}

func (ix *Index) Stats() Stats { return ix.stats }
