package filelist

import (
	"fmt"

	"folio/internal/watch"
)

// FolderWatcher is the part of the directory watcher a file list needs.
type FolderWatcher interface {
	AddFolder(path string) (watch.FolderID, error)
	RemoveFolder(path string) error
}

// ReloadHooks decide what to do when the open file changes on disk. They
// run synchronously on the consumer goroutine, after the list has been
// updated.
type ReloadHooks interface {
	OnActiveFileRemoved(name string)
	OnActiveFileRenamed(oldName, newName string)
	OnActiveFileModified(name string)
}

// NopHooks ignores every change to the open file.
type NopHooks struct{}

func (NopHooks) OnActiveFileRemoved(string)         {}
func (NopHooks) OnActiveFileRenamed(string, string) {}
func (NopHooks) OnActiveFileModified(string)        {}

// EventKind classifies a notification sent to the renderer.
type EventKind int

const (
	// ActiveChanged: the open entry moved to a different file.
	ActiveChanged EventKind = iota
	// ListReloaded: a folder was scanned and the list replaced.
	ListReloaded
	// ListChanged: entries were inserted or erased by a change record.
	ListChanged
	// FolderUnwatched: the folder disappeared; the list is a snapshot now.
	FolderUnwatched
)

func (k EventKind) String() string {
	switch k {
	case ActiveChanged:
		return "active-changed"
	case ListReloaded:
		return "list-reloaded"
	case ListChanged:
		return "list-changed"
	case FolderUnwatched:
		return "folder-unwatched"
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Event is a display or refresh request for the renderer.
type Event struct {
	Kind   EventKind
	Folder string
	Name   string
	Index  int
	Size   int
}

// Notifier receives display requests.
type Notifier interface {
	Notify(Event)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Event)

func (f NotifierFunc) Notify(e Event) { f(e) }

type nopNotifier struct{}

func (nopNotifier) Notify(Event) {}
