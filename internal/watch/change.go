package watch

import (
	"fmt"
	"time"
)

// FolderID identifies one folder registration. IDs are never reused by a
// Watcher.
type FolderID uint64

// ChangeOp classifies a change record.
type ChangeOp int

const (
	None ChangeOp = iota
	Add
	Remove
	Rename
	Modify
	WatchedFolderRemoved
)

func (op ChangeOp) String() string {
	switch op {
	case None:
		return "none"
	case Add:
		return "add"
	case Remove:
		return "remove"
	case Rename:
		return "rename"
	case Modify:
		return "modify"
	case WatchedFolderRemoved:
		return "folder-removed"
	}
	return fmt.Sprintf("op(%d)", int(op))
}

// Change is one classified filesystem change inside a watched folder.
// Name and NewName are base names relative to the folder; NewName is only
// set for Rename.
type Change struct {
	Folder  FolderID
	Op      ChangeOp
	Name    string
	NewName string
	At      time.Time
}

func (c Change) String() string {
	if c.Op == Rename {
		return fmt.Sprintf("%s %s -> %s (folder %d)", c.Op, c.Name, c.NewName, c.Folder)
	}
	return fmt.Sprintf("%s %s (folder %d)", c.Op, c.Name, c.Folder)
}

// FolderWatch is an active folder registration.
type FolderWatch struct {
	ID   FolderID
	Path string
}

// Sink receives classified changes. It is called from the watcher goroutine
// and must not block; mailbox.Tag[Change] satisfies it.
type Sink interface {
	Push(Change)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Change)

func (f SinkFunc) Push(c Change) { f(c) }
