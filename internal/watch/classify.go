package watch

import (
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// pendingRename is the old half of a rename waiting for its Create.
type pendingRename struct {
	folder FolderWatch
	name   string
	at     time.Time
}

// classifier turns raw fsnotify events into Change records. fsnotify
// reports a rename inside a folder as Rename(old) immediately followed by
// Create(new); the classifier holds the Rename until the matching Create
// arrives or the caller flushes it as a Remove.
type classifier struct {
	lookup   func(path string) (FolderWatch, bool)
	isDir    func(path string) bool
	emitNone bool
	pending  *pendingRename
}

// classify returns the records produced by ev, in delivery order. The
// second result reports that ev removed a watched folder.
func (c *classifier) classify(ev fsnotify.Event, now time.Time) ([]Change, bool) {
	path := filepath.Clean(ev.Name)

	if self, ok := c.lookup(path); ok && (ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)) {
		out := c.flush()
		return append(out, Change{Folder: self.ID, Op: WatchedFolderRemoved, At: now}), true
	}

	folder, ok := c.lookup(filepath.Dir(path))
	if !ok {
		return c.flush(), false
	}
	name := filepath.Base(path)

	switch {
	case ev.Has(fsnotify.Create) && c.isDir != nil && c.isDir(path):
		// Subfolders are never list entries. The old half of a folder
		// rename goes out as a Remove of a name the list does not hold.
		out := c.flush()
		if c.emitNone {
			out = append(out, Change{Folder: folder.ID, Op: None, Name: name, At: now})
		}
		return out, false

	case ev.Has(fsnotify.Create):
		if p := c.pending; p != nil && p.folder.ID == folder.ID {
			c.pending = nil
			return []Change{{Folder: folder.ID, Op: Rename, Name: p.name, NewName: name, At: now}}, false
		}
		return append(c.flush(), Change{Folder: folder.ID, Op: Add, Name: name, At: now}), false

	case ev.Has(fsnotify.Rename):
		out := c.flush()
		c.pending = &pendingRename{folder: folder, name: name, at: now}
		return out, false

	case ev.Has(fsnotify.Remove):
		return append(c.flush(), Change{Folder: folder.ID, Op: Remove, Name: name, At: now}), false

	case ev.Has(fsnotify.Write):
		return append(c.flush(), Change{Folder: folder.ID, Op: Modify, Name: name, At: now}), false
	}

	out := c.flush()
	if c.emitNone {
		out = append(out, Change{Folder: folder.ID, Op: None, Name: name, At: now})
	}
	return out, false
}

// flush turns an unpaired rename into a Remove: the file left the folder.
func (c *classifier) flush() []Change {
	p := c.pending
	if p == nil {
		return nil
	}
	c.pending = nil
	return []Change{{Folder: p.folder.ID, Op: Remove, Name: p.name, At: p.at}}
}

// isDirectory reports whether path is a directory. A path that is already
// gone counts as a file so its Add is paired with the Remove that follows.
func isDirectory(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.IsDir()
}
