package session

import (
	"fmt"

	"folio/internal/filelist"
)

// NoticeKind classifies what the renderer is asked to do.
type NoticeKind int

const (
	// NoticeList forwards a list or selection change.
	NoticeList NoticeKind = iota
	// NoticeReload asks the renderer to reload the open file.
	NoticeReload
	// NoticePrompt asks the user whether to reload the open file.
	NoticePrompt
	// NoticeRemoved reports that the open file is gone.
	NoticeRemoved
	// NoticeRenamed reports that the open file has a new name.
	NoticeRenamed
	// NoticeStatus carries a one-line message for the status bar.
	NoticeStatus
)

func (k NoticeKind) String() string {
	switch k {
	case NoticeList:
		return "list"
	case NoticeReload:
		return "reload"
	case NoticePrompt:
		return "prompt"
	case NoticeRemoved:
		return "removed"
	case NoticeRenamed:
		return "renamed"
	case NoticeStatus:
		return "status"
	}
	return fmt.Sprintf("notice(%d)", int(k))
}

// Notice is a request sent to the renderer. List is set for NoticeList.
type Notice struct {
	Kind    NoticeKind
	List    filelist.Event
	Name    string
	NewName string
	Message string
}

func (n Notice) String() string {
	switch n.Kind {
	case NoticeList:
		return fmt.Sprintf("%s %s %q index=%d size=%d", n.Kind, n.List.Kind, n.List.Name, n.List.Index, n.List.Size)
	case NoticeRenamed:
		return fmt.Sprintf("%s %q -> %q", n.Kind, n.Name, n.NewName)
	case NoticeStatus:
		return fmt.Sprintf("%s %s", n.Kind, n.Message)
	}
	return fmt.Sprintf("%s %q", n.Kind, n.Name)
}

// Renderer displays notices. It is always called on the consumer
// goroutine.
type Renderer interface {
	Render(Notice)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(Notice)

func (f RendererFunc) Render(n Notice) { f(n) }

type nopRenderer struct{}

func (nopRenderer) Render(Notice) {}
