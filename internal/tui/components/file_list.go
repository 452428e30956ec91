package components

import (
	"fmt"
	"strings"

	"folio/internal/tui/styles"
)

// FileList renders a window of the sorted entries around the cursor.
type FileList struct {
	entries []string
	cursor  int
	folder  string
	watched bool
	height  int
}

func NewFileList() *FileList {
	return &FileList{cursor: -1, watched: true}
}

func (fl *FileList) SetEntries(entries []string) {
	fl.entries = entries
}

// SetCursor sets the highlighted row; -1 highlights nothing.
func (fl *FileList) SetCursor(cursor int) {
	fl.cursor = cursor
}

func (fl *FileList) SetFolder(folder string, watched bool) {
	fl.folder = folder
	fl.watched = watched
}

// SetHeight limits the number of rows shown; 0 shows everything.
func (fl *FileList) SetHeight(height int) {
	fl.height = height
}

// window returns the half-open range of rows to draw.
func (fl *FileList) window() (int, int) {
	n := len(fl.entries)
	if fl.height <= 0 || n <= fl.height {
		return 0, n
	}
	start := 0
	if fl.cursor >= 0 {
		start = fl.cursor - fl.height/2
	}
	if start < 0 {
		start = 0
	}
	if start > n-fl.height {
		start = n - fl.height
	}
	return start, start + fl.height
}

func (fl *FileList) View() string {
	var s strings.Builder

	header := "Folder: " + fl.folder
	if !fl.watched {
		s.WriteString(styles.Theme.Detached.Render(header+" (no longer on disk)") + "\n\n")
	} else {
		s.WriteString(styles.Theme.Help.Render(header) + "\n\n")
	}

	if len(fl.entries) == 0 {
		s.WriteString("No files found\n")
		return s.String()
	}

	start, end := fl.window()
	for i := start; i < end; i++ {
		style := styles.Theme.Unselected
		cursor := " "
		if i == fl.cursor {
			style = styles.Theme.Selected
			cursor = ">"
		}
		s.WriteString(fmt.Sprintf("%s %s\n", cursor, style.Render(fl.entries[i])))
	}

	position := "-"
	if fl.cursor >= 0 {
		position = fmt.Sprint(fl.cursor + 1)
	}
	s.WriteString(styles.Theme.Help.Render(fmt.Sprintf("%s/%d", position, len(fl.entries))))
	return s.String()
}
