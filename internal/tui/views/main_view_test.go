package views

import (
	"fmt"
	"testing"

	"folio/internal/testutil"
	"folio/internal/tui/common"

	"github.com/stretchr/testify/assert"
)

// Mock model for testing
type mockModel struct {
	entries       []string
	cursor        int
	folder        string
	watched       bool
	mode          common.Mode
	commandBuffer string
	prompt        string
	status        string
	height        int
}

func (m *mockModel) Entries() []string     { return m.entries }
func (m *mockModel) Cursor() int           { return m.cursor }
func (m *mockModel) Folder() string        { return m.folder }
func (m *mockModel) Watched() bool         { return m.watched }
func (m *mockModel) Mode() common.Mode     { return m.mode }
func (m *mockModel) CommandBuffer() string { return m.commandBuffer }
func (m *mockModel) PromptText() string    { return m.prompt }
func (m *mockModel) StatusView() string    { return m.status }
func (m *mockModel) ShowHelp() bool        { return false }
func (m *mockModel) HelpView() string      { return "? help" }
func (m *mockModel) Height() int           { return m.height }

func TestRenderMainView(t *testing.T) {
	tests := []struct {
		name     string
		model    *mockModel
		contains []string // Strings that should be present in the output
		excludes []string // Strings that should not be present in the output
	}{
		{
			name:     "no folder",
			model:    &mockModel{cursor: -1, watched: true},
			contains: []string{"folio", "No folder open", "? help"},
		},
		{
			name:     "empty folder",
			model:    &mockModel{cursor: -1, folder: "/photos", watched: true},
			contains: []string{"Folder: /photos", "No files found"},
			excludes: []string{"no longer on disk"},
		},
		{
			name: "folder with files",
			model: &mockModel{
				entries: []string{"a.jpg", "b.jpg", "c.jpg"},
				cursor:  1,
				folder:  "/photos",
				watched: true,
				status:  "reloaded b.jpg",
			},
			contains: []string{"a.jpg", "> ", "b.jpg", "c.jpg", "2/3", "reloaded b.jpg"},
		},
		{
			name: "detached folder",
			model: &mockModel{
				entries: []string{"a.jpg"},
				cursor:  -1,
				folder:  "/gone",
				watched: false,
			},
			contains: []string{"no longer on disk", "-/1"},
		},
		{
			name: "command mode",
			model: &mockModel{
				cursor:        -1,
				watched:       true,
				mode:          common.Command,
				commandBuffer: ":open /tmp",
				status:        "hidden while typing",
			},
			contains: []string{":open /tmp"},
			excludes: []string{"hidden while typing"},
		},
		{
			name: "prompt mode",
			model: &mockModel{
				cursor:  0,
				entries: []string{"a.jpg"},
				folder:  "/photos",
				watched: true,
				mode:    common.Prompt,
				prompt:  "a.jpg changed on disk, reload?",
			},
			contains: []string{"a.jpg changed on disk, reload?", "[y/n]"},
		},
		{
			name: "window around cursor",
			model: &mockModel{
				entries: []string{"00.jpg", "01.jpg", "02.jpg", "03.jpg", "04.jpg", "05.jpg", "06.jpg", "07.jpg"},
				cursor:  6,
				folder:  "/photos",
				watched: true,
				height:  3,
			},
			contains: []string{"05.jpg", "06.jpg", "07.jpg", "7/8"},
			excludes: []string{"00.jpg", "04.jpg"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := testutil.StripANSI(RenderMainView(tt.model))

			// Check required strings are present
			for _, s := range tt.contains {
				assert.Contains(t, output, s, fmt.Sprintf("output should contain '%s'", s))
			}

			// Check excluded strings are not present
			for _, s := range tt.excludes {
				assert.NotContains(t, output, s, fmt.Sprintf("output should not contain '%s'", s))
			}
		})
	}
}
