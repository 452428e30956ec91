package components

import (
	"testing"

	"folio/internal/testutil"

	"github.com/stretchr/testify/assert"
)

func TestFileListWindow(t *testing.T) {
	fl := NewFileList()
	fl.SetEntries([]string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"})

	tests := []struct {
		name       string
		cursor     int
		height     int
		start, end int
	}{
		{"no limit", 5, 0, 0, 10},
		{"fits", 5, 20, 0, 10},
		{"unset cursor", -1, 4, 0, 4},
		{"centred", 5, 4, 3, 7},
		{"clamped at top", 1, 4, 0, 4},
		{"clamped at bottom", 9, 4, 6, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fl.SetCursor(tt.cursor)
			fl.SetHeight(tt.height)
			start, end := fl.window()
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}
}

func TestStatusBar(t *testing.T) {
	s := NewStatusBar()
	assert.Equal(t, "", s.View())

	s.SetText("reloaded a.jpg", false)
	assert.Equal(t, "reloaded a.jpg", testutil.StripANSI(s.View()))

	assert.NotNil(t, s.SetLoading(true))
	assert.Contains(t, testutil.StripANSI(s.View()), "reloaded a.jpg")
	assert.Nil(t, s.SetLoading(false))

	// Not loading: ticks are dropped
	assert.Nil(t, s.Update(nil))
}
