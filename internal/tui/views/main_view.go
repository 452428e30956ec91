package views

import (
	"strings"

	"folio/internal/tui/common"
	"folio/internal/tui/components"
	"folio/internal/tui/styles"
)

func RenderMainView(m common.ModelReader) string {
	var sb strings.Builder

	sb.WriteString(renderBanner())
	sb.WriteString("\n")

	if m.Folder() == "" {
		sb.WriteString("No folder open. Type :open <path>\n")
	} else {
		fileList := components.NewFileList()
		fileList.SetFolder(m.Folder(), m.Watched())
		fileList.SetEntries(m.Entries())
		fileList.SetCursor(m.Cursor())
		fileList.SetHeight(m.Height())
		sb.WriteString(fileList.View())
	}
	sb.WriteString("\n")

	switch m.Mode() {
	case common.Command:
		sb.WriteString("\n" + m.CommandBuffer())
	case common.Prompt:
		sb.WriteString("\n" + styles.Theme.Prompt.Render(m.PromptText()+" [y/n]"))
	default:
		if status := m.StatusView(); status != "" {
			sb.WriteString("\n" + status)
		}
	}

	sb.WriteString("\n" + m.HelpView())
	return styles.Theme.App.Render(sb.String())
}

func renderBanner() string {
	return styles.Theme.Title.Render("folio")
}
