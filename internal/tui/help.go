package tui

import (
	_ "embed"

	"github.com/charmbracelet/glamour"

	"github.com/marcus/quill/internal/styles"
)

//go:embed help.md
var helpText string

// renderHelp renders the help overlay through the markdown renderer at the
// current terminal width.
func (m *Model) renderHelp() string {
	width := m.width - 8
	if width < 40 {
		width = 40
	}
	if width > 80 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(styles.CurrentMarkdownTheme),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return helpText
	}
	out, err := r.Render(helpText)
	if err != nil {
		return helpText
	}
	return styles.ModalBox.Render(out)
}
