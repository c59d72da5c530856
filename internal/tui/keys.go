package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the application key bindings.
type KeyMap struct {
	Quit     key.Binding
	Help     key.Binding
	FocusTab key.Binding

	// List pane
	Up          key.Binding
	Down        key.Binding
	Open        key.Binding
	NewDoc      key.Binding
	DeleteDoc   key.Binding
	RestoreDoc  key.Binding
	ToggleTrash key.Binding
	Filter      key.Binding

	// Editor pane
	Left       key.Binding
	Right      key.Binding
	Bold       key.Binding
	Italic     key.Binding
	UnordList  key.Binding
	OrdList    key.Binding
	Heading1   key.Binding
	Heading2   key.Binding
	Heading3   key.Binding
	Quote      key.Binding
	CodeBlock  key.Binding
	Paragraph  key.Binding
	InsertLink key.Binding
	Assist     key.Binding
	Image      key.Binding
	CopyDoc    key.Binding
	EditTitle  key.Binding
	Done       key.Binding

	// Block dragging
	Grab key.Binding
	Drop key.Binding

	EmbedInfo key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Help:     key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("ctrl+g", "help")),
		FocusTab: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),

		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Open:        key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		NewDoc:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new document")),
		DeleteDoc:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		RestoreDoc:  key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "restore")),
		ToggleTrash: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "toggle trash")),
		Filter:      key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),

		Left:       key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "caret left")),
		Right:      key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "caret right")),
		Bold:       key.NewBinding(key.WithKeys("ctrl+b"), key.WithHelp("ctrl+b", "bold")),
		Italic:     key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "italic")),
		UnordList:  key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("ctrl+u", "bullet list")),
		OrdList:    key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "numbered list")),
		Heading1:   key.NewBinding(key.WithKeys("alt+1"), key.WithHelp("alt+1", "heading 1")),
		Heading2:   key.NewBinding(key.WithKeys("alt+2"), key.WithHelp("alt+2", "heading 2")),
		Heading3:   key.NewBinding(key.WithKeys("alt+3"), key.WithHelp("alt+3", "heading 3")),
		Quote:      key.NewBinding(key.WithKeys("alt+q"), key.WithHelp("alt+q", "blockquote")),
		CodeBlock:  key.NewBinding(key.WithKeys("alt+c"), key.WithHelp("alt+c", "code block")),
		Paragraph:  key.NewBinding(key.WithKeys("alt+0"), key.WithHelp("alt+0", "paragraph")),
		InsertLink: key.NewBinding(key.WithKeys("ctrl+k"), key.WithHelp("ctrl+k", "link")),
		Assist:     key.NewBinding(key.WithKeys("ctrl+a"), key.WithHelp("ctrl+a", "AI assist")),
		Image:      key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "insert image")),
		CopyDoc:    key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "copy markup")),
		EditTitle:  key.NewBinding(key.WithKeys("ctrl+e"), key.WithHelp("ctrl+e", "edit title")),
		Done:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "done editing")),

		Grab: key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "grab block")),
		Drop: key.NewBinding(key.WithKeys("ctrl+v"), key.WithHelp("ctrl+v", "drop block")),

		EmbedInfo: key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "image details")),
	}
}
