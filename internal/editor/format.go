package editor

// Format names a toolbar-visible formatting state.
type Format string

const (
	FormatBold          Format = "bold"
	FormatItalic        Format = "italic"
	FormatUnorderedList Format = "unorderedList"
	FormatOrderedList   Format = "orderedList"
	FormatH1            Format = "h1"
	FormatH2            Format = "h2"
	FormatH3            Format = "h3"
	FormatBlockquote    Format = "blockquote"
	FormatCodeBlock     Format = "codeBlock"
)

// AllFormats lists every tracked format, in toolbar order.
var AllFormats = []Format{
	FormatBold, FormatItalic,
	FormatUnorderedList, FormatOrderedList,
	FormatH1, FormatH2, FormatH3,
	FormatBlockquote, FormatCodeBlock,
}

// ActiveFormatSet maps every format to whether it applies at the current
// caret or selection. It is always complete: absent knowledge reads false.
type ActiveFormatSet map[Format]bool

// emptyFormatSet returns a set with every format present and false.
func emptyFormatSet() ActiveFormatSet {
	set := make(ActiveFormatSet, len(AllFormats))
	for _, f := range AllFormats {
		set[f] = false
	}
	return set
}

// FormatStateTracker derives the active format set from the surface's
// selection and ancestor structure. The set is recomputed wholesale, never
// patched, on selection changes, key and pointer activity, focus, and any
// structural mutation of the surface subtree.
type FormatStateTracker struct {
	surface *Surface
	active  ActiveFormatSet
}

// NewFormatStateTracker builds a tracker bound to the surface and hooks it
// into the surface's mutation notifications, since formatting commands and
// programmatic insertion change active state without a selection event.
func NewFormatStateTracker(s *Surface) *FormatStateTracker {
	t := &FormatStateTracker{surface: s, active: emptyFormatSet()}
	if s != nil {
		s.OnMutate(func() { t.Recompute() })
	}
	return t
}

// Recompute derives a fresh format set from the surface. When the surface
// cannot report state (nil surface, no selection) it returns an all-false
// set; toolbar highlighting degrades to "no indication", never an error.
func (t *FormatStateTracker) Recompute() ActiveFormatSet {
	set := emptyFormatSet()
	s := t.surface
	if s == nil {
		t.active = set
		return set
	}
	if _, ok := s.Selection(); !ok {
		t.active = set
		return set
	}

	set[FormatBold] = s.QueryCommandState(CmdBold)
	set[FormatItalic] = s.QueryCommandState(CmdItalic)
	set[FormatUnorderedList] = s.QueryCommandState(CmdUnorderedList)
	set[FormatOrderedList] = s.QueryCommandState(CmdOrderedList)

	switch s.BlockTag() {
	case "h1":
		set[FormatH1] = true
	case "h2":
		set[FormatH2] = true
	case "h3":
		set[FormatH3] = true
	case "blockquote":
		set[FormatBlockquote] = true
	case "pre":
		set[FormatCodeBlock] = true
	}

	t.active = set
	return set
}

// Active returns the last computed set.
func (t *FormatStateTracker) Active() ActiveFormatSet {
	return t.active
}
