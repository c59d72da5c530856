package editor

import (
	"errors"
	"strings"
	"testing"
)

func selectText(t *testing.T, s *Surface, text string, start, end int) {
	t.Helper()
	tn := textNamed(t, s, text)
	if err := s.SetSelection(Range{
		Start: Anchor{Node: tn, Offset: start},
		End:   Anchor{Node: tn, Offset: end},
	}); err != nil {
		t.Fatal(err)
	}
}

func TestBoldWrapsSelection(t *testing.T) {
	s := NewSurface("<p>hello</p>")
	selectText(t, s, "hello", 0, 5)
	if err := s.ExecCommand(CmdBold, ""); err != nil {
		t.Fatal(err)
	}
	if got, want := s.InnerHTML(), "<p><b>hello</b></p>"; got != want {
		t.Errorf("InnerHTML() = %q, want %q", got, want)
	}
	if !s.QueryCommandState(CmdBold) {
		t.Error("bold not reported active after wrapping")
	}
}

func TestBoldToggleUnwraps(t *testing.T) {
	s := NewSurface("<p><b>hello</b></p>")
	selectText(t, s, "hello", 0, 5)
	if err := s.ExecCommand(CmdBold, ""); err != nil {
		t.Fatal(err)
	}
	if got, want := s.InnerHTML(), "<p>hello</p>"; got != want {
		t.Errorf("InnerHTML() = %q, want %q", got, want)
	}
}

func TestItalicRecognizesEmAlias(t *testing.T) {
	s := NewSurface("<p><em>hello</em></p>")
	selectText(t, s, "hello", 0, 5)
	if !s.QueryCommandState(CmdItalic) {
		t.Error("italic not reported active inside <em>")
	}
	if err := s.ExecCommand(CmdItalic, ""); err != nil {
		t.Fatal(err)
	}
	if got, want := s.InnerHTML(), "<p>hello</p>"; got != want {
		t.Errorf("InnerHTML() = %q, want %q", got, want)
	}
}

func TestCollapsedInlineToggleLeavesTreeAlone(t *testing.T) {
	s := NewSurface("<p>hello</p>")
	selectText(t, s, "hello", 2, 2)
	if err := s.ExecCommand(CmdBold, ""); err != nil {
		t.Fatal(err)
	}
	if got, want := s.InnerHTML(), "<p>hello</p>"; got != want {
		t.Errorf("InnerHTML() = %q, want %q", got, want)
	}
}

func TestBoldAcrossPartialSelection(t *testing.T) {
	s := NewSurface("<p>hello world</p>")
	selectText(t, s, "hello world", 6, 11)
	if err := s.ExecCommand(CmdBold, ""); err != nil {
		t.Fatal(err)
	}
	if got, want := s.InnerHTML(), "<p>hello <b>world</b></p>"; got != want {
		t.Errorf("InnerHTML() = %q, want %q", got, want)
	}
}

func TestCreateLink(t *testing.T) {
	s := NewSurface("<p>docs</p>")
	selectText(t, s, "docs", 0, 4)
	if err := s.ExecCommand(CmdCreateLink, "https://example.com"); err != nil {
		t.Fatal(err)
	}
	if got := s.InnerHTML(); !strings.Contains(got, `<a href="https://example.com">docs</a>`) {
		t.Errorf("InnerHTML() = %q, want link wrapping", got)
	}
}

func TestCreateLinkRequiresURL(t *testing.T) {
	s := NewSurface("<p>docs</p>")
	selectText(t, s, "docs", 0, 4)
	err := s.ExecCommand(CmdCreateLink, "   ")
	if !errors.Is(err, ErrUnsupportedCommand) {
		t.Fatalf("ExecCommand(createLink, blank) error = %v, want ErrUnsupportedCommand", err)
	}
}

func TestUnknownCommand(t *testing.T) {
	s := NewSurface("<p>x</p>")
	err := s.ExecCommand(Command("strikeThrough"), "")
	if !errors.Is(err, ErrUnsupportedCommand) {
		t.Fatalf("error = %v, want ErrUnsupportedCommand", err)
	}
}

func TestFormatBlockRenames(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"h1", "<h1>hi</h1>"},
		{"<h2>", "<h2>hi</h2>"},
		{"blockquote", "<blockquote>hi</blockquote>"},
		{"pre", "<pre>hi</pre>"},
	}
	for _, tt := range tests {
		s := NewSurface("<p>hi</p>")
		selectText(t, s, "hi", 1, 1)
		if err := s.ExecCommand(CmdFormatBlock, tt.value); err != nil {
			t.Fatalf("formatBlock(%q): %v", tt.value, err)
		}
		if got := s.InnerHTML(); got != tt.want {
			t.Errorf("formatBlock(%q) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestFormatBlockRejectsUnknownTag(t *testing.T) {
	s := NewSurface("<p>hi</p>")
	selectText(t, s, "hi", 0, 0)
	err := s.ExecCommand(CmdFormatBlock, "marquee")
	if !errors.Is(err, ErrUnsupportedCommand) {
		t.Fatalf("error = %v, want ErrUnsupportedCommand", err)
	}
}

func TestFormatBlockWrapsBareInlineRun(t *testing.T) {
	s := NewSurface("hello <b>world</b>")
	selectText(t, s, "hello ", 0, 0)
	if err := s.ExecCommand(CmdFormatBlock, "h1"); err != nil {
		t.Fatal(err)
	}
	if got, want := s.InnerHTML(), "<h1>hello <b>world</b></h1>"; got != want {
		t.Errorf("InnerHTML() = %q, want %q", got, want)
	}
}

func TestToggleListWrapsBlock(t *testing.T) {
	s := NewSurface("<p>item</p>")
	selectText(t, s, "item", 0, 0)
	if err := s.ExecCommand(CmdUnorderedList, ""); err != nil {
		t.Fatal(err)
	}
	if got, want := s.InnerHTML(), "<ul><li>item</li></ul>"; got != want {
		t.Errorf("InnerHTML() = %q, want %q", got, want)
	}
	if !s.QueryCommandState(CmdUnorderedList) {
		t.Error("unordered list not reported active")
	}
}

func TestToggleListConvertsType(t *testing.T) {
	s := NewSurface("<ul><li>item</li></ul>")
	selectText(t, s, "item", 0, 0)
	if err := s.ExecCommand(CmdOrderedList, ""); err != nil {
		t.Fatal(err)
	}
	if got, want := s.InnerHTML(), "<ol><li>item</li></ol>"; got != want {
		t.Errorf("InnerHTML() = %q, want %q", got, want)
	}
}

func TestToggleListUnwraps(t *testing.T) {
	s := NewSurface("<ul><li>item</li></ul>")
	selectText(t, s, "item", 0, 0)
	if err := s.ExecCommand(CmdUnorderedList, ""); err != nil {
		t.Fatal(err)
	}
	if got, want := s.InnerHTML(), "<p>item</p>"; got != want {
		t.Errorf("InnerHTML() = %q, want %q", got, want)
	}
}

func TestToggleListKeepsOtherItems(t *testing.T) {
	s := NewSurface("<ul><li>one</li><li>two</li></ul>")
	selectText(t, s, "two", 0, 0)
	if err := s.ExecCommand(CmdUnorderedList, ""); err != nil {
		t.Fatal(err)
	}
	if got, want := s.InnerHTML(), "<ul><li>one</li></ul><p>two</p>"; got != want {
		t.Errorf("InnerHTML() = %q, want %q", got, want)
	}
}

func TestBlockTag(t *testing.T) {
	s := NewSurface("<h2>title</h2>")
	selectText(t, s, "title", 0, 0)
	if got := s.BlockTag(); got != "h2" {
		t.Errorf("BlockTag() = %q, want %q", got, "h2")
	}
}
