package editor

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/marcus/quill/internal/markup"
)

func TestBuildRejectsBlankSource(t *testing.T) {
	b := NewBlockEmbedBuilder()
	for _, src := range []string{"", "   ", "\t"} {
		if _, err := b.Build(src, "desc", "file.png"); !errors.Is(err, ErrInvalidEmbedSource) {
			t.Errorf("Build(%q) error = %v, want ErrInvalidEmbedSource", src, err)
		}
	}
}

func TestBuildDescriptionPrecedence(t *testing.T) {
	tests := []struct {
		desc, fallback, want string
	}{
		{"a sunset", "photo.png", "a sunset"},
		{"", "photo.png", "photo.png"},
		{"  ", "photo.png", "photo.png"},
		{"", "", "Image"},
	}
	b := NewBlockEmbedBuilder()
	for _, tt := range tests {
		block, err := b.Build("https://example.com/i.png", tt.desc, tt.fallback)
		if err != nil {
			t.Fatalf("Build(%q, %q): %v", tt.desc, tt.fallback, err)
		}
		if block.Description != tt.want {
			t.Errorf("Build(%q, %q).Description = %q, want %q", tt.desc, tt.fallback, block.Description, tt.want)
		}
	}
}

func TestBuildMarkupShape(t *testing.T) {
	b := NewBlockEmbedBuilder()
	block, err := b.Build("https://example.com/i.png", "a sunset", "")
	if err != nil {
		t.Fatal(err)
	}

	nodes, err := markup.ParseFragment(block.Markup)
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 2 {
		t.Fatalf("fragment has %d top-level nodes, want block + placeholder", len(nodes))
	}
	div := nodes[0]
	if !markup.IsElement(div, "div") || !markup.HasClass(div, "embed-block") {
		t.Fatalf("first node = %q, want embed-block div", markup.Render(div))
	}
	if got := markup.Attr(div, "id"); got != block.ID {
		t.Errorf("id = %q, want %q", got, block.ID)
	}
	if got := markup.Attr(div, "contenteditable"); got != "false" {
		t.Errorf("contenteditable = %q, want false", got)
	}
	if got := markup.Attr(div, "draggable"); got != "true" {
		t.Errorf("draggable = %q, want true", got)
	}
	if got := markup.Attr(div, "data-src"); got != "https://example.com/i.png" {
		t.Errorf("data-src = %q", got)
	}
	if got := markup.Attr(div, "data-desc"); got != "a sunset" {
		t.Errorf("data-desc = %q", got)
	}
	if self := markup.Attr(div, "data-self"); !strings.Contains(self, block.ID) {
		t.Errorf("data-self = %q, want self-serialized markup", self)
	}
	if !markup.IsText(nodes[1]) || nodes[1].Data != nbsp {
		t.Errorf("second node = %q, want a non-breaking space", markup.Render(nodes[1]))
	}
}

func TestBuildIDsUniqueWithinMillisecond(t *testing.T) {
	fixed := time.UnixMilli(1700000000000)
	b := &BlockEmbedBuilder{now: func() time.Time { return fixed }}

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		block, err := b.Build("https://example.com/i.png", "", "")
		if err != nil {
			t.Fatal(err)
		}
		if seen[block.ID] {
			t.Fatalf("duplicate id %q", block.ID)
		}
		seen[block.ID] = true
	}
}
