package editor

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/marcus/quill/internal/markup"
)

// ErrInvalidEmbedSource rejects an embed with an empty or blank source URL
// before any state change.
var ErrInvalidEmbedSource = errors.New("editor: embed source must be a non-empty URL")

const (
	// embedClass marks embedded block wrapper elements in content markup.
	embedClass = "embed-block"

	// attrSelf stores the block's own serialized markup so a drag can move
	// the exact bytes without depending on tree-walk serialization.
	attrSelf = "data-self"

	attrSrc  = "data-src"
	attrDesc = "data-desc"

	// defaultEmbedLabel is used when neither a description nor a file name
	// is available.
	defaultEmbedLabel = "Image"

	// nbsp trails every embed so the caret has a stable insertion point
	// immediately after the block.
	nbsp = "\u00a0"
)

// EmbeddedBlock is a built, ready-to-insert embed: an atomic, non-editable,
// draggable unit placed inline in the document content.
type EmbeddedBlock struct {
	ID          string
	SourceURL   string
	Description string
	// Markup is the block followed by a non-breaking-space placeholder.
	Markup string
}

// BlockEmbedBuilder constructs embedded image blocks. IDs are time-derived
// and unique within a builder even when built in the same millisecond.
type BlockEmbedBuilder struct {
	now       func() time.Time
	lastStamp int64
	seq       int
}

// NewBlockEmbedBuilder returns a builder using the wall clock.
func NewBlockEmbedBuilder() *BlockEmbedBuilder {
	return &BlockEmbedBuilder{now: time.Now}
}

// Build validates the source URL and produces the embed markup. Description
// precedence: explicit description, then fallback file name, then a default
// label. The emitted block carries its own serialized markup in a data-self
// attribute and is always followed by a non-breaking space.
func (b *BlockEmbedBuilder) Build(sourceURL, description, fallbackName string) (EmbeddedBlock, error) {
	if strings.TrimSpace(sourceURL) == "" {
		return EmbeddedBlock{}, ErrInvalidEmbedSource
	}

	desc := strings.TrimSpace(description)
	if desc == "" {
		desc = strings.TrimSpace(fallbackName)
	}
	if desc == "" {
		desc = defaultEmbedLabel
	}

	id := b.nextID()
	self := fmt.Sprintf(
		`<div id="%s" class="%s" contenteditable="false" draggable="true" %s="%s" %s="%s"><span class="embed-label">%s</span></div>`,
		id, embedClass,
		attrSrc, markup.EscapeString(sourceURL),
		attrDesc, markup.EscapeString(desc),
		markup.EscapeString(desc),
	) + nbsp

	// Re-parse the block to attach data-self, so the attribute holds exactly
	// the markup a drop will splice back in.
	nodes, err := markup.ParseFragment(self)
	if err != nil || len(nodes) == 0 {
		return EmbeddedBlock{}, fmt.Errorf("build embed markup: %w", err)
	}
	markup.SetAttr(nodes[0], attrSelf, self)

	var full strings.Builder
	for _, n := range nodes {
		full.WriteString(markup.Render(n))
	}

	return EmbeddedBlock{
		ID:          id,
		SourceURL:   sourceURL,
		Description: desc,
		Markup:      full.String(),
	}, nil
}

// nextID derives a unique id from the current time, bumping a sequence when
// two builds land in the same millisecond.
func (b *BlockEmbedBuilder) nextID() string {
	stamp := b.now().UnixMilli()
	if stamp == b.lastStamp {
		b.seq++
	} else {
		b.lastStamp = stamp
		b.seq = 0
	}
	if b.seq == 0 {
		return fmt.Sprintf("embed-%d", stamp)
	}
	return fmt.Sprintf("embed-%d-%d", stamp, b.seq)
}
