package editor

import (
	"errors"
	"log/slog"

	"github.com/microcosm-cc/bluemonday"

	"github.com/marcus/quill/internal/markup"
)

// CompletionPath says how a mutation is reconciled: in place (soft) or via
// full teardown and rebuild of the surface from serialized content (hard).
type CompletionPath int

const (
	// SoftPath re-reads the live surface into pendingContent and leaves the
	// surface standing. Used for inline mutations where the live tree stays
	// authoritative and a remount would lose mid-edit caret state.
	SoftPath CompletionPath = iota

	// HardPath re-reads the live surface, bumps the remount token and
	// rebuilds the surface from pendingContent, then restores focus to end
	// of content. Used for structural mutations (embeds, drops, wholesale
	// replacement) whose inserted nodes must be freshly re-initialized.
	HardPath
)

// SurfaceState is the serialized-content view of the surface: the last
// committed content, the working content, and the remount token whose
// increments signal "rebuild the surface from pendingContent".
type SurfaceState struct {
	CommittedContent string
	PendingContent   string
	RemountToken     uint64
}

// ContentMutationPipeline is the single place content changes flow through:
// formatting commands, rich-content insertion, and wholesale replacement.
// It is the sole writer of PendingContent and RemountToken.
type ContentMutationPipeline struct {
	surface  *Surface
	ranges   *RangeStore
	tracker  *FormatStateTracker
	state    SurfaceState
	sanitize *bluemonday.Policy
	logger   *slog.Logger
}

// NewContentMutationPipeline wires the pipeline to its surface, range store
// and tracker. The sanitizer admits the formatting vocabulary the surface
// produces plus embed-block attributes.
func NewContentMutationPipeline(s *Surface, ranges *RangeStore, tracker *FormatStateTracker, logger *slog.Logger) *ContentMutationPipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContentMutationPipeline{
		surface:  s,
		ranges:   ranges,
		tracker:  tracker,
		sanitize: insertionPolicy(),
		logger:   logger,
		state:    SurfaceState{PendingContent: s.InnerHTML(), CommittedContent: s.InnerHTML()},
	}
}

// insertionPolicy builds the sanitizer for externally supplied rich content
// (AI responses, pasted markup). Embed blocks need their wrapper div, data
// attributes and drag markers to survive sanitization.
func insertionPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("id", "class", "contenteditable", "draggable").OnElements("div", "span")
	p.AllowAttrs("data-src", "data-desc", "data-self", "data-dragging").OnElements("div")
	return p
}

// State returns the pipeline's serialized-content view.
func (p *ContentMutationPipeline) State() SurfaceState { return p.state }

// RemountToken returns the current remount token.
func (p *ContentMutationPipeline) RemountToken() uint64 { return p.state.RemountToken }

// Surface returns the live surface the pipeline mutates.
func (p *ContentMutationPipeline) Surface() *Surface { return p.surface }

// MarkCommitted records content as the last committed version, typically
// after a successful save or on load.
func (p *ContentMutationPipeline) MarkCommitted(content string) {
	p.state.CommittedContent = content
}

// ApplyFormat focuses the surface, applies a formatting command, and takes
// the soft completion path: the live surface remains authoritative and a
// remount here would lose focus and selection mid-edit. Unsupported commands
// degrade silently.
func (p *ContentMutationPipeline) ApplyFormat(cmd Command, value string) {
	p.surface.Focus()
	if err := p.surface.ExecCommand(cmd, value); err != nil {
		if errors.Is(err, ErrUnsupportedCommand) {
			p.logger.Debug("format command unsupported", "command", string(cmd))
		} else {
			p.logger.Warn("format command failed", "command", string(cmd), "error", err)
		}
	}
	p.Complete(SoftPath)
}

// InsertRichContent inserts sanitized markup at the best-known insertion
// point. Point precedence: a previously captured range (saved before a
// dialog stole focus) if still attached, else the live selection if
// attached, else end of content. Any selected content at the point is
// replaced. Structural insertions (complex=true) take the hard path so the
// rebuilt surface re-initializes inserted blocks; plain inline content stays
// soft.
func (p *ContentMutationPipeline) InsertRichContent(src string, complex bool) {
	p.surface.Focus()

	target := p.resolveInsertionRange()
	caret := p.surface.DeleteRange(target)

	clean := p.sanitize.Sanitize(src)
	nodes, err := markup.ParseFragment(clean)
	if err != nil {
		// Fragment parsing is the rich-insertion primitive; without it,
		// degrade to appending the raw serialized string.
		p.logger.Warn("fragment parse failed, falling back to append", "error", err)
		p.state.PendingContent = p.surface.InnerHTML() + clean
		p.remount()
		return
	}
	after := p.surface.InsertFragment(caret, nodes)
	_ = p.surface.SetSelection(Caret(after))
	p.ranges.Save()

	if complex {
		p.Complete(HardPath)
	} else {
		p.Complete(SoftPath)
	}
}

// resolveInsertionRange picks where externally supplied content lands.
func (p *ContentMutationPipeline) resolveInsertionRange() Range {
	if saved, ok := p.ranges.Saved(); ok {
		_ = p.surface.SetSelection(saved)
		return saved
	}
	if sel, ok := p.surface.Selection(); ok && sel.Start.attached(p.surface.root) && sel.End.attached(p.surface.root) {
		return sel
	}
	end := p.surface.EndOfContent()
	return Caret(end)
}

// ReplaceAll swaps the document content wholesale. The pending content is set
// directly and the hard path always runs: nothing about the previous surface
// is reusable.
func (p *ContentMutationPipeline) ReplaceAll(src string) {
	p.state.PendingContent = src
	p.remount()
}

// SyncFromSurface re-reads the live surface into pendingContent without
// changing the remount token. Called after direct typing input.
func (p *ContentMutationPipeline) SyncFromSurface() {
	p.state.PendingContent = p.surface.InnerHTML()
}

// Complete finishes a mutation along the given path. Both paths re-read the
// live surface's markup into pendingContent; only the hard path tears the
// surface down, rebuilds it from that string, and restores focus to end of
// content (all prior anchors are invalid after the rebuild).
func (p *ContentMutationPipeline) Complete(path CompletionPath) {
	p.state.PendingContent = p.surface.InnerHTML()
	if path == HardPath {
		p.remount()
		return
	}
	p.tracker.Recompute()
}

func (p *ContentMutationPipeline) remount() {
	p.state.RemountToken++
	p.ranges.Invalidate()
	p.surface.SetInnerHTML(p.state.PendingContent)
	p.ranges.FocusAtEnd()
	p.tracker.Recompute()
}
