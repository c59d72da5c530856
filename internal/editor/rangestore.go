package editor

// RangeStore retains the last known cursor/selection range so it can be
// restored after an operation that steals native focus (an AI-assist dialog,
// an upload dialog). It decouples editing logic from ambient focus state:
// callers save before handing control away and restore before acting on the
// collaborator's response.
type RangeStore struct {
	surface *Surface
	saved   *Range
}

// NewRangeStore binds a store to its surface.
func NewRangeStore(s *Surface) *RangeStore {
	return &RangeStore{surface: s}
}

// Save retains a copy of the current selection if it lies within the
// surface. A selection outside the surface (or none at all) never clobbers a
// previously stored valid range.
func (rs *RangeStore) Save() {
	sel, ok := rs.surface.Selection()
	if !ok {
		return
	}
	if !sel.Start.attached(rs.surface.root) || !sel.End.attached(rs.surface.root) {
		return
	}
	clone := sel
	rs.saved = &clone
}

// Restore re-focuses the surface and reapplies the retained range as the
// active selection. It reports whether a restore happened; nothing happens
// when no range is retained or its anchors no longer hang off the surface
// (the caller detects rebuilds via the remount token, not through the
// store).
func (rs *RangeStore) Restore() bool {
	if rs.saved == nil {
		return false
	}
	if !rs.saved.Start.attached(rs.surface.root) || !rs.saved.End.attached(rs.surface.root) {
		return false
	}
	rs.surface.Focus()
	return rs.surface.SetSelection(*rs.saved) == nil
}

// Saved returns the retained range when it is still attached to the surface.
func (rs *RangeStore) Saved() (Range, bool) {
	if rs.saved == nil {
		return Range{}, false
	}
	if !rs.saved.Start.attached(rs.surface.root) || !rs.saved.End.attached(rs.surface.root) {
		return Range{}, false
	}
	return *rs.saved, true
}

// Invalidate drops the retained range. Called when the surface is rebuilt,
// since every prior anchor is detached afterwards.
func (rs *RangeStore) Invalidate() {
	rs.saved = nil
}

// FocusAtEnd focuses the surface and collapses a fresh selection to the end
// of all content. Used after a hard remount, when all prior ranges are
// invalid.
func (rs *RangeStore) FocusAtEnd() {
	rs.surface.Focus()
	end := rs.surface.EndOfContent()
	_ = rs.surface.SetSelection(Caret(end))
}
