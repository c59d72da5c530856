package editor

import (
	"errors"
	"sync"
	"testing"
	"time"
)

type saveRecorder struct {
	mu    sync.Mutex
	saves []DocumentRef
	err   error
}

func (r *saveRecorder) save(id, title, content string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.saves = append(r.saves, DocumentRef{ID: id, Title: title, Content: content})
	return nil
}

func (r *saveRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.saves)
}

func (r *saveRecorder) last(t *testing.T) DocumentRef {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.saves) == 0 {
		t.Fatal("no saves recorded")
	}
	return r.saves[len(r.saves)-1]
}

func newTestController(t *testing.T, rec *saveRecorder, quiet time.Duration) *Controller {
	t.Helper()
	e := newTestEngine(t, "")
	return NewController(e.pipeline, rec.save, WithAutosaveQuiet(quiet))
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestAutosaveAfterQuietPeriod(t *testing.T) {
	rec := &saveRecorder{}
	c := newTestController(t, rec, 20*time.Millisecond)
	c.Load(DocumentRef{ID: "doc-1", Title: "old", Content: "<p>body</p>"})

	c.SetTitle("new")

	waitFor(t, time.Second, func() bool { return rec.count() == 1 })
	got := rec.last(t)
	if got.ID != "doc-1" || got.Title != "new" {
		t.Errorf("saved %+v, want id doc-1 title new", got)
	}
	if c.Dirty() {
		t.Error("controller still dirty after autosave")
	}
}

func TestAutosaveSkipsCleanState(t *testing.T) {
	rec := &saveRecorder{}
	c := newTestController(t, rec, 10*time.Millisecond)
	c.Load(DocumentRef{ID: "doc-1", Title: "t", Content: "<p>body</p>"})

	// Setting the same title leaves the digest unchanged.
	c.SetTitle("t")

	time.Sleep(60 * time.Millisecond)
	if got := rec.count(); got != 0 {
		t.Errorf("saves = %d, want 0 for clean state", got)
	}
}

func TestAutosaveDebounceCoalesces(t *testing.T) {
	rec := &saveRecorder{}
	c := newTestController(t, rec, 40*time.Millisecond)
	c.Load(DocumentRef{ID: "doc-1", Title: "t", Content: ""})

	c.SetTitle("a")
	time.Sleep(10 * time.Millisecond)
	c.SetTitle("ab")
	time.Sleep(10 * time.Millisecond)
	c.SetTitle("abc")

	waitFor(t, time.Second, func() bool { return rec.count() >= 1 })
	time.Sleep(60 * time.Millisecond)
	if got := rec.count(); got != 1 {
		t.Errorf("saves = %d, want 1 coalesced save", got)
	}
	if got := rec.last(t).Title; got != "abc" {
		t.Errorf("saved title %q, want %q", got, "abc")
	}
}

func TestLoadCancelsPendingAutosave(t *testing.T) {
	rec := &saveRecorder{}
	c := newTestController(t, rec, 30*time.Millisecond)
	c.Load(DocumentRef{ID: "doc-1", Title: "t", Content: ""})

	c.SetTitle("changed")
	// Navigating away before the quiet period elapses must drop the save.
	c.Load(DocumentRef{ID: "doc-2", Title: "other", Content: "<p>x</p>"})

	time.Sleep(100 * time.Millisecond)
	if got := rec.count(); got != 0 {
		t.Errorf("saves = %d, want 0 after navigation", got)
	}
	if got := c.DocumentID(); got != "doc-2" {
		t.Errorf("DocumentID() = %q, want doc-2", got)
	}
}

func TestLoadForcesRemount(t *testing.T) {
	rec := &saveRecorder{}
	c := newTestController(t, rec, time.Hour)
	before := c.Pipeline().RemountToken()

	c.Load(DocumentRef{ID: "doc-1", Title: "t", Content: "<p>loaded</p>"})

	if got := c.Pipeline().RemountToken(); got != before+1 {
		t.Errorf("remount token = %d, want %d", got, before+1)
	}
	if got, want := c.Pipeline().Surface().InnerHTML(), "<p>loaded</p>"; got != want {
		t.Errorf("InnerHTML() = %q, want %q", got, want)
	}
	if got, want := c.Pipeline().State().CommittedContent, "<p>loaded</p>"; got != want {
		t.Errorf("CommittedContent = %q, want %q", got, want)
	}
}

func TestFlushSavesImmediately(t *testing.T) {
	rec := &saveRecorder{}
	c := newTestController(t, rec, time.Hour)
	c.Load(DocumentRef{ID: "doc-1", Title: "t", Content: ""})

	c.SetTitle("done")
	if err := c.Flush(); err != nil {
		t.Fatal(err)
	}
	if got := rec.count(); got != 1 {
		t.Fatalf("saves = %d, want 1", got)
	}
	if c.Dirty() {
		t.Error("controller dirty after flush")
	}

	// A second flush with nothing new saves nothing.
	if err := c.Flush(); err != nil {
		t.Fatal(err)
	}
	if got := rec.count(); got != 1 {
		t.Errorf("saves = %d after clean flush, want 1", got)
	}
}

func TestFlushPropagatesSaveError(t *testing.T) {
	wantErr := errors.New("disk full")
	rec := &saveRecorder{err: wantErr}
	c := newTestController(t, rec, time.Hour)
	c.Load(DocumentRef{ID: "doc-1", Title: "t", Content: ""})

	c.SetTitle("changed")
	if err := c.Flush(); !errors.Is(err, wantErr) {
		t.Fatalf("Flush() error = %v, want %v", err, wantErr)
	}
	if !c.Dirty() {
		t.Error("failed save marked the state clean")
	}
}

func TestCloseCancelsPendingAutosave(t *testing.T) {
	rec := &saveRecorder{}
	c := newTestController(t, rec, 20*time.Millisecond)
	c.Load(DocumentRef{ID: "doc-1", Title: "t", Content: ""})

	c.SetTitle("changed")
	c.Close()

	time.Sleep(80 * time.Millisecond)
	if got := rec.count(); got != 0 {
		t.Errorf("saves = %d, want 0 after close", got)
	}
}

func TestTouchTracksPipelineContent(t *testing.T) {
	rec := &saveRecorder{}
	c := newTestController(t, rec, 15*time.Millisecond)
	c.Load(DocumentRef{ID: "doc-1", Title: "t", Content: "<p>hi</p>"})

	s := c.Pipeline().Surface()
	tn := textNamed(t, s, "hi")
	if err := s.SetSelection(Caret(Anchor{Node: tn, Offset: 2})); err != nil {
		t.Fatal(err)
	}
	s.InsertText("!")
	c.ContentChanged()

	waitFor(t, time.Second, func() bool { return rec.count() == 1 })
	if got, want := rec.last(t).Content, "<p>hi!</p>"; got != want {
		t.Errorf("saved content %q, want %q", got, want)
	}
}
