package editor

import (
	"log/slog"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// DefaultAutosaveQuiet is the debounce window after the last title or
// content change before an autosave fires.
const DefaultAutosaveQuiet = time.Second

// DocumentRef is the editor's working view of a persisted document.
type DocumentRef struct {
	ID      string
	Title   string
	Content string
}

// SaveFunc commits a working copy to the persistence collaborator. It is
// invoked from the autosave timer goroutine and must be safe to call there.
type SaveFunc func(id, title, content string) error

// Controller is the editing engine's composition root: it owns the working
// title, binds the mutation pipeline to a source document, and schedules
// debounced autosaves. Each change resets a single pending timer; only the
// most recent generation fires, so two autosaves never race for the same
// document.
type Controller struct {
	pipeline *ContentMutationPipeline
	save     SaveFunc
	quiet    time.Duration
	logger   *slog.Logger

	mu        sync.Mutex
	docID     string
	title     string
	content   string // snapshot of pendingContent for the timer goroutine
	committed uint64 // digest of the last committed title+content
	gen       int
	timer     *time.Timer
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithAutosaveQuiet overrides the debounce window.
func WithAutosaveQuiet(d time.Duration) ControllerOption {
	return func(c *Controller) {
		if d > 0 {
			c.quiet = d
		}
	}
}

// WithLogger sets the controller's logger.
func WithLogger(l *slog.Logger) ControllerOption {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewController builds a controller around a pipeline. save may be nil, in
// which case autosave is disabled (useful in tests of pure editing).
func NewController(pipeline *ContentMutationPipeline, save SaveFunc, opts ...ControllerOption) *Controller {
	c := &Controller{
		pipeline: pipeline,
		save:     save,
		quiet:    DefaultAutosaveQuiet,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Pipeline returns the mutation pipeline the controller composes.
func (c *Controller) Pipeline() *ContentMutationPipeline { return c.pipeline }

func digest(title, content string) uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(title)
	_, _ = h.Write([]byte{0})
	_, _ = h.WriteString(content)
	return h.Sum64()
}

// Load points the editor at a new source document: the working title and
// content reset, any pending autosave is cancelled (a stale write must not
// land on the wrong document after navigation), and the surface is force-
// remounted — nothing about the previous surface is reusable.
func (c *Controller) Load(doc DocumentRef) {
	c.mu.Lock()
	c.cancelTimerLocked()
	c.docID = doc.ID
	c.title = doc.Title
	c.content = doc.Content
	c.committed = digest(doc.Title, doc.Content)
	c.mu.Unlock()

	c.pipeline.ReplaceAll(doc.Content)
	c.pipeline.MarkCommitted(doc.Content)
}

// SetTitle updates the working title and reschedules autosave.
func (c *Controller) SetTitle(title string) {
	c.mu.Lock()
	c.title = title
	c.mu.Unlock()
	c.scheduleAutosave()
}

// ContentChanged re-reads the live surface into pendingContent (direct
// typing bypasses the pipeline's operations) and reschedules autosave.
func (c *Controller) ContentChanged() {
	c.pipeline.SyncFromSurface()
	c.Touch()
}

// Touch snapshots the pipeline's pending content for the autosave timer and
// reschedules it. Call after any pipeline operation.
func (c *Controller) Touch() {
	pending := c.pipeline.State().PendingContent
	c.mu.Lock()
	c.content = pending
	c.mu.Unlock()
	c.scheduleAutosave()
}

// Title returns the working title.
func (c *Controller) Title() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.title
}

// DocumentID returns the id of the loaded document.
func (c *Controller) DocumentID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.docID
}

// Dirty reports whether the working copy diverges from the last committed
// version.
func (c *Controller) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return digest(c.title, c.content) != c.committed
}

// scheduleAutosave resets the single pending debounce timer. The generation
// check in the callback ensures only the most recent reset fires.
func (c *Controller) scheduleAutosave() {
	if c.save == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	gen := c.gen
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.quiet, func() { c.autosave(gen) })
}

func (c *Controller) autosave(gen int) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	id, title, content := c.docID, c.title, c.content
	want := digest(title, content)
	dirty := want != c.committed
	c.mu.Unlock()

	if !dirty || id == "" {
		return
	}
	if err := c.save(id, title, content); err != nil {
		// Working state is untouched; the next change or flush retries.
		c.logger.Warn("autosave failed", "id", id, "error", err)
		return
	}
	c.mu.Lock()
	c.committed = want
	c.mu.Unlock()
}

// Flush cancels the debounce wait and saves immediately when dirty. Used by
// the explicit "done editing" action.
func (c *Controller) Flush() error {
	c.mu.Lock()
	c.cancelTimerLocked()
	id, title, content := c.docID, c.title, c.content
	want := digest(title, content)
	dirty := want != c.committed
	c.mu.Unlock()

	if !dirty || id == "" || c.save == nil {
		return nil
	}
	if err := c.save(id, title, content); err != nil {
		return err
	}
	c.mu.Lock()
	c.committed = want
	c.mu.Unlock()
	return nil
}

// Close cancels any pending autosave without saving. Used when the document
// is closed or replaced.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelTimerLocked()
}

func (c *Controller) cancelTimerLocked() {
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
