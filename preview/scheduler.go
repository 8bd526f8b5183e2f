// ABOUTME: Debounced render scheduler that keeps a render surface in sync with FileSet edits.
// ABOUTME: Uses a generation token so a superseded pending render drops itself instead of firing.
package preview

import (
	"sync"
	"time"

	"github.com/scratchpen/scratchpen/pad"
)

// DefaultDelay is the quiet period an edit burst must observe before a render
// fires.
const DefaultDelay = 400 * time.Millisecond

// Surface accepts a composed document for display. The surface is an external
// collaborator (an iframe, a websocket hub, a test recorder); it isolates the
// previewed content from the host and is only ever written by the Scheduler.
type Surface interface {
	SetContent(doc string)
}

// Scheduler debounces renders. Each Schedule call captures the current FileSet
// and (re)starts the delay timer; a render still pending when a newer change
// arrives is invalidated and replaced, so at most one render is pending and
// only the most recent scheduled state is ever composed. Renders run under the
// scheduler mutex and therefore never overlap.
type Scheduler struct {
	mu       sync.Mutex
	surface  Surface
	delay    time.Duration
	onRender func(rev uint64)

	gen     uint64
	pending *pad.FileSet
	timer   *time.Timer
	lastDoc string
	rev     uint64
}

// SchedulerOption configures optional Scheduler behavior.
type SchedulerOption func(*Scheduler)

// WithDelay overrides the debounce delay.
func WithDelay(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if d > 0 {
			s.delay = d
		}
	}
}

// WithRenderHook registers a callback invoked after each completed render with
// the new document revision. The callback runs outside the scheduler lock.
func WithRenderHook(fn func(rev uint64)) SchedulerOption {
	return func(s *Scheduler) {
		s.onRender = fn
	}
}

// NewScheduler creates a Scheduler writing to the given surface.
func NewScheduler(surface Surface, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		surface: surface,
		delay:   DefaultDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule records the FileSet as the next render state and restarts the
// debounce timer. The FileSet is cloned so later caller mutations cannot leak
// into an in-flight render.
func (s *Scheduler) Schedule(fs *pad.FileSet) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	token := s.gen
	s.pending = fs.Clone()

	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, func() {
		s.fire(token)
	})
}

// Flush renders any pending state immediately, cancelling the timer. A no-op
// when nothing is pending.
func (s *Scheduler) Flush() {
	s.mu.Lock()
	token := s.gen
	s.mu.Unlock()
	s.fire(token)
}

// Stop cancels any pending render without firing it.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++ // invalidate the outstanding token
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = nil
}

// Render composes and assigns synchronously, bypassing the debounce. Used for
// the initial render of a freshly loaded session.
func (s *Scheduler) Render(fs *pad.FileSet) {
	s.mu.Lock()
	s.gen++ // supersede any pending debounced render
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = nil
	doc := Compose(fs)
	rev := s.assignLocked(doc)
	hook := s.onRender
	s.mu.Unlock()

	if hook != nil {
		hook(rev)
	}
}

// Document returns the most recently rendered document and its revision.
func (s *Scheduler) Document() (string, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastDoc, s.rev
}

// fire runs the pending render if the token is still current. A stale token
// means a newer Schedule or Stop superseded this render.
func (s *Scheduler) fire(token uint64) {
	s.mu.Lock()
	if token != s.gen || s.pending == nil {
		s.mu.Unlock()
		return
	}
	fs := s.pending
	s.pending = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	doc := Compose(fs)
	rev := s.assignLocked(doc)
	hook := s.onRender
	s.mu.Unlock()

	if hook != nil {
		hook(rev)
	}
}

// assignLocked pushes the document to the surface and bumps the revision.
// Callers must hold s.mu.
func (s *Scheduler) assignLocked(doc string) uint64 {
	s.lastDoc = doc
	s.rev++
	if s.surface != nil {
		s.surface.SetContent(doc)
	}
	return s.rev
}
