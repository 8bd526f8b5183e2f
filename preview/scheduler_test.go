// ABOUTME: Tests for the debounced render scheduler and its pending-render token semantics.
// ABOUTME: Verifies burst collapsing, supersession, flush, stop, and render hooks.
package preview

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/scratchpen/scratchpen/pad"
)

// recordingSurface captures every document assigned to it.
type recordingSurface struct {
	mu   sync.Mutex
	docs []string
}

func (r *recordingSurface) SetContent(doc string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs = append(r.docs, doc)
}

func (r *recordingSurface) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.docs)
}

func (r *recordingSurface) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.docs) == 0 {
		return ""
	}
	return r.docs[len(r.docs)-1]
}

func editedFileSet(t *testing.T, markup string) *pad.FileSet {
	t.Helper()
	fs := pad.NewFileSet()
	fs.AddFile(pad.KindMarkup)
	if err := fs.SetContent(pad.KindMarkup, 0, markup); err != nil {
		t.Fatalf("SetContent: %v", err)
	}
	return fs
}

// waitForRenders polls until the surface has seen n documents or the deadline
// passes.
func waitForRenders(t *testing.T, surface *recordingSurface, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if surface.count() >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d renders, saw %d", n, surface.count())
}

func TestBurstCollapsesToOneRender(t *testing.T) {
	surface := &recordingSurface{}
	s := NewScheduler(surface, WithDelay(40*time.Millisecond))
	defer s.Stop()

	// Rapid sequential edits inside the debounce window.
	for i, body := range []string{"<p>a</p>", "<p>ab</p>", "<p>abc</p>"} {
		s.Schedule(editedFileSet(t, body))
		if i < 2 {
			time.Sleep(5 * time.Millisecond)
		}
	}

	waitForRenders(t, surface, 1)
	// Give any stray superseded timer a chance to misfire.
	time.Sleep(100 * time.Millisecond)

	if got := surface.count(); got != 1 {
		t.Fatalf("expected exactly one render for the burst, got %d", got)
	}
	if !strings.Contains(surface.last(), "<p>abc</p>") {
		t.Errorf("render must reflect only the final state, got:\n%s", surface.last())
	}
	if strings.Contains(surface.last(), "<p>ab</p>\n") {
		t.Error("render reflects a superseded intermediate state")
	}
}

func TestScheduleAfterQuietPeriodRendersAgain(t *testing.T) {
	surface := &recordingSurface{}
	s := NewScheduler(surface, WithDelay(20*time.Millisecond))
	defer s.Stop()

	s.Schedule(editedFileSet(t, "<p>first</p>"))
	waitForRenders(t, surface, 1)

	s.Schedule(editedFileSet(t, "<p>second</p>"))
	waitForRenders(t, surface, 2)

	if !strings.Contains(surface.last(), "<p>second</p>") {
		t.Errorf("second render missing new content:\n%s", surface.last())
	}
}

func TestFlushRendersPendingImmediately(t *testing.T) {
	surface := &recordingSurface{}
	s := NewScheduler(surface, WithDelay(10*time.Second))
	defer s.Stop()

	s.Schedule(editedFileSet(t, "<p>flushed</p>"))
	s.Flush()

	if got := surface.count(); got != 1 {
		t.Fatalf("expected flush to render once, got %d renders", got)
	}
	if !strings.Contains(surface.last(), "<p>flushed</p>") {
		t.Error("flushed render missing pending content")
	}

	// The long timer must not fire a second render later.
	doc, rev := s.Document()
	if rev != 1 {
		t.Errorf("expected revision 1, got %d", rev)
	}
	if doc != surface.last() {
		t.Error("Document() disagrees with the surface")
	}
}

func TestStopCancelsPendingRender(t *testing.T) {
	surface := &recordingSurface{}
	s := NewScheduler(surface, WithDelay(20*time.Millisecond))

	s.Schedule(editedFileSet(t, "<p>never</p>"))
	s.Stop()

	time.Sleep(80 * time.Millisecond)
	if got := surface.count(); got != 0 {
		t.Fatalf("stopped scheduler rendered %d times", got)
	}
}

func TestScheduledStateIsIsolatedFromLaterEdits(t *testing.T) {
	surface := &recordingSurface{}
	s := NewScheduler(surface, WithDelay(20*time.Millisecond))
	defer s.Stop()

	fs := editedFileSet(t, "<p>captured</p>")
	s.Schedule(fs)
	// Mutate after scheduling; the render must not see this.
	fs.SetContent(pad.KindMarkup, 0, "<p>mutated</p>")

	waitForRenders(t, surface, 1)
	if strings.Contains(surface.last(), "<p>mutated</p>") {
		t.Error("render observed a mutation made after scheduling")
	}
}

func TestRenderDiscardsSupersededPendingState(t *testing.T) {
	surface := &recordingSurface{}
	s := NewScheduler(surface, WithDelay(20*time.Millisecond))
	defer s.Stop()

	s.Schedule(editedFileSet(t, "<p>stale</p>"))
	s.Render(editedFileSet(t, "<p>fresh</p>"))

	// Let the superseded timer expire, then flush: nothing pending may
	// remain, and the stale state must never reach the surface.
	time.Sleep(80 * time.Millisecond)
	s.Flush()

	if got := surface.count(); got != 1 {
		t.Fatalf("expected exactly one render, got %d", got)
	}
	doc, rev := s.Document()
	if !strings.Contains(doc, "<p>fresh</p>") {
		t.Errorf("document must hold the synchronous render, got:\n%s", doc)
	}
	if strings.Contains(doc, "<p>stale</p>") {
		t.Error("flush replayed a superseded scheduled state")
	}
	if rev != 1 {
		t.Errorf("expected revision 1, got %d", rev)
	}
}

func TestRenderHookReportsRevisions(t *testing.T) {
	surface := &recordingSurface{}
	var mu sync.Mutex
	var revs []uint64
	s := NewScheduler(surface,
		WithDelay(10*time.Millisecond),
		WithRenderHook(func(rev uint64) {
			mu.Lock()
			revs = append(revs, rev)
			mu.Unlock()
		}),
	)
	defer s.Stop()

	s.Render(editedFileSet(t, "<p>one</p>"))
	s.Schedule(editedFileSet(t, "<p>two</p>"))
	waitForRenders(t, surface, 2)

	mu.Lock()
	defer mu.Unlock()
	if len(revs) != 2 || revs[0] != 1 || revs[1] != 2 {
		t.Errorf("expected hook revisions [1 2], got %v", revs)
	}
}
