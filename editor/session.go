// ABOUTME: Session struct owning one playground's FileSet, UI state, undo/redo, and render scheduling.
// ABOUTME: Mutations push a snapshot to the undo stack, persist advisorily, and debounce a re-render.
package editor

import (
	"fmt"
	"sync"
	"time"

	"github.com/scratchpen/scratchpen/pad"
	"github.com/scratchpen/scratchpen/preview"
	"github.com/scratchpen/scratchpen/store"
)

// undoDepth bounds the undo and redo stacks.
const undoDepth = 50

// Saver receives advisory persistence callbacks after each mutation.
// Implementations must swallow their own failures.
type Saver func(key string, fs *pad.FileSet, ui pad.UIState)

// Session is one live playground: a FileSet, its UI settings, undo/redo
// snapshot stacks, and the debounced render scheduler feeding the session's
// preview surface.
type Session struct {
	mu         sync.RWMutex
	ID         string
	files      *pad.FileSet
	ui         pad.UIState
	undoStack  [][]byte
	redoStack  [][]byte
	sched      *preview.Scheduler
	saver      Saver
	CreatedAt  time.Time
	LastAccess time.Time
}

// State returns deep copies of the session's FileSet and UI state for safe
// use outside the session lock.
func (sess *Session) State() (*pad.FileSet, pad.UIState) {
	sess.mu.RLock()
	defer sess.mu.RUnlock()
	return sess.files.Clone(), sess.ui
}

// PreviewDocument returns the most recently rendered preview document and its
// revision.
func (sess *Session) PreviewDocument() (string, uint64) {
	return sess.sched.Document()
}

// AddFile appends a new file of the kind with generated name and placeholder
// content, makes it active, and returns its kind-relative index.
func (sess *Session) AddFile(kind pad.Kind) int {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.pushUndo()
	idx := sess.files.AddFile(kind)
	sess.afterMutation(true)
	return idx
}

// RemoveFile removes a file. Removing the last file of a kind is rejected
// silently: the session is unchanged and the return value is false.
func (sess *Session) RemoveFile(kind pad.Kind, index int) bool {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	snap := sess.encode()
	if !sess.files.RemoveFile(kind, index) {
		return false
	}
	sess.pushUndoSnapshot(snap)
	sess.afterMutation(true)
	return true
}

// RenameFile replaces a file's name. Duplicates are permitted.
func (sess *Session) RenameFile(kind pad.Kind, index int, newName string) error {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	snap := sess.encode()
	if err := sess.files.RenameFile(kind, index, newName); err != nil {
		return err
	}
	sess.pushUndoSnapshot(snap)
	sess.afterMutation(false)
	return nil
}

// SetContent replaces a file's content verbatim and schedules a debounced
// re-render.
func (sess *Session) SetContent(kind pad.Kind, index int, text string) error {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	snap := sess.encode()
	if err := sess.files.SetContent(kind, index, text); err != nil {
		return err
	}
	sess.pushUndoSnapshot(snap)
	sess.afterMutation(true)
	return nil
}

// SelectFile updates the active pointer for a kind, clamping out-of-range
// input to the nearest valid index. Selection does not affect the composed
// preview, so no render is scheduled.
func (sess *Session) SelectFile(kind pad.Kind, index int) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	count := sess.files.CountOfKind(kind)
	if count == 0 {
		return
	}
	if index < 0 {
		index = 0
	}
	if index >= count {
		index = count - 1
	}
	if err := sess.files.SetActive(kind, index); err != nil {
		return
	}
	sess.afterMutation(false)
}

// SetUI replaces the session's UI settings record.
func (sess *Session) SetUI(ui pad.UIState) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.ui = ui.Normalize()
	sess.afterMutation(false)
}

// Replace swaps in a wholly new FileSet and UI state (zip import). The
// previous state lands on the undo stack.
func (sess *Session) Replace(fs *pad.FileSet, ui pad.UIState) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.pushUndo()
	sess.files = fs.Clone()
	sess.ui = ui.Normalize()
	sess.afterMutation(true)
}

// Undo restores the state before the most recent mutation.
func (sess *Session) Undo() error {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if len(sess.undoStack) == 0 {
		return fmt.Errorf("nothing to undo")
	}

	prev := sess.undoStack[len(sess.undoStack)-1]
	sess.undoStack = sess.undoStack[:len(sess.undoStack)-1]

	if current := sess.encode(); current != nil {
		sess.redoStack = append(sess.redoStack, current)
		if len(sess.redoStack) > undoDepth {
			sess.redoStack = sess.redoStack[1:]
		}
	}

	if err := sess.restore(prev); err != nil {
		return fmt.Errorf("restore previous state: %w", err)
	}
	sess.afterMutation(true)
	return nil
}

// Redo reapplies a previously undone mutation.
func (sess *Session) Redo() error {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if len(sess.redoStack) == 0 {
		return fmt.Errorf("nothing to redo")
	}

	next := sess.redoStack[len(sess.redoStack)-1]
	sess.redoStack = sess.redoStack[:len(sess.redoStack)-1]

	if current := sess.encode(); current != nil {
		sess.undoStack = append(sess.undoStack, current)
		if len(sess.undoStack) > undoDepth {
			sess.undoStack = sess.undoStack[1:]
		}
	}

	if err := sess.restore(next); err != nil {
		return fmt.Errorf("restore next state: %w", err)
	}
	sess.afterMutation(true)
	return nil
}

// Flush forces any pending debounced render to run now.
func (sess *Session) Flush() {
	sess.sched.Flush()
}

// Close stops the scheduler, dropping any pending render.
func (sess *Session) Close() {
	sess.sched.Stop()
}

// encode serializes the current state for the undo stacks. Returns nil on
// failure; an unsnapshottable state simply is not undoable.
func (sess *Session) encode() []byte {
	data, err := store.EncodeSnapshot(sess.files, sess.ui)
	if err != nil {
		return nil
	}
	return data
}

// restore replaces files and UI from a snapshot. Callers hold the lock.
func (sess *Session) restore(snap []byte) error {
	fs, ui, err := store.DecodeSnapshot(snap)
	if err != nil {
		return err
	}
	sess.files = fs
	sess.ui = ui
	return nil
}

// pushUndo snapshots the current state onto the undo stack and clears redo.
func (sess *Session) pushUndo() {
	sess.pushUndoSnapshot(sess.encode())
}

// pushUndoSnapshot pushes a pre-captured snapshot. Used when the caller must
// capture state before knowing whether the mutation will be permitted.
func (sess *Session) pushUndoSnapshot(snap []byte) {
	if snap == nil {
		return
	}
	sess.undoStack = append(sess.undoStack, snap)
	if len(sess.undoStack) > undoDepth {
		sess.undoStack = sess.undoStack[1:]
	}
	sess.redoStack = nil
}

// afterMutation persists advisorily and, for content-affecting changes,
// schedules a debounced render. Callers hold the lock; the scheduler clones
// the FileSet so the render cannot race later mutations.
func (sess *Session) afterMutation(contentChanged bool) {
	if sess.saver != nil {
		sess.saver(sess.ID, sess.files.Clone(), sess.ui)
	}
	if contentChanged {
		sess.sched.Schedule(sess.files)
	}
}
