package state

import (
	"errors"
	"sync"
)

// MaxHistorySteps bounds the undo depth; the oldest snapshot is evicted
// once the stack is full.
const MaxHistorySteps = 20

var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// History is a bounded, linear undo/redo stack of full Document
// snapshots with a cursor. Recording discards the redo branch; the first
// recorded snapshot becomes entry 0.
type History struct {
	mu      sync.Mutex
	entries []*Document
	cursor  int
	max     int
}

// NewHistory creates a history bounded to max snapshots.
func NewHistory(max int) *History {
	if max <= 0 {
		max = MaxHistorySteps
	}
	return &History{max: max, cursor: -1}
}

// Record truncates any redo branch, appends a copy of the snapshot and
// moves the cursor onto it. When the stack exceeds the bound the oldest
// entry is evicted and the cursor shifts down with it.
func (h *History) Record(snap *Document) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = h.entries[:h.cursor+1]
	h.entries = append(h.entries, snap.Clone())
	if len(h.entries) > h.max {
		excess := len(h.entries) - h.max
		h.entries = h.entries[excess:]
	}
	h.cursor = len(h.entries) - 1
}

// Undo moves the cursor back one entry and returns a copy of the
// snapshot there. Returns ErrNothingToUndo at the oldest entry.
func (h *History) Undo() (*Document, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cursor <= 0 {
		return nil, ErrNothingToUndo
	}
	h.cursor--
	return h.entries[h.cursor].Clone(), nil
}

// Redo moves the cursor forward one entry and returns a copy of the
// snapshot there. Returns ErrNothingToRedo at the newest entry.
func (h *History) Redo() (*Document, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cursor >= len(h.entries)-1 {
		return nil, ErrNothingToRedo
	}
	h.cursor++
	return h.entries[h.cursor].Clone(), nil
}

// ResetTo clears all entries and seeds the history with the single given
// snapshot. Used on image load and on explicit reset.
func (h *History) ResetTo(snap *Document) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = []*Document{snap.Clone()}
	h.cursor = 0
}

// CanUndo reports whether an older snapshot is available.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor > 0
}

// CanRedo reports whether a newer snapshot is available.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor < len(h.entries)-1
}

// Len returns the number of retained snapshots.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Cursor returns the index of the current snapshot, -1 when empty.
func (h *History) Cursor() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor
}

// Clear drops all snapshots.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = nil
	h.cursor = -1
}
