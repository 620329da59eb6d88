// Package session is the command layer of the editor: one method per
// logical mutation. Every command applies a pure document operation,
// records exactly one history snapshot and best-effort autosaves. The
// UI never touches the document directly.
package session

import (
	"image"
	"log"
	"sync"

	"CaptionBoard/internal/geometry"
	"CaptionBoard/internal/input"
	"CaptionBoard/internal/state"
)

// Persister saves the document around mutation points. Failures are
// logged and swallowed; saving must never block editing.
type Persister interface {
	Save(doc *state.Document) error
}

// Session owns the live document, its history and the in-flight drag
// gesture.
type Session struct {
	mu       sync.Mutex
	doc      *state.Document
	history  *state.History
	measurer state.Measurer
	ids      state.IDSource
	persist  Persister

	drag        *input.Drag
	gridEnabled bool
	editing     bool
	generation  uint64
}

// New creates a session over an empty document.
func New(m state.Measurer, ids state.IDSource) *Session {
	return &Session{
		doc:      state.CreateEmpty(),
		history:  state.NewHistory(state.MaxHistorySteps),
		measurer: m,
		ids:      ids,
	}
}

// SetPersister wires the autosave collaborator.
func (s *Session) SetPersister(p Persister) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persist = p
}

// Document returns the live document. Callers treat it as read-only.
func (s *Session) Document() *state.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// Measurer returns the text measurement primitive shared with rendering.
func (s *Session) Measurer() state.Measurer {
	return s.measurer
}

// commit swaps in the mutated document and records one history entry.
// Pure operations signal no-ops by returning their receiver, which skips
// the commit entirely.
func (s *Session) commitLocked(next *state.Document) bool {
	if next == s.doc {
		return false
	}
	s.doc = next
	s.history.Record(next)
	s.autosaveLocked()
	return true
}

// replaceLocked swaps the live document without recording history, for
// selection changes and in-gesture drag updates.
func (s *Session) replaceLocked(next *state.Document) bool {
	if next == s.doc {
		return false
	}
	s.doc = next
	return true
}

func (s *Session) autosaveLocked() {
	if s.persist == nil {
		return
	}
	if err := s.persist.Save(s.doc); err != nil {
		log.Printf("[SESSION] Autosave failed: %v", err)
	}
}

// BeginImageLoad reserves a load slot and returns its token. Image
// decoding is the one asynchronous boundary; a second upload started
// before the first finishes supersedes it.
func (s *Session) BeginImageLoad() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	return s.generation
}

// FinishImageLoad installs a decoded background if the token is still
// current; stale loads are discarded. A successful load replaces the
// document wholesale and reseeds history with the loaded state.
func (s *Session) FinishImageLoad(token uint64, img image.Image, width, height int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.generation {
		log.Printf("[SESSION] Discarding stale image load (token %d, current %d)", token, s.generation)
		return false
	}
	s.doc = s.doc.LoadImage(img, width, height)
	s.history.ResetTo(s.doc)
	s.drag = nil
	s.autosaveLocked()
	return true
}

// Restore replaces the session with a persisted document (startup path).
func (s *Session) Restore(doc *state.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.doc = doc.Clone()
	s.history.ResetTo(s.doc)
	s.drag = nil
}

// Reset discards the document and history, returning to the fresh state.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.doc = state.CreateEmpty()
	s.history.ResetTo(s.doc)
	s.drag = nil
	s.autosaveLocked()
}

// AddTextLayer creates a default layer at the document-space point,
// selects it and commits. Returns the new layer's id, or "" when no
// image is loaded.
func (s *Session) AddTextLayer(x, y float64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.ids.NewID()
	next := s.doc.AddLayer(state.NewLayer(id, x, y), s.measurer)
	if next == s.doc {
		return ""
	}
	next = next.Select(id)
	s.commitLocked(next)
	return id
}

// UpdateLayer merges a patch into the layer and commits.
func (s *Session) UpdateLayer(id string, p state.LayerPatch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commitLocked(s.doc.UpdateLayer(id, p, s.measurer))
}

// SetText commits new text content for a layer, re-measuring its box.
func (s *Session) SetText(id, text string) bool {
	return s.UpdateLayer(id, state.LayerPatch{Text: &text})
}

// MoveLayer commits a new anchor position for a layer.
func (s *Session) MoveLayer(id string, x, y float64) bool {
	return s.UpdateLayer(id, state.LayerPatch{X: &x, Y: &y})
}

// DeleteLayer removes a layer and commits. Deleting the layer under an
// open drag cancels the gesture.
func (s *Session) DeleteLayer(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.doc.DeleteLayer(id)
	if next == s.doc {
		return false
	}
	if s.drag != nil && s.drag.LayerID() == id {
		s.drag = nil
	}
	return s.commitLocked(next)
}

// DuplicateLayer clones a layer, selects the clone and commits.
func (s *Session) DuplicateLayer(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := s.doc
	next := s.doc.DuplicateLayer(id, s.ids)
	if next == before {
		return false
	}
	top := next.SortedLayers()[len(next.Layers)-1]
	next = next.Select(top.ID)
	return s.commitLocked(next)
}

// Reorder moves a stacking position and commits.
func (s *Session) Reorder(fromZ, toZ int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commitLocked(s.doc.Reorder(fromZ, toZ))
}

// Select updates the selection on the live document. Selection changes
// travel inside snapshots but do not create history entries themselves.
func (s *Session) Select(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceLocked(s.doc.Select(id))
}

// ToggleVisible flips a layer's visibility and commits.
func (s *Session) ToggleVisible(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.doc.LayerByID(id)
	if !ok {
		return false
	}
	v := !l.Visible
	return s.commitLocked(s.doc.UpdateLayer(id, state.LayerPatch{Visible: &v}, nil))
}

// snapConfigLocked builds the snap pipeline configuration for the
// current canvas.
func (s *Session) snapConfigLocked() geometry.SnapConfig {
	return geometry.NewSnapConfig(s.gridEnabled, float64(s.doc.ImageWidth), float64(s.doc.ImageHeight))
}

// SetGrid toggles grid mode (affects snapping and the preview overlay).
func (s *Session) SetGrid(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gridEnabled = enabled
}

// GridEnabled reports grid mode.
func (s *Session) GridEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gridEnabled
}

// Nudge moves the selected layer one arrow step through the snap
// pipeline and commits.
func (s *Session) Nudge(dir input.Direction, amplified bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.doc.SelectedLayer()
	if !ok {
		return false
	}
	x, y := input.Nudge(l, dir, amplified, s.snapConfigLocked())
	return s.commitLocked(s.doc.UpdateLayer(l.ID, state.LayerPatch{X: &x, Y: &y}, nil))
}

// Rotate advances the selected layer's rotation by the keyboard step.
func (s *Session) Rotate(amplified bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.doc.SelectedLayer()
	if !ok {
		return false
	}
	r := input.RotateBy(l.Rotation, amplified)
	return s.commitLocked(s.doc.UpdateLayer(l.ID, state.LayerPatch{Rotation: &r}, nil))
}

// ResetRotation zeroes the selected layer's rotation.
func (s *Session) ResetRotation() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.doc.SelectedLayer()
	if !ok {
		return false
	}
	zero := 0.0
	return s.commitLocked(s.doc.UpdateLayer(l.ID, state.LayerPatch{Rotation: &zero}, nil))
}

// StartDrag opens a drag gesture at surface coordinates. A hit selects
// the layer; selection alone does not record history.
func (s *Session) StartDrag(surfaceX, surfaceY, zoom float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	x, y := input.ToDocument(surfaceX, surfaceY, zoom)
	d, ok := input.StartDrag(s.doc, s.measurer, x, y)
	if !ok {
		s.replaceLocked(s.doc.Select(""))
		return false
	}
	s.drag = d
	s.replaceLocked(s.doc.Select(d.LayerID()))
	return true
}

// DragTo applies an in-gesture position update to the live document for
// visual continuity. No history entry yet.
func (s *Session) DragTo(surfaceX, surfaceY, zoom float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drag == nil {
		return
	}
	x, y := input.ToDocument(surfaceX, surfaceY, zoom)
	nx, ny := s.drag.Move(x, y, s.snapConfigLocked())
	s.replaceLocked(s.doc.UpdateLayer(s.drag.LayerID(), state.LayerPatch{X: &nx, Y: &ny}, nil))
}

// EndDrag closes the gesture, committing a single history entry when
// the layer moved.
func (s *Session) EndDrag() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drag == nil {
		return
	}
	_, _, moved := s.drag.End()
	id := s.drag.LayerID()
	s.drag = nil
	if !moved {
		return
	}
	if _, ok := s.doc.LayerByID(id); !ok {
		return
	}
	s.history.Record(s.doc)
	s.autosaveLocked()
}

// DoubleClick resolves a double-click: editing an existing layer, or
// creating (and selecting) a new one on empty canvas. The returned
// action tells the UI whether to open the text editor and for which id.
func (s *Session) DoubleClick(surfaceX, surfaceY, zoom float64) input.DoubleClick {
	s.mu.Lock()
	x, y := input.ToDocument(surfaceX, surfaceY, zoom)
	dc := input.ResolveDoubleClick(s.doc, s.measurer, x, y, s.gridEnabled)
	s.mu.Unlock()

	switch dc.Action {
	case input.ClickEditLayer:
		s.Select(dc.LayerID)
	case input.ClickCreateLayer:
		dc.LayerID = s.AddTextLayer(dc.X, dc.Y)
	}
	return dc
}

// BeginTextEdit marks a modal text edit as open; history shortcuts are
// suppressed until EndTextEdit.
func (s *Session) BeginTextEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editing = true
}

// EndTextEdit closes the modal text edit.
func (s *Session) EndTextEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editing = false
}

// Undo replaces the live document with the previous snapshot. Suppressed
// while a text edit is open.
func (s *Session) Undo() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editing {
		return state.ErrNothingToUndo
	}
	doc, err := s.history.Undo()
	if err != nil {
		return err
	}
	s.doc = doc
	s.drag = nil
	s.autosaveLocked()
	return nil
}

// Redo replaces the live document with the next snapshot. Suppressed
// while a text edit is open.
func (s *Session) Redo() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editing {
		return state.ErrNothingToRedo
	}
	doc, err := s.history.Redo()
	if err != nil {
		return err
	}
	s.doc = doc
	s.drag = nil
	s.autosaveLocked()
	return nil
}

// CanUndo reports whether an older snapshot exists.
func (s *Session) CanUndo() bool { return s.history.CanUndo() }

// CanRedo reports whether a newer snapshot exists.
func (s *Session) CanRedo() bool { return s.history.CanRedo() }
