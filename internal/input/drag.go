package input

import (
	"CaptionBoard/internal/geometry"
	"CaptionBoard/internal/state"
)

// Drag tracks one pointer gesture moving a layer. The offset between the
// press point and the layer anchor is captured on start so the layer
// does not jump under the pointer; every move proposes a snapped anchor
// position the caller applies to the live document. One history entry is
// expected per gesture, committed on End.
type Drag struct {
	layerID string
	offsetX float64
	offsetY float64
	startX  float64
	startY  float64
	lastX   float64
	lastY   float64
}

// StartDrag hit-tests the document-space press point and, on a hit,
// opens a gesture for the topmost layer there.
func StartDrag(doc *state.Document, m state.Measurer, x, y float64) (*Drag, bool) {
	id, ok := HitTest(doc, m, x, y)
	if !ok {
		return nil, false
	}
	l, _ := doc.LayerByID(id)
	return &Drag{
		layerID: id,
		offsetX: x - l.X,
		offsetY: y - l.Y,
		startX:  l.X,
		startY:  l.Y,
		lastX:   l.X,
		lastY:   l.Y,
	}, true
}

// LayerID returns the layer being dragged.
func (d *Drag) LayerID() string {
	return d.layerID
}

// Move computes the snapped anchor position for the current pointer
// location: candidate = pointer − offset, grid snap when active, then
// center snap which may override it.
func (d *Drag) Move(x, y float64, cfg geometry.SnapConfig) (float64, float64) {
	nx, ny := geometry.SnapPosition(x-d.offsetX, y-d.offsetY, cfg)
	d.lastX, d.lastY = nx, ny
	return nx, ny
}

// End closes the gesture, returning the final anchor position and
// whether the layer actually moved (so no-op gestures skip history).
func (d *Drag) End() (x, y float64, moved bool) {
	return d.lastX, d.lastY, d.lastX != d.startX || d.lastY != d.startY
}
