package input

import (
	"CaptionBoard/internal/geometry"
	"CaptionBoard/internal/state"
)

// Keyboard interaction steps, in document units and degrees.
const (
	NudgeStep       = 10.0
	NudgeStepLarge  = 50.0
	RotateStep      = 15.0
	RotateStepLarge = 45.0
)

// Direction is an arrow-key axis movement.
type Direction int

const (
	DirLeft Direction = iota
	DirRight
	DirUp
	DirDown
)

// Nudge moves the layer anchor one step along the arrow direction
// (amplified with the modifier held) and runs the same snap pipeline as
// dragging.
func Nudge(l state.Layer, dir Direction, amplified bool, cfg geometry.SnapConfig) (float64, float64) {
	step := NudgeStep
	if amplified {
		step = NudgeStepLarge
	}
	x, y := l.X, l.Y
	switch dir {
	case DirLeft:
		x -= step
	case DirRight:
		x += step
	case DirUp:
		y -= step
	case DirDown:
		y += step
	}
	return geometry.SnapPosition(x, y, cfg)
}

// RotateBy advances a rotation by the small step, or the large step with
// the modifier held, wrapping modulo 360.
func RotateBy(rotation float64, amplified bool) float64 {
	step := RotateStep
	if amplified {
		step = RotateStepLarge
	}
	return geometry.NormalizeDegrees(rotation + step)
}

// ClickAction tags what a double-click on the canvas should do.
type ClickAction int

const (
	// ClickNone: empty canvas with no image loaded; nothing to do.
	ClickNone ClickAction = iota
	// ClickEditLayer: enter text-edit mode for LayerID.
	ClickEditLayer
	// ClickCreateLayer: create a default layer anchored at (X, Y),
	// select it and enter text-edit mode.
	ClickCreateLayer
)

// DoubleClick is the resolved outcome of a double-click.
type DoubleClick struct {
	Action  ClickAction
	LayerID string
	X       float64
	Y       float64
}

// ResolveDoubleClick maps a document-space double-click either onto an
// existing layer (edit) or onto empty canvas (create, grid-snapped when
// the grid is active). Center snap does not apply to creation.
func ResolveDoubleClick(doc *state.Document, m state.Measurer, x, y float64, gridEnabled bool) DoubleClick {
	if id, ok := HitTest(doc, m, x, y); ok {
		return DoubleClick{Action: ClickEditLayer, LayerID: id}
	}
	if !doc.HasImage() {
		return DoubleClick{Action: ClickNone}
	}
	if gridEnabled {
		x = geometry.SnapToGrid(x, geometry.GridUnit)
		y = geometry.SnapToGrid(y, geometry.GridUnit)
	}
	return DoubleClick{Action: ClickCreateLayer, X: x, Y: y}
}
