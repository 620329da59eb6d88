// Package input resolves pointer and keyboard input into document
// mutations: hit-testing, drag gestures with snapping, nudging and
// rotation shortcuts. Everything here is pure over the Document; history
// recording is the caller's business.
package input

import (
	"sort"

	"CaptionBoard/internal/geometry"
	"CaptionBoard/internal/state"
)

// ToDocument converts surface coordinates to document space by undoing
// the view zoom. Stored positions are always in document space.
func ToDocument(x, y, zoom float64) (float64, float64) {
	if zoom <= 0 {
		zoom = 1
	}
	return x / zoom, y / zoom
}

// BoundsOf computes a layer's axis-aligned bounding box from its
// measured text metrics. The anchor sits on the baseline; the box spans
// one text height above it, placed left/center/right of the anchor per
// the layer's alignment. Rotation is deliberately ignored, matching the
// selection overlay.
func BoundsOf(l state.Layer, m state.Measurer) geometry.Rect {
	w, h := m.MeasureText(l.Text, l.FontFamily, l.FontWeight, l.FontSize)
	left := l.X
	switch l.Align {
	case state.AlignCenter:
		left = l.X - w/2
	case state.AlignRight:
		left = l.X - w
	}
	return geometry.Rect{X: left, Y: l.Y - h, Width: w, Height: h}
}

// HitTest returns the topmost visible layer whose bounding box contains
// the document-space point, or false when the point hits empty canvas.
func HitTest(doc *state.Document, m state.Measurer, x, y float64) (string, bool) {
	layers := doc.SortedLayers()
	sort.SliceStable(layers, func(i, j int) bool { return layers[i].ZIndex > layers[j].ZIndex })
	for _, l := range layers {
		if !l.Visible {
			continue
		}
		if BoundsOf(l, m).Contains(x, y) {
			return l.ID, true
		}
	}
	return "", false
}
