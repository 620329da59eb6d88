package state

import (
	"image"
	"sort"

	"CaptionBoard/internal/geometry"
)

// Document is the complete editable state: background raster, canvas
// dimensions, the layer stack and the current selection. All operations
// are pure; they return a new Document and leave the receiver untouched.
// An operation that cannot apply (no image loaded, unknown layer id)
// returns the receiver itself, so callers can detect no-ops by pointer
// comparison before recording history.
type Document struct {
	Image       image.Image `json:"-"`
	ImageWidth  int         `json:"imageWidth"`
	ImageHeight int         `json:"imageHeight"`
	Layers      []Layer     `json:"layers"`
	Selected    string      `json:"selectedLayerId"`
}

// CreateEmpty returns the fresh/reset state: no image, no layers, no
// selection.
func CreateEmpty() *Document {
	return &Document{}
}

// Clone returns a deep copy. The background raster is shared; it is
// immutable once ingested.
func (d *Document) Clone() *Document {
	c := *d
	c.Layers = make([]Layer, len(d.Layers))
	copy(c.Layers, d.Layers)
	return &c
}

// HasImage reports whether a background image is loaded.
func (d *Document) HasImage() bool {
	return d.Image != nil && d.ImageWidth > 0 && d.ImageHeight > 0
}

// LayerByID returns a copy of the layer with the given id.
func (d *Document) LayerByID(id string) (Layer, bool) {
	for _, l := range d.Layers {
		if l.ID == id {
			return l, true
		}
	}
	return Layer{}, false
}

// SelectedLayer returns a copy of the currently selected layer.
func (d *Document) SelectedLayer() (Layer, bool) {
	if d.Selected == "" {
		return Layer{}, false
	}
	return d.LayerByID(d.Selected)
}

// SortedLayers returns copies of all layers in ascending z order.
func (d *Document) SortedLayers() []Layer {
	out := make([]Layer, len(d.Layers))
	copy(out, d.Layers)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ZIndex < out[j].ZIndex })
	return out
}

// MaxZ returns the highest z-index in use, or -1 with no layers.
func (d *Document) MaxZ() int {
	max := -1
	for _, l := range d.Layers {
		if l.ZIndex > max {
			max = l.ZIndex
		}
	}
	return max
}

// normalizeZ reassigns z-indexes to a dense 0..N-1 range preserving
// relative order. Idempotent; ties resolve by slice order.
func (d *Document) normalizeZ() {
	keys := make([]int, len(d.Layers))
	for i, l := range d.Layers {
		keys[i] = l.ZIndex
	}
	for i, rank := range geometry.DenseRanks(keys) {
		d.Layers[i].ZIndex = rank
	}
}

// LoadImage replaces the document wholesale with the given background.
// All existing layers and the selection are discarded; this signals the
// start of a new editing session.
func (d *Document) LoadImage(img image.Image, width, height int) *Document {
	return &Document{
		Image:       img,
		ImageWidth:  width,
		ImageHeight: height,
		Layers:      []Layer{},
	}
}

// AddLayer appends the layer on top of the stack, measuring its advisory
// bounding box. No-op when no image is loaded.
func (d *Document) AddLayer(l Layer, m Measurer) *Document {
	if !d.HasImage() {
		return d
	}
	next := d.Clone()
	l.ZIndex = next.MaxZ() + 1
	if m != nil {
		l.Width, l.Height = m.MeasureText(l.Text, l.FontFamily, l.FontWeight, l.FontSize)
	}
	next.Layers = append(next.Layers, l)
	next.normalizeZ()
	return next
}

// DuplicateLayer clones the layer with a fresh id, offset by
// (+20, +20) document units, appended on top. No-op for unknown ids.
func (d *Document) DuplicateLayer(id string, ids IDSource) *Document {
	src, ok := d.LayerByID(id)
	if !ok {
		return d
	}
	next := d.Clone()
	dup := src
	dup.ID = ids.NewID()
	dup.X += DuplicateOffset
	dup.Y += DuplicateOffset
	dup.ZIndex = next.MaxZ() + 1
	next.Layers = append(next.Layers, dup)
	next.normalizeZ()
	return next
}

// DeleteLayer removes the layer and renormalizes the remaining stack.
// Deleting the selected layer clears the selection. No-op for unknown ids.
func (d *Document) DeleteLayer(id string) *Document {
	idx := -1
	for i, l := range d.Layers {
		if l.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return d
	}
	next := d.Clone()
	next.Layers = append(next.Layers[:idx], next.Layers[idx+1:]...)
	if next.Selected == id {
		next.Selected = ""
	}
	next.normalizeZ()
	return next
}

// UpdateLayer merges the patch into the layer with the given id,
// re-measuring the advisory bounding box when text or font attributes
// change. No-op for unknown ids.
func (d *Document) UpdateLayer(id string, p LayerPatch, m Measurer) *Document {
	idx := -1
	for i, l := range d.Layers {
		if l.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return d
	}
	next := d.Clone()
	l := &next.Layers[idx]
	p.apply(l)
	if p.touchesMetrics() && m != nil {
		l.Width, l.Height = m.MeasureText(l.Text, l.FontFamily, l.FontWeight, l.FontSize)
	}
	return next
}

// Reorder moves the layer at stacking position fromZ to position toZ,
// shifting the layers in between, then renormalizes. Out-of-range
// positions are clamped; a move onto itself is a no-op.
func (d *Document) Reorder(fromZ, toZ int) *Document {
	n := len(d.Layers)
	if n == 0 || fromZ < 0 || fromZ >= n {
		return d
	}
	if toZ < 0 {
		toZ = 0
	}
	if toZ >= n {
		toZ = n - 1
	}
	if fromZ == toZ {
		return d
	}
	next := d.Clone()
	order := make([]*Layer, 0, n)
	sorted := make([]int, 0, n)
	for i := range next.Layers {
		sorted = append(sorted, i)
	}
	sort.SliceStable(sorted, func(a, b int) bool {
		return next.Layers[sorted[a]].ZIndex < next.Layers[sorted[b]].ZIndex
	})
	for _, i := range sorted {
		order = append(order, &next.Layers[i])
	}
	moved := order[fromZ]
	order = append(order[:fromZ], order[fromZ+1:]...)
	order = append(order[:toZ], append([]*Layer{moved}, order[toZ:]...)...)
	for z, l := range order {
		l.ZIndex = z
	}
	return next
}

// Select sets the selection to the given layer id, or clears it when id
// is empty. Selecting an unknown id is a no-op.
func (d *Document) Select(id string) *Document {
	if id != "" {
		if _, ok := d.LayerByID(id); !ok {
			return d
		}
	}
	if d.Selected == id {
		return d
	}
	next := d.Clone()
	next.Selected = id
	return next
}

// Equal reports field-for-field equality of the two documents, ignoring
// the shared background raster pointer identity only when both sides
// reference the same image.
func (d *Document) Equal(o *Document) bool {
	if d.Image != o.Image || d.ImageWidth != o.ImageWidth || d.ImageHeight != o.ImageHeight {
		return false
	}
	if d.Selected != o.Selected || len(d.Layers) != len(o.Layers) {
		return false
	}
	for i := range d.Layers {
		if d.Layers[i] != o.Layers[i] {
			return false
		}
	}
	return true
}
