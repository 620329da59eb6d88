// Package render draws a Document to pixels. One routine serves both the
// live preview and the export pipeline, parameterized only by scale, so
// the two paths paint identical pixels; grid and selection overlays are
// preview-only decorations controlled through Options.
package render

import (
	"errors"
	"image"
	"image/color"
	stddraw "image/draw"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"

	"CaptionBoard/internal/geometry"
	"CaptionBoard/internal/input"
	"CaptionBoard/internal/state"
)

// ErrNoImage reports a render of a document without a background.
var ErrNoImage = errors.New("no background image loaded")

// SelectionMargin inflates the selection rectangle, in document units
// per side.
const SelectionMargin = 10.0

var (
	colorWhite = color.RGBA{255, 255, 255, 255}
	colorGrid  = color.NRGBA{0, 0, 0, 40}
	colorDash  = color.NRGBA{30, 120, 255, 255}
)

// Options selects the preview-only decorations. The zero value is the
// export configuration: background and layers only.
type Options struct {
	Grid        bool    // grid overlay, preview only
	GridUnit    float64 // document units between lines; 0 means the default
	SelectionID string  // layer to draw the dashed selection box around
	DashPhase   int     // animated dash offset in pixels
}

// Renderer rasterizes documents with a shared font library.
type Renderer struct {
	Fonts *FontLibrary
}

func NewRenderer(fonts *FontLibrary) *Renderer {
	return &Renderer{Fonts: fonts}
}

// Measurer exposes the library measuring text for this renderer, for
// hit-testing against the same metrics the pixels come from.
func (r *Renderer) Measurer() state.Measurer {
	return r.Fonts
}

// Render paints the document at the given scale: white underlay,
// background raster stretched to (imageWidth·s, imageHeight·s), then the
// visible layers in ascending z order. Decorations come last and only
// when requested through opts.
func (r *Renderer) Render(doc *state.Document, scale float64, opts Options) (*image.RGBA, error) {
	if !doc.HasImage() {
		return nil, ErrNoImage
	}
	if scale <= 0 {
		scale = 1
	}

	w := int(math.Round(float64(doc.ImageWidth) * scale))
	h := int(math.Round(float64(doc.ImageHeight) * scale))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	stddraw.Draw(dst, dst.Bounds(), image.NewUniform(colorWhite), image.Point{}, stddraw.Src)

	draw.CatmullRom.Scale(dst, dst.Bounds(), doc.Image, doc.Image.Bounds(), draw.Over, nil)

	if opts.Grid {
		unit := opts.GridUnit
		if unit <= 0 {
			unit = geometry.GridUnit
		}
		drawGrid(dst, unit*scale)
	}

	for _, l := range doc.SortedLayers() {
		if !l.Visible || l.Opacity <= 0 || l.Text == "" {
			continue
		}
		r.drawLayer(dst, l, scale)
	}

	if opts.SelectionID != "" {
		if l, ok := doc.LayerByID(opts.SelectionID); ok && l.Visible {
			box := input.BoundsOf(l, r.Fonts).Inflate(SelectionMargin)
			drawDashedRect(dst, box, scale, opts.DashPhase)
		}
	}
	return dst, nil
}

// drawLayer rasterizes one text layer: glyphs go into a transparent tile
// with opacity baked into the fill color, then the tile is composited so
// the layer anchor lands at (x·s, y·s), rotated about that point when
// the layer has a rotation.
func (r *Renderer) drawLayer(dst *image.RGBA, l state.Layer, scale float64) {
	face := r.Fonts.Face(l.FontFamily, l.FontWeight, l.FontSize*scale)
	adv := float64(font.MeasureString(face, l.Text)) / 64
	metrics := face.Metrics()
	ascent := float64(metrics.Ascent) / 64
	descent := float64(metrics.Descent) / 64

	// Padding absorbs glyph overhang past the advance width (italics,
	// swashes) so rotation never clips edge pixels.
	pad := int(math.Ceil(4*scale)) + 2
	tileW := int(math.Ceil(adv)) + 2*pad
	tileH := int(math.Ceil(ascent+descent)) + 2*pad
	tile := image.NewRGBA(image.Rect(0, 0, tileW, tileH))

	d := &font.Drawer{
		Dst:  tile,
		Src:  image.NewUniform(layerColor(l)),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I(pad),
			Y: fixed.I(pad) + metrics.Ascent,
		},
	}
	d.DrawString(l.Text)

	// Anchor inside the tile: on the baseline, placed per alignment.
	ax := float64(pad)
	switch l.Align {
	case state.AlignCenter:
		ax += adv / 2
	case state.AlignRight:
		ax += adv
	}
	ay := float64(pad) + ascent

	tx := l.X * scale
	ty := l.Y * scale

	if l.Rotation == 0 {
		offset := image.Pt(int(math.Round(tx-ax)), int(math.Round(ty-ay)))
		stddraw.Draw(dst, tile.Bounds().Add(offset), tile, image.Point{}, stddraw.Over)
		return
	}

	theta := l.Rotation * math.Pi / 180
	c, s := math.Cos(theta), math.Sin(theta)
	// dst = R(theta)·(src − tileAnchor) + anchor, clockwise in y-down
	// screen coordinates.
	m := f64.Aff3{
		c, -s, tx - c*ax + s*ay,
		s, c, ty - s*ax - c*ay,
	}
	draw.BiLinear.Transform(dst, m, tile, tile.Bounds(), draw.Over, nil)
}

// layerColor parses the layer's hex color, scaling alpha by opacity.
// Unparseable colors fall back to black.
func layerColor(l state.Layer) color.NRGBA {
	out := color.NRGBA{A: uint8(math.Round(geometry.Clamp(l.Opacity, 0, 1) * 255))}
	if c, err := colorful.Hex(l.Color); err == nil {
		out.R = uint8(math.Round(c.R * 255))
		out.G = uint8(math.Round(c.G * 255))
		out.B = uint8(math.Round(c.B * 255))
	}
	return out
}

// drawGrid paints faint vertical and horizontal lines every spacing
// pixels. Preview decoration only.
func drawGrid(dst *image.RGBA, spacing float64) {
	if spacing < 1 {
		return
	}
	b := dst.Bounds()
	for x := 0.0; x < float64(b.Dx()); x += spacing {
		col := int(math.Round(x))
		stddraw.Draw(dst, image.Rect(col, 0, col+1, b.Dy()), image.NewUniform(colorGrid), image.Point{}, stddraw.Over)
	}
	for y := 0.0; y < float64(b.Dy()); y += spacing {
		row := int(math.Round(y))
		stddraw.Draw(dst, image.Rect(0, row, b.Dx(), row+1), image.NewUniform(colorGrid), image.Point{}, stddraw.Over)
	}
}

// drawDashedRect outlines a document-space rectangle with a dashed
// stroke whose phase shifts over time for the marching-ants effect.
func drawDashedRect(dst *image.RGBA, box geometry.Rect, scale float64, phase int) {
	const dashOn, dashOff = 6, 4
	period := dashOn + dashOff

	x0 := int(math.Round(box.X * scale))
	y0 := int(math.Round(box.Y * scale))
	x1 := int(math.Round((box.X + box.Width) * scale))
	y1 := int(math.Round((box.Y + box.Height) * scale))

	on := func(p int) bool {
		m := (p + phase) % period
		if m < 0 {
			m += period
		}
		return m < dashOn
	}
	set := func(x, y int) {
		if image.Pt(x, y).In(dst.Bounds()) {
			dst.Set(x, y, colorDash)
		}
	}

	p := 0
	for x := x0; x <= x1; x++ { // top
		if on(p) {
			set(x, y0)
		}
		p++
	}
	for y := y0 + 1; y <= y1; y++ { // right
		if on(p) {
			set(x1, y)
		}
		p++
	}
	for x := x1 - 1; x >= x0; x-- { // bottom
		if on(p) {
			set(x, y1)
		}
		p++
	}
	for y := y1 - 1; y > y0; y-- { // left
		if on(p) {
			set(x0, y)
		}
		p++
	}
}
