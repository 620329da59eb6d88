package state

// FontWeight selects between the two supported text weights.
type FontWeight string

const (
	WeightNormal FontWeight = "normal"
	WeightBold   FontWeight = "bold"
)

// TextAlign controls how a layer's anchor relates to its text: the anchor
// is the left edge, center, or right edge of the baseline.
type TextAlign string

const (
	AlignLeft   TextAlign = "left"
	AlignCenter TextAlign = "center"
	AlignRight  TextAlign = "right"
)

// Default styling for layers created by double-clicking the canvas.
const (
	DefaultLayerText  = "New Text"
	DefaultFontSize   = 32.0
	DefaultFontFamily = "Go"
	DefaultColor      = "#000000"
	DuplicateOffset   = 20.0
)

// Layer is one positioned, styled text element within a Document.
// Width and Height hold the last-measured bounding box of the rendered
// text; they are advisory (layer panel previews), not authoritative for
// layout, and are recomputed whenever text or font attributes change.
type Layer struct {
	ID         string     `json:"id"`
	Text       string     `json:"text"`
	X          float64    `json:"x"`
	Y          float64    `json:"y"`
	Width      float64    `json:"width"`
	Height     float64    `json:"height"`
	Rotation   float64    `json:"rotation"`
	FontSize   float64    `json:"fontSize"`
	FontFamily string     `json:"fontFamily"`
	FontWeight FontWeight `json:"fontWeight"`
	Color      string     `json:"color"`
	Opacity    float64    `json:"opacity"`
	Align      TextAlign  `json:"textAlign"`
	ZIndex     int        `json:"zIndex"`
	Visible    bool       `json:"isVisible"`

	// Reserved cosmetic attributes, carried for forward compatibility.
	// They round-trip through persistence but do not affect rendering.
	Shadow     string  `json:"shadow"`
	Border     string  `json:"border"`
	Background string  `json:"background"`
	Scale      float64 `json:"scale"`
}

// NewLayer returns a layer with default styling anchored at (x, y).
func NewLayer(id string, x, y float64) Layer {
	return Layer{
		ID:         id,
		Text:       DefaultLayerText,
		X:          x,
		Y:          y,
		FontSize:   DefaultFontSize,
		FontFamily: DefaultFontFamily,
		FontWeight: WeightNormal,
		Color:      DefaultColor,
		Opacity:    1.0,
		Align:      AlignCenter,
		Visible:    true,
		Scale:      1.0,
	}
}

// LayerPatch carries the optional fields of an UpdateLayer operation.
// Nil fields are left untouched.
type LayerPatch struct {
	Text       *string
	X          *float64
	Y          *float64
	Rotation   *float64
	FontSize   *float64
	FontFamily *string
	FontWeight *FontWeight
	Color      *string
	Opacity    *float64
	Align      *TextAlign
	Visible    *bool
}

// touchesMetrics reports whether applying the patch requires the layer's
// advisory width/height to be re-measured.
func (p LayerPatch) touchesMetrics() bool {
	return p.Text != nil || p.FontSize != nil || p.FontFamily != nil || p.FontWeight != nil
}

// apply merges the patch into l, clamping opacity into [0, 1].
func (p LayerPatch) apply(l *Layer) {
	if p.Text != nil {
		l.Text = *p.Text
	}
	if p.X != nil {
		l.X = *p.X
	}
	if p.Y != nil {
		l.Y = *p.Y
	}
	if p.Rotation != nil {
		l.Rotation = *p.Rotation
	}
	if p.FontSize != nil && *p.FontSize > 0 {
		l.FontSize = *p.FontSize
	}
	if p.FontFamily != nil {
		l.FontFamily = *p.FontFamily
	}
	if p.FontWeight != nil {
		l.FontWeight = *p.FontWeight
	}
	if p.Color != nil {
		l.Color = *p.Color
	}
	if p.Opacity != nil {
		o := *p.Opacity
		if o < 0 {
			o = 0
		}
		if o > 1 {
			o = 1
		}
		l.Opacity = o
	}
	if p.Align != nil {
		l.Align = *p.Align
	}
	if p.Visible != nil {
		l.Visible = *p.Visible
	}
}

// Measurer measures text rendered with a concrete font spec. It is the
// platform text-measurement primitive; internal/render provides the real
// implementation and tests substitute a fixed-metrics fake.
type Measurer interface {
	MeasureText(text, family string, weight FontWeight, size float64) (width, height float64)
}
