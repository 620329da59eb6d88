package render

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"CaptionBoard/internal/state"
)

// ErrUnknownFamily reports a font family missing from the catalog.
// Callers proceed with the default family rather than failing.
var ErrUnknownFamily = errors.New("unknown font family")

// DefaultFamily is used whenever a layer references a family the
// catalog cannot satisfy.
const DefaultFamily = "Go"

// FontFamily is one selectable entry of the catalog.
type FontFamily struct {
	Name     string
	Category string
	Variants []state.FontWeight
}

type faceKey struct {
	family string
	weight state.FontWeight
	size   float64
}

// FontLibrary is the font catalog and face cache. The embedded Go fonts
// back every family, so Ensure never blocks; faces are cached per
// (family, weight, size) and shared by measurement and drawing, which
// keeps hit-testing and rendering in exact agreement.
type FontLibrary struct {
	mu       sync.Mutex
	families []FontFamily
	fonts    map[string]map[state.FontWeight]*opentype.Font
	faces    map[faceKey]font.Face
}

// NewFontLibrary parses the embedded fonts and builds the catalog.
func NewFontLibrary() *FontLibrary {
	parse := func(ttf []byte) *opentype.Font {
		f, err := opentype.Parse(ttf)
		if err != nil {
			panic(err) // embedded fonts always parse
		}
		return f
	}

	lib := &FontLibrary{
		faces: make(map[faceKey]font.Face),
		fonts: map[string]map[state.FontWeight]*opentype.Font{
			"Go": {
				state.WeightNormal: parse(goregular.TTF),
				state.WeightBold:   parse(gobold.TTF),
			},
			"Go Mono": {
				state.WeightNormal: parse(gomono.TTF),
				state.WeightBold:   parse(gomonobold.TTF),
			},
			"Go Italic": {
				state.WeightNormal: parse(goitalic.TTF),
				state.WeightBold:   parse(gobolditalic.TTF),
			},
		},
	}
	lib.families = []FontFamily{
		{Name: "Go", Category: "sans-serif", Variants: []state.FontWeight{state.WeightNormal, state.WeightBold}},
		{Name: "Go Mono", Category: "monospace", Variants: []state.FontWeight{state.WeightNormal, state.WeightBold}},
		{Name: "Go Italic", Category: "sans-serif", Variants: []state.FontWeight{state.WeightNormal, state.WeightBold}},
	}
	return lib
}

// Families lists the catalog entries.
func (f *FontLibrary) Families() []FontFamily {
	out := make([]FontFamily, len(f.families))
	copy(out, f.families)
	return out
}

// Ensure checks that a family is renderable. Unknown families report
// ErrUnknownFamily; rendering then proceeds with the default family.
func (f *FontLibrary) Ensure(family string) error {
	if _, ok := f.fonts[family]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownFamily, family)
	}
	return nil
}

// Face returns a cached face for the font spec, falling back to the
// default family and normal weight for unknown values.
func (f *FontLibrary) Face(family string, weight state.FontWeight, size float64) font.Face {
	if size <= 0 {
		size = state.DefaultFontSize
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	weights, ok := f.fonts[family]
	if !ok {
		log.Printf("[FONTS] family %q not in catalog, using %q", family, DefaultFamily)
		family = DefaultFamily
		weights = f.fonts[family]
	}
	fnt, ok := weights[weight]
	if !ok {
		weight = state.WeightNormal
		fnt = weights[weight]
	}

	key := faceKey{family: family, weight: weight, size: size}
	if face, ok := f.faces[key]; ok {
		return face
	}
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone, // unhinted keeps metrics scale-linear
	})
	if err != nil {
		panic(err)
	}
	f.faces[key] = face
	return face
}

// MeasureText implements state.Measurer: advance width and
// ascent+descent height of the text under its exact font spec.
func (f *FontLibrary) MeasureText(text, family string, weight state.FontWeight, size float64) (float64, float64) {
	face := f.Face(family, weight, size)
	width := float64(font.MeasureString(face, text)) / 64
	m := face.Metrics()
	height := float64(m.Ascent+m.Descent) / 64
	return width, height
}
