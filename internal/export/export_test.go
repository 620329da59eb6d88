package export

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"CaptionBoard/internal/render"
	"CaptionBoard/internal/state"
)

func exportDoc(t *testing.T, lib *render.FontLibrary) *state.Document {
	t.Helper()
	bg := image.NewRGBA(image.Rect(0, 0, 400, 300))
	for y := 0; y < 300; y++ {
		for x := 0; x < 400; x++ {
			bg.SetRGBA(x, y, color.RGBA{40, 90, 200, 255})
		}
	}
	doc := state.CreateEmpty().LoadImage(bg, 400, 300)

	l := state.NewLayer("hello", 50, 50)
	l.Text = "Hello"
	l.FontSize = 24
	l.Align = state.AlignLeft
	return doc.AddLayer(l, lib)
}

func TestExportWithoutImage(t *testing.T) {
	r := render.NewRenderer(render.NewFontLibrary())
	_, err := Export(state.CreateEmpty(), r, Options{Format: FormatPNG, Scale: 1})
	if !errors.Is(err, ErrNoImage) {
		t.Errorf("Export = %v, want ErrNoImage", err)
	}
}

func TestExportBadFormat(t *testing.T) {
	lib := render.NewFontLibrary()
	r := render.NewRenderer(lib)
	_, err := Export(exportDoc(t, lib), r, Options{Format: "bmp", Scale: 1})
	if !errors.Is(err, ErrBadFormat) {
		t.Errorf("Export = %v, want ErrBadFormat", err)
	}
}

func TestExportPNGScenario(t *testing.T) {
	// 400x300 document exported at scale 2 must decode to an 800x600
	// bitmap carrying the background and the text layer.
	lib := render.NewFontLibrary()
	r := render.NewRenderer(lib)
	doc := exportDoc(t, lib)

	data, err := Export(doc, r, Options{Format: FormatPNG, Scale: 2})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if decoded.Bounds().Dx() != 800 || decoded.Bounds().Dy() != 600 {
		t.Errorf("exported size = %dx%d, want 800x600",
			decoded.Bounds().Dx(), decoded.Bounds().Dy())
	}
}

func TestExportMatchesPreviewPixels(t *testing.T) {
	// Render/export equivalence: a PNG export at scale 1 decodes to the
	// exact pixels of a plain preview render at scale 1.
	lib := render.NewFontLibrary()
	r := render.NewRenderer(lib)
	doc := exportDoc(t, lib)

	preview, err := r.Render(doc, 1, render.Options{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	data, err := Export(doc, r, Options{Format: FormatPNG, Scale: 1})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	exported, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}

	b := preview.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			pr, pg, pb, pa := preview.At(x, y).RGBA()
			er, eg, eb, ea := exported.At(x, y).RGBA()
			if pr != er || pg != eg || pb != eb || pa != ea {
				t.Fatalf("pixel (%d, %d) differs: preview %v export %v",
					x, y, preview.At(x, y), exported.At(x, y))
			}
		}
	}
}

func TestExportJPEG(t *testing.T) {
	lib := render.NewFontLibrary()
	r := render.NewRenderer(lib)
	doc := exportDoc(t, lib)

	data, err := Export(doc, r, Options{Format: FormatJPG, Quality: 0.8, Scale: 1})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	decoded, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode jpeg: %v", err)
	}
	if decoded.Bounds().Dx() != 400 || decoded.Bounds().Dy() != 300 {
		t.Errorf("exported size = %dx%d, want 400x300",
			decoded.Bounds().Dx(), decoded.Bounds().Dy())
	}

	// Quality zero maps to the encoder floor rather than failing.
	if _, err := Export(doc, r, Options{Format: FormatJPG, Quality: 0, Scale: 1}); err != nil {
		t.Errorf("quality 0 export failed: %v", err)
	}
}

func TestExportPDF(t *testing.T) {
	lib := render.NewFontLibrary()
	r := render.NewRenderer(lib)
	data, err := Export(exportDoc(t, lib), r, Options{Format: FormatPDF, Scale: 1})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("PDF export does not start with the PDF header")
	}
}

func TestExportScaleClamped(t *testing.T) {
	lib := render.NewFontLibrary()
	r := render.NewRenderer(lib)
	doc := exportDoc(t, lib)

	data, err := Export(doc, r, Options{Format: FormatPNG, Scale: 10})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if decoded.Bounds().Dx() != 1200 || decoded.Bounds().Dy() != 900 {
		t.Errorf("size = %dx%d, want clamped to 1200x900",
			decoded.Bounds().Dx(), decoded.Bounds().Dy())
	}
}
