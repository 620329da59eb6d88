package store

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"CaptionBoard/internal/state"
)

type stubMeasurer struct{}

func (stubMeasurer) MeasureText(text, family string, weight state.FontWeight, size float64) (float64, float64) {
	return float64(len(text)) * size * 0.6, size
}

func sessionDoc(t *testing.T) *state.Document {
	t.Helper()
	bg := image.NewRGBA(image.Rect(0, 0, 120, 80))
	for y := 0; y < 80; y++ {
		for x := 0; x < 120; x++ {
			bg.SetRGBA(x, y, color.RGBA{10, 200, 60, 255})
		}
	}
	doc := state.CreateEmpty().LoadImage(bg, 120, 80)

	a := state.NewLayer("a", 30, 40)
	a.Text = "Top"
	a.Rotation = 45
	a.Color = "#ff8800"
	a.Opacity = 0.5
	a.Align = state.AlignRight
	a.FontWeight = state.WeightBold

	b := state.NewLayer("b", 60, 20)
	b.Visible = false
	b.Shadow = "2px"
	b.Border = "thin"
	b.Background = "#ffffff"

	doc = doc.AddLayer(a, stubMeasurer{})
	doc = doc.AddLayer(b, stubMeasurer{})
	return doc.Select("a")
}

func TestRoundTrip(t *testing.T) {
	doc := sessionDoc(t)

	var buf bytes.Buffer
	if err := Save(&buf, doc); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if loaded.ImageWidth != 120 || loaded.ImageHeight != 80 {
		t.Errorf("dimensions = %dx%d, want 120x80", loaded.ImageWidth, loaded.ImageHeight)
	}
	if !loaded.HasImage() {
		t.Fatal("background raster was not restored")
	}
	if loaded.Selected != "a" {
		t.Errorf("selection = %q, want %q", loaded.Selected, "a")
	}
	if len(loaded.Layers) != len(doc.Layers) {
		t.Fatalf("layer count = %d, want %d", len(loaded.Layers), len(doc.Layers))
	}
	for i := range doc.Layers {
		if loaded.Layers[i] != doc.Layers[i] {
			t.Errorf("layer %d differs:\n got %+v\nwant %+v", i, loaded.Layers[i], doc.Layers[i])
		}
	}

	// The restored raster must hold the original pixels.
	r, g, _, _ := loaded.Image.At(5, 5).RGBA()
	if r>>8 != 10 || g>>8 != 200 {
		t.Errorf("restored pixel = (%d, %d), want (10, 200)", r>>8, g>>8)
	}
}

func TestSerializedFieldNames(t *testing.T) {
	var buf bytes.Buffer
	if err := Save(&buf, sessionDoc(t)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	out := buf.String()
	for _, field := range []string{`"zIndex"`, `"isVisible"`, `"selectedLayerId"`, `"textAlign"`, `"fontWeight"`} {
		if !strings.Contains(out, field) {
			t.Errorf("serialized document missing %s", field)
		}
	}
}

func TestLoadClearsStaleSelection(t *testing.T) {
	doc := sessionDoc(t)
	var buf bytes.Buffer
	if err := Save(&buf, doc); err != nil {
		t.Fatalf("Save: %v", err)
	}
	// Corrupt the selection to a deleted layer id.
	tampered := strings.Replace(buf.String(), `"selectedLayerId": "a"`, `"selectedLayerId": "gone"`, 1)

	loaded, err := Load(strings.NewReader(tampered))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Selected != "" {
		t.Errorf("selection = %q, want stale id cleared", loaded.Selected)
	}
}

func TestLoadImagelessDropsLayers(t *testing.T) {
	loaded, err := Load(strings.NewReader(`{
		"imageWidth": 0, "imageHeight": 0,
		"layers": [{"id": "ghost", "zIndex": 0}],
		"selectedLayerId": "ghost"
	}`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded.Layers) != 0 || loaded.Selected != "" {
		t.Error("imageless document must reset to no layers, no selection")
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	if _, err := Load(strings.NewReader("not json")); err == nil {
		t.Error("Load of invalid data should fail")
	}
}

func TestDecodeImageKeepsSmall(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 640, 480))
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatalf("encode: %v", err)
	}

	_, w, h, err := DecodeImage(&buf)
	if err != nil {
		t.Fatalf("DecodeImage: %v", err)
	}
	if w != 640 || h != 480 {
		t.Errorf("size = %dx%d, want untouched 640x480", w, h)
	}
}

func TestDecodeImageDownscales(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2400, 1600))
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatalf("encode: %v", err)
	}

	img, w, h, err := DecodeImage(&buf)
	if err != nil {
		t.Fatalf("DecodeImage: %v", err)
	}
	if w != 1200 || h != 800 {
		t.Errorf("size = %dx%d, want fit to 1200x800", w, h)
	}
	if img.Bounds().Dx() != w || img.Bounds().Dy() != h {
		t.Error("returned raster does not match reported dimensions")
	}
}
