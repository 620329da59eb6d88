package state

import (
	"image"
	"testing"
)

// fixedMeasurer gives font-free deterministic metrics: width scales with
// rune count and size, height equals size.
type fixedMeasurer struct{}

func (fixedMeasurer) MeasureText(text, family string, weight FontWeight, size float64) (float64, float64) {
	return float64(len([]rune(text))) * size * 0.6, size
}

func newTestDoc(t *testing.T) *Document {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 400, 300))
	return CreateEmpty().LoadImage(img, 400, 300)
}

func checkDenseZ(t *testing.T, doc *Document) {
	t.Helper()
	seen := make(map[int]bool)
	for _, l := range doc.Layers {
		if l.ZIndex < 0 || l.ZIndex >= len(doc.Layers) {
			t.Fatalf("zIndex %d out of range for %d layers", l.ZIndex, len(doc.Layers))
		}
		if seen[l.ZIndex] {
			t.Fatalf("duplicate zIndex %d", l.ZIndex)
		}
		seen[l.ZIndex] = true
	}
}

func TestAddLayerWithoutImage(t *testing.T) {
	doc := CreateEmpty()
	next := doc.AddLayer(NewLayer("a", 0, 0), fixedMeasurer{})
	if next != doc {
		t.Error("adding a layer with no image loaded should be a no-op")
	}
}

func TestAddLayerAssignsTopZ(t *testing.T) {
	doc := newTestDoc(t)
	doc = doc.AddLayer(NewLayer("a", 10, 10), fixedMeasurer{})
	doc = doc.AddLayer(NewLayer("b", 20, 20), fixedMeasurer{})

	a, _ := doc.LayerByID("a")
	b, _ := doc.LayerByID("b")
	if a.ZIndex != 0 || b.ZIndex != 1 {
		t.Errorf("z-indexes = %d, %d; want 0, 1", a.ZIndex, b.ZIndex)
	}
	checkDenseZ(t, doc)
}

func TestAddLayerMeasures(t *testing.T) {
	doc := newTestDoc(t)
	l := NewLayer("a", 0, 0)
	l.Text = "Hello"
	l.FontSize = 10
	doc = doc.AddLayer(l, fixedMeasurer{})
	got, _ := doc.LayerByID("a")
	if got.Width != 30 || got.Height != 10 {
		t.Errorf("measured box = (%v, %v), want (30, 10)", got.Width, got.Height)
	}
}

func TestDuplicateLayer(t *testing.T) {
	doc := newTestDoc(t)
	doc = doc.AddLayer(NewLayer("src", 10, 10), fixedMeasurer{})

	ids := NewSequenceSource("dup")
	doc = doc.DuplicateLayer("src", ids)

	if len(doc.Layers) != 2 {
		t.Fatalf("layer count = %d, want 2", len(doc.Layers))
	}
	dup, ok := doc.LayerByID("dup-1")
	if !ok {
		t.Fatal("duplicate not found under fresh id")
	}
	if dup.X != 30 || dup.Y != 30 {
		t.Errorf("duplicate at (%v, %v), want (30, 30)", dup.X, dup.Y)
	}
	if dup.ID == "src" {
		t.Error("duplicate must carry a different id")
	}
	src, _ := doc.LayerByID("src")
	if src.ZIndex != 0 || dup.ZIndex != 1 {
		t.Errorf("z-indexes = %d, %d; want 0, 1", src.ZIndex, dup.ZIndex)
	}
	checkDenseZ(t, doc)
}

func TestDuplicateUnknownIDIsNoop(t *testing.T) {
	doc := newTestDoc(t)
	doc = doc.AddLayer(NewLayer("a", 0, 0), fixedMeasurer{})
	next := doc.DuplicateLayer("missing", NewSequenceSource("x"))
	if next != doc {
		t.Error("duplicating an unknown id should be a no-op")
	}
}

func TestDeleteLayerClearsSelection(t *testing.T) {
	doc := newTestDoc(t)
	doc = doc.AddLayer(NewLayer("a", 0, 0), fixedMeasurer{})
	doc = doc.AddLayer(NewLayer("b", 0, 0), fixedMeasurer{})
	doc = doc.Select("b")

	doc = doc.DeleteLayer("b")
	if doc.Selected != "" {
		t.Errorf("selection = %q, want cleared after deleting selected layer", doc.Selected)
	}
	if len(doc.Layers) != 1 {
		t.Fatalf("layer count = %d, want 1", len(doc.Layers))
	}
	checkDenseZ(t, doc)
}

func TestDeleteKeepsOtherSelection(t *testing.T) {
	doc := newTestDoc(t)
	doc = doc.AddLayer(NewLayer("a", 0, 0), fixedMeasurer{})
	doc = doc.AddLayer(NewLayer("b", 0, 0), fixedMeasurer{})
	doc = doc.Select("a")

	doc = doc.DeleteLayer("b")
	if doc.Selected != "a" {
		t.Errorf("selection = %q, want %q", doc.Selected, "a")
	}
}

func TestUpdateLayerPatch(t *testing.T) {
	doc := newTestDoc(t)
	doc = doc.AddLayer(NewLayer("a", 10, 10), fixedMeasurer{})

	text := "Hi"
	size := 20.0
	op := 1.5 // clamped to 1
	doc = doc.UpdateLayer("a", LayerPatch{Text: &text, FontSize: &size, Opacity: &op}, fixedMeasurer{})

	got, _ := doc.LayerByID("a")
	if got.Text != "Hi" || got.FontSize != 20 {
		t.Errorf("patch not applied: %+v", got)
	}
	if got.Opacity != 1 {
		t.Errorf("opacity = %v, want clamped to 1", got.Opacity)
	}
	if got.Width != 24 || got.Height != 20 {
		t.Errorf("re-measured box = (%v, %v), want (24, 20)", got.Width, got.Height)
	}
}

func TestUpdateLayerPositionSkipsMeasure(t *testing.T) {
	doc := newTestDoc(t)
	doc = doc.AddLayer(NewLayer("a", 10, 10), fixedMeasurer{})
	before, _ := doc.LayerByID("a")

	x := 50.0
	doc = doc.UpdateLayer("a", LayerPatch{X: &x}, nil)
	after, _ := doc.LayerByID("a")
	if after.X != 50 {
		t.Errorf("x = %v, want 50", after.X)
	}
	if after.Width != before.Width || after.Height != before.Height {
		t.Error("position-only patch must not change measured box")
	}
}

func TestUpdateUnknownIDIsNoop(t *testing.T) {
	doc := newTestDoc(t)
	x := 1.0
	next := doc.UpdateLayer("missing", LayerPatch{X: &x}, nil)
	if next != doc {
		t.Error("updating an unknown id should be a no-op")
	}
}

func TestReorder(t *testing.T) {
	doc := newTestDoc(t)
	for _, id := range []string{"a", "b", "c", "d"} {
		doc = doc.AddLayer(NewLayer(id, 0, 0), fixedMeasurer{})
	}

	// Move bottom layer to the top: a b c d -> b c d a.
	doc = doc.Reorder(0, 3)

	wantOrder := []string{"b", "c", "d", "a"}
	for z, id := range wantOrder {
		l, _ := doc.LayerByID(id)
		if l.ZIndex != z {
			t.Errorf("layer %q zIndex = %d, want %d", id, l.ZIndex, z)
		}
	}
	checkDenseZ(t, doc)
}

func TestReorderClampsTarget(t *testing.T) {
	doc := newTestDoc(t)
	doc = doc.AddLayer(NewLayer("a", 0, 0), fixedMeasurer{})
	doc = doc.AddLayer(NewLayer("b", 0, 0), fixedMeasurer{})

	doc = doc.Reorder(0, 99)
	a, _ := doc.LayerByID("a")
	if a.ZIndex != 1 {
		t.Errorf("a zIndex = %d, want clamped move to top", a.ZIndex)
	}
	checkDenseZ(t, doc)
}

func TestReorderInvalidSourceIsNoop(t *testing.T) {
	doc := newTestDoc(t)
	doc = doc.AddLayer(NewLayer("a", 0, 0), fixedMeasurer{})
	if next := doc.Reorder(5, 0); next != doc {
		t.Error("reordering from an out-of-range position should be a no-op")
	}
}

func TestSelect(t *testing.T) {
	doc := newTestDoc(t)
	doc = doc.AddLayer(NewLayer("a", 0, 0), fixedMeasurer{})

	doc = doc.Select("a")
	if doc.Selected != "a" {
		t.Errorf("selection = %q, want %q", doc.Selected, "a")
	}
	if next := doc.Select("missing"); next != doc {
		t.Error("selecting an unknown id should be a no-op")
	}
	doc = doc.Select("")
	if doc.Selected != "" {
		t.Error("empty id should clear the selection")
	}
}

func TestZDensityAfterMixedOps(t *testing.T) {
	doc := newTestDoc(t)
	ids := NewSequenceSource("l")
	for i := 0; i < 5; i++ {
		doc = doc.AddLayer(NewLayer(ids.NewID(), float64(i), float64(i)), fixedMeasurer{})
	}
	doc = doc.DeleteLayer("l-3")
	doc = doc.DuplicateLayer("l-1", ids)
	doc = doc.Reorder(4, 0)
	doc = doc.DeleteLayer("l-5")
	checkDenseZ(t, doc)
}

func TestCloneIsolation(t *testing.T) {
	doc := newTestDoc(t)
	doc = doc.AddLayer(NewLayer("a", 0, 0), fixedMeasurer{})

	clone := doc.Clone()
	clone.Layers[0].X = 999
	clone.Selected = "a"

	orig, _ := doc.LayerByID("a")
	if orig.X != 0 || doc.Selected != "" {
		t.Error("mutating a clone must not affect the original")
	}
}
