package geometry

import "math"

// GridUnit is the spacing of the snap grid in document units.
const GridUnit = 20.0

// CenterSnapThreshold is how close (in document units) a position must be
// to the canvas center before it snaps onto it.
const CenterSnapThreshold = 50.0

// SnapConfig describes the active snapping behavior for a document.
type SnapConfig struct {
	GridEnabled bool
	GridUnit    float64
	CenterX     float64
	CenterY     float64
	Threshold   float64
}

// NewSnapConfig returns a snap configuration for a canvas of the given size.
func NewSnapConfig(gridEnabled bool, canvasWidth, canvasHeight float64) SnapConfig {
	return SnapConfig{
		GridEnabled: gridEnabled,
		GridUnit:    GridUnit,
		CenterX:     canvasWidth / 2,
		CenterY:     canvasHeight / 2,
		Threshold:   CenterSnapThreshold,
	}
}

// SnapToGrid rounds v to the nearest multiple of unit.
func SnapToGrid(v, unit float64) float64 {
	if unit <= 0 {
		return v
	}
	return math.Round(v/unit) * unit
}

// SnapAxisToCenter clamps v exactly onto center when it lies within
// threshold of it, otherwise returns v unchanged.
func SnapAxisToCenter(v, center, threshold float64) float64 {
	if math.Abs(v-center) <= threshold {
		return center
	}
	return v
}

// SnapPosition runs the full snap pipeline on a candidate position:
// grid snap first (when enabled), then center snap per axis. Center snap
// is evaluated against the grid-snapped value and can override it.
func SnapPosition(x, y float64, cfg SnapConfig) (float64, float64) {
	if cfg.GridEnabled {
		x = SnapToGrid(x, cfg.GridUnit)
		y = SnapToGrid(y, cfg.GridUnit)
	}
	x = SnapAxisToCenter(x, cfg.CenterX, cfg.Threshold)
	y = SnapAxisToCenter(y, cfg.CenterY, cfg.Threshold)
	return x, y
}

// FitWithin scales (w, h) down to fit inside (maxW, maxH) preserving
// aspect ratio. Dimensions already inside the bounds are returned as-is;
// it never upscales.
func FitWithin(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	if w <= maxW && h <= maxH {
		return w, h
	}
	scale := math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	fw := int(math.Round(float64(w) * scale))
	fh := int(math.Round(float64(h) * scale))
	if fw < 1 {
		fw = 1
	}
	if fh < 1 {
		fh = 1
	}
	return fw, fh
}

// Rect is an axis-aligned rectangle in document coordinates.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Edges count as inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Inflate grows the rectangle by m units on every side.
func (r Rect) Inflate(m float64) Rect {
	return Rect{
		X:      r.X - m,
		Y:      r.Y - m,
		Width:  r.Width + 2*m,
		Height: r.Height + 2*m,
	}
}

// DenseRanks maps a slice of integer keys to their dense 0..N-1 ranks,
// preserving relative order. Ties keep their slice order, so applying it
// twice yields the same result. This is the z-index renormalization
// primitive.
func DenseRanks(keys []int) []int {
	type indexed struct {
		pos int
		key int
	}
	order := make([]indexed, len(keys))
	for i, k := range keys {
		order[i] = indexed{pos: i, key: k}
	}
	// Stable insertion sort by key; slices are small (layer counts).
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && order[j].key < order[j-1].key; j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}
	ranks := make([]int, len(keys))
	for rank, it := range order {
		ranks[it.pos] = rank
	}
	return ranks
}

// Clamp limits v to the range [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// NormalizeDegrees wraps an angle into [0, 360).
func NormalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}
