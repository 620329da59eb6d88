// Package export encodes a rendered document for download: PNG, JPEG or
// a single-page PDF wrapping the rendered bitmap. It reads the live
// Document and never mutates it; a failed export leaves the document
// untouched.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"math"

	"github.com/jung-kurt/gofpdf"

	"CaptionBoard/internal/geometry"
	"CaptionBoard/internal/render"
	"CaptionBoard/internal/state"
)

// Format selects the output encoding.
type Format string

const (
	FormatPNG Format = "png"
	FormatJPG Format = "jpg"
	FormatPDF Format = "pdf"
)

// Export scale limits.
const (
	MinScale = 0.5
	MaxScale = 3.0
)

var (
	// ErrNoImage: exporting is meaningless without a background.
	ErrNoImage = errors.New("no background image loaded")
	// ErrBadFormat reports an unsupported output format.
	ErrBadFormat = errors.New("unsupported export format")
)

// Options configure one export. Quality is 0..1 and honored for JPEG
// only; Scale is clamped into [0.5, 3] and defaults to 1 when zero.
type Options struct {
	Format  Format
	Quality float64
	Scale   float64
}

// Export renders the document at the requested scale and encodes it.
// The render carries no preview decorations: no grid, no selection
// overlay, white underlay so transparent source regions export white and
// JPEG has something sensible where alpha would be.
func Export(doc *state.Document, r *render.Renderer, opts Options) ([]byte, error) {
	if !doc.HasImage() {
		return nil, fmt.Errorf("export: %w", ErrNoImage)
	}
	scale := opts.Scale
	if scale == 0 {
		scale = 1
	}
	scale = geometry.Clamp(scale, MinScale, MaxScale)

	img, err := r.Render(doc, scale, render.Options{})
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	var buf bytes.Buffer
	switch opts.Format {
	case FormatPNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("export: encode png: %w", err)
		}
	case FormatJPG:
		q := int(math.Round(geometry.Clamp(opts.Quality, 0, 1) * 100))
		if q < 1 {
			q = 1
		}
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: q}); err != nil {
			return nil, fmt.Errorf("export: encode jpeg: %w", err)
		}
	case FormatPDF:
		data, err := encodePDF(img)
		if err != nil {
			return nil, fmt.Errorf("export: encode pdf: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("export: %w: %q", ErrBadFormat, opts.Format)
	}
	return buf.Bytes(), nil
}

// encodePDF wraps the rendered bitmap in a single full-bleed PDF page
// sized to the bitmap in points.
func encodePDF(img *image.RGBA) ([]byte, error) {
	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img); err != nil {
		return nil, err
	}

	w := float64(img.Bounds().Dx())
	h := float64(img.Bounds().Dy())
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: w, Ht: h},
	})
	pdf.AddPage()

	imgOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("canvas", imgOpts, &pngBuf)
	pdf.ImageOptions("canvas", 0, 0, w, h, false, imgOpts, 0, "")

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
