package store

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"os"

	xdraw "golang.org/x/image/draw"

	"CaptionBoard/internal/geometry"
)

// Upload-time bounds: backgrounds are downscaled to fit before entering
// the document, preserving aspect ratio.
const (
	MaxImageWidth  = 1200
	MaxImageHeight = 800
)

// DecodeImage decodes a background image and fits it within the upload
// bounds. The returned dimensions are the authoritative document canvas
// size.
func DecodeImage(r io.Reader) (image.Image, int, int, error) {
	src, format, err := image.Decode(r)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("store: decode image: %w", err)
	}

	sw := src.Bounds().Dx()
	sh := src.Bounds().Dy()
	w, h := geometry.FitWithin(sw, sh, MaxImageWidth, MaxImageHeight)
	if w == sw && h == sh {
		return src, w, h, nil
	}

	log.Printf("[STORE] Downscaling %s background %dx%d -> %dx%d", format, sw, sh, w, h)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst, w, h, nil
}

// LoadImageFile decodes and fits a background image from disk.
func LoadImageFile(path string) (image.Image, int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("store: open %s: %w", path, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("[STORE] Error closing %s: %v", path, err)
		}
	}()
	return DecodeImage(f)
}
