// Package store persists the serialized document and ingests background
// images. Persistence is plain indented JSON round-tripping every
// Document field (including zIndex and isVisible); the background raster
// travels as base64 PNG so loading restores the exact session.
package store

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image/png"
	"io"
	"log"
	"os"

	"CaptionBoard/internal/state"
)

// snapshot is the on-disk shape: the Document fields plus the encoded
// background raster.
type snapshot struct {
	state.Document
	ImageData string `json:"imageData,omitempty"`
}

// Save writes the document as indented JSON.
func Save(w io.Writer, doc *state.Document) error {
	snap := snapshot{Document: *doc.Clone()}
	if doc.HasImage() {
		var buf bytes.Buffer
		if err := png.Encode(&buf, doc.Image); err != nil {
			return fmt.Errorf("store: encode background: %w", err)
		}
		snap.ImageData = base64.StdEncoding.EncodeToString(buf.Bytes())
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("store: marshal: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("store: write: %w", err)
	}
	return nil
}

// Load reads a document saved by Save, re-establishing the model
// invariants: an imageless document carries no layers and no selection,
// and a stale selection id is cleared.
func Load(r io.Reader) (*state.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("store: read: %w", err)
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("store: parse: %w", err)
	}

	doc := snap.Document.Clone()
	if snap.ImageData != "" {
		raw, err := base64.StdEncoding.DecodeString(snap.ImageData)
		if err != nil {
			return nil, fmt.Errorf("store: background data: %w", err)
		}
		img, err := png.Decode(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("store: decode background: %w", err)
		}
		doc.Image = img
		if doc.ImageWidth <= 0 || doc.ImageHeight <= 0 {
			doc.ImageWidth = img.Bounds().Dx()
			doc.ImageHeight = img.Bounds().Dy()
		}
	}

	if !doc.HasImage() {
		doc.Image = nil
		doc.Layers = nil
		doc.Selected = ""
		return doc, nil
	}
	if doc.Selected != "" {
		if _, ok := doc.LayerByID(doc.Selected); !ok {
			doc.Selected = ""
		}
	}
	return doc, nil
}

// SaveFile persists the document to path.
func SaveFile(path string, doc *state.Document) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("store: create %s: %w", path, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("[STORE] Error closing %s: %v", path, err)
		}
	}()
	return Save(f, doc)
}

// LoadFile restores a document from path.
func LoadFile(path string) (*state.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("[STORE] Error closing %s: %v", path, err)
		}
	}()
	return Load(f)
}
