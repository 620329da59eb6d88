package ui

import (
	"fmt"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"CaptionBoard/internal/export"
	"CaptionBoard/internal/session"
	"CaptionBoard/internal/store"
)

// NewToolbar assembles the top bar: file operations, layer commands,
// history, grid toggle and zoom.
func NewToolbar(e *EditorWidget, s *session.Session, win fyne.Window) fyne.CanvasObject {
	tb := widget.NewToolbar(
		widget.NewToolbarAction(theme.FolderOpenIcon(), func() { openImageDialog(e, s, win) }),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), func() { saveProjectDialog(s, win) }),
		widget.NewToolbarAction(theme.FolderIcon(), func() { openProjectDialog(e, s, win) }),
		widget.NewToolbarAction(theme.DownloadIcon(), func() { exportDialog(e, s, win) }),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ContentAddIcon(), func() {
			doc := s.Document()
			s.AddTextLayer(float64(doc.ImageWidth)/2, float64(doc.ImageHeight)/2)
			e.Redraw()
		}),
		widget.NewToolbarAction(theme.ContentCopyIcon(), func() {
			if id := s.Document().Selected; id != "" {
				s.DuplicateLayer(id)
				e.Redraw()
			}
		}),
		widget.NewToolbarAction(theme.DeleteIcon(), func() {
			if id := s.Document().Selected; id != "" {
				s.DeleteLayer(id)
				e.Redraw()
			}
		}),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ContentUndoIcon(), func() {
			if err := s.Undo(); err == nil {
				e.Redraw()
			}
		}),
		widget.NewToolbarAction(theme.ContentRedoIcon(), func() {
			if err := s.Redo(); err == nil {
				e.Redraw()
			}
		}),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ViewRefreshIcon(), func() {
			dialog.ShowConfirm("Reset", "Discard the image, all layers and history?", func(ok bool) {
				if ok {
					s.Reset()
					e.Redraw()
				}
			}, win)
		}),
	)

	gridCheck := widget.NewCheck("Grid", func(on bool) {
		s.SetGrid(on)
		e.Redraw()
	})

	zoomSelect := widget.NewSelect([]string{"50%", "100%", "200%"}, func(choice string) {
		switch choice {
		case "50%":
			e.SetZoom(0.5)
		case "200%":
			e.SetZoom(2)
		default:
			e.SetZoom(1)
		}
	})
	zoomSelect.SetSelected("100%")

	return container.NewHBox(
		tb,
		widget.NewSeparator(),
		gridCheck,
		widget.NewSeparator(),
		widget.NewLabel("Zoom:"),
		zoomSelect,
		layout.NewSpacer(),
	)
}

// openImageDialog loads a background image. Decoding runs off the UI
// thread; the session generation token discards a load superseded by a
// newer one.
func openImageDialog(e *EditorWidget, s *session.Session, win fyne.Window) {
	fd := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil || rc == nil {
			return
		}
		token := s.BeginImageLoad()
		go func() {
			defer func() {
				if err := rc.Close(); err != nil {
					log.Printf("[UI] Error closing %s: %v", rc.URI(), err)
				}
			}()
			img, w, h, err := store.DecodeImage(rc)
			fyne.Do(func() {
				if err != nil {
					dialog.ShowError(err, win)
					return
				}
				if s.FinishImageLoad(token, img, w, h) {
					e.Redraw()
				}
			})
		}()
	}, win)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".png", ".jpg", ".jpeg", ".gif"}))
	fd.Show()
}

func saveProjectDialog(s *session.Session, win fyne.Window) {
	fd := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil || wc == nil {
			return
		}
		defer func() {
			if err := wc.Close(); err != nil {
				log.Printf("[UI] Error closing %s: %v", wc.URI(), err)
			}
		}()
		if err := store.Save(wc, s.Document()); err != nil {
			dialog.ShowError(err, win)
		}
	}, win)
	fd.SetFileName("untitled.board.json")
	fd.Show()
}

func openProjectDialog(e *EditorWidget, s *session.Session, win fyne.Window) {
	fd := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil || rc == nil {
			return
		}
		defer func() {
			if err := rc.Close(); err != nil {
				log.Printf("[UI] Error closing %s: %v", rc.URI(), err)
			}
		}()
		doc, err := store.Load(rc)
		if err != nil {
			dialog.ShowError(err, win)
			return
		}
		s.Restore(doc)
		e.Redraw()
	}, win)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".json"}))
	fd.Show()
}

// exportDialog collects format, scale and quality, then writes the
// rendered bitmap through the export pipeline.
func exportDialog(e *EditorWidget, s *session.Session, win fyne.Window) {
	if !s.Document().HasImage() {
		dialog.ShowInformation("Export", "Load a background image first.", win)
		return
	}

	format := widget.NewSelect([]string{"png", "jpg", "pdf"}, nil)
	format.SetSelected("png")
	scale := widget.NewSelect([]string{"0.5x", "1x", "2x", "3x"}, nil)
	scale.SetSelected("1x")
	quality := widget.NewSlider(0.1, 1.0)
	quality.Step = 0.05
	quality.SetValue(0.92)

	form := widget.NewForm(
		widget.NewFormItem("Format", format),
		widget.NewFormItem("Scale", scale),
		widget.NewFormItem("JPEG quality", quality),
	)

	dialog.ShowCustomConfirm("Export", "Export", "Cancel", form, func(ok bool) {
		if !ok {
			return
		}
		opts := export.Options{
			Format:  export.Format(format.Selected),
			Quality: quality.Value,
			Scale:   exportScale(scale.Selected),
		}
		fd := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
			if err != nil || wc == nil {
				return
			}
			defer func() {
				if err := wc.Close(); err != nil {
					log.Printf("[UI] Error closing %s: %v", wc.URI(), err)
				}
			}()
			data, err := export.Export(s.Document(), e.renderer, opts)
			if err != nil {
				dialog.ShowError(err, win)
				return
			}
			if _, err := wc.Write(data); err != nil {
				dialog.ShowError(err, win)
				return
			}
			log.Printf("[UI] Exported %d bytes as %s", len(data), opts.Format)
		}, win)
		fd.SetFileName(fmt.Sprintf("export.%s", format.Selected))
		fd.Show()
	}, win)
}

func exportScale(choice string) float64 {
	switch choice {
	case "0.5x":
		return 0.5
	case "2x":
		return 2
	case "3x":
		return 3
	}
	return 1
}
