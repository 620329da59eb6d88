package ui

import (
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"

	"CaptionBoard/internal/render"
	"CaptionBoard/internal/session"
	"CaptionBoard/internal/state"
	"CaptionBoard/internal/store"
)

// filePersister autosaves the document to a fixed path after every
// mutation.
type filePersister struct {
	path string
}

func (p filePersister) Save(doc *state.Document) error {
	return store.SaveFile(p.path, doc)
}

// RunApp opens the editor window. imagePath optionally preloads a
// background; autosavePath, when non-empty, receives the document after
// every change and is restored on the next start.
func RunApp(imagePath, autosavePath string) {
	myApp := app.New()
	myWindow := myApp.NewWindow("CaptionBoard")
	myWindow.Resize(fyne.NewSize(1280, 800))

	fonts := render.NewFontLibrary()
	renderer := render.NewRenderer(fonts)
	sess := session.New(fonts, state.UUIDSource{})

	if autosavePath != "" {
		if doc, err := store.LoadFile(autosavePath); err == nil {
			sess.Restore(doc)
			log.Printf("[UI] Restored previous session from %s", autosavePath)
		}
		sess.SetPersister(filePersister{path: autosavePath})
	}

	editor := NewEditorWidget(sess, renderer, myWindow)

	panel := NewLayerPanel(editor, sess, fonts)
	editor.OnChange = panel.Refresh

	toolbar := NewToolbar(editor, sess, myWindow)
	content := container.NewBorder(toolbar, nil, nil, panel.Container(), container.NewScroll(editor))
	myWindow.SetContent(content)

	registerShortcuts(myWindow, editor, sess)

	if imagePath != "" {
		token := sess.BeginImageLoad()
		go func() {
			img, w, h, err := store.LoadImageFile(imagePath)
			fyne.Do(func() {
				if err != nil {
					log.Printf("[UI] Could not load %s: %v", imagePath, err)
					return
				}
				if sess.FinishImageLoad(token, img, w, h) {
					editor.Redraw()
				}
			})
		}()
	}

	editor.Redraw()
	myWindow.ShowAndRun()
	editor.Stop()
}

// registerShortcuts wires history and duplicate onto Ctrl combinations,
// plain keys onto the editor, and tracks the shift modifier for
// amplified nudge and rotate.
func registerShortcuts(win fyne.Window, editor *EditorWidget, sess *session.Session) {
	c := win.Canvas()

	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) {
		if err := sess.Undo(); err == nil {
			editor.Redraw()
		}
	})
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierControl | fyne.KeyModifierShift}, func(fyne.Shortcut) {
		if err := sess.Redo(); err == nil {
			editor.Redraw()
		}
	})
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyY, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) {
		if err := sess.Redo(); err == nil {
			editor.Redraw()
		}
	})
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyD, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) {
		if id := sess.Document().Selected; id != "" {
			sess.DuplicateLayer(id)
			editor.Redraw()
		}
	})

	c.SetOnTypedKey(editor.HandleKey)
	if dc, ok := c.(desktop.Canvas); ok {
		dc.SetOnKeyDown(func(ev *fyne.KeyEvent) {
			if ev.Name == desktop.KeyShiftLeft || ev.Name == desktop.KeyShiftRight {
				editor.SetShift(true)
			}
		})
		dc.SetOnKeyUp(func(ev *fyne.KeyEvent) {
			if ev.Name == desktop.KeyShiftLeft || ev.Name == desktop.KeyShiftRight {
				editor.SetShift(false)
			}
		})
	}
}
