// Package ui is the Fyne chrome around the editor core: a preview
// widget, the toolbar and the layer panel. It holds no document state
// beyond view concerns (zoom, dash phase); every edit goes through the
// session command layer.
package ui

import (
	"image"
	"image/color"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"CaptionBoard/internal/geometry"
	"CaptionBoard/internal/input"
	"CaptionBoard/internal/render"
	"CaptionBoard/internal/session"
)

// dashInterval drives the marching-ants animation on the selection box.
const dashInterval = 150 * time.Millisecond

// EditorWidget shows the live preview render and translates pointer and
// keyboard input into session commands.
type EditorWidget struct {
	widget.BaseWidget
	session  *session.Session
	renderer *render.Renderer
	preview  *canvas.Image
	win      fyne.Window

	zoom      float64
	shiftDown bool
	dashPhase int
	dashStop  chan struct{}

	// OnChange is invoked after every visible document change so the
	// surrounding chrome (layer panel, toolbar state) can refresh.
	OnChange func()
}

var _ fyne.Widget = (*EditorWidget)(nil)
var _ fyne.Draggable = (*EditorWidget)(nil)
var _ fyne.DoubleTappable = (*EditorWidget)(nil)
var _ desktop.Mouseable = (*EditorWidget)(nil)

func NewEditorWidget(s *session.Session, r *render.Renderer, win fyne.Window) *EditorWidget {
	e := &EditorWidget{
		session:  s,
		renderer: r,
		win:      win,
		zoom:     1.0,
		dashStop: make(chan struct{}),
	}
	e.preview = canvas.NewImageFromImage(placeholderImage())
	e.preview.FillMode = canvas.ImageFillOriginal
	e.preview.ScaleMode = canvas.ImageScalePixels
	e.preview.SetMinSize(fyne.NewSize(800, 500))
	e.ExtendBaseWidget(e)
	go e.runDashTicker()
	return e
}

// placeholderImage is shown before any background is loaded.
func placeholderImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 800, 500))
	for y := 0; y < 500; y++ {
		for x := 0; x < 800; x++ {
			img.SetRGBA(x, y, color.RGBA{235, 236, 240, 255})
		}
	}
	return img
}

func (e *EditorWidget) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(e.preview)
}

// Redraw re-renders the preview from the live document and notifies the
// chrome.
func (e *EditorWidget) Redraw() {
	e.redrawPreview()
	if e.OnChange != nil {
		e.OnChange()
	}
}

func (e *EditorWidget) redrawPreview() {
	doc := e.session.Document()
	if !doc.HasImage() {
		e.preview.Image = placeholderImage()
		e.preview.Refresh()
		return
	}
	img, err := e.renderer.Render(doc, e.zoom, render.Options{
		Grid:        e.session.GridEnabled(),
		GridUnit:    geometry.GridUnit,
		SelectionID: doc.Selected,
		DashPhase:   e.dashPhase,
	})
	if err != nil {
		return
	}
	e.preview.Image = img
	e.preview.SetMinSize(fyne.NewSize(float32(img.Bounds().Dx()), float32(img.Bounds().Dy())))
	e.preview.Refresh()
}

// runDashTicker animates the selection dashes while a layer is selected.
func (e *EditorWidget) runDashTicker() {
	ticker := time.NewTicker(dashInterval)
	defer ticker.Stop()
	for {
		select {
		case <-e.dashStop:
			return
		case <-ticker.C:
			if e.session.Document().Selected == "" {
				continue
			}
			fyne.Do(func() {
				e.dashPhase++
				e.redrawPreview()
			})
		}
	}
}

// Stop ends the dash animation goroutine.
func (e *EditorWidget) Stop() {
	close(e.dashStop)
}

// Zoom returns the preview magnification.
func (e *EditorWidget) Zoom() float64 {
	return e.zoom
}

// SetZoom changes the preview magnification. Document coordinates are
// unaffected; only the surface mapping changes.
func (e *EditorWidget) SetZoom(z float64) {
	if z <= 0 {
		z = 1
	}
	e.zoom = z
	e.Redraw()
}

// SetShift tracks the modifier state for amplified nudge and rotate.
func (e *EditorWidget) SetShift(down bool) {
	e.shiftDown = down
}

func (e *EditorWidget) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	e.session.StartDrag(float64(ev.Position.X), float64(ev.Position.Y), e.zoom)
	e.Redraw()
}

func (e *EditorWidget) MouseUp(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	e.session.EndDrag()
	e.Redraw()
}

func (e *EditorWidget) Dragged(ev *fyne.DragEvent) {
	e.session.DragTo(float64(ev.Position.X), float64(ev.Position.Y), e.zoom)
	e.redrawPreview()
}

func (e *EditorWidget) DragEnd() {
	e.session.EndDrag()
	e.Redraw()
}

func (e *EditorWidget) DoubleTapped(ev *fyne.PointEvent) {
	dc := e.session.DoubleClick(float64(ev.Position.X), float64(ev.Position.Y), e.zoom)
	e.Redraw()
	if dc.Action == input.ClickEditLayer || dc.Action == input.ClickCreateLayer {
		e.OpenTextEditor(dc.LayerID)
	}
}

func (e *EditorWidget) MouseIn(*desktop.MouseEvent)    {}
func (e *EditorWidget) MouseOut()                      {}
func (e *EditorWidget) MouseMoved(*desktop.MouseEvent) {}

// HandleKey routes plain key presses: arrows nudge, R rotates, 0 resets
// rotation, Delete removes the selected layer. History shortcuts live on
// the window as Ctrl combinations.
func (e *EditorWidget) HandleKey(ev *fyne.KeyEvent) {
	// Keys go to whatever widget has focus (text entries) first.
	if e.win.Canvas().Focused() != nil {
		return
	}
	changed := false
	switch ev.Name {
	case fyne.KeyLeft:
		changed = e.session.Nudge(input.DirLeft, e.shiftDown)
	case fyne.KeyRight:
		changed = e.session.Nudge(input.DirRight, e.shiftDown)
	case fyne.KeyUp:
		changed = e.session.Nudge(input.DirUp, e.shiftDown)
	case fyne.KeyDown:
		changed = e.session.Nudge(input.DirDown, e.shiftDown)
	case fyne.KeyR:
		changed = e.session.Rotate(e.shiftDown)
	case fyne.Key0:
		changed = e.session.ResetRotation()
	case fyne.KeyDelete, fyne.KeyBackspace:
		if id := e.session.Document().Selected; id != "" {
			changed = e.session.DeleteLayer(id)
		}
	}
	if changed {
		e.Redraw()
	}
}

// OpenTextEditor shows the modal text entry for a layer. Undo and redo
// are suppressed while it is open.
func (e *EditorWidget) OpenTextEditor(id string) {
	l, ok := e.session.Document().LayerByID(id)
	if !ok {
		return
	}
	e.session.BeginTextEdit()

	entry := widget.NewMultiLineEntry()
	entry.SetText(l.Text)
	d := dialog.NewCustomConfirm("Edit Text", "Apply", "Cancel", entry, func(apply bool) {
		e.session.EndTextEdit()
		if apply {
			e.session.SetText(id, entry.Text)
		}
		e.Redraw()
	}, e.win)
	d.Resize(fyne.NewSize(400, 200))
	d.Show()
	e.win.Canvas().Focus(entry)
}
