package ui

import (
	"fmt"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"CaptionBoard/internal/render"
	"CaptionBoard/internal/session"
	"CaptionBoard/internal/state"
)

// LayerPanel lists layers topmost-first with visibility toggles and
// stacking controls, and edits the selected layer's style.
type LayerPanel struct {
	editor  *EditorWidget
	session *session.Session

	list    *widget.List
	family  *widget.Select
	weight  *widget.Select
	align   *widget.Select
	size    *widget.Slider
	opacity *widget.Slider
	colorIn *widget.Entry

	applying bool
}

// NewLayerPanel builds the side panel over the font catalog.
func NewLayerPanel(e *EditorWidget, s *session.Session, fonts *render.FontLibrary) *LayerPanel {
	p := &LayerPanel{editor: e, session: s}

	var families []string
	for _, f := range fonts.Families() {
		families = append(families, f.Name)
	}

	p.list = widget.NewList(
		func() int { return len(p.session.Document().Layers) },
		func() fyne.CanvasObject {
			return container.NewHBox(
				widget.NewIcon(theme.VisibilityIcon()),
				widget.NewLabel("layer"),
			)
		},
		func(i widget.ListItemID, item fyne.CanvasObject) {
			layers := p.topmostFirst()
			if i >= len(layers) {
				return
			}
			l := layers[i]
			row := item.(*fyne.Container)
			icon := row.Objects[0].(*widget.Icon)
			if l.Visible {
				icon.SetResource(theme.VisibilityIcon())
			} else {
				icon.SetResource(theme.VisibilityOffIcon())
			}
			label := row.Objects[1].(*widget.Label)
			label.SetText(fmt.Sprintf("%s  (%.0fx%.0f)", layerTitle(l), l.Width, l.Height))
		},
	)
	p.list.OnSelected = func(i widget.ListItemID) {
		layers := p.topmostFirst()
		if i < len(layers) {
			p.session.Select(layers[i].ID)
			p.editor.Redraw()
		}
	}

	p.family = widget.NewSelect(families, func(v string) {
		// Unknown families still apply; rendering falls back to the
		// default face.
		if err := fonts.Ensure(v); err != nil {
			log.Printf("[UI] Font %q not renderable: %v", v, err)
		}
		p.patchSelected(state.LayerPatch{FontFamily: &v})
	})
	p.weight = widget.NewSelect([]string{string(state.WeightNormal), string(state.WeightBold)}, func(v string) {
		w := state.FontWeight(v)
		p.patchSelected(state.LayerPatch{FontWeight: &w})
	})
	p.align = widget.NewSelect([]string{string(state.AlignLeft), string(state.AlignCenter), string(state.AlignRight)}, func(v string) {
		a := state.TextAlign(v)
		p.patchSelected(state.LayerPatch{Align: &a})
	})
	p.size = widget.NewSlider(8, 144)
	p.size.Step = 1
	p.size.OnChangeEnded = func(v float64) {
		p.patchSelected(state.LayerPatch{FontSize: &v})
	}
	p.opacity = widget.NewSlider(0, 1)
	p.opacity.Step = 0.05
	p.opacity.OnChangeEnded = func(v float64) {
		p.patchSelected(state.LayerPatch{Opacity: &v})
	}
	p.colorIn = widget.NewEntry()
	p.colorIn.SetPlaceHolder("#000000")
	p.colorIn.OnSubmitted = func(v string) {
		p.patchSelected(state.LayerPatch{Color: &v})
	}

	return p
}

func layerTitle(l state.Layer) string {
	title := l.Text
	if len(title) > 18 {
		title = title[:18] + "…"
	}
	return title
}

// topmostFirst returns the layers in display-list order for the panel:
// highest z first, matching what sits on top in the preview.
func (p *LayerPanel) topmostFirst() []state.Layer {
	sorted := p.session.Document().SortedLayers()
	out := make([]state.Layer, len(sorted))
	for i, l := range sorted {
		out[len(sorted)-1-i] = l
	}
	return out
}

func (p *LayerPanel) patchSelected(patch state.LayerPatch) {
	if p.applying {
		return
	}
	id := p.session.Document().Selected
	if id == "" {
		return
	}
	if p.session.UpdateLayer(id, patch) {
		p.editor.Redraw()
	}
}

// Refresh syncs the panel with the live document.
func (p *LayerPanel) Refresh() {
	p.list.Refresh()
	doc := p.session.Document()
	l, ok := doc.SelectedLayer()
	if !ok {
		return
	}
	p.applying = true
	p.family.SetSelected(l.FontFamily)
	p.weight.SetSelected(string(l.FontWeight))
	p.align.SetSelected(string(l.Align))
	p.size.SetValue(l.FontSize)
	p.opacity.SetValue(l.Opacity)
	p.colorIn.SetText(l.Color)
	p.applying = false

	for i, cand := range p.topmostFirst() {
		if cand.ID == l.ID {
			p.list.Select(i)
			break
		}
	}
}

// Container lays out the list, stacking buttons and the style form.
func (p *LayerPanel) Container() fyne.CanvasObject {
	raise := widget.NewButtonWithIcon("Raise", theme.MoveUpIcon(), func() { p.restack(+1) })
	lower := widget.NewButtonWithIcon("Lower", theme.MoveDownIcon(), func() { p.restack(-1) })
	toggle := widget.NewButtonWithIcon("Show/Hide", theme.VisibilityIcon(), func() {
		if id := p.session.Document().Selected; id != "" {
			p.session.ToggleVisible(id)
			p.editor.Redraw()
		}
	})

	form := widget.NewForm(
		widget.NewFormItem("Font", p.family),
		widget.NewFormItem("Weight", p.weight),
		widget.NewFormItem("Align", p.align),
		widget.NewFormItem("Size", p.size),
		widget.NewFormItem("Opacity", p.opacity),
		widget.NewFormItem("Color", p.colorIn),
	)

	return container.NewBorder(
		widget.NewLabel("Layers"),
		container.NewVBox(container.NewHBox(raise, lower, toggle), widget.NewSeparator(), form),
		nil, nil,
		p.list,
	)
}

// restack moves the selected layer one stacking position up or down.
func (p *LayerPanel) restack(delta int) {
	l, ok := p.session.Document().SelectedLayer()
	if !ok {
		return
	}
	if p.session.Reorder(l.ZIndex, l.ZIndex+delta) {
		p.editor.Redraw()
	}
}
