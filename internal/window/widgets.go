package window

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// padButton is a rectangle that reports mouse down and up, like a pad
type padButton struct {
	widget.BaseWidget
	rect   *canvas.Rectangle
	onEdge func(down bool)
	down   bool
}

var _ desktop.Mouseable = (*padButton)(nil)

func newPadButton(rect *canvas.Rectangle, onEdge func(down bool)) *padButton {
	p := &padButton{rect: rect, onEdge: onEdge}
	p.ExtendBaseWidget(p)
	return p
}

func (p *padButton) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(p.rect)
}

func (p *padButton) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary || p.down {
		return
	}
	p.down = true
	p.fire(true)
}

func (p *padButton) MouseUp(*desktop.MouseEvent) {
	if !p.down {
		return
	}
	p.down = false
	p.fire(false)
}

func (p *padButton) fire(down bool) {
	if p.onEdge != nil {
		p.onEdge(down)
	}
}
