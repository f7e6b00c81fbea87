package window

import (
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"github.com/PixPMusic/gopher-resolume/internal/grid"
	"github.com/PixPMusic/gopher-resolume/internal/midi"
)

var log = logrus.WithField("component", "window")

// eventBuffer matches the hardware surface's queue depth
const eventBuffer = 64

// GridWindow is an on-screen Launchpad. It mirrors every LED write and
// turns mouse presses on its pads into button events, so it can stand in
// for the hardware or run next to it.
type GridWindow struct {
	window fyne.Window
	status *widget.Label

	mu     sync.Mutex
	colors [grid.Size][grid.Size]midi.LEDColor
	rects  [grid.Size][grid.Size]*canvas.Rectangle

	events chan midi.PadEvent
}

// NewGridWindow creates the mirror window. It is hidden until Show.
func NewGridWindow(app fyne.App, title string) *GridWindow {
	gw := &GridWindow{
		window: app.NewWindow(title),
		status: widget.NewLabel(""),
		events: make(chan midi.PadEvent, eventBuffer),
	}

	gw.window.SetContent(container.NewBorder(nil, gw.status, nil, nil, gw.createPadGrid()))
	gw.window.Resize(fyne.NewSize(440, 480))
	gw.window.CenterOnScreen()
	gw.window.SetCloseIntercept(func() {
		gw.window.Hide()
	})

	return gw
}

func (gw *GridWindow) createPadGrid() fyne.CanvasObject {
	pads := container.NewGridWithColumns(grid.Size)

	for y := 0; y < grid.Size; y++ {
		for x := 0; x < grid.Size; x++ {
			cell := grid.Cell{X: x, Y: y}

			rect := canvas.NewRectangle(ledRGBA(midi.Off))
			rect.SetMinSize(fyne.NewSize(40, 40))
			rect.CornerRadius = 4
			if cell.IsControl() {
				// round buttons on the hardware
				rect.CornerRadius = 20
			}
			gw.rects[y][x] = rect

			pads.Add(newPadButton(rect, func(down bool) {
				gw.press(cell.X, cell.Y, down)
			}))
		}
	}

	return pads
}

// press queues a button event. The top-right corner has no button.
func (gw *GridWindow) press(x, y int, down bool) {
	if !(grid.Cell{X: x, Y: y}).Valid() || (x == grid.ActionCol && y == grid.ControlRow) {
		return
	}
	select {
	case gw.events <- midi.PadEvent{X: x, Y: y, Pressed: down}:
	default:
		log.WithFields(logrus.Fields{"x": x, "y": y}).Warn("event buffer full, dropping pad event")
	}
}

// PollEvent returns the next pending click without blocking
func (gw *GridWindow) PollEvent() (midi.PadEvent, bool) {
	select {
	case ev := <-gw.events:
		return ev, true
	default:
		return midi.PadEvent{}, false
	}
}

// Reset turns every pad off
func (gw *GridWindow) Reset() error {
	gw.mu.Lock()
	gw.colors = [grid.Size][grid.Size]midi.LEDColor{}
	gw.mu.Unlock()

	fyne.Do(func() {
		for y := range gw.rects {
			for x := range gw.rects[y] {
				gw.paint(x, y, midi.Off)
			}
		}
	})
	return nil
}

// SetCell colours the pad at (x, y). Writes outside the grid are ignored.
func (gw *GridWindow) SetCell(x, y int, c midi.LEDColor) error {
	if !(grid.Cell{X: x, Y: y}).Valid() {
		return nil
	}
	c = c.Clamp()

	gw.mu.Lock()
	gw.colors[y][x] = c
	gw.mu.Unlock()

	fyne.Do(func() {
		gw.paint(x, y, c)
	})
	return nil
}

// Cell returns the colour last written to (x, y)
func (gw *GridWindow) Cell(x, y int) midi.LEDColor {
	if !(grid.Cell{X: x, Y: y}).Valid() {
		return midi.Off
	}
	gw.mu.Lock()
	defer gw.mu.Unlock()
	return gw.colors[y][x]
}

// paint runs on the fyne goroutine
func (gw *GridWindow) paint(x, y int, c midi.LEDColor) {
	rect := gw.rects[y][x]
	rect.FillColor = ledRGBA(c)
	rect.Refresh()
}

// SetStatus shows a line of text under the grid
func (gw *GridWindow) SetStatus(text string) {
	fyne.Do(func() {
		gw.status.SetText(text)
	})
}

// Show displays the window
func (gw *GridWindow) Show() {
	gw.window.Show()
}

// Hide hides the window
func (gw *GridWindow) Hide() {
	gw.window.Hide()
}

// Window returns the underlying fyne.Window
func (gw *GridWindow) Window() fyne.Window {
	return gw.window
}

// unlit pads are drawn dark grey rather than black so the grid stays visible
var unlit = color.RGBA{R: 40, G: 40, B: 40, A: 255}

// ledRGBA approximates a two-intensity LED colour on screen
func ledRGBA(c midi.LEDColor) color.RGBA {
	c = c.Clamp()
	if c == midi.Off {
		return unlit
	}
	return color.RGBA{
		R: levelToScreen(c.Red),
		G: levelToScreen(c.Green),
		B: 0,
		A: 255,
	}
}

func levelToScreen(level uint8) uint8 {
	switch level {
	case 0:
		return 40
	case 1:
		return 110
	case 2:
		return 180
	default:
		return 255
	}
}
