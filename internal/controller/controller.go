package controller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/PixPMusic/gopher-resolume/internal/grid"
	"github.com/PixPMusic/gopher-resolume/internal/midi"
	"github.com/PixPMusic/gopher-resolume/internal/resolume"
)

var log = logrus.WithField("component", "controller")

// DefaultPollingDelay is the pause between two drains of the surface's events
const DefaultPollingDelay = 100 * time.Millisecond

// Mode selects what the pad grid shows
type Mode int

const (
	ModeLaunch Mode = iota + 1 // clip launcher, scrollable by column
	ModeMixer                  // per-layer opacity bars and bypass
)

func (m Mode) String() string {
	switch m {
	case ModeLaunch:
		return "launch"
	case ModeMixer:
		return "mixer"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// state is shared by both views and guarded by Controller.mu
type state struct {
	mode     Mode
	offset   int
	bypassed [grid.Layers]bool
}

// Controller keeps the surface and the Resolume composition in sync. Input
// events and Resolume pushes arrive on different goroutines; every state
// change and display write happens under one lock.
type Controller struct {
	mu     sync.Mutex
	state  state
	out    *outputs
	launch *launchView
	mixer  *mixerView

	pollingDelay time.Duration
	onView       func(Mode, int)
}

// New creates a controller in launch mode. Nothing is drawn until Start.
func New(surface Surface, remote Remote, pollingDelay time.Duration) *Controller {
	if pollingDelay <= 0 {
		pollingDelay = DefaultPollingDelay
	}
	c := &Controller{
		state:        state{mode: ModeLaunch},
		out:          &outputs{surface: surface, remote: remote},
		pollingDelay: pollingDelay,
	}
	c.launch = &launchView{outputs: c.out, st: &c.state}
	c.mixer = &mixerView{outputs: c.out, st: &c.state}
	return c
}

// OnViewChange registers fn to be called with the mode and scroll offset
// whenever either changes. fn runs with the controller locked and must not
// call back into it. Register before Start.
func (c *Controller) OnViewChange(fn func(mode Mode, offset int)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onView = fn
}

// Start draws the current mode and asks Resolume for its state
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enter(c.state.mode)
	c.notifyView()
}

func (c *Controller) notifyView() {
	if c.onView != nil {
		c.onView(c.state.mode, c.state.offset)
	}
}

// Run polls the surface for button events until ctx is cancelled
func (c *Controller) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.pollingDelay)
	defer ticker.Stop()

	for {
		c.drain()
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// drain handles every event currently pending on the surface
func (c *Controller) drain() {
	for {
		ev, ok := c.out.surface.PollEvent()
		if !ok {
			return
		}
		c.HandlePress(ev.X, ev.Y, ev.Pressed)
	}
}

// Mode returns the active mode
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.mode
}

// ScrollOffset returns the launch view's column offset
func (c *Controller) ScrollOffset() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.offset
}

// Bypassed returns the mirrored bypass flag of a layer
func (c *Controller) Bypassed(layer int) bool {
	if !grid.ValidLayer(layer) {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.bypassed[layer-1]
}

// SwitchMode changes the active mode. Selecting the active mode does nothing.
func (c *Controller) SwitchMode(m Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.switchMode(m)
}

func (c *Controller) switchMode(m Mode) {
	if m == c.state.mode {
		return
	}
	c.enter(m)
	c.notifyView()
}

// enter resets the surface, draws the mode buttons and requests a refresh
func (c *Controller) enter(m Mode) {
	log.WithField("mode", m).Info("switching mode")
	c.state.mode = m

	c.out.reset()
	c.out.set(grid.LaunchButton, colorGreen)
	c.out.set(grid.MixerButton, colorGreen)

	switch m {
	case ModeLaunch:
		c.out.set(grid.LaunchButton, colorFull)
		c.launch.renderArrows()
		c.launch.refresh(c.state.offset)
	case ModeMixer:
		c.out.set(grid.MixerButton, colorFull)
		c.mixer.refresh()
	}
}

// HandlePress processes one button event from the surface
func (c *Controller) HandlePress(x, y int, pressed bool) {
	cell := grid.Cell{X: x, Y: y}
	if !cell.Valid() {
		return
	}
	log.WithFields(logrus.Fields{"x": x, "y": y, "down": pressed}).Debug("pad event")

	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case pressed && cell == grid.LaunchButton:
		c.switchMode(ModeLaunch)
	case pressed && cell == grid.MixerButton:
		c.switchMode(ModeMixer)
	case c.state.mode == ModeLaunch:
		offset := c.state.offset
		c.launch.handlePress(cell, pressed)
		if c.state.offset != offset {
			c.notifyView()
		}
	case c.state.mode == ModeMixer:
		c.mixer.handlePress(cell, pressed)
	}
}

// ApplyClipState renders a clip's state pushed by Resolume
func (c *Controller) ApplyClipState(layer, column int, s resolume.ClipState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.launch.applyClipState(layer, column, s)
}

// ApplyLayerClear renders a layer's clear flag pushed by Resolume
func (c *Controller) ApplyLayerClear(layer int, clear bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.launch.applyLayerClear(layer, clear)
}

// ApplyLayerOpacity renders a layer's opacity pushed by Resolume
func (c *Controller) ApplyLayerOpacity(layer int, opacity float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mixer.applyOpacity(layer, opacity)
}

// ApplyLayerBypass records and renders a layer's bypass flag pushed by Resolume
func (c *Controller) ApplyLayerBypass(layer int, bypassed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mixer.applyBypass(layer, bypassed)
}

// outputs wraps the surface and the remote link. Failures are logged and
// otherwise ignored: the next refresh repairs whatever was lost.
type outputs struct {
	surface Surface
	remote  Remote
}

func (o *outputs) reset() {
	if err := o.surface.Reset(); err != nil {
		log.WithError(err).Warn("reset surface")
	}
}

func (o *outputs) set(cell grid.Cell, color midi.LEDColor) {
	if err := o.surface.SetCell(cell.X, cell.Y, color); err != nil {
		log.WithError(err).WithFields(logrus.Fields{"x": cell.X, "y": cell.Y}).Warn("set LED")
	}
}

func (o *outputs) send(address string, value any) {
	if err := o.remote.Send(address, value); err != nil {
		log.WithError(err).Warn("send to resolume")
	}
}

// flag encodes a boolean parameter the way Resolume sends it back
func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}
