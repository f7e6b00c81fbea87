package controller

import "github.com/PixPMusic/gopher-resolume/internal/midi"

// Surface is the button/LED grid the controller drives
type Surface interface {
	Reset() error
	SetCell(x, y int, color midi.LEDColor) error
	// PollEvent returns the next pending button event without blocking
	PollEvent() (midi.PadEvent, bool)
}

// Remote sends parameter messages to the composition engine. Sends are
// fire-and-forget.
type Remote interface {
	Send(address string, value any) error
}

// Fanout drives several surfaces as one: every write goes to all of them,
// events are taken from whichever has one pending.
type Fanout []Surface

func (f Fanout) Reset() error {
	var first error
	for _, s := range f {
		if err := s.Reset(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (f Fanout) SetCell(x, y int, color midi.LEDColor) error {
	var first error
	for _, s := range f {
		if err := s.SetCell(x, y, color); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (f Fanout) PollEvent() (midi.PadEvent, bool) {
	for _, s := range f {
		if ev, ok := s.PollEvent(); ok {
			return ev, true
		}
	}
	return midi.PadEvent{}, false
}
