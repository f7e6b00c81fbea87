package midi

import (
	"sync"

	"github.com/sirupsen/logrus"
	"gitlab.com/gomidi/midi/v2"
)

// eventBuffer is how many button events may queue between two polls
const eventBuffer = 64

// Surface is an opened Launchpad: LED writes go straight to the device,
// button events are buffered until polled.
type Surface struct {
	device Device
	send   func(midi.Message) error
	stop   func()
	events chan PadEvent

	mu     sync.Mutex
	closed bool
}

// NewSurface wraps a device and a sender. Events are fed through HandleMessage.
func NewSurface(device Device, send func(midi.Message) error) *Surface {
	return &Surface{
		device: device,
		send:   send,
		events: make(chan PadEvent, eventBuffer),
	}
}

// HandleMessage decodes an incoming MIDI message and queues it as a PadEvent
func (s *Surface) HandleMessage(msg midi.Message) {
	x, y, pressed, handled := s.device.HandleMessage(msg)
	if !handled {
		return
	}

	ev := PadEvent{X: x, Y: y, Pressed: pressed}
	select {
	case s.events <- ev:
	default:
		log.WithFields(logrus.Fields{"x": x, "y": y}).Warn("event buffer full, dropping pad event")
	}
}

// PollEvent returns the next pending button event without blocking
func (s *Surface) PollEvent() (PadEvent, bool) {
	select {
	case ev := <-s.events:
		return ev, true
	default:
		return PadEvent{}, false
	}
}

// Reset turns every LED off
func (s *Surface) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	return s.device.Reset(s.send)
}

// SetCell sets the LED at (x, y)
func (s *Surface) SetCell(x, y int, color LEDColor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	return s.device.SetCell(s.send, x, y, color)
}

// Close clears the LEDs and stops listening
func (s *Surface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	err := s.device.Reset(s.send)
	if s.stop != nil {
		s.stop()
	}
	return err
}
