package midi

import "gitlab.com/gomidi/midi/v2"

// Device represents a Launchpad model: how to address its LEDs and how to
// decode its button messages into grid positions
type Device interface {
	// Initialize sends the commands that put the device in a state where
	// every LED on the 9x9 grid is addressable
	Initialize(send func(midi.Message) error) error

	// SetCell sets the color of the pad at (x, y)
	SetCell(send func(midi.Message) error, x, y int, color LEDColor) error

	// Reset turns off every LED on the device
	Reset(send func(midi.Message) error) error

	// HandleMessage parses a MIDI message and returns grid position and state
	// Returns handled=true if the message corresponds to a valid grid event
	HandleMessage(msg midi.Message) (x, y int, pressed bool, handled bool)
}
