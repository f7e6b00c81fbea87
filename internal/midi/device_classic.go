package midi

import (
	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2"
)

// ClassicDevice implements Device for Launchpad S
//
// Layout (XY mode):
//   - top row (y=0): Control Change 104-111, there is no button at (8, 0)
//   - grid and right column (y=1..8): note (y-1)*16 + x
type ClassicDevice struct{}

func (d *ClassicDevice) Initialize(send func(midi.Message) error) error {
	// Launchpad S - reset to default state
	// Send reset: B0 00 00 (CC 0 value 0)
	if err := send(midi.ControlChange(0, 0, 0)); err != nil {
		return errors.Wrap(err, "reset Launchpad S")
	}
	return nil
}

func (d *ClassicDevice) SetCell(send func(midi.Message) error, x, y int, color LEDColor) error {
	if x < 0 || x > 8 || y < 0 || y > 8 || (y == 0 && x == 8) {
		return nil // pad doesn't exist on this device
	}

	velocity := classicVelocity(color)
	if y == 0 {
		return send(midi.ControlChange(0, uint8(104+x), velocity))
	}
	return send(midi.NoteOn(0, uint8((y-1)*16+x), velocity))
}

// classicVelocity builds the Launchpad S velocity byte
//
// Bit 0-1: Red intensity (0-3)
// Bit 2: Copy flag (set for immediate update)
// Bit 3: Clear flag (set for normal operation)
// Bit 4-5: Green intensity (0-3)
func classicVelocity(color LEDColor) uint8 {
	c := color.Clamp()
	return (c.Green << 4) | 0x0C | c.Red
}

func (d *ClassicDevice) Reset(send func(midi.Message) error) error {
	// Reset Launchpad S: B0 00 00
	return send(midi.ControlChange(0, 0, 0))
}

func (d *ClassicDevice) HandleMessage(msg midi.Message) (x, y int, pressed bool, handled bool) {
	var channel, key, velocity uint8

	switch {
	case msg.GetNoteOn(&channel, &key, &velocity):
		pressed = velocity > 0
		y = int(key/16) + 1
		x = int(key % 16)
		if y >= 1 && y <= 8 && x >= 0 && x <= 8 {
			return x, y, pressed, true
		}

	case msg.GetNoteOff(&channel, &key, &velocity):
		y = int(key/16) + 1
		x = int(key % 16)
		if y >= 1 && y <= 8 && x >= 0 && x <= 8 {
			return x, y, false, true
		}

	case msg.GetControlChange(&channel, &key, &velocity):
		// Top row buttons (104-111)
		if key >= 104 && key <= 111 {
			return int(key - 104), 0, velocity > 0, true
		}
	}

	return 0, 0, false, false
}
