package midi

import (
	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2"
)

// ColorfulDevice implements Device for Launchpad Mini Mk3. The two-channel
// palette is rendered as red/green RGB so both models look alike.
type ColorfulDevice struct{}

func (d *ColorfulDevice) Initialize(send func(midi.Message) error) error {
	// SysEx for programmer mode: 00 20 29 02 0D 0E 01
	sysexContent := []byte{0x00, 0x20, 0x29, 0x02, 0x0D, 0x0E, 0x01}
	if err := send(midi.SysEx(sysexContent)); err != nil {
		return errors.Wrap(err, "send programmer mode message")
	}
	return nil
}

func (d *ColorfulDevice) SetCell(send func(midi.Message) error, x, y int, color LEDColor) error {
	if x < 0 || x > 8 || y < 0 || y > 8 {
		return nil
	}

	// SysEx for RGB LED: F0 00 20 29 02 0D 03 03 <led> <r> <g> <b> F7
	c := color.Clamp()
	sysexContent := []byte{
		0x00, 0x20, 0x29, 0x02, 0x0D, 0x03,
		0x03,           // RGB mode
		ledIndex(x, y), // LED index
		d.scaleColor(levelTo127(c.Red)) & 0x7F,
		d.scaleColor(levelTo127(c.Green)) & 0x7F,
		0x00, // no blue in the two-channel palette
	}
	return send(midi.SysEx(sysexContent))
}

// ledIndex maps a grid position to the programmer mode LED index.
// Bottom-left is 11, top-right is 99: LED = (8-y)*10 + x + 11
func ledIndex(x, y int) uint8 {
	return uint8((8-y)*10 + x + 11)
}

// levelTo127 converts a 0-3 level to 0-127
func levelTo127(level uint8) uint8 {
	switch level {
	case 0:
		return 0
	case 1:
		return 42
	case 2:
		return 85
	default:
		return 127
	}
}

func (d *ColorfulDevice) scaleColor(value uint8) uint8 {
	if value == 0 {
		return 0
	}
	// Power curve keeps the dim level visibly distinct from full
	f := float64(value) / 127.0
	scaled := f * f * 127.0
	if scaled < 1 {
		scaled = 1 // Ensure non-zero input gives non-zero output
	}
	return uint8(scaled)
}

func (d *ColorfulDevice) Reset(send func(midi.Message) error) error {
	// Static color 0 for every valid LED index in one SysEx
	sysexContent := []byte{0x00, 0x20, 0x29, 0x02, 0x0D, 0x03}
	for i := 11; i <= 99; i++ {
		if i%10 >= 1 && i%10 <= 9 {
			sysexContent = append(sysexContent, 0x00, uint8(i), 0x00)
		}
	}
	return send(midi.SysEx(sysexContent))
}

func (d *ColorfulDevice) HandleMessage(msg midi.Message) (x, y int, pressed bool, handled bool) {
	var channel, key, velocity uint8

	switch {
	case msg.GetNoteOn(&channel, &key, &velocity):
		pressed = velocity > 0
		x, y = d.noteToGrid(key)
		if x >= 0 && y >= 0 {
			return x, y, pressed, true
		}

	case msg.GetNoteOff(&channel, &key, &velocity):
		x, y = d.noteToGrid(key)
		if x >= 0 && y >= 0 {
			return x, y, false, true
		}

	case msg.GetControlChange(&channel, &key, &velocity):
		if key >= 91 && key <= 98 {
			// Top row buttons (91-98)
			return int(key - 91), 0, velocity > 0, true
		} else if key%10 == 9 && key >= 19 && key <= 89 {
			// Right column buttons (19, 29... 89)
			// 19 is bottom right (y=8), 89 is top right (y=1)
			return 8, 8 - int((key-19)/10), velocity > 0, true
		}
	}

	return 0, 0, false, false
}

func (d *ColorfulDevice) noteToGrid(note uint8) (int, int) {
	// Invert LED = (8-y)*10 + x + 11
	if note >= 11 && note <= 99 {
		y := 8 - int((note-11)/10)
		x := int((note - 11) % 10)
		if y >= 0 && y <= 8 && x >= 0 && x <= 8 {
			return x, y
		}
	}
	return -1, -1
}
