package midi

// DeviceType represents the type of device
type DeviceType string

const (
	DeviceTypeClassic  DeviceType = "classic"  // Launchpad S - red/green LEDs, no programmer mode
	DeviceTypeColorful DeviceType = "colorful" // Launchpad Mini Mk3 - requires SysEx
)

// MaxLevel is the brightest value of either LED channel
const MaxLevel uint8 = 3

// LEDColor is the two-channel brightness model of the surface. Each channel
// is an intensity 0-3; the Launchpad S mixes them into red/amber/green.
type LEDColor struct {
	Red, Green uint8
}

// Off is the unlit color
var Off = LEDColor{}

// Clamp limits both channels to MaxLevel
func (c LEDColor) Clamp() LEDColor {
	if c.Red > MaxLevel {
		c.Red = MaxLevel
	}
	if c.Green > MaxLevel {
		c.Green = MaxLevel
	}
	return c
}

// PadEvent is a button press or release at grid position (X, Y).
// Y=0 is the top control row and X=8 the right-hand side column.
type PadEvent struct {
	X, Y    int
	Pressed bool
}
