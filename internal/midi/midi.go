package midi

import (
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

var log = logrus.WithField("component", "midi")

// Manager handles MIDI port discovery and opens surfaces on them.
// The driver itself is registered by the main package.
type Manager struct {
	mu       sync.Mutex
	surfaces []*Surface
}

// NewManager creates a new MIDI manager
func NewManager() *Manager {
	return &Manager{}
}

// Close closes every surface the manager opened, then the MIDI driver
func (m *Manager) Close() {
	m.closeSurfaces()
	midi.CloseDriver()
}

func (m *Manager) closeSurfaces() {
	m.mu.Lock()
	surfaces := m.surfaces
	m.surfaces = nil
	m.mu.Unlock()

	for _, s := range surfaces {
		if err := s.Close(); err != nil {
			log.WithError(err).Warn("close surface")
		}
	}
}

func (m *Manager) track(s *Surface) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.surfaces = append(m.surfaces, s)
}

// ListInPorts returns the names of available MIDI input ports
func (m *Manager) ListInPorts() []string {
	ins := midi.GetInPorts()
	names := make([]string, 0, len(ins))
	for _, in := range ins {
		names = append(names, in.String())
	}
	return names
}

// ListOutPorts returns the names of available MIDI output ports
func (m *Manager) ListOutPorts() []string {
	outs := midi.GetOutPorts()
	names := make([]string, 0, len(outs))
	for _, out := range outs {
		names = append(names, out.String())
	}
	return names
}

// GetInPort returns an input port by name
func (m *Manager) GetInPort(name string) (drivers.In, error) {
	for _, in := range midi.GetInPorts() {
		if in.String() == name {
			return in, nil
		}
	}
	return nil, errors.Errorf("input port not found: %s", name)
}

// GetOutPort returns an output port by name
func (m *Manager) GetOutPort(name string) (drivers.Out, error) {
	for _, out := range midi.GetOutPorts() {
		if out.String() == name {
			return out, nil
		}
	}
	return nil, errors.Errorf("output port not found: %s", name)
}

// FindLaunchpad returns the first input and output port names that look
// like a Launchpad. Either may be empty.
func (m *Manager) FindLaunchpad() (in, out string) {
	in = findPort(m.ListInPorts())
	out = findPort(m.ListOutPorts())
	return in, out
}

func findPort(names []string) string {
	for _, name := range names {
		if IsLaunchpad(name) {
			return name
		}
	}
	return ""
}

// IsLaunchpad reports whether a port name belongs to a Novation Launchpad
func IsLaunchpad(name string) bool {
	return strings.Contains(strings.ToLower(name), "launchpad")
}

// OpenSurface opens the named ports, initializes the device and starts
// listening for button events.
func (m *Manager) OpenSurface(inPortName, outPortName string, deviceType DeviceType) (*Surface, error) {
	outPort, err := m.GetOutPort(outPortName)
	if err != nil {
		return nil, err
	}
	inPort, err := m.GetInPort(inPortName)
	if err != nil {
		return nil, err
	}

	surface, err := openSurface(inPort, outPort, GetDevice(deviceType))
	if err != nil {
		return nil, err
	}
	m.track(surface)

	log.WithFields(logrus.Fields{
		"in":   inPortName,
		"out":  outPortName,
		"type": deviceType,
	}).Info("opened surface")

	return surface, nil
}

// openSurface wires a device to a port pair. Ports are closed again if
// any step fails.
func openSurface(inPort drivers.In, outPort drivers.Out, device Device) (*Surface, error) {
	send, err := midi.SendTo(outPort)
	if err != nil {
		return nil, errors.Wrap(err, "create sender")
	}

	surface := NewSurface(device, send)
	if err := device.Initialize(send); err != nil {
		closePort(outPort)
		return nil, err
	}

	stop, err := midi.ListenTo(inPort, func(msg midi.Message, timestampms int32) {
		surface.HandleMessage(msg)
	})
	if err != nil {
		closePort(outPort)
		closePort(inPort)
		return nil, errors.Wrap(err, "start listening")
	}
	surface.stop = stop

	return surface, nil
}

func closePort(p drivers.Port) {
	if err := p.Close(); err != nil {
		log.WithError(err).WithField("port", p.String()).Warn("close port")
	}
}
