package midi

// GetDevice returns the appropriate Device implementation for the given type
func GetDevice(deviceType DeviceType) Device {
	switch deviceType {
	case DeviceTypeColorful:
		return &ColorfulDevice{}
	default:
		// The bridge speaks the Launchpad S palette natively
		return &ClassicDevice{}
	}
}
