package resolume

import "fmt"

// Query is the value sent to ask Resolume to push a parameter's current value
const Query = "?"

// ClipConnectAddress triggers a clip: /composition/layers/{layer}/clips/{column}/connect
func ClipConnectAddress(layer, column int) string {
	return fmt.Sprintf("/composition/layers/%d/clips/%d/connect", layer, column)
}

// ClipConnectedAddress carries a clip's connection state (0-3)
func ClipConnectedAddress(layer, column int) string {
	return fmt.Sprintf("/composition/layers/%d/clips/%d/connected", layer, column)
}

// LayerClearAddress carries a layer's clear flag
func LayerClearAddress(layer int) string {
	return fmt.Sprintf("/composition/layers/%d/clear", layer)
}

// LayerOpacityAddress carries a layer's video opacity (0..1)
func LayerOpacityAddress(layer int) string {
	return fmt.Sprintf("/composition/layers/%d/video/opacity", layer)
}

// LayerBypassedAddress carries a layer's bypass flag
func LayerBypassedAddress(layer int) string {
	return fmt.Sprintf("/composition/layers/%d/bypassed", layer)
}
