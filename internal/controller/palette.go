package controller

import "github.com/PixPMusic/gopher-resolume/internal/midi"

// Launchpad S two-channel palette
var (
	colorOff      = midi.Off
	colorFull     = midi.LEDColor{Red: 3, Green: 3}
	colorGreen    = midi.LEDColor{Red: 0, Green: 3}
	colorGreenDim = midi.LEDColor{Red: 0, Green: 1}
	colorRed      = midi.LEDColor{Red: 3, Green: 0}
	colorRedDim   = midi.LEDColor{Red: 1, Green: 0}
)
