package controller

import (
	"github.com/PixPMusic/gopher-resolume/internal/grid"
	"github.com/PixPMusic/gopher-resolume/internal/resolume"
)

// mixerView shows each layer's opacity as a bar of 8 segments, with the
// side column toggling bypass. Callers hold Controller.mu.
type mixerView struct {
	*outputs
	st *state
}

func (v *mixerView) handlePress(cell grid.Cell, pressed bool) {
	if !pressed || cell.IsControl() {
		return
	}
	layer := grid.LayerOfRow(cell.Y)

	if cell.IsAction() {
		v.send(resolume.LayerBypassedAddress(layer), flag(!v.st.bypassed[layer-1]))
		return
	}
	v.send(resolume.LayerOpacityAddress(layer), grid.OpacityLevel(cell.X))
}

func (v *mixerView) applyOpacity(layer int, opacity float64) {
	if v.st.mode != ModeMixer || !grid.ValidLayer(layer) {
		return
	}
	y := grid.RowOfLayer(layer)
	lit := grid.LitCount(opacity)
	for x := 0; x < grid.Width; x++ {
		color := colorOff
		if x < lit {
			color = colorGreen
		}
		v.set(grid.Cell{X: x, Y: y}, color)
	}
}

// applyBypass updates the mirror whatever the mode, so a later toggle
// from the mixer sends the right value.
func (v *mixerView) applyBypass(layer int, bypassed bool) {
	if !grid.ValidLayer(layer) {
		return
	}
	v.st.bypassed[layer-1] = bypassed
	if v.st.mode != ModeMixer {
		return
	}
	color := colorRedDim
	if bypassed {
		color = colorRed
	}
	v.set(grid.Cell{X: grid.ActionCol, Y: grid.RowOfLayer(layer)}, color)
}

func (v *mixerView) refresh() {
	for layer := 1; layer <= grid.Layers; layer++ {
		v.send(resolume.LayerBypassedAddress(layer), resolume.Query)
		v.send(resolume.LayerOpacityAddress(layer), resolume.Query)
	}
}
