package controller

import (
	"github.com/PixPMusic/gopher-resolume/internal/grid"
	"github.com/PixPMusic/gopher-resolume/internal/midi"
	"github.com/PixPMusic/gopher-resolume/internal/resolume"
)

// launchView shows a window of 8 clip columns for the 8 layers, with the
// side column clearing a layer. Callers hold Controller.mu.
type launchView struct {
	*outputs
	st *state
}

func (v *launchView) handlePress(cell grid.Cell, pressed bool) {
	switch {
	case cell.IsControl():
		if !pressed {
			return
		}
		switch cell {
		case grid.LeftArrow:
			if v.st.offset > 0 {
				v.st.offset--
				v.refresh(v.st.offset)
			}
		case grid.RightArrow:
			v.st.offset++
			v.refresh(v.st.offset)
		default:
			// up/down (deck selection) are not mapped
			return
		}
		v.renderArrows()

	case cell.IsContent():
		if !pressed {
			return
		}
		layer := grid.LayerOfRow(cell.Y)
		column := grid.Column(cell.X, v.st.offset)
		v.send(resolume.ClipConnectAddress(layer, column), 1)

	case cell.IsAction():
		// clear follows the button: held down while pressed
		v.send(resolume.LayerClearAddress(grid.LayerOfRow(cell.Y)), flag(pressed))
	}
}

// renderArrows lights the scroll arrows. There is no known last column, so
// right is always lit.
func (v *launchView) renderArrows() {
	v.set(grid.RightArrow, colorGreen)
	if v.st.offset > 0 {
		v.set(grid.LeftArrow, colorGreen)
	} else {
		v.set(grid.LeftArrow, colorGreenDim)
	}
}

func (v *launchView) applyClipState(layer, column int, s resolume.ClipState) {
	if v.st.mode != ModeLaunch || !grid.ValidLayer(layer) {
		return
	}
	x, ok := grid.ColumnX(column, v.st.offset)
	if !ok {
		return
	}
	v.set(grid.Cell{X: x, Y: grid.RowOfLayer(layer)}, clipColor(s))
}

func clipColor(s resolume.ClipState) midi.LEDColor {
	switch s {
	case resolume.ClipIdle:
		return colorGreen
	case resolume.ClipRunning:
		return colorFull
	default:
		// empty and transitioning both render dark
		return colorOff
	}
}

func (v *launchView) applyLayerClear(layer int, clear bool) {
	if v.st.mode != ModeLaunch || !grid.ValidLayer(layer) {
		return
	}
	color := colorRed
	if clear {
		color = colorRedDim
	}
	v.set(grid.Cell{X: grid.ActionCol, Y: grid.RowOfLayer(layer)}, color)
}

// refresh queries every layer's clear flag and the connected state of
// columns offset..offset+width inclusive.
func (v *launchView) refresh(offset int) {
	for layer := 1; layer <= grid.Layers; layer++ {
		v.send(resolume.LayerClearAddress(layer), resolume.Query)
		for column := offset; column <= offset+grid.Width; column++ {
			v.send(resolume.ClipConnectedAddress(layer, column), resolume.Query)
		}
	}
}
