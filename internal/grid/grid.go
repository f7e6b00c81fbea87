package grid

import "math"

// Surface dimensions: an 8x8 pad grid plus the top control row and the
// right-hand side column.
const (
	Size       = 9
	Layers     = 8
	Width      = 8 // visible clip columns / opacity segments per row
	ActionCol  = 8 // side column: clear (launch) or bypass (mixer)
	ControlRow = 0
)

// Cell addresses one button on the surface. X is the column, Y the row,
// with (0, 0) at the top-left control button.
type Cell struct {
	X, Y int
}

// Control cells on the top row
var (
	UpArrow      = Cell{0, 0}
	DownArrow    = Cell{1, 0}
	LeftArrow    = Cell{2, 0}
	RightArrow   = Cell{3, 0}
	LaunchButton = Cell{4, 0}
	MixerButton  = Cell{7, 0}
)

// Valid reports whether the cell exists on the surface
func (c Cell) Valid() bool {
	return c.X >= 0 && c.X < Size && c.Y >= 0 && c.Y < Size
}

// IsControl reports whether the cell is on the control row
func (c Cell) IsControl() bool {
	return c.Y == ControlRow
}

// IsAction reports whether the cell is a per-layer side button
func (c Cell) IsAction() bool {
	return c.Y > ControlRow && c.Y < Size && c.X == ActionCol
}

// IsContent reports whether the cell carries clip or opacity content
func (c Cell) IsContent() bool {
	return c.Y > ControlRow && c.Y < Size && c.X >= 0 && c.X < ActionCol
}

// LayerOfRow maps rows 1..8 to layers 8..1
func LayerOfRow(y int) int {
	return Layers - (y - 1)
}

// RowOfLayer is the inverse of LayerOfRow
func RowOfLayer(layer int) int {
	return Layers - (layer - 1)
}

// ValidLayer reports whether layer is one of the 8 mapped layers
func ValidLayer(layer int) bool {
	return layer >= 1 && layer <= Layers
}

// Column returns the 1-based remote clip column shown at local x for a scroll offset.
func Column(x, offset int) int {
	return offset + x + 1
}

// ColumnX returns the local x of a remote column, and false when the column
// lies outside the visible window (offset, offset+8].
func ColumnX(column, offset int) (int, bool) {
	if column <= offset || column > offset+Width {
		return 0, false
	}
	return column - 1 - offset, true
}

// OpacityLevel returns the opacity selected by pressing segment x: (x+1)/8.
func OpacityLevel(x int) float64 {
	return float64(x+1) / Width
}

// LitCount quantizes an opacity to the number of lit segments. It rounds
// down, so 0.99 lights 7 segments.
func LitCount(opacity float64) int {
	if math.IsNaN(opacity) {
		return 0
	}
	n := int(math.Floor(Width * opacity))
	if n < 0 {
		return 0
	}
	if n > Width {
		return Width
	}
	return n
}
