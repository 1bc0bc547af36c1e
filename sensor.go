package htm

import (
	"fmt"
)

//Leaf input unit of a sensor layer
type SensorCell struct {
	X      int
	Y      int
	Active bool
}

/*
SensorLayer is a Width x Height grid of sensor cells. Cells are created
once and addressed by flat index x*Height + y.
*/
type SensorLayer struct {
	Width  int
	Height int
	cells  []SensorCell
}

func NewSensorLayer(width, height int) (*SensorLayer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: sensor layer %vx%v must be positive", ErrInvalidArgument, width, height)
	}

	sl := &SensorLayer{Width: width, Height: height}
	sl.cells = make([]SensorCell, width*height)
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			sl.cells[sl.Index(x, y)] = SensorCell{X: x, Y: y}
		}
	}
	return sl, nil
}

//Flat index of the cell at x,y
func (sl *SensorLayer) Index(x, y int) int {
	return x*sl.Height + y
}

func (sl *SensorLayer) Len() int {
	return len(sl.cells)
}

//Returns the cell at x,y
func (sl *SensorLayer) Cell(x, y int) *SensorCell {
	if x < 0 || x >= sl.Width || y < 0 || y >= sl.Height {
		return nil
	}
	return &sl.cells[sl.Index(x, y)]
}

func (sl *SensorLayer) CellAt(index int) *SensorCell {
	return &sl.cells[index]
}

func (sl *SensorLayer) IsActive(index int) bool {
	return sl.cells[index].Active
}

/*
Sets cell activity from a pattern indexed [x][y]. The pattern must match
the layer dimensions exactly.
*/
func (sl *SensorLayer) Feed(pattern [][]bool) error {
	if len(pattern) != sl.Width {
		return fmt.Errorf("%w: pattern width %v does not match sensor width %v", ErrInvalidArgument, len(pattern), sl.Width)
	}
	for x, col := range pattern {
		if len(col) != sl.Height {
			return fmt.Errorf("%w: pattern height %v at x=%v does not match sensor height %v", ErrInvalidArgument, len(col), x, sl.Height)
		}
	}
	for x, col := range pattern {
		for y, val := range col {
			sl.cells[sl.Index(x, y)].Active = val
		}
	}
	return nil
}

//Deactivates every cell
func (sl *SensorLayer) Clear() {
	for i := range sl.cells {
		sl.cells[i].Active = false
	}
}

//Returns activity as a Width x Height matrix
func (sl *SensorLayer) Snapshot() *DenseBinaryMatrix {
	m := NewDenseBinaryMatrix(sl.Width, sl.Height)
	for _, cell := range sl.cells {
		if cell.Active {
			m.Set(cell.X, cell.Y, true)
		}
	}
	return m
}
