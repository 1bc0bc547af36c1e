package htm

import (
	"bytes"

	"github.com/htm-community/cla/utils"
)

//Row/col position of a true entry
type SparseEntry struct {
	Row int
	Col int
}

//Dense binary matrix backed by a flat bool slice. Region state
//snapshots use one row per column and one col per neuron.
type DenseBinaryMatrix struct {
	Width   int
	Height  int
	entries []bool
}

//Create new dense binary matrix of specified size
func NewDenseBinaryMatrix(height, width int) *DenseBinaryMatrix {
	m := &DenseBinaryMatrix{}
	m.Height = height
	m.Width = width
	m.entries = make([]bool, width*height)
	return m
}

//Create dense binary matrix from specified 2d values
func NewDenseBinaryMatrixFromDense(values [][]bool) *DenseBinaryMatrix {
	if len(values) < 1 {
		panic("No values specified.")
	}

	m := NewDenseBinaryMatrix(len(values), len(values[0]))
	for r := 0; r < m.Height; r++ {
		m.ReplaceRow(r, values[r])
	}
	return m
}

//Converts flat index to row/col
func (sm *DenseBinaryMatrix) toIndex(index int) (row int, col int) {
	row = index / sm.Width
	col = index % sm.Width
	return
}

//Returns all true/on entries in row major order
func (sm *DenseBinaryMatrix) Entries() []SparseEntry {
	var result []SparseEntry
	for idx, val := range sm.entries {
		if val {
			i, j := sm.toIndex(idx)
			result = append(result, SparseEntry{i, j})
		}
	}
	return result
}

//Returns flattened dense representation
func (sm *DenseBinaryMatrix) Flatten() []bool {
	result := make([]bool, len(sm.entries))
	copy(result, sm.entries)
	return result
}

//Get value at row,col position
func (sm *DenseBinaryMatrix) Get(row int, col int) bool {
	sm.validateRowCol(row, col)
	return sm.entries[row*sm.Width+col]
}

//Set value at row,col position
func (sm *DenseBinaryMatrix) Set(row int, col int, value bool) {
	sm.validateRowCol(row, col)
	sm.entries[row*sm.Width+col] = value
}

//Replaces specified row with values
func (sm *DenseBinaryMatrix) ReplaceRow(row int, values []bool) {
	sm.validateRow(row)
	if len(values) != sm.Width {
		panic("Row length does not match matrix width.")
	}
	copy(sm.entries[row*sm.Width:(row+1)*sm.Width], values)
}

//Returns a rows "on" indices
func (sm *DenseBinaryMatrix) GetRowIndices(row int) []int {
	sm.validateRow(row)
	return utils.OnIndices(sm.entries[row*sm.Width : (row+1)*sm.Width])
}

//Returns true if any entry of the row is on
func (sm *DenseBinaryMatrix) RowAny(row int) bool {
	sm.validateRow(row)
	start := row * sm.Width
	for i := 0; i < sm.Width; i++ {
		if sm.entries[start+i] {
			return true
		}
	}
	return false
}

//Fills specified row with specified value
func (sm *DenseBinaryMatrix) FillRow(row int, val bool) {
	sm.validateRow(row)
	utils.FillSliceBool(sm.entries[row*sm.Width:(row+1)*sm.Width], val)
}

//Returns row indexes with at least 1 true column, ascending
func (sm *DenseBinaryMatrix) NonZeroRows() []int {
	var result []int
	for r := 0; r < sm.Height; r++ {
		if sm.RowAny(r) {
			result = append(result, r)
		}
	}
	return result
}

//Returns # of rows with at least 1 true value
func (sm *DenseBinaryMatrix) TotalTrueRows() int {
	return len(sm.NonZeroRows())
}

//Returns total true entries
func (sm *DenseBinaryMatrix) TotalNonZeroCount() int {
	return utils.CountTrue(sm.entries)
}

// Ors 2 matrices
func (sm *DenseBinaryMatrix) Or(sm2 *DenseBinaryMatrix) *DenseBinaryMatrix {
	if sm.Width != sm2.Width || sm.Height != sm2.Height {
		panic("Matrix dimensions do not match.")
	}
	result := NewDenseBinaryMatrix(sm.Height, sm.Width)
	result.entries = utils.OrBool(sm.entries, sm2.entries)
	return result
}

//Clears all entries
func (sm *DenseBinaryMatrix) Clear() {
	utils.FillSliceBool(sm.entries, false)
}

//Overwrites entries with the entries of src, dimensions must match
func (sm *DenseBinaryMatrix) CopyFrom(src *DenseBinaryMatrix) {
	if sm.Width != src.Width || sm.Height != src.Height {
		panic("Matrix dimensions do not match.")
	}
	copy(sm.entries, src.entries)
}

//Copys a matrix
func (sm *DenseBinaryMatrix) Copy() *DenseBinaryMatrix {
	if sm == nil {
		return nil
	}

	result := NewDenseBinaryMatrix(sm.Height, sm.Width)
	copy(result.entries, sm.entries)
	return result
}

func (sm *DenseBinaryMatrix) String() string {
	var buffer bytes.Buffer

	for r := 0; r < sm.Height; r++ {
		for c := 0; c < sm.Width; c++ {
			if sm.entries[r*sm.Width+c] {
				buffer.WriteByte('1')
			} else {
				buffer.WriteByte('0')
			}
		}
		buffer.WriteByte('\n')
	}

	return buffer.String()
}

func (sm *DenseBinaryMatrix) validateRow(row int) {
	if row < 0 || row >= sm.Height {
		panic("Specified row is out of bounds.")
	}
}

func (sm *DenseBinaryMatrix) validateRowCol(row int, col int) {
	sm.validateRow(row)
	if col < 0 || col >= sm.Width {
		panic("Specified col is out of bounds.")
	}
}
