package utils

import (
	"math"
	"sort"

	"github.com/cznic/mathutil"
	"github.com/zacg/ints"
)

//Rounds x to the nearest integer, halves round up
func RoundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

//Clamps value into [min, max]
func ClampFloat64(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

//Populates bool slice with specified value
func FillSliceBool(values []bool, value bool) {
	for i := range values {
		values[i] = value
	}
}

//Sets values[start:end] to value, indices outside the slice are ignored
func FillSliceRangeBool(values []bool, value bool, start, end int) {
	if start < 0 {
		start = 0
	}
	if end > len(values) {
		end = len(values)
	}
	for i := start; i < end; i++ {
		values[i] = value
	}
}

//Returns number of on bits
func CountTrue(values []bool) int {
	count := 0
	for _, val := range values {
		if val {
			count++
		}
	}
	return count
}

//Or's 2 bool slices
func OrBool(a, b []bool) []bool {
	if len(a) != len(b) {
		panic("Params have differing lengths")
	}
	result := make([]bool, len(a))
	for i, val := range a {
		result[i] = val || b[i]
	}
	return result
}

//Returns "on" indices
func OnIndices(s []bool) []int {
	var result []int
	for idx, val := range s {
		if val {
			result = append(result, idx)
		}
	}
	return result
}

//Helper for unit tests where int literals are easier
// to read
func Make2DBool(values [][]int) [][]bool {
	result := make([][]bool, len(values))

	for i, val := range values {
		result[i] = Make1DBool(val)
	}

	return result
}

func Make1DBool(values []int) []bool {
	result := make([]bool, len(values))
	for i, val := range values {
		result[i] = val == 1
	}
	return result
}

//Indices of the n largest values, ties go to the lower index. Ascending.
func TopIndices(values []int, n int) []int {
	//unique keys, larger values and lower indices sort first
	keys := make([]int, len(values))
	for i, val := range values {
		keys[i] = i - val*len(values)
	}
	inds := make([]int, len(values))
	ints.Argsort(keys, inds)

	result := inds[:mathutil.Min(mathutil.Max(n, 0), len(inds))]
	sort.Ints(result)
	return result
}
