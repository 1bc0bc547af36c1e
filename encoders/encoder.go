package encoders

import (
	"fmt"
)

/*
 A value encoder takes a value and encodes it with a partial sparse representation
of bits.
*/
type ValueEncoder interface {
	//Width in bits
	Width() int
	Encode(input float64) ([]bool, error)
}

//Encodes multivariable input by concatenating the output of its encoders
type Encoder struct {
	Encoders []ValueEncoder
}

func (e *Encoder) Width() int {
	result := 0
	for _, val := range e.Encoders {
		result += val.Width()
	}
	return result
}

//Encodes inputs[i] with Encoders[i]
func (e *Encoder) Encode(inputs []float64) ([]bool, error) {
	if len(inputs) != len(e.Encoders) {
		return nil, fmt.Errorf("%w: %v inputs for %v encoders", ErrInvalidEncoderParams, len(inputs), len(e.Encoders))
	}
	result := make([]bool, 0, e.Width())
	for i, enc := range e.Encoders {
		bits, err := enc.Encode(inputs[i])
		if err != nil {
			return nil, fmt.Errorf("encoder %v: %w", i, err)
		}
		result = append(result, bits...)
	}
	return result, nil
}

/*
 Spreads an encoding over a width x height sensor layer. Bit k covers the
vertical stripe of sensor columns [k*width/n, (k+1)*width/n), at least one
column wide. The result is indexed [x][y].
*/
func Rasterize(bits []bool, width, height int) ([][]bool, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: sensor layer %vx%v must be positive", ErrInvalidEncoderParams, width, height)
	}
	if len(bits) == 0 {
		return nil, fmt.Errorf("%w: nothing to rasterize", ErrInvalidEncoderParams)
	}

	result := make([][]bool, width)
	for x := range result {
		result[x] = make([]bool, height)
	}

	n := len(bits)
	for k, on := range bits {
		if !on {
			continue
		}
		start := k * width / n
		end := (k + 1) * width / n
		if end <= start {
			end = start + 1
		}
		for x := start; x < end && x < width; x++ {
			for y := 0; y < height; y++ {
				result[x][y] = true
			}
		}
	}

	return result, nil
}
