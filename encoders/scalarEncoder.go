package encoders

import (
	"errors"
	"fmt"
	"math"

	"github.com/htm-community/cla/utils"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var ErrInvalidEncoderParams = errors.New("invalid encoder params")
var ErrInputOutOfRange = errors.New("input out of range")

/*
 N -- The number of bits in the output. Must be greater than or equal to W

Radius -- Two inputs separated by more than the radius have non-overlapping
representations. Two inputs separated by less than the radius will
in general overlap in at least some of their bits. You can think
of this as the radius of the input.

Resolution -- Two inputs separated by greater than, or equal to the resolution are guaranteed
to have different representations.

Exactly one of N, Radius and Resolution must be set.
*/
type ScalarEncoderParams struct {
	W          int     `yaml:"w" mapstructure:"w"`
	MinVal     float64 `yaml:"min_val" mapstructure:"min_val"`
	MaxVal     float64 `yaml:"max_val" mapstructure:"max_val"`
	N          int     `yaml:"n" mapstructure:"n"`
	Radius     float64 `yaml:"radius" mapstructure:"radius"`
	Resolution float64 `yaml:"resolution" mapstructure:"resolution"`
	Periodic   bool    `yaml:"periodic" mapstructure:"periodic"`
	ClipInput  bool    `yaml:"clip_input" mapstructure:"clip_input"`
	Name       string  `yaml:"name" mapstructure:"name"`
}

func NewScalarEncoderParams(width int, minVal float64, maxVal float64) *ScalarEncoderParams {
	return &ScalarEncoderParams{
		W:      width,
		MinVal: minVal,
		MaxVal: maxVal,
		Name:   "scalar",
	}
}

/*
 A scalar encoder encodes a numeric (floating point) value into an array
of bits. The output is 0's except for a contiguous block of W 1's. The
location of this contiguous block varies continuously with the input value.
Periodic encoders wrap the block around the end of the output.

The encoding is linear. If you want a nonlinear encoding, just transform
the scalar (e.g. by applying a logarithm function) before encoding.
*/
type ScalarEncoder struct {
	ScalarEncoderParams

	halfWidth     int
	padding       int
	rangeInternal float64
	//Range of values covered, one resolution wider than MaxVal-MinVal when
	//not periodic
	valueRange float64
	//nInternal represents the output area excluding the possible padding on each side
	nInternal int

	Logger zerolog.Logger
}

func NewScalarEncoder(params ScalarEncoderParams) (*ScalarEncoder, error) {
	se := &ScalarEncoder{
		ScalarEncoderParams: params,
		Logger:              log.With().Str("component", "scalar_encoder").Str("encoder", params.Name).Logger(),
	}

	if se.W <= 0 || se.W%2 == 0 {
		return nil, fmt.Errorf("%w: width %v must be a positive odd number", ErrInvalidEncoderParams, se.W)
	}
	if se.MinVal >= se.MaxVal {
		return nil, fmt.Errorf("%w: min val %v must be smaller than max val %v", ErrInvalidEncoderParams, se.MinVal, se.MaxVal)
	}

	set := 0
	for _, v := range []bool{se.N != 0, se.Radius != 0, se.Resolution != 0} {
		if v {
			set++
		}
	}
	if set != 1 {
		return nil, fmt.Errorf("%w: exactly one of n, radius and resolution must be set", ErrInvalidEncoderParams)
	}

	se.halfWidth = se.W / 2
	if !se.Periodic {
		se.padding = se.halfWidth
	}
	se.rangeInternal = se.MaxVal - se.MinVal

	if se.N != 0 {
		if se.N <= se.W {
			return nil, fmt.Errorf("%w: n %v must be greater than width %v", ErrInvalidEncoderParams, se.N, se.W)
		}
		if se.Periodic {
			se.Resolution = se.rangeInternal / float64(se.N)
		} else {
			se.Resolution = se.rangeInternal / float64(se.N-se.W)
		}
		se.Radius = float64(se.W) * se.Resolution
		se.setRange()
	} else {
		if se.Radius != 0 {
			se.Resolution = se.Radius / float64(se.W)
		} else {
			se.Radius = float64(se.W) * se.Resolution
		}
		se.setRange()
		nFloat := float64(se.W)*(se.valueRange/se.Radius) + 2*float64(se.padding)
		se.N = int(math.Ceil(nFloat))
	}

	se.nInternal = se.N - 2*se.padding
	return se, nil
}

func (se *ScalarEncoder) setRange() {
	if se.Periodic {
		se.valueRange = se.rangeInternal
	} else {
		se.valueRange = se.rangeInternal + se.Resolution
	}
}

//Width in bits
func (se *ScalarEncoder) Width() int {
	return se.N
}

/* Return the bit offset of the first bit to be set in the encoder output.
For periodic encoders, this can be a negative number when the encoded output
wraps around. */
func (se *ScalarEncoder) getFirstOnBit(input float64) (int, error) {
	if se.Periodic {
		// Don't clip periodic inputs. Out-of-range input is always an error
		if input < se.MinVal || input >= se.MaxVal {
			return 0, fmt.Errorf("%w: %v outside periodic range [%v, %v)", ErrInputOutOfRange, input, se.MinVal, se.MaxVal)
		}
	} else if input < se.MinVal || input > se.MaxVal {
		if !se.ClipInput {
			return 0, fmt.Errorf("%w: %v outside range [%v, %v]", ErrInputOutOfRange, input, se.MinVal, se.MaxVal)
		}
		clipped := utils.ClampFloat64(input, se.MinVal, se.MaxVal)
		se.Logger.Debug().Float64("input", input).Float64("clipped", clipped).Msg("clipped input")
		input = clipped
	}

	var centerbin int
	if se.Periodic {
		centerbin = int((input-se.MinVal)*float64(se.nInternal)/se.valueRange) + se.padding
	} else {
		centerbin = int(((input-se.MinVal)+se.Resolution/2)/se.Resolution) + se.padding
	}

	// We use the first bit to be set in the encoded output as the bucket index
	return centerbin - se.halfWidth, nil
}

/*
 Returns the bucket index of input. For periodic encoders, the bucket index
is the index of the center bit, otherwise the index of the first bit.
*/
func (se *ScalarEncoder) BucketIndex(input float64) (int, error) {
	minbin, err := se.getFirstOnBit(input)
	if err != nil {
		return 0, err
	}

	if !se.Periodic {
		return minbin, nil
	}
	bucketIdx := minbin + se.halfWidth
	if bucketIdx < 0 {
		bucketIdx += se.N
	}
	return bucketIdx, nil
}

//Encodes input into N bits of which W are on
func (se *ScalarEncoder) Encode(input float64) ([]bool, error) {
	minbin, err := se.getFirstOnBit(input)
	if err != nil {
		return nil, err
	}

	output := make([]bool, se.N)
	maxbin := minbin + 2*se.halfWidth

	if se.Periodic {
		// Handle the edges by computing wrap-around
		if maxbin >= se.N {
			bottombins := maxbin - se.N + 1
			utils.FillSliceRangeBool(output, true, 0, bottombins)
			maxbin = se.N - 1
		}
		if minbin < 0 {
			topbins := -minbin
			utils.FillSliceRangeBool(output, true, se.N-topbins, se.N)
			minbin = 0
		}
	}

	// set the output (except for periodic wraparound)
	utils.FillSliceRangeBool(output, true, minbin, maxbin+1)

	se.Logger.Trace().
		Float64("input", input).
		Int("n", se.N).
		Float64("resolution", se.Resolution).
		Ints("on", utils.OnIndices(output)).
		Msg("encoded")

	return output, nil
}
