package htm

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned when a nil or out-of-range argument is
	// passed to a region, pooler or connector operation.
	ErrInvalidArgument = errors.New("invalid argument")

	ErrNilRegion      = fmt.Errorf("%w: region cannot be nil", ErrInvalidArgument)
	ErrNilSensorLayer = fmt.Errorf("%w: sensor layer cannot be nil", ErrInvalidArgument)

	// ErrInvalidOverlap is returned when an overlap is negative or not strictly
	// smaller than the receptive field it is applied to.
	ErrInvalidOverlap = errors.New("invalid receptive field overlap")

	// ErrFieldOutOfBounds is returned when the tiled receptive fields would
	// reach past the edge of the sensor layer.
	ErrFieldOutOfBounds = errors.New("receptive field out of sensor layer bounds")

	ErrInvalidParams = errors.New("invalid params")
)
