package htm

import (
	"fmt"

	"github.com/cznic/mathutil"
	"github.com/htm-community/cla/utils"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

//Permanence of proximal synapses when none is configured
const DefaultProximalPermanence = 0.3

//Wires the proximal segments of a region to a sensor layer
type SensorCellsToRegionConnect interface {
	Connect(sensorLayer *SensorLayer, region *Region, overlapX, overlapY int) error
}

//Half open rectangle [XStart, XEnd) x [YStart, YEnd) of sensor cells
type Rectangle struct {
	XStart int
	XEnd   int
	YStart int
	YEnd   int
}

func (r Rectangle) Contains(x, y int) bool {
	return x >= r.XStart && x < r.XEnd && y >= r.YStart && y < r.YEnd
}

func (r Rectangle) Area() int {
	return (r.XEnd - r.XStart) * (r.YEnd - r.YStart)
}

/*
 Returns the receptive field length and the stride between the fields of
adjacent columns along one axis. The field length is the smallest length
for which regionLen fields, each sharing overlap cells with its neighbour,
span sensorLen cells:

	fieldLen = round((sensorLen + overlap*regionLen - overlap) / regionLen)
	shift    = fieldLen - overlap

e.g. 66 sensor cells, 8 columns, overlap 2 gives fieldLen 10 and shift 8.
*/
func ReceptiveField(sensorLen, regionLen, overlap int) (fieldLen int, shift int) {
	fieldLen = utils.RoundHalfUp(float64(sensorLen+overlap*regionLen-overlap) / float64(regionLen))
	shift = fieldLen - overlap
	return
}

//Geometry of one axis, validated
type axisGeometry struct {
	fieldLen int
	shift    int
	//Columns wired along the axis
	columns int
	//Sensor cells past the last field
	uncovered int
}

func newAxisGeometry(axis string, sensorLen, regionLen, overlap int, legacy bool) (axisGeometry, error) {
	g := axisGeometry{}
	if overlap < 0 {
		return g, fmt.Errorf("%w: %v overlap %v is negative", ErrInvalidOverlap, axis, overlap)
	}

	g.fieldLen, g.shift = ReceptiveField(sensorLen, regionLen, overlap)
	if g.fieldLen <= 0 {
		return g, fmt.Errorf("%w: %v receptive field length %v from %v sensor cells and %v columns",
			ErrInvalidOverlap, axis, g.fieldLen, sensorLen, regionLen)
	}
	if overlap >= g.fieldLen {
		return g, fmt.Errorf("%w: %v overlap %v must be smaller than field length %v",
			ErrInvalidOverlap, axis, overlap, g.fieldLen)
	}

	g.columns = regionLen
	if legacy {
		g.columns = mathutil.Max(regionLen-g.shift, 0)
	}

	end := (regionLen-1)*g.shift + g.fieldLen
	if end > sensorLen {
		return g, fmt.Errorf("%w: %v fields end at %v, sensor layer has %v cells",
			ErrFieldOutOfBounds, axis, end, sensorLen)
	}
	g.uncovered = sensorLen - end
	return g, nil
}

/*
RectangleConnect tiles overlapping rectangular receptive fields over the
sensor layer, one per column, and adds a synapse for every sensor cell of a
column's field to the column's proximal segment.
*/
type RectangleConnect struct {
	//Permanence of created synapses, DefaultProximalPermanence when 0
	InitialPermanence float64
	//Restricts wiring to columns [0, regionLen-shift) on each axis. With
	//evenly tiled layers this bound wires fewer columns than exist.
	LegacyLoopBound bool
	Logger          zerolog.Logger
}

func NewRectangleConnect(params ConnectParams) *RectangleConnect {
	return &RectangleConnect{
		InitialPermanence: params.InitialPermanence,
		LegacyLoopBound:   params.LegacyLoopBound,
		Logger:            log.With().Str("component", "connect").Logger(),
	}
}

//Returns the receptive field of the column at x,y
func (rc *RectangleConnect) Rectangle(sensorLayer *SensorLayer, region *Region, overlapX, overlapY, x, y int) (Rectangle, error) {
	gx, gy, err := rc.geometry(sensorLayer, region, overlapX, overlapY)
	if err != nil {
		return Rectangle{}, err
	}
	if x < 0 || x >= region.XLen || y < 0 || y >= region.YLen {
		return Rectangle{}, fmt.Errorf("%w: column %v,%v out of range", ErrInvalidArgument, x, y)
	}
	return rectangleFor(gx, gy, x, y), nil
}

func rectangleFor(gx, gy axisGeometry, x, y int) Rectangle {
	xStart := x * gx.shift
	yStart := y * gy.shift
	return Rectangle{
		XStart: xStart,
		XEnd:   xStart + gx.fieldLen,
		YStart: yStart,
		YEnd:   yStart + gy.fieldLen,
	}
}

func (rc *RectangleConnect) geometry(sensorLayer *SensorLayer, region *Region, overlapX, overlapY int) (axisGeometry, axisGeometry, error) {
	if region == nil {
		return axisGeometry{}, axisGeometry{}, ErrNilRegion
	}
	if sensorLayer == nil {
		return axisGeometry{}, axisGeometry{}, ErrNilSensorLayer
	}

	gx, err := newAxisGeometry("x", sensorLayer.Width, region.XLen, overlapX, rc.LegacyLoopBound)
	if err != nil {
		return gx, axisGeometry{}, err
	}
	gy, err := newAxisGeometry("y", sensorLayer.Height, region.YLen, overlapY, rc.LegacyLoopBound)
	if err != nil {
		return gx, gy, err
	}
	return gx, gy, nil
}

/*
 Connects every column of region to its receptive field on sensorLayer.
Geometry is validated before any synapse is created, so a failed call
leaves the region untouched.
*/
func (rc *RectangleConnect) Connect(sensorLayer *SensorLayer, region *Region, overlapX, overlapY int) error {
	gx, gy, err := rc.geometry(sensorLayer, region, overlapX, overlapY)
	if err != nil {
		return err
	}

	perm := rc.InitialPermanence
	if perm == 0 {
		perm = DefaultProximalPermanence
	}

	rc.Logger.Debug().
		Str("region", region.ID.String()).
		Int("field_x", gx.fieldLen).
		Int("field_y", gy.fieldLen).
		Int("shift_x", gx.shift).
		Int("shift_y", gy.shift).
		Msg("connecting sensor layer")

	if gx.uncovered > 0 || gy.uncovered > 0 {
		rc.Logger.Warn().
			Int("uncovered_x", gx.uncovered).
			Int("uncovered_y", gy.uncovered).
			Msg("receptive fields do not reach the sensor layer edge")
	}
	if gx.columns < region.XLen || gy.columns < region.YLen {
		rc.Logger.Warn().
			Int("columns_x", gx.columns).
			Int("columns_y", gy.columns).
			Msg("legacy loop bound leaves columns without proximal synapses")
	}

	for cx := 0; cx < gx.columns; cx++ {
		for cy := 0; cy < gy.columns; cy++ {
			rect := rectangleFor(gx, gy, cx, cy)
			seg := region.ProximalSegment(region.ColumnIndex(cx, cy))

			for sx := rect.XStart; sx < rect.XEnd; sx++ {
				for sy := rect.YStart; sy < rect.YEnd; sy++ {
					seg.AddSynapse(sensorLayer.Index(sx, sy), sx, sy, perm)
				}
			}
		}
	}

	return nil
}
