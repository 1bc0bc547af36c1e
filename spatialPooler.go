package htm

import (
	"fmt"

	"github.com/htm-community/cla/utils"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/skelterjohn/go.matrix"
)

/*
SpatialPooler turns the activity of a sensor layer into the set of active
columns of a region. It reads the proximal segments created by a
SensorCellsToRegionConnect and applies global inhibition: the
NumActiveColumns columns with the highest overlap win.
*/
type SpatialPooler struct {
	params SpatialPoolerParams
	region *Region
	layer  *SensorLayer

	//XLen x YLen overlap of the last Compute call
	overlaps *matrix.DenseMatrix

	Logger zerolog.Logger
}

func NewSpatialPooler(region *Region, layer *SensorLayer, params SpatialPoolerParams) (*SpatialPooler, error) {
	if region == nil {
		return nil, ErrNilRegion
	}
	if layer == nil {
		return nil, ErrNilSensorLayer
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	sp := &SpatialPooler{
		params:   params,
		region:   region,
		layer:    layer,
		overlaps: matrix.Zeros(region.XLen, region.YLen),
		Logger: log.With().
			Str("component", "spatial_pooler").
			Str("region", region.ID.String()).
			Logger(),
	}
	return sp, nil
}

func (sp *SpatialPooler) Params() SpatialPoolerParams {
	return sp.params
}

/*
 Computes the active columns for the current sensor activity, ascending.
When learn is set, proximal synapses of the winning columns move toward the
input: synapses on active sensor cells are incremented by SynPermActiveInc,
all others decremented by SynPermInactiveDec.
*/
func (sp *SpatialPooler) Compute(learn bool) []int {
	sp.calculateOverlap()
	activeColumns := sp.inhibitColumns()

	if learn {
		sp.adaptSynapses(activeColumns)
	}

	sp.Logger.Debug().
		Bool("learn", learn).
		Ints("active_columns", activeColumns).
		Msg("spatial pooler computed")

	return activeColumns
}

//Overlap of column x,y in the last Compute call
func (sp *SpatialPooler) Overlap(x, y int) (int, error) {
	if x < 0 || x >= sp.region.XLen || y < 0 || y >= sp.region.YLen {
		return 0, fmt.Errorf("%w: column %v,%v out of range", ErrInvalidArgument, x, y)
	}
	return int(sp.overlaps.Get(x, y)), nil
}

//Copy of the overlap matrix, one row per x and one col per y
func (sp *SpatialPooler) Overlaps() *matrix.DenseMatrix {
	return sp.overlaps.Copy()
}

func (sp *SpatialPooler) sensorActivity() SourceActivity {
	return func(syn Synapse) bool {
		return sp.layer.IsActive(syn.Src)
	}
}

/*
 Overlap is the number of connected proximal synapses on active sensor
cells. Overlaps below StimulusThreshold are zeroed.
*/
func (sp *SpatialPooler) calculateOverlap() {
	active := sp.sensorActivity()
	for x := 0; x < sp.region.XLen; x++ {
		for y := 0; y < sp.region.YLen; y++ {
			seg := sp.region.ProximalSegment(sp.region.ColumnIndex(x, y))
			overlap := seg.ActiveSynapseCount(sp.params.SynPermConnected, active)
			if overlap < sp.params.StimulusThreshold {
				overlap = 0
			}
			sp.overlaps.Set(x, y, float64(overlap))
		}
	}
}

/*
 Global inhibition. Columns with a positive overlap are ranked by overlap,
ties go to the lower column index, and the first NumActiveColumns win.
*/
func (sp *SpatialPooler) inhibitColumns() []int {
	overlap := make([]int, sp.region.NumColumns())
	for c := range overlap {
		col := sp.region.Column(c)
		overlap[c] = int(sp.overlaps.Get(col.X, col.Y))
	}

	//zero overlaps rank last, so dropping them keeps the top k
	winners := make([]int, 0, sp.params.NumActiveColumns)
	for _, c := range utils.TopIndices(overlap, sp.params.NumActiveColumns) {
		if overlap[c] > 0 {
			winners = append(winners, c)
		}
	}
	return winners
}

func (sp *SpatialPooler) adaptSynapses(activeColumns []int) {
	for _, c := range activeColumns {
		seg := sp.region.ProximalSegment(c)
		var inc, dec []int
		for idx, syn := range seg.Synapses {
			if sp.layer.IsActive(syn.Src) {
				inc = append(inc, idx)
			} else {
				dec = append(dec, idx)
			}
		}
		seg.updateSynapses(inc, sp.params.SynPermActiveInc, sp.params.SynPermMax)
		seg.updateSynapses(dec, -sp.params.SynPermInactiveDec, sp.params.SynPermMax)
	}
}
