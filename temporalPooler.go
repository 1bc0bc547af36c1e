package htm

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

/*
TemporalPooler runs the temporal pooling algorithm on a region with and
without learning. Given the columns declared active by a spatial pooler it
computes the active and predictive state of every neuron at timestep t.

The algorithm is split into 3 phases that run in sequence:

	Phase 1 - compute the active state of each neuron
	Phase 2 - compute the predictive state of each neuron
	Phase 3 - update synapse permanences

Phase 3 is only required for learning, however Phases 1 and 2 queue the
segment updates Phase 3 commits when learning is on.

The output of the pooler, the boolean OR of active and predictive state of
every neuron, feeds the next region in the hierarchy.
*/
type TemporalPooler struct {
	params TemporalPoolerParams
	region *Region

	//queued updates keyed by neuron id
	segmentUpdates map[int][]*SegmentUpdate

	Stats  *TpStats
	Logger zerolog.Logger
}

func NewTemporalPooler(region *Region, params TemporalPoolerParams) (*TemporalPooler, error) {
	if region == nil {
		return nil, ErrNilRegion
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	tp := &TemporalPooler{
		params:         params,
		region:         region,
		segmentUpdates: make(map[int][]*SegmentUpdate),
		Stats:          new(TpStats),
		Logger: log.With().
			Str("component", "temporal_pooler").
			Str("region", region.ID.String()).
			Logger(),
	}
	return tp, nil
}

func (tp *TemporalPooler) Region() *Region {
	return tp.region
}

func (tp *TemporalPooler) Params() TemporalPoolerParams {
	return tp.params
}

//Runs Phases 1 and 2 for one timestep, nothing is learned
func (tp *TemporalPooler) Infer(activeColumns []int) (*Region, error) {
	return tp.compute(activeColumns, false)
}

//Runs Phases 1, 2 and 3 for one timestep, learning from the input
func (tp *TemporalPooler) Learn(activeColumns []int) (*Region, error) {
	return tp.compute(activeColumns, true)
}

/*
Reset the state of all neurons and drops queued updates. This is normally
used between sequences while training. Learned segments are kept.
*/
func (tp *TemporalPooler) Reset() {
	tp.region.Reset()
	tp.segmentUpdates = make(map[int][]*SegmentUpdate)
	tp.Stats.resetCurrent()
}

func (tp *TemporalPooler) compute(activeColumns []int, learn bool) (*Region, error) {
	cols, err := normalizeColumns(activeColumns, tp.region.NumColumns())
	if err != nil {
		return nil, err
	}

	tp.region.AdvanceTimestep()
	tp.Stats.update(tp.region.predictedStateLast.NonZeroRows(), cols, tp.region.NumColumns())

	bursting := tp.phaseOne(cols, learn)
	tp.phaseTwo(learn)

	committed := 0
	if learn {
		committed = tp.phaseThree()
	}

	tp.Logger.Debug().
		Int("iteration", tp.region.iteration).
		Bool("learn", learn).
		Int("active_columns", len(cols)).
		Int("bursting_columns", bursting).
		Int("predicted_neurons", tp.region.predictedState.TotalNonZeroCount()).
		Int("committed_updates", committed).
		Int("pending_updates", tp.PendingUpdates()).
		Msg("timestep computed")

	return tp.region, nil
}

//Validates, sorts and deduplicates column indices
func normalizeColumns(activeColumns []int, numColumns int) ([]int, error) {
	cols := make([]int, 0, len(activeColumns))
	for _, c := range activeColumns {
		if c < 0 || c >= numColumns {
			return nil, fmt.Errorf("%w: active column %v out of range [0, %v)", ErrInvalidArgument, c, numColumns)
		}
		cols = append(cols, c)
	}
	sort.Ints(cols)

	result := cols[:0]
	for idx, c := range cols {
		if idx > 0 && cols[idx-1] == c {
			continue
		}
		result = append(result, c)
	}
	return result, nil
}

/*
 Phase 1 - computes the active state of each neuron of the active columns
and returns the number of columns that burst.

A neuron that was predicting at t-1 through an active sequence segment
becomes active. If that segment was active under the t-1 active state the
neuron becomes the column's learning neuron. If no neuron of the column
was predicted, every neuron of the column becomes active. When learning and
no learning neuron was chosen, the best matching neuron is chosen and a
sequence segment update is queued for it.

Current active and learn state are rebuilt from scratch, running the phase
twice on the same input yields the same state and queue.
*/
func (tp *TemporalPooler) phaseOne(activeColumns []int, learn bool) int {
	r := tp.region
	r.activeState.Clear()
	r.learnState.Clear()
	r.clearLearningNeurons()
	tp.dropPhaseOneUpdates()

	prevActive := neuronActivity(r.activeStateLast)
	bursting := 0

	for _, c := range activeColumns {
		column := &r.columns[c]
		buPredicted := false
		lcChosen := false

		for i := range column.Neurons {
			if !r.predictedStateLast.Get(c, i) {
				continue
			}
			s := tp.bestPreviousActiveSegment(&column.Neurons[i])
			if s < 0 || !r.segments[s].SequenceSegment {
				continue
			}
			buPredicted = true
			r.activeState.Set(c, i, true)
			if learn && !lcChosen && r.segments[s].IsActive(tp.params.ConnectedPerm, prevActive) {
				lcChosen = true
				column.LearningNeuron = i
				r.learnState.Set(c, i, true)
			}
		}

		if !buPredicted {
			r.activeState.FillRow(c, true)
			bursting++
		}

		if learn && !lcChosen {
			l := tp.bestMatchingNeuronIndex(column)
			column.LearningNeuron = l
			r.learnState.Set(c, l, true)

			s := tp.bestMatchingSegment(&column.Neurons[l])
			update := tp.getSegmentActiveSynapses(c, l, s, r.activeStateLast, r.learnStateLast, true)
			update.sequenceSegment = true
			update.phase1Flag = true
			tp.addToSegmentUpdates(update)
		}
	}

	return bursting
}

/*
 Phase 2 - computes the predictive state of each neuron. A neuron predicts
when at least one of its distal segments is active under the active state
computed in Phase 1. When learning, the active segment is queued for
reinforcement together with the segment that best matches t-1 activity, so
that the neuron learns to predict one step earlier.
*/
func (tp *TemporalPooler) phaseTwo(learn bool) {
	r := tp.region
	r.predictedState.Clear()
	current := neuronActivity(r.activeState)

	for c := range r.columns {
		column := &r.columns[c]
		for i := range column.Neurons {
			neuron := &column.Neurons[i]
			predicting := false

			for _, s := range neuron.DistalSegments {
				if !r.segments[s].IsActive(tp.params.ConnectedPerm, current) {
					continue
				}
				predicting = true
				if !learn {
					break
				}
				activeUpdate := tp.getSegmentActiveSynapses(c, i, s, r.activeState, r.learnState, false)
				tp.addToSegmentUpdates(activeUpdate)
			}

			if !predicting {
				continue
			}
			r.predictedState.Set(c, i, true)

			if learn {
				predSegment := tp.bestMatchingSegment(neuron)
				predUpdate := tp.getSegmentActiveSynapses(c, i, predSegment, r.activeStateLast, r.learnStateLast, true)
				tp.addToSegmentUpdates(predUpdate)
			}
		}
	}
}

/*
 Phase 3 - commits queued updates and returns how many were committed.
Updates of a learning neuron are committed with positive reinforcement.
Updates of a neuron that stopped predicting without becoming active are
committed with negative reinforcement. Remaining updates expire once they
are SegUpdateValidDuration timesteps old.
*/
func (tp *TemporalPooler) phaseThree() int {
	r := tp.region
	committed := 0

	for _, key := range tp.queuedNeurons() {
		updates := tp.segmentUpdates[key]
		c, i := key/r.CellsPerColumn, key%r.CellsPerColumn

		if r.learnState.Get(c, i) {
			for _, u := range updates {
				u.adaptSegments(tp, true)
			}
			committed += len(updates)
			delete(tp.segmentUpdates, key)
			continue
		}

		if !r.predictedState.Get(c, i) && r.predictedStateLast.Get(c, i) {
			for _, u := range updates {
				u.adaptSegments(tp, false)
			}
			committed += len(updates)
			delete(tp.segmentUpdates, key)
			continue
		}

		kept := updates[:0]
		for _, u := range updates {
			if r.iteration-u.lrnIterationIdx < tp.params.SegUpdateValidDuration {
				kept = append(kept, u)
			}
		}
		tp.setUpdates(key, kept)
	}

	return committed
}

/*
 Returns the id of the distal segment of n with the strictly greatest
number of active connected synapses under active, ties keep the first
segment. A segment without active synapses is still eligible, -1 means the
neuron has no distal segment.
*/
func (tp *TemporalPooler) bestActiveSegment(n *Neuron, active SourceActivity) (int, int) {
	bestSegment := -1
	greatestNumberOfActiveSynapses := -1
	for _, s := range n.DistalSegments {
		count := tp.region.segments[s].ActiveSynapseCount(tp.params.ConnectedPerm, active)
		if count > greatestNumberOfActiveSynapses {
			bestSegment = s
			greatestNumberOfActiveSynapses = count
		}
	}
	return bestSegment, greatestNumberOfActiveSynapses
}

//Best active segment of n under the current active state
func (tp *TemporalPooler) BestActiveSegment(n *Neuron) (int, error) {
	if n == nil {
		return -1, fmt.Errorf("%w: neuron cannot be nil", ErrInvalidArgument)
	}
	s, _ := tp.bestActiveSegment(n, neuronActivity(tp.region.activeState))
	return s, nil
}

/*
 Returns the segment of n that was active at t-1, preferring sequence
segments and then the one with most active synapses. -1 if no segment was
active.
*/
func (tp *TemporalPooler) bestPreviousActiveSegment(n *Neuron) int {
	prevActive := neuronActivity(tp.region.activeStateLast)
	best := -1
	bestCount := 0
	bestSequence := false

	for _, s := range n.DistalSegments {
		seg := &tp.region.segments[s]
		count := seg.ActiveSynapseCount(tp.params.ConnectedPerm, prevActive)
		if !seg.isActiveCount(count) {
			continue
		}
		switch {
		case best < 0,
			seg.SequenceSegment && !bestSequence,
			seg.SequenceSegment == bestSequence && count > bestCount:
			best, bestCount, bestSequence = s, count, seg.SequenceSegment
		}
	}
	return best
}

func (tp *TemporalPooler) BestPreviousActiveSegment(n *Neuron) (int, error) {
	if n == nil {
		return -1, fmt.Errorf("%w: neuron cannot be nil", ErrInvalidArgument)
	}
	return tp.bestPreviousActiveSegment(n), nil
}

//Best segment of n under t-1 activity, -1 when it has fewer than
//MinThreshold active synapses
func (tp *TemporalPooler) bestMatchingSegment(n *Neuron) int {
	s, count := tp.bestActiveSegment(n, neuronActivity(tp.region.activeStateLast))
	if s < 0 || count < tp.params.MinThreshold {
		return -1
	}
	return s
}

/*
 Returns the index of the neuron of column whose best segment had the most
active synapses at t-1, ties go to the lowest index. 0 when no neuron has
an active synapse.
*/
func (tp *TemporalPooler) bestMatchingNeuronIndex(column *Column) int {
	prevActive := neuronActivity(tp.region.activeStateLast)
	greatestNumberOfActiveSynapses := 0
	bestMatchingNeuronIndex := 0
	for i := range column.Neurons {
		_, count := tp.bestActiveSegment(&column.Neurons[i], prevActive)
		if count > greatestNumberOfActiveSynapses {
			greatestNumberOfActiveSynapses = count
			bestMatchingNeuronIndex = i
		}
	}
	return bestMatchingNeuronIndex
}

/*
 Random source for picking new synapses of neuron i in column c. Seeded
from the iteration and neuron so that recomputing a phase picks the same
synapses.
*/
func (tp *TemporalPooler) updateRand(c, i int) *rand.Rand {
	seed := tp.params.Seed + int64(tp.region.iteration)*1000003 + int64(tp.region.NeuronID(c, i))
	return rand.New(rand.NewSource(seed))
}

func (tp *TemporalPooler) BestMatchingNeuronIndex(column *Column) (int, error) {
	if column == nil {
		return -1, fmt.Errorf("%w: column cannot be nil", ErrInvalidArgument)
	}
	return tp.bestMatchingNeuronIndex(column), nil
}
