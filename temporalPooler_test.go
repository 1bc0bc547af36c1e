package htm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPooler(t *testing.T, xLen, yLen, cells int, params *TemporalPoolerParams) *TemporalPooler {
	region, err := NewRegion(RegionParams{XLen: xLen, YLen: yLen, CellsPerColumn: cells})
	require.NoError(t, err)
	if params == nil {
		params = NewTemporalPoolerParams()
	}
	tp, err := NewTemporalPooler(region, *params)
	require.NoError(t, err)
	return tp
}

//Distal segment on neuron c/i with one synapse per source
func addSegment(t *testing.T, r *Region, c, i int, sequence bool, perm float64, srcs ...[2]int) int {
	id, err := r.CreateDistalSegment(r.Neuron(c, i), sequence, 0.5)
	require.NoError(t, err)
	for _, src := range srcs {
		require.NoError(t, r.ConnectNeurons(id, r.Neuron(src[0], src[1]), perm))
	}
	return id
}

type queuedUpdates map[int][]SegmentUpdate

func snapshotQueue(tp *TemporalPooler) queuedUpdates {
	result := make(queuedUpdates)
	for key, updates := range tp.segmentUpdates {
		for _, u := range updates {
			result[key] = append(result[key], *u)
		}
	}
	return result
}

func TestNewTemporalPoolerErrors(t *testing.T) {
	_, err := NewTemporalPooler(nil, *NewTemporalPoolerParams())
	assert.True(t, errors.Is(err, ErrNilRegion))

	region, err := NewRegion(*NewRegionParams())
	require.NoError(t, err)
	params := NewTemporalPoolerParams()
	params.ActivationThreshold = 0
	_, err = NewTemporalPooler(region, *params)
	assert.True(t, errors.Is(err, ErrInvalidParams))
}

func TestComputeRejectsOutOfRangeColumns(t *testing.T) {
	tp := newTestPooler(t, 2, 2, 2, nil)

	_, err := tp.Infer([]int{1, 4})
	assert.True(t, errors.Is(err, ErrInvalidArgument))
	_, err = tp.Learn([]int{-1})
	assert.True(t, errors.Is(err, ErrInvalidArgument))
	assert.Equal(t, 0, tp.Region().Iteration())
}

func TestBurstWhenNothingPredicted(t *testing.T) {
	tp := newTestPooler(t, 2, 2, 3, nil)

	r, err := tp.Infer([]int{3, 1, 3})
	require.NoError(t, err)

	assert.Equal(t, []int{1, 3}, r.ActiveColumns())
	for c := 0; c < r.NumColumns(); c++ {
		for i := 0; i < r.CellsPerColumn; i++ {
			assert.Equal(t, c == 1 || c == 3, r.ActiveState(c, i))
		}
		assert.Equal(t, NoLearningNeuron, r.Column(c).LearningNeuron)
	}
	assert.Equal(t, 0, tp.PendingUpdates())

	r, err = tp.Learn([]int{0})
	require.NoError(t, err)
	assert.Equal(t, 0, r.Column(0).LearningNeuron)
	assert.True(t, r.LearnState(0, 0))
	assert.Equal(t, 3, len(r.activeState.GetRowIndices(0)))
}

func TestPredictedNeuronActivates(t *testing.T) {
	for _, learn := range []bool{true, false} {
		tp := newTestPooler(t, 1, 1, 2, nil)
		r := tp.Region()

		s := addSegment(t, r, 0, 0, true, 0.6, [2]int{0, 1})
		require.NoError(t, r.SetState(0, 0, false, true, false))
		require.NoError(t, r.SetState(0, 1, true, false, true))

		var err error
		if learn {
			_, err = tp.Learn([]int{0})
		} else {
			_, err = tp.Infer([]int{0})
		}
		require.NoError(t, err)

		assert.True(t, r.ActiveState(0, 0))
		assert.False(t, r.ActiveState(0, 1))
		assert.Empty(t, r.PredictedColumns())
		assert.Equal(t, []float64{0.6}, r.Segment(s).Permanences())

		if learn {
			assert.Equal(t, 0, r.Column(0).LearningNeuron)
			assert.True(t, r.LearnState(0, 0))
		} else {
			assert.Equal(t, NoLearningNeuron, r.Column(0).LearningNeuron)
		}
	}
}

func TestPredictedNeuronLearnsFromActiveSources(t *testing.T) {
	tp := newTestPooler(t, 2, 1, 2, nil)
	r := tp.Region()

	seq := addSegment(t, r, 0, 0, true, 0.6, [2]int{1, 0})
	other := addSegment(t, r, 0, 1, false, 0.6, [2]int{1, 0}, [2]int{1, 1})
	require.NoError(t, r.SetState(0, 0, false, true, false))
	//sources were active without learning
	require.NoError(t, r.SetState(1, 0, true, false, false))
	require.NoError(t, r.SetState(1, 1, true, false, false))

	_, err := tp.Learn([]int{0})
	require.NoError(t, err)

	assert.True(t, r.ActiveState(0, 0))
	assert.False(t, r.ActiveState(0, 1))
	assert.Equal(t, 0, r.Column(0).LearningNeuron)
	assert.True(t, r.LearnState(0, 0))
	assert.False(t, r.LearnState(0, 1))

	//nothing queued, nothing committed
	assert.Equal(t, 0, tp.PendingUpdates())
	assert.False(t, r.Segment(other).SequenceSegment)
	assert.Equal(t, 0, r.Segment(other).PositiveActivations)
	assert.Equal(t, []float64{0.6, 0.6}, r.Segment(other).Permanences())
	assert.Equal(t, []float64{0.6}, r.Segment(seq).Permanences())
}

func TestNonSequencePredictionBursts(t *testing.T) {
	tp := newTestPooler(t, 1, 1, 2, nil)
	r := tp.Region()

	s := addSegment(t, r, 0, 0, false, 0.6, [2]int{0, 1})
	require.NoError(t, r.SetState(0, 0, false, true, false))
	require.NoError(t, r.SetState(0, 1, true, false, true))

	_, err := tp.Learn([]int{0})
	require.NoError(t, err)

	assert.True(t, r.ActiveState(0, 0))
	assert.True(t, r.ActiveState(0, 1))
	assert.Equal(t, 0, r.Column(0).LearningNeuron)
	assert.True(t, r.PredictingState(0, 0))

	//phase 1, active and matching updates all reinforce s
	seg := r.Segment(s)
	assert.True(t, seg.SequenceSegment)
	assert.Equal(t, 3, seg.PositiveActivations)
	assert.InDelta(t, 0.9, seg.Synapses[0].Permanence, 1e-9)
	assert.Equal(t, 0, tp.PendingUpdates())
}

//Neuron 1/0 predicts from both neurons of column 0
func newReinforcementFixture(t *testing.T, params *TemporalPoolerParams, perm float64) (*TemporalPooler, int) {
	tp := newTestPooler(t, 2, 1, 2, params)
	s := addSegment(t, tp.Region(), 1, 0, true, perm, [2]int{0, 0}, [2]int{0, 1})

	r, err := tp.Learn([]int{0})
	require.NoError(t, err)
	require.True(t, r.PredictingState(1, 0))
	return tp, s
}

func TestPositiveReinforcement(t *testing.T) {
	tp, s := newReinforcementFixture(t, nil, 0.6)
	assert.Equal(t, 1, tp.PendingUpdates())

	r, err := tp.Learn([]int{1})
	require.NoError(t, err)

	assert.True(t, r.ActiveState(1, 0))
	assert.False(t, r.ActiveState(1, 1))
	assert.Equal(t, 0, r.Column(1).LearningNeuron)

	seg := r.Segment(s)
	assert.InDelta(t, 0.7, seg.Synapses[0].Permanence, 1e-9)
	assert.InDelta(t, 0.7, seg.Synapses[1].Permanence, 1e-9)
	assert.Equal(t, 1, seg.PositiveActivations)
	assert.Equal(t, 2, seg.LastActiveIteration)
	assert.Equal(t, 0, tp.PendingUpdates())
}

func TestPositiveReinforcementClampsPermanence(t *testing.T) {
	tp, s := newReinforcementFixture(t, nil, 0.95)

	r, err := tp.Learn([]int{1})
	require.NoError(t, err)
	assert.Equal(t, []float64{1.0, 1.0}, r.Segment(s).Permanences())
}

func TestNegativeReinforcement(t *testing.T) {
	tp, s := newReinforcementFixture(t, nil, 0.6)

	//the prediction of 1/0 fails
	r, err := tp.Learn(nil)
	require.NoError(t, err)

	seg := r.Segment(s)
	assert.InDelta(t, 0.55, seg.Synapses[0].Permanence, 1e-9)
	assert.InDelta(t, 0.55, seg.Synapses[1].Permanence, 1e-9)
	assert.Equal(t, 1, seg.NegativeActivations)
	assert.Equal(t, 0, seg.PositiveActivations)
	assert.Equal(t, 0, tp.PendingUpdates())
	assert.Equal(t, 3, r.NumSegments())
}

func TestSegmentUpdateExpiry(t *testing.T) {
	params := NewTemporalPoolerParams()
	params.SegUpdateValidDuration = 0
	tp, _ := newReinforcementFixture(t, params, 0.6)
	assert.Equal(t, 0, tp.PendingUpdates())

	tp, s := newReinforcementFixture(t, nil, 0.6)
	assert.Equal(t, 1, tp.PendingUpdates())

	//1/0 keeps predicting without learning, the first update expires
	_, err := tp.Learn([]int{0})
	require.NoError(t, err)

	key := tp.Region().NeuronID(1, 0)
	require.Len(t, tp.segmentUpdates[key], 2)
	for _, u := range tp.segmentUpdates[key] {
		assert.Equal(t, 2, u.lrnIterationIdx)
		assert.Equal(t, s, u.segment)
	}
	assert.Equal(t, 2, tp.PendingUpdates())
}

var (
	patternA = []int{0, 1}
	patternB = []int{2, 3}
)

func learnAlternating(t *testing.T, tp *TemporalPooler, steps int) {
	for i := 0; i < steps; i++ {
		pattern := patternA
		if i%2 == 1 {
			pattern = patternB
		}
		_, err := tp.Learn(pattern)
		require.NoError(t, err)
	}
}

func TestLearnRepeatingSequence(t *testing.T) {
	tp := newTestPooler(t, 4, 1, 2, nil)
	r := tp.Region()

	for i := 0; i < 12; i++ {
		pattern := patternA
		if i%2 == 1 {
			pattern = patternB
		}
		_, err := tp.Learn(pattern)
		require.NoError(t, err)

		assert.Equal(t, pattern, r.ActiveColumns())
		if i >= 3 {
			//one neuron per column, no bursting
			assert.Equal(t, 2, r.activeState.TotalNonZeroCount(), "step %v", i)
			assert.Equal(t, 1.0, tp.Stats.CurPredictionScore, "step %v", i)
		}
	}

	predicted := r.PredictedColumns()
	assert.Contains(t, predicted, 0)
	assert.Contains(t, predicted, 1)
	assert.Equal(t, 12, tp.Stats.NInfersSinceReset)
	assert.Greater(t, tp.Stats.AveragePredictionScore(), 0.5)

	stats := tp.CalcSegmentStats(true)
	assert.Greater(t, stats.NumSegments, 0)
	assert.Greater(t, stats.SequenceSegment, 0)
	assert.LessOrEqual(t, stats.MaxPermanence, 1.0)
}

func TestPhaseOneIsIdempotent(t *testing.T) {
	tp := newTestPooler(t, 4, 1, 2, nil)
	r := tp.Region()
	learnAlternating(t, tp, 5)

	//column 1 is not predicted and bursts, column 2 is
	cols := []int{1, 2}
	r.AdvanceTimestep()
	tp.phaseOne(cols, true)

	active, _, learn := r.State()
	queue := snapshotQueue(tp)
	learningNeurons := []int{r.Column(1).LearningNeuron, r.Column(2).LearningNeuron}
	require.Equal(t, 3, active.TotalNonZeroCount())

	tp.phaseOne(cols, true)

	active2, _, learn2 := r.State()
	assert.Equal(t, active, active2)
	assert.Equal(t, learn, learn2)
	assert.Equal(t, queue, snapshotQueue(tp))
	assert.Equal(t, learningNeurons, []int{r.Column(1).LearningNeuron, r.Column(2).LearningNeuron})
}

func TestPredictiveIffActiveSegment(t *testing.T) {
	tp := newTestPooler(t, 4, 1, 2, nil)
	r := tp.Region()
	learnAlternating(t, tp, 8)

	_, err := tp.Infer(patternA)
	require.NoError(t, err)

	current := neuronActivity(r.activeState)
	predicting := 0
	for c := 0; c < r.NumColumns(); c++ {
		for i := 0; i < r.CellsPerColumn; i++ {
			hasActive := false
			for _, s := range r.Neuron(c, i).DistalSegments {
				if r.Segment(s).IsActive(tp.Params().ConnectedPerm, current) {
					hasActive = true
				}
			}
			assert.Equal(t, hasActive, r.PredictingState(c, i), "neuron %v/%v", c, i)
			if hasActive {
				predicting++
			}
		}
	}
	assert.Greater(t, predicting, 0)

	out := r.Output()
	for c := 0; c < r.NumColumns(); c++ {
		for i := 0; i < r.CellsPerColumn; i++ {
			assert.Equal(t, r.ActiveState(c, i) || r.PredictingState(c, i), out.Get(c, i))
		}
	}
}

func TestReset(t *testing.T) {
	tp := newTestPooler(t, 4, 1, 2, nil)
	r := tp.Region()
	learnAlternating(t, tp, 6)
	segments := r.NumSegments()

	tp.Reset()
	assert.Equal(t, 0, tp.PendingUpdates())
	assert.Equal(t, 0, tp.Stats.NInfersSinceReset)
	assert.Equal(t, segments, r.NumSegments())
	active, predicted, learn := r.PreviousState()
	assert.Equal(t, 0, active.TotalNonZeroCount()+predicted.TotalNonZeroCount()+learn.TotalNonZeroCount())

	//the first element of a sequence is never predicted
	_, err := tp.Infer(patternA)
	require.NoError(t, err)
	assert.Equal(t, 4, r.activeState.TotalNonZeroCount())
}

func TestBestSegmentQueries(t *testing.T) {
	tp := newTestPooler(t, 1, 1, 3, nil)
	r := tp.Region()

	weak := addSegment(t, r, 0, 0, false, 0.6, [2]int{0, 1})
	strong := addSegment(t, r, 0, 0, true, 0.6, [2]int{0, 1}, [2]int{0, 2})
	//disconnected synapses never count
	addSegment(t, r, 0, 1, true, 0.2, [2]int{0, 0}, [2]int{0, 2})

	_, err := tp.BestActiveSegment(nil)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
	_, err = tp.BestPreviousActiveSegment(nil)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
	_, err = tp.BestMatchingNeuronIndex(nil)
	assert.True(t, errors.Is(err, ErrInvalidArgument))

	//no activity: the first segment is still returned, -1 without segments
	s, err := tp.BestActiveSegment(r.Neuron(0, 0))
	require.NoError(t, err)
	assert.Equal(t, weak, s)
	s, err = tp.BestActiveSegment(r.Neuron(0, 2))
	require.NoError(t, err)
	assert.Equal(t, -1, s)

	require.NoError(t, r.SetState(0, 1, true, false, false))
	require.NoError(t, r.SetState(0, 2, true, false, false))
	s, err = tp.BestActiveSegment(r.Neuron(0, 0))
	require.NoError(t, err)
	assert.Equal(t, strong, s)

	r.AdvanceTimestep()
	s, err = tp.BestPreviousActiveSegment(r.Neuron(0, 0))
	require.NoError(t, err)
	assert.Equal(t, strong, s)
	s, err = tp.BestPreviousActiveSegment(r.Neuron(0, 1))
	require.NoError(t, err)
	assert.Equal(t, -1, s)

	l, err := tp.BestMatchingNeuronIndex(r.Column(0))
	require.NoError(t, err)
	assert.Equal(t, 0, l)
}
