package htm

import (
	"sort"
)

//Synapse reference inside a segment update. Existing synapses are referred
//to by index, synapses to create carry their source.
type SynapseUpdateState struct {
	New   bool
	Index int
	//only set when new
	Src  int
	SrcX int
	SrcY int
}

type SegmentUpdate struct {
	columnIdx int
	cellIdx   int
	//segment id, -1 when a new segment is to be created
	segment         int
	activeSynapses  []SynapseUpdateState
	sequenceSegment bool
	phase1Flag      bool
	//iteration the update was queued on
	lrnIterationIdx int
}

/*
 Builds a segment update for neuron i of column c. Synapses of segment that
are active under activeState are listed for reinforcement. If newSynapses is
true, synapses to randomly picked neurons of learnState are added until the
update holds NewSynapseCount synapses. segment may be -1, in which case the
update creates a new segment when committed.
*/
func (tp *TemporalPooler) getSegmentActiveSynapses(c, i, segment int, activeState, learnState *DenseBinaryMatrix, newSynapses bool) *SegmentUpdate {
	r := tp.region
	update := &SegmentUpdate{
		columnIdx:       c,
		cellIdx:         i,
		segment:         segment,
		lrnIterationIdx: r.iteration,
	}

	var seg *Segment
	if segment >= 0 {
		seg = &r.segments[segment]
		for _, idx := range seg.ActiveSynapseIndices(neuronActivity(activeState)) {
			update.activeSynapses = append(update.activeSynapses, SynapseUpdateState{Index: idx})
		}
	}

	if !newSynapses {
		return update
	}

	numNew := tp.params.NewSynapseCount - len(update.activeSynapses)
	if numNew <= 0 {
		return update
	}

	self := r.NeuronID(c, i)
	var candidates []SparseEntry
	for _, e := range learnState.Entries() {
		src := r.NeuronID(e.Row, e.Col)
		if src == self || (seg != nil && seg.HasSource(src)) {
			continue
		}
		candidates = append(candidates, e)
	}

	for _, k := range tp.updateRand(c, i).Perm(len(candidates)) {
		if numNew == 0 {
			break
		}
		e := candidates[k]
		update.activeSynapses = append(update.activeSynapses, SynapseUpdateState{
			New:  true,
			Src:  r.NeuronID(e.Row, e.Col),
			SrcX: e.Row,
			SrcY: e.Col,
		})
		numNew--
	}

	return update
}

/*
 Queues an update for later commit in Phase 3. Updates that touch no
synapse are dropped.
*/
func (tp *TemporalPooler) addToSegmentUpdates(update *SegmentUpdate) {
	if update == nil || len(update.activeSynapses) == 0 {
		return
	}

	key := tp.region.NeuronID(update.columnIdx, update.cellIdx)
	tp.segmentUpdates[key] = append(tp.segmentUpdates[key], update)
}

//Removes Phase 1 updates queued during the current iteration
func (tp *TemporalPooler) dropPhaseOneUpdates() {
	iteration := tp.region.iteration
	for key, updates := range tp.segmentUpdates {
		kept := updates[:0]
		for _, u := range updates {
			if u.phase1Flag && u.lrnIterationIdx == iteration {
				continue
			}
			kept = append(kept, u)
		}
		tp.setUpdates(key, kept)
	}
}

func (tp *TemporalPooler) setUpdates(key int, updates []*SegmentUpdate) {
	if len(updates) == 0 {
		delete(tp.segmentUpdates, key)
		return
	}
	tp.segmentUpdates[key] = updates
}

//Neuron ids with queued updates, ascending
func (tp *TemporalPooler) queuedNeurons() []int {
	keys := make([]int, 0, len(tp.segmentUpdates))
	for key := range tp.segmentUpdates {
		keys = append(keys, key)
	}
	sort.Ints(keys)
	return keys
}

//Number of queued segment updates
func (tp *TemporalPooler) PendingUpdates() int {
	total := 0
	for _, updates := range tp.segmentUpdates {
		total += len(updates)
	}
	return total
}

/*
 This function applies segment update information to a segment in a
cell.

With positive reinforcement, synapses on the active list get their
permanence incremented by PermanenceInc, all other synapses of the segment
are decremented by PermanenceDec and listed new synapses are created with
InitialPerm. A new segment is created when the update has none.

With negative reinforcement, synapses on the active list are decremented
by PermanenceDec and nothing is created.
*/
func (update *SegmentUpdate) adaptSegments(tp *TemporalPooler, positiveReinforcement bool) {
	r := tp.region
	p := tp.params

	var synToUpdate []int
	for _, val := range update.activeSynapses {
		if !val.New {
			synToUpdate = append(synToUpdate, val.Index)
		}
	}

	segment := update.segment
	if segment < 0 {
		if !positiveReinforcement {
			return
		}
		neuron := r.Neuron(update.columnIdx, update.cellIdx)
		id, err := r.CreateDistalSegment(neuron, update.sequenceSegment, p.ActivationThreshold)
		if err != nil {
			tp.Logger.Error().Err(err).Msg("failed to create distal segment")
			return
		}
		segment = id
	}

	seg := &r.segments[segment]
	seg.LastActiveIteration = r.iteration

	if !positiveReinforcement {
		seg.NegativeActivations++
		seg.updateSynapses(synToUpdate, -p.PermanenceDec, p.PermanenceMax)
		return
	}

	seg.PositiveActivations++
	if update.sequenceSegment {
		seg.SequenceSegment = true
	}

	// First, decrement synapses that are not active
	var inactiveSynIndices []int
	for i := range seg.Synapses {
		if !containsSorted(synToUpdate, i) {
			inactiveSynIndices = append(inactiveSynIndices, i)
		}
	}
	seg.updateSynapses(inactiveSynIndices, -p.PermanenceDec, p.PermanenceMax)

	// Now, increment active synapses
	seg.updateSynapses(synToUpdate, p.PermanenceInc, p.PermanenceMax)

	// Finally, create new synapses
	for _, val := range update.activeSynapses {
		if val.New && !seg.HasSource(val.Src) {
			seg.AddSynapse(val.Src, val.SrcX, val.SrcY, p.InitialPerm)
		}
	}
}

//Binary search in a slice of ascending synapse indices
func containsSorted(indices []int, q int) bool {
	k := sort.SearchInts(indices, q)
	return k < len(indices) && indices[k] == q
}
