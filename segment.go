package htm

import (
	"github.com/htm-community/cla/utils"
)

type SegmentKind int

const (
	//Feeds from sensor cells, one per column
	Proximal SegmentKind = 0
	//Feeds from other neurons of the region
	Distal SegmentKind = 1
)

func (k SegmentKind) String() string {
	switch k {
	case Proximal:
		return "proximal"
	case Distal:
		return "distal"
	default:
		return "unknown"
	}
}

/*
Synapse connects a source cell to the segment owning it. For proximal
synapses Src is the sensor cell's flat index and SrcX/SrcY its grid
position. For distal synapses Src is the source neuron id, SrcX its column
and SrcY its index inside the column.
*/
type Synapse struct {
	Src        int
	SrcX       int
	SrcY       int
	Permanence float64
}

//Reports whether the source cell of a synapse is active
type SourceActivity func(syn Synapse) bool

// The Segment struct is a container for all of the segment variables and
//the synapses it owns.
type Segment struct {
	ID   int
	Kind SegmentKind
	//Column index for proximal segments, neuron id for distal segments
	Owner int
	//Set when the segment predicts activity on the very next timestep
	SequenceSegment bool
	//Fraction of synapses that must be connected and active
	ActivationThreshold float64
	Synapses            []Synapse

	LastActiveIteration int
	PositiveActivations int
	NegativeActivations int
}

//Appends a synapse, returns its index on the segment
func (s *Segment) AddSynapse(src, srcX, srcY int, permanence float64) int {
	s.Synapses = append(s.Synapses, Synapse{
		Src:        src,
		SrcX:       srcX,
		SrcY:       srcY,
		Permanence: permanence,
	})
	return len(s.Synapses) - 1
}

//Returns true if a synapse from src already exists on the segment
func (s *Segment) HasSource(src int) bool {
	for _, syn := range s.Synapses {
		if syn.Src == src {
			return true
		}
	}
	return false
}

//Counts connected synapses whose source is active
func (s *Segment) ActiveSynapseCount(connectedPerm float64, active SourceActivity) int {
	count := 0
	for _, syn := range s.Synapses {
		if syn.Permanence >= connectedPerm && active(syn) {
			count++
		}
	}
	return count
}

//Indices of synapses whose source is active regardless of permanence
func (s *Segment) ActiveSynapseIndices(active SourceActivity) []int {
	var result []int
	for idx, syn := range s.Synapses {
		if active(syn) {
			result = append(result, idx)
		}
	}
	return result
}

/*
A segment is active when at least one connected synapse is active and the
active connected synapses make up at least ActivationThreshold of all its
synapses.
*/
func (s *Segment) IsActive(connectedPerm float64, active SourceActivity) bool {
	return s.isActiveCount(s.ActiveSynapseCount(connectedPerm, active))
}

func (s *Segment) isActiveCount(count int) bool {
	if count == 0 {
		return false
	}
	return float64(count) >= s.ActivationThreshold*float64(len(s.Synapses))
}

//Adds delta to the permanence of the synapses at indices, clamped to [0, max]
func (s *Segment) updateSynapses(indices []int, delta, max float64) {
	for _, idx := range indices {
		syn := &s.Synapses[idx]
		syn.Permanence = utils.ClampFloat64(syn.Permanence+delta, 0, max)
	}
}

//Permanences of all synapses, in order
func (s *Segment) Permanences() []float64 {
	result := make([]float64, len(s.Synapses))
	for i, syn := range s.Synapses {
		result[i] = syn.Permanence
	}
	return result
}
