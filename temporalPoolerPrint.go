//
// Code related to temporal pooler printing
//

package htm

import (
	"bytes"
	"fmt"
	"io"

	"github.com/gonum/floats"
)

type SegmentStats struct {
	NumSegments       int
	NumSynapses       int
	NumActiveSegments int
	NumActiveSynapses int
	//histogram of segments per neuron
	DistNumSegsPerCell map[int]int
	//histogram of synapses per segment
	DistSegSizes map[int]int
	//histogram of permanences in tenths, 10 holds permanence 1
	DistPermValues map[int]int
	//histogram of iterations since last update, in 20 buckets
	DistAges        map[int]int
	MinPermanence   float64
	MaxPermanence   float64
	MeanPermanence  float64
	ConnectedFrac   float64
	SequenceSegment int
}

/*
Returns information about the distribution of distal segments, synapses and
permanence values of the region. If requested, also counts the segments
and synapses active under the current active state.
*/
func (tp *TemporalPooler) CalcSegmentStats(collectActiveData bool) SegmentStats {
	r := tp.region
	result := SegmentStats{
		DistNumSegsPerCell: make(map[int]int),
		DistSegSizes:       make(map[int]int),
		DistPermValues:     make(map[int]int),
		DistAges:           make(map[int]int),
	}

	numAgeBuckets := 20
	ageBucketSize := (r.iteration + numAgeBuckets) / numAgeBuckets
	current := neuronActivity(r.activeState)

	var perms []float64
	connected := 0

	for c := range r.columns {
		for _, neuron := range r.columns[c].Neurons {
			result.NumSegments += len(neuron.DistalSegments)
			result.DistNumSegsPerCell[len(neuron.DistalSegments)]++

			for _, s := range neuron.DistalSegments {
				seg := &r.segments[s]
				result.NumSynapses += len(seg.Synapses)
				result.DistSegSizes[len(seg.Synapses)]++
				if seg.SequenceSegment {
					result.SequenceSegment++
				}

				// Accumulate permanence value histogram
				for _, syn := range seg.Synapses {
					result.DistPermValues[int(syn.Permanence*10)]++
					perms = append(perms, syn.Permanence)
					if syn.Permanence >= tp.params.ConnectedPerm {
						connected++
					}
				}

				age := r.iteration - seg.LastActiveIteration
				result.DistAges[age/ageBucketSize]++

				// Get active synapse statistics if requested
				if collectActiveData {
					if seg.IsActive(tp.params.ConnectedPerm, current) {
						result.NumActiveSegments++
					}
					result.NumActiveSynapses += len(seg.ActiveSynapseIndices(current))
				}
			}
		}
	}

	if len(perms) > 0 {
		result.MinPermanence = floats.Min(perms)
		result.MaxPermanence = floats.Max(perms)
		result.MeanPermanence = floats.Sum(perms) / float64(len(perms))
		result.ConnectedFrac = float64(connected) / float64(len(perms))
	}

	return result
}

func (s *Segment) String() string {
	var buf bytes.Buffer
	seq := ""
	if s.SequenceSegment {
		seq = " seq"
	}
	fmt.Fprintf(&buf, "%v segment %v owner %v%v (+%v/-%v)",
		s.Kind, s.ID, s.Owner, seq, s.PositiveActivations, s.NegativeActivations)
	for _, syn := range s.Synapses {
		fmt.Fprintf(&buf, " [%v,%v]%.2f", syn.SrcX, syn.SrcY, syn.Permanence)
	}
	return buf.String()
}

func (r *Region) String() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Region %v: %vx%v columns, %v cells per column\n", r.ID, r.XLen, r.YLen, r.CellsPerColumn)
	fmt.Fprintf(&buf, "iteration %v, %v segments\n", r.iteration, len(r.segments))
	fmt.Fprintf(&buf, "active columns %v\n", r.ActiveColumns())
	fmt.Fprintf(&buf, "predicted columns %v\n", r.PredictedColumns())
	return buf.String()
}

/*
 Print the list of [column, cellIdx] indices for each of the active
cells in state.
*/
func printActiveIndices(w io.Writer, state *DenseBinaryMatrix) {
	entries := state.Entries()
	if len(entries) == 0 {
		fmt.Fprintln(w, "None")
		return
	}
	for _, e := range entries {
		fmt.Fprintf(w, "[%v,%v]", e.Row, e.Col)
	}
	fmt.Fprintln(w)
}

/*
	Prints a cells information
*/
func (tp *TemporalPooler) PrintCell(w io.Writer, c int, i int, onlyActiveSegments bool) {
	neuron := tp.region.Neuron(c, i)
	if neuron == nil || len(neuron.DistalSegments) == 0 {
		return
	}

	current := neuronActivity(tp.region.activeState)
	fmt.Fprintf(w, "Column: %v Cell: %v - %v segment(s)\n", c, i, len(neuron.DistalSegments))
	for _, s := range neuron.DistalSegments {
		seg := &tp.region.segments[s]
		isActive := seg.IsActive(tp.params.ConnectedPerm, current)
		if onlyActiveSegments && !isActive {
			continue
		}
		str := " "
		if isActive {
			str = "*"
		}
		fmt.Fprintf(w, "%v%v\n", str, seg)
	}
}

/*
 Print all cell information
*/
func (tp *TemporalPooler) PrintCells(w io.Writer, predictedOnly bool) {
	if predictedOnly {
		fmt.Fprintln(w, "--- PREDICTED CELLS ---")
	} else {
		fmt.Fprintln(w, "--- ALL CELLS ---")
	}

	fmt.Fprintln(w, "Activation threshold:", tp.params.ActivationThreshold)
	fmt.Fprintln(w, "min threshold:", tp.params.MinThreshold)
	fmt.Fprintln(w, "connected perm:", tp.params.ConnectedPerm)

	r := tp.region
	for c := range r.columns {
		for i := range r.columns[c].Neurons {
			if !predictedOnly || r.predictedState.Get(c, i) {
				tp.PrintCell(w, c, i, predictedOnly)
			}
		}
	}
}

/*
 Prints a summary of the last computed timestep: bursting columns,
prediction score, segment counts and the active, predicted and learn
state.
*/
func (tp *TemporalPooler) PrintComputeEnd(w io.Writer) {
	r := tp.region
	fmt.Fprintln(w, "----- computeEnd summary: ")

	bursting := 0
	for _, c := range r.activeState.NonZeroRows() {
		if len(r.activeState.GetRowIndices(c)) == r.CellsPerColumn {
			bursting++
		}
	}
	fmt.Fprintln(w, "numBurstingCols:", bursting)
	fmt.Fprintln(w, "curPredScore:", tp.Stats.CurPredictionScore)

	stats := tp.CalcSegmentStats(true)
	fmt.Fprintln(w, "numSegments", stats.NumSegments)
	fmt.Fprintln(w, "numSynapses", stats.NumSynapses)

	fmt.Fprintf(w, "----- activeState (%v on) ------\n", r.activeState.TotalNonZeroCount())
	printActiveIndices(w, r.activeState)
	fmt.Fprintf(w, "----- predictedState (%v on) -----\n", r.predictedState.TotalNonZeroCount())
	printActiveIndices(w, r.predictedState)
	fmt.Fprintf(w, "----- learnState (%v on) ------\n", r.learnState.TotalNonZeroCount())
	printActiveIndices(w, r.learnState)
}
