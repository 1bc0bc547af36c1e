package htm

import (
	"fmt"

	"github.com/google/uuid"
)

//Index of a column's learning neuron when none was chosen
const NoLearningNeuron = -1

//Vertical group of neurons sharing one proximal segment
type Column struct {
	X int
	Y int
	//Segment id of the proximal segment
	ProximalSegment int
	//Neuron index chosen to learn this timestep, NoLearningNeuron if none
	LearningNeuron int
	Neurons        []Neuron
}

//Cell identified by its column and index within the column
type Neuron struct {
	Column int
	Index  int
	//Segment ids of the distal segments, in creation order
	DistalSegments []int
}

/*
Region owns a fixed XLen x YLen grid of columns. Columns, neurons and
segments live in flat arenas and refer to each other by index: columns by
x*YLen + y, neurons by column*CellsPerColumn + index, segments by id.

Neuron state is double buffered in matrices with one row per column and one
col per neuron. The *Last matrices hold the committed state of the previous
timestep and are only written by AdvanceTimestep.
*/
type Region struct {
	ID             uuid.UUID
	XLen           int
	YLen           int
	CellsPerColumn int

	columns  []Column
	segments []Segment

	//Number of AdvanceTimestep calls
	iteration int

	activeState        *DenseBinaryMatrix
	activeStateLast    *DenseBinaryMatrix
	predictedState     *DenseBinaryMatrix
	predictedStateLast *DenseBinaryMatrix
	learnState         *DenseBinaryMatrix
	learnStateLast     *DenseBinaryMatrix
}

//Creates a region with one empty proximal segment per column
func NewRegion(params RegionParams) (*Region, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	r := &Region{
		ID:             uuid.New(),
		XLen:           params.XLen,
		YLen:           params.YLen,
		CellsPerColumn: params.CellsPerColumn,
	}

	numColumns := r.XLen * r.YLen
	r.columns = make([]Column, numColumns)
	r.segments = make([]Segment, 0, numColumns)

	for x := 0; x < r.XLen; x++ {
		for y := 0; y < r.YLen; y++ {
			c := r.ColumnIndex(x, y)
			seg := r.newSegment(Proximal, c, false, 0)
			col := Column{
				X:               x,
				Y:               y,
				ProximalSegment: seg,
				LearningNeuron:  NoLearningNeuron,
				Neurons:         make([]Neuron, r.CellsPerColumn),
			}
			for i := range col.Neurons {
				col.Neurons[i] = Neuron{Column: c, Index: i}
			}
			r.columns[c] = col
		}
	}

	r.activeState = NewDenseBinaryMatrix(numColumns, r.CellsPerColumn)
	r.activeStateLast = NewDenseBinaryMatrix(numColumns, r.CellsPerColumn)
	r.predictedState = NewDenseBinaryMatrix(numColumns, r.CellsPerColumn)
	r.predictedStateLast = NewDenseBinaryMatrix(numColumns, r.CellsPerColumn)
	r.learnState = NewDenseBinaryMatrix(numColumns, r.CellsPerColumn)
	r.learnStateLast = NewDenseBinaryMatrix(numColumns, r.CellsPerColumn)

	return r, nil
}

func (r *Region) NumColumns() int {
	return len(r.columns)
}

func (r *Region) NumNeurons() int {
	return len(r.columns) * r.CellsPerColumn
}

func (r *Region) NumSegments() int {
	return len(r.segments)
}

//Timesteps advanced since creation
func (r *Region) Iteration() int {
	return r.iteration
}

//Flat column index of grid position x,y
func (r *Region) ColumnIndex(x, y int) int {
	return x*r.YLen + y
}

//Returns the column at flat index c, nil when out of range
func (r *Region) Column(c int) *Column {
	if c < 0 || c >= len(r.columns) {
		return nil
	}
	return &r.columns[c]
}

//Returns the column at grid position x,y, nil when out of range
func (r *Region) ColumnAt(x, y int) *Column {
	if x < 0 || x >= r.XLen || y < 0 || y >= r.YLen {
		return nil
	}
	return &r.columns[r.ColumnIndex(x, y)]
}

//Neuron id of neuron i in column c
func (r *Region) NeuronID(c, i int) int {
	return c*r.CellsPerColumn + i
}

//Returns neuron i of column c, nil when out of range
func (r *Region) Neuron(c, i int) *Neuron {
	col := r.Column(c)
	if col == nil || i < 0 || i >= len(col.Neurons) {
		return nil
	}
	return &col.Neurons[i]
}

/*
Returns the segment with the given id, nil when out of range. The pointer
is only valid until the next segment is created.
*/
func (r *Region) Segment(id int) *Segment {
	if id < 0 || id >= len(r.segments) {
		return nil
	}
	return &r.segments[id]
}

//Returns the proximal segment of column c
func (r *Region) ProximalSegment(c int) *Segment {
	col := r.Column(c)
	if col == nil {
		return nil
	}
	return &r.segments[col.ProximalSegment]
}

func (r *Region) newSegment(kind SegmentKind, owner int, sequence bool, threshold float64) int {
	id := len(r.segments)
	r.segments = append(r.segments, Segment{
		ID:                  id,
		Kind:                kind,
		Owner:               owner,
		SequenceSegment:     sequence,
		ActivationThreshold: threshold,
		LastActiveIteration: r.iteration,
	})
	return id
}

//Creates a distal segment owned by neuron n, returns its id
func (r *Region) CreateDistalSegment(n *Neuron, sequence bool, threshold float64) (int, error) {
	if n == nil {
		return -1, fmt.Errorf("%w: neuron cannot be nil", ErrInvalidArgument)
	}
	if r.Neuron(n.Column, n.Index) != n {
		return -1, fmt.Errorf("%w: neuron %v/%v does not belong to region", ErrInvalidArgument, n.Column, n.Index)
	}
	id := r.newSegment(Distal, r.NeuronID(n.Column, n.Index), sequence, threshold)
	n.DistalSegments = append(n.DistalSegments, id)
	return id, nil
}

//Adds a distal synapse from neuron src to segment seg
func (r *Region) ConnectNeurons(seg int, src *Neuron, permanence float64) error {
	s := r.Segment(seg)
	if s == nil || s.Kind != Distal {
		return fmt.Errorf("%w: segment %v is not a distal segment", ErrInvalidArgument, seg)
	}
	if src == nil {
		return fmt.Errorf("%w: source neuron cannot be nil", ErrInvalidArgument)
	}
	s.AddSynapse(r.NeuronID(src.Column, src.Index), src.Column, src.Index, permanence)
	return nil
}

/*
Commits the current state as the previous timestep's state and clears the
current state. Must run before Phase 1 of every timestep.
*/
func (r *Region) AdvanceTimestep() {
	r.activeStateLast.CopyFrom(r.activeState)
	r.predictedStateLast.CopyFrom(r.predictedState)
	r.learnStateLast.CopyFrom(r.learnState)

	r.activeState.Clear()
	r.predictedState.Clear()
	r.learnState.Clear()
	r.clearLearningNeurons()

	r.iteration++
}

//Clears current and previous state, segments and synapses are kept
func (r *Region) Reset() {
	r.activeState.Clear()
	r.activeStateLast.Clear()
	r.predictedState.Clear()
	r.predictedStateLast.Clear()
	r.learnState.Clear()
	r.learnStateLast.Clear()
	r.clearLearningNeurons()
}

func (r *Region) clearLearningNeurons() {
	for c := range r.columns {
		r.columns[c].LearningNeuron = NoLearningNeuron
	}
}

func (r *Region) ActiveState(c, i int) bool {
	return r.activeState.Get(c, i)
}

func (r *Region) PreviousActiveState(c, i int) bool {
	return r.activeStateLast.Get(c, i)
}

func (r *Region) PredictingState(c, i int) bool {
	return r.predictedState.Get(c, i)
}

func (r *Region) PreviousPredictingState(c, i int) bool {
	return r.predictedStateLast.Get(c, i)
}

func (r *Region) LearnState(c, i int) bool {
	return r.learnState.Get(c, i)
}

func (r *Region) PreviousLearnState(c, i int) bool {
	return r.learnStateLast.Get(c, i)
}

/*
Sets the current state of a neuron. The next Infer or Learn call commits it
as the previous timestep's state, which lets upstream collaborators restore
state and tests seed a scenario. Must not be called while a timestep is
being computed.
*/
func (r *Region) SetState(c, i int, active, predicting, learning bool) error {
	if r.Neuron(c, i) == nil {
		return fmt.Errorf("%w: neuron %v/%v out of range", ErrInvalidArgument, c, i)
	}
	r.activeState.Set(c, i, active)
	r.predictedState.Set(c, i, predicting)
	r.learnState.Set(c, i, learning)
	return nil
}

//Copies of the current active, predicted and learn state
func (r *Region) State() (active, predicted, learn *DenseBinaryMatrix) {
	return r.activeState.Copy(), r.predictedState.Copy(), r.learnState.Copy()
}

//Copies of the previous timestep's active, predicted and learn state
func (r *Region) PreviousState() (active, predicted, learn *DenseBinaryMatrix) {
	return r.activeStateLast.Copy(), r.predictedStateLast.Copy(), r.learnStateLast.Copy()
}

//Columns with at least one active neuron
func (r *Region) ActiveColumns() []int {
	return r.activeState.NonZeroRows()
}

//Columns with at least one predicting neuron
func (r *Region) PredictedColumns() []int {
	return r.predictedState.NonZeroRows()
}

//Boolean OR of active and predictive state, the signal passed up the hierarchy
func (r *Region) Output() *DenseBinaryMatrix {
	return r.activeState.Or(r.predictedState)
}

//Output flattened in neuron id order, row major over (column, neuron)
func (r *Region) OutputFlat() []bool {
	return r.Output().Flatten()
}

//Activity of distal synapse sources in state
func neuronActivity(state *DenseBinaryMatrix) SourceActivity {
	return func(syn Synapse) bool {
		return state.Get(syn.SrcX, syn.SrcY)
	}
}
