package htm

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

/*
Params for constructing a region
*/
type RegionParams struct {
	//Column grid dimensions
	XLen int `yaml:"x_len" mapstructure:"x_len"`
	YLen int `yaml:"y_len" mapstructure:"y_len"`
	//Neurons per column
	CellsPerColumn int `yaml:"cells_per_column" mapstructure:"cells_per_column"`
}

func NewRegionParams() *RegionParams {
	return &RegionParams{
		XLen:           8,
		YLen:           8,
		CellsPerColumn: 4,
	}
}

func (p *RegionParams) Validate() error {
	if p.XLen <= 0 || p.YLen <= 0 {
		return fmt.Errorf("%w: column grid %vx%v must be positive", ErrInvalidParams, p.XLen, p.YLen)
	}
	if p.CellsPerColumn <= 0 {
		return fmt.Errorf("%w: cells per column must be > 0", ErrInvalidParams)
	}
	return nil
}

/*
Params for wiring a sensor layer to a region
*/
type ConnectParams struct {
	//Number of sensor cells shared by the receptive fields of
	//adjacent columns along each axis.
	OverlapX int `yaml:"overlap_x" mapstructure:"overlap_x"`
	OverlapY int `yaml:"overlap_y" mapstructure:"overlap_y"`
	//Permanence given to every proximal synapse
	InitialPermanence float64 `yaml:"initial_permanence" mapstructure:"initial_permanence"`
	//Only wire columns [0, regionLen-shift) on each axis
	LegacyLoopBound bool `yaml:"legacy_loop_bound" mapstructure:"legacy_loop_bound"`
}

func NewConnectParams() *ConnectParams {
	return &ConnectParams{
		OverlapX:          2,
		OverlapY:          2,
		InitialPermanence: DefaultProximalPermanence,
	}
}

/*
Params for intializing the temporal pooler
*/
type TemporalPoolerParams struct {
	//Permanence of synapses created during learning
	InitialPerm float64 `yaml:"initial_perm" mapstructure:"initial_perm"`
	//If the permanence value for a synapse is greater than or equal to this
	//value, it is said to be connected.
	ConnectedPerm float64 `yaml:"connected_perm" mapstructure:"connected_perm"`
	PermanenceInc float64 `yaml:"permanence_inc" mapstructure:"permanence_inc"`
	PermanenceDec float64 `yaml:"permanence_dec" mapstructure:"permanence_dec"`
	PermanenceMax float64 `yaml:"permanence_max" mapstructure:"permanence_max"`
	//Fraction of a segment's synapses that must be connected and active
	//for the segment to be active. Copied onto every new distal segment.
	ActivationThreshold float64 `yaml:"activation_threshold" mapstructure:"activation_threshold"`
	//A best matching segment needs at least this many active synapses to be
	//reinforced, otherwise a new segment is grown.
	MinThreshold int `yaml:"min_threshold" mapstructure:"min_threshold"`
	//The maximum number of synapses added to a segment during learning.
	NewSynapseCount int `yaml:"new_synapse_count" mapstructure:"new_synapse_count"`
	//Number of timesteps a queued segment update stays valid. 0 drops every
	//uncommitted update at the end of the timestep.
	SegUpdateValidDuration int `yaml:"seg_update_valid_duration" mapstructure:"seg_update_valid_duration"`
	//rand seed
	Seed int64 `yaml:"seed" mapstructure:"seed"`
}

func NewTemporalPoolerParams() *TemporalPoolerParams {
	return &TemporalPoolerParams{
		InitialPerm:            0.55,
		ConnectedPerm:          0.5,
		PermanenceInc:          0.1,
		PermanenceDec:          0.05,
		PermanenceMax:          1.0,
		ActivationThreshold:    0.5,
		MinThreshold:           1,
		NewSynapseCount:        10,
		SegUpdateValidDuration: 1,
		Seed:                   42,
	}
}

func (p *TemporalPoolerParams) Validate() error {
	if p.PermanenceMax <= 0 {
		return fmt.Errorf("%w: permanence max must be > 0", ErrInvalidParams)
	}
	if p.ConnectedPerm < 0 || p.ConnectedPerm > p.PermanenceMax {
		return fmt.Errorf("%w: connected perm %v outside [0, %v]", ErrInvalidParams, p.ConnectedPerm, p.PermanenceMax)
	}
	if p.InitialPerm < 0 || p.InitialPerm > p.PermanenceMax {
		return fmt.Errorf("%w: initial perm %v outside [0, %v]", ErrInvalidParams, p.InitialPerm, p.PermanenceMax)
	}
	if p.PermanenceInc < 0 || p.PermanenceDec < 0 {
		return fmt.Errorf("%w: permanence inc/dec must be >= 0", ErrInvalidParams)
	}
	if p.ActivationThreshold <= 0 || p.ActivationThreshold > 1 {
		return fmt.Errorf("%w: activation threshold %v outside (0, 1]", ErrInvalidParams, p.ActivationThreshold)
	}
	if p.MinThreshold < 0 {
		return fmt.Errorf("%w: min threshold must be >= 0", ErrInvalidParams)
	}
	if p.NewSynapseCount <= 0 {
		return fmt.Errorf("%w: new synapse count must be > 0", ErrInvalidParams)
	}
	if p.SegUpdateValidDuration < 0 {
		return fmt.Errorf("%w: segment update valid duration must be >= 0", ErrInvalidParams)
	}
	return nil
}

/*
Params for the spatial pooler driving the temporal pooler
*/
type SpatialPoolerParams struct {
	//Number of winning columns after global inhibition
	NumActiveColumns int `yaml:"num_active_columns" mapstructure:"num_active_columns"`
	//Minimum overlap for a column to compete
	StimulusThreshold  int     `yaml:"stimulus_threshold" mapstructure:"stimulus_threshold"`
	SynPermConnected   float64 `yaml:"syn_perm_connected" mapstructure:"syn_perm_connected"`
	SynPermActiveInc   float64 `yaml:"syn_perm_active_inc" mapstructure:"syn_perm_active_inc"`
	SynPermInactiveDec float64 `yaml:"syn_perm_inactive_dec" mapstructure:"syn_perm_inactive_dec"`
	SynPermMax         float64 `yaml:"syn_perm_max" mapstructure:"syn_perm_max"`
}

func NewSpatialPoolerParams() *SpatialPoolerParams {
	return &SpatialPoolerParams{
		NumActiveColumns:   4,
		StimulusThreshold:  1,
		SynPermConnected:   0.2,
		SynPermActiveInc:   0.05,
		SynPermInactiveDec: 0.01,
		SynPermMax:         1.0,
	}
}

func (p *SpatialPoolerParams) Validate() error {
	if p.NumActiveColumns <= 0 {
		return fmt.Errorf("%w: num active columns must be > 0", ErrInvalidParams)
	}
	if p.StimulusThreshold < 0 {
		return fmt.Errorf("%w: stimulus threshold must be >= 0", ErrInvalidParams)
	}
	if p.SynPermMax <= 0 || p.SynPermConnected < 0 || p.SynPermConnected > p.SynPermMax {
		return fmt.Errorf("%w: syn perm connected %v outside [0, %v]", ErrInvalidParams, p.SynPermConnected, p.SynPermMax)
	}
	if p.SynPermActiveInc < 0 || p.SynPermInactiveDec < 0 {
		return fmt.Errorf("%w: syn perm inc/dec must be >= 0", ErrInvalidParams)
	}
	return nil
}

/*
Full parameter document for a sensor layer, region and its poolers
*/
type Params struct {
	SensorWidth    int                  `yaml:"sensor_width" mapstructure:"sensor_width"`
	SensorHeight   int                  `yaml:"sensor_height" mapstructure:"sensor_height"`
	Region         RegionParams         `yaml:"region" mapstructure:"region"`
	Connect        ConnectParams        `yaml:"connect" mapstructure:"connect"`
	SpatialPooler  SpatialPoolerParams  `yaml:"spatial_pooler" mapstructure:"spatial_pooler"`
	TemporalPooler TemporalPoolerParams `yaml:"temporal_pooler" mapstructure:"temporal_pooler"`
}

//Returns the 66x66 sensor / 8x8 region layout with default pooler params
func DefaultParams() *Params {
	return &Params{
		SensorWidth:    66,
		SensorHeight:   66,
		Region:         *NewRegionParams(),
		Connect:        *NewConnectParams(),
		SpatialPooler:  *NewSpatialPoolerParams(),
		TemporalPooler: *NewTemporalPoolerParams(),
	}
}

func (p *Params) Validate() error {
	if p.SensorWidth <= 0 || p.SensorHeight <= 0 {
		return fmt.Errorf("%w: sensor layer %vx%v must be positive", ErrInvalidParams, p.SensorWidth, p.SensorHeight)
	}
	if err := p.Region.Validate(); err != nil {
		return fmt.Errorf("region: %w", err)
	}
	if err := p.SpatialPooler.Validate(); err != nil {
		return fmt.Errorf("spatial pooler: %w", err)
	}
	if err := p.TemporalPooler.Validate(); err != nil {
		return fmt.Errorf("temporal pooler: %w", err)
	}
	return nil
}

//Decodes a yaml params document on top of DefaultParams and validates it
func LoadParams(r io.Reader) (*Params, error) {
	p := DefaultParams()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(p); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode params: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

//Encodes params as a yaml document
func (p *Params) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("failed to encode params: %w", err)
	}
	return enc.Close()
}
