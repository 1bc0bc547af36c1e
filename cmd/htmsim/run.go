package main

import (
	"fmt"
	"io"

	htm "github.com/htm-community/cla"
	"github.com/htm-community/cla/encoders"
)

var baselineMethods = []htm.PredictorMethod{htm.Last, htm.Zeroth, htm.Lots, htm.All}

// simulation holds the pipeline sensor layer -> spatial pooler -> temporal pooler
type simulation struct {
	cfg      *Config
	layer    *htm.SensorLayer
	region   *htm.Region
	sp       *htm.SpatialPooler
	tp       *htm.TemporalPooler
	encoder  *encoders.ScalarEncoder
	baseline *htm.TrivialPredictor
}

func newSimulation(cfg *Config) (*simulation, error) {
	s := &simulation{cfg: cfg}
	var err error

	if s.encoder, err = encoders.NewScalarEncoder(cfg.Encoder); err != nil {
		return nil, err
	}
	if s.layer, err = htm.NewSensorLayer(cfg.SensorWidth, cfg.SensorHeight); err != nil {
		return nil, err
	}
	if s.region, err = htm.NewRegion(cfg.Region); err != nil {
		return nil, err
	}

	connect := htm.NewRectangleConnect(cfg.Connect)
	if err = connect.Connect(s.layer, s.region, cfg.Connect.OverlapX, cfg.Connect.OverlapY); err != nil {
		return nil, fmt.Errorf("failed to connect sensor layer: %w", err)
	}

	if s.sp, err = htm.NewSpatialPooler(s.region, s.layer, cfg.SpatialPooler); err != nil {
		return nil, err
	}
	if s.tp, err = htm.NewTemporalPooler(s.region, cfg.TemporalPooler); err != nil {
		return nil, err
	}
	if s.baseline, err = htm.NewTrivialPredictor(s.region.NumColumns(), baselineMethods); err != nil {
		return nil, err
	}

	return s, nil
}

// step feeds value through the pipeline with learning on and returns the
// active columns
func (s *simulation) step(value float64) ([]int, error) {
	bits, err := s.encoder.Encode(value)
	if err != nil {
		return nil, err
	}
	pattern, err := encoders.Rasterize(bits, s.layer.Width, s.layer.Height)
	if err != nil {
		return nil, err
	}
	if err := s.layer.Feed(pattern); err != nil {
		return nil, err
	}

	cols := s.sp.Compute(true)
	if _, err := s.tp.Learn(cols); err != nil {
		return nil, err
	}
	if err := s.baseline.Learn(cols); err != nil {
		return nil, err
	}
	return cols, nil
}

func runSimulation(out io.Writer, cfg *Config, verbose bool) error {
	s, err := newSimulation(cfg)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%-6s %-8s %-8s %-10s", "step", "value", "active", "tp")
	for _, m := range baselineMethods {
		fmt.Fprintf(out, " %-8s", m)
	}
	fmt.Fprintln(out)

	for i := 0; i < cfg.Steps; i++ {
		value := cfg.Sequence[i%len(cfg.Sequence)]
		cols, err := s.step(value)
		if err != nil {
			return fmt.Errorf("step %v: %w", i, err)
		}

		fmt.Fprintf(out, "%-6d %-8.2f %-8d %-10.3f", i, value, len(cols), s.tp.Stats.CurPredictionScore)
		for _, m := range baselineMethods {
			fmt.Fprintf(out, " %-8.3f", s.baseline.Stats[m].CurPredictionScore)
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintf(out, "average prediction score: %.3f\n", s.tp.Stats.AveragePredictionScore())
	for _, m := range baselineMethods {
		fmt.Fprintf(out, "  baseline %-6s %.3f\n", m, s.baseline.Stats[m].AveragePredictionScore())
	}

	stats := s.tp.CalcSegmentStats(false)
	fmt.Fprintf(out, "segments %v synapses %v mean permanence %.3f\n",
		stats.NumSegments, stats.NumSynapses, stats.MeanPermanence)

	if verbose {
		fmt.Fprint(out, s.region)
		s.tp.PrintComputeEnd(out)
	}
	return nil
}

func printGeometry(out io.Writer, cfg *Config) error {
	layer, err := htm.NewSensorLayer(cfg.SensorWidth, cfg.SensorHeight)
	if err != nil {
		return err
	}
	region, err := htm.NewRegion(cfg.Region)
	if err != nil {
		return err
	}

	fieldX, shiftX := htm.ReceptiveField(cfg.SensorWidth, cfg.Region.XLen, cfg.Connect.OverlapX)
	fieldY, shiftY := htm.ReceptiveField(cfg.SensorHeight, cfg.Region.YLen, cfg.Connect.OverlapY)
	fmt.Fprintf(out, "sensor layer %vx%v, region %vx%v\n", cfg.SensorWidth, cfg.SensorHeight, cfg.Region.XLen, cfg.Region.YLen)
	fmt.Fprintf(out, "x: field length %v shift %v\n", fieldX, shiftX)
	fmt.Fprintf(out, "y: field length %v shift %v\n", fieldY, shiftY)

	connect := htm.NewRectangleConnect(cfg.Connect)
	corners := [][2]int{{0, 0}, {cfg.Region.XLen - 1, cfg.Region.YLen - 1}}
	for _, c := range corners {
		rect, err := connect.Rectangle(layer, region, cfg.Connect.OverlapX, cfg.Connect.OverlapY, c[0], c[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "column %v,%v: x [%v,%v) y [%v,%v)\n", c[0], c[1], rect.XStart, rect.XEnd, rect.YStart, rect.YEnd)
	}
	return nil
}
