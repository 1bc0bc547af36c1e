//
// Code related to temporal pooler stats
//

package htm

import (
	"bytes"
	"fmt"

	"github.com/cznic/mathutil"
	"github.com/gonum/floats"
	"github.com/skelterjohn/go.matrix"
)

/*
TpStats measures how well the columns predicted at t-1 match the columns
that became active at t. Scores are only accumulated once more than BurnIn
timesteps have been computed since the last reset, so the first elements of
a sequence, which can not be predicted, may be excluded.
*/
type TpStats struct {
	BurnIn int

	NInfersSinceReset int
	NPredictions      int
	TotalMissing      float64
	TotalExtra        float64
	PctMissingTotal   float64
	PctExtraTotal     float64

	CurPredictionScore float64
	CurMissing         float64
	CurExtra           float64

	//Prediction score of every accumulated timestep
	Scores []float64
	//1 x numColumns count of correctly predicted activations per column
	ColumnHits *matrix.DenseMatrix
}

/*
 Updates the stats for one timestep. predicted holds the columns predicted
on the previous timestep, active the columns active now, both ascending.
The prediction score is the fraction of active columns that were predicted.
*/
func (s *TpStats) update(predicted, active []int, numColumns int) {
	s.NInfersSinceReset++

	hits, missing, extra := compareColumns(predicted, active)
	numExpected := mathutil.Max(1, len(active))

	s.CurPredictionScore = float64(len(hits)) / float64(numExpected)
	s.CurMissing = float64(missing)
	s.CurExtra = float64(extra)

	if s.NInfersSinceReset <= s.BurnIn {
		return
	}

	s.NPredictions++
	s.TotalMissing += float64(missing)
	s.TotalExtra += float64(extra)
	s.PctMissingTotal += 100.0 * float64(missing) / float64(numExpected)
	s.PctExtraTotal += 100.0 * float64(extra) / float64(numExpected)
	s.Scores = append(s.Scores, s.CurPredictionScore)

	if s.ColumnHits == nil || s.ColumnHits.Cols() != numColumns {
		s.ColumnHits = matrix.Zeros(1, numColumns)
	}
	for _, c := range hits {
		s.ColumnHits.Set(0, c, s.ColumnHits.Get(0, c)+1)
	}
}

//Clears the per sequence counters, accumulated totals are kept
func (s *TpStats) resetCurrent() {
	s.NInfersSinceReset = 0
	s.CurPredictionScore = 0
	s.CurMissing = 0
	s.CurExtra = 0
}

//Sum of the accumulated prediction scores
func (s *TpStats) PredictionScoreTotal() float64 {
	return floats.Sum(s.Scores)
}

//Mean accumulated prediction score, 0 before the first prediction
func (s *TpStats) AveragePredictionScore() float64 {
	if len(s.Scores) == 0 {
		return 0
	}
	return floats.Sum(s.Scores) / float64(len(s.Scores))
}

//Correct predictions of column c, 0 when nothing was accumulated
func (s *TpStats) ColumnHitCount(c int) int {
	if s.ColumnHits == nil || c < 0 || c >= s.ColumnHits.Cols() {
		return 0
	}
	return int(s.ColumnHits.Get(0, c))
}

func (s *TpStats) String() string {
	var buf bytes.Buffer
	buf.WriteString("Stats:\n")
	fmt.Fprintf(&buf, "nInferSinceReset %v\n", s.NInfersSinceReset)
	fmt.Fprintf(&buf, "nPredictions %v\n", s.NPredictions)
	fmt.Fprintf(&buf, "PredictionScoreTotal %v\n", s.PredictionScoreTotal())
	fmt.Fprintf(&buf, "AveragePredictionScore %v\n", s.AveragePredictionScore())
	fmt.Fprintf(&buf, "PctExtraTotal %v\n", s.PctExtraTotal)
	fmt.Fprintf(&buf, "PctMissingTotal %v\n", s.PctMissingTotal)
	fmt.Fprintf(&buf, "TotalMissing %v\n", s.TotalMissing)
	fmt.Fprintf(&buf, "TotalExtra %v\n", s.TotalExtra)
	fmt.Fprintf(&buf, "CurPredictionScore %v\n", s.CurPredictionScore)
	fmt.Fprintf(&buf, "CurMissing %v\n", s.CurMissing)
	fmt.Fprintf(&buf, "CurExtra %v\n", s.CurExtra)
	return buf.String()
}

/*
 Compares two ascending column lists. Returns the columns present in both,
the number of active columns that were not predicted and the number of
predicted columns that did not become active.
*/
func compareColumns(predicted, active []int) (hits []int, missing int, extra int) {
	p, a := 0, 0
	for p < len(predicted) && a < len(active) {
		switch {
		case predicted[p] == active[a]:
			hits = append(hits, active[a])
			p++
			a++
		case predicted[p] < active[a]:
			extra++
			p++
		default:
			missing++
			a++
		}
	}
	extra += len(predicted) - p
	missing += len(active) - a
	return
}
