package htm

import (
	"fmt"

	"github.com/cznic/mathutil"
	"github.com/htm-community/cla/utils"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

/*
(n = half the number of average input columns on)
"zeroth" - predict the n most common columns learned from the input
"last" - predict the last input
"all" - predict all columns
"lots" - predict the 2n most common columns learned from the input

Trivial predictors give a baseline prediction score to compare a temporal
pooler's TpStats against.
*/
type PredictorMethod int

const (
	Zeroth PredictorMethod = 2
	Last   PredictorMethod = 3
	All    PredictorMethod = 4
	Lots   PredictorMethod = 5
)

func (m PredictorMethod) String() string {
	switch m {
	case Zeroth:
		return "zeroth"
	case Last:
		return "last"
	case All:
		return "all"
	case Lots:
		return "lots"
	default:
		return fmt.Sprintf("method(%d)", int(m))
	}
}

type TrivialPredictor struct {
	NumColumns int
	Methods    []PredictorMethod
	Stats      map[PredictorMethod]*TpStats
	//Number of times each column has been active during learning
	ColumnCount []int
	//Running average of input density
	AverageDensity float64
	Logger         zerolog.Logger

	predicted map[PredictorMethod][]int
}

func NewTrivialPredictor(numColumns int, methods []PredictorMethod) (*TrivialPredictor, error) {
	if numColumns <= 0 {
		return nil, fmt.Errorf("%w: number of columns %v must be positive", ErrInvalidArgument, numColumns)
	}

	tp := &TrivialPredictor{
		NumColumns:     numColumns,
		Methods:        methods,
		Stats:          make(map[PredictorMethod]*TpStats, len(methods)),
		ColumnCount:    make([]int, numColumns),
		AverageDensity: 0.05,
		Logger:         log.With().Str("component", "trivial_predictor").Logger(),
		predicted:      make(map[PredictorMethod][]int, len(methods)),
	}

	for _, method := range methods {
		switch method {
		case Zeroth, Last, All, Lots:
		default:
			return nil, fmt.Errorf("%w: unknown prediction method %v", ErrInvalidArgument, method)
		}
		tp.Stats[method] = new(TpStats)
	}

	return tp, nil
}

/*
 Scores the previous predictions of every method against activeColumns,
then predicts the next timestep.
*/
func (tp *TrivialPredictor) Infer(activeColumns []int) error {
	cols, err := normalizeColumns(activeColumns, tp.NumColumns)
	if err != nil {
		return err
	}

	numColsToPredict := int(0.5 + tp.AverageDensity*float64(tp.NumColumns))

	for _, method := range tp.Methods {
		tp.Stats[method].update(tp.predicted[method], cols, tp.NumColumns)

		var predictedCols []int
		switch method {
		case Zeroth:
			// Always predict the top N most frequent columns
			predictedCols = tp.mostFrequent(numColsToPredict)
		case Last:
			// Always predict the last input
			predictedCols = append(predictedCols, cols...)
		case All:
			// Always predict all columns
			predictedCols = make([]int, tp.NumColumns)
			for i := range predictedCols {
				predictedCols[i] = i
			}
		case Lots:
			// Always predict 2 * the top N most frequent columns
			predictedCols = tp.mostFrequent(mathutil.Min(2*numColsToPredict, tp.NumColumns))
		}
		tp.predicted[method] = predictedCols

		tp.Logger.Trace().
			Stringer("method", method).
			Int("num_cols_to_predict", numColsToPredict).
			Ints("predicted", predictedCols).
			Msg("trivial prediction")
	}

	return nil
}

/*
 Do one iteration of learning: updates the input density and column
counts, then infers.
*/
func (tp *TrivialPredictor) Learn(activeColumns []int) error {
	cols, err := normalizeColumns(activeColumns, tp.NumColumns)
	if err != nil {
		return err
	}

	// Running average of bottom up density
	density := float64(len(cols)) / float64(tp.NumColumns)
	tp.AverageDensity = 0.95*tp.AverageDensity + 0.05*density

	for _, c := range cols {
		tp.ColumnCount[c]++
	}

	return tp.Infer(cols)
}

//Columns predicted by method for the next timestep, ascending
func (tp *TrivialPredictor) Predicted(method PredictorMethod) []int {
	return append([]int(nil), tp.predicted[method]...)
}

/*
Reset the prediction state of all methods. This is normally used between
sequences. Column counts and accumulated stats are kept.
*/
func (tp *TrivialPredictor) Reset() {
	for _, method := range tp.Methods {
		delete(tp.predicted, method)
		tp.Stats[method].resetCurrent()
	}
}

//Drops the accumulated stats of every method as well as the state
func (tp *TrivialPredictor) ResetStats() {
	tp.Reset()
	for _, method := range tp.Methods {
		tp.Stats[method] = new(TpStats)
	}
}

//The n columns with the highest count, ties go to the lower index. Ascending.
func (tp *TrivialPredictor) mostFrequent(n int) []int {
	return utils.TopIndices(tp.ColumnCount, n)
}
