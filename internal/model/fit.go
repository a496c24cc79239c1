package model

import (
	"math"

	"github.com/EricSchles/pfas-cancer-project/internal/pipeline"
)

// Features are the summary columns used as regressors, in matrix order.
var Features = []string{pipeline.NPDESCountColumn, pipeline.CountColumn}

// Result is the outcome of fitting the state-level summary. Errors are
// in-sample: there is no held-out data.
type Result struct {
	Model       *GradientBoosting
	Predictions []float64
	MAE         float64
	MSE         float64
	Importances map[string]float64
	// Linear is nil when the OLS baseline could not be solved.
	Linear *Linear
}

// FitSummary regresses the rescaled Rate on npdes_count and count.
func FitSummary(s *pipeline.Summary, p Params) (*Result, error) {
	if s == nil || len(s.Rows) == 0 {
		return nil, ErrNoRows
	}
	x, y := Design(s)
	gbm, err := FitGradientBoosting(x, y, Features, p)
	if err != nil {
		return nil, err
	}
	pred := gbm.Predict(x)
	res := &Result{
		Model:       gbm,
		Predictions: pred,
		MAE:         MeanAbsoluteError(y, pred),
		MSE:         MeanSquaredError(y, pred),
		Importances: gbm.FeatureImportances(),
	}
	if lin, err := FitLinear(x, y, Features); err == nil {
		res.Linear = lin
	}
	return res, nil
}

// Design builds the feature matrix and target vector from a summary.
func Design(s *pipeline.Summary) ([][]float64, []float64) {
	x := make([][]float64, len(s.Rows))
	y := make([]float64, len(s.Rows))
	for i, r := range s.Rows {
		x[i] = []float64{float64(r.NPDESCount), float64(r.Count)}
		y[i] = r.Rate
	}
	return x, y
}

// MeanAbsoluteError averages |y - pred|.
func MeanAbsoluteError(y, pred []float64) float64 {
	if len(y) == 0 {
		return 0
	}
	var sum float64
	for i := range y {
		sum += math.Abs(y[i] - pred[i])
	}
	return sum / float64(len(y))
}

// MeanSquaredError averages (y - pred)^2.
func MeanSquaredError(y, pred []float64) float64 {
	if len(y) == 0 {
		return 0
	}
	var sum float64
	for i := range y {
		d := y[i] - pred[i]
		sum += d * d
	}
	return sum / float64(len(y))
}
