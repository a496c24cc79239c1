package model

import (
	"errors"
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrNoRows is returned when there is nothing to fit.
	ErrNoRows = errors.New("no rows to fit")
	// ErrShape is returned when feature rows and targets disagree in size.
	ErrShape = errors.New("feature matrix and target shape mismatch")
)

// Params configures gradient boosting with least-squares loss.
type Params struct {
	LearningRate    float64
	Estimators      int
	Subsample       float64
	MaxDepth        int
	MinSamplesSplit int
	Seed            int64

	// Progress, when set, is called after each fitted stage with the number
	// of stages done so far.
	Progress func(done int) `json:"-"`
}

// DefaultParams returns the settings the exploratory analysis was run with.
func DefaultParams() Params {
	return Params{
		LearningRate:    0.0001,
		Estimators:      100000,
		Subsample:       0.8,
		MaxDepth:        4,
		MinSamplesSplit: 2,
		Seed:            0,
	}
}

func (p Params) validate() error {
	switch {
	case p.LearningRate <= 0:
		return fmt.Errorf("learning rate must be > 0, got %g", p.LearningRate)
	case p.Estimators <= 0:
		return fmt.Errorf("estimators must be > 0, got %d", p.Estimators)
	case p.Subsample <= 0 || p.Subsample > 1:
		return fmt.Errorf("subsample must be in (0, 1], got %g", p.Subsample)
	case p.MaxDepth <= 0:
		return fmt.Errorf("max depth must be > 0, got %d", p.MaxDepth)
	case p.MinSamplesSplit < 2:
		return fmt.Errorf("min samples split must be >= 2, got %d", p.MinSamplesSplit)
	}
	return nil
}

// GradientBoosting is a fitted additive ensemble of regression trees.
type GradientBoosting struct {
	Params   Params
	Features []string

	init       float64
	trees      []*regressionTree
	importance []float64
}

// FitGradientBoosting fits an ensemble on row-major x against y.
func FitGradientBoosting(x [][]float64, y []float64, features []string, p Params) (*GradientBoosting, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if len(y) == 0 {
		return nil, ErrNoRows
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: %d rows, %d targets", ErrShape, len(x), len(y))
	}
	for i, row := range x {
		if len(row) != len(features) {
			return nil, fmt.Errorf("%w: row %d has %d features, want %d", ErrShape, i, len(row), len(features))
		}
	}

	n := len(y)
	m := &GradientBoosting{
		Params:   p,
		Features: append([]string(nil), features...),
		init:     stat.Mean(y, nil),
		trees:    make([]*regressionTree, 0, p.Estimators),
	}
	rng := rand.New(rand.NewSource(p.Seed))
	inBag := int(p.Subsample * float64(n))
	if inBag < 1 {
		inBag = 1
	}

	pred := make([]float64, n)
	for i := range pred {
		pred[i] = m.init
	}
	residual := make([]float64, n)
	importanceSum := make([]float64, len(features))
	relevant := 0

	for s := 0; s < p.Estimators; s++ {
		floats.SubTo(residual, y, pred)
		rows := rng.Perm(n)[:inBag]
		t, imp := growTree(x, residual, rows, len(features), p.MaxDepth, p.MinSamplesSplit)
		m.trees = append(m.trees, t)
		if t.splits() > 0 {
			if total := floats.Sum(imp); total > 0 {
				floats.Scale(1/total, imp)
				floats.Add(importanceSum, imp)
				relevant++
			}
		}
		for i := range pred {
			pred[i] += p.LearningRate * t.predict(x[i])
		}
		if p.Progress != nil {
			p.Progress(s + 1)
		}
	}

	m.importance = make([]float64, len(features))
	if relevant > 0 {
		floats.ScaleTo(m.importance, 1/float64(relevant), importanceSum)
		if total := floats.Sum(m.importance); total > 0 {
			floats.Scale(1/total, m.importance)
		}
	}
	return m, nil
}

// Predict returns the ensemble prediction for each row.
func (m *GradientBoosting) Predict(x [][]float64) []float64 {
	out := make([]float64, len(x))
	for i, row := range x {
		v := m.init
		for _, t := range m.trees {
			v += m.Params.LearningRate * t.predict(row)
		}
		out[i] = v
	}
	return out
}

// FeatureImportances maps each feature to its normalized impurity-decrease
// weight. Values are non-negative and sum to 1, or are all zero when no tree
// ever split.
func (m *GradientBoosting) FeatureImportances() map[string]float64 {
	out := make(map[string]float64, len(m.Features))
	for i, f := range m.Features {
		out[f] = m.importance[i]
	}
	return out
}

// Stages returns the number of fitted trees.
func (m *GradientBoosting) Stages() int { return len(m.trees) }
