package model

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Linear is an ordinary least squares fit with an intercept.
type Linear struct {
	Intercept float64
	Coef      map[string]float64
	R2        float64
}

// FitLinear solves the least squares problem for y ~ 1 + x.
func FitLinear(x [][]float64, y []float64, features []string) (*Linear, error) {
	n, k := len(y), len(features)
	if n == 0 {
		return nil, ErrNoRows
	}
	if len(x) != n {
		return nil, fmt.Errorf("%w: %d rows, %d targets", ErrShape, len(x), n)
	}
	if n < k+1 {
		return nil, fmt.Errorf("ols needs at least %d rows, got %d", k+1, n)
	}
	design := mat.NewDense(n, k+1, nil)
	for i, row := range x {
		design.Set(i, 0, 1)
		for j := 0; j < k; j++ {
			design.Set(i, j+1, row[j])
		}
	}
	var beta mat.VecDense
	if err := beta.SolveVec(design, mat.NewVecDense(n, append([]float64(nil), y...))); err != nil {
		return nil, fmt.Errorf("solve ols: %w", err)
	}
	l := &Linear{Intercept: beta.AtVec(0), Coef: make(map[string]float64, k)}
	for j, f := range features {
		l.Coef[f] = beta.AtVec(j + 1)
	}

	var fitted mat.VecDense
	fitted.MulVec(design, &beta)
	mean := stat.Mean(y, nil)
	var ssRes, ssTot float64
	for i, v := range y {
		r := v - fitted.AtVec(i)
		ssRes += r * r
		d := v - mean
		ssTot += d * d
	}
	if ssTot > 0 {
		l.R2 = 1 - ssRes/ssTot
	}
	return l, nil
}
