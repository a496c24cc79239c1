package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/EricSchles/pfas-cancer-project/internal/model"
	"github.com/EricSchles/pfas-cancer-project/internal/pipeline"
)

// Report is a markdown-friendly statistical look at a state-level summary.
type Report struct {
	Name     string
	Rows     int
	Cols     []ColumnSummary
	Corr     []Correlation
	KS       *KSResult
	Fit      *FitSummary
	Warnings []string
}

// ColumnSummary holds descriptive statistics for one numeric column.
type ColumnSummary struct {
	Name string
	Min  float64
	Max  float64
	Mean float64
	Std  float64
}

// Correlation relates one feature to the target. NaN means undefined
// (fewer than two rows or a constant column).
type Correlation struct {
	Feature  string
	Target   string
	Pearson  float64
	Spearman float64
}

// KSResult is the two-sample Kolmogorov-Smirnov distance between columns A and B.
type KSResult struct {
	A, B string
	D    float64
}

// FitSummary is the model section of the report.
type FitSummary struct {
	MAE         float64
	MSE         float64
	Importances map[string]float64
	Linear      *model.Linear
}

// Analyze computes descriptive statistics, feature/target correlations and a
// KS comparison of the NPDES and non-NPDES count distributions.
func Analyze(name string, s *pipeline.Summary) (*Report, error) {
	rep := &Report{Name: name, Rows: len(s.Rows)}
	cols := map[string][]float64{}
	for _, c := range s.Header()[1:] {
		vals, err := s.Column(c)
		if err != nil {
			return nil, err
		}
		cols[c] = vals
		if len(vals) == 0 {
			continue
		}
		mean, std := stat.MeanStdDev(vals, nil)
		if len(vals) < 2 {
			std = 0
		}
		rep.Cols = append(rep.Cols, ColumnSummary{
			Name: c,
			Min:  floats.Min(vals),
			Max:  floats.Max(vals),
			Mean: mean,
			Std:  std,
		})
	}
	if rep.Rows < 2 {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("only %d joined state(s); correlations are undefined", rep.Rows))
		return rep, nil
	}

	target := cols[pipeline.RateColumn]
	for _, f := range []string{pipeline.NPDESCountColumn, pipeline.NoNPDESCountColumn, pipeline.CountColumn} {
		rep.Corr = append(rep.Corr, Correlation{
			Feature:  f,
			Target:   pipeline.RateColumn,
			Pearson:  pearson(cols[f], target),
			Spearman: spearman(cols[f], target),
		})
	}
	rep.KS = &KSResult{
		A: pipeline.NPDESCountColumn,
		B: pipeline.NoNPDESCountColumn,
		D: ksDistance(cols[pipeline.NPDESCountColumn], cols[pipeline.NoNPDESCountColumn]),
	}
	return rep, nil
}

// AttachFit adds a model fit section.
func (r *Report) AttachFit(res *model.Result) {
	if res == nil {
		return
	}
	r.Fit = &FitSummary{MAE: res.MAE, MSE: res.MSE, Importances: res.Importances, Linear: res.Linear}
}

func pearson(x, y []float64) float64 {
	if len(x) < 2 || isConstant(x) || isConstant(y) {
		return math.NaN()
	}
	r := stat.Correlation(x, y, nil)
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r
}

func spearman(x, y []float64) float64 {
	return pearson(ranks(x), ranks(y))
}

// ranks assigns 1-based ranks, averaging over ties.
func ranks(v []float64) []float64 {
	idx := make([]int, len(v))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return v[idx[a]] < v[idx[b]] })
	out := make([]float64, len(v))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && v[idx[j+1]] == v[idx[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			out[idx[k]] = avg
		}
		i = j + 1
	}
	return out
}

func ksDistance(a, b []float64) float64 {
	x := append([]float64(nil), a...)
	y := append([]float64(nil), b...)
	sort.Float64s(x)
	sort.Float64s(y)
	return stat.KolmogorovSmirnov(x, nil, y, nil)
}

func isConstant(v []float64) bool {
	for _, x := range v[1:] {
		if x != v[0] {
			return false
		}
	}
	return true
}

// Markdown renders the report in the same sectioned layout as the CLI's other outputs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[STATE SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("States: %d\n", r.Rows))

	if len(r.Cols) > 0 {
		b.WriteString("\n[COLUMNS]\n")
		for _, c := range r.Cols {
			b.WriteString(fmt.Sprintf("- %s: min %.4g, max %.4g, mean %.4g, std %.4g\n", c.Name, c.Min, c.Max, c.Mean, c.Std))
		}
	}
	if len(r.Corr) > 0 {
		b.WriteString("\n[CORRELATIONS]\n")
		for _, c := range r.Corr {
			b.WriteString(fmt.Sprintf("- %s ~ %s: pearson %s, spearman %s\n", c.Feature, c.Target, fmtR(c.Pearson), fmtR(c.Spearman)))
		}
	}
	if r.KS != nil {
		b.WriteString("\n[DISTRIBUTIONS]\n")
		b.WriteString(fmt.Sprintf("- KS(%s, %s): D=%.3f\n", r.KS.A, r.KS.B, r.KS.D))
	}
	if r.Fit != nil {
		b.WriteString("\n[MODEL FIT]\n")
		b.WriteString(fmt.Sprintf("- in-sample MAE: %.4g\n", r.Fit.MAE))
		b.WriteString(fmt.Sprintf("- in-sample MSE: %.4g\n", r.Fit.MSE))
		keys := make([]string, 0, len(r.Fit.Importances))
		for k := range r.Fit.Importances {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString(fmt.Sprintf("  • importance %s: %.3f\n", k, r.Fit.Importances[k]))
		}
		if l := r.Fit.Linear; l != nil {
			b.WriteString(fmt.Sprintf("- OLS: intercept %.4g, R²=%.3f\n", l.Intercept, l.R2))
			ck := make([]string, 0, len(l.Coef))
			for k := range l.Coef {
				ck = append(ck, k)
			}
			sort.Strings(ck)
			for _, k := range ck {
				b.WriteString(fmt.Sprintf("  • coef %s: %.4g\n", k, l.Coef[k]))
			}
		}
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func fmtR(r float64) string {
	if math.IsNaN(r) {
		return "n/a"
	}
	return fmt.Sprintf("r=%.3f", r)
}
