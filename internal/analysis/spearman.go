// Package analysis computes the rank correlation between unit-test emphasis
// and bug resolution time.
package analysis

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	custom_errors "github-test-metrics/internal/errors"
	"github-test-metrics/internal/model"
)

// MinSamples is the smallest number of paired values a correlation is computed for.
const MinSamples = 2

// Correlation is a Spearman rank correlation with its two-sided p-value and
// the paired values it was computed from.
type Correlation struct {
	Rho float64   `json:"rho"`
	P   float64   `json:"p_value"`
	N   int       `json:"n"`
	X   []float64 `json:"unit_ratio"`
	Y   []float64 `json:"median_bug_resolution_days"`
}

// Complete keeps the records that have both a unit ratio and a median
// resolution time and returns their paired values.
func Complete(ds model.Dataset) (x, y []float64, kept model.Dataset) {
	for _, s := range ds {
		if !s.UnitRatio.Valid || !s.MedianBugResolutionDays.Valid {
			continue
		}
		x = append(x, s.UnitRatio.Value)
		y = append(y, s.MedianBugResolutionDays.Value)
		kept = append(kept, s)
	}
	return x, y, kept
}

// Analyze correlates unit ratio with median resolution time over the complete
// records of ds.
func Analyze(ds model.Dataset) (Correlation, error) {
	x, y, _ := Complete(ds)
	return Spearman(x, y)
}

// Spearman computes Spearman's rho using mid-ranks for ties. The p-value comes
// from Student's t distribution with n-2 degrees of freedom; it is NaN for
// exactly two samples.
func Spearman(x, y []float64) (Correlation, error) {
	if len(x) != len(y) {
		return Correlation{}, fmt.Errorf("paired sequences differ in length: %d and %d", len(x), len(y))
	}
	c := Correlation{N: len(x), X: x, Y: y}
	if c.N < MinSamples {
		return c, &custom_errors.InsufficientDataError{Have: c.N, Need: MinSamples}
	}

	rx, ry := Rank(x), Rank(y)
	if constant(rx) || constant(ry) {
		return c, custom_errors.ErrConstantInput
	}

	rho := stat.Correlation(rx, ry, nil)
	c.Rho = math.Max(-1, math.Min(1, rho))
	c.P = pValue(c.Rho, c.N)
	return c, nil
}

// Rank returns the 1-based rank of every value, averaging the ranks of ties.
func Rank(values []float64) []float64 {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })

	ranks := make([]float64, len(values))
	for i := 0; i < len(idx); {
		j := i + 1
		for j < len(idx) && values[idx[j]] == values[idx[i]] {
			j++
		}
		// positions i..j-1 hold equal values; their ranks are i+1..j
		mid := float64(i+1+j) / 2
		for k := i; k < j; k++ {
			ranks[idx[k]] = mid
		}
		i = j
	}
	return ranks
}

func constant(v []float64) bool {
	for _, x := range v[1:] {
		if x != v[0] {
			return false
		}
	}
	return true
}

func pValue(rho float64, n int) float64 {
	df := float64(n - 2)
	if df <= 0 {
		return math.NaN()
	}
	if math.Abs(rho) == 1 {
		return 0
	}
	t := rho * math.Sqrt(df/((1+rho)*(1-rho)))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return 2 * dist.Survival(math.Abs(t))
}
