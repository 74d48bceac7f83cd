// Package gof runs Pearson's chi-square goodness-of-fit test of binned
// observations against a fully specified distribution.
//
// Degrees of freedom are (bins with positive expected count) - 1 - Estimated.
// Parameters handed to the test are normally supplied by the caller rather
// than fitted to the data, so Estimated defaults to zero. Bins whose expected
// count is zero are left out of the statistic and cost one degree of freedom
// each.
package gof

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/lost-woods/variates/src/dist"
	"github.com/lost-woods/variates/src/histogram"
)

// DefaultAlpha is used when the caller does not choose a significance level.
const DefaultAlpha = 0.05

// SmallExpected is the expected count under which the chi-square
// approximation is considered unreliable.
const SmallExpected = 5.0

// Input is a binned sample and the distribution it is tested against.
type Input struct {
	Dist      dist.Distribution
	N         int
	Edges     []float64
	Observed  []int
	Alpha     float64
	Estimated int
}

// Row is the per-interval breakdown of the statistic.
type Row struct {
	Index    int     `json:"index"`
	Label    string  `json:"label"`
	P        float64 `json:"p"`
	Expected float64 `json:"expected"`
	Observed int     `json:"observed"`
	Contrib  float64 `json:"contrib"`
	Excluded bool    `json:"excluded,omitempty"`
}

// Result holds the statistic, its critical value and the decision at Alpha.
type Result struct {
	Chi2     float64 `json:"chi2"`
	DF       int     `json:"df"`
	Critical float64 `json:"critical"`
	Reject   bool    `json:"reject"`
	Alpha    float64 `json:"alpha"`
	H0       string  `json:"H0"`
	H1       string  `json:"H1"`
	Warning  string  `json:"warning,omitempty"`
	Rows     []Row   `json:"rows"`
}

// FromHistogram prepares an Input that tests h against d.
func FromHistogram(d dist.Distribution, h *histogram.Histogram, alpha float64) Input {
	return Input{
		Dist:     d,
		N:        h.Total,
		Edges:    h.Edges,
		Observed: h.Observed(),
		Alpha:    alpha,
	}
}

func (in Input) validate() error {
	k := len(in.Observed)
	if len(in.Edges) != k+1 {
		return dist.ConsistencyErrorf("edges must have len(observed)+1 elements (edges=%d, observed=%d)", len(in.Edges), k)
	}
	if k < 2 {
		return dist.RangeErrorf("at least 2 intervals are required (k=%d)", k)
	}
	if !(in.Alpha > 0 && in.Alpha < 1) {
		return dist.RangeErrorf("alpha must be in (0,1) (alpha=%v)", in.Alpha)
	}
	if in.N < 1 {
		return dist.RangeErrorf("n must be >= 1 (n=%d)", in.N)
	}
	if in.Estimated < 0 {
		return dist.RangeErrorf("estimated parameter count must be >= 0 (estimated=%d)", in.Estimated)
	}
	for i, e := range in.Edges {
		if math.IsNaN(e) || math.IsInf(e, 0) {
			return dist.ConsistencyErrorf("edge %d is not finite", i)
		}
		if i > 0 && !(e > in.Edges[i-1]) {
			return dist.ConsistencyErrorf("edges must be strictly increasing (edge %d: %v <= %v)", i, e, in.Edges[i-1])
		}
	}
	for i, o := range in.Observed {
		if o < 0 {
			return dist.ConsistencyErrorf("observed count %d is negative (%d)", i, o)
		}
	}
	return in.Dist.Validate()
}

// Test computes the chi-square statistic of in and compares it with the
// (1-alpha) quantile of the chi-square distribution.
func Test(in Input) (*Result, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	k := len(in.Observed)
	// The outer bins extend to the support bounds so the masses cover every
	// value the histogram clamped into them.
	lo, hi := in.Dist.Support()

	res := &Result{Alpha: in.Alpha, Rows: make([]Row, k)}
	included, small := 0, false
	for i := 0; i < k; i++ {
		a, b := in.Edges[i], in.Edges[i+1]
		if i == 0 {
			a = lo
		}
		if i == k-1 {
			b = hi
		}
		p := math.Max(0, math.Min(1, in.Dist.CDF(b)-in.Dist.CDF(a)))
		expected := float64(in.N) * p
		o := in.Observed[i]

		closer := ")"
		if i == k-1 {
			closer = "]"
		}
		row := Row{
			Index:    i + 1,
			Label:    fmt.Sprintf("[%.4f, %.4f%s", in.Edges[i], in.Edges[i+1], closer),
			P:        p,
			Expected: expected,
			Observed: o,
		}
		if expected > 0 {
			d := float64(o) - expected
			row.Contrib = d * d / expected
			res.Chi2 += row.Contrib
			included++
		} else {
			row.Excluded = true
		}
		if expected < SmallExpected {
			small = true
		}
		res.Rows[i] = row
	}

	res.DF = included - 1 - in.Estimated
	if res.DF < 1 {
		return nil, dist.RangeErrorf("not enough intervals with positive expected frequency for the test (df=%d)", res.DF)
	}
	res.Critical = Critical(res.DF, in.Alpha)
	res.Reject = res.Chi2 > res.Critical

	res.H0 = "sample ~ " + in.Dist.Describe()
	res.H1 = "sample does not follow " + in.Dist.Describe()
	if small {
		res.Warning = fmt.Sprintf("some intervals have expected frequency < %.0f; consider merging intervals", SmallExpected)
	}
	return res, nil
}

// Critical returns the chi-square quantile at 1-alpha with df degrees of freedom.
func Critical(df int, alpha float64) float64 {
	return distuv.ChiSquared{K: float64(df)}.Quantile(1 - alpha)
}
