package histogram

import (
	"fmt"
	"math"
	"slices"

	"github.com/montanaflynn/stats"

	"github.com/lost-woods/variates/src/dist"
	"github.com/lost-woods/variates/src/sampler"
)

// AllowedK is the set of interval counts offered by the HTTP API.
var AllowedK = []int{5, 10, 15, 20, 25}

// CheckK rejects interval counts outside AllowedK.
func CheckK(k int) error {
	if !slices.Contains(AllowedK, k) {
		return dist.RangeErrorf("k_intervals must be one of %v (k=%d)", AllowedK, k)
	}
	return nil
}

// Bin is one interval of a histogram with its absolute, relative and running counts.
type Bin struct {
	Index  int     `json:"index"`
	Label  string  `json:"label"`
	Lower  float64 `json:"lower"`
	Upper  float64 `json:"upper"`
	Freq   int     `json:"freq"`
	Rel    float64 `json:"rel"`
	Cum    int     `json:"cum"`
	CumRel float64 `json:"cum_rel"`
}

// Summary describes the sample the histogram was built from.
type Summary struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Histogram is the frequency table of a sample over K equal-width intervals.
type Histogram struct {
	K       int       `json:"k"`
	Edges   []float64 `json:"edges"`
	Bins    []Bin     `json:"bins"`
	Total   int       `json:"total"`
	Summary Summary   `json:"summary"`
}

// Observed returns the bin frequencies in order.
func (h *Histogram) Observed() []int {
	out := make([]int, len(h.Bins))
	for i, b := range h.Bins {
		out[i] = b.Freq
	}
	return out
}

// Build generates the full sequence of r and bins it into k intervals. The
// sample only lives for the duration of the call.
func Build(r sampler.Request, k int) (*Histogram, error) {
	if k < 1 {
		return nil, dist.RangeErrorf("k must be >= 1 (k=%d)", k)
	}
	sample, err := sampler.All(r)
	if err != nil {
		return nil, err
	}
	return FromSample(r.Dist, sample, k)
}

// FromSample bins sample into k equal-width intervals. Values outside the
// computed range are clamped into the boundary bins, so Total always equals
// len(sample).
func FromSample(d dist.Distribution, sample []float64, k int) (*Histogram, error) {
	if k < 1 {
		return nil, dist.RangeErrorf("k must be >= 1 (k=%d)", k)
	}
	if len(sample) == 0 {
		return nil, dist.RangeErrorf("cannot build a histogram of an empty sample")
	}

	summary, err := summarize(sample)
	if err != nil {
		return nil, err
	}
	lower, upper := binRange(d, summary.Min, summary.Max)

	edges := make([]float64, k+1)
	width := upper - lower
	for j := range edges {
		edges[j] = lower + float64(j)*width/float64(k)
	}
	edges[k] = upper

	freq := make([]int, k)
	for _, v := range sample {
		freq[binIndex(v, lower, width, k)]++
	}

	n := float64(len(sample))
	bins := make([]Bin, k)
	cum := 0
	for j := range bins {
		cum += freq[j]
		closer := ")"
		if j == k-1 {
			closer = "]"
		}
		bins[j] = Bin{
			Index:  j + 1,
			Label:  fmt.Sprintf("[%.4f, %.4f%s", edges[j], edges[j+1], closer),
			Lower:  edges[j],
			Upper:  edges[j+1],
			Freq:   freq[j],
			Rel:    float64(freq[j]) / n,
			Cum:    cum,
			CumRel: float64(cum) / n,
		}
	}

	return &Histogram{K: k, Edges: edges, Bins: bins, Total: cum, Summary: summary}, nil
}

// binRange picks the binning interval: the finite support where there is one,
// the observed extremes otherwise, widened to cover every observed value.
func binRange(d dist.Distribution, lo, hi float64) (lower, upper float64) {
	lower, upper = lo, hi
	switch d.Kind {
	case dist.Uniform:
		lower = math.Min(d.Params.A, lo)
		upper = math.Max(d.Params.B, hi)
	case dist.Exponential:
		lower = math.Min(0, lo)
	}
	if !(upper > lower) {
		upper = lower + 1
	}
	return lower, upper
}

func binIndex(v, lower, width float64, k int) int {
	j := int(math.Floor((v - lower) / width * float64(k)))
	if j < 0 {
		return 0
	}
	if j > k-1 {
		return k - 1
	}
	return j
}

func summarize(sample []float64) (Summary, error) {
	data := stats.Float64Data(sample)
	var s Summary
	var err error
	if s.Min, err = data.Min(); err != nil {
		return s, err
	}
	if s.Max, err = data.Max(); err != nil {
		return s, err
	}
	if s.Mean, err = data.Mean(); err != nil {
		return s, err
	}
	if s.StdDev, err = data.StandardDeviation(); err != nil {
		return s, err
	}
	return s, nil
}
