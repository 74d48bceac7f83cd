package histogram_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lost-woods/variates/src/dist"
	"github.com/lost-woods/variates/src/histogram"
	"github.com/lost-woods/variates/src/sampler"
)

func checkInvariants(t *testing.T, h *histogram.Histogram, n int) {
	t.Helper()
	require.Len(t, h.Edges, h.K+1)
	require.Len(t, h.Bins, h.K)

	sum, prevCum := 0, 0
	for j, b := range h.Bins {
		assert.Equal(t, j+1, b.Index)
		assert.Equal(t, h.Edges[j], b.Lower)
		assert.Equal(t, h.Edges[j+1], b.Upper)
		assert.Less(t, h.Edges[j], h.Edges[j+1])
		assert.GreaterOrEqual(t, b.Cum, prevCum)
		sum += b.Freq
		assert.Equal(t, sum, b.Cum)
		assert.InDelta(t, float64(b.Freq)/float64(n), b.Rel, 1e-12)
		prevCum = b.Cum
	}
	assert.Equal(t, n, sum)
	assert.Equal(t, n, h.Total)
	assert.InDelta(t, 1.0, h.Bins[h.K-1].CumRel, 1e-9)
}

func TestBuild_ExponentialScenario(t *testing.T) {
	req := sampler.Request{Dist: dist.NewExponential(2), N: 1000, Seed: 2024}
	h, err := histogram.Build(req, 10)
	require.NoError(t, err)

	assert.Equal(t, 10, h.K)
	assert.Equal(t, 0.0, h.Edges[0])
	assert.Equal(t, h.Summary.Max, h.Edges[10])
	checkInvariants(t, h, 1000)
	assert.InDelta(t, 2.0, h.Summary.Mean, 0.3)
}

func TestBuild_UniformUsesSupport(t *testing.T) {
	req := sampler.Request{Dist: dist.NewUniform(5, 15), N: 5000, Seed: 11}
	h, err := histogram.Build(req, 5)
	require.NoError(t, err)

	assert.Equal(t, []float64{5, 7, 9, 11, 13, 15}, h.Edges)
	checkInvariants(t, h, 5000)
	for _, b := range h.Bins {
		assert.InDelta(t, 1000, b.Freq, 150, "bin %d", b.Index)
	}
	assert.Equal(t, "[5.0000, 7.0000)", h.Bins[0].Label)
	assert.Equal(t, "[13.0000, 15.0000]", h.Bins[4].Label)
}

func TestBuild_NormalUsesObservedExtremes(t *testing.T) {
	req := sampler.Request{Dist: dist.NewNormal(0, 1), N: 3000, Seed: 4}
	for _, k := range histogram.AllowedK {
		h, err := histogram.Build(req, k)
		require.NoError(t, err)
		assert.Equal(t, h.Summary.Min, h.Edges[0])
		assert.Equal(t, h.Summary.Max, h.Edges[k])
		checkInvariants(t, h, 3000)
		// the extremes themselves land in the boundary bins
		assert.Positive(t, h.Bins[0].Freq)
		assert.Positive(t, h.Bins[k-1].Freq)
	}
}

func TestFromSample_ClampsIntoBoundaryBins(t *testing.T) {
	// Values outside [A,B] widen the range rather than being dropped.
	h, err := histogram.FromSample(dist.NewUniform(0, 10), []float64{-5, 0, 5, 10, 20}, 5)
	require.NoError(t, err)
	assert.Equal(t, -5.0, h.Edges[0])
	assert.Equal(t, 20.0, h.Edges[5])
	assert.Equal(t, []int{1, 1, 1, 1, 1}, h.Observed())
	checkInvariants(t, h, 5)
}

func TestFromSample_DegenerateRange(t *testing.T) {
	h, err := histogram.FromSample(dist.NewNormal(3, 1), []float64{3, 3, 3}, 4)
	require.NoError(t, err)
	assert.Equal(t, 3.0, h.Edges[0])
	assert.Equal(t, 4.0, h.Edges[4])
	assert.Equal(t, []int{3, 0, 0, 0}, h.Observed())

	h, err = histogram.FromSample(dist.NewExponential(1), []float64{0}, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.5, 1}, h.Edges)
}

func TestFromSample_SingleBin(t *testing.T) {
	h, err := histogram.FromSample(dist.NewUniform(0, 1), []float64{0.1, 0.9, 0.5}, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{3}, h.Observed())
	assert.Equal(t, "[0.0000, 1.0000]", h.Bins[0].Label)
}

func TestBuild_Errors(t *testing.T) {
	req := sampler.Request{Dist: dist.NewUniform(0, 1), N: 10, Seed: 1}

	_, err := histogram.Build(req, 0)
	assert.True(t, errors.Is(err, dist.ErrRange))

	_, err = histogram.Build(sampler.Request{Dist: dist.NewUniform(0, 1), N: 0}, 5)
	assert.True(t, errors.Is(err, dist.ErrRange))

	_, err = histogram.Build(sampler.Request{Dist: dist.NewExponential(-1), N: 10}, 5)
	assert.True(t, errors.Is(err, dist.ErrDomain))

	_, err = histogram.FromSample(dist.NewUniform(0, 1), nil, 5)
	assert.True(t, errors.Is(err, dist.ErrRange))
}

func TestCheckK(t *testing.T) {
	for _, k := range []int{5, 10, 15, 20, 25} {
		assert.NoError(t, histogram.CheckK(k))
	}
	for _, k := range []int{0, 1, 7, 30} {
		assert.True(t, errors.Is(histogram.CheckK(k), dist.ErrRange), "k=%d", k)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	req := sampler.Request{Dist: dist.NewNormal(5, 2), N: 2000, Seed: 99}
	a, err := histogram.Build(req, 15)
	require.NoError(t, err)
	b, err := histogram.Build(req, 15)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
