package gof_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lost-woods/variates/src/dist"
	"github.com/lost-woods/variates/src/gof"
	"github.com/lost-woods/variates/src/histogram"
	"github.com/lost-woods/variates/src/sampler"
)

func TestCritical_KnownQuantiles(t *testing.T) {
	assert.InDelta(t, 3.841458820694124, gof.Critical(1, 0.05), 1e-6)
	assert.InDelta(t, 6.634896601021214, gof.Critical(1, 0.01), 1e-6)
	assert.InDelta(t, 16.918977604620448, gof.Critical(9, 0.05), 1e-6)
}

func TestTest_HandComputed(t *testing.T) {
	in := gof.Input{
		Dist:     dist.NewUniform(0, 1),
		N:        100,
		Edges:    []float64{0, 0.5, 1},
		Observed: []int{60, 40},
		Alpha:    0.05,
	}
	res, err := gof.Test(in)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, res.Chi2, 1e-9)
	assert.Equal(t, 1, res.DF)
	assert.True(t, res.Reject)
	require.Len(t, res.Rows, 2)
	assert.InDelta(t, 50, res.Rows[0].Expected, 1e-9)
	assert.InDelta(t, 2.0, res.Rows[1].Contrib, 1e-9)
	assert.Equal(t, "[0.5000, 1.0000]", res.Rows[1].Label)
	assert.Empty(t, res.Warning)

	in.Alpha = 0.01
	res, err = gof.Test(in)
	require.NoError(t, err)
	assert.False(t, res.Reject)
}

func TestTest_DegreesOfFreedom(t *testing.T) {
	req := sampler.Request{Dist: dist.NewUniform(0, 1), N: 2000, Seed: 1}
	for _, k := range histogram.AllowedK {
		h, err := histogram.Build(req, k)
		require.NoError(t, err)
		res, err := gof.Test(gof.FromHistogram(req.Dist, h, gof.DefaultAlpha))
		require.NoError(t, err)
		assert.Equal(t, k-1, res.DF)
		assert.GreaterOrEqual(t, res.Chi2, 0.0)
	}

	h, err := histogram.Build(req, 10)
	require.NoError(t, err)
	in := gof.FromHistogram(req.Dist, h, 0.05)
	in.Estimated = 2
	res, err := gof.Test(in)
	require.NoError(t, err)
	assert.Equal(t, 7, res.DF)
}

func TestTest_AcceptsSamplesFromFittedDistribution(t *testing.T) {
	cases := []struct {
		d dist.Distribution
		k int
	}{
		{dist.NewUniform(-2, 8), 10},
		{dist.NewExponential(2), 5},
		{dist.NewNormal(10, 3), 10},
	}
	for _, tc := range cases {
		rejects := 0
		for seed := uint64(1); seed <= 10; seed++ {
			req := sampler.Request{Dist: tc.d, N: 10_000, Seed: seed}
			h, err := histogram.Build(req, tc.k)
			require.NoError(t, err)
			res, err := gof.Test(gof.FromHistogram(tc.d, h, 0.01))
			require.NoError(t, err)
			if res.Reject {
				rejects++
			}
		}
		assert.LessOrEqual(t, rejects, 1, "%v rejected %d of 10 true samples", tc.d.Kind, rejects)
	}
}

func TestTest_RejectsWrongDistribution(t *testing.T) {
	req := sampler.Request{Dist: dist.NewExponential(2), N: 5000, Seed: 3}
	h, err := histogram.Build(req, 10)
	require.NoError(t, err)
	res, err := gof.Test(gof.FromHistogram(dist.NewExponential(1), h, 0.05))
	require.NoError(t, err)
	assert.True(t, res.Reject)
	assert.Greater(t, res.Chi2, res.Critical)

	req = sampler.Request{Dist: dist.NewNormal(0, 1), N: 5000, Seed: 3}
	h, err = histogram.Build(req, 10)
	require.NoError(t, err)
	res, err = gof.Test(gof.FromHistogram(dist.NewNormal(0.5, 1), h, 0.05))
	require.NoError(t, err)
	assert.True(t, res.Reject)
}

func TestTest_ExponentialUsesZeroLowerBound(t *testing.T) {
	// The first edge is moved to 0 and the last to +Inf, so the masses sum to 1.
	res, err := gof.Test(gof.Input{
		Dist:     dist.NewExponential(1),
		N:        100,
		Edges:    []float64{0.5, 1, 2},
		Observed: []int{63, 37},
		Alpha:    0.05,
	})
	require.NoError(t, err)
	total := 0.0
	for _, r := range res.Rows {
		total += r.P
	}
	assert.InDelta(t, 1.0, total, 1e-12)
}

func TestTest_ZeroExpectedBinsAreExcluded(t *testing.T) {
	res, err := gof.Test(gof.Input{
		Dist:     dist.NewUniform(0, 1),
		N:        10,
		Edges:    []float64{0, 0.5, 1, 2},
		Observed: []int{5, 5, 0},
		Alpha:    0.05,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.DF)
	assert.True(t, res.Rows[2].Excluded)
	assert.Zero(t, res.Chi2)
	assert.False(t, res.Reject)
	assert.NotEmpty(t, res.Warning)

	_, err = gof.Test(gof.Input{
		Dist:     dist.NewUniform(0, 1),
		N:        10,
		Edges:    []float64{0, 1, 2, 3},
		Observed: []int{10, 0, 0},
		Alpha:    0.05,
	})
	assert.True(t, errors.Is(err, dist.ErrRange))
}

func TestTest_InputErrors(t *testing.T) {
	base := func() gof.Input {
		return gof.Input{
			Dist:     dist.NewNormal(0, 1),
			N:        30,
			Edges:    []float64{-1, 0, 1, 2},
			Observed: []int{10, 10, 10},
			Alpha:    0.05,
		}
	}
	cases := []struct {
		name   string
		mutate func(*gof.Input)
		class  error
	}{
		{"edges length", func(in *gof.Input) { in.Edges = in.Edges[:3] }, dist.ErrConsistency},
		{"unsorted edges", func(in *gof.Input) { in.Edges[2] = -3 }, dist.ErrConsistency},
		{"negative count", func(in *gof.Input) { in.Observed[1] = -1 }, dist.ErrConsistency},
		{"one bin", func(in *gof.Input) { in.Edges = []float64{0, 1}; in.Observed = []int{30} }, dist.ErrRange},
		{"alpha zero", func(in *gof.Input) { in.Alpha = 0 }, dist.ErrRange},
		{"alpha one", func(in *gof.Input) { in.Alpha = 1 }, dist.ErrRange},
		{"n zero", func(in *gof.Input) { in.N = 0 }, dist.ErrRange},
		{"estimated negative", func(in *gof.Input) { in.Estimated = -1 }, dist.ErrRange},
		{"bad sigma", func(in *gof.Input) { in.Dist = dist.NewNormal(0, 0) }, dist.ErrDomain},
	}
	for _, tc := range cases {
		in := base()
		tc.mutate(&in)
		_, err := gof.Test(in)
		require.Error(t, err, tc.name)
		assert.True(t, errors.Is(err, tc.class), "%s: %v", tc.name, err)
	}
}

func TestTest_Hypotheses(t *testing.T) {
	res, err := gof.Test(gof.Input{
		Dist:     dist.NewNormal(1, 2),
		N:        40,
		Edges:    []float64{-3, 1, 5},
		Observed: []int{20, 20},
		Alpha:    0.05,
	})
	require.NoError(t, err)
	assert.Contains(t, res.H0, "Normal(μ=1.0000, σ=2.0000)")
	assert.Contains(t, res.H1, "does not follow")
	assert.Zero(t, res.Chi2)
}
