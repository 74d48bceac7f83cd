package sampler_test

import (
	"math"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lost-woods/variates/src/dist"
	"github.com/lost-woods/variates/src/sampler"
	"github.com/lost-woods/variates/src/stream"
)

var dists = []dist.Distribution{
	dist.NewUniform(0, 1),
	dist.NewUniform(-50, 125.5),
	dist.NewExponential(2),
	dist.NewNormal(10, 3),
}

func TestPage_ResumableAtAnyBoundary(t *testing.T) {
	const n = 300
	for _, d := range dists {
		req := sampler.Request{Dist: d, N: n, Seed: 8675309}
		full, err := sampler.Page(req, 0, n)
		require.NoError(t, err)
		require.Len(t, full, n)

		for _, m := range []int{0, 1, 2, 7, 8, 150, 299, 300} {
			head, err := sampler.Page(req, 0, m+1)
			require.NoError(t, err)
			head = head[:m]
			tail, err := sampler.Page(req, m, n-m+1)
			require.NoError(t, err)
			require.Equal(t, full, append(append([]float64{}, head...), tail...), "%v m=%d", d.Kind, m)
		}
	}
}

func TestPage_UniformScenario(t *testing.T) {
	req := sampler.Request{Dist: dist.NewUniform(0, 1), N: 4, Seed: 31337}

	all, err := sampler.Page(req, 0, 4)
	require.NoError(t, err)
	require.Len(t, all, 4)
	for _, v := range all {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}

	last, err := sampler.Page(req, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, all[2:], last)
}

func TestPage_ClipsToN(t *testing.T) {
	req := sampler.Request{Dist: dist.NewExponential(1), N: 10, Seed: 1}

	past, err := sampler.Page(req, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, past)

	past, err = sampler.Page(req, 1000, 1)
	require.NoError(t, err)
	assert.Empty(t, past)

	tail, err := sampler.Page(req, 7, 100)
	require.NoError(t, err)
	assert.Len(t, tail, 3)
}

func TestPage_RangeErrors(t *testing.T) {
	d := dist.NewUniform(0, 1)
	cases := []struct {
		n, skip, limit int
	}{
		{0, 0, 1},
		{sampler.MaxN + 1, 0, 1},
		{-4, 0, 1},
		{10, -1, 1},
		{10, 0, 0},
	}
	for _, tc := range cases {
		_, err := sampler.Page(sampler.Request{Dist: d, N: tc.n}, tc.skip, tc.limit)
		require.Error(t, err, "%+v", tc)
		assert.True(t, errors.Is(err, dist.ErrRange), "%+v: %v", tc, err)
	}
}

func TestPage_DomainErrors(t *testing.T) {
	_, err := sampler.Page(sampler.Request{Dist: dist.NewNormal(0, 0), N: 5}, 0, 5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, dist.ErrDomain))
}

func TestPage_NormalConsumesTwoDrawsPerValue(t *testing.T) {
	d := dist.NewNormal(0, 1)
	req := sampler.Request{Dist: d, N: 20, Seed: 5}
	page, err := sampler.Page(req, 5, 10)
	require.NoError(t, err)
	for k, v := range page {
		i := uint64(5 + k)
		assert.Equal(t, d.Value(stream.Draw(5, 2*i), stream.Draw(5, 2*i+1)), v)
	}
}

func TestPage_SupportBounds(t *testing.T) {
	u, err := sampler.Page(sampler.Request{Dist: dist.NewUniform(-3, 4), N: 20_000, Seed: 9}, 0, 20_000)
	require.NoError(t, err)
	for _, v := range u {
		require.True(t, v >= -3 && v <= 4, "uniform value %v out of [A,B]", v)
	}

	e, err := sampler.Page(sampler.Request{Dist: dist.NewExponential(0.3), N: 20_000, Seed: 9}, 0, 20_000)
	require.NoError(t, err)
	for _, v := range e {
		require.GreaterOrEqual(t, v, 0.0)
	}
}

func TestPage_ExponentialMeanConverges(t *testing.T) {
	const n = 200_000
	var sum float64
	err := sampler.Each(sampler.Request{Dist: dist.NewExponential(2), N: n, Seed: 77}, func(_ int, v float64) error {
		sum += v
		return nil
	})
	require.NoError(t, err)
	assert.InDelta(t, 2.0, sum/n, 0.05)
}

func TestPage_NormalMoments(t *testing.T) {
	const n = 200_000
	var sum, sq float64
	err := sampler.Each(sampler.Request{Dist: dist.NewNormal(10, 3), N: n, Seed: 78}, func(_ int, v float64) error {
		sum += v
		sq += v * v
		return nil
	})
	require.NoError(t, err)
	mean := sum / n
	sd := math.Sqrt(sq/n - mean*mean)
	assert.InDelta(t, 10.0, mean, 0.05)
	assert.InDelta(t, 3.0, sd, 0.05)
}

func TestEach_MatchesAllAndStopsOnError(t *testing.T) {
	req := sampler.Request{Dist: dist.NewUniform(1, 2), N: 50, Seed: 3}
	all, err := sampler.All(req)
	require.NoError(t, err)
	require.Len(t, all, 50)

	var got []float64
	require.NoError(t, sampler.Each(req, func(i int, v float64) error {
		assert.Equal(t, len(got), i)
		got = append(got, v)
		return nil
	}))
	assert.Equal(t, all, got)

	stop := errors.New("stop")
	seen := 0
	err = sampler.Each(req, func(i int, _ float64) error {
		seen++
		if i == 9 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 10, seen)
}

func TestPage_SeedChangesSequence(t *testing.T) {
	a, err := sampler.Page(sampler.Request{Dist: dist.NewUniform(0, 1), N: 10, Seed: 1}, 0, 10)
	require.NoError(t, err)
	b, err := sampler.Page(sampler.Request{Dist: dist.NewUniform(0, 1), N: 10, Seed: 2}, 0, 10)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
