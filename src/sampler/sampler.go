// Package sampler turns a seeded stream into pages of distribution values.
//
// Output value i of a request consumes stream indices [i*d, i*d+d) where d is
// the distribution's draw count (1 for uniform and exponential, 2 for normal),
// so any page can be produced without generating the indices before it.
package sampler

import (
	"github.com/lost-woods/variates/src/dist"
	"github.com/lost-woods/variates/src/stream"
)

// MaxN is the largest number of values one request may ask for.
const MaxN = 1_000_000

// Request identifies one logical sequence of N values.
type Request struct {
	Dist dist.Distribution
	N    int
	Seed uint64
}

func (r Request) Validate() error {
	if r.N < 1 || r.N > MaxN {
		return dist.RangeErrorf("n must be an integer between 1 and %d (n=%d)", MaxN, r.N)
	}
	return r.Dist.Validate()
}

// Bounds clips the page [skip, skip+limit) to [0, N). An empty page yields
// from == to.
func (r Request) Bounds(skip, limit int) (from, to int, err error) {
	if skip < 0 {
		return 0, 0, dist.RangeErrorf("skip must be >= 0 (skip=%d)", skip)
	}
	if limit < 1 {
		return 0, 0, dist.RangeErrorf("limit must be >= 1 (limit=%d)", limit)
	}
	if skip >= r.N {
		return r.N, r.N, nil
	}
	to = r.N
	if limit < r.N-skip {
		to = skip + limit
	}
	return skip, to, nil
}

// Page returns the values at indices [skip, min(skip+limit, N)).
func Page(r Request, skip, limit int) ([]float64, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	from, to, err := r.Bounds(skip, limit)
	if err != nil {
		return nil, err
	}

	out := make([]float64, 0, to-from)
	err = walk(r, from, to, func(_ int, v float64) error {
		out = append(out, v)
		return nil
	})
	return out, err
}

// Each calls fn for every value of r in index order without keeping them.
// It stops at the first error returned by fn.
func Each(r Request, fn func(i int, v float64) error) error {
	if err := r.Validate(); err != nil {
		return err
	}
	return walk(r, 0, r.N, fn)
}

// All materializes the whole sequence.
func All(r Request) ([]float64, error) {
	return Page(r, 0, MaxN)
}

func walk(r Request, from, to int, fn func(i int, v float64) error) error {
	if from >= to {
		return nil
	}
	draws := r.Dist.Kind.Draws()
	c := stream.NewCursor(r.Seed, uint64(from)*uint64(draws))
	for i := from; i < to; i++ {
		u1 := c.Next()
		u2 := 0.0
		if draws == 2 {
			u2 = c.Next()
		}
		if err := fn(i, r.Dist.Value(u1, u2)); err != nil {
			return err
		}
	}
	return nil
}
