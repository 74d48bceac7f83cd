package api

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lost-woods/variates/src/dist"
	"github.com/lost-woods/variates/src/format"
	"github.com/lost-woods/variates/src/sampler"
)

type generateRequest struct {
	Distribucion string             `json:"distribucion" binding:"required"`
	N            float64            `json:"n"`
	Params       map[string]float64 `json:"params"`
	Seed         *uint64            `json:"seed"`
	Skip         int                `json:"skip"`
	Limit        *int               `json:"limit"`
	Format       string             `json:"format"`
}

type histogramRequest struct {
	Distribucion string             `json:"distribucion" binding:"required"`
	N            float64            `json:"n"`
	Params       map[string]float64 `json:"params"`
	Seed         *uint64            `json:"seed"`
	KIntervals   int                `json:"k_intervals"`
}

type gofRequest struct {
	Distribucion string             `json:"distribucion" binding:"required"`
	Params       map[string]float64 `json:"params"`
	N            float64            `json:"n"`
	Edges        []float64          `json:"edges"`
	Observed     []int              `json:"observed"`
	Alpha        *float64           `json:"alpha"`
	Estimated    int                `json:"estimated"`
}

// count converts a JSON number to a sequence length. Fractional values are
// range errors rather than malformed bodies.
func count(v float64) (int, error) {
	if v != math.Trunc(v) || math.Abs(v) > 1<<53 {
		return 0, dist.RangeErrorf("n must be an integer (n=%v)", v)
	}
	return int(v), nil
}

// pageRange applies the default and the configured ceiling to a page limit.
func (h *Handlers) pageRange(n, skip int, limit *int) (int, error) {
	if limit == nil {
		l := n - skip
		if l > h.maxPage {
			l = h.maxPage
		}
		if l < 1 {
			l = 1
		}
		return l, nil
	}
	if *limit > h.maxPage {
		return 0, dist.RangeErrorf("limit must not exceed %d (limit=%d)", h.maxPage, *limit)
	}
	return *limit, nil
}

// request resolves the distribution and seed shared by every sampling endpoint.
func (h *Handlers) request(name string, params map[string]float64, n int, seed *uint64) (sampler.Request, error) {
	d, err := dist.Parse(name, params)
	if err != nil {
		return sampler.Request{}, err
	}
	r := sampler.Request{Dist: d, N: n}
	if err := r.Validate(); err != nil {
		return sampler.Request{}, err
	}
	if r.Seed, err = h.seedFor(seed); err != nil {
		return sampler.Request{}, err
	}
	return r, nil
}

var paramKeys = []string{"A", "B", "media", "lambda", "desviacion"}

// exportQuery is the query-string form of a request, used by GET /export.
type exportQuery struct {
	Distribucion string
	Params       map[string]float64
	N            int
	Seed         *uint64
	Kind         string
	File         string
	Skip         int
	Limit        *int
	K            int
	Style        format.Style
}

func parseExportQuery(c *gin.Context) (exportQuery, error) {
	q := exportQuery{
		Distribucion: c.Query("distribucion"),
		Params:       map[string]float64{},
		Kind:         c.DefaultQuery("kind", "page"),
		File:         c.DefaultQuery("fmt", "xlsx"),
	}

	for _, k := range paramKeys {
		s, ok := c.GetQuery(k)
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return q, dist.DomainErrorf("parameter %s must be a number (got %q)", k, s)
		}
		q.Params[k] = v
	}

	var err error
	if q.N, err = queryInt(c, "n", 0); err != nil {
		return q, err
	}
	if q.Skip, err = queryInt(c, "skip", 0); err != nil {
		return q, err
	}
	if q.K, err = queryInt(c, "k", 10); err != nil {
		return q, err
	}
	if s, ok := c.GetQuery("limit"); ok {
		l, err := strconv.Atoi(s)
		if err != nil {
			return q, dist.RangeErrorf("limit must be an integer (got %q)", s)
		}
		q.Limit = &l
	}
	if s, ok := c.GetQuery("seed"); ok {
		seed, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return q, dist.RangeErrorf("seed must be a non-negative integer (got %q)", s)
		}
		q.Seed = &seed
	}
	if q.Style, err = format.ParseStyle(c.Query("format")); err != nil {
		return q, err
	}

	if q.Kind != "page" && q.Kind != "histogram" {
		return q, dist.RangeErrorf("kind must be page or histogram (got %q)", q.Kind)
	}
	if q.File != "xlsx" && q.File != "csv" {
		return q, dist.RangeErrorf("fmt must be xlsx or csv (got %q)", q.File)
	}
	return q, nil
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	s, ok := c.GetQuery(key)
	if !ok {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, dist.RangeErrorf("%s must be an integer (got %q)", key, s)
	}
	return v, nil
}
