package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lost-woods/variates/src/dist"
	"github.com/lost-woods/variates/src/export"
	"github.com/lost-woods/variates/src/format"
	"github.com/lost-woods/variates/src/gof"
	"github.com/lost-woods/variates/src/histogram"
	"github.com/lost-woods/variates/src/sampler"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *Handlers) Generate(c *gin.Context) {
	var body generateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, err)
		return
	}

	h.handle(c, func() (string, gin.H, error) {
		style, err := format.ParseStyle(body.Format)
		if err != nil {
			return "", nil, err
		}
		n, err := count(body.N)
		if err != nil {
			return "", nil, err
		}
		req, err := h.request(body.Distribucion, body.Params, n, body.Seed)
		if err != nil {
			return "", nil, err
		}
		limit, err := h.pageRange(req.N, body.Skip, body.Limit)
		if err != nil {
			return "", nil, err
		}
		values, err := sampler.Page(req, body.Skip, limit)
		if err != nil {
			return "", nil, err
		}

		h.log.Debugw("generated page",
			"distribucion", req.Dist.Kind.String(), "n", req.N, "seed", req.Seed,
			"skip", body.Skip, "limit", limit, "count", len(values))

		numbers := format.Values(values, style)
		next := body.Skip + len(values)
		return strings.Join(numbers, "\n"), gin.H{
			"distribucion": req.Dist.Kind.String(),
			"n":            req.N,
			"params":       req.Dist.Public(),
			"seed":         req.Seed,
			"skip":         body.Skip,
			"limit":        limit,
			"format":       string(style),
			"numbers":      numbers,
			"has_more":     next < req.N,
			"next_skip":    next,
		}, nil
	})
}

func (h *Handlers) Histogram(c *gin.Context) {
	var body histogramRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, err)
		return
	}

	h.handle(c, func() (string, gin.H, error) {
		if err := histogram.CheckK(body.KIntervals); err != nil {
			return "", nil, err
		}
		n, err := count(body.N)
		if err != nil {
			return "", nil, err
		}
		req, err := h.request(body.Distribucion, body.Params, n, body.Seed)
		if err != nil {
			return "", nil, err
		}
		hist, err := histogram.Build(req, body.KIntervals)
		if err != nil {
			return "", nil, err
		}

		var text strings.Builder
		text.WriteString("index\tinterval\tfreq\trel\tcum\tcum_rel")
		for _, b := range hist.Bins {
			fmt.Fprintf(&text, "\n%d\t%s\t%d\t%.4f\t%d\t%.4f", b.Index, b.Label, b.Freq, b.Rel, b.Cum, b.CumRel)
		}

		return text.String(), gin.H{
			"distribucion": req.Dist.Kind.String(),
			"n":            req.N,
			"params":       req.Dist.Public(),
			"seed":         req.Seed,
			"k":            hist.K,
			"edges":        hist.Edges,
			"bins":         hist.Bins,
			"total":        hist.Total,
			"summary":      hist.Summary,
		}, nil
	})
}

func (h *Handlers) GoodnessOfFit(c *gin.Context) {
	var body gofRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.badRequest(c, err)
		return
	}

	h.handle(c, func() (string, gin.H, error) {
		n, err := count(body.N)
		if err != nil {
			return "", nil, err
		}
		d, err := dist.Parse(body.Distribucion, body.Params)
		if err != nil {
			return "", nil, err
		}
		alpha := gof.DefaultAlpha
		if body.Alpha != nil {
			alpha = *body.Alpha
		}
		res, err := gof.Test(gof.Input{
			Dist:      d,
			N:         n,
			Edges:     body.Edges,
			Observed:  body.Observed,
			Alpha:     alpha,
			Estimated: body.Estimated,
		})
		if err != nil {
			return "", nil, err
		}

		verdict := "H0 not rejected"
		if res.Reject {
			verdict = "H0 rejected"
		}
		text := fmt.Sprintf("chi2=%.4f df=%d critical=%.4f alpha=%v\n%s", res.Chi2, res.DF, res.Critical, res.Alpha, verdict)
		if res.Warning != "" {
			text += "\nwarning: " + res.Warning
		}

		payload := gin.H{
			"chi2":     res.Chi2,
			"df":       res.DF,
			"critical": res.Critical,
			"reject":   res.Reject,
			"alpha":    res.Alpha,
			"H0":       res.H0,
			"H1":       res.H1,
			"rows":     res.Rows,
		}
		if res.Warning != "" {
			payload["warning"] = res.Warning
		}
		return text, payload, nil
	})
}

// Export streams a page or a histogram as an XLSX or CSV attachment. The
// seed and request id travel in the X-Seed and X-Request-Id headers.
func (h *Handlers) Export(c *gin.Context) {
	q, err := parseExportQuery(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	req, err := h.request(q.Distribucion, q.Params, q.N, q.Seed)
	if err != nil {
		h.fail(c, err)
		return
	}

	var buf bytes.Buffer
	name := fmt.Sprintf("%s-%d", req.Dist.Kind, req.Seed)
	switch q.Kind {
	case "histogram":
		if err = histogram.CheckK(q.K); err != nil {
			break
		}
		var hist *histogram.Histogram
		if hist, err = histogram.Build(req, q.K); err != nil {
			break
		}
		name += "-histograma"
		if q.File == "csv" {
			err = export.HistogramCSV(&buf, hist)
		} else {
			err = export.HistogramXLSX(&buf, hist)
		}
	default:
		var limit int
		if limit, err = h.pageRange(req.N, q.Skip, q.Limit); err != nil {
			break
		}
		var values []float64
		if values, err = sampler.Page(req, q.Skip, limit); err != nil {
			break
		}
		if q.File == "csv" {
			err = export.PageCSV(&buf, q.Skip, values, q.Style)
		} else {
			err = export.PageXLSX(&buf, q.Skip, values)
		}
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	requestID, err := h.requestID()
	if err != nil {
		h.log.Errorw("request id generation failed", "error", err)
		responder{c}.err(http.StatusInternalServerError, "Error generating request id.")
		return
	}

	contentType := xlsxContentType
	if q.File == "csv" {
		contentType = "text/csv; charset=utf-8"
	}
	responder{c}.file(name+"."+q.File, contentType, buf.Bytes(), map[string]string{
		"X-Seed":       strconv.FormatUint(req.Seed, 10),
		"X-Request-Id": requestID,
	})
}

func (h *Handlers) Health(c *gin.Context) {
	if h.health == nil {
		responder{c}.err(http.StatusServiceUnavailable, "UNHEALTHY: missing health monitor")
		return
	}

	ok, msg, t := h.health.Snapshot()
	if ok {
		responder{c}.ok(
			fmt.Sprintf("OK (last checked %s)", t.Format(time.RFC3339)),
			gin.H{"ok": true, "last_checked": t.Format(time.RFC3339)},
			"health-check",
		)
		return
	}

	responder{c}.err(http.StatusServiceUnavailable,
		fmt.Sprintf("UNHEALTHY: %s (last checked %s)", msg, t.Format(time.RFC3339)))
}

func (h *Handlers) Root(c *gin.Context) {
	responder{c}.ok(
		"Variate generator API. POST /generate, /histogram, /gof; GET /export",
		gin.H{"ok": true, "msg": "Variate generator API. POST /generate, /histogram, /gof; GET /export"},
		"root",
	)
}
