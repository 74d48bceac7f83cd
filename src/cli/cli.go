// Package cli wires the service and the offline generator commands.
package cli

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/lost-woods/variates/src/config"
	"github.com/lost-woods/variates/src/dist"
	"github.com/lost-woods/variates/src/format"
	"github.com/lost-woods/variates/src/gof"
	"github.com/lost-woods/variates/src/histogram"
	"github.com/lost-woods/variates/src/rng"
	"github.com/lost-woods/variates/src/sampler"
	"github.com/lost-woods/variates/src/server"
)

func distFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "dist", Aliases: []string{"d"}, Usage: "uniforme, exponencial or normal", Required: true},
		&cli.IntFlag{Name: "n", Usage: "number of values to generate (1..1000000)", Required: true},
		&cli.Uint64Flag{Name: "seed", Usage: "seed for a reproducible sequence (default: fresh)"},
		&cli.Float64Flag{Name: "a", Usage: "lower bound (uniforme)"},
		&cli.Float64Flag{Name: "b", Usage: "upper bound (uniforme)"},
		&cli.Float64Flag{Name: "media", Aliases: []string{"mu"}, Usage: "mean (exponencial, normal)"},
		&cli.Float64Flag{Name: "lambda", Usage: "rate (exponencial), instead of --media"},
		&cli.Float64Flag{Name: "desviacion", Aliases: []string{"sigma"}, Usage: "standard deviation (normal)"},
	}
}

// NewApp builds the command tree; output goes to out.
func NewApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:   "variates",
		Usage:  "reproducible uniform, exponential and normal variates",
		Writer: out,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API",
				Action: serve,
			},
			{
				Name:  "generate",
				Usage: "print a page of values, one per line",
				Flags: append([]cli.Flag{
					&cli.IntFlag{Name: "skip", Usage: "index of the first value"},
					&cli.IntFlag{Name: "limit", Usage: "maximum number of values (default: all)"},
					&cli.StringFlag{Name: "format", Value: string(format.Fixed4), Usage: "fixed4 or es"},
				}, distFlags()...),
				Action: generate,
			},
			{
				Name:  "histogram",
				Usage: "print the frequency table of the full sequence",
				Flags: append([]cli.Flag{
					&cli.IntFlag{Name: "k", Value: 10, Usage: "number of intervals (5, 10, 15, 20 or 25)"},
				}, distFlags()...),
				Action: printHistogram,
			},
			{
				Name:  "gof",
				Usage: "chi-square goodness-of-fit of the sequence against its own distribution",
				Flags: append([]cli.Flag{
					&cli.IntFlag{Name: "k", Value: 10, Usage: "number of intervals (5, 10, 15, 20 or 25)"},
					&cli.Float64Flag{Name: "alpha", Value: gof.DefaultAlpha, Usage: "significance level"},
					&cli.IntFlag{Name: "estimated", Usage: "parameters estimated from the data"},
				}, distFlags()...),
				Action: goodnessOfFit,
			},
		},
	}
}

func serve(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	zapLogger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer zapLogger.Sync()
	log := zapLogger.Sugar()

	r, h, err := rng.NewSource(cfg.Serial)
	if err != nil {
		return fmt.Errorf("entropy source: %w", err)
	}
	log.Infow("entropy source ready", "serial", cfg.Serial.Enabled(), "device", cfg.Serial.Device)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.New(cfg, r, h, log).Run(ctx)
}

// requestFromFlags builds a sampler request from the distribution flags.
// Without --seed a fresh seed is drawn and reported on stderr so the run can
// be repeated.
func requestFromFlags(c *cli.Context) (sampler.Request, error) {
	params := map[string]float64{}
	for flag, key := range map[string]string{"a": "A", "b": "B", "media": "media", "lambda": "lambda", "desviacion": "desviacion"} {
		if c.IsSet(flag) {
			params[key] = c.Float64(flag)
		}
	}
	d, err := dist.Parse(c.String("dist"), params)
	if err != nil {
		return sampler.Request{}, err
	}

	req := sampler.Request{Dist: d, N: c.Int("n")}
	if err := req.Validate(); err != nil {
		return sampler.Request{}, err
	}
	if c.IsSet("seed") {
		req.Seed = c.Uint64("seed")
	} else {
		if req.Seed, err = rng.NewSeed(rand.Reader, nil); err != nil {
			return sampler.Request{}, err
		}
		fmt.Fprintf(c.App.ErrWriter, "seed: %d\n", req.Seed)
	}
	return req, nil
}

func generate(c *cli.Context) error {
	style, err := format.ParseStyle(c.String("format"))
	if err != nil {
		return err
	}
	req, err := requestFromFlags(c)
	if err != nil {
		return err
	}
	limit := req.N
	if c.IsSet("limit") {
		limit = c.Int("limit")
	}
	values, err := sampler.Page(req, c.Int("skip"), limit)
	if err != nil {
		return err
	}
	for _, v := range values {
		fmt.Fprintln(c.App.Writer, format.Value(v, style))
	}
	return nil
}

func buildHistogram(c *cli.Context) (sampler.Request, *histogram.Histogram, error) {
	if err := histogram.CheckK(c.Int("k")); err != nil {
		return sampler.Request{}, nil, err
	}
	req, err := requestFromFlags(c)
	if err != nil {
		return req, nil, err
	}
	h, err := histogram.Build(req, c.Int("k"))
	return req, h, err
}

func printHistogram(c *cli.Context) error {
	_, h, err := buildHistogram(c)
	if err != nil {
		return err
	}
	w := c.App.Writer
	fmt.Fprintf(w, "%-5s %-26s %8s %8s %8s %8s\n", "#", "interval", "freq", "rel", "cum", "cum_rel")
	for _, b := range h.Bins {
		fmt.Fprintf(w, "%-5d %-26s %8d %8.4f %8d %8.4f\n", b.Index, b.Label, b.Freq, b.Rel, b.Cum, b.CumRel)
	}
	fmt.Fprintf(w, "mean=%.4f stddev=%.4f min=%.4f max=%.4f\n", h.Summary.Mean, h.Summary.StdDev, h.Summary.Min, h.Summary.Max)
	return nil
}

func goodnessOfFit(c *cli.Context) error {
	req, h, err := buildHistogram(c)
	if err != nil {
		return err
	}
	in := gof.FromHistogram(req.Dist, h, c.Float64("alpha"))
	in.Estimated = c.Int("estimated")
	res, err := gof.Test(in)
	if err != nil {
		return err
	}

	w := c.App.Writer
	fmt.Fprintf(w, "H0: %s\nH1: %s\n", res.H0, res.H1)
	for _, r := range res.Rows {
		fmt.Fprintf(w, "%-5d %-26s p=%.4f expected=%.2f observed=%d contrib=%.4f\n", r.Index, r.Label, r.P, r.Expected, r.Observed, r.Contrib)
	}
	fmt.Fprintf(w, "chi2=%.4f df=%d critical=%.4f reject=%t\n", res.Chi2, res.DF, res.Critical, res.Reject)
	if res.Warning != "" {
		fmt.Fprintf(w, "warning: %s\n", res.Warning)
	}
	return nil
}

// Run executes the app with args and a background context.
func Run(args []string) error {
	return NewApp(os.Stdout).RunContext(context.Background(), args)
}
