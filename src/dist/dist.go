package dist

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"
)

// Kind is the closed set of supported distributions.
type Kind int

const (
	Uniform Kind = iota + 1
	Exponential
	Normal
)

// Kinds lists every supported distribution in wire order.
var Kinds = []Kind{Uniform, Exponential, Normal}

// String returns the wire name used by the HTTP API.
func (k Kind) String() string {
	switch k {
	case Uniform:
		return "uniforme"
	case Exponential:
		return "exponencial"
	case Normal:
		return "normal"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind accepts the wire names and their English aliases.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "uniforme", "uniform":
		return Uniform, nil
	case "exponencial", "exponential":
		return Exponential, nil
	case "normal":
		return Normal, nil
	}
	return 0, DomainErrorf("unsupported distribution %q; use uniforme, exponencial or normal", s)
}

// Draws is the number of uniform(0,1) draws consumed per output value.
func (k Kind) Draws() int {
	if k == Normal {
		return 2
	}
	return 1
}

// Params holds the parameters of every kind; only the fields relevant to
// the Distribution's Kind are read.
type Params struct {
	A          float64 `json:"A,omitempty"`
	B          float64 `json:"B,omitempty"`
	Media      float64 `json:"media,omitempty"`
	Desviacion float64 `json:"desviacion,omitempty"`
}

// Distribution is a validated-on-demand pairing of Kind and Params.
type Distribution struct {
	Kind   Kind
	Params Params
}

func NewUniform(a, b float64) Distribution {
	return Distribution{Kind: Uniform, Params: Params{A: a, B: b}}
}

func NewExponential(media float64) Distribution {
	return Distribution{Kind: Exponential, Params: Params{Media: media}}
}

func NewNormal(media, desviacion float64) Distribution {
	return Distribution{Kind: Normal, Params: Params{Media: media, Desviacion: desviacion}}
}

func finite(xs ...float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// Validate checks the domain constraints of d's parameters.
func (d Distribution) Validate() error {
	p := d.Params
	switch d.Kind {
	case Uniform:
		if !finite(p.A, p.B) {
			return DomainErrorf("uniform bounds must be finite (A=%v, B=%v)", p.A, p.B)
		}
		if !(p.A < p.B) {
			return DomainErrorf("uniform requires A < B (A=%v, B=%v)", p.A, p.B)
		}
	case Exponential:
		if !finite(p.Media) || p.Media <= 0 {
			return DomainErrorf("exponential requires media > 0 (media=%v)", p.Media)
		}
	case Normal:
		if !finite(p.Media, p.Desviacion) {
			return DomainErrorf("normal parameters must be finite (media=%v, desviacion=%v)", p.Media, p.Desviacion)
		}
		if p.Desviacion <= 0 {
			return DomainErrorf("normal requires desviacion > 0 (desviacion=%v)", p.Desviacion)
		}
	default:
		return DomainErrorf("unsupported distribution %v", d.Kind)
	}
	return nil
}

// Value maps uniform draws to one value of d. u2 is only read for Normal.
// Both draws must lie in [0,1).
func (d Distribution) Value(u1, u2 float64) float64 {
	p := d.Params
	switch d.Kind {
	case Uniform:
		return p.A + u1*(p.B-p.A)
	case Exponential:
		x := -p.Media * math.Log1p(-u1)
		if x <= 0 {
			// ln(1) yields -0
			return 0
		}
		return x
	case Normal:
		// Box–Muller, cosine branch. 1-u1 is in (0,1] so the log is finite.
		r := math.Sqrt(-2 * math.Log1p(-u1))
		return p.Media + p.Desviacion*r*math.Cos(2*math.Pi*u2)
	}
	panic(fmt.Sprintf("dist: value of unsupported kind %v", d.Kind))
}

// CDF is the cumulative distribution function of d.
func (d Distribution) CDF(x float64) float64 {
	p := d.Params
	switch d.Kind {
	case Uniform:
		return distuv.Uniform{Min: p.A, Max: p.B}.CDF(x)
	case Exponential:
		return distuv.Exponential{Rate: 1 / p.Media}.CDF(x)
	case Normal:
		return distuv.Normal{Mu: p.Media, Sigma: p.Desviacion}.CDF(x)
	}
	panic(fmt.Sprintf("dist: cdf of unsupported kind %v", d.Kind))
}

// Support returns the natural bounds of d; unbounded ends are infinite.
func (d Distribution) Support() (lower, upper float64) {
	switch d.Kind {
	case Uniform:
		return d.Params.A, d.Params.B
	case Exponential:
		return 0, math.Inf(1)
	}
	return math.Inf(-1), math.Inf(1)
}

// Public returns the parameters relevant to d's kind, keyed by wire name.
func (d Distribution) Public() map[string]float64 {
	p := d.Params
	switch d.Kind {
	case Uniform:
		return map[string]float64{"A": p.A, "B": p.B}
	case Exponential:
		return map[string]float64{"media": p.Media}
	case Normal:
		return map[string]float64{"media": p.Media, "desviacion": p.Desviacion}
	}
	return map[string]float64{}
}

// Describe renders d for hypothesis statements.
func (d Distribution) Describe() string {
	p := d.Params
	switch d.Kind {
	case Uniform:
		return fmt.Sprintf("Uniforme[%.4f, %.4f]", p.A, p.B)
	case Exponential:
		return fmt.Sprintf("Exponencial(media=%.4f)", p.Media)
	case Normal:
		return fmt.Sprintf("Normal(μ=%.4f, σ=%.4f)", p.Media, p.Desviacion)
	}
	return d.Kind.String()
}
