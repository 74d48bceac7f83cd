package dist

// FromMap builds and validates a Distribution from the loosely typed params
// object of the HTTP API. Exponential accepts either "media" or "lambda"
// (rate), but not both.
func FromMap(kind Kind, params map[string]float64) (Distribution, error) {
	get := func(key string) (float64, bool) {
		v, ok := params[key]
		return v, ok
	}

	var d Distribution
	switch kind {
	case Uniform:
		a, okA := get("A")
		b, okB := get("B")
		if !okA || !okB {
			return d, DomainErrorf("uniform requires parameters A and B")
		}
		d = NewUniform(a, b)
	case Exponential:
		media, okM := get("media")
		lambda, okL := get("lambda")
		if okM == okL {
			return d, DomainErrorf("exponential requires exactly one of media or lambda")
		}
		if okL {
			if lambda <= 0 {
				return d, DomainErrorf("exponential requires lambda > 0 (lambda=%v)", lambda)
			}
			media = 1 / lambda
		}
		d = NewExponential(media)
	case Normal:
		media, okM := get("media")
		sd, okS := get("desviacion")
		if !okM || !okS {
			return d, DomainErrorf("normal requires parameters media and desviacion")
		}
		d = NewNormal(media, sd)
	default:
		return d, DomainErrorf("unsupported distribution %v", kind)
	}

	if err := d.Validate(); err != nil {
		return Distribution{}, err
	}
	return d, nil
}

// Parse resolves a wire distribution name and its params in one step.
func Parse(name string, params map[string]float64) (Distribution, error) {
	kind, err := ParseKind(name)
	if err != nil {
		return Distribution{}, err
	}
	return FromMap(kind, params)
}
