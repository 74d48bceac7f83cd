// Package format renders raw variates for the HTTP and CLI boundaries.
package format

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/lost-woods/variates/src/dist"
)

type Style string

const (
	// Fixed4 prints integers unadorned and everything else with 4 decimals.
	Fixed4 Style = "fixed4"
	// Spanish uses a decimal comma, at most 4 and at least 1 decimal.
	Spanish Style = "es"
)

func ParseStyle(s string) (Style, error) {
	switch Style(strings.ToLower(strings.TrimSpace(s))) {
	case "", Fixed4:
		return Fixed4, nil
	case Spanish:
		return Spanish, nil
	}
	return "", dist.RangeErrorf("unknown format %q; use fixed4 or es", s)
}

var esPrinter = message.NewPrinter(language.Spanish)

func Value(v float64, style Style) string {
	if style == Spanish {
		return esPrinter.Sprint(number.Decimal(v,
			number.MinFractionDigits(1),
			number.MaxFractionDigits(4),
			number.NoSeparator(),
		))
	}
	if v == 0 {
		return "0"
	}
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func Values(vs []float64, style Style) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = Value(v, style)
	}
	return out
}
