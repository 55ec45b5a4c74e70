package ingest

import "strings"

// chfRates is a static approximate conversion table to CHF, used only when
// a statement omits a position's base-currency value. Values are corrected
// later once live quotes arrive, so rough rates are acceptable here.
var chfRates = map[string]float64{
	"CHF": 1.0,
	"USD": 0.88,
	"EUR": 0.94,
	"GBP": 1.12,
	"JPY": 0.0059,
	"AUD": 0.58,
	"CAD": 0.65,
	"SEK": 0.084,
	"NOK": 0.082,
	"DKK": 0.126,
	"HKD": 0.11,
	"SGD": 0.66,
}

// ApproxRate returns an approximate conversion rate from one currency to
// another, going through CHF. Unknown currencies convert at 1.0 so a missing
// table entry never zeroes out a position.
func ApproxRate(from, to string) float64 {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))
	if from == "" || to == "" || from == to {
		return 1.0
	}

	fromCHF, ok := chfRates[from]
	if !ok {
		fromCHF = 1.0
	}
	toCHF, ok := chfRates[to]
	if !ok {
		toCHF = 1.0
	}
	return fromCHF / toCHF
}
