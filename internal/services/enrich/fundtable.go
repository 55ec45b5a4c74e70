package enrich

import (
	"strings"

	"github.com/clearfolio/clearfolio/internal/models"
)

// knownFundCompositions is the static fallback tier used when the live
// composition lookup fails: realistic breakdowns for widely-held UCITS and
// US funds, keyed by base symbol with any exchange suffix ignored.
var knownFundCompositions = map[string]*models.Composition{
	"VWRL": {
		Name:     "Vanguard FTSE All-World UCITS ETF",
		Domicile: "IE",
		Sectors: map[string]float64{
			"Technology": 0.26, "Financial Services": 0.16, "Healthcare": 0.10,
			"Consumer Cyclical": 0.10, "Industrials": 0.13, "Consumer Defensive": 0.06,
			"Energy": 0.04, "Basic Materials": 0.04, "Communication Services": 0.07,
			"Utilities": 0.03, "Real Estate": 0.01,
		},
		Countries: map[string]float64{
			"United States": 0.61, "Japan": 0.06, "United Kingdom": 0.04,
			"Switzerland": 0.02, "Europe ex-UK": 0.12, "Emerging Markets": 0.10,
			"Canada": 0.03, "Australia": 0.02,
		},
		Currencies: map[string]float64{
			"USD": 0.63, "EUR": 0.09, "JPY": 0.06, "GBP": 0.04, "CHF": 0.02, "Other": 0.16,
		},
	},
	"VUSA": {
		Name:     "Vanguard S&P 500 UCITS ETF",
		Domicile: "IE",
		Sectors: map[string]float64{
			"Technology": 0.32, "Financial Services": 0.13, "Healthcare": 0.11,
			"Consumer Cyclical": 0.11, "Communication Services": 0.09, "Industrials": 0.08,
			"Consumer Defensive": 0.06, "Energy": 0.04, "Utilities": 0.02,
			"Basic Materials": 0.02, "Real Estate": 0.02,
		},
		Countries:  map[string]float64{"United States": 1.0},
		Currencies: map[string]float64{"USD": 1.0},
	},
	"CSPX": {
		Name:     "iShares Core S&P 500 UCITS ETF",
		Domicile: "IE",
		Sectors: map[string]float64{
			"Technology": 0.32, "Financial Services": 0.13, "Healthcare": 0.11,
			"Consumer Cyclical": 0.11, "Communication Services": 0.09, "Industrials": 0.08,
			"Consumer Defensive": 0.06, "Energy": 0.04, "Utilities": 0.02,
			"Basic Materials": 0.02, "Real Estate": 0.02,
		},
		Countries:  map[string]float64{"United States": 1.0},
		Currencies: map[string]float64{"USD": 1.0},
	},
	"IWDA": {
		Name:     "iShares Core MSCI World UCITS ETF",
		Domicile: "IE",
		Sectors: map[string]float64{
			"Technology": 0.25, "Financial Services": 0.15, "Healthcare": 0.11,
			"Industrials": 0.11, "Consumer Cyclical": 0.10, "Communication Services": 0.08,
			"Consumer Defensive": 0.06, "Energy": 0.04, "Basic Materials": 0.04,
			"Utilities": 0.03, "Real Estate": 0.02,
		},
		Countries: map[string]float64{
			"United States": 0.70, "Japan": 0.06, "United Kingdom": 0.04,
			"Canada": 0.03, "France": 0.03, "Switzerland": 0.03, "Germany": 0.02,
			"Australia": 0.02, "Netherlands": 0.01, "Other": 0.06,
		},
		Currencies: map[string]float64{
			"USD": 0.72, "EUR": 0.09, "JPY": 0.06, "GBP": 0.04, "CHF": 0.03, "Other": 0.06,
		},
	},
	"SWDA": {
		Name:     "iShares Core MSCI World UCITS ETF",
		Domicile: "IE",
		Sectors: map[string]float64{
			"Technology": 0.25, "Financial Services": 0.15, "Healthcare": 0.11,
			"Industrials": 0.11, "Consumer Cyclical": 0.10, "Communication Services": 0.08,
			"Consumer Defensive": 0.06, "Energy": 0.04, "Basic Materials": 0.04,
			"Utilities": 0.03, "Real Estate": 0.02,
		},
		Countries:  map[string]float64{"United States": 0.70, "Japan": 0.06, "United Kingdom": 0.04, "Other": 0.20},
		Currencies: map[string]float64{"USD": 0.72, "EUR": 0.09, "JPY": 0.06, "Other": 0.13},
	},
	"EIMI": {
		Name:     "iShares Core MSCI EM IMI UCITS ETF",
		Domicile: "IE",
		Sectors: map[string]float64{
			"Technology": 0.23, "Financial Services": 0.22, "Consumer Cyclical": 0.12,
			"Communication Services": 0.09, "Industrials": 0.07, "Basic Materials": 0.07,
			"Energy": 0.05, "Consumer Defensive": 0.05, "Healthcare": 0.04,
			"Utilities": 0.03, "Real Estate": 0.03,
		},
		Countries: map[string]float64{
			"China": 0.26, "India": 0.20, "Taiwan": 0.19, "South Korea": 0.10,
			"Brazil": 0.04, "Saudi Arabia": 0.04, "South Africa": 0.03, "Other": 0.14,
		},
		Currencies: map[string]float64{"USD": 0.12, "TWD": 0.19, "INR": 0.20, "CNY": 0.22, "Other": 0.27},
	},
	"VEVE": {
		Name:       "Vanguard FTSE Developed World UCITS ETF",
		Domicile:   "IE",
		Sectors:    map[string]float64{"Technology": 0.27, "Financial Services": 0.15, "Healthcare": 0.11, "Industrials": 0.12, "Consumer Cyclical": 0.11, "Other": 0.24},
		Countries:  map[string]float64{"United States": 0.67, "Japan": 0.07, "United Kingdom": 0.04, "Other": 0.22},
		Currencies: map[string]float64{"USD": 0.69, "EUR": 0.09, "JPY": 0.07, "GBP": 0.04, "Other": 0.11},
	},
	"VFEM": {
		Name:       "Vanguard FTSE Emerging Markets UCITS ETF",
		Domicile:   "IE",
		Sectors:    map[string]float64{"Financial Services": 0.23, "Technology": 0.20, "Consumer Cyclical": 0.13, "Communication Services": 0.09, "Other": 0.35},
		Countries:  map[string]float64{"China": 0.29, "India": 0.23, "Taiwan": 0.18, "Brazil": 0.05, "Other": 0.25},
		Currencies: map[string]float64{"CNY": 0.25, "INR": 0.23, "TWD": 0.18, "Other": 0.34},
	},
	"AGGH": {
		Name:       "iShares Core Global Aggregate Bond UCITS ETF",
		Domicile:   "IE",
		Sectors:    map[string]float64{"Government Bonds": 0.55, "Corporate Bonds": 0.30, "Securitized": 0.12, "Cash": 0.03},
		Countries:  map[string]float64{"United States": 0.40, "Japan": 0.11, "China": 0.09, "France": 0.06, "Germany": 0.05, "Other": 0.29},
		Currencies: map[string]float64{"USD": 0.44, "EUR": 0.24, "JPY": 0.12, "CNY": 0.09, "Other": 0.11},
	},
	"CHSPI": {
		Name:       "iShares Core SPI ETF",
		Domicile:   "CH",
		Sectors:    map[string]float64{"Healthcare": 0.33, "Consumer Defensive": 0.20, "Financial Services": 0.18, "Industrials": 0.12, "Basic Materials": 0.07, "Other": 0.10},
		Countries:  map[string]float64{"Switzerland": 1.0},
		Currencies: map[string]float64{"CHF": 1.0},
	},
	"SPY": {
		Name:       "SPDR S&P 500 ETF Trust",
		Domicile:   "US",
		Sectors:    map[string]float64{"Technology": 0.32, "Financial Services": 0.13, "Healthcare": 0.11, "Consumer Cyclical": 0.11, "Communication Services": 0.09, "Other": 0.24},
		Countries:  map[string]float64{"United States": 1.0},
		Currencies: map[string]float64{"USD": 1.0},
	},
}

// BaseSymbol strips any exchange suffix ("VWRL.SW" → "VWRL").
func BaseSymbol(symbol string) string {
	if i := strings.Index(symbol, "."); i > 0 {
		return symbol[:i]
	}
	return symbol
}

// lookupKnownFund returns a private copy of the static composition for a
// symbol, or nil when the fund is not in the table.
func lookupKnownFund(symbol string) *models.Composition {
	comp, ok := knownFundCompositions[BaseSymbol(strings.ToUpper(symbol))]
	if !ok {
		return nil
	}
	return comp.Clone()
}
