// Package currency computes FX conversion paths and rates between the
// supported currencies and executes multi-step conversions through the
// broker's FX instruments.
//
// Direct instruments exist for EUR<->USD, EUR<->GBP, GBP<->USD, EUR<->HKD
// and USD<->HKD. GBP<->HKD has no direct instrument and routes via EUR.
package currency

import "fmt"

// Supported currency codes
const (
	EUR = "EUR"
	USD = "USD"
	GBP = "GBP"
	HKD = "HKD"
)

// ConversionStep is a single leg in a currency conversion path
type ConversionStep struct {
	FromCurrency string
	ToCurrency   string
	Symbol       string
	Action       string // "BUY" or "SELL"
}

// PathKind tags the shape of a conversion path
type PathKind int

const (
	// PathSame - source and target currency are identical, nothing to do
	PathSame PathKind = iota
	// PathDirect - a single FX instrument covers the pair
	PathDirect
	// PathTwoHop - no direct instrument, routed via EUR
	PathTwoHop
)

// Path is the resolved conversion route between two currencies
type Path struct {
	Kind  PathKind
	Steps []ConversionStep // 0, 1 or 2 steps
}

// NoPathError indicates no conversion route exists between two currencies
type NoPathError struct {
	From string
	To   string
}

func (e *NoPathError) Error() string {
	return fmt.Sprintf("no conversion path from %s to %s", e.From, e.To)
}

// instrument identifies the FX pair instrument and the order side that
// converts the key's from-currency into its to-currency
type instrument struct {
	Symbol string
	Action string
}

// pairKey is an explicit directed edge in the pair table
type pairKey struct {
	From string
	To   string
}

// directPairs is the adjacency table of directly tradable conversions.
// Symbols follow the venue conventions: the *_T0.ITS instruments quote the
// first currency in the symbol, the slash instruments quote the second.
var directPairs = map[pairKey]instrument{
	{EUR, USD}: {"EURUSD_T0.ITS", "SELL"},
	{USD, EUR}: {"EURUSD_T0.ITS", "BUY"},
	{EUR, GBP}: {"EURGBP_T0.ITS", "SELL"},
	{GBP, EUR}: {"EURGBP_T0.ITS", "BUY"},
	{GBP, USD}: {"GBPUSD_T0.ITS", "SELL"},
	{USD, GBP}: {"GBPUSD_T0.ITS", "BUY"},
	{EUR, HKD}: {"HKD/EUR", "BUY"},
	{HKD, EUR}: {"HKD/EUR", "SELL"},
	{USD, HKD}: {"HKD/USD", "BUY"},
	{HKD, USD}: {"HKD/USD", "SELL"},
}

// rateSymbols maps a currency pair to the instrument whose quote prices
// that pair directly (base -> quote)
var rateSymbols = map[pairKey]string{
	{EUR, USD}: "EURUSD_T0.ITS",
	{EUR, GBP}: "EURGBP_T0.ITS",
	{GBP, USD}: "GBPUSD_T0.ITS",
	{HKD, EUR}: "HKD/EUR",
	{HKD, USD}: "HKD/USD",
}

// FindPath resolves the conversion path between two currencies.
//
// Same currency yields an empty PathSame. A direct pair yields one step.
// GBP<->HKD routes via EUR in two steps. Anything else returns *NoPathError.
func FindPath(fromCurrency, toCurrency string) (Path, error) {
	if fromCurrency == toCurrency {
		return Path{Kind: PathSame}, nil
	}

	if pair, ok := directPairs[pairKey{fromCurrency, toCurrency}]; ok {
		return Path{
			Kind: PathDirect,
			Steps: []ConversionStep{{
				FromCurrency: fromCurrency,
				ToCurrency:   toCurrency,
				Symbol:       pair.Symbol,
				Action:       pair.Action,
			}},
		}, nil
	}

	// GBP <-> HKD requires routing via EUR
	if isPair(fromCurrency, toCurrency, GBP, HKD) {
		leg1, ok1 := directPairs[pairKey{fromCurrency, EUR}]
		leg2, ok2 := directPairs[pairKey{EUR, toCurrency}]
		if ok1 && ok2 {
			return Path{
				Kind: PathTwoHop,
				Steps: []ConversionStep{
					{FromCurrency: fromCurrency, ToCurrency: EUR, Symbol: leg1.Symbol, Action: leg1.Action},
					{FromCurrency: EUR, ToCurrency: toCurrency, Symbol: leg2.Symbol, Action: leg2.Action},
				},
			}, nil
		}
	}

	return Path{}, &NoPathError{From: fromCurrency, To: toCurrency}
}

// isPair reports whether {a, b} == {x, y} ignoring direction
func isPair(a, b, x, y string) bool {
	return (a == x && b == y) || (a == y && b == x)
}

// AvailableCurrencies returns the sorted set of currencies covered by the
// pair table
func AvailableCurrencies() []string {
	return []string{EUR, GBP, HKD, USD}
}
