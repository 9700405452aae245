package currency

import (
	"fmt"

	"github.com/aristath/rebalancer/internal/domain"
	"github.com/rs/zerolog"
)

// Router resolves conversion paths and prices them with live broker quotes.
// It implements domain.RateSource.
type Router struct {
	client domain.BrokerClient
	log    zerolog.Logger
}

// NewRouter creates a new currency router
func NewRouter(client domain.BrokerClient, log zerolog.Logger) *Router {
	return &Router{
		client: client,
		log:    log.With().Str("service", "currency_router").Logger(),
	}
}

// Path resolves the conversion path between two currencies
func (r *Router) Path(fromCurrency, toCurrency string) (Path, error) {
	return FindPath(fromCurrency, toCurrency)
}

// GetRate returns the current exchange rate between two currencies: how many
// units of toCurrency one unit of fromCurrency buys.
//
// Quote staleness is not checked here; a leg priced from a stale quote is a
// known limitation of the venue's quote feed.
func (r *Router) GetRate(fromCurrency, toCurrency string) (float64, error) {
	if fromCurrency == toCurrency {
		return 1.0, nil
	}

	if !r.client.IsConnected() {
		return 0, fmt.Errorf("broker not connected for rate lookup")
	}

	symbol, inverse := findRateSymbol(fromCurrency, toCurrency)
	if symbol == "" {
		return r.rateViaPath(fromCurrency, toCurrency)
	}

	price, err := r.quotePrice(symbol)
	if err != nil {
		return 0, err
	}

	if inverse {
		return 1.0 / price, nil
	}
	return price, nil
}

// findRateSymbol finds the instrument pricing a pair and whether the stored
// direction is reversed from the requested one
func findRateSymbol(fromCurrency, toCurrency string) (string, bool) {
	if symbol, ok := rateSymbols[pairKey{fromCurrency, toCurrency}]; ok {
		return symbol, false
	}
	if symbol, ok := rateSymbols[pairKey{toCurrency, fromCurrency}]; ok {
		return symbol, true
	}
	return "", false
}

// rateViaPath prices a pair through its conversion path: a one-step path
// prices directly from its quote, a two-hop path multiplies the leg rates.
func (r *Router) rateViaPath(fromCurrency, toCurrency string) (float64, error) {
	path, err := FindPath(fromCurrency, toCurrency)
	if err != nil {
		return 0, err
	}

	switch path.Kind {
	case PathDirect:
		return r.quotePrice(path.Steps[0].Symbol)
	case PathTwoHop:
		rate1, err := r.GetRate(path.Steps[0].FromCurrency, path.Steps[0].ToCurrency)
		if err != nil {
			return 0, err
		}
		rate2, err := r.GetRate(path.Steps[1].FromCurrency, path.Steps[1].ToCurrency)
		if err != nil {
			return 0, err
		}
		return rate1 * rate2, nil
	}

	return 0, &NoPathError{From: fromCurrency, To: toCurrency}
}

// quotePrice fetches a quote and validates the price is usable
func (r *Router) quotePrice(symbol string) (float64, error) {
	quote, err := r.client.GetQuote(symbol)
	if err != nil {
		r.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to get quote")
		return 0, err
	}
	if quote == nil || quote.Price <= 0 {
		return 0, fmt.Errorf("invalid quote price for %s", symbol)
	}
	return quote.Price, nil
}
