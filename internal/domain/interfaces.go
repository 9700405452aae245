package domain

// BrokerClient defines broker-agnostic trading operations used by the core.
// All broker operations go through this interface so the currency exchange
// service and the evaluation cycle can run against any venue (or a fake).
//
// The connection is a single logical handle: implementations are not required
// to support unsynchronized concurrent order placement against the same
// balance. Callers serialize Exchange-level operations.
type BrokerClient interface {
	// IsConnected reports whether the venue connection is established
	IsConnected() bool

	// Connect (re-)establishes the venue connection
	Connect() error

	// GetQuote returns the current quote for an instrument
	GetQuote(symbol string) (*BrokerQuote, error)

	// PlaceOrder submits a market order. Returns the order result or an
	// error when the venue rejects it.
	PlaceOrder(symbol, side string, quantity float64) (*BrokerOrderResult, error)

	// GetCashBalances returns all cash balances per currency
	GetCashBalances() ([]BrokerCashBalance, error)
}

// SnapshotStore provides access to end-of-day portfolio value snapshots.
// Used by the daily P&L gate; failures are treated as unknown data there,
// never propagated.
type SnapshotStore interface {
	// LatestSnapshotBefore returns the total value of the most recent
	// snapshot strictly before the given date (YYYY-MM-DD), or nil when
	// none exists.
	LatestSnapshotBefore(date string) (*float64, error)

	// EarliestSnapshotOn returns the total value of the earliest snapshot
	// taken on the given date, or nil when none exists.
	EarliestSnapshotOn(date string) (*float64, error)

	// CurrentPortfolioValue returns the live total portfolio value in EUR
	CurrentPortfolioValue() (float64, error)
}

// RateSource returns an exchange rate between two currencies.
// Implemented by the currency router; consumed by the portfolio summary
// builder and the evaluation cycle without importing the currency package.
type RateSource interface {
	// GetRate returns how many units of toCurrency one unit of
	// fromCurrency buys
	GetRate(fromCurrency, toCurrency string) (float64, error)
}

// PortfolioSummaryProvider builds the current portfolio summary.
// Breaks the dependency between the allocation and portfolio packages.
type PortfolioSummaryProvider interface {
	GetPortfolioSummary() (PortfolioSummary, error)
}
