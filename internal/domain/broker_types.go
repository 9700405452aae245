package domain

// Broker-agnostic types for the trading boundary.
// These abstract away broker-specific implementations so the core can be
// exercised against fakes in tests.

// BrokerCashBalance represents cash balance in a currency
type BrokerCashBalance struct {
	Currency string  // Currency code (EUR, USD, etc.)
	Amount   float64 // Cash amount
}

// BrokerQuote represents a security quote
type BrokerQuote struct {
	Symbol    string  // Instrument symbol
	Price     float64 // Current price
	Timestamp string  // Quote timestamp
}

// BrokerOrderResult represents the result of placing an order
type BrokerOrderResult struct {
	OrderID  string  // Order confirmation ID
	Symbol   string  // Instrument symbol
	Side     string  // "BUY" or "SELL"
	Quantity float64 // Submitted quantity
}
