package testing

import (
	"fmt"
	"sync"

	"github.com/aristath/rebalancer/internal/domain"
)

// MockBrokerClient is a scriptable implementation of domain.BrokerClient.
// Quotes and balances are set per test; placed orders are recorded.
type MockBrokerClient struct {
	mu sync.Mutex

	Connected      bool
	ConnectErr     error
	Quotes         map[string]float64 // symbol -> price
	QuoteErr       error
	Balances       []domain.BrokerCashBalance
	BalancesErr    error
	OrderErr       error
	FailSymbols    map[string]bool // symbols whose orders are rejected
	PlacedOrders   []PlacedOrder
	nextOrderID    int
}

// PlacedOrder records a single PlaceOrder call
type PlacedOrder struct {
	Symbol   string
	Side     string
	Quantity float64
}

// NewMockBrokerClient creates a connected mock broker with no quotes
func NewMockBrokerClient() *MockBrokerClient {
	return &MockBrokerClient{
		Connected:   true,
		Quotes:      make(map[string]float64),
		FailSymbols: make(map[string]bool),
	}
}

// IsConnected reports the scripted connection state
func (m *MockBrokerClient) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Connected
}

// Connect applies the scripted connect behavior
func (m *MockBrokerClient) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ConnectErr != nil {
		return m.ConnectErr
	}
	m.Connected = true
	return nil
}

// GetQuote returns the scripted quote for a symbol
func (m *MockBrokerClient) GetQuote(symbol string) (*domain.BrokerQuote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.QuoteErr != nil {
		return nil, m.QuoteErr
	}
	price, ok := m.Quotes[symbol]
	if !ok {
		return nil, fmt.Errorf("no quote for %s", symbol)
	}
	return &domain.BrokerQuote{Symbol: symbol, Price: price}, nil
}

// PlaceOrder records the order and returns a synthetic result
func (m *MockBrokerClient) PlaceOrder(symbol, side string, quantity float64) (*domain.BrokerOrderResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.OrderErr != nil {
		return nil, m.OrderErr
	}
	if m.FailSymbols[symbol] {
		return nil, fmt.Errorf("order rejected for %s", symbol)
	}
	m.PlacedOrders = append(m.PlacedOrders, PlacedOrder{Symbol: symbol, Side: side, Quantity: quantity})
	m.nextOrderID++
	return &domain.BrokerOrderResult{
		OrderID:  fmt.Sprintf("order-%d", m.nextOrderID),
		Symbol:   symbol,
		Side:     side,
		Quantity: quantity,
	}, nil
}

// GetCashBalances returns the scripted balances
func (m *MockBrokerClient) GetCashBalances() ([]domain.BrokerCashBalance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.BalancesErr != nil {
		return nil, m.BalancesErr
	}
	return m.Balances, nil
}

// MockSnapshotStore is a scriptable implementation of domain.SnapshotStore
type MockSnapshotStore struct {
	Before       *float64
	BeforeErr    error
	Earliest     *float64
	EarliestErr  error
	CurrentValue float64
	CurrentErr   error
}

// LatestSnapshotBefore returns the scripted previous-day value
func (m *MockSnapshotStore) LatestSnapshotBefore(date string) (*float64, error) {
	return m.Before, m.BeforeErr
}

// EarliestSnapshotOn returns the scripted same-day fallback value
func (m *MockSnapshotStore) EarliestSnapshotOn(date string) (*float64, error) {
	return m.Earliest, m.EarliestErr
}

// CurrentPortfolioValue returns the scripted live portfolio value
func (m *MockSnapshotStore) CurrentPortfolioValue() (float64, error) {
	return m.CurrentValue, m.CurrentErr
}

// Float64Ptr returns a pointer to v; fixture helper
func Float64Ptr(v float64) *float64 {
	return &v
}
