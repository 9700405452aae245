package currency

import (
	"fmt"
	"sync"

	"github.com/aristath/rebalancer/internal/domain"
	"github.com/rs/zerolog"
)

// ExchangeService executes currency conversions through the broker.
//
// The broker connection is a single logical handle, so Exchange and
// EnsureBalance are serialized with a mutex: two concurrent conversions
// against the same balances would race on funds.
type ExchangeService struct {
	client domain.BrokerClient
	router *Router
	log    zerolog.Logger

	mu sync.Mutex
}

// NewExchangeService creates a new currency exchange service
func NewExchangeService(client domain.BrokerClient, router *Router, log zerolog.Logger) *ExchangeService {
	return &ExchangeService{
		client: client,
		router: router,
		log:    log.With().Str("service", "currency_exchange").Logger(),
	}
}

// Exchange converts amount (in fromCurrency) into toCurrency.
//
// Fails fast on same-currency requests, non-positive amounts, and when the
// venue connection cannot be (re-)established. A two-hop conversion executes
// its legs sequentially, recomputing the running amount after each leg; if a
// leg fails, the remaining leg is not attempted and there is no compensating
// rollback - funds may be left in the intermediate currency.
func (s *ExchangeService) Exchange(fromCurrency, toCurrency string, amount float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.exchangeLocked(fromCurrency, toCurrency, amount)
}

func (s *ExchangeService) exchangeLocked(fromCurrency, toCurrency string, amount float64) error {
	if fromCurrency == toCurrency {
		s.log.Warn().Str("currency", fromCurrency).Msg("Same currency exchange requested")
		return fmt.Errorf("same currency exchange requested: %s", fromCurrency)
	}

	if amount <= 0 {
		s.log.Error().Float64("amount", amount).Msg("Invalid exchange amount")
		return fmt.Errorf("invalid exchange amount: %.2f", amount)
	}

	if err := s.ensureConnected(); err != nil {
		return err
	}

	path, err := FindPath(fromCurrency, toCurrency)
	if err != nil {
		return err
	}

	switch path.Kind {
	case PathDirect:
		return s.executeStep(path.Steps[0], amount)
	case PathTwoHop:
		return s.executeTwoHop(path, amount)
	}

	// PathSame is unreachable here, same-currency requests fail above
	return &NoPathError{From: fromCurrency, To: toCurrency}
}

// executeTwoHop executes both legs sequentially, converting the running
// amount after the first leg at that leg's current rate
func (s *ExchangeService) executeTwoHop(path Path, amount float64) error {
	currentAmount := amount

	for i, step := range path.Steps {
		if err := s.executeStep(step, currentAmount); err != nil {
			if i > 0 {
				// First leg already executed: funds now sit in the
				// intermediate currency. Accepted operational risk.
				s.log.Error().
					Str("stranded_currency", step.FromCurrency).
					Float64("stranded_amount", currentAmount).
					Msg("Second conversion leg failed after first leg executed")
			}
			return fmt.Errorf("conversion step %s->%s failed: %w", step.FromCurrency, step.ToCurrency, err)
		}

		rate, err := s.router.GetRate(step.FromCurrency, step.ToCurrency)
		if err == nil && rate > 0 {
			currentAmount = currentAmount * rate
		}
	}

	return nil
}

// executeStep places the FX order for a single conversion leg
func (s *ExchangeService) executeStep(step ConversionStep, amount float64) error {
	s.log.Info().
		Str("action", step.Action).
		Str("symbol", step.Symbol).
		Float64("amount", amount).
		Str("from", step.FromCurrency).
		Str("to", step.ToCurrency).
		Msg("Executing FX conversion")

	result, err := s.client.PlaceOrder(step.Symbol, step.Action, amount)
	if err != nil {
		return err
	}
	if result == nil {
		return fmt.Errorf("order for %s was not accepted", step.Symbol)
	}
	return nil
}

// EnsureBalance makes sure at least minAmount is available in currency,
// converting from sourceCurrency when the balance falls short.
//
// Returns true when the balance is already sufficient or the conversion
// succeeded. The converted amount carries a 2% buffer for rate drift and
// fees.
func (s *ExchangeService) EnsureBalance(currency string, minAmount float64, sourceCurrency string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if currency == sourceCurrency {
		return true, nil
	}

	if err := s.ensureConnected(); err != nil {
		return false, err
	}

	currentBalance, sourceBalance, err := s.getBalances(currency, sourceCurrency)
	if err != nil {
		return false, err
	}

	if currentBalance >= minAmount {
		s.log.Info().
			Str("currency", currency).
			Float64("balance", currentBalance).
			Float64("min_amount", minAmount).
			Msg("Sufficient balance")
		return true, nil
	}

	if sourceBalance < 0 {
		s.log.Error().
			Str("source_currency", sourceCurrency).
			Float64("source_balance", sourceBalance).
			Msg("Cannot convert: source currency has negative balance")
		return false, fmt.Errorf("source currency %s has negative balance: %.2f", sourceCurrency, sourceBalance)
	}

	needed := minAmount - currentBalance
	neededWithBuffer := needed * 1.02

	rate, err := s.router.GetRate(sourceCurrency, currency)
	if err != nil {
		s.log.Error().Err(err).Msgf("Could not get rate for %s/%s", sourceCurrency, currency)
		return false, err
	}

	sourceAmountNeeded := neededWithBuffer / rate

	if sourceBalance < sourceAmountNeeded {
		s.log.Warn().
			Str("source_currency", sourceCurrency).
			Float64("need", sourceAmountNeeded).
			Float64("have", sourceBalance).
			Msg("Insufficient source currency to convert")
		return false, fmt.Errorf("insufficient %s to convert: need %.2f, have %.2f",
			sourceCurrency, sourceAmountNeeded, sourceBalance)
	}

	s.log.Info().
		Float64("amount", sourceAmountNeeded).
		Str("from", sourceCurrency).
		Str("to", currency).
		Float64("needed", minAmount).
		Msg("Converting currency")

	if err := s.exchangeLocked(sourceCurrency, currency, sourceAmountNeeded); err != nil {
		s.log.Error().Err(err).Msgf("Failed to convert %s to %s", sourceCurrency, currency)
		return false, err
	}

	return true, nil
}

// ensureConnected verifies the venue connection, attempting one reconnect
func (s *ExchangeService) ensureConnected() error {
	if s.client.IsConnected() {
		return nil
	}

	s.log.Warn().Msg("Broker not connected, attempting reconnect")
	if err := s.client.Connect(); err != nil {
		return fmt.Errorf("broker connection failed: %w", err)
	}
	if !s.client.IsConnected() {
		return fmt.Errorf("broker not connected")
	}
	return nil
}

// getBalances returns target and source currency balances
func (s *ExchangeService) getBalances(currency, sourceCurrency string) (float64, float64, error) {
	balances, err := s.client.GetCashBalances()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get cash balances: %w", err)
	}

	var currentBalance, sourceBalance float64
	for _, bal := range balances {
		switch bal.Currency {
		case currency:
			currentBalance = bal.Amount
		case sourceCurrency:
			sourceBalance = bal.Amount
		}
	}

	return currentBalance, sourceBalance, nil
}
