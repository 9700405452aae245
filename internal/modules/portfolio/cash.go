package portfolio

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/rebalancer/internal/domain"
)

// BrokerCashService reports the portfolio's cash position in EUR by
// converting each currency balance at the current rate.
type BrokerCashService struct {
	client domain.BrokerClient
	rates  domain.RateSource
	log    zerolog.Logger
}

// NewBrokerCashService creates a broker-backed cash service
func NewBrokerCashService(client domain.BrokerClient, rates domain.RateSource, log zerolog.Logger) *BrokerCashService {
	return &BrokerCashService{
		client: client,
		rates:  rates,
		log:    log.With().Str("service", "cash").Logger(),
	}
}

var _ CashProvider = (*BrokerCashService)(nil)

// CashBalanceEUR sums all cash balances converted to EUR. A balance whose
// rate cannot be resolved fails the whole lookup rather than undercounting
// silently.
func (s *BrokerCashService) CashBalanceEUR() (float64, error) {
	balances, err := s.client.GetCashBalances()
	if err != nil {
		return 0, fmt.Errorf("failed to get cash balances: %w", err)
	}

	var total float64
	for _, balance := range balances {
		if balance.Amount == 0 {
			continue
		}

		rate, err := s.rates.GetRate(balance.Currency, "EUR")
		if err != nil {
			return 0, fmt.Errorf("no EUR rate for %s balance: %w", balance.Currency, err)
		}
		total += balance.Amount * rate
	}

	return total, nil
}
