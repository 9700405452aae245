package portfolio

import (
	"errors"
	"testing"

	"github.com/aristath/rebalancer/internal/domain"
	helpers "github.com/aristath/rebalancer/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedRates struct {
	rates map[string]float64
}

func (f *fixedRates) GetRate(from, to string) (float64, error) {
	if rate, ok := f.rates[from]; ok {
		return rate, nil
	}
	return 0, errors.New("no rate")
}

func TestCashBalanceEUR(t *testing.T) {
	client := &helpers.MockBrokerClient{
		Connected: true,
		Balances: []domain.BrokerCashBalance{
			{Currency: "EUR", Amount: 1000},
			{Currency: "USD", Amount: 500},
			{Currency: "GBP", Amount: 0},
		},
	}
	rates := &fixedRates{rates: map[string]float64{"EUR": 1.0, "USD": 0.92}}
	svc := NewBrokerCashService(client, rates, zerolog.Nop())

	total, err := svc.CashBalanceEUR()
	require.NoError(t, err)
	assert.InDelta(t, 1460, total, 1e-9, "1000 EUR + 500 USD at 0.92, zero GBP skipped")
}

func TestCashBalanceEURMissingRate(t *testing.T) {
	client := &helpers.MockBrokerClient{
		Connected: true,
		Balances: []domain.BrokerCashBalance{
			{Currency: "HKD", Amount: 100},
		},
	}
	svc := NewBrokerCashService(client, &fixedRates{}, zerolog.Nop())

	_, err := svc.CashBalanceEUR()
	assert.Error(t, err)
}

func TestCashBalanceEURBrokerError(t *testing.T) {
	client := &helpers.MockBrokerClient{
		BalancesErr: errors.New("disconnected"),
	}
	svc := NewBrokerCashService(client, &fixedRates{}, zerolog.Nop())

	_, err := svc.CashBalanceEUR()
	assert.Error(t, err)
}
