package currency

import (
	"testing"

	helpers "github.com/aristath/rebalancer/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouterGetRate(t *testing.T) {
	broker := helpers.NewMockBrokerClient()
	broker.Quotes["EURUSD_T0.ITS"] = 1.10
	broker.Quotes["EURGBP_T0.ITS"] = 0.85
	broker.Quotes["HKD/EUR"] = 0.118

	router := NewRouter(broker, zerolog.Nop())

	t.Run("same currency is 1.0", func(t *testing.T) {
		rate, err := router.GetRate("EUR", "EUR")
		require.NoError(t, err)
		assert.Equal(t, 1.0, rate)
	})

	t.Run("direct symbol", func(t *testing.T) {
		rate, err := router.GetRate("EUR", "USD")
		require.NoError(t, err)
		assert.InDelta(t, 1.10, rate, 1e-9)
	})

	t.Run("inverse symbol", func(t *testing.T) {
		rate, err := router.GetRate("USD", "EUR")
		require.NoError(t, err)
		assert.InDelta(t, 1.0/1.10, rate, 1e-9)
	})

	t.Run("two hop multiplies leg rates", func(t *testing.T) {
		// GBP->EUR = 1/0.85, EUR->HKD = 1/0.118
		rate, err := router.GetRate("GBP", "HKD")
		require.NoError(t, err)
		assert.InDelta(t, (1.0/0.85)*(1.0/0.118), rate, 1e-9)
	})

	t.Run("two hop fails when a leg quote is missing", func(t *testing.T) {
		delete(broker.Quotes, "HKD/EUR")
		defer func() { broker.Quotes["HKD/EUR"] = 0.118 }()

		_, err := router.GetRate("GBP", "HKD")
		assert.Error(t, err)
	})

	t.Run("unknown pair fails", func(t *testing.T) {
		_, err := router.GetRate("EUR", "JPY")
		assert.Error(t, err)
	})
}

func TestRouterGetRateDisconnected(t *testing.T) {
	broker := helpers.NewMockBrokerClient()
	broker.Connected = false

	router := NewRouter(broker, zerolog.Nop())

	_, err := router.GetRate("EUR", "USD")
	assert.Error(t, err)
}

func TestRouterGetRateInvalidPrice(t *testing.T) {
	broker := helpers.NewMockBrokerClient()
	broker.Quotes["EURUSD_T0.ITS"] = 0

	router := NewRouter(broker, zerolog.Nop())

	_, err := router.GetRate("EUR", "USD")
	assert.Error(t, err)
}
