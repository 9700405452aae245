package sizing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnualizedVolatility(t *testing.T) {
	t.Run("constant prices have zero volatility", func(t *testing.T) {
		closes := []float64{100, 100, 100, 100, 100}
		vol := AnnualizedVolatility(closes)
		require.NotNil(t, vol)
		assert.InDelta(t, 0.0, *vol, 1e-12)
	})

	t.Run("alternating prices have high volatility", func(t *testing.T) {
		closes := []float64{100, 110, 100, 110, 100, 110}
		vol := AnnualizedVolatility(closes)
		require.NotNil(t, vol)
		assert.Greater(t, *vol, 1.0)
	})

	t.Run("too few samples", func(t *testing.T) {
		assert.Nil(t, AnnualizedVolatility(nil))
		assert.Nil(t, AnnualizedVolatility([]float64{100}))
		assert.Nil(t, AnnualizedVolatility([]float64{100, 101}))
	})

	t.Run("non-positive prices are skipped", func(t *testing.T) {
		closes := []float64{100, 0, -5, 100}
		assert.Nil(t, AnnualizedVolatility(closes))
	})

	t.Run("annualization factor", func(t *testing.T) {
		// Daily stdev of log returns times sqrt(252)
		closes := []float64{100, 101, 100, 101, 100, 101, 100}
		vol := AnnualizedVolatility(closes)
		require.NotNil(t, vol)

		returns := make([]float64, 0)
		for i := 1; i < len(closes); i++ {
			returns = append(returns, math.Log(closes[i]/closes[i-1]))
		}
		var mean float64
		for _, r := range returns {
			mean += r
		}
		mean /= float64(len(returns))
		var ss float64
		for _, r := range returns {
			ss += (r - mean) * (r - mean)
		}
		daily := math.Sqrt(ss / float64(len(returns)-1))
		assert.InDelta(t, daily*math.Sqrt(252), *vol, 1e-12)
	})
}
