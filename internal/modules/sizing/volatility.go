package sizing

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// tradingDaysPerYear is the annualization factor for daily returns
const tradingDaysPerYear = 252

// AnnualizedVolatility estimates annualized volatility from a series of
// daily closing prices. Returns nil when fewer than two usable returns
// exist, so callers fall back to their configured default.
func AnnualizedVolatility(closes []float64) *float64 {
	if len(closes) < 3 {
		return nil
	}

	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] <= 0 || closes[i] <= 0 {
			continue
		}
		returns = append(returns, math.Log(closes[i]/closes[i-1]))
	}
	if len(returns) < 2 {
		return nil
	}

	daily := stat.StdDev(returns, nil)
	if math.IsNaN(daily) {
		return nil
	}

	annualized := daily * math.Sqrt(tradingDaysPerYear)
	return &annualized
}
