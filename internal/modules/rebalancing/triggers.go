package rebalancing

import (
	"fmt"

	"github.com/aristath/rebalancer/internal/domain"
	"github.com/rs/zerolog"
)

// TriggerResult is the outcome of a rebalancing trigger check
type TriggerResult struct {
	ShouldRebalance bool
	Reason          string
}

// TriggerChecker checks if portfolio conditions warrant an event-driven
// evaluation cycle: a position outside its rebalance band, or enough idle
// cash piled up to be worth deploying.
type TriggerChecker struct {
	bands *BandEvaluator
	log   zerolog.Logger
}

// NewTriggerChecker creates a trigger checker
func NewTriggerChecker(bands *BandEvaluator, log zerolog.Logger) *TriggerChecker {
	return &TriggerChecker{
		bands: bands,
		log:   log.With().Str("component", "rebalancing_triggers").Logger(),
	}
}

// CheckTriggers evaluates drift and cash-accumulation triggers.
// targetWeights maps symbol to target allocation weight (0.0 to 1.0);
// symbols without a target default to 0.
func (tc *TriggerChecker) CheckTriggers(
	positions []domain.Position,
	targetWeights map[string]float64,
	totalPortfolioValue float64,
	cashBalance float64,
	cashThresholdMultiplier float64,
	minTradeSize float64,
) TriggerResult {
	if drift := tc.checkPositionDrift(positions, targetWeights, totalPortfolioValue); drift.ShouldRebalance {
		return drift
	}

	return tc.checkCashAccumulation(cashBalance, cashThresholdMultiplier, minTradeSize)
}

// checkPositionDrift looks for any position outside its rebalance band
func (tc *TriggerChecker) checkPositionDrift(
	positions []domain.Position,
	targetWeights map[string]float64,
	totalPortfolioValue float64,
) TriggerResult {
	if len(positions) == 0 || totalPortfolioValue <= 0 {
		return TriggerResult{Reason: "no positions or zero portfolio value"}
	}
	if len(targetWeights) == 0 {
		return TriggerResult{Reason: "no target allocations provided"}
	}

	for _, position := range positions {
		if position.MarketValueEUR <= 0 {
			continue
		}

		currentWeight := position.MarketValueEUR / totalPortfolioValue
		targetWeight := targetWeights[position.Symbol]

		if tc.bands.IsOutsideBand(currentWeight, targetWeight, nil, nil) {
			tc.log.Info().
				Str("symbol", position.Symbol).
				Float64("current_weight", currentWeight).
				Float64("target_weight", targetWeight).
				Msg("Position outside rebalance band")

			return TriggerResult{
				ShouldRebalance: true,
				Reason: fmt.Sprintf("%s outside rebalance band (current %.1f%%, target %.1f%%)",
					position.Symbol, currentWeight*100, targetWeight*100),
			}
		}
	}

	return TriggerResult{Reason: "all positions within bands"}
}

// checkCashAccumulation triggers when idle cash reaches a multiple of the
// minimum trade size
func (tc *TriggerChecker) checkCashAccumulation(cashBalance, multiplier, minTradeSize float64) TriggerResult {
	threshold := multiplier * minTradeSize
	if threshold > 0 && cashBalance >= threshold {
		tc.log.Info().
			Float64("cash", cashBalance).
			Float64("threshold", threshold).
			Msg("Cash accumulation trigger")

		return TriggerResult{
			ShouldRebalance: true,
			Reason:          fmt.Sprintf("cash balance %.2f above threshold %.2f", cashBalance, threshold),
		}
	}

	return TriggerResult{Reason: "no triggers met"}
}
