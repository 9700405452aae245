// Package evaluation runs the per-cycle decision pipeline: trading gate,
// rebalance triggers, band checks, position sizing, and currency funding.
package evaluation

import (
	"time"

	"github.com/aristath/rebalancer/internal/domain"
)

// Trade sides.
const (
	SideBuy  = "buy"
	SideSell = "sell"
)

// Candidate is a scored security eligible for buying, with the settlement
// currency the funding step needs.
type Candidate struct {
	domain.ScoredCandidate
	Currency string
}

// TradeRecommendation is one proposed trade out of an evaluation cycle.
// Recommendations are advisory; execution is outside this package.
type TradeRecommendation struct {
	Symbol    string  `json:"symbol"`
	Side      string  `json:"side"`
	AmountEUR float64 `json:"amount_eur"`
	Currency  string  `json:"currency"`
	Funded    bool    `json:"funded"`
	Reason    string  `json:"reason"`
}

// CycleResult summarizes one evaluation run.
type CycleResult struct {
	RunID           string                      `json:"run_id"`
	StartedAt       time.Time                   `json:"started_at"`
	Duration        time.Duration               `json:"duration"`
	TradingState    domain.DailyPnLState        `json:"trading_state"`
	Triggered       bool                        `json:"triggered"`
	TriggerReason   string                      `json:"trigger_reason"`
	Alerts          []domain.ConcentrationAlert `json:"alerts"`
	Recommendations []TradeRecommendation       `json:"recommendations"`
}
