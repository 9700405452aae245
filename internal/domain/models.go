// Package domain contains the core value objects shared across modules.
// All types here are plain values created and consumed within a single
// evaluation pass; none hold back-references and none are shared-mutable
// across concurrent evaluations.
package domain

import (
	"math"
	"strings"
)

// ScoredCandidate is a security that survived the scoring cycle and is a
// candidate for a rebalancing trade. Immutable once produced per cycle.
type ScoredCandidate struct {
	Symbol     string
	Name       string
	Country    string
	Industry   string   // Comma-separated industry list as stored upstream
	StockScore float64  // Composite quality/opportunity/analyst/fit score in [0, 1]
	Volatility *float64 // Annualized stdev, nil when unknown
	Multiplier float64  // Manual priority weight, operator-editable

	// CombinedPriority = round(StockScore * Multiplier, 4).
	// Populated by sizing.RankByPriority; zero until then.
	CombinedPriority float64
}

// Industries parses the comma-separated industry string into an ordered list.
// Empty segments are dropped, order is preserved.
func (c ScoredCandidate) Industries() []string {
	if c.Industry == "" {
		return nil
	}
	parts := strings.Split(c.Industry, ",")
	industries := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			industries = append(industries, trimmed)
		}
	}
	return industries
}

// CalculateCombinedPriority returns StockScore * Multiplier rounded to 4
// decimal places.
func (c ScoredCandidate) CalculateCombinedPriority() float64 {
	return math.Round(c.StockScore*c.Multiplier*10000) / 10000
}

// Allocation categories.
const (
	CategoryCountry  = "country"
	CategoryIndustry = "industry"
)

// AllocationStatus represents current-vs-target allocation for one group.
// One per (category, name); regenerated on each portfolio summary build.
type AllocationStatus struct {
	Category     string  // "country" or "industry"
	Name         string  // Group name (e.g. "US", "Technology")
	TargetPct    float64 // Target weight as fraction of portfolio
	CurrentPct   float64 // Current weight as fraction of portfolio
	CurrentValue float64 // Current value in EUR
	Deviation    float64 // CurrentPct - TargetPct
}

// Position is a portfolio holding reduced to what the core needs.
type Position struct {
	Symbol         string
	Quantity       float64
	Currency       string
	MarketValueEUR float64
}

// PortfolioSummary is the complete allocation picture for one evaluation.
// Built fresh per evaluation; not persisted by this core.
type PortfolioSummary struct {
	TotalValue          float64
	CashBalance         float64
	CountryAllocations  []AllocationStatus
	IndustryAllocations []AllocationStatus
	Positions           []Position
}

// Alert severities.
const (
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// ConcentrationAlert reports an allocation approaching a hard exposure limit.
// Ephemeral, produced per detection run.
type ConcentrationAlert struct {
	Type              string  `json:"type"` // "country", "sector", "position"
	Name              string  `json:"name"`
	CurrentPct        float64 `json:"current_pct"`
	LimitPct          float64 `json:"limit_pct"`
	AlertThresholdPct float64 `json:"alert_threshold_pct"`
	Severity          string  `json:"severity"` // "warning" or "critical"
}

// Trading permission statuses produced by the daily P&L gate.
const (
	TradingStatusNormal    = "normal"
	TradingStatusDipBuying = "dip_buying"
	TradingStatusHalted    = "halted"
	TradingStatusUnknown   = "unknown"
)

// DailyPnLState classifies the trading day.
//
// Invariants: CanSell implies Status != halted; Status == halted implies
// neither CanBuy nor CanSell.
type DailyPnLState struct {
	PnL     *float64 `json:"pnl"` // Signed fraction, nil when unknown
	CanBuy  bool     `json:"can_buy"`
	CanSell bool     `json:"can_sell"`
	Status  string   `json:"status"`
	Reason  string   `json:"reason"`
}
