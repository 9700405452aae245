// Package trading holds the circuit breakers that gate trade execution.
package trading

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/rebalancer/internal/domain"
)

// GateConfig holds the daily loss thresholds. SellHaltPct must be below
// FullHaltPct; both are positive loss fractions.
type GateConfig struct {
	SellHaltPct float64 // Daily loss beyond which sells stop (e.g. 0.02)
	FullHaltPct float64 // Daily loss beyond which all trading stops (e.g. 0.05)
}

// DefaultGateConfig returns the production thresholds: sells stop at a 2%
// daily loss, everything stops at 5%.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		SellHaltPct: 0.02,
		FullHaltPct: 0.05,
	}
}

// DailyPnLGate classifies the trading day from the portfolio's daily P&L
// and answers whether buys and sells may proceed. Classification is pure
// recomputation on every call. Unknown P&L never blocks trading; the gate
// fails open for missing data and fails closed only on a confirmed severe
// loss.
type DailyPnLGate struct {
	cfg       GateConfig
	snapshots domain.SnapshotStore
	cache     StatusCache
	now       func() time.Time
	log       zerolog.Logger
}

// NewDailyPnLGate creates a daily P&L gate. A nil cache disables caching.
func NewDailyPnLGate(cfg GateConfig, snapshots domain.SnapshotStore, cache StatusCache, log zerolog.Logger) *DailyPnLGate {
	if cache == nil {
		cache = NopStatusCache{}
	}
	return &DailyPnLGate{
		cfg:       cfg,
		snapshots: snapshots,
		cache:     cache,
		now:       time.Now,
		log:       log.With().Str("service", "daily_pnl_gate").Logger(),
	}
}

// DailyPnL returns today's portfolio return as a signed fraction, or nil
// when it cannot be established. Start-of-day value is the most recent
// end-of-day snapshot strictly before today, falling back to today's own
// earliest snapshot.
func (g *DailyPnLGate) DailyPnL() *float64 {
	today := g.now().Format("2006-01-02")

	startValue, err := g.snapshots.LatestSnapshotBefore(today)
	if err != nil {
		g.log.Warn().Err(err).Msg("Failed to load previous snapshot, treating P&L as unknown")
		return nil
	}
	if startValue == nil {
		startValue, err = g.snapshots.EarliestSnapshotOn(today)
		if err != nil {
			g.log.Warn().Err(err).Msg("Failed to load today's snapshot, treating P&L as unknown")
			return nil
		}
	}
	if startValue == nil || *startValue <= 0 {
		return nil
	}

	currentValue, err := g.snapshots.CurrentPortfolioValue()
	if err != nil {
		g.log.Warn().Err(err).Msg("Failed to compute current value, treating P&L as unknown")
		return nil
	}
	if currentValue <= 0 {
		return nil
	}

	pnl := (currentValue - *startValue) / *startValue
	return &pnl
}

// TradingStatus classifies the day. Results may be served from the cache
// within its TTL; caching never changes the classification for an input.
func (g *DailyPnLGate) TradingStatus() domain.DailyPnLState {
	if state, ok := g.cache.Get(); ok {
		return state
	}

	state := g.classify()
	g.cache.Set(state)
	return state
}

// CanBuy reports whether buying is allowed right now, with a reason
func (g *DailyPnLGate) CanBuy() (bool, string) {
	state := g.TradingStatus()
	return state.CanBuy, state.Reason
}

// CanSell reports whether selling is allowed right now, with a reason
func (g *DailyPnLGate) CanSell() (bool, string) {
	state := g.TradingStatus()
	return state.CanSell, state.Reason
}

func (g *DailyPnLGate) classify() domain.DailyPnLState {
	pnl := g.DailyPnL()
	if pnl == nil {
		return domain.DailyPnLState{
			PnL:     nil,
			CanBuy:  true,
			CanSell: true,
			Status:  domain.TradingStatusUnknown,
			Reason:  "daily P&L unavailable, trading permitted",
		}
	}

	switch {
	case *pnl <= -g.cfg.FullHaltPct:
		g.log.Warn().Float64("pnl", *pnl).Msg("Daily loss breached full halt threshold")
		return domain.DailyPnLState{
			PnL:     pnl,
			CanBuy:  false,
			CanSell: false,
			Status:  domain.TradingStatusHalted,
			Reason:  fmt.Sprintf("daily loss %.2f%% breached halt threshold %.2f%%", *pnl*100, g.cfg.FullHaltPct*100),
		}
	case *pnl <= -g.cfg.SellHaltPct:
		g.log.Info().Float64("pnl", *pnl).Msg("Daily loss in dip-buying range, sells blocked")
		return domain.DailyPnLState{
			PnL:     pnl,
			CanBuy:  true,
			CanSell: false,
			Status:  domain.TradingStatusDipBuying,
			Reason:  fmt.Sprintf("daily loss %.2f%% blocks sells, buys allowed", *pnl*100),
		}
	default:
		return domain.DailyPnLState{
			PnL:     pnl,
			CanBuy:  true,
			CanSell: true,
			Status:  domain.TradingStatusNormal,
			Reason:  "daily P&L within normal range",
		}
	}
}
