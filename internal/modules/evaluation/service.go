package evaluation

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/rebalancer/internal/domain"
	"github.com/aristath/rebalancer/internal/modules/rebalancing"
	"github.com/aristath/rebalancer/internal/modules/sizing"
)

// TradingGate classifies whether trading may proceed this cycle
type TradingGate interface {
	TradingStatus() domain.DailyPnLState
}

// AlertDetector scans a summary for concentration alerts
type AlertDetector interface {
	DetectAlerts(summary domain.PortfolioSummary) []domain.ConcentrationAlert
}

// BalanceFunder makes sure a currency balance can cover a buy
type BalanceFunder interface {
	EnsureBalance(currency string, minAmount float64, sourceCurrency string) (bool, error)
}

// CandidateSource supplies the scored buy candidates for a cycle
type CandidateSource interface {
	ActiveCandidates() ([]Candidate, error)
}

// TargetWeightSource supplies per-symbol target allocation weights
type TargetWeightSource interface {
	TargetWeights() (map[string]float64, error)
}

// Thresholds supplies the runtime-tunable cycle parameters
type Thresholds interface {
	MinTradeSize() float64
	CashThresholdMultiplier() float64
	BaseTargetSize() float64
	MinPositionSize() float64
}

// CycleService orchestrates one evaluation pass. The pipeline is
// synchronous and runs on a single worker per cycle; nothing here retries,
// that is the scheduler's job.
type CycleService struct {
	gate       TradingGate
	summaries  domain.PortfolioSummaryProvider
	detector   AlertDetector
	triggers   *rebalancing.TriggerChecker
	bands      *rebalancing.BandEvaluator
	sizer      sizing.Strategy
	funder     BalanceFunder
	rates      domain.RateSource
	candidates CandidateSource
	weights    TargetWeightSource
	thresholds Thresholds
	log        zerolog.Logger
}

// NewCycleService creates an evaluation cycle service
func NewCycleService(
	gate TradingGate,
	summaries domain.PortfolioSummaryProvider,
	detector AlertDetector,
	triggers *rebalancing.TriggerChecker,
	bands *rebalancing.BandEvaluator,
	sizer sizing.Strategy,
	funder BalanceFunder,
	rates domain.RateSource,
	candidates CandidateSource,
	weights TargetWeightSource,
	thresholds Thresholds,
	log zerolog.Logger,
) *CycleService {
	return &CycleService{
		gate:       gate,
		summaries:  summaries,
		detector:   detector,
		triggers:   triggers,
		bands:      bands,
		sizer:      sizer,
		funder:     funder,
		rates:      rates,
		candidates: candidates,
		weights:    weights,
		thresholds: thresholds,
		log:        log.With().Str("service", "evaluation_cycle").Logger(),
	}
}

// RunCycle executes one full evaluation pass and returns its result.
// Concentration alerts are always collected, even when the gate halts
// trading or no trigger fires, so the cycle is still useful for reporting.
func (s *CycleService) RunCycle() (result CycleResult, err error) {
	result = CycleResult{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
	defer func() {
		result.Duration = time.Since(result.StartedAt)
	}()

	log := s.log.With().Str("run_id", result.RunID).Logger()
	log.Info().Msg("Evaluation cycle started")

	result.TradingState = s.gate.TradingStatus()

	summary, err := s.summaries.GetPortfolioSummary()
	if err != nil {
		return result, err
	}

	result.Alerts = s.detector.DetectAlerts(summary)

	if result.TradingState.Status == domain.TradingStatusHalted {
		log.Warn().Str("reason", result.TradingState.Reason).Msg("Trading halted, cycle ends after alert scan")
		return result, nil
	}

	targetWeights, err := s.weights.TargetWeights()
	if err != nil {
		return result, err
	}

	trigger := s.triggers.CheckTriggers(
		summary.Positions,
		targetWeights,
		summary.TotalValue,
		summary.CashBalance,
		s.thresholds.CashThresholdMultiplier(),
		s.thresholds.MinTradeSize(),
	)
	result.Triggered = trigger.ShouldRebalance
	result.TriggerReason = trigger.Reason
	if !trigger.ShouldRebalance {
		log.Info().Str("reason", trigger.Reason).Msg("No rebalance trigger, cycle ends")
		return result, nil
	}

	result.Recommendations = s.buildRecommendations(summary, targetWeights, result.TradingState, log)

	log.Info().
		Int("recommendations", len(result.Recommendations)).
		Int("alerts", len(result.Alerts)).
		Msg("Evaluation cycle finished")
	return result, nil
}

// buildRecommendations walks held positions for band breaches, then scored
// candidates for new buys, sizing and funding each proposed trade.
func (s *CycleService) buildRecommendations(
	summary domain.PortfolioSummary,
	targetWeights map[string]float64,
	state domain.DailyPnLState,
	log zerolog.Logger,
) []TradeRecommendation {
	minTrade := s.thresholds.MinTradeSize()
	var recs []TradeRecommendation

	held := make(map[string]bool, len(summary.Positions))
	for _, pos := range summary.Positions {
		held[pos.Symbol] = true
		if summary.TotalValue <= 0 || pos.MarketValueEUR <= 0 {
			continue
		}

		currentWeight := pos.MarketValueEUR / summary.TotalValue
		targetWeight := targetWeights[pos.Symbol]
		if !s.bands.IsOutsideBand(currentWeight, targetWeight, nil, nil) {
			continue
		}

		driftValue := (currentWeight - targetWeight) * summary.TotalValue
		if driftValue > 0 {
			if !state.CanSell {
				log.Info().Str("symbol", pos.Symbol).Msg("Overweight position skipped, sells blocked")
				continue
			}
			if driftValue < minTrade {
				continue
			}
			recs = append(recs, TradeRecommendation{
				Symbol:    pos.Symbol,
				Side:      SideSell,
				AmountEUR: driftValue,
				Currency:  pos.Currency,
				Funded:    true,
				Reason:    "overweight beyond rebalance band",
			})
			continue
		}

		if !state.CanBuy {
			log.Info().Str("symbol", pos.Symbol).Msg("Underweight position skipped, buys blocked")
			continue
		}
		topUp := -driftValue
		if topUp < minTrade {
			continue
		}
		recs = append(recs, s.fundedBuy(pos.Symbol, pos.Currency, topUp, "underweight beyond rebalance band", log))
	}

	if state.CanBuy {
		recs = append(recs, s.candidateBuys(summary, held, minTrade, log)...)
	}

	return recs
}

// candidateBuys proposes new positions from the scored candidate list, in
// priority order, while idle cash can still cover a minimum trade.
func (s *CycleService) candidateBuys(
	summary domain.PortfolioSummary,
	held map[string]bool,
	minTrade float64,
	log zerolog.Logger,
) []TradeRecommendation {
	candidates, err := s.candidates.ActiveCandidates()
	if err != nil {
		log.Warn().Err(err).Msg("Candidate lookup failed, skipping new buys")
		return nil
	}
	if len(candidates) == 0 {
		return nil
	}

	scored := make([]domain.ScoredCandidate, len(candidates))
	currencyBySymbol := make(map[string]string, len(candidates))
	for i, c := range candidates {
		scored[i] = c.ScoredCandidate
		currencyBySymbol[c.Symbol] = c.Currency
	}
	ranked := sizing.RankByPriority(scored)

	baseSize := s.thresholds.BaseTargetSize()
	minSize := s.thresholds.MinPositionSize()
	remainingCash := summary.CashBalance

	var recs []TradeRecommendation
	for _, candidate := range ranked {
		if held[candidate.Symbol] {
			continue
		}
		if remainingCash < minTrade {
			break
		}

		size := s.sizer.Size(candidate, baseSize, minSize)
		if size < minTrade {
			continue
		}
		if size > remainingCash {
			size = remainingCash
		}

		recs = append(recs, s.fundedBuy(candidate.Symbol, currencyBySymbol[candidate.Symbol], size, "new position from scored candidates", log))
		remainingCash -= size
	}

	return recs
}

// fundedBuy builds a buy recommendation and runs the currency funding check
func (s *CycleService) fundedBuy(symbol, currency string, amount float64, reason string, log zerolog.Logger) TradeRecommendation {
	rec := TradeRecommendation{
		Symbol:    symbol,
		Side:      SideBuy,
		AmountEUR: amount,
		Currency:  currency,
		Reason:    reason,
	}

	if currency == "" || currency == "EUR" {
		rec.Funded = true
		return rec
	}

	// EnsureBalance wants the amount in the settlement currency
	rate, err := s.rates.GetRate("EUR", currency)
	if err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Str("currency", currency).Msg("No rate for funding check")
		return rec
	}

	funded, err := s.funder.EnsureBalance(currency, amount*rate, "EUR")
	if err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Str("currency", currency).Msg("Funding check failed")
	}
	rec.Funded = funded
	return rec
}
