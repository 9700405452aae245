package evaluation

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/rebalancer/internal/domain"
	"github.com/aristath/rebalancer/internal/modules/rebalancing"
	"github.com/aristath/rebalancer/internal/modules/sizing"
)

type stubGate struct {
	state domain.DailyPnLState
}

func (s *stubGate) TradingStatus() domain.DailyPnLState { return s.state }

type stubSummaries struct {
	summary domain.PortfolioSummary
	err     error
}

func (s *stubSummaries) GetPortfolioSummary() (domain.PortfolioSummary, error) {
	return s.summary, s.err
}

type stubDetector struct {
	alerts []domain.ConcentrationAlert
}

func (s *stubDetector) DetectAlerts(domain.PortfolioSummary) []domain.ConcentrationAlert {
	return s.alerts
}

type stubFunder struct {
	funded   bool
	err      error
	requests []fundRequest
}

type fundRequest struct {
	currency string
	amount   float64
}

func (s *stubFunder) EnsureBalance(currency string, minAmount float64, sourceCurrency string) (bool, error) {
	s.requests = append(s.requests, fundRequest{currency, minAmount})
	return s.funded, s.err
}

type stubRates struct {
	rate float64
	err  error
}

func (s *stubRates) GetRate(from, to string) (float64, error) { return s.rate, s.err }

type stubCandidates struct {
	candidates []Candidate
	err        error
}

func (s *stubCandidates) ActiveCandidates() ([]Candidate, error) {
	return s.candidates, s.err
}

type stubWeights struct {
	weights map[string]float64
	err     error
}

func (s *stubWeights) TargetWeights() (map[string]float64, error) { return s.weights, s.err }

type stubThresholds struct{}

func (stubThresholds) MinTradeSize() float64            { return 500 }
func (stubThresholds) CashThresholdMultiplier() float64 { return 2.0 }
func (stubThresholds) BaseTargetSize() float64          { return 1000 }
func (stubThresholds) MinPositionSize() float64         { return 100 }

type cycleFixture struct {
	gate       *stubGate
	summaries  *stubSummaries
	detector   *stubDetector
	funder     *stubFunder
	rates      *stubRates
	candidates *stubCandidates
	weights    *stubWeights
}

func normalState() domain.DailyPnLState {
	return domain.DailyPnLState{
		CanBuy:  true,
		CanSell: true,
		Status:  domain.TradingStatusNormal,
	}
}

func newFixture() *cycleFixture {
	return &cycleFixture{
		gate:       &stubGate{state: normalState()},
		summaries:  &stubSummaries{},
		detector:   &stubDetector{},
		funder:     &stubFunder{funded: true},
		rates:      &stubRates{rate: 1.1},
		candidates: &stubCandidates{},
		weights:    &stubWeights{weights: map[string]float64{}},
	}
}

func (f *cycleFixture) service() *CycleService {
	bands := rebalancing.NewBandEvaluator()
	return NewCycleService(
		f.gate,
		f.summaries,
		f.detector,
		rebalancing.NewTriggerChecker(bands, zerolog.Nop()),
		bands,
		sizing.NewRiskParitySizer(sizing.DefaultRiskParityConfig(), zerolog.Nop()),
		f.funder,
		f.rates,
		f.candidates,
		f.weights,
		stubThresholds{},
		zerolog.Nop(),
	)
}

func TestRunCycleHaltedStopsAfterAlerts(t *testing.T) {
	f := newFixture()
	f.gate.state = domain.DailyPnLState{Status: domain.TradingStatusHalted, Reason: "severe loss"}
	f.detector.alerts = []domain.ConcentrationAlert{{Type: "country", Name: "US"}}
	f.summaries.summary = domain.PortfolioSummary{TotalValue: 10000}

	result, err := f.service().RunCycle()
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Len(t, result.Alerts, 1)
	assert.False(t, result.Triggered)
	assert.Empty(t, result.Recommendations)
}

func TestRunCycleNoTrigger(t *testing.T) {
	f := newFixture()
	f.summaries.summary = domain.PortfolioSummary{
		TotalValue:  10000,
		CashBalance: 200,
		Positions: []domain.Position{
			{Symbol: "AAPL.US", Currency: "USD", MarketValueEUR: 5100},
		},
	}
	f.weights.weights = map[string]float64{"AAPL.US": 0.50}

	result, err := f.service().RunCycle()
	require.NoError(t, err)

	assert.False(t, result.Triggered)
	assert.Empty(t, result.Recommendations)
	assert.NotEmpty(t, result.TriggerReason)
}

func TestRunCycleSellsOverweightPosition(t *testing.T) {
	f := newFixture()
	// 62% actual vs 50% target, 12% deviation, well past the 5% band
	f.summaries.summary = domain.PortfolioSummary{
		TotalValue:  10000,
		CashBalance: 100,
		Positions: []domain.Position{
			{Symbol: "AAPL.US", Currency: "USD", MarketValueEUR: 6200},
		},
	}
	f.weights.weights = map[string]float64{"AAPL.US": 0.50}

	result, err := f.service().RunCycle()
	require.NoError(t, err)

	assert.True(t, result.Triggered)
	require.Len(t, result.Recommendations, 1)
	rec := result.Recommendations[0]
	assert.Equal(t, SideSell, rec.Side)
	assert.Equal(t, "AAPL.US", rec.Symbol)
	assert.InDelta(t, 1200, rec.AmountEUR, 1e-9)
	assert.True(t, rec.Funded, "sells need no funding")
}

func TestRunCycleDipBuyingBlocksSells(t *testing.T) {
	f := newFixture()
	f.gate.state = domain.DailyPnLState{
		CanBuy:  true,
		CanSell: false,
		Status:  domain.TradingStatusDipBuying,
	}
	f.summaries.summary = domain.PortfolioSummary{
		TotalValue:  10000,
		CashBalance: 100,
		Positions: []domain.Position{
			{Symbol: "AAPL.US", Currency: "USD", MarketValueEUR: 6200},
		},
	}
	f.weights.weights = map[string]float64{"AAPL.US": 0.50}

	result, err := f.service().RunCycle()
	require.NoError(t, err)

	assert.True(t, result.Triggered)
	assert.Empty(t, result.Recommendations)
}

func TestRunCycleTopsUpUnderweightPosition(t *testing.T) {
	f := newFixture()
	// 30% actual vs 50% target, 2000 EUR top-up
	f.summaries.summary = domain.PortfolioSummary{
		TotalValue:  10000,
		CashBalance: 300,
		Positions: []domain.Position{
			{Symbol: "AAPL.US", Currency: "USD", MarketValueEUR: 3000},
		},
	}
	f.weights.weights = map[string]float64{"AAPL.US": 0.50}

	result, err := f.service().RunCycle()
	require.NoError(t, err)

	require.Len(t, result.Recommendations, 1)
	rec := result.Recommendations[0]
	assert.Equal(t, SideBuy, rec.Side)
	assert.InDelta(t, 2000, rec.AmountEUR, 1e-9)
	assert.True(t, rec.Funded)

	// Funding request is converted into the settlement currency
	require.Len(t, f.funder.requests, 1)
	assert.Equal(t, "USD", f.funder.requests[0].currency)
	assert.InDelta(t, 2200, f.funder.requests[0].amount, 1e-9)
}

func TestRunCycleBuysNewCandidatesFromCash(t *testing.T) {
	f := newFixture()
	// Cash accumulation trigger: 2500 >= 2 * 500
	f.summaries.summary = domain.PortfolioSummary{
		TotalValue:  10000,
		CashBalance: 2500,
	}
	f.candidates.candidates = []Candidate{
		{ScoredCandidate: domain.ScoredCandidate{Symbol: "SAP.DE", StockScore: 0.9, Multiplier: 1.0}, Currency: "EUR"},
		{ScoredCandidate: domain.ScoredCandidate{Symbol: "AAPL.US", StockScore: 0.6, Multiplier: 1.0}, Currency: "USD"},
	}

	result, err := f.service().RunCycle()
	require.NoError(t, err)

	assert.True(t, result.Triggered)
	require.NotEmpty(t, result.Recommendations)
	assert.Equal(t, "SAP.DE", result.Recommendations[0].Symbol, "highest priority first")
	for _, rec := range result.Recommendations {
		assert.Equal(t, SideBuy, rec.Side)
		assert.GreaterOrEqual(t, rec.AmountEUR, 500.0)
	}
}

func TestRunCycleCandidateErrorSkipsNewBuys(t *testing.T) {
	f := newFixture()
	f.summaries.summary = domain.PortfolioSummary{
		TotalValue:  10000,
		CashBalance: 2500,
	}
	f.candidates.err = errors.New("universe unavailable")

	result, err := f.service().RunCycle()
	require.NoError(t, err)
	assert.True(t, result.Triggered)
	assert.Empty(t, result.Recommendations)
}

func TestRunCycleSummaryErrorPropagates(t *testing.T) {
	f := newFixture()
	f.summaries.err = errors.New("db locked")

	_, err := f.service().RunCycle()
	assert.Error(t, err)
}

func TestRunCycleUnfundedBuyReported(t *testing.T) {
	f := newFixture()
	f.funder.funded = false
	f.funder.err = errors.New("insufficient EUR balance")
	f.summaries.summary = domain.PortfolioSummary{
		TotalValue:  10000,
		CashBalance: 300,
		Positions: []domain.Position{
			{Symbol: "AAPL.US", Currency: "USD", MarketValueEUR: 3000},
		},
	}
	f.weights.weights = map[string]float64{"AAPL.US": 0.50}

	result, err := f.service().RunCycle()
	require.NoError(t, err)

	require.Len(t, result.Recommendations, 1)
	assert.False(t, result.Recommendations[0].Funded)
}
