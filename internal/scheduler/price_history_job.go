package scheduler

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/rebalancer/internal/domain"
)

// SymbolSource lists the instruments whose prices should be tracked
type SymbolSource interface {
	ActiveSymbols() ([]string, error)
}

// CloseRecorder persists one daily closing price per symbol
type CloseRecorder interface {
	RecordClose(symbol, date string, close float64) error
}

// PriceHistoryJob records a daily close for every active security so
// volatility can be estimated for securities the feed gives no figure for.
// A failed quote skips that symbol; the rest still get recorded.
type PriceHistoryJob struct {
	broker  domain.BrokerClient
	symbols SymbolSource
	closes  CloseRecorder
	now     func() time.Time
	log     zerolog.Logger
}

// NewPriceHistoryJob creates the price history job
func NewPriceHistoryJob(broker domain.BrokerClient, symbols SymbolSource, closes CloseRecorder, log zerolog.Logger) *PriceHistoryJob {
	return &PriceHistoryJob{
		broker:  broker,
		symbols: symbols,
		closes:  closes,
		now:     time.Now,
		log:     log.With().Str("job", "price_history").Logger(),
	}
}

// Name returns the job name
func (j *PriceHistoryJob) Name() string {
	return "price_history"
}

// Run records one close per active symbol
func (j *PriceHistoryJob) Run() error {
	symbols, err := j.symbols.ActiveSymbols()
	if err != nil {
		return err
	}

	date := j.now().Format("2006-01-02")
	recorded := 0
	for _, symbol := range symbols {
		quote, err := j.broker.GetQuote(symbol)
		if err != nil {
			j.log.Warn().Err(err).Str("symbol", symbol).Msg("Quote failed, close not recorded")
			continue
		}
		if quote.Price <= 0 {
			continue
		}
		if err := j.closes.RecordClose(symbol, date, quote.Price); err != nil {
			j.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to record close")
			continue
		}
		recorded++
	}

	j.log.Info().Int("recorded", recorded).Int("symbols", len(symbols)).Msg("Daily closes recorded")
	return nil
}
