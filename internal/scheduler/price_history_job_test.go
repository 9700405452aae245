package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	helpers "github.com/aristath/rebalancer/internal/testing"
)

type stubSymbolSource struct {
	symbols []string
	err     error
}

func (s *stubSymbolSource) ActiveSymbols() ([]string, error) {
	return s.symbols, s.err
}

type recordedClose struct {
	symbol string
	date   string
	close  float64
}

type stubCloseRecorder struct {
	recorded []recordedClose
	err      error
}

func (r *stubCloseRecorder) RecordClose(symbol, date string, close float64) error {
	if r.err != nil {
		return r.err
	}
	r.recorded = append(r.recorded, recordedClose{symbol, date, close})
	return nil
}

func newPriceJobFixture() (*PriceHistoryJob, *helpers.MockBrokerClient, *stubSymbolSource, *stubCloseRecorder) {
	broker := helpers.NewMockBrokerClient()
	symbols := &stubSymbolSource{symbols: []string{"AAPL.US", "SAP.DE"}}
	closes := &stubCloseRecorder{}
	job := NewPriceHistoryJob(broker, symbols, closes, zerolog.Nop())
	job.now = func() time.Time {
		return time.Date(2026, 8, 31, 18, 0, 0, 0, time.UTC)
	}
	return job, broker, symbols, closes
}

func TestPriceHistoryJobRecordsQuotedCloses(t *testing.T) {
	job, broker, _, closes := newPriceJobFixture()
	broker.Quotes["AAPL.US"] = 182.5
	broker.Quotes["SAP.DE"] = 141.2

	require.NoError(t, job.Run())

	assert.Equal(t, []recordedClose{
		{"AAPL.US", "2026-08-31", 182.5},
		{"SAP.DE", "2026-08-31", 141.2},
	}, closes.recorded)
}

func TestPriceHistoryJobSkipsFailedQuotes(t *testing.T) {
	job, broker, _, closes := newPriceJobFixture()
	broker.Quotes["SAP.DE"] = 141.2

	require.NoError(t, job.Run())

	assert.Equal(t, []recordedClose{{"SAP.DE", "2026-08-31", 141.2}}, closes.recorded)
}

func TestPriceHistoryJobSkipsNonPositivePrices(t *testing.T) {
	job, broker, _, closes := newPriceJobFixture()
	broker.Quotes["AAPL.US"] = 0
	broker.Quotes["SAP.DE"] = 141.2

	require.NoError(t, job.Run())

	assert.Equal(t, []recordedClose{{"SAP.DE", "2026-08-31", 141.2}}, closes.recorded)
}

func TestPriceHistoryJobSymbolLookupFailure(t *testing.T) {
	job, _, symbols, closes := newPriceJobFixture()
	symbols.err = errors.New("universe unavailable")

	assert.Error(t, job.Run())
	assert.Empty(t, closes.recorded)
}
