package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/rebalancer/internal/domain"
	"github.com/aristath/rebalancer/internal/modules/evaluation"
)

// CycleRunner runs an evaluation cycle on demand
type CycleRunner interface {
	RunCycle() (evaluation.CycleResult, error)
}

// StatusSource reports the current trading gate classification
type StatusSource interface {
	TradingStatus() domain.DailyPnLState
}

// AlertSource produces the current concentration alerts
type AlertSource interface {
	DetectAlerts(summary domain.PortfolioSummary) []domain.ConcentrationAlert
}

// Handlers bundles the HTTP handlers and their collaborators
type Handlers struct {
	gate      StatusSource
	detector  AlertSource
	summaries domain.PortfolioSummaryProvider
	cycles    CycleRunner
	results   *evaluation.ResultStore
	log       zerolog.Logger
}

// NewHandlers creates the handler set
func NewHandlers(
	gate StatusSource,
	detector AlertSource,
	summaries domain.PortfolioSummaryProvider,
	cycles CycleRunner,
	results *evaluation.ResultStore,
	log zerolog.Logger,
) *Handlers {
	return &Handlers{
		gate:      gate,
		detector:  detector,
		summaries: summaries,
		cycles:    cycles,
		results:   results,
		log:       log.With().Str("handlers", "api").Logger(),
	}
}

// Register mounts all routes
func (h *Handlers) Register(r chi.Router) {
	r.Get("/api/health", h.handleHealth)
	r.Get("/api/trading/status", h.handleTradingStatus)
	r.Get("/api/alerts/concentration", h.handleConcentrationAlerts)
	r.Get("/api/portfolio/summary", h.handlePortfolioSummary)
	r.Get("/api/cycles", h.handleCycleHistory)
	r.Get("/api/cycles/latest", h.handleLatestCycle)
	r.Post("/api/cycles/run", h.handleRunCycle)
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	cpuAvg := 0.0
	if cpuPercent, err := cpu.Percent(100*time.Millisecond, false); err == nil && len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	} else if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
	}

	ramPercent := 0.0
	if memStat, err := mem.VirtualMemory(); err == nil {
		ramPercent = memStat.UsedPercent
	} else {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"cpu_percent": cpuAvg,
		"ram_percent": ramPercent,
		"time":        time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handlers) handleTradingStatus(w http.ResponseWriter, r *http.Request) {
	state := h.gate.TradingStatus()
	h.writeJSON(w, http.StatusOK, map[string]any{
		"pnl":      state.PnL,
		"can_buy":  state.CanBuy,
		"can_sell": state.CanSell,
		"status":   state.Status,
		"reason":   state.Reason,
	})
}

func (h *Handlers) handleConcentrationAlerts(w http.ResponseWriter, r *http.Request) {
	summary, err := h.summaries.GetPortfolioSummary()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}

	alerts := h.detector.DetectAlerts(summary)
	if alerts == nil {
		alerts = []domain.ConcentrationAlert{}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"alerts": alerts})
}

func (h *Handlers) handlePortfolioSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.summaries.GetPortfolioSummary()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

func (h *Handlers) handleCycleHistory(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{"cycles": h.results.All()})
}

func (h *Handlers) handleLatestCycle(w http.ResponseWriter, r *http.Request) {
	result, ok := h.results.Latest()
	if !ok {
		h.writeJSON(w, http.StatusNotFound, map[string]any{"error": "no cycles recorded yet"})
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) handleRunCycle(w http.ResponseWriter, r *http.Request) {
	h.log.Info().Msg("Manual evaluation cycle triggered")

	result, err := h.cycles.RunCycle()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}

	h.results.StoreResult(result)
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, err error) {
	h.log.Error().Err(err).Msg("Request failed")
	h.writeJSON(w, status, map[string]any{"error": err.Error()})
}
