// Package allocation scans portfolio summaries for exposures approaching
// hard concentration limits.
package allocation

import (
	"github.com/aristath/rebalancer/internal/domain"
	"github.com/rs/zerolog"
)

// ConcentrationConfig enumerates the hard limits and the alert thresholds
// set below them for each exposure dimension.
type ConcentrationConfig struct {
	MaxCountryConcentration  float64 // Hard limit per country
	MaxSectorConcentration   float64 // Hard limit per sector
	MaxPositionConcentration float64 // Hard limit per position

	CountryAlertThreshold  float64 // Report countries at or above this
	SectorAlertThreshold   float64 // Report sectors at or above this
	PositionAlertThreshold float64 // Report positions at or above this
}

// DefaultConcentrationConfig returns the production limits: 35% per
// country, 30% per sector, 15% per position, with alerts at 80% of each.
func DefaultConcentrationConfig() ConcentrationConfig {
	return ConcentrationConfig{
		MaxCountryConcentration:  0.35,
		MaxSectorConcentration:   0.30,
		MaxPositionConcentration: 0.15,
		CountryAlertThreshold:    0.28,
		SectorAlertThreshold:     0.24,
		PositionAlertThreshold:   0.12,
	}
}

// severityCriticalRatio - an exposure at or above this share of its hard
// limit is critical rather than a warning
const severityCriticalRatio = 0.90

// ConcentrationAlertService detects concentration limit alerts.
// It implements domain-level detection only; reporting is the caller's job.
type ConcentrationAlertService struct {
	cfg ConcentrationConfig
	log zerolog.Logger
}

// NewConcentrationAlertService creates a concentration alert service
func NewConcentrationAlertService(cfg ConcentrationConfig, log zerolog.Logger) *ConcentrationAlertService {
	return &ConcentrationAlertService{
		cfg: cfg,
		log: log.With().Str("service", "concentration_alerts").Logger(),
	}
}

// DetectAlerts scans a portfolio summary for exposures at or above their
// alert thresholds. Output order: country alerts, then sector alerts, then
// position alerts, each in input allocation order.
func (s *ConcentrationAlertService) DetectAlerts(summary domain.PortfolioSummary) []domain.ConcentrationAlert {
	var alerts []domain.ConcentrationAlert

	for _, alloc := range summary.CountryAllocations {
		if alloc.CurrentPct >= s.cfg.CountryAlertThreshold {
			alerts = append(alerts, domain.ConcentrationAlert{
				Type:              "country",
				Name:              alloc.Name,
				CurrentPct:        alloc.CurrentPct,
				LimitPct:          s.cfg.MaxCountryConcentration,
				AlertThresholdPct: s.cfg.CountryAlertThreshold,
				Severity:          calculateSeverity(alloc.CurrentPct, s.cfg.MaxCountryConcentration),
			})
		}
	}

	for _, alloc := range summary.IndustryAllocations {
		if alloc.CurrentPct >= s.cfg.SectorAlertThreshold {
			alerts = append(alerts, domain.ConcentrationAlert{
				Type:              "sector",
				Name:              alloc.Name,
				CurrentPct:        alloc.CurrentPct,
				LimitPct:          s.cfg.MaxSectorConcentration,
				AlertThresholdPct: s.cfg.SectorAlertThreshold,
				Severity:          calculateSeverity(alloc.CurrentPct, s.cfg.MaxSectorConcentration),
			})
		}
	}

	// Position concentration needs a usable total value
	if summary.TotalValue > 0 {
		for _, position := range summary.Positions {
			if position.MarketValueEUR <= 0 {
				continue
			}
			positionPct := position.MarketValueEUR / summary.TotalValue
			if positionPct >= s.cfg.PositionAlertThreshold {
				alerts = append(alerts, domain.ConcentrationAlert{
					Type:              "position",
					Name:              position.Symbol,
					CurrentPct:        positionPct,
					LimitPct:          s.cfg.MaxPositionConcentration,
					AlertThresholdPct: s.cfg.PositionAlertThreshold,
					Severity:          calculateSeverity(positionPct, s.cfg.MaxPositionConcentration),
				})
			}
		}
	}

	if len(alerts) > 0 {
		s.log.Info().Int("count", len(alerts)).Msg("Concentration alerts detected")
	}

	return alerts
}

// calculateSeverity grades an exposure against its hard limit.
// A non-positive limit cannot be graded and stays a warning.
func calculateSeverity(currentPct, limitPct float64) string {
	if limitPct <= 0 {
		return domain.SeverityWarning
	}
	if currentPct/limitPct >= severityCriticalRatio {
		return domain.SeverityCritical
	}
	return domain.SeverityWarning
}
