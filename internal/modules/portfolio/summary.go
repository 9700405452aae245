package portfolio

import (
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aristath/rebalancer/internal/domain"
)

// TargetProvider supplies allocation targets per category
type TargetProvider interface {
	CountryTargets() (map[string]float64, error)
	IndustryTargets() (map[string]float64, error)
}

// SummaryService builds the portfolio summary consumed by the
// concentration detector and the evaluation cycle. Allocations are
// regenerated from positions on every call.
type SummaryService struct {
	positions *PositionRepository
	targets   TargetProvider
	cash      CashProvider
	log       zerolog.Logger
}

// NewSummaryService creates a summary service
func NewSummaryService(positions *PositionRepository, targets TargetProvider, cash CashProvider, log zerolog.Logger) *SummaryService {
	return &SummaryService{
		positions: positions,
		targets:   targets,
		cash:      cash,
		log:       log.With().Str("service", "portfolio_summary").Logger(),
	}
}

var _ domain.PortfolioSummaryProvider = (*SummaryService)(nil)

// GetPortfolioSummary assembles a portfolio summary from stored positions,
// the cash balance, and allocation targets. A position with several
// industries counts its full value toward each of them.
func (s *SummaryService) GetPortfolioSummary() (domain.PortfolioSummary, error) {
	records, err := s.positions.GetAll()
	if err != nil {
		return domain.PortfolioSummary{}, err
	}

	cashBalance, err := s.cash.CashBalanceEUR()
	if err != nil {
		return domain.PortfolioSummary{}, err
	}

	var positionsValue float64
	countryValues := make(map[string]float64)
	industryValues := make(map[string]float64)
	positions := make([]domain.Position, 0, len(records))

	for _, rec := range records {
		positionsValue += rec.MarketValueEUR
		positions = append(positions, rec.toDomain())

		if rec.Country != "" {
			countryValues[rec.Country] += rec.MarketValueEUR
		}
		for _, industry := range splitIndustries(rec.Industry) {
			industryValues[industry] += rec.MarketValueEUR
		}
	}

	totalValue := positionsValue + cashBalance

	countryTargets, err := s.targets.CountryTargets()
	if err != nil {
		return domain.PortfolioSummary{}, err
	}
	industryTargets, err := s.targets.IndustryTargets()
	if err != nil {
		return domain.PortfolioSummary{}, err
	}

	return domain.PortfolioSummary{
		TotalValue:          totalValue,
		CashBalance:         cashBalance,
		CountryAllocations:  buildAllocations(domain.CategoryCountry, countryValues, countryTargets, totalValue),
		IndustryAllocations: buildAllocations(domain.CategoryIndustry, industryValues, industryTargets, totalValue),
		Positions:           positions,
	}, nil
}

// buildAllocations merges current values with targets into a status list.
// Groups with a target but no holdings still appear, at zero current
// weight, so underallocation is visible. Sorted by name for stable output.
func buildAllocations(category string, currentValues, targets map[string]float64, totalValue float64) []domain.AllocationStatus {
	names := make(map[string]struct{}, len(currentValues)+len(targets))
	for name := range currentValues {
		names[name] = struct{}{}
	}
	for name := range targets {
		names[name] = struct{}{}
	}

	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	allocations := make([]domain.AllocationStatus, 0, len(sorted))
	for _, name := range sorted {
		value := currentValues[name]
		var currentPct float64
		if totalValue > 0 {
			currentPct = value / totalValue
		}
		targetPct := targets[name]
		allocations = append(allocations, domain.AllocationStatus{
			Category:     category,
			Name:         name,
			TargetPct:    targetPct,
			CurrentPct:   currentPct,
			CurrentValue: value,
			Deviation:    currentPct - targetPct,
		})
	}

	return allocations
}

// splitIndustries parses a comma-separated industry field
func splitIndustries(industry string) []string {
	if industry == "" {
		return nil
	}
	parts := strings.Split(industry, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
