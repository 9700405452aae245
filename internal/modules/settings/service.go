package settings

import (
	"github.com/rs/zerolog"
)

// Setting keys used by the decision components. All are optional; the
// compiled-in defaults below apply when a key is absent.
const (
	KeySellHaltPct              = "daily_pnl_sell_halt_pct"
	KeyFullHaltPct              = "daily_pnl_full_halt_pct"
	KeyMaxCountryConcentration  = "max_country_concentration"
	KeyMaxSectorConcentration   = "max_sector_concentration"
	KeyMaxPositionConcentration = "max_position_concentration"
	KeyCountryAlertThreshold    = "country_alert_threshold"
	KeySectorAlertThreshold     = "sector_alert_threshold"
	KeyPositionAlertThreshold   = "position_alert_threshold"
	KeyMinTradeSize             = "min_trade_size"
	KeyCashThresholdMultiplier  = "cash_threshold_multiplier"
	KeyBaseTargetSize           = "base_target_size"
	KeyMinPositionSize          = "min_position_size"
	KeyMaxSizeFactor            = "max_size_factor"
	KeyTradingEnabled           = "trading_enabled"
)

// Compiled-in defaults for every tunable threshold
const (
	DefaultSellHaltPct              = 0.02
	DefaultFullHaltPct              = 0.05
	DefaultMaxCountryConcentration  = 0.35
	DefaultMaxSectorConcentration   = 0.30
	DefaultMaxPositionConcentration = 0.15
	DefaultCountryAlertThreshold    = 0.28
	DefaultSectorAlertThreshold     = 0.24
	DefaultPositionAlertThreshold   = 0.12
	DefaultMinTradeSize             = 500.0
	DefaultCashThresholdMultiplier  = 2.0
	DefaultBaseTargetSize           = 1000.0
	DefaultMinPositionSize          = 100.0
	DefaultMaxSizeFactor            = 1.2
)

// Service layers typed, default-aware accessors over the settings
// repository. Components read their thresholds through it at evaluation
// time, so database edits take effect on the next cycle.
type Service struct {
	repo *Repository
	log  zerolog.Logger
}

// NewService creates a settings service
func NewService(repo *Repository, log zerolog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With().Str("service", "settings").Logger(),
	}
}

// GetFloat returns a float setting or the given default
func (s *Service) GetFloat(key string, defaultValue float64) float64 {
	value, err := s.repo.GetFloat(key, defaultValue)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Settings lookup failed, using default")
		return defaultValue
	}
	return value
}

// GetBool returns a boolean setting or the given default
func (s *Service) GetBool(key string, defaultValue bool) bool {
	value, err := s.repo.GetBool(key, defaultValue)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Settings lookup failed, using default")
		return defaultValue
	}
	return value
}

// GetString returns a string setting or the given default
func (s *Service) GetString(key string, defaultValue string) string {
	value, err := s.repo.Get(key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Settings lookup failed, using default")
		return defaultValue
	}
	if value == nil {
		return defaultValue
	}
	return *value
}

// SellHaltPct returns the daily loss fraction beyond which sells stop
func (s *Service) SellHaltPct() float64 {
	return s.GetFloat(KeySellHaltPct, DefaultSellHaltPct)
}

// FullHaltPct returns the daily loss fraction beyond which all trading stops
func (s *Service) FullHaltPct() float64 {
	return s.GetFloat(KeyFullHaltPct, DefaultFullHaltPct)
}

// MinTradeSize returns the minimum trade size in EUR
func (s *Service) MinTradeSize() float64 {
	return s.GetFloat(KeyMinTradeSize, DefaultMinTradeSize)
}

// CashThresholdMultiplier returns the cash accumulation trigger multiplier
func (s *Service) CashThresholdMultiplier() float64 {
	return s.GetFloat(KeyCashThresholdMultiplier, DefaultCashThresholdMultiplier)
}

// BaseTargetSize returns the base position target size in EUR
func (s *Service) BaseTargetSize() float64 {
	return s.GetFloat(KeyBaseTargetSize, DefaultBaseTargetSize)
}

// MinPositionSize returns the minimum position size in EUR
func (s *Service) MinPositionSize() float64 {
	return s.GetFloat(KeyMinPositionSize, DefaultMinPositionSize)
}

// MaxSizeFactor returns the cap on a trade as a multiple of its base size
func (s *Service) MaxSizeFactor() float64 {
	return s.GetFloat(KeyMaxSizeFactor, DefaultMaxSizeFactor)
}

// MaxCountryConcentration returns the hard limit per country
func (s *Service) MaxCountryConcentration() float64 {
	return s.GetFloat(KeyMaxCountryConcentration, DefaultMaxCountryConcentration)
}

// MaxSectorConcentration returns the hard limit per sector
func (s *Service) MaxSectorConcentration() float64 {
	return s.GetFloat(KeyMaxSectorConcentration, DefaultMaxSectorConcentration)
}

// MaxPositionConcentration returns the hard limit per position
func (s *Service) MaxPositionConcentration() float64 {
	return s.GetFloat(KeyMaxPositionConcentration, DefaultMaxPositionConcentration)
}

// CountryAlertThreshold returns the reporting threshold per country
func (s *Service) CountryAlertThreshold() float64 {
	return s.GetFloat(KeyCountryAlertThreshold, DefaultCountryAlertThreshold)
}

// SectorAlertThreshold returns the reporting threshold per sector
func (s *Service) SectorAlertThreshold() float64 {
	return s.GetFloat(KeySectorAlertThreshold, DefaultSectorAlertThreshold)
}

// PositionAlertThreshold returns the reporting threshold per position
func (s *Service) PositionAlertThreshold() float64 {
	return s.GetFloat(KeyPositionAlertThreshold, DefaultPositionAlertThreshold)
}

// TradingEnabled reports whether automated trading is switched on
func (s *Service) TradingEnabled() bool {
	return s.GetBool(KeyTradingEnabled, false)
}
