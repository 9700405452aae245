// Package universe stores the investable securities list with their scores
// and target weights. It feeds the evaluation cycle its buy candidates and
// the trigger checker its per-symbol targets.
package universe

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/rebalancer/internal/modules/evaluation"
	"github.com/aristath/rebalancer/internal/modules/sizing"
)

// closeHistoryDays is how many daily closes feed the volatility estimate
// when a security has no stored volatility.
const closeHistoryDays = 60

// Security is a stored universe entry
type Security struct {
	Symbol       string
	Name         string
	Country      string
	Industry     string
	Currency     string
	StockScore   float64
	Multiplier   float64
	Volatility   *float64
	TargetWeight float64
	Active       bool
}

// Repository handles universe database operations.
// Database: universe.db (securities table).
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a universe repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "universe").Logger(),
	}
}

// InitSchema creates the securities table when missing
func (r *Repository) InitSchema() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS securities (
			symbol        TEXT PRIMARY KEY,
			name          TEXT NOT NULL DEFAULT '',
			country       TEXT NOT NULL DEFAULT '',
			industry      TEXT NOT NULL DEFAULT '',
			currency      TEXT NOT NULL DEFAULT 'EUR',
			stock_score   REAL NOT NULL DEFAULT 0,
			multiplier    REAL NOT NULL DEFAULT 1,
			volatility    REAL,
			target_weight REAL NOT NULL DEFAULT 0,
			active        INTEGER NOT NULL DEFAULT 1,
			updated_at    INTEGER NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create securities table: %w", err)
	}

	_, err = r.db.Exec(`
		CREATE TABLE IF NOT EXISTS price_history (
			symbol TEXT NOT NULL,
			date   TEXT NOT NULL,
			close  REAL NOT NULL,
			PRIMARY KEY (symbol, date)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create price_history table: %w", err)
	}
	return nil
}

// RecordClose stores a daily closing price, replacing any earlier close
// recorded for the same symbol and date
func (r *Repository) RecordClose(symbol, date string, close float64) error {
	_, err := r.db.Exec(`
		INSERT INTO price_history (symbol, date, close)
		VALUES (?, ?, ?)
		ON CONFLICT(symbol, date) DO UPDATE SET close = excluded.close
	`, symbol, date, close)
	if err != nil {
		return fmt.Errorf("failed to record close for %s: %w", symbol, err)
	}
	return nil
}

// RecentCloses returns up to closeHistoryDays daily closes for a symbol in
// chronological order
func (r *Repository) RecentCloses(symbol string) ([]float64, error) {
	rows, err := r.db.Query(`
		SELECT close FROM (
			SELECT date, close FROM price_history
			WHERE symbol = ?
			ORDER BY date DESC
			LIMIT ?
		)
		ORDER BY date ASC
	`, symbol, closeHistoryDays)
	if err != nil {
		return nil, fmt.Errorf("failed to query closes for %s: %w", symbol, err)
	}
	defer rows.Close()

	var closes []float64
	for rows.Next() {
		var close float64
		if err := rows.Scan(&close); err != nil {
			return nil, fmt.Errorf("failed to scan close: %w", err)
		}
		closes = append(closes, close)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating closes: %w", err)
	}
	return closes, nil
}

// Upsert inserts or updates a security keyed by symbol
func (r *Repository) Upsert(sec Security) error {
	active := 0
	if sec.Active {
		active = 1
	}
	_, err := r.db.Exec(`
		INSERT INTO securities (symbol, name, country, industry, currency,
			stock_score, multiplier, volatility, target_weight, active, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET
			name = excluded.name,
			country = excluded.country,
			industry = excluded.industry,
			currency = excluded.currency,
			stock_score = excluded.stock_score,
			multiplier = excluded.multiplier,
			volatility = excluded.volatility,
			target_weight = excluded.target_weight,
			active = excluded.active,
			updated_at = excluded.updated_at
	`, sec.Symbol, sec.Name, sec.Country, sec.Industry, sec.Currency,
		sec.StockScore, sec.Multiplier, sec.Volatility, sec.TargetWeight,
		active, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to upsert security %s: %w", sec.Symbol, err)
	}
	return nil
}

// ActiveCandidates returns the active securities as scored buy candidates
func (r *Repository) ActiveCandidates() ([]evaluation.Candidate, error) {
	rows, err := r.db.Query(`
		SELECT symbol, name, country, industry, currency, stock_score,
			multiplier, volatility
		FROM securities
		WHERE active = 1
		ORDER BY symbol
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query active securities: %w", err)
	}
	defer rows.Close()

	var candidates []evaluation.Candidate
	for rows.Next() {
		var c evaluation.Candidate
		var volatility sql.NullFloat64
		if err := rows.Scan(
			&c.Symbol, &c.Name, &c.Country, &c.Industry, &c.Currency,
			&c.StockScore, &c.Multiplier, &volatility,
		); err != nil {
			return nil, fmt.Errorf("failed to scan security: %w", err)
		}
		if volatility.Valid {
			v := volatility.Float64
			c.Volatility = &v
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating securities: %w", err)
	}

	// Securities without a stored volatility get one estimated from their
	// recorded close history; too little history leaves it nil and the
	// sizers fall back to their configured default.
	for i := range candidates {
		if candidates[i].Volatility != nil {
			continue
		}
		closes, err := r.RecentCloses(candidates[i].Symbol)
		if err != nil {
			r.log.Warn().Err(err).Str("symbol", candidates[i].Symbol).
				Msg("Close history lookup failed, volatility unknown")
			continue
		}
		candidates[i].Volatility = sizing.AnnualizedVolatility(closes)
	}

	return candidates, nil
}

// ActiveSymbols returns the symbols of all active securities
func (r *Repository) ActiveSymbols() ([]string, error) {
	rows, err := r.db.Query(`SELECT symbol FROM securities WHERE active = 1 ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("failed to query active symbols: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		symbols = append(symbols, symbol)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating symbols: %w", err)
	}
	return symbols, nil
}

// TargetWeights returns symbol to target weight for active securities with
// a positive target
func (r *Repository) TargetWeights() (map[string]float64, error) {
	rows, err := r.db.Query(`
		SELECT symbol, target_weight FROM securities
		WHERE active = 1 AND target_weight > 0
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query target weights: %w", err)
	}
	defer rows.Close()

	weights := make(map[string]float64)
	for rows.Next() {
		var symbol string
		var weight float64
		if err := rows.Scan(&symbol, &weight); err != nil {
			return nil, fmt.Errorf("failed to scan target weight: %w", err)
		}
		weights[symbol] = weight
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating target weights: %w", err)
	}

	return weights, nil
}

// Deactivate marks a security as not investable without deleting its row
func (r *Repository) Deactivate(symbol string) error {
	_, err := r.db.Exec(
		"UPDATE securities SET active = 0, updated_at = ? WHERE symbol = ?",
		time.Now().Unix(), symbol,
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate security %s: %w", symbol, err)
	}
	return nil
}

