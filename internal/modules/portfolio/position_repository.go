// Package portfolio persists holdings and end-of-day value snapshots, and
// assembles the portfolio summary the decision components consume.
package portfolio

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/rebalancer/internal/domain"
)

// PositionRecord is a stored holding with the classification fields the
// allocation breakdown needs.
type PositionRecord struct {
	Symbol         string
	Name           string
	Country        string
	Industry       string
	Quantity       float64
	Currency       string
	MarketValueEUR float64
	LastUpdated    int64
}

// PositionRepository handles position database operations.
// Database: portfolio.db (positions table).
type PositionRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewPositionRepository creates a new position repository
func NewPositionRepository(db *sql.DB, log zerolog.Logger) *PositionRepository {
	return &PositionRepository{
		db:  db,
		log: log.With().Str("repo", "position").Logger(),
	}
}

// InitSchema creates the positions table when missing
func (r *PositionRepository) InitSchema() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS positions (
			symbol           TEXT PRIMARY KEY,
			name             TEXT NOT NULL DEFAULT '',
			country          TEXT NOT NULL DEFAULT '',
			industry         TEXT NOT NULL DEFAULT '',
			quantity         REAL NOT NULL,
			currency         TEXT NOT NULL,
			market_value_eur REAL NOT NULL,
			last_updated     INTEGER NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create positions table: %w", err)
	}
	return nil
}

// GetAll returns all positions in symbol order
func (r *PositionRepository) GetAll() ([]PositionRecord, error) {
	rows, err := r.db.Query(`
		SELECT symbol, name, country, industry, quantity, currency,
			market_value_eur, last_updated
		FROM positions
		ORDER BY symbol
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	var positions []PositionRecord
	for rows.Next() {
		var pos PositionRecord
		if err := rows.Scan(
			&pos.Symbol, &pos.Name, &pos.Country, &pos.Industry,
			&pos.Quantity, &pos.Currency, &pos.MarketValueEUR, &pos.LastUpdated,
		); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, pos)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating positions: %w", err)
	}

	return positions, nil
}

// Upsert inserts or updates a position keyed by symbol
func (r *PositionRepository) Upsert(pos PositionRecord) error {
	_, err := r.db.Exec(`
		INSERT INTO positions (symbol, name, country, industry, quantity,
			currency, market_value_eur, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET
			name = excluded.name,
			country = excluded.country,
			industry = excluded.industry,
			quantity = excluded.quantity,
			currency = excluded.currency,
			market_value_eur = excluded.market_value_eur,
			last_updated = excluded.last_updated
	`, pos.Symbol, pos.Name, pos.Country, pos.Industry, pos.Quantity,
		pos.Currency, pos.MarketValueEUR, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to upsert position %s: %w", pos.Symbol, err)
	}
	return nil
}

// Delete removes a position
func (r *PositionRepository) Delete(symbol string) error {
	_, err := r.db.Exec("DELETE FROM positions WHERE symbol = ?", symbol)
	if err != nil {
		return fmt.Errorf("failed to delete position %s: %w", symbol, err)
	}
	return nil
}

// TotalMarketValue returns the summed EUR market value of all positions
func (r *PositionRepository) TotalMarketValue() (float64, error) {
	var total sql.NullFloat64
	err := r.db.QueryRow("SELECT SUM(market_value_eur) FROM positions").Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum position values: %w", err)
	}
	if !total.Valid {
		return 0, nil
	}
	return total.Float64, nil
}

// toDomain converts a stored record to the domain position shape
func (p PositionRecord) toDomain() domain.Position {
	return domain.Position{
		Symbol:         p.Symbol,
		Quantity:       p.Quantity,
		Currency:       p.Currency,
		MarketValueEUR: p.MarketValueEUR,
	}
}
