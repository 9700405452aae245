package allocation

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/rebalancer/internal/domain"
)

// Target categories stored in the allocation_targets table
const (
	CategoryCountry  = domain.CategoryCountry
	CategoryIndustry = domain.CategoryIndustry
)

// Repository handles allocation target database operations.
// Database: config.db (allocation_targets table).
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new allocation repository backed by config.db
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "allocation").Logger(),
	}
}

// InitSchema creates the allocation_targets table when missing
func (r *Repository) InitSchema() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS allocation_targets (
			category   TEXT NOT NULL,
			name       TEXT NOT NULL,
			target_pct REAL NOT NULL,
			updated_at INTEGER NOT NULL,
			PRIMARY KEY (category, name)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create allocation_targets table: %w", err)
	}
	return nil
}

// GetByCategory returns name -> target weight for one category, in stable
// name order
func (r *Repository) GetByCategory(category string) (map[string]float64, error) {
	rows, err := r.db.Query(
		"SELECT name, target_pct FROM allocation_targets WHERE category = ? ORDER BY name",
		category,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query allocation targets: %w", err)
	}
	defer rows.Close()

	result := make(map[string]float64)
	for rows.Next() {
		var name string
		var targetPct float64
		if err := rows.Scan(&name, &targetPct); err != nil {
			return nil, fmt.Errorf("failed to scan allocation target: %w", err)
		}
		result[name] = targetPct
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating allocation targets: %w", err)
	}

	return result, nil
}

// CountryTargets returns country targets
func (r *Repository) CountryTargets() (map[string]float64, error) {
	return r.GetByCategory(CategoryCountry)
}

// IndustryTargets returns industry targets
func (r *Repository) IndustryTargets() (map[string]float64, error) {
	return r.GetByCategory(CategoryIndustry)
}

// Upsert inserts or updates a target
func (r *Repository) Upsert(category, name string, targetPct float64) error {
	_, err := r.db.Exec(`
		INSERT INTO allocation_targets (category, name, target_pct, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(category, name) DO UPDATE SET
			target_pct = excluded.target_pct,
			updated_at = excluded.updated_at
	`, category, name, targetPct, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to upsert allocation target %s:%s: %w", category, name, err)
	}
	return nil
}

// Delete removes a target
func (r *Repository) Delete(category, name string) error {
	_, err := r.db.Exec(
		"DELETE FROM allocation_targets WHERE category = ? AND name = ?",
		category, name,
	)
	if err != nil {
		return fmt.Errorf("failed to delete allocation target %s:%s: %w", category, name, err)
	}
	return nil
}
