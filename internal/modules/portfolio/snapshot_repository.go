package portfolio

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/rebalancer/internal/domain"
)

// SnapshotRepository persists end-of-day portfolio values and serves the
// lookups the daily P&L gate needs. Live value is positions plus EUR cash.
// Database: portfolio.db (portfolio_snapshots table).
type SnapshotRepository struct {
	db        *sql.DB
	positions *PositionRepository
	cash      CashProvider
	log       zerolog.Logger
}

// CashProvider supplies the current EUR cash balance for live valuation
type CashProvider interface {
	CashBalanceEUR() (float64, error)
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(db *sql.DB, positions *PositionRepository, cash CashProvider, log zerolog.Logger) *SnapshotRepository {
	return &SnapshotRepository{
		db:        db,
		positions: positions,
		cash:      cash,
		log:       log.With().Str("repo", "snapshot").Logger(),
	}
}

var _ domain.SnapshotStore = (*SnapshotRepository)(nil)

// InitSchema creates the portfolio_snapshots table when missing
func (r *SnapshotRepository) InitSchema() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS portfolio_snapshots (
			snapshot_date TEXT NOT NULL,
			created_at    INTEGER NOT NULL,
			total_value   REAL NOT NULL,
			PRIMARY KEY (snapshot_date, created_at)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create portfolio_snapshots table: %w", err)
	}
	return nil
}

// Record stores a snapshot of the given total value for a date (YYYY-MM-DD)
func (r *SnapshotRepository) Record(date string, totalValue float64, createdAt int64) error {
	_, err := r.db.Exec(`
		INSERT INTO portfolio_snapshots (snapshot_date, created_at, total_value)
		VALUES (?, ?, ?)
		ON CONFLICT(snapshot_date, created_at) DO UPDATE SET
			total_value = excluded.total_value
	`, date, createdAt, totalValue)
	if err != nil {
		return fmt.Errorf("failed to record snapshot for %s: %w", date, err)
	}
	return nil
}

// LatestSnapshotBefore returns the total value of the most recent snapshot
// strictly before the given date, or nil when none exists
func (r *SnapshotRepository) LatestSnapshotBefore(date string) (*float64, error) {
	var value float64
	err := r.db.QueryRow(`
		SELECT total_value FROM portfolio_snapshots
		WHERE snapshot_date < ?
		ORDER BY snapshot_date DESC, created_at DESC
		LIMIT 1
	`, date).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot before %s: %w", date, err)
	}
	return &value, nil
}

// EarliestSnapshotOn returns the total value of the earliest snapshot taken
// on the given date, or nil when none exists
func (r *SnapshotRepository) EarliestSnapshotOn(date string) (*float64, error) {
	var value float64
	err := r.db.QueryRow(`
		SELECT total_value FROM portfolio_snapshots
		WHERE snapshot_date = ?
		ORDER BY created_at ASC
		LIMIT 1
	`, date).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot on %s: %w", date, err)
	}
	return &value, nil
}

// CurrentPortfolioValue returns the live total portfolio value in EUR,
// positions market value plus cash
func (r *SnapshotRepository) CurrentPortfolioValue() (float64, error) {
	positionsValue, err := r.positions.TotalMarketValue()
	if err != nil {
		return 0, err
	}

	cashBalance, err := r.cash.CashBalanceEUR()
	if err != nil {
		return 0, err
	}

	return positionsValue + cashBalance, nil
}
