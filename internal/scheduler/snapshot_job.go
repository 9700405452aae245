package scheduler

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/rebalancer/internal/modules/portfolio"
)

// SnapshotJob records the current portfolio value so the daily P&L gate
// has a start-of-day reference the next morning.
type SnapshotJob struct {
	snapshots *portfolio.SnapshotRepository
	now       func() time.Time
	log       zerolog.Logger
}

// NewSnapshotJob creates the snapshot job
func NewSnapshotJob(snapshots *portfolio.SnapshotRepository, log zerolog.Logger) *SnapshotJob {
	return &SnapshotJob{
		snapshots: snapshots,
		now:       time.Now,
		log:       log.With().Str("job", "portfolio_snapshot").Logger(),
	}
}

// Name returns the job name
func (j *SnapshotJob) Name() string {
	return "portfolio_snapshot"
}

// Run captures one snapshot
func (j *SnapshotJob) Run() error {
	value, err := j.snapshots.CurrentPortfolioValue()
	if err != nil {
		return err
	}

	now := j.now()
	if err := j.snapshots.Record(now.Format("2006-01-02"), value, now.Unix()); err != nil {
		return err
	}

	j.log.Info().Float64("total_value", value).Msg("Portfolio snapshot recorded")
	return nil
}
