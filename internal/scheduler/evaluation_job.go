package scheduler

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/aristath/rebalancer/internal/modules/evaluation"
)

// ResultSink receives the result of each completed evaluation cycle
type ResultSink interface {
	StoreResult(result evaluation.CycleResult)
}

// EvaluationJob runs the evaluation cycle on schedule. Runs never overlap:
// if a cycle is still going when the next tick fires, the tick is skipped.
type EvaluationJob struct {
	cycles *evaluation.CycleService
	sink   ResultSink
	log    zerolog.Logger

	mu      sync.Mutex
	running bool
}

// NewEvaluationJob creates the evaluation cycle job
func NewEvaluationJob(cycles *evaluation.CycleService, sink ResultSink, log zerolog.Logger) *EvaluationJob {
	return &EvaluationJob{
		cycles: cycles,
		sink:   sink,
		log:    log.With().Str("job", "evaluation_cycle").Logger(),
	}
}

// Name returns the job name
func (j *EvaluationJob) Name() string {
	return "evaluation_cycle"
}

// Run executes one evaluation cycle
func (j *EvaluationJob) Run() error {
	j.mu.Lock()
	if j.running {
		j.mu.Unlock()
		j.log.Info().Msg("Previous cycle still running, skipping tick")
		return nil
	}
	j.running = true
	j.mu.Unlock()

	defer func() {
		j.mu.Lock()
		j.running = false
		j.mu.Unlock()
	}()

	result, err := j.cycles.RunCycle()
	if err != nil {
		return err
	}

	if j.sink != nil {
		j.sink.StoreResult(result)
	}
	return nil
}
