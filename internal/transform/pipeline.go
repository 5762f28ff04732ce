package transform

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"schedule-transformer/pkg/logger"
)

// Pipeline is an ordered list of stages.
type Pipeline struct {
	stages []Stage
}

// NewPipeline creates a pipeline with the given stages.
func NewPipeline(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

// Add appends a stage.
func (p *Pipeline) Add(s Stage) {
	p.stages = append(p.stages, s)
}

// Last returns the most recently added stage, or nil.
func (p *Pipeline) Last() Stage {
	if len(p.stages) == 0 {
		return nil
	}

	return p.stages[len(p.stages)-1]
}

// Stages returns the stages in order.
func (p *Pipeline) Stages() []Stage {
	return append([]Stage(nil), p.stages...)
}

// Len returns the number of stages.
func (p *Pipeline) Len() int { return len(p.stages) }

// Run applies every stage in order. After each one the store is rekeyed
// and its caches are cleared. It returns the run id used in the logs.
func (p *Pipeline) Run(ctx context.Context, env *Env) (string, error) {
	runID := uuid.NewString()
	ctx = logger.WithRunID(ctx, runID)
	log := logger.FromContext(ctx).WithComponent("pipeline")

	log.Infow("pipeline started", "stages", len(p.stages))

	for i, s := range p.stages {
		start := time.Now()

		if err := s.Apply(ctx, env); err != nil {
			log.Errorw("stage failed", "stage", s.Name(), "index", i+1, "error", err)

			return runID, fmt.Errorf("stage %d (%s): %w", i+1, s.Name(), err)
		}

		if err := env.Store.Rekey(); err != nil {
			log.Errorw("stage left duplicate keys", "stage", s.Name(), "index", i+1, "error", err)

			return runID, fmt.Errorf("stage %d (%s): %w", i+1, s.Name(), err)
		}

		env.Store.ClearCaches()

		log.Infow("stage applied", "stage", s.Name(), "index", i+1, "elapsed", time.Since(start))
	}

	return runID, nil
}
