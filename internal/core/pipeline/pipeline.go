package pipeline

import (
	"fmt"

	"github.com/pipeflow/pipeflow/internal/core/config"
	"github.com/pipeflow/pipeflow/internal/core/flow"
	imetrics "github.com/pipeflow/pipeflow/internal/infrastructure/metrics"
)

// Pipeline is an ordered, linear sequence of pipes sharing one flow pool
// and one config for the duration of a run. Composition only appends;
// pipes are never removed or reordered.
// PRINCIPLES:
// - KISS: A slice of pipes and a loop
// - SRP: Only responsible for sequencing, not computation
type Pipeline struct {
	pipes []*Pipe
}

// NewPipeline builds a pipeline from pipes in order.
func NewPipeline(pipes ...*Pipe) (*Pipeline, error) {
	if len(pipes) == 0 {
		return nil, ErrNoPipes
	}
	for i, p := range pipes {
		if p == nil {
			return nil, fmt.Errorf("pipe %d: %w", i, ErrNilPipe)
		}
	}
	return &Pipeline{pipes: append([]*Pipe(nil), pipes...)}, nil
}

// Then appends next in place and returns the same pipeline, so that
// p1.Then(p2).Then(p3) yields one pipeline of three pipes in order. A nil
// operand panics with ErrNilPipe.
func (pl *Pipeline) Then(next *Pipe) *Pipeline {
	if next == nil {
		panic(ErrNilPipe)
	}
	pl.pipes = append(pl.pipes, next)
	return pl
}

// Pipes returns the contained pipes in execution order.
func (pl *Pipeline) Pipes() []*Pipe {
	return append([]*Pipe(nil), pl.pipes...)
}

// Len returns the number of pipes.
func (pl *Pipeline) Len() int {
	return len(pl.pipes)
}

// Run executes every pipe in order with mode "run" against the given
// config and pool, creating an empty pool when none is supplied, and
// returns the pool for inspection. The run aborts on the first failing
// pipe; flow writes made by pipes that already completed remain in the
// pool (no transactional rollback).
func (pl *Pipeline) Run(cfg *config.Config, pool *flow.Pool) (*flow.Pool, error) {
	if pool == nil {
		pool = flow.NewPool()
	}
	imetrics.IncPipelineRuns()
	for _, p := range pl.pipes {
		if err := p.Run(pool, cfg, ModeRun); err != nil {
			return pool, err
		}
	}
	return pool, nil
}
