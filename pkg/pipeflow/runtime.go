package pipeflow

import (
	"context"

	memory "github.com/pipeflow/pipeflow/internal/adapters/repository/memory"
	"github.com/pipeflow/pipeflow/internal/app/dto"
	"github.com/pipeflow/pipeflow/internal/app/usecases"
	"github.com/pipeflow/pipeflow/internal/core/config"
	"github.com/pipeflow/pipeflow/internal/core/flow"
	"github.com/pipeflow/pipeflow/internal/core/pipeline"
	"github.com/pipeflow/pipeflow/internal/core/trace"
)

// Re-export core types for convenience
type Pool = flow.Pool
type Config = config.Config
type Pipe = pipeline.Pipe
type Pipeline = pipeline.Pipeline
type Computer = pipeline.Computer
type Provenance = pipeline.Provenance
type RunRequest = dto.RunRequest
type RunResponse = dto.RunResponse
type TraceRecord = trace.Record
type TraceFilter = trace.Filter

// Re-export core constructors
var (
	NewPool     = flow.NewPool
	PoolFrom    = flow.PoolFrom
	NewConfig   = config.New
	NewPipe     = pipeline.New
	PipeFunc    = pipeline.Func
	NewPipeline = pipeline.NewPipeline
)

// ModeRun is the default mode tag for pipeline runs.
const ModeRun = pipeline.ModeRun

// Runtime is a simple façade to run pipelines without importing internal
// packages directly. The default runtime records provenance in memory and
// is suitable for local usage and tests.
type Runtime struct {
	runner usecases.Runner
	saver  trace.Saver
}

// NewRuntime constructs a default runtime with in-memory provenance storage.
func NewRuntime() *Runtime {
	saver := memory.DefaultInMemorySaver()
	return &Runtime{
		runner: usecases.NewPipelineRunner(saver),
		saver:  saver,
	}
}

// NewRuntimeWithSaver constructs a runtime persisting provenance through the
// given saver (e.g. the sqlite or postgres adapters).
func NewRuntimeWithSaver(saver trace.Saver) *Runtime {
	return &Runtime{
		runner: usecases.NewPipelineRunner(saver),
		saver:  saver,
	}
}

// Run executes a pipeline with the provided request.
func (rt *Runtime) Run(ctx context.Context, pl *Pipeline, req *RunRequest) (*RunResponse, error) {
	return rt.runner.Run(ctx, pl, req)
}

// RunSimple executes a pipeline with the given settings, recording
// provenance, and returns the response.
func (rt *Runtime) RunSimple(ctx context.Context, pl *Pipeline, settings map[string]interface{}) (*RunResponse, error) {
	if settings == nil {
		settings = map[string]interface{}{}
	}
	req := &RunRequest{
		Settings:    settings,
		Mode:        ModeRun,
		RecordTrace: true,
	}
	return rt.runner.Run(ctx, pl, req)
}

// Trace lists recorded provenance matching the filter.
func (rt *Runtime) Trace(ctx context.Context, filter TraceFilter) ([]*TraceRecord, error) {
	return rt.saver.List(ctx, filter)
}
