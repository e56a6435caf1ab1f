package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pipeflow/pipeflow/internal/app/dto"
	"github.com/pipeflow/pipeflow/internal/core/config"
	"github.com/pipeflow/pipeflow/internal/core/flow"
	"github.com/pipeflow/pipeflow/internal/core/pipeline"
	"github.com/pipeflow/pipeflow/internal/core/trace"
	imetrics "github.com/pipeflow/pipeflow/internal/infrastructure/metrics"
)

// recordVersion tags persisted provenance records for forward compatibility
const recordVersion = "1.0"

// PipelineRunner implements the Runner interface
// PRINCIPLES:
// - KISS: One pipe at a time, in order, preserving core fail-fast semantics
// - SRP: Orchestration and provenance recording only; computation stays in
//   the pipes, discipline in the stores
type PipelineRunner struct {
	saver trace.Saver
}

// NewPipelineRunner creates a runner persisting provenance through saver.
// A nil saver disables persistence; provenance still lands on the pipes and
// in the response.
func NewPipelineRunner(saver trace.Saver) *PipelineRunner {
	return &PipelineRunner{saver: saver}
}

// Run executes the pipeline pipe by pipe with one shared flow pool and one
// shared config, capturing each pipe's provenance into the response and,
// when requested, into the trace saver. The run aborts on the first pipe
// failure; flows written by completed pipes remain in the returned map.
func (r *PipelineRunner) Run(ctx context.Context, pl *pipeline.Pipeline, req *dto.RunRequest) (*dto.RunResponse, error) {
	if pl == nil {
		return nil, dto.ErrNilPipeline
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	cfg, err := config.New(req.Settings)
	if err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	mode := req.Mode
	if mode == "" {
		mode = pipeline.ModeRun
	}

	pool := flow.NewPool()
	if len(req.InitialFlows) > 0 {
		pool = flow.PoolFrom(req.InitialFlows)
	}

	response := &dto.RunResponse{
		RunID:        uuid.New().String(),
		PipelineName: req.PipelineName,
		Status:       dto.RunStatusRunning,
		StartTime:    time.Now(),
		Results:      make([]dto.PipeResult, 0, pl.Len()),
	}

	imetrics.IncPipelineRuns()
	runErr := r.runPipes(ctx, pl, req, response, pool, cfg, mode)

	response.EndTime = time.Now()
	response.Duration = response.EndTime.Sub(response.StartTime)
	response.Flows = pool.Snapshot()

	if runErr != nil {
		response.Status = dto.RunStatusFailed
		response.Error = runErr.Error()
		return response, runErr
	}
	response.Status = dto.RunStatusCompleted
	return response, nil
}

func (r *PipelineRunner) runPipes(
	ctx context.Context,
	pl *pipeline.Pipeline,
	req *dto.RunRequest,
	response *dto.RunResponse,
	pool *flow.Pool,
	cfg *config.Config,
	mode string,
) error {
	for step, p := range pl.Pipes() {
		result := dto.PipeResult{
			Step:      step + 1,
			PipeName:  p.Name(),
			StartTime: time.Now(),
		}

		err := p.Run(pool, cfg, mode)
		result.EndTime = time.Now()
		result.Duration = result.EndTime.Sub(result.StartTime)

		if err != nil {
			result.Status = dto.PipeStatusFailed
			result.Error = err.Error()
		} else {
			result.Status = dto.PipeStatusCompleted
			prov := p.Provenance()
			result.InputFlows = prov.InputFlows
			result.OutputFlows = prov.OutputFlows
			result.ConfigUsed = prov.ConfigUsed
		}
		response.Results = append(response.Results, result)

		if req.RecordTrace && r.saver != nil {
			if saveErr := r.saveRecord(ctx, response.RunID, req.PipelineName, mode, result); saveErr != nil {
				return fmt.Errorf("record provenance for pipe %q: %w", p.Name(), saveErr)
			}
		}

		if err != nil {
			return fmt.Errorf("%w at step %d: %w", dto.ErrRunFailed, step+1, err)
		}
	}
	return nil
}

func (r *PipelineRunner) saveRecord(ctx context.Context, runID, pipelineName, mode string, result dto.PipeResult) error {
	record := &trace.Record{
		ID:           uuid.New().String(),
		RunID:        runID,
		PipelineName: pipelineName,
		PipeName:     result.PipeName,
		Step:         result.Step,
		Mode:         mode,
		InputFlows:   result.InputFlows,
		OutputFlows:  result.OutputFlows,
		ConfigUsed:   result.ConfigUsed,
		Status:       trace.StatusCompleted,
		Error:        result.Error,
		StartTime:    result.StartTime,
		EndTime:      result.EndTime,
		Version:      recordVersion,
	}
	if result.Status == dto.PipeStatusFailed {
		record.Status = trace.StatusFailed
	}
	return r.saver.Save(ctx, record)
}

// interface guard
var _ Runner = (*PipelineRunner)(nil)
