package usecases

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	memory "github.com/pipeflow/pipeflow/internal/adapters/repository/memory"
	"github.com/pipeflow/pipeflow/internal/app/dto"
	"github.com/pipeflow/pipeflow/internal/core/config"
	"github.com/pipeflow/pipeflow/internal/core/flow"
	"github.com/pipeflow/pipeflow/internal/core/pipeline"
	"github.com/pipeflow/pipeflow/internal/core/trace"
)

func etlPipeline(t *testing.T) *pipeline.Pipeline {
	t.Helper()

	extract := pipeline.Func("extract", func(pool *flow.Pool, cfg *config.Config, mode string) error {
		seed, err := cfg.GetInt("seed")
		if err != nil {
			return err
		}
		return pool.Write("raw", seed, false)
	})
	transform := pipeline.Func("transform", func(pool *flow.Pool, cfg *config.Config, mode string) error {
		raw, err := pool.Read("raw")
		if err != nil {
			return err
		}
		return pool.Write("clean", raw.(int64)*2, false)
	})

	return extract.Then(transform)
}

func TestPipelineRunner_Run(t *testing.T) {
	saver := memory.DefaultInMemorySaver()
	runner := NewPipelineRunner(saver)
	ctx := context.Background()

	resp, err := runner.Run(ctx, etlPipeline(t), &dto.RunRequest{
		PipelineName: "etl",
		Settings:     map[string]interface{}{"seed": 21},
		RecordTrace:  true,
	})
	require.NoError(t, err)

	assert.Equal(t, dto.RunStatusCompleted, resp.Status)
	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, map[string]interface{}{"raw": int64(21), "clean": int64(42)}, resp.Flows)

	require.Len(t, resp.Results, 2)
	assert.Equal(t, "extract", resp.Results[0].PipeName)
	assert.Equal(t, []string{"raw"}, resp.Results[0].OutputFlows)
	assert.Equal(t, map[string]interface{}{"seed": int64(21)}, resp.Results[0].ConfigUsed)
	assert.Equal(t, []string{"raw"}, resp.Results[1].InputFlows)
	assert.Equal(t, []string{"clean"}, resp.Results[1].OutputFlows)

	// Provenance was persisted, one record per pipe
	records, err := saver.List(ctx, trace.Filter{RunID: resp.RunID})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "extract", records[0].PipeName)
	assert.Equal(t, trace.StatusCompleted, records[0].Status)
	assert.Equal(t, "etl", records[0].PipelineName)
}

func TestPipelineRunner_RunWithoutTrace(t *testing.T) {
	saver := memory.DefaultInMemorySaver()
	runner := NewPipelineRunner(saver)

	_, err := runner.Run(context.Background(), etlPipeline(t), &dto.RunRequest{
		Settings: map[string]interface{}{"seed": 1},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, saver.Len(), "no records persisted unless requested")
}

func TestPipelineRunner_InitialFlows(t *testing.T) {
	runner := NewPipelineRunner(nil)

	consume := pipeline.Func("consume", func(pool *flow.Pool, cfg *config.Config, mode string) error {
		seed, err := pool.Read("seed")
		if err != nil {
			return err
		}
		return pool.Write("echo", seed, false)
	})
	pl, err := pipeline.NewPipeline(consume)
	require.NoError(t, err)

	resp, err := runner.Run(context.Background(), pl, &dto.RunRequest{
		Settings:     map[string]interface{}{},
		InitialFlows: map[string]interface{}{"seed": "s"},
	})
	require.NoError(t, err)
	assert.Equal(t, "s", resp.Flows["echo"])
}

func TestPipelineRunner_FailureAborts(t *testing.T) {
	saver := memory.DefaultInMemorySaver()
	runner := NewPipelineRunner(saver)
	boom := errors.New("boom")

	ok := pipeline.Func("ok", func(pool *flow.Pool, cfg *config.Config, mode string) error {
		return pool.Write("a", 1, false)
	})
	bad := pipeline.Func("bad", func(pool *flow.Pool, cfg *config.Config, mode string) error {
		return boom
	})
	never := pipeline.Func("never", func(pool *flow.Pool, cfg *config.Config, mode string) error {
		t.Fatal("pipe after a failure must not run")
		return nil
	})

	resp, err := runner.Run(context.Background(), ok.Then(bad).Then(never), &dto.RunRequest{
		Settings:    map[string]interface{}{},
		RecordTrace: true,
	})
	require.ErrorIs(t, err, boom)
	require.ErrorIs(t, err, dto.ErrRunFailed)

	assert.Equal(t, dto.RunStatusFailed, resp.Status)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, dto.PipeStatusCompleted, resp.Results[0].Status)
	assert.Equal(t, dto.PipeStatusFailed, resp.Results[1].Status)
	assert.Equal(t, map[string]interface{}{"a": 1}, resp.Flows,
		"completed writes survive the aborted run")

	// Both the success and the failure were recorded
	records, listErr := saver.List(context.Background(), trace.Filter{RunID: resp.RunID})
	require.NoError(t, listErr)
	require.Len(t, records, 2)
	assert.Equal(t, trace.StatusFailed, records[1].Status)
}

func TestPipelineRunner_InvalidRequests(t *testing.T) {
	runner := NewPipelineRunner(nil)
	ctx := context.Background()

	t.Run("nil pipeline", func(t *testing.T) {
		_, err := runner.Run(ctx, nil, &dto.RunRequest{Settings: map[string]interface{}{}})
		assert.ErrorIs(t, err, dto.ErrNilPipeline)
	})

	t.Run("nil settings", func(t *testing.T) {
		_, err := runner.Run(ctx, etlPipeline(t), &dto.RunRequest{})
		assert.ErrorIs(t, err, dto.ErrInvalidSettings)
	})

	t.Run("non-scalar settings", func(t *testing.T) {
		_, err := runner.Run(ctx, etlPipeline(t), &dto.RunRequest{
			Settings: map[string]interface{}{"bad": []int{1}},
		})
		assert.ErrorIs(t, err, config.ErrNonScalarValue)
	})
}
