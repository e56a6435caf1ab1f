package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipeflow/pipeflow/internal/core/trace"
)

func record(id, runID, pipe string, step int) *trace.Record {
	return &trace.Record{
		ID:          id,
		RunID:       runID,
		PipeName:    pipe,
		Step:        step,
		Mode:        "run",
		InputFlows:  []string{"in"},
		OutputFlows: []string{"out"},
		ConfigUsed:  map[string]interface{}{"x": int64(5)},
		Status:      trace.StatusCompleted,
		StartTime:   time.Date(2025, 6, 1, 12, 0, step, 0, time.UTC),
		EndTime:     time.Date(2025, 6, 1, 12, 0, step+1, 0, time.UTC),
	}
}

func TestInMemorySaver_SaveLoad(t *testing.T) {
	saver := DefaultInMemorySaver()
	ctx := context.Background()

	original := record("rec-1", "run-1", "scale", 1)
	require.NoError(t, saver.Save(ctx, original))

	loaded, err := saver.Load(ctx, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, original.ID, loaded.ID)
	assert.Equal(t, original.InputFlows, loaded.InputFlows)
	assert.Equal(t, original.OutputFlows, loaded.OutputFlows)
	assert.Equal(t, trace.StatusCompleted, loaded.Status)
}

func TestInMemorySaver_SaveInvalid(t *testing.T) {
	saver := DefaultInMemorySaver()
	ctx := context.Background()

	assert.ErrorIs(t, saver.Save(ctx, nil), trace.ErrInvalidRecordID)

	bad := record("rec-1", "run-1", "scale", 1)
	bad.PipeName = ""
	assert.ErrorIs(t, saver.Save(ctx, bad), trace.ErrInvalidPipeName)
}

func TestInMemorySaver_LoadMissing(t *testing.T) {
	saver := DefaultInMemorySaver()

	_, err := saver.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, trace.ErrRecordNotFound)

	_, err = saver.Load(context.Background(), "")
	assert.ErrorIs(t, err, trace.ErrInvalidRecordID)
}

func TestInMemorySaver_List(t *testing.T) {
	saver := DefaultInMemorySaver()
	ctx := context.Background()

	require.NoError(t, saver.Save(ctx, record("rec-1", "run-1", "extract", 1)))
	require.NoError(t, saver.Save(ctx, record("rec-2", "run-1", "transform", 2)))
	require.NoError(t, saver.Save(ctx, record("rec-3", "run-2", "extract", 1)))

	t.Run("filter by run", func(t *testing.T) {
		records, err := saver.List(ctx, trace.Filter{RunID: "run-1"})
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "rec-1", records[0].ID)
		assert.Equal(t, "rec-2", records[1].ID)
	})

	t.Run("filter by pipe", func(t *testing.T) {
		records, err := saver.List(ctx, trace.Filter{PipeName: "extract"})
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})

	t.Run("limit and offset", func(t *testing.T) {
		records, err := saver.List(ctx, trace.Filter{Limit: 1, Offset: 1})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "rec-3", records[0].ID)
	})

	t.Run("invalid filter", func(t *testing.T) {
		_, err := saver.List(ctx, trace.Filter{Limit: -1})
		assert.ErrorIs(t, err, trace.ErrInvalidLimit)
	})
}

func TestInMemorySaver_Delete(t *testing.T) {
	saver := DefaultInMemorySaver()
	ctx := context.Background()

	require.NoError(t, saver.Save(ctx, record("rec-1", "run-1", "scale", 1)))
	require.Equal(t, 1, saver.Len())

	require.NoError(t, saver.Delete(ctx, "rec-1"))
	assert.Equal(t, 0, saver.Len())
	assert.ErrorIs(t, saver.Delete(ctx, "rec-1"), trace.ErrRecordNotFound)
}
