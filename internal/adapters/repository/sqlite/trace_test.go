package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipeflow/pipeflow/internal/core/trace"
)

func newTestSaver(t *testing.T) *TraceSaver {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "trace.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	saver := NewTraceSaver(db, nil)
	require.NoError(t, saver.CreateTables(context.Background()))
	return saver
}

func testRecord(id, runID string, step int) *trace.Record {
	return &trace.Record{
		ID:          id,
		RunID:       runID,
		PipeName:    "transform",
		Step:        step,
		Mode:        "run",
		InputFlows:  []string{"raw"},
		OutputFlows: []string{"clean"},
		ConfigUsed:  map[string]interface{}{"threshold": 0.5},
		Status:      trace.StatusCompleted,
		StartTime:   time.Date(2025, 6, 1, 12, 0, step, 0, time.UTC),
		EndTime:     time.Date(2025, 6, 1, 12, 0, step+1, 0, time.UTC),
		Version:     "1.0",
	}
}

func TestTraceSaver_SaveLoad(t *testing.T) {
	saver := newTestSaver(t)
	ctx := context.Background()

	original := testRecord("rec-1", "run-1", 1)
	require.NoError(t, saver.Save(ctx, original))

	loaded, err := saver.Load(ctx, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, original.ID, loaded.ID)
	assert.Equal(t, original.RunID, loaded.RunID)
	assert.Equal(t, original.InputFlows, loaded.InputFlows)
	assert.Equal(t, original.OutputFlows, loaded.OutputFlows)
	assert.True(t, original.StartTime.Equal(loaded.StartTime))
	assert.Equal(t, trace.StatusCompleted, loaded.Status)
}

func TestTraceSaver_SaveReplaces(t *testing.T) {
	saver := newTestSaver(t)
	ctx := context.Background()

	first := testRecord("rec-1", "run-1", 1)
	require.NoError(t, saver.Save(ctx, first))

	second := testRecord("rec-1", "run-1", 1)
	second.OutputFlows = []string{"clean", "extra"}
	require.NoError(t, saver.Save(ctx, second))

	loaded, err := saver.Load(ctx, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"clean", "extra"}, loaded.OutputFlows)
}

func TestTraceSaver_LoadMissing(t *testing.T) {
	saver := newTestSaver(t)

	_, err := saver.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, trace.ErrRecordNotFound)
}

func TestTraceSaver_List(t *testing.T) {
	saver := newTestSaver(t)
	ctx := context.Background()

	require.NoError(t, saver.Save(ctx, testRecord("rec-1", "run-1", 1)))
	require.NoError(t, saver.Save(ctx, testRecord("rec-2", "run-1", 2)))
	require.NoError(t, saver.Save(ctx, testRecord("rec-3", "run-2", 1)))

	t.Run("by run", func(t *testing.T) {
		records, err := saver.List(ctx, trace.Filter{RunID: "run-1"})
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, 1, records[0].Step)
		assert.Equal(t, 2, records[1].Step)
	})

	t.Run("with limit", func(t *testing.T) {
		records, err := saver.List(ctx, trace.Filter{Limit: 2})
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})

	t.Run("time window", func(t *testing.T) {
		since := time.Date(2025, 6, 1, 12, 0, 2, 0, time.UTC)
		records, err := saver.List(ctx, trace.Filter{Since: &since})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "rec-2", records[0].ID)
	})

	t.Run("invalid filter", func(t *testing.T) {
		_, err := saver.List(ctx, trace.Filter{Offset: -1})
		assert.ErrorIs(t, err, trace.ErrInvalidOffset)
	})
}

func TestTraceSaver_Delete(t *testing.T) {
	saver := newTestSaver(t)
	ctx := context.Background()

	require.NoError(t, saver.Save(ctx, testRecord("rec-1", "run-1", 1)))
	require.NoError(t, saver.Delete(ctx, "rec-1"))
	assert.ErrorIs(t, saver.Delete(ctx, "rec-1"), trace.ErrRecordNotFound)
}

func TestTraceSaver_WithTableName(t *testing.T) {
	saver := newTestSaver(t)

	saver.WithTableName("custom_records")
	assert.Equal(t, "custom_records", saver.tableName)

	// Unsafe identifiers are ignored
	saver.WithTableName("drop table;--")
	assert.Equal(t, "custom_records", saver.tableName)
}
