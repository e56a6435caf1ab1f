package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pipeflow/pipeflow/internal/core/trace"
	"github.com/pipeflow/pipeflow/pkg/serialization"
)

func TestPostgresTraceSaver(t *testing.T) {
	t.Skip("Integration test requires PostgreSQL database")

	// Run against a real instance via docker-compose or testcontainers.
}

func TestPostgresTraceSaver_Errors(t *testing.T) {
	ctx := context.Background()

	// Saver with nil pool: argument validation happens before any query
	saver := &TraceSaver{
		pool:       nil,
		serializer: serialization.DefaultSerializer(),
		tableName:  "trace_records",
	}

	err := saver.Save(ctx, nil)
	assert.ErrorIs(t, err, trace.ErrInvalidRecordID)

	invalid := &trace.Record{ID: "rec-1"}
	err = saver.Save(ctx, invalid)
	assert.ErrorIs(t, err, trace.ErrInvalidRunID)

	_, err = saver.Load(ctx, "")
	assert.ErrorIs(t, err, trace.ErrInvalidRecordID)

	err = saver.Delete(ctx, "")
	assert.ErrorIs(t, err, trace.ErrInvalidRecordID)

	_, err = saver.List(ctx, trace.Filter{Limit: -1})
	assert.ErrorIs(t, err, trace.ErrInvalidLimit)
}

func TestBuildListQuery(t *testing.T) {
	saver := NewTraceSaver(nil, nil)

	query, args := saver.buildListQuery(trace.Filter{RunID: "run-1", Limit: 10, Offset: 5})
	assert.Contains(t, query, "run_id = $1")
	assert.Contains(t, query, "LIMIT $2")
	assert.Contains(t, query, "OFFSET $3")
	assert.Equal(t, []interface{}{"run-1", 10, 5}, args)
}
