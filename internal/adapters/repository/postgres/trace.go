// Package postgres provides a trace saver backed by PostgreSQL
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pipeflow/pipeflow/internal/core/trace"
	imetrics "github.com/pipeflow/pipeflow/internal/infrastructure/metrics"
	"github.com/pipeflow/pipeflow/pkg/serialization"
)

// TraceSaver implements trace.Saver for PostgreSQL
type TraceSaver struct {
	pool       *pgxpool.Pool
	serializer *serialization.Serializer
	tableName  string
}

// payload is the serialized portion of a record
type payload struct {
	InputFlows  []string               `json:"input_flows" msgpack:"input_flows"`
	OutputFlows []string               `json:"output_flows" msgpack:"output_flows"`
	ConfigUsed  map[string]interface{} `json:"config_used" msgpack:"config_used"`
}

// NewTraceSaver creates a new PostgreSQL trace saver
func NewTraceSaver(pool *pgxpool.Pool, serializer *serialization.Serializer) *TraceSaver {
	if serializer == nil {
		serializer = serialization.DefaultSerializer()
	}
	return &TraceSaver{
		pool:       pool,
		serializer: serializer,
		tableName:  "trace_records",
	}
}

// Connect opens a pgx pool from a connection string and verifies it.
func Connect(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// CreateTables creates the necessary database tables
func (s *TraceSaver) CreateTables(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			run_id TEXT NOT NULL,
			pipeline_name TEXT,
			pipe_name TEXT NOT NULL,
			step INTEGER NOT NULL,
			mode TEXT NOT NULL,
			provenance BYTEA NOT NULL,
			status TEXT NOT NULL,
			error TEXT,
			start_time TIMESTAMPTZ NOT NULL,
			end_time TIMESTAMPTZ NOT NULL,
			version TEXT NOT NULL DEFAULT '1.0'
		);

		CREATE INDEX IF NOT EXISTS idx_%s_run_id ON %s (run_id);
		CREATE INDEX IF NOT EXISTS idx_%s_start_time ON %s (start_time);
	`, s.tableName, s.tableName, s.tableName, s.tableName, s.tableName)

	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// Save stores a record in PostgreSQL
func (s *TraceSaver) Save(ctx context.Context, record *trace.Record) error {
	if record == nil {
		return trace.ErrInvalidRecordID
	}
	if err := record.Validate(); err != nil {
		return fmt.Errorf("record validation failed: %w", err)
	}

	data, err := s.serializer.Serialize(payload{
		InputFlows:  record.InputFlows,
		OutputFlows: record.OutputFlows,
		ConfigUsed:  record.ConfigUsed,
	})
	if err != nil {
		return fmt.Errorf("failed to serialize provenance: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, run_id, pipeline_name, pipe_name, step, mode, provenance, status, error, start_time, end_time, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			run_id = EXCLUDED.run_id,
			pipeline_name = EXCLUDED.pipeline_name,
			pipe_name = EXCLUDED.pipe_name,
			step = EXCLUDED.step,
			mode = EXCLUDED.mode,
			provenance = EXCLUDED.provenance,
			status = EXCLUDED.status,
			error = EXCLUDED.error,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			version = EXCLUDED.version
	`, s.tableName)

	_, err = s.pool.Exec(ctx, query,
		record.ID, record.RunID, record.PipelineName, record.PipeName, record.Step,
		record.Mode, data, string(record.Status), record.Error,
		record.StartTime, record.EndTime, record.Version)
	if err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}

	imetrics.TraceSaved("postgres", 1)
	return nil
}

// Load retrieves a record by ID
func (s *TraceSaver) Load(ctx context.Context, id string) (*trace.Record, error) {
	if id == "" {
		return nil, trace.ErrInvalidRecordID
	}

	query := fmt.Sprintf(`
		SELECT id, run_id, pipeline_name, pipe_name, step, mode, provenance, status, error, start_time, end_time, version
		FROM %s
		WHERE id = $1
	`, s.tableName)

	record, err := s.scanRecord(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, trace.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to load record: %w", err)
	}
	return record, nil
}

// List retrieves records based on filter criteria
func (s *TraceSaver) List(ctx context.Context, filter trace.Filter) ([]*trace.Record, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	query, args := s.buildListQuery(filter)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var records []*trace.Record
	for rows.Next() {
		record, err := s.scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record row: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Delete removes a record by ID
func (s *TraceSaver) Delete(ctx context.Context, id string) error {
	if id == "" {
		return trace.ErrInvalidRecordID
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", s.tableName)
	tag, err := s.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return trace.ErrRecordNotFound
	}
	return nil
}

func (s *TraceSaver) scanRecord(row pgx.Row) (*trace.Record, error) {
	var record trace.Record
	var data []byte
	var status string
	var start, end time.Time

	err := row.Scan(
		&record.ID, &record.RunID, &record.PipelineName, &record.PipeName, &record.Step,
		&record.Mode, &data, &status, &record.Error, &start, &end, &record.Version,
	)
	if err != nil {
		return nil, err
	}

	record.Status = trace.Status(status)
	record.StartTime = start
	record.EndTime = end

	var p payload
	if err := s.serializer.Deserialize(data, &p); err != nil {
		return nil, fmt.Errorf("failed to deserialize provenance: %w", err)
	}
	record.InputFlows = p.InputFlows
	record.OutputFlows = p.OutputFlows
	record.ConfigUsed = p.ConfigUsed
	return &record, nil
}

// buildListQuery constructs the SQL query for listing records
func (s *TraceSaver) buildListQuery(filter trace.Filter) (string, []interface{}) {
	query := fmt.Sprintf(
		"SELECT id, run_id, pipeline_name, pipe_name, step, mode, provenance, status, error, start_time, end_time, version FROM %s WHERE 1=1",
		s.tableName)
	args := make([]interface{}, 0)
	arg := 0
	next := func() string {
		arg++
		return fmt.Sprintf("$%d", arg)
	}

	if filter.RunID != "" {
		query += " AND run_id = " + next()
		args = append(args, filter.RunID)
	}
	if filter.PipelineName != "" {
		query += " AND pipeline_name = " + next()
		args = append(args, filter.PipelineName)
	}
	if filter.PipeName != "" {
		query += " AND pipe_name = " + next()
		args = append(args, filter.PipeName)
	}
	if filter.Since != nil {
		query += " AND start_time >= " + next()
		args = append(args, *filter.Since)
	}
	if filter.Before != nil {
		query += " AND start_time < " + next()
		args = append(args, *filter.Before)
	}

	query += " ORDER BY start_time ASC, step ASC"

	if filter.Limit > 0 {
		query += " LIMIT " + next()
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET " + next()
		args = append(args, filter.Offset)
	}

	return query, args
}

// interface guard
var _ trace.Saver = (*TraceSaver)(nil)
