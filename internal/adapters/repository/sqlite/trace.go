// Package sqlite provides a trace saver backed by SQLite
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pipeflow/pipeflow/internal/core/trace"
	imetrics "github.com/pipeflow/pipeflow/internal/infrastructure/metrics"
	"github.com/pipeflow/pipeflow/pkg/serialization"
	_ "modernc.org/sqlite"
)

// TraceSaver implements trace.Saver for SQLite. Flow name sequences are
// persisted through the serializer as one blob; scalar columns stay
// queryable for List filters.
type TraceSaver struct {
	db         *sql.DB
	serializer *serialization.Serializer
	tableName  string
}

// payload is the serialized portion of a record
type payload struct {
	InputFlows  []string               `json:"input_flows" msgpack:"input_flows"`
	OutputFlows []string               `json:"output_flows" msgpack:"output_flows"`
	ConfigUsed  map[string]interface{} `json:"config_used" msgpack:"config_used"`
}

// NewTraceSaver creates a new SQLite trace saver
func NewTraceSaver(db *sql.DB, serializer *serialization.Serializer) *TraceSaver {
	if serializer == nil {
		serializer = serialization.DefaultSerializer()
	}
	return &TraceSaver{
		db:         db,
		serializer: serializer,
		tableName:  "trace_records",
	}
}

// WithTableName allows overriding the default table name with validation.
// Only alphanumeric and underscore are permitted to prevent SQL injection
// via identifiers.
func (s *TraceSaver) WithTableName(name string) *TraceSaver {
	if isSafeIdent(name) {
		s.tableName = name
	}
	return s
}

func isSafeIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' {
			continue
		}
		return false
	}
	return true
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
			provenance BLOB NOT NULL,
			status TEXT NOT NULL,
			error TEXT,
			start_time INTEGER NOT NULL,
			end_time INTEGER NOT NULL,
			version TEXT NOT NULL DEFAULT '1.0'
		);

		CREATE INDEX IF NOT EXISTS idx_%s_run_id ON %s (run_id);
		CREATE INDEX IF NOT EXISTS idx_%s_pipe_name ON %s (pipe_name);
		CREATE INDEX IF NOT EXISTS idx_%s_start_time ON %s (start_time);
	`, s.tableName, s.tableName, s.tableName, s.tableName, s.tableName, s.tableName, s.tableName)

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// Save stores a record in SQLite
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
		INSERT OR REPLACE INTO %s
			(id, run_id, pipeline_name, pipe_name, step, mode, provenance, status, error, start_time, end_time, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, s.tableName)

	_, err = s.db.ExecContext(ctx, query,
		record.ID, record.RunID, record.PipelineName, record.PipeName, record.Step,
		record.Mode, data, string(record.Status), record.Error,
		record.StartTime.UnixNano(), record.EndTime.UnixNano(), record.Version)
	if err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}

	imetrics.TraceSaved("sqlite", 1)
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
		WHERE id = ?
	`, s.tableName)

	record, err := s.scanRecord(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
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
	rows, err := s.db.QueryContext(ctx, query, args...)
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

	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", s.tableName)
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return trace.ErrRecordNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (s *TraceSaver) scanRecord(row rowScanner) (*trace.Record, error) {
	var record trace.Record
	var data []byte
	var status string
	var startNanos, endNanos int64

	err := row.Scan(
		&record.ID, &record.RunID, &record.PipelineName, &record.PipeName, &record.Step,
		&record.Mode, &data, &status, &record.Error, &startNanos, &endNanos, &record.Version,
	)
	if err != nil {
		return nil, err
	}

	record.Status = trace.Status(status)
	record.StartTime = time.Unix(0, startNanos)
	record.EndTime = time.Unix(0, endNanos)

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

	if filter.RunID != "" {
		query += " AND run_id = ?"
		args = append(args, filter.RunID)
	}
	if filter.PipelineName != "" {
		query += " AND pipeline_name = ?"
		args = append(args, filter.PipelineName)
	}
	if filter.PipeName != "" {
		query += " AND pipe_name = ?"
		args = append(args, filter.PipeName)
	}
	if filter.Since != nil {
		query += " AND start_time >= ?"
		args = append(args, filter.Since.UnixNano())
	}
	if filter.Before != nil {
		query += " AND start_time < ?"
		args = append(args, filter.Before.UnixNano())
	}

	query += " ORDER BY start_time ASC, step ASC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	} else if filter.Offset > 0 {
		query += " LIMIT -1"
	}
	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	return query, args
}

// Open opens (or creates) a SQLite database at path, ready for use with a
// TraceSaver.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	return db, nil
}

// interface guard
var _ trace.Saver = (*TraceSaver)(nil)
