// Package trace provides the provenance record domain entities and
// persistence interfaces, with zero external dependencies.
package trace

import (
	"time"
)

// Status of a recorded pipe execution.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Record is the durable provenance of one pipe invocation: which flows it
// read and wrote (in access order) and which settings it consulted.
// PRINCIPLES:
// - KISS: Simple struct with clear fields
// - SRP: Only responsible for record data structure
type Record struct {
	ID           string                 `json:"id" msgpack:"id"`
	RunID        string                 `json:"run_id" msgpack:"run_id"`
	PipelineName string                 `json:"pipeline_name,omitempty" msgpack:"pipeline_name"`
	PipeName     string                 `json:"pipe_name" msgpack:"pipe_name"`
	Step         int                    `json:"step" msgpack:"step"`
	Mode         string                 `json:"mode" msgpack:"mode"`
	InputFlows   []string               `json:"input_flows" msgpack:"input_flows"`
	OutputFlows  []string               `json:"output_flows" msgpack:"output_flows"`
	ConfigUsed   map[string]interface{} `json:"config_used" msgpack:"config_used"`
	Status       Status                 `json:"status" msgpack:"status"`
	Error        string                 `json:"error,omitempty" msgpack:"error"`
	StartTime    time.Time              `json:"start_time" msgpack:"start_time"`
	EndTime      time.Time              `json:"end_time" msgpack:"end_time"`
	Version      string                 `json:"version" msgpack:"version"`
}

// Validate ensures record integrity
func (r *Record) Validate() error {
	if r.ID == "" {
		return ErrInvalidRecordID
	}
	if r.RunID == "" {
		return ErrInvalidRunID
	}
	if r.PipeName == "" {
		return ErrInvalidPipeName
	}
	if r.Status != StatusCompleted && r.Status != StatusFailed {
		return ErrInvalidStatus
	}
	return nil
}

// Duration returns the wall time of the recorded invocation.
func (r *Record) Duration() time.Duration {
	return r.EndTime.Sub(r.StartTime)
}
