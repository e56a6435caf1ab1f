// Package dto holds the data transfer objects for pipeline runs.
package dto

import (
	"time"
)

// RunRequest describes one pipeline run: the settings to expose through the
// config store, the mode tag handed to every pipe, optional initial flows,
// and whether provenance records should be persisted.
type RunRequest struct {
	PipelineName string                 `json:"pipeline_name,omitempty"`
	Settings     map[string]interface{} `json:"settings"`
	InitialFlows map[string]interface{} `json:"initial_flows,omitempty"`
	Mode         string                 `json:"mode,omitempty"`
	RecordTrace  bool                   `json:"record_trace"`
}

// Validate validates the run request
func (r *RunRequest) Validate() error {
	if r.Settings == nil {
		return ErrInvalidSettings
	}
	return nil
}

// RunResponse represents the outcome of a pipeline run
type RunResponse struct {
	RunID        string                 `json:"run_id"`
	PipelineName string                 `json:"pipeline_name,omitempty"`
	Status       RunStatus              `json:"status"`
	Flows        map[string]interface{} `json:"flows"`
	Results      []PipeResult           `json:"results"`
	StartTime    time.Time              `json:"start_time"`
	EndTime      time.Time              `json:"end_time"`
	Duration     time.Duration          `json:"duration"`
	Error        string                 `json:"error,omitempty"`
}

// RunStatus represents the status of a pipeline run
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// PipeResult represents the outcome and provenance of a single pipe
type PipeResult struct {
	Step        int                    `json:"step"`
	PipeName    string                 `json:"pipe_name"`
	InputFlows  []string               `json:"input_flows"`
	OutputFlows []string               `json:"output_flows"`
	ConfigUsed  map[string]interface{} `json:"config_used"`
	StartTime   time.Time              `json:"start_time"`
	EndTime     time.Time              `json:"end_time"`
	Duration    time.Duration          `json:"duration"`
	Status      PipeStatus             `json:"status"`
	Error       string                 `json:"error,omitempty"`
}

// PipeStatus represents the status of a single pipe execution
type PipeStatus string

const (
	PipeStatusCompleted PipeStatus = "completed"
	PipeStatusFailed    PipeStatus = "failed"
	PipeStatusSkipped   PipeStatus = "skipped"
)
