package trace

import (
	"context"
	"time"
)

// Saver interface for provenance record persistence (DIP - Dependency Inversion)
// PRINCIPLES:
// - ISP: Interface segregation with ≤5 methods
// - DIP: Core domain depends on interface, not implementations
// - SRP: Single responsibility - record persistence
type Saver interface {
	// Save persists a record
	Save(ctx context.Context, record *Record) error

	// Load retrieves a record by ID
	Load(ctx context.Context, id string) (*Record, error)

	// List returns records matching the filter
	List(ctx context.Context, filter Filter) ([]*Record, error)

	// Delete removes a record by ID
	Delete(ctx context.Context, id string) error
}

// Filter for record queries (ISP - segregated interface)
type Filter struct {
	RunID        string     `json:"run_id,omitempty"`
	PipelineName string     `json:"pipeline_name,omitempty"`
	PipeName     string     `json:"pipe_name,omitempty"`
	Limit        int        `json:"limit,omitempty"`
	Offset       int        `json:"offset,omitempty"`
	Since        *time.Time `json:"since,omitempty"`
	Before       *time.Time `json:"before,omitempty"`
}

// Validate ensures filter parameters are valid
func (f *Filter) Validate() error {
	if f.Limit < 0 {
		return ErrInvalidLimit
	}
	if f.Offset < 0 {
		return ErrInvalidOffset
	}
	if f.Since != nil && f.Before != nil && f.Since.After(*f.Before) {
		return ErrInvalidTimeRange
	}
	return nil
}

// Matches reports whether a record satisfies the filter's field predicates
// (Limit/Offset are applied by the saver, not here).
func (f *Filter) Matches(r *Record) bool {
	if f.RunID != "" && r.RunID != f.RunID {
		return false
	}
	if f.PipelineName != "" && r.PipelineName != f.PipelineName {
		return false
	}
	if f.PipeName != "" && r.PipeName != f.PipeName {
		return false
	}
	if f.Since != nil && r.StartTime.Before(*f.Since) {
		return false
	}
	if f.Before != nil && !r.StartTime.Before(*f.Before) {
		return false
	}
	return true
}
