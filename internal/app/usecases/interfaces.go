// Package usecases contains the application services orchestrating pipeline
// runs and provenance recording.
package usecases

import (
	"context"

	"github.com/pipeflow/pipeflow/internal/app/dto"
	"github.com/pipeflow/pipeflow/internal/core/pipeline"
)

// Runner executes pipelines and reports per-pipe outcomes
// PRINCIPLES:
// - ISP: Interface segregation with ≤5 methods
// - DIP: Hosts depend on this interface, not the implementation
type Runner interface {
	// Run executes a pipeline under the given request
	Run(ctx context.Context, pl *pipeline.Pipeline, req *dto.RunRequest) (*dto.RunResponse, error)
}
