// Package pipeline provides the pipe execution contract with automatic
// provenance capture, and linear composition of pipes into pipelines.
package pipeline

import (
	"fmt"

	"github.com/pipeflow/pipeflow/internal/core/config"
	"github.com/pipeflow/pipeflow/internal/core/flow"
	imetrics "github.com/pipeflow/pipeflow/internal/infrastructure/metrics"
)

// ModeRun is the mode tag a pipeline passes to its pipes. Hosts may define
// further modes for their own entry points.
const ModeRun = "run"

// Computer is the computation a concrete pipe supplies: exactly the shared
// flow pool, the shared config, and a mode tag. The compiler enforces the
// parameter contract, so a signature mismatch is a build failure rather
// than a runtime surprise.
// PRINCIPLES:
// - ISP: Single-method interface
// - DIP: Pipes depend on the stores, never the other way around
type Computer interface {
	Compute(pool *flow.Pool, cfg *config.Config, mode string) error
}

// ComputeFunc adapts a plain function to the Computer interface.
type ComputeFunc func(pool *flow.Pool, cfg *config.Config, mode string) error

// Compute calls fn.
func (fn ComputeFunc) Compute(pool *flow.Pool, cfg *config.Config, mode string) error {
	return fn(pool, cfg, mode)
}

// Provenance records what a pipe touched during its last successful run:
// flow names read and written in access order, and the settings consulted
// with the values retrieved. Overwritten, never accumulated.
type Provenance struct {
	InputFlows  []string               `json:"input_flows"`
	OutputFlows []string               `json:"output_flows"`
	ConfigUsed  map[string]interface{} `json:"config_used"`
}

// Pipe wraps a Computer with the fixed execution contract: reset both
// stores' access caches, delegate to the computation, harvest the caches
// into provenance. Authors write only the computation; the bookkeeping is
// automatic.
type Pipe struct {
	name       string
	computer   Computer
	provenance Provenance
}

// New creates a pipe wrapping the given computation. A nil computer panics:
// pipe construction is authored code, not input handling.
func New(name string, computer Computer) *Pipe {
	if computer == nil {
		panic(ErrNilComputer)
	}
	if name == "" {
		panic(ErrInvalidPipeName)
	}
	return &Pipe{name: name, computer: computer}
}

// Func creates a pipe from a plain function.
func Func(name string, fn func(pool *flow.Pool, cfg *config.Config, mode string) error) *Pipe {
	return New(name, ComputeFunc(fn))
}

// Name returns the pipe's name.
func (p *Pipe) Name() string {
	return p.name
}

// Provenance returns the record of the pipe's last successful run.
func (p *Pipe) Provenance() Provenance {
	return p.provenance
}

// InputFlows returns the flow names read during the last successful run.
func (p *Pipe) InputFlows() []string {
	return p.provenance.InputFlows
}

// OutputFlows returns the flow names written during the last successful run.
func (p *Pipe) OutputFlows() []string {
	return p.provenance.OutputFlows
}

// ConfigUsed returns the settings consulted during the last successful run.
func (p *Pipe) ConfigUsed() map[string]interface{} {
	return p.provenance.ConfigUsed
}

// Run executes the pipe against the shared stores under the execution
// contract. On failure the error propagates and the provenance fields keep
// their previous values; the stores' caches are left for the next
// invocation's reset.
func (p *Pipe) Run(pool *flow.Pool, cfg *config.Config, mode string) error {
	// Reset: discard any stale tracking from an aborted invocation
	pool.BeginInvocation()
	cfg.BeginInvocation()

	imetrics.IncPipeRuns()
	if err := p.computer.Compute(pool, cfg, mode); err != nil {
		imetrics.IncPipeFailures()
		return fmt.Errorf("pipe %q: %w", p.name, err)
	}

	// Harvest: exactly what this invocation touched
	access := pool.BeginInvocation()
	p.provenance = Provenance{
		InputFlows:  access.Reads,
		OutputFlows: access.Writes,
		ConfigUsed:  cfg.BeginInvocation(),
	}
	return nil
}

// Then composes this pipe with the next one into a new two-stage pipeline.
// A nil operand panics with ErrNilPipe, mirroring construction.
func (p *Pipe) Then(next *Pipe) *Pipeline {
	if next == nil {
		panic(ErrNilPipe)
	}
	return &Pipeline{pipes: []*Pipe{p, next}}
}
