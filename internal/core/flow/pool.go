// Package flow provides the shared artifact store threaded through a
// pipeline run, with per-invocation access tracking.
package flow

import (
	"fmt"

	imetrics "github.com/pipeflow/pipeflow/internal/infrastructure/metrics"
)

// Pool is a process-lifetime store of named, opaque artifacts ("flows")
// shared by every pipe in a pipeline run.
// PRINCIPLES:
// - KISS: A plain map plus two ordered caches, no hidden machinery
// - SRP: Only responsible for flow storage and access discipline
//
// A Pool enforces once-only access per invocation: each flow may be read at
// most once and written at most once between two BeginInvocation calls, and
// a flow written during an invocation may not be read back in the same
// invocation (keep a local variable instead of round-tripping the pool).
//
// A Pool is NOT safe for concurrent use. Pipelines are single-threaded by
// design; sharing a Pool across goroutines is undefined behavior.
type Pool struct {
	flows      map[string]interface{}
	readCache  []string
	writeCache []string
}

// Access holds the drained per-invocation tracking state: the flow names
// read and written, in access order.
type Access struct {
	Reads  []string `json:"reads"`
	Writes []string `json:"writes"`
}

// NewPool creates an empty flow pool.
func NewPool() *Pool {
	return &Pool{flows: make(map[string]interface{})}
}

// PoolFrom creates a pool pre-populated with the given flows. The map is
// copied; the caller keeps ownership of its argument.
func PoolFrom(flows map[string]interface{}) *Pool {
	p := NewPool()
	for name, value := range flows {
		p.flows[name] = value
	}
	return p
}

// Read returns the value stored under name and records the read.
// It fails if the flow does not exist, was already read in the current
// invocation, or was written in the current invocation.
func (p *Pool) Read(name string) (interface{}, error) {
	if _, exists := p.flows[name]; !exists {
		imetrics.FlowRead("not_found", 1)
		return nil, fmt.Errorf("read flow %q: %w", name, ErrFlowNotFound)
	}
	if contains(p.readCache, name) {
		imetrics.FlowRead("already_read", 1)
		imetrics.IncViolations()
		return nil, fmt.Errorf("read flow %q: %w", name, ErrFlowAlreadyRead)
	}
	if contains(p.writeCache, name) {
		imetrics.FlowRead("read_after_write", 1)
		imetrics.IncViolations()
		return nil, fmt.Errorf("read flow %q: %w", name, ErrReadAfterWrite)
	}
	p.readCache = append(p.readCache, name)
	imetrics.FlowRead("ok", 1)
	return p.flows[name], nil
}

// Write stores value under name and records the write. Writing an existing
// flow requires overwrite; writing the same name twice in one invocation
// fails regardless of overwrite.
func (p *Pool) Write(name string, value interface{}, overwrite bool) error {
	if name == "" {
		return ErrInvalidFlowName
	}
	if _, exists := p.flows[name]; exists && !overwrite {
		imetrics.FlowWritten("exists", 1)
		return fmt.Errorf("write flow %q: %w", name, ErrFlowExists)
	}
	if contains(p.writeCache, name) {
		imetrics.FlowWritten("already_written", 1)
		imetrics.IncViolations()
		return fmt.Errorf("write flow %q: %w", name, ErrFlowAlreadyWritten)
	}
	p.writeCache = append(p.writeCache, name)
	p.flows[name] = value
	imetrics.FlowWritten("ok", 1)
	return nil
}

// BeginInvocation atomically drains the read and write caches and returns
// them. It is called twice around every pipe execution: once to clear any
// leftover state, once to harvest what that execution did. Outside an
// active invocation both caches are empty.
func (p *Pool) BeginInvocation() Access {
	access := Access{Reads: p.readCache, Writes: p.writeCache}
	p.readCache = nil
	p.writeCache = nil
	return access
}

// Has reports whether a flow exists without recording an access.
func (p *Pool) Has(name string) bool {
	_, exists := p.flows[name]
	return exists
}

// Len returns the number of flows in the pool.
func (p *Pool) Len() int {
	return len(p.flows)
}

// Snapshot returns a copy of the flow map for inspection after a run.
// Snapshots bypass access tracking; they are for hosts, not pipes.
func (p *Pool) Snapshot() map[string]interface{} {
	snapshot := make(map[string]interface{}, len(p.flows))
	for name, value := range p.flows {
		snapshot[name] = value
	}
	return snapshot
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
