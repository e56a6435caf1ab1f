package metrics

import (
	"expvar"
)

// Flow pool / config metrics (counters) using expvar maps keyed by outcome.
// Outcome is "ok" or the violation kind (e.g. "already_read").
var (
	flowReads   = expvar.NewMap("pipeflow_flow_reads_total")
	flowWrites  = expvar.NewMap("pipeflow_flow_writes_total")
	configReads = expvar.NewMap("pipeflow_config_reads_total")
	traceSaved  = expvar.NewMap("pipeflow_trace_saved_total")
)

// Pipe / Pipeline metrics.
var (
	pipeRunsTotal     = new(expvar.Int)
	pipeFailuresTotal = new(expvar.Int)
	pipelineRunsTotal = new(expvar.Int)
	violationsTotal   = new(expvar.Int)
)

func init() {
	expvar.Publish("pipeflow_pipe_runs_total", pipeRunsTotal)
	expvar.Publish("pipeflow_pipe_failures_total", pipeFailuresTotal)
	expvar.Publish("pipeflow_pipeline_runs_total", pipelineRunsTotal)
	expvar.Publish("pipeflow_access_violations_total", violationsTotal)
}

// Store helpers
func FlowRead(outcome string, n int64)    { flowReads.Add(outcome, n) }
func FlowWritten(outcome string, n int64) { flowWrites.Add(outcome, n) }
func ConfigRead(outcome string, n int64)  { configReads.Add(outcome, n) }
func TraceSaved(kind string, n int64)     { traceSaved.Add(kind, n) }

// Pipe/Pipeline helpers
func IncPipeRuns()     { pipeRunsTotal.Add(1) }
func IncPipeFailures() { pipeFailuresTotal.Add(1) }
func IncPipelineRuns() { pipelineRunsTotal.Add(1) }
func IncViolations()   { violationsTotal.Add(1) }
