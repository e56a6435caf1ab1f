// Package pipeflow provides a minimal public façade for constructing and
// running pipelines without importing internal packages. It re-exports the
// core types for convenience and exposes a Runtime with simple methods to
// run pipelines and inspect recorded provenance.
package pipeflow
