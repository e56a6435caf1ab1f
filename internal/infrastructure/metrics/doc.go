// Package metrics exposes expvar-published counters used by the PipeFlow
// runtime (flow pool, config store, pipe execution, trace persistence). It
// intentionally avoids external dependencies and is readable through the
// standard /debug/vars endpoint when a host embeds one.
package metrics
