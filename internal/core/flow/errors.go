// Package flow defines domain-specific errors
package flow

import "errors"

// Domain errors - DRY principle: defined once, used everywhere
var (
	// Read errors
	ErrFlowNotFound    = errors.New("flow not found")
	ErrFlowAlreadyRead = errors.New("flow can only be read once per invocation")
	ErrReadAfterWrite  = errors.New("flow cannot be read after being written in the same invocation")

	// Write errors
	ErrFlowExists         = errors.New("flow already exists and overwrite is disabled")
	ErrFlowAlreadyWritten = errors.New("flow can only be written once per invocation")

	// Name errors
	ErrInvalidFlowName = errors.New("invalid flow name")
)
