// Package pipeline defines domain-specific errors
package pipeline

import "errors"

// Domain errors - DRY principle: defined once, used everywhere
var (
	ErrNilPipe         = errors.New("pipe cannot be nil")
	ErrNoPipes         = errors.New("pipeline must contain at least one pipe")
	ErrNilComputer     = errors.New("pipe computation cannot be nil")
	ErrInvalidPipeName = errors.New("invalid pipe name")
)
