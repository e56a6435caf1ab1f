// Package trace defines domain-specific errors
package trace

import "errors"

// Domain errors - DRY principle: defined once, used everywhere
var (
	// Record validation errors
	ErrInvalidRecordID = errors.New("invalid record ID")
	ErrInvalidRunID    = errors.New("invalid run ID")
	ErrInvalidPipeName = errors.New("invalid pipe name")
	ErrInvalidStatus   = errors.New("invalid record status")
	ErrRecordNotFound  = errors.New("record not found")

	// Filter validation errors
	ErrInvalidLimit     = errors.New("limit cannot be negative")
	ErrInvalidOffset    = errors.New("offset cannot be negative")
	ErrInvalidTimeRange = errors.New("invalid time range: since is after before")

	// Persistence errors
	ErrSaveFailed   = errors.New("failed to save record")
	ErrLoadFailed   = errors.New("failed to load record")
	ErrDeleteFailed = errors.New("failed to delete record")
)
