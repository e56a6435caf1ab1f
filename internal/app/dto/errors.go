package dto

import "errors"

// Run errors
var (
	ErrNilPipeline     = errors.New("pipeline is required")
	ErrInvalidSettings = errors.New("invalid settings provided")
	ErrRunFailed       = errors.New("pipeline run failed")
)
