// Package config defines domain-specific errors
package config

import "errors"

// Domain errors - DRY principle: defined once, used everywhere
var (
	ErrSettingNotFound = errors.New("setting not found")
	ErrNonScalarValue  = errors.New("setting values must be integer, float, or string")
	ErrInvalidRecord   = errors.New("invalid config record")
)
