// Package config provides the read-only settings store shared by every pipe
// in a pipeline run, with per-invocation access tracking and a JSON record
// for round-tripping settings through a directory.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	imetrics "github.com/pipeflow/pipeflow/internal/infrastructure/metrics"
)

// RecordFilename is the fixed name of the serialized settings record inside
// a target directory.
const RecordFilename = "config.json"

// Config is an immutable map of scalar settings with access tracking.
// PRINCIPLES:
// - KISS: A validated map plus one access cache
// - SRP: Only responsible for settings storage, tracking, serialization
//
// Values are restricted to scalars. Integer kinds normalize to int64 and
// float kinds to float64 at construction so that a settings map survives
// the JSON round trip unchanged.
//
// Pipe execution never mutates the map, only reads and tracks. Like the
// flow pool, a Config is single-goroutine only.
type Config struct {
	settings map[string]interface{}
	cache    map[string]interface{}
}

// New constructs a Config from a settings map, rejecting non-scalar values.
func New(settings map[string]interface{}) (*Config, error) {
	normalized, err := normalize(settings)
	if err != nil {
		return nil, err
	}
	return &Config{settings: normalized, cache: make(map[string]interface{})}, nil
}

// Get returns the value stored under name and records the access. Unlike
// flow reads, re-reading the same setting within one invocation is allowed
// and simply re-records it.
func (c *Config) Get(name string) (interface{}, error) {
	value, exists := c.settings[name]
	if !exists {
		imetrics.ConfigRead("not_found", 1)
		return nil, fmt.Errorf("get config %q: %w", name, ErrSettingNotFound)
	}
	c.cache[name] = value
	imetrics.ConfigRead("ok", 1)
	return value, nil
}

// GetInt returns a setting as int64, failing if it holds another type.
func (c *Config) GetInt(name string) (int64, error) {
	value, err := c.Get(name)
	if err != nil {
		return 0, err
	}
	i, ok := value.(int64)
	if !ok {
		return 0, fmt.Errorf("get config %q: expected integer, got %T", name, value)
	}
	return i, nil
}

// GetFloat returns a setting as float64, failing if it holds another type.
func (c *Config) GetFloat(name string) (float64, error) {
	value, err := c.Get(name)
	if err != nil {
		return 0, err
	}
	f, ok := value.(float64)
	if !ok {
		return 0, fmt.Errorf("get config %q: expected float, got %T", name, value)
	}
	return f, nil
}

// GetString returns a setting as string, failing if it holds another type.
func (c *Config) GetString(name string) (string, error) {
	value, err := c.Get(name)
	if err != nil {
		return "", err
	}
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("get config %q: expected string, got %T", name, value)
	}
	return s, nil
}

// BeginInvocation drains and returns the access cache (name to retrieved
// value), same dual-call discipline as the flow pool.
func (c *Config) BeginInvocation() map[string]interface{} {
	cache := c.cache
	c.cache = make(map[string]interface{})
	return cache
}

// Len returns the number of settings.
func (c *Config) Len() int {
	return len(c.settings)
}

// Settings returns a copy of the settings map without recording accesses.
// For hosts and serialization, not for pipes.
func (c *Config) Settings() map[string]interface{} {
	out := make(map[string]interface{}, len(c.settings))
	for name, value := range c.settings {
		out[name] = value
	}
	return out
}

// SerializeTo writes the full settings map as JSON to RecordFilename inside
// targetDir.
func (c *Config) SerializeTo(targetDir string) error {
	data, err := json.MarshalIndent(c.settings, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config record: %w", err)
	}
	path := filepath.Join(targetDir, RecordFilename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config record: %w", err)
	}
	return nil
}

// SerializeFrom replaces the settings map by reading RecordFilename from
// sourceDir, re-validating scalar-only typing exactly as construction does.
func (c *Config) SerializeFrom(sourceDir string) error {
	path := filepath.Join(sourceDir, RecordFilename)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config record: %w", err)
	}
	settings, err := decodeRecord(data)
	if err != nil {
		return err
	}
	c.settings = settings
	return nil
}

// decodeRecord parses a JSON record preserving the int/float distinction:
// integral numbers decode to int64, the rest to float64.
func decodeRecord(data []byte) (map[string]interface{}, error) {
	var generic map[string]interface{}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&generic); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	settings := make(map[string]interface{}, len(generic))
	for name, value := range generic {
		switch v := value.(type) {
		case json.Number:
			if i, err := v.Int64(); err == nil {
				settings[name] = i
				continue
			}
			f, err := v.Float64()
			if err != nil {
				return nil, fmt.Errorf("%w: setting %q: %v", ErrInvalidRecord, name, err)
			}
			settings[name] = f
		case string:
			settings[name] = v
		default:
			return nil, fmt.Errorf("setting %q: %w", name, ErrNonScalarValue)
		}
	}
	return settings, nil
}

// normalize validates scalar-only typing and collapses numeric kinds.
func normalize(settings map[string]interface{}) (map[string]interface{}, error) {
	normalized := make(map[string]interface{}, len(settings))
	for name, value := range settings {
		switch v := value.(type) {
		case int:
			normalized[name] = int64(v)
		case int8:
			normalized[name] = int64(v)
		case int16:
			normalized[name] = int64(v)
		case int32:
			normalized[name] = int64(v)
		case int64:
			normalized[name] = v
		case uint:
			normalized[name] = int64(v)
		case uint8:
			normalized[name] = int64(v)
		case uint16:
			normalized[name] = int64(v)
		case uint32:
			normalized[name] = int64(v)
		case float32:
			normalized[name] = float64(v)
		case float64:
			normalized[name] = v
		case string:
			normalized[name] = v
		default:
			return nil, fmt.Errorf("setting %q: %w (got %T)", name, ErrNonScalarValue, value)
		}
	}
	return normalized, nil
}
