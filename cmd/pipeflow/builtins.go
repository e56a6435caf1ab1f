package main

import (
	"fmt"

	"github.com/pipeflow/pipeflow/internal/core/config"
	"github.com/pipeflow/pipeflow/internal/core/flow"
	"github.com/pipeflow/pipeflow/internal/core/pipeline"
	"github.com/pipeflow/pipeflow/pkg/validation"
)

// buildPipe turns one manifest entry into a pipe. The builtins are small,
// generic stages so that declarative manifests stay runnable without
// authoring Go code; real deployments register their own Computer
// implementations through the library API.
func buildPipe(m validation.PipeManifest) (*pipeline.Pipe, error) {
	switch m.Uses {
	case "const":
		return constPipe(m)
	case "copy":
		return copyPipe(m)
	case "setting":
		return settingPipe(m)
	default:
		return nil, fmt.Errorf("unknown builtin pipe %q", m.Uses)
	}
}

// constPipe writes with["value"] under the flow named with["flow"].
func constPipe(m validation.PipeManifest) (*pipeline.Pipe, error) {
	name, err := stringArg(m, "flow")
	if err != nil {
		return nil, err
	}
	value, ok := m.With["value"]
	if !ok {
		return nil, fmt.Errorf("pipe %q: missing %q argument", m.Name, "value")
	}
	overwrite := false
	if raw, ok := m.With["overwrite"]; ok {
		overwrite = raw == "true"
	}
	return pipeline.Func(m.Name, func(pool *flow.Pool, cfg *config.Config, mode string) error {
		return pool.Write(name, value, overwrite)
	}), nil
}

// copyPipe reads the flow with["from"] and writes it under with["to"].
func copyPipe(m validation.PipeManifest) (*pipeline.Pipe, error) {
	from, err := stringArg(m, "from")
	if err != nil {
		return nil, err
	}
	to, err := stringArg(m, "to")
	if err != nil {
		return nil, err
	}
	return pipeline.Func(m.Name, func(pool *flow.Pool, cfg *config.Config, mode string) error {
		value, err := pool.Read(from)
		if err != nil {
			return err
		}
		return pool.Write(to, value, false)
	}), nil
}

// settingPipe reads the config setting with["setting"] and writes it under
// the flow named with["flow"].
func settingPipe(m validation.PipeManifest) (*pipeline.Pipe, error) {
	setting, err := stringArg(m, "setting")
	if err != nil {
		return nil, err
	}
	name, err := stringArg(m, "flow")
	if err != nil {
		return nil, err
	}
	return pipeline.Func(m.Name, func(pool *flow.Pool, cfg *config.Config, mode string) error {
		value, err := cfg.Get(setting)
		if err != nil {
			return err
		}
		return pool.Write(name, value, false)
	}), nil
}

func stringArg(m validation.PipeManifest, key string) (string, error) {
	raw, ok := m.With[key]
	if !ok {
		return "", fmt.Errorf("pipe %q: missing %q argument", m.Name, key)
	}
	s, ok := raw.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("pipe %q: argument %q must be a non-empty string", m.Name, key)
	}
	return s, nil
}
