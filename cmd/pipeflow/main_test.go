// Package main tests for the PipeFlow CLI application
package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipeflow/pipeflow/internal/core/config"
	"github.com/pipeflow/pipeflow/internal/core/flow"
	"github.com/pipeflow/pipeflow/pkg/validation"
)

func writeManifest(t *testing.T, manifest validation.PipelineManifest) string {
	t.Helper()
	data, err := json.Marshal(manifest)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "pipeline.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoadManifest(t *testing.T) {
	t.Run("valid manifest", func(t *testing.T) {
		path := writeManifest(t, validation.PipelineManifest{
			Name: "demo",
			Pipes: []validation.PipeManifest{
				{Name: "seed", Uses: "const", With: map[string]interface{}{"flow": "a", "value": "hello"}},
			},
		})
		manifest, err := loadManifest(path)
		require.NoError(t, err)
		assert.Equal(t, "demo", manifest.Name)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loadManifest(filepath.Join(t.TempDir(), "nope.json"))
		assert.Error(t, err)
	})

	t.Run("invalid manifest", func(t *testing.T) {
		path := writeManifest(t, validation.PipelineManifest{Name: "demo"})
		_, err := loadManifest(path)
		assert.Error(t, err)
	})
}

func TestBuildPipe(t *testing.T) {
	cfg, err := config.New(map[string]interface{}{"label": "prod"})
	require.NoError(t, err)

	t.Run("const", func(t *testing.T) {
		pipe, err := buildPipe(validation.PipeManifest{
			Name: "seed", Uses: "const",
			With: map[string]interface{}{"flow": "a", "value": 7},
		})
		require.NoError(t, err)

		pool := flow.NewPool()
		require.NoError(t, pipe.Run(pool, cfg, "run"))
		assert.Equal(t, []string{"a"}, pipe.OutputFlows())
	})

	t.Run("copy", func(t *testing.T) {
		pipe, err := buildPipe(validation.PipeManifest{
			Name: "dup", Uses: "copy",
			With: map[string]interface{}{"from": "a", "to": "b"},
		})
		require.NoError(t, err)

		pool := flow.PoolFrom(map[string]interface{}{"a": 1})
		require.NoError(t, pipe.Run(pool, cfg, "run"))
		assert.Equal(t, []string{"a"}, pipe.InputFlows())
		assert.Equal(t, []string{"b"}, pipe.OutputFlows())
	})

	t.Run("setting", func(t *testing.T) {
		pipe, err := buildPipe(validation.PipeManifest{
			Name: "expose", Uses: "setting",
			With: map[string]interface{}{"setting": "label", "flow": "label_flow"},
		})
		require.NoError(t, err)

		pool := flow.NewPool()
		require.NoError(t, pipe.Run(pool, cfg, "run"))
		assert.Equal(t, map[string]interface{}{"label": "prod"}, pipe.ConfigUsed())
	})

	t.Run("unknown builtin", func(t *testing.T) {
		_, err := buildPipe(validation.PipeManifest{Name: "x", Uses: "nope"})
		assert.Error(t, err)
	})

	t.Run("missing argument", func(t *testing.T) {
		_, err := buildPipe(validation.PipeManifest{Name: "x", Uses: "copy"})
		assert.Error(t, err)
	})
}

func TestRunManifest_EndToEnd(t *testing.T) {
	manifest := &validation.PipelineManifest{
		Name: "demo",
		Pipes: []validation.PipeManifest{
			{Name: "seed", Uses: "const", With: map[string]interface{}{"flow": "a", "value": "hello"}},
			{Name: "dup", Uses: "copy", With: map[string]interface{}{"from": "a", "to": "b"}},
		},
		Settings: map[string]interface{}{},
	}

	traceDB := filepath.Join(t.TempDir(), "trace.db")
	err := runManifest(context.Background(), manifest, "", traceDB, "run", true)
	require.NoError(t, err)
	assert.FileExists(t, traceDB)
}

func TestVersionVariables(t *testing.T) {
	assert.NotEmpty(t, Version)
	assert.NotEmpty(t, Commit)
	assert.NotEmpty(t, BuildTime)
}
