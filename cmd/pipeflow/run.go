package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	sqliterepo "github.com/pipeflow/pipeflow/internal/adapters/repository/sqlite"
	"github.com/pipeflow/pipeflow/internal/core/config"
	"github.com/pipeflow/pipeflow/internal/core/pipeline"
	"github.com/pipeflow/pipeflow/internal/core/trace"
	"github.com/pipeflow/pipeflow/pkg/pipeflow"
	"github.com/pipeflow/pipeflow/pkg/validation"
)

func newRunCmd() *cobra.Command {
	var configDir string
	var traceDB string
	var mode string
	var recordTrace bool

	cmd := &cobra.Command{
		Use:   "run <manifest.json>",
		Short: "Run a pipeline described by a manifest file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manifest, err := loadManifest(args[0])
			if err != nil {
				return err
			}
			return runManifest(cmd.Context(), manifest, configDir, traceDBPath(traceDB), mode, recordTrace)
		},
	}

	cmd.Flags().StringVar(&configDir, "config-dir", "", "directory holding "+config.RecordFilename+" (overrides manifest settings)")
	cmd.Flags().StringVar(&traceDB, "trace-db", "", "sqlite database for provenance records (default $PIPEFLOW_TRACE_DB)")
	cmd.Flags().StringVar(&mode, "mode", pipeline.ModeRun, "mode tag passed to every pipe")
	cmd.Flags().BoolVar(&recordTrace, "record-trace", true, "persist provenance records")
	return cmd
}

func traceDBPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv("PIPEFLOW_TRACE_DB")
}

func loadManifest(path string) (*validation.PipelineManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var manifest validation.PipelineManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if err := validation.ValidateWithPlayground(&manifest); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	if err := manifest.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	return &manifest, nil
}

func runManifest(ctx context.Context, manifest *validation.PipelineManifest, configDir, traceDB, mode string, recordTrace bool) error {
	pipes := make([]*pipeline.Pipe, 0, len(manifest.Pipes))
	for _, pm := range manifest.Pipes {
		pipe, err := buildPipe(pm)
		if err != nil {
			return err
		}
		pipes = append(pipes, pipe)
	}
	pl, err := pipeline.NewPipeline(pipes...)
	if err != nil {
		return err
	}

	settings := manifest.Settings
	if settings == nil {
		settings = map[string]interface{}{}
	}
	if configDir != "" {
		cfg, err := config.New(nil)
		if err != nil {
			return err
		}
		if err := cfg.SerializeFrom(configDir); err != nil {
			return err
		}
		settings = cfg.Settings()
	}

	rt, cleanup, err := newRuntime(ctx, traceDB)
	if err != nil {
		return err
	}
	defer cleanup()

	resp, err := rt.Run(ctx, pl, &pipeflow.RunRequest{
		PipelineName: manifest.Name,
		Settings:     settings,
		Mode:         mode,
		RecordTrace:  recordTrace,
	})
	if resp != nil {
		printSummary(resp)
	}
	return err
}

// newRuntime selects the trace backend: sqlite when a database path is
// configured, in-memory otherwise.
func newRuntime(ctx context.Context, traceDB string) (*pipeflow.Runtime, func(), error) {
	if traceDB == "" {
		return pipeflow.NewRuntime(), func() {}, nil
	}

	db, err := sqliterepo.Open(traceDB)
	if err != nil {
		return nil, nil, err
	}
	saver := sqliterepo.NewTraceSaver(db, nil)
	if err := saver.CreateTables(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return pipeflow.NewRuntimeWithSaver(saver), func() { _ = db.Close() }, nil
}

func printSummary(resp *pipeflow.RunResponse) {
	fmt.Printf("run %s: %s (%s)\n", resp.RunID, resp.Status, resp.Duration)
	for _, result := range resp.Results {
		line := fmt.Sprintf("  %d. %-20s %s", result.Step, result.PipeName, result.Status)
		if result.Status == "completed" {
			line += fmt.Sprintf("  reads=[%s] writes=[%s]",
				strings.Join(result.InputFlows, ","), strings.Join(result.OutputFlows, ","))
		} else if result.Error != "" {
			line += "  " + result.Error
		}
		fmt.Println(line)
	}
}

func newTraceCmd() *cobra.Command {
	var traceDB string
	var runID string
	var pipeName string
	var limit int

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "List recorded provenance from a trace database",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := traceDBPath(traceDB)
			if path == "" {
				return fmt.Errorf("no trace database: set --trace-db or PIPEFLOW_TRACE_DB")
			}

			db, err := sqliterepo.Open(path)
			if err != nil {
				return err
			}
			defer db.Close()

			saver := sqliterepo.NewTraceSaver(db, nil)
			if err := saver.CreateTables(cmd.Context()); err != nil {
				return err
			}

			records, err := saver.List(cmd.Context(), trace.Filter{
				RunID:    runID,
				PipeName: pipeName,
				Limit:    limit,
			})
			if err != nil {
				return err
			}

			for _, r := range records {
				fmt.Printf("%s  run=%s step=%d pipe=%s status=%s reads=[%s] writes=[%s]\n",
					r.StartTime.Format("2006-01-02 15:04:05"), r.RunID, r.Step, r.PipeName,
					r.Status, strings.Join(r.InputFlows, ","), strings.Join(r.OutputFlows, ","))
			}
			if len(records) == 0 {
				fmt.Println("no records")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&traceDB, "trace-db", "", "sqlite database for provenance records (default $PIPEFLOW_TRACE_DB)")
	cmd.Flags().StringVar(&runID, "run", "", "filter by run ID")
	cmd.Flags().StringVar(&pipeName, "pipe", "", "filter by pipe name")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum records to list")
	return cmd
}
