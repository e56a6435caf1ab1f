// Package validation provides manifest definitions with validation tags
package validation

// PipeManifest declares one stage of a pipeline by builtin name. Used by
// hosts that assemble pipelines from declarative files rather than code.
type PipeManifest struct {
	Name    string                 `json:"name" validate:"required,pipe_name"`
	Uses    string                 `json:"uses" validate:"required,pipe_name"`
	With    map[string]interface{} `json:"with,omitempty" validate:"omitempty,dive,scalar"`
	Comment string                 `json:"comment,omitempty" validate:"omitempty,max=500"`
}

// PipelineManifest declares a full pipeline: ordered pipes plus the settings
// exposed to them through the config store.
type PipelineManifest struct {
	Name     string                 `json:"name" validate:"required,pipe_name"`
	Version  string                 `json:"version,omitempty" validate:"omitempty,semver"`
	Pipes    []PipeManifest         `json:"pipes" validate:"required,min=1,dive"`
	Settings map[string]interface{} `json:"settings,omitempty" validate:"omitempty,dive,scalar"`
}

// Validate implements custom validation for PipelineManifest
func (m *PipelineManifest) Validate() error {
	seen := make(map[string]bool, len(m.Pipes))
	for _, pipe := range m.Pipes {
		if seen[pipe.Name] {
			return ValidationErrors{{
				Field:   "pipes",
				Value:   pipe.Name,
				Message: "duplicate pipe name",
			}}
		}
		seen[pipe.Name] = true
	}
	return nil
}

// RunManifest declares a run of a named pipeline
type RunManifest struct {
	Pipeline    string `json:"pipeline" validate:"required,pipe_name"`
	Mode        string `json:"mode,omitempty" validate:"omitempty,run_mode"`
	ConfigDir   string `json:"config_dir,omitempty"`
	RecordTrace bool   `json:"record_trace"`
}
