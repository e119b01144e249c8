package models

import (
	"fmt"
	"os"

	"github.com/spboyer/napr/internal/metrics"
	"gopkg.in/yaml.v3"
)

// ExperimentSpec describes one evaluation: a dataset, the classifiers to
// compare and how to score them.
type ExperimentSpec struct {
	SpecIdentity `yaml:",inline"`
	Dataset      DatasetConfig      `yaml:"dataset" json:"dataset"`
	HeldOut      *DatasetConfig     `yaml:"held_out,omitempty" json:"held_out,omitempty"`
	Config       EvalConfig         `yaml:"config" json:"config"`
	Thresholds   map[string]float64 `yaml:"thresholds,omitempty" json:"thresholds,omitempty"`
	Models       []ModelConfig      `yaml:"models" json:"models"`
}

type SpecIdentity struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// DatasetConfig points at a CSV file and names its label column.
type DatasetConfig struct {
	Path        string   `yaml:"path" json:"path"`
	Target      string   `yaml:"target,omitempty" json:"target,omitempty"`
	Drop        []string `yaml:"drop,omitempty" json:"drop,omitempty"`
	IndexColumn string   `yaml:"index_column,omitempty" json:"index_column,omitempty"`
}

// EvalConfig controls the split and scoring. Zero values mean "use the default".
type EvalConfig struct {
	Split       float64  `yaml:"split,omitempty" json:"split,omitempty"`
	Seed        *int64   `yaml:"seed,omitempty" json:"seed,omitempty"`
	Parallelism int      `yaml:"parallelism,omitempty" json:"parallelism,omitempty"`
	Average     string   `yaml:"average,omitempty" json:"average,omitempty"`
	Metrics     []string `yaml:"metrics,omitempty" json:"metrics,omitempty"`
	CVFolds     int      `yaml:"cv_folds,omitempty" json:"cv_folds,omitempty"`
}

// ModelConfig selects a classifier kind and its parameters. Name defaults to
// the classifier's type name.
type ModelConfig struct {
	Kind   string         `yaml:"kind" json:"kind"`
	Name   string         `yaml:"name,omitempty" json:"name,omitempty"`
	Params map[string]any `yaml:"params,omitempty" json:"params,omitempty"`
}

// LoadExperimentSpec loads and validates an experiment from a YAML file
func LoadExperimentSpec(path string) (*ExperimentSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var spec ExperimentSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid experiment %s: %w", path, err)
	}

	return &spec, nil
}

// Validate checks the parts of the experiment that do not need the data.
func (s *ExperimentSpec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Dataset.Path == "" {
		return fmt.Errorf("dataset.path is required")
	}
	if s.Dataset.Target == "" {
		return fmt.Errorf("dataset.target is required")
	}
	if s.HeldOut != nil && s.HeldOut.Path == "" {
		return fmt.Errorf("held_out.path is required when held_out is set")
	}
	if s.Config.Split < 0 || s.Config.Split >= 1 {
		return fmt.Errorf("config.split must be in (0, 1), got %g", s.Config.Split)
	}
	if s.Config.CVFolds == 1 || s.Config.CVFolds < 0 {
		return fmt.Errorf("config.cv_folds must be 0 or at least 2, got %d", s.Config.CVFolds)
	}
	if _, err := metrics.ParseAverage(s.Config.Average); err != nil {
		return fmt.Errorf("config.average: %w", err)
	}
	if _, err := metrics.ParseNames(s.Config.Metrics); err != nil {
		return fmt.Errorf("config.metrics: %w", err)
	}
	for name, minimum := range s.Thresholds {
		n := metrics.Name(name)
		if !n.Valid() || !n.IsScalar() {
			return fmt.Errorf("thresholds: %q is not a scalar metric", name)
		}
		if minimum < 0 || minimum > 1 {
			return fmt.Errorf("thresholds: %s must be in [0, 1], got %g", name, minimum)
		}
	}

	if len(s.Models) == 0 {
		return fmt.Errorf("at least one model is required")
	}
	names := make(map[string]bool, len(s.Models))
	unnamed := make(map[string]int, len(s.Models))
	for i, m := range s.Models {
		if m.Kind == "" {
			return fmt.Errorf("models[%d].kind is required", i)
		}
		if m.Name == "" {
			// Unnamed models are shown under their type name, so two of the
			// same kind would collide.
			if j, ok := unnamed[m.Kind]; ok {
				return fmt.Errorf("models[%d]: same kind %q as models[%d]; give one of them a name", i, m.Kind, j)
			}
			unnamed[m.Kind] = i
			continue
		}
		if names[m.Name] {
			return fmt.Errorf("models[%d]: duplicate name %q", i, m.Name)
		}
		names[m.Name] = true
	}
	return nil
}

// ResolvedHeldOut returns the held-out dataset with unset fields inherited
// from the main dataset, or nil when no held-out set is configured.
func (s *ExperimentSpec) ResolvedHeldOut() *DatasetConfig {
	if s.HeldOut == nil {
		return nil
	}
	h := *s.HeldOut
	if h.Target == "" {
		h.Target = s.Dataset.Target
	}
	if h.Drop == nil {
		h.Drop = s.Dataset.Drop
	}
	if h.IndexColumn == "" {
		h.IndexColumn = s.Dataset.IndexColumn
	}
	return &h
}
