// Package config holds the per-run settings that travel with an experiment
// from the CLI into the runner.
package config

import "github.com/spboyer/napr/internal/models"

// RunConfig pairs an experiment with where it came from and where its
// results go.
type RunConfig struct {
	spec       *models.ExperimentSpec
	specDir    string
	outputPath string
	verbose    bool
}

// Option configures a RunConfig.
type Option func(*RunConfig)

// WithSpecDir sets the directory relative dataset paths are resolved against.
func WithSpecDir(dir string) Option {
	return func(c *RunConfig) {
		c.specDir = dir
	}
}

// WithOutputPath sets where the JSON outcome is written.
func WithOutputPath(path string) Option {
	return func(c *RunConfig) {
		c.outputPath = path
	}
}

func WithVerbose(v bool) Option {
	return func(c *RunConfig) {
		c.verbose = v
	}
}

// NewRunConfig creates a RunConfig. A nil option panics.
func NewRunConfig(spec *models.ExperimentSpec, opts ...Option) *RunConfig {
	c := &RunConfig{spec: spec}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *RunConfig) Spec() *models.ExperimentSpec { return c.spec }
func (c *RunConfig) SpecDir() string              { return c.specDir }
func (c *RunConfig) OutputPath() string           { return c.outputPath }
func (c *RunConfig) Verbose() bool                { return c.verbose }
