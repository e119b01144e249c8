// Package projectconfig provides the ProjectConfig struct and loader for
// .napr.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file looked up by Load.
const FileName = ".napr.yaml"

// Default values for project configuration. New() references them and no
// other code should duplicate them.
const (
	DefaultExperimentsDir = "experiments/"
	DefaultResultsDir     = "results/"

	DefaultSplit       = 0.2
	DefaultAverage     = "weighted"
	DefaultParallelism = 1

	DefaultCacheDir = ".napr-cache"
)

// PathsConfig holds directory paths for experiments and results.
type PathsConfig struct {
	Experiments string `yaml:"experiments,omitempty"`
	Results     string `yaml:"results,omitempty"`
}

// DefaultsConfig holds evaluation settings applied when an experiment leaves
// them unset.
type DefaultsConfig struct {
	Seed        *int64   `yaml:"seed,omitempty"`
	Split       float64  `yaml:"split,omitempty"`
	Average     string   `yaml:"average,omitempty"`
	Parallelism int      `yaml:"parallelism,omitempty"`
	Metrics     []string `yaml:"metrics,omitempty"`
}

// CacheConfig holds cache settings.
type CacheConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Dir     string `yaml:"dir,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .napr.yaml.
type ProjectConfig struct {
	Paths    PathsConfig    `yaml:"paths,omitempty"`
	Defaults DefaultsConfig `yaml:"defaults,omitempty"`
	Cache    CacheConfig    `yaml:"cache,omitempty"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Paths: PathsConfig{
			Experiments: DefaultExperimentsDir,
			Results:     DefaultResultsDir,
		},
		Defaults: DefaultsConfig{
			Split:       DefaultSplit,
			Average:     DefaultAverage,
			Parallelism: DefaultParallelism,
		},
		Cache: CacheConfig{
			Enabled: boolPtr(false),
			Dir:     DefaultCacheDir,
		},
	}
}

// Load finds .napr.yaml by walking up from startDir (max 10 levels),
// unmarshals it, and fills in missing fields with defaults.
// If no config file is found, returns defaults with a nil error.
// Real I/O errors (e.g. permission denied) are returned to the caller.
func Load(startDir string) (*ProjectConfig, error) {
	cfg := New()

	data, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("loading %s: %w", FileName, err)
	}

	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", FileName, err)
	}

	mergeConfig(cfg, &fileCfg)
	return cfg, nil
}

// CacheEnabled reports whether result caching is switched on.
func (c *ProjectConfig) CacheEnabled() bool {
	return c.Cache.Enabled != nil && *c.Cache.Enabled
}

// findConfigFile walks up from dir looking for .napr.yaml (max 10 levels).
// Returns os.ErrNotExist if no config file is found.
func findConfigFile(dir string) ([]byte, error) {
	// Convert to absolute path so filepath.Dir(".") walks correctly.
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < 10; i++ {
		p := filepath.Join(dir, FileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	// Paths
	if src.Paths.Experiments != "" {
		dst.Paths.Experiments = src.Paths.Experiments
	}
	if src.Paths.Results != "" {
		dst.Paths.Results = src.Paths.Results
	}

	// Defaults
	if src.Defaults.Seed != nil {
		dst.Defaults.Seed = src.Defaults.Seed
	}
	if src.Defaults.Split != 0 {
		dst.Defaults.Split = src.Defaults.Split
	}
	if src.Defaults.Average != "" {
		dst.Defaults.Average = src.Defaults.Average
	}
	if src.Defaults.Parallelism != 0 {
		dst.Defaults.Parallelism = src.Defaults.Parallelism
	}
	if len(src.Defaults.Metrics) > 0 {
		dst.Defaults.Metrics = src.Defaults.Metrics
	}

	// Cache
	if src.Cache.Enabled != nil {
		dst.Cache.Enabled = src.Cache.Enabled
	}
	if src.Cache.Dir != "" {
		dst.Cache.Dir = src.Cache.Dir
	}
}

func boolPtr(b bool) *bool {
	return &b
}
