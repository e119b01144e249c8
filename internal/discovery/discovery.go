package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DiscoveredExperiment represents an experiment file found during directory traversal.
type DiscoveredExperiment struct {
	Name string // experiment name from the file, or the file stem if unset
	Path string // absolute path to the YAML file
	Dir  string // absolute path to the containing directory
}

// probe holds the keys that mark a YAML file as an experiment.
type probe struct {
	Name    string    `yaml:"name"`
	Dataset yaml.Node `yaml:"dataset"`
	Models  yaml.Node `yaml:"models"`
}

// Discover walks the given root directory and finds all experiment files.
// An experiment file is a .yaml or .yml file with top-level dataset and
// models keys. Results are sorted by path.
func Discover(root string) ([]DiscoveredExperiment, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root path: %w", err)
	}

	// Verify root exists before walking
	if _, err := os.Stat(absRoot); err != nil {
		return nil, fmt.Errorf("root path: %w", err)
	}

	var found []DiscoveredExperiment

	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible entries
		}

		if d.IsDir() {
			// Skip hidden directories (including the cache) but not the root itself
			if path != absRoot && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			if d.Name() == "node_modules" || d.Name() == "vendor" {
				return fs.SkipDir
			}
			return nil
		}

		if !isYAML(d.Name()) || strings.HasPrefix(d.Name(), ".") {
			return nil
		}

		name, ok := readExperiment(path)
		if !ok {
			return nil
		}
		if name == "" {
			name = strings.TrimSuffix(d.Name(), filepath.Ext(d.Name()))
		}
		found = append(found, DiscoveredExperiment{
			Name: name,
			Path: path,
			Dir:  filepath.Dir(path),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory %s: %w", absRoot, err)
	}

	sort.Slice(found, func(i, j int) bool { return found[i].Path < found[j].Path })
	return found, nil
}

// Expand resolves each argument to experiment files: directories are
// searched with Discover, files are kept as given.
func Expand(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		found, err := Discover(arg)
		if err != nil {
			return nil, err
		}
		if len(found) == 0 {
			return nil, fmt.Errorf("no experiment files found in %s", arg)
		}
		for _, e := range found {
			paths = append(paths, e.Path)
		}
	}
	return paths, nil
}

func isYAML(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

// readExperiment reports whether the file at path looks like an experiment.
func readExperiment(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	var p probe
	if err := yaml.Unmarshal(data, &p); err != nil {
		return "", false
	}
	if p.Dataset.Kind == 0 || p.Models.Kind == 0 {
		return "", false
	}
	return p.Name, true
}
