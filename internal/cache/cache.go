package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/spboyer/napr/internal/dataset"
	"github.com/spboyer/napr/internal/models"
	"github.com/spboyer/napr/internal/utils"
)

// Cache provides caching for evaluation outcomes
type Cache struct {
	dir string
	mu  sync.Mutex
}

// New creates a new cache instance with the specified directory
func New(dir string) *Cache {
	return &Cache{dir: dir}
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// CacheKey generates a unique cache key for an experiment run.
// The key is based on:
// - the experiment definition (name, dataset settings, config, thresholds, models)
// - the decompressed content of every dataset file
//
// Relative dataset paths are resolved against specDir.
func CacheKey(spec *models.ExperimentSpec, specDir string) (string, error) {
	h := sha256.New()

	if err := writeString(h, spec.Name); err != nil {
		return "", err
	}

	specJSON, err := json.Marshal(spec)
	if err != nil {
		return "", fmt.Errorf("marshaling experiment: %w", err)
	}
	if _, err := h.Write(specJSON); err != nil {
		return "", err
	}

	paths := []string{spec.Dataset.Path}
	if held := spec.ResolvedHeldOut(); held != nil {
		paths = append(paths, held.Path)
	}
	for _, p := range paths {
		if err := writeString(h, p); err != nil {
			return "", err
		}
		if err := hashFile(h, utils.ResolvePath(p, specDir)); err != nil {
			return "", fmt.Errorf("hashing dataset %s: %w", p, err)
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// Cacheable reports whether an experiment's outcome is reproducible. Without
// a seed the split differs between runs, so the outcome is never cached.
func Cacheable(spec *models.ExperimentSpec) bool {
	return spec.Config.Seed != nil
}

// Get retrieves a cached outcome if it exists
func (c *Cache) Get(key string) (*models.EvaluationOutcome, bool) {
	if c.dir == "" {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.cachePath(key))
	if err != nil {
		// Cache miss
		return nil, false
	}

	var outcome models.EvaluationOutcome
	if err := json.Unmarshal(data, &outcome); err != nil {
		// Invalid cache entry, treat as miss
		return nil, false
	}

	return &outcome, true
}

// Put stores an outcome in the cache
func (c *Cache) Put(key string, outcome *models.EvaluationOutcome) error {
	if c.dir == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	data, err := json.MarshalIndent(outcome, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling outcome: %w", err)
	}

	if err := os.WriteFile(c.cachePath(key), data, 0644); err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}

	return nil
}

// Clear removes all cached results
func (c *Cache) Clear() error {
	if c.dir == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := os.Stat(c.dir); os.IsNotExist(err) {
		return nil
	}

	// Safety check: only remove a directory that holds nothing but cache files
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("reading cache directory: %w", err)
	}

	if len(entries) > 0 {
		hasValidCache := false
		for _, entry := range entries {
			if entry.IsDir() {
				return fmt.Errorf("cache directory contains subdirectories - refusing to delete for safety")
			}
			if filepath.Ext(entry.Name()) == ".json" {
				hasValidCache = true
			} else {
				return fmt.Errorf("cache directory contains non-cache files - refusing to delete for safety")
			}
		}
		if !hasValidCache {
			return fmt.Errorf("no valid cache files found in directory - refusing to delete for safety")
		}
	}

	return os.RemoveAll(c.dir)
}

// cachePath returns the file path for a cache key
func (c *Cache) cachePath(key string) string {
	return filepath.Join(c.dir, key+".json")
}

// Helper functions

func writeString(w io.Writer, s string) error {
	// Write string with null byte delimiter to prevent hash collisions
	_, err := w.Write([]byte(s + "\x00"))
	return err
}

// hashFile hashes decompressed content so that recompressing a dataset keeps
// its key.
func hashFile(h io.Writer, path string) error {
	f, err := dataset.Open(path)
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck

	if _, err := io.Copy(h, f); err != nil {
		return err
	}

	return nil
}
