package configloader

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Loader is a unified loader for the engine's YAML data tables.
// Documents are resolved from an optional override directory first and fall
// back to an embedded filesystem, so a deployment can replace individual
// tables without rebuilding the binary.
type Loader struct {
	overrideDir string
	defaults    fs.FS
	cache       sync.Map
}

// NewLoader creates a loader over the embedded defaults.
// overrideDir may be empty, in which case only the defaults are consulted.
func NewLoader(defaults fs.FS, overrideDir string) *Loader {
	return &Loader{
		overrideDir: overrideDir,
		defaults:    defaults,
	}
}

// Load loads a single YAML document and unmarshals it into target.
func (l *Loader) Load(subPath string, target any) error {
	data, err := l.ReadFileWithFallback(subPath)
	if err != nil {
		return fmt.Errorf("read file %s: %w", subPath, err)
	}

	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("unmarshal YAML %s: %w", subPath, err)
	}

	return nil
}

// LoadCached loads a document with caching.
// If the document is already cached, returns the cached value.
// Otherwise, calls factory to create the target and caches it.
func (l *Loader) LoadCached(subPath string, factory func() any) (any, error) {
	// Check cache first
	if cached, ok := l.cache.Load(subPath); ok {
		return cached, nil
	}

	// Create new instance using factory
	target := factory()

	// Load data
	if err := l.Load(subPath, target); err != nil {
		return nil, err
	}

	// Store in cache
	l.cache.Store(subPath, target)

	return target, nil
}

// LoadEmbedded loads a document from the embedded defaults only,
// ignoring any override. Used to recover from a rejected override.
func (l *Loader) LoadEmbedded(subPath string, target any) error {
	data, err := fs.ReadFile(l.defaults, subPath)
	if err != nil {
		return fmt.Errorf("read embedded %s: %w", subPath, err)
	}
	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("unmarshal YAML %s: %w", subPath, err)
	}
	return nil
}

// ReadFileWithFallback tries the override directory first, then the
// embedded defaults. An override that exists but cannot be read is an
// error rather than a silent fallback, so operators notice bad deploys.
func (l *Loader) ReadFileWithFallback(path string) ([]byte, error) {
	if l.overrideDir != "" {
		absPath := filepath.Join(l.overrideDir, path)
		data, err := os.ReadFile(absPath)
		if err == nil {
			return data, nil
		}
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	return fs.ReadFile(l.defaults, path)
}

// Overridden reports whether path resolves to a file in the override
// directory rather than the embedded defaults.
func (l *Loader) Overridden(path string) bool {
	if l.overrideDir == "" {
		return false
	}
	_, err := os.Stat(filepath.Join(l.overrideDir, path))
	return err == nil
}

// ClearCache clears the document cache.
func (l *Loader) ClearCache() {
	l.cache = sync.Map{}
}
