// Package artifact persists mining outputs as schema-versioned JSON with
// write-then-replace semantics: a failed save never leaves a previously
// written artifact partially overwritten.
package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Standard artifact file names inside a run's artifact directory.
const (
	CallGraphFile   = "callgraph.json"
	RegistryFile    = "registry.json"
	CatalogFile     = "catalog.json"
	DiagnosticsFile = "diagnostics.json"
)

// Save marshals v and atomically replaces path: the bytes land in a
// temp file in the same directory, then rename over the target.
func Save(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("artifact: marshal %q: %w", path, err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("artifact: create dir %q: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("artifact: temp file for %q: %w", path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("artifact: write %q: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("artifact: close %q: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("artifact: replace %q: %w", path, err)
	}
	return nil
}

// Load reads a JSON artifact into v.
func Load(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("artifact: read %q: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("artifact: parse %q: %w", path, err)
	}
	return nil
}
