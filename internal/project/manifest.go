// Package project locates and loads the optional siergen.toml manifest.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Manifest is a loaded siergen.toml with its location.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Config is the siergen.toml schema.
type Config struct {
	Package    PackageConfig     `toml:"package"`
	Predicates map[string]string `toml:"predicates"`
	Lower      LowerConfig       `toml:"lower"`
	Output     OutputConfig      `toml:"output"`
}

// PackageConfig names the project.
type PackageConfig struct {
	Name string `toml:"name"`
}

// LowerConfig tunes the lowering pass.
type LowerConfig struct {
	FallbackPredicate string `toml:"fallback_predicate"`
}

// OutputConfig selects the default emit format.
type OutputConfig struct {
	Emit string `toml:"emit"`
}

// FindManifest walks up from startDir to locate siergen.toml.
func FindManifest(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "siergen.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// LoadManifest finds and parses the manifest if one exists.
func LoadManifest(startDir string) (*Manifest, bool, error) {
	manifestPath, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	var cfg Config
	if _, err := toml.DecodeFile(manifestPath, &cfg); err != nil {
		return nil, true, fmt.Errorf("failed to parse %s: %w", manifestPath, err)
	}
	return &Manifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, true, nil
}
