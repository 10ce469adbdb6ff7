// Package director loads DM directorial presets from disk. A preset is
// a reusable DirectorialContext a DM can push to the Engine without
// retyping scene guidance every session.
package director

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tbellingham/stagecraft/internal/protocol"
)

// Preset is a named directorial context stored as a YAML file.
//
// Precondition: Name must be non-empty after loading.
type Preset struct {
	Name        string                      `yaml:"name"`
	Description string                      `yaml:"description"`
	Context     protocol.DirectorialContext `yaml:"context"`
}

// LoadPresets reads all .yaml files in dir and parses each as a Preset.
// Results are sorted by name so menus render deterministically.
//
// Precondition: dir must be a readable directory path.
// Postcondition: Returns all parsed presets (may be empty slice) or a
// non-nil error.
func LoadPresets(dir string) ([]*Preset, error) {
	files, err := yamlFiles(dir)
	if err != nil {
		return nil, err
	}
	presets := make([]*Preset, 0, len(files))
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		var p Preset
		if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("parsing preset file %s: %w", path, err)
		}
		if p.Name == "" {
			return nil, fmt.Errorf("preset file %s has no name", path)
		}
		presets = append(presets, &p)
	}
	sort.Slice(presets, func(i, j int) bool { return presets[i].Name < presets[j].Name })
	return presets, nil
}

// Find returns the preset with the given name, matched
// case-insensitively, or nil when absent.
func Find(presets []*Preset, name string) *Preset {
	for _, p := range presets {
		if strings.EqualFold(p.Name, name) {
			return p
		}
	}
	return nil
}

func yamlFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	return paths, nil
}
