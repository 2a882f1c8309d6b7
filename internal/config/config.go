// Package config locates and parses dtop's optional YAML config file and
// merges it with CLI flags per spec.md §6. Grounded on dockmon's
// shared/agent config modules (both vendor gopkg.in/yaml.v3 for a flat
// settings struct read once at startup).
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// HostEntry is one `hosts:` list entry in the config schema (spec.md §6).
type HostEntry struct {
	Host   string   `yaml:"host"`
	Dozzle string   `yaml:"dozzle,omitempty"`
	Filter []string `yaml:"filter,omitempty"`
}

// File is the parsed shape of the YAML config document.
type File struct {
	Hosts []HostEntry `yaml:"hosts"`
	Icons string      `yaml:"icons"`
	All   bool        `yaml:"all"`
	Sort  string      `yaml:"sort"`
}

// searchPaths are tried in order; the first that exists wins (spec.md §6).
func searchPaths() []string {
	paths := []string{"config.yaml", "config.yml", ".dtop.yaml", ".dtop.yml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "dtop", "config.yaml"),
			filepath.Join(home, ".config", "dtop", "config.yml"),
			filepath.Join(home, ".dtop.yaml"),
			filepath.Join(home, ".dtop.yml"),
		)
	}
	return paths
}

// Load searches the documented paths and parses the first one found. A
// missing file is not an error (defaults apply); malformed YAML is fatal,
// matching spec.md §7's ConfigError.
func Load() (File, error) {
	for _, p := range searchPaths() {
		data, err := os.ReadFile(p)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return File{}, fmt.Errorf("config: read %s: %w", p, err)
		}
		var f File
		if err := yaml.Unmarshal(data, &f); err != nil {
			return File{}, fmt.Errorf("config: parse %s: %w", p, err)
		}
		return f, nil
	}
	return File{}, nil
}

// Resolved is what the config loader hands to the CLI runner after
// merging config with flags (spec.md §6 merge rules).
type Resolved struct {
	HostSpecs []HostEntry
	Icons     string
	All       bool
	Sort      string
}

// Merge applies spec.md §6's merge rules: CLI hosts (when explicitly
// given) replace config hosts wholesale, losing per-host dozzle/filter
// annotations (spec.md §9's chosen resolution to the source's ambiguity);
// CLI filters, when given, replace every host's filter list; sort/icons
// from CLI override config when non-empty; show-all is a one-way enable
// (cliAll or cfg.All), never a disable.
func Merge(cfg File, cliHosts []string, cliFilters []string, cliAll bool, cliIcons, cliSort string) Resolved {
	r := Resolved{Icons: cfg.Icons, All: cfg.All || cliAll, Sort: cfg.Sort}

	if len(cliHosts) > 0 {
		r.HostSpecs = make([]HostEntry, 0, len(cliHosts))
		for _, h := range cliHosts {
			r.HostSpecs = append(r.HostSpecs, HostEntry{Host: h, Filter: cliFilters})
		}
	} else {
		r.HostSpecs = cfg.Hosts
		if len(cliFilters) > 0 {
			for i := range r.HostSpecs {
				r.HostSpecs[i].Filter = cliFilters
			}
		}
	}
	if len(r.HostSpecs) == 0 {
		r.HostSpecs = []HostEntry{{Host: "local"}}
	}

	if cliIcons != "" {
		r.Icons = cliIcons
	}
	if cliSort != "" {
		r.Sort = cliSort
	}
	return r
}
