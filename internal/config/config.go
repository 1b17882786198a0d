// Package config loads the optional TOML configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pfrederiksen/vote-projector/internal/county"
	"github.com/pfrederiksen/vote-projector/internal/extract"
)

// DefaultPath is where the CLI looks for a config file when none is given
const DefaultPath = "~/.config/vote-projector/config.toml"

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	URL        string            `toml:"url"`
	State      string            `toml:"state"`
	Candidates *CandidatesConfig `toml:"candidates"`
	Selectors  extract.Selectors `toml:"selectors"`
}

// CandidatesConfig maps the two tracked candidate slots.
type CandidatesConfig struct {
	A county.Candidate `toml:"a"`
	B county.Candidate `toml:"b"`
}

// Table returns the candidate table, filling missing names from patterns and
// missing slots from the defaults.
func (c *CandidatesConfig) Table() county.CandidateTable {
	table := county.DefaultCandidates()
	if c == nil {
		return table
	}
	if c.A.Pattern != "" {
		table.A = c.A
	}
	if c.B.Pattern != "" {
		table.B = c.B
	}
	return table
}

// Load reads a TOML config from the given path. A missing file is only an
// error when required is set.
func Load(path string, required bool) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}

	expanded, err := expandHome(path)
	if err != nil {
		return FileConfig{}, err
	}

	if _, err := os.Stat(expanded); err != nil {
		if os.IsNotExist(err) && !required {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}

	var cfg FileConfig
	meta, err := toml.DecodeFile(expanded, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return FileConfig{}, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}

	return cfg, nil
}

func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}
