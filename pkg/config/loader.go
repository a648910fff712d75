package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned by Find when no config file exists between the
// start directory and the filesystem root.
var ErrNotFound = errors.New("no graphql config file found")

// Config file names probed during discovery, in order of preference.
var configFileNames = []string{
	".graphqlrc.yml",
	".graphqlrc.yaml",
	".graphqlrc.json",
	".graphqlrc",
	"graphql.config.yml",
	"graphql.config.yaml",
	"graphql.config.json",
}

// Find walks up the directory tree from startDir looking for a config file.
func Find(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	for {
		for _, name := range configFileNames {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
				return path, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotFound
		}
		dir = parent
	}
}

// Load reads and parses the config file at path. JSON configs parse through
// the YAML decoder, which accepts JSON documents.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// Parse parses config file contents.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Dir returns the directory containing the config file; glob patterns are
// resolved relative to it.
func (c *Config) Dir() string {
	if c.Path == "" {
		return "."
	}
	return filepath.Dir(c.Path)
}
