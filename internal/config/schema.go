// Package config handles YAML configuration loading, environment variable
// expansion, and structural validation for tidbits.
package config

import "gopkg.in/yaml.v3"

// DefaultStorage is the backend used when the config selects none.
const DefaultStorage = "storage.json"

// Default returns the configuration used when no config file exists:
// the JSON file backend with its built-in path.
func Default() Config {
	return Config{Version: "1"}
}

// Config is the top-level configuration structure.
type Config struct {
	// Version is the config format version. Currently only "1" is supported.
	Version string `yaml:"version"`

	// Storage selects the storage backend module (e.g. "storage.sqlite").
	// Empty selects DefaultStorage.
	Storage string `yaml:"storage,omitempty"`

	// Modules maps module IDs to their raw YAML configuration.
	// Keys must match registered module IDs (e.g. "storage.sqlite").
	Modules map[string]yaml.Node `yaml:"modules,omitempty"`
}
