// Package app provides the shared entry point for the tidbits binary:
// it loads configuration, provisions the selected storage module, and
// hands a ready Store to the MCP server or a one-shot CLI command.
package app

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tidbits-ai/tidbits/internal/tools"
)

// RunParams configures the application entry points.
type RunParams struct {
	// ConfigPath is an explicit path to the YAML configuration file.
	// If empty, ResolveConfigPath is consulted; a missing file falls
	// back to built-in defaults rather than failing.
	ConfigPath string

	// Version is injected at build time via ldflags and reported to
	// MCP clients during initialization.
	Version string

	// DataDir overrides the default persistent data directory.
	DataDir string

	// Backend overrides the configured storage module by CLI name
	// ("memory", "json", or "sqlite"). Empty keeps the config's choice.
	Backend string

	// Path overrides the storage module's file path.
	Path string

	// LogLevel sets the minimum log level. Defaults to slog.LevelInfo.
	LogLevel slog.Level
}

// Run wires the application and serves MCP over stdio until the client
// disconnects. Stdout carries the protocol; logs go to stderr.
func Run(params RunParams) error {
	rt, err := Build(params)
	if err != nil {
		return err
	}
	defer rt.Close()

	return tools.NewServer(rt.Store, rt.Logger, params.Version).ServeStdio()
}

// ResolveConfigPath returns the first config file found in the standard
// locations: $XDG_CONFIG_HOME/tidbits/tidbits.yaml, then
// ~/.config/tidbits/tidbits.yaml, then ./tidbits.yaml.
func ResolveConfigPath() (string, error) {
	var searched []string

	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		searched = append(searched, filepath.Join(xdg, "tidbits", "tidbits.yaml"))
	} else if home, err := os.UserHomeDir(); err == nil {
		searched = append(searched, filepath.Join(home, ".config", "tidbits", "tidbits.yaml"))
	}
	searched = append(searched, "tidbits.yaml")

	for _, path := range searched {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("app: no config file found, searched %v", searched)
}

// DefaultDataDir is where storage modules keep their files unless
// configured otherwise: $XDG_DATA_HOME/tidbits if set, otherwise
// ~/.local/share/tidbits.
func DefaultDataDir() string {
	if dir, ok := os.LookupEnv("XDG_DATA_HOME"); ok {
		return filepath.Join(dir, "tidbits")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "tidbits")
}
