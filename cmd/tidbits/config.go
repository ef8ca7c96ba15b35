package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tidbits-ai/tidbits/internal/config"
	"github.com/tidbits-ai/tidbits/pkg/app"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}
	cmd.AddCommand(configCheckCmd(), configInitCmd())
	return cmd
}

func configCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <path>",
		Short: "Validate a configuration and provision its storage module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := buildParams()
			if err != nil {
				return err
			}
			params.ConfigPath = args[0]

			rt, err := app.Build(params)
			if err != nil {
				return err
			}
			defer rt.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "Configuration OK (storage: %s)\n", config.Resolve(rt.Config))
			return nil
		},
	}
}

func configInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [path]",
		Short: "Interactively write a starter configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := defaultConfigTarget()
			if len(args) == 1 {
				target = args[0]
			}
			return runConfigInit(cmd, target)
		},
	}
}

// defaultConfigTarget is where `config init` writes unless a path is
// given: the first location `tidbits` searches on startup.
func defaultConfigTarget() string {
	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		return filepath.Join(xdg, "tidbits", "tidbits.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "tidbits.yaml"
	}
	return filepath.Join(home, ".config", "tidbits", "tidbits.yaml")
}

// fileConfig mirrors the config schema with fixed field order so the
// generated file reads top-down: version, storage, modules.
type fileConfig struct {
	Version string                `yaml:"version"`
	Storage string                `yaml:"storage"`
	Modules map[string]moduleConf `yaml:"modules,omitempty"`
}

type moduleConf struct {
	Path string `yaml:"path"`
}

func runConfigInit(cmd *cobra.Command, target string) error {
	backend := "json"
	path := ""
	write := true

	confirmDesc := "A new file will be created."
	if _, err := os.Stat(target); err == nil {
		confirmDesc = "The existing file will be replaced."
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Storage backend").
				Options(
					huh.NewOption("JSON file (human readable)", "json"),
					huh.NewOption("SQLite database", "sqlite"),
					huh.NewOption("In-memory (lost on exit)", "memory"),
				).
				Value(&backend),
			huh.NewInput().
				Title("Storage file path").
				Description("Leave empty to use the backend's default location.").
				Value(&path),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Write %s?", target)).
				Description(confirmDesc).
				Value(&write),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}
	if !write {
		fmt.Fprintln(cmd.OutOrStdout(), "Aborted, nothing written.")
		return nil
	}

	cfg := fileConfig{Version: "1", Storage: app.Backends[backend]}
	if path != "" && backend != "memory" {
		cfg.Modules = map[string]moduleConf{cfg.Storage: {Path: path}}
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", target)
	return nil
}
