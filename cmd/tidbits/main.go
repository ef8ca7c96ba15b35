// Package main is the entry point for the tidbits CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tidbits-ai/tidbits/internal/core"
	"github.com/tidbits-ai/tidbits/pkg/app"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags shared by every subcommand.
var (
	flagConfig   string
	flagBackend  string
	flagPath     string
	flagLogLevel string
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "tidbits",
		Short:        "A shared memory store that agents record to and vote on",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Path to configuration file")
	root.PersistentFlags().StringVar(&flagBackend, "backend", "", "Storage backend: memory, json, or sqlite")
	root.PersistentFlags().StringVar(&flagPath, "path", "", "Storage file path (overrides the backend default)")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Minimum log level: debug, info, warn, or error")

	root.AddCommand(
		versionCmd(),
		serveCmd(),
		createCmd(),
		upvoteCmd(),
		downvoteCmd(),
		unvoteCmd(),
		listCmd(),
		getMemoriesCmd(),
		removeCmd(),
		createVoterIDCmd(),
		configCmd(),
	)
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and compiled modules",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("tidbits %s (commit: %s, built: %s)\n", version, commit, date)
			mods := core.GetModules()
			if len(mods) == 0 {
				fmt.Println("\nNo compiled modules.")
				return
			}
			fmt.Println("\nCompiled modules:")
			for _, mod := range mods {
				fmt.Printf("  %s\n", mod.ID)
			}
		},
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve MCP tools over stdio",
		Long: `Serve runs the MCP server on stdin/stdout until the client disconnects.
Stdout carries the protocol, so all logs go to stderr.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			params, err := buildParams()
			if err != nil {
				return err
			}
			return app.Run(params)
		},
	}
}

// buildParams collects the global flags into RunParams.
func buildParams() (app.RunParams, error) {
	level, err := parseLogLevel(flagLogLevel)
	if err != nil {
		return app.RunParams{}, err
	}
	return app.RunParams{
		ConfigPath: flagConfig,
		Version:    version,
		Backend:    flagBackend,
		Path:       flagPath,
		LogLevel:   level,
	}, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch s {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q (want debug, info, warn, or error)", s)
	}
}
