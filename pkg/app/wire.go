package app

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tidbits-ai/tidbits/internal/config"
	"github.com/tidbits-ai/tidbits/internal/core"
	"github.com/tidbits-ai/tidbits/internal/tidbit"

	// Built-in storage backends register themselves on import.
	_ "github.com/tidbits-ai/tidbits/modules/storage/inmem"
	_ "github.com/tidbits-ai/tidbits/modules/storage/jsonfile"
	_ "github.com/tidbits-ai/tidbits/modules/storage/sqlite"
)

// AdapterProvider is implemented by storage modules that expose their
// adapter once provisioned.
type AdapterProvider interface {
	Adapter() tidbit.Adapter
}

// Backends maps CLI backend names onto storage module IDs.
var Backends = map[string]string{
	"memory": "storage.memory",
	"json":   "storage.json",
	"sqlite": "storage.sqlite",
}

// Runtime is the wired application: configuration resolved, the storage
// module provisioned, and a Store bound to its adapter.
type Runtime struct {
	Config *config.Config
	Store  *tidbit.Store
	Logger *slog.Logger

	app *core.App
}

// Build loads configuration, applies CLI overrides, provisions the
// selected storage module, and returns a ready Runtime. Callers own the
// Runtime and must Close it to release module resources.
func Build(params RunParams) (*Runtime, error) {
	cfg, err := loadConfig(params)
	if err != nil {
		return nil, err
	}

	if params.Backend != "" {
		id, ok := Backends[params.Backend]
		if !ok {
			return nil, fmt.Errorf("app: unknown backend %q (want memory, json, or sqlite)", params.Backend)
		}
		cfg.Storage = id
	}
	if params.Path != "" {
		node, err := pathOverride(params.Path)
		if err != nil {
			return nil, err
		}
		if cfg.Modules == nil {
			cfg.Modules = make(map[string]yaml.Node)
		}
		cfg.Modules[config.Resolve(cfg)] = node
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: params.LogLevel,
	}))

	dataDir := params.DataDir
	if dataDir == "" {
		dataDir = DefaultDataDir()
	}

	appCtx := core.NewAppContext(logger, dataDir)
	appCtx = appCtx.WithModuleConfigs(cfg.Modules)

	application := core.NewApp(appCtx)
	id := config.Resolve(cfg)
	if err := application.LoadModules([]string{id}); err != nil {
		return nil, err
	}

	mod, ok := application.Module(id)
	if !ok {
		application.Stop()
		return nil, fmt.Errorf("app: storage module %s not loaded", id)
	}
	provider, ok := mod.(AdapterProvider)
	if !ok {
		application.Stop()
		return nil, fmt.Errorf("app: module %s does not expose a storage adapter", id)
	}

	return &Runtime{
		Config: cfg,
		Store:  tidbit.NewStore(provider.Adapter()),
		Logger: logger,
		app:    application,
	}, nil
}

// Close stops the storage module, releasing file handles and database
// connections.
func (r *Runtime) Close() {
	r.app.Stop()
}

// loadConfig returns the explicit config, a discovered config, or the
// built-in defaults, in that order. Only an explicit path that fails to
// load is an error.
func loadConfig(params RunParams) (*config.Config, error) {
	cfgPath := params.ConfigPath
	if cfgPath == "" {
		if found, err := ResolveConfigPath(); err == nil {
			cfgPath = found
		}
	}
	if cfgPath == "" {
		cfg := config.Default()
		return &cfg, nil
	}
	return config.Load(cfgPath)
}

// pathOverride renders a {path: ...} module config for the --path flag.
func pathOverride(path string) (yaml.Node, error) {
	raw, err := yaml.Marshal(map[string]string{"path": path})
	if err != nil {
		return yaml.Node{}, fmt.Errorf("app: encode path override: %w", err)
	}
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return yaml.Node{}, fmt.Errorf("app: encode path override: %w", err)
	}
	return node, nil
}
