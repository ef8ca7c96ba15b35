// Package core implements the module system the tidbits binary is
// assembled from: a registry of storage backends and the lifecycle that
// configures, provisions, and validates them.
package core

import (
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"
)

// AppContext carries the resources a module may use while provisioning
// and at runtime.
type AppContext struct {
	// Logger for the current module scope.
	Logger *slog.Logger

	// DataDir is the root directory for persistent module data.
	DataDir string

	root    *slog.Logger
	configs map[string]yaml.Node
}

// NewAppContext builds the root context modules are loaded under. A nil
// logger falls back to slog.Default().
func NewAppContext(logger *slog.Logger, dataDir string) *AppContext {
	if logger == nil {
		logger = slog.Default()
	}
	return &AppContext{
		Logger:  logger,
		DataDir: dataDir,
		root:    logger,
	}
}

// WithModuleConfigs returns a copy of the context carrying the raw YAML
// config node for each module ID.
func (ctx *AppContext) WithModuleConfigs(configs map[string]yaml.Node) *AppContext {
	next := *ctx
	next.configs = configs
	return &next
}

// ForModule returns a context scoped to one module, with the module ID
// attached to every log line it emits.
func (ctx *AppContext) ForModule(id ModuleID) *AppContext {
	return &AppContext{
		Logger:  ctx.root.With("module", string(id)),
		DataDir: ctx.DataDir,
		root:    ctx.root,
		configs: ctx.configs,
	}
}

// LoadModule builds a fresh instance of a registered module and walks it
// through the load lifecycle:
//
//	New() → Configure() → Provision() → Validate()
//
// Each phase runs only if the module implements the matching interface,
// and Configure only if a config node exists for the module's ID.
func (ctx *AppContext) LoadModule(id string) (Module, error) {
	info, ok := GetModule(id)
	if !ok {
		return nil, fmt.Errorf("core: unknown module %q", id)
	}
	mod := info.New()

	if c, ok := mod.(Configurable); ok {
		if node, found := ctx.configs[id]; found {
			if err := c.Configure(&node); err != nil {
				return nil, fmt.Errorf("core: module %s: configure: %w", id, err)
			}
		}
	}
	if p, ok := mod.(Provisioner); ok {
		if err := p.Provision(ctx.ForModule(info.ID)); err != nil {
			return nil, fmt.Errorf("core: module %s: provision: %w", id, err)
		}
	}
	if v, ok := mod.(Validator); ok {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("core: module %s: validate: %w", id, err)
		}
	}
	return mod, nil
}
