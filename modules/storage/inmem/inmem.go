// Package inmem registers the ephemeral in-memory storage module. State
// lives for the process lifetime only, which suits tests and one-shot use.
package inmem

import (
	"log/slog"

	"github.com/tidbits-ai/tidbits/internal/core"
	"github.com/tidbits-ai/tidbits/internal/tidbit"
)

func init() {
	core.RegisterModule(&Module{})
}

// Compile-time interface guard.
var _ core.Provisioner = (*Module)(nil)

// Module provides a process-lifetime Adapter.
type Module struct {
	adapter *tidbit.MemoryAdapter
	logger  *slog.Logger
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "storage.memory",
		New: func() core.Module { return &Module{} },
	}
}

// Provision implements core.Provisioner.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.logger = ctx.Logger
	m.adapter = tidbit.NewMemoryAdapter()
	m.logger.Info("in-memory storage provisioned")
	return nil
}

// Adapter returns the module's persistence adapter.
func (m *Module) Adapter() tidbit.Adapter {
	return m.adapter
}
