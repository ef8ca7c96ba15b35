// Package jsonfile implements JSON document storage for the tidbit store.
// The whole state lives in one file; saves write a temp file in the same
// directory and rename it over the old document, so a crash mid-write
// never corrupts the previous state.
package jsonfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tidbits-ai/tidbits/internal/core"
	"github.com/tidbits-ai/tidbits/internal/tidbit"
	"gopkg.in/yaml.v3"
)

func init() {
	core.RegisterModule(&Module{})
}

// Compile-time interface guards.
var (
	_ tidbit.Adapter    = (*Adapter)(nil)
	_ core.Configurable = (*Module)(nil)
	_ core.Provisioner  = (*Module)(nil)
	_ core.Validator    = (*Module)(nil)
)

// Module provides the JSON file Adapter.
type Module struct {
	config  Config
	adapter *Adapter
	logger  *slog.Logger
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "storage.json",
		New: func() core.Module { return &Module{} },
	}
}

// Configure implements core.Configurable.
func (m *Module) Configure(node *yaml.Node) error {
	if err := node.Decode(&m.config); err != nil {
		return fmt.Errorf("jsonfile: decode config: %w", err)
	}
	return nil
}

// Provision implements core.Provisioner.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.logger = ctx.Logger

	if m.config.Path == "" {
		m.config.Path = filepath.Join(ctx.DataDir, defaultFile)
	}

	if dir := filepath.Dir(m.config.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("jsonfile: create directory %s: %w", dir, err)
		}
	}

	m.adapter = NewAdapter(m.config.Path)

	m.logger.Info("json file storage provisioned", "path", m.config.Path)
	return nil
}

// Validate implements core.Validator. It reads the document once so a
// corrupt file surfaces at startup rather than on first use.
func (m *Module) Validate() error {
	if err := m.config.validate(); err != nil {
		return err
	}

	if _, err := m.adapter.Load(context.Background()); err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return fmt.Errorf("jsonfile: document not readable: %w", err)
		}
		return err
	}
	return nil
}

// Adapter returns the module's persistence adapter.
func (m *Module) Adapter() tidbit.Adapter {
	return m.adapter
}
