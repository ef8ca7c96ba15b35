// Package sqlite keeps the tidbit state in a SQLite database via
// modernc.org/sqlite (pure Go, no CGO). Memories and votes live in two
// tables; every save replaces both inside one transaction.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tidbits-ai/tidbits/internal/core"
	"github.com/tidbits-ai/tidbits/internal/tidbit"
	"gopkg.in/yaml.v3"

	_ "modernc.org/sqlite" // SQLite driver registration
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
	_ core.Stopper      = (*Module)(nil)
)

// Module provides the SQLite-backed Adapter.
type Module struct {
	config  Config
	db      *sql.DB
	adapter *Adapter
	logger  *slog.Logger
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "storage.sqlite",
		New: func() core.Module { return &Module{} },
	}
}

// Configure implements core.Configurable.
func (m *Module) Configure(node *yaml.Node) error {
	if err := node.Decode(&m.config); err != nil {
		return fmt.Errorf("sqlite: config: %w", err)
	}
	m.config.defaults()
	return nil
}

// Provision implements core.Provisioner. It opens the database, applies
// the session pragmas, and migrates the schema.
func (m *Module) Provision(ctx *core.AppContext) error {
	m.config.defaults()
	m.logger = ctx.Logger

	if m.config.Path == "" {
		m.config.Path = filepath.Join(ctx.DataDir, defaultDBFile)
	}
	if dir := filepath.Dir(m.config.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("sqlite: create %s: %w", dir, err)
		}
	}

	db, err := openDatabase(m.config)
	if err != nil {
		return err
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return err
	}

	m.db = db
	m.adapter = &Adapter{db: db}

	m.logger.Info("sqlite storage provisioned",
		"path", m.config.Path,
		"wal", m.config.walEnabled(),
	)
	return nil
}

// openDatabase opens the file and applies the session pragmas. SQLite
// allows one writer at a time; a single pooled connection keeps every
// pragma bound to the connection actually in use.
func openDatabase(cfg Config) (*sql.DB, error) {
	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", cfg.Path, err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout=%d", cfg.BusyTimeout),
		"PRAGMA foreign_keys=ON",
	}
	if cfg.walEnabled() {
		pragmas = append([]string{"PRAGMA journal_mode=WAL"}, pragmas...)
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(context.TODO(), pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite: %s: %w", pragma, err)
		}
	}
	return db, nil
}

// Validate implements core.Validator. A readable memories table proves
// both the connection and the schema.
func (m *Module) Validate() error {
	if err := m.config.validate(); err != nil {
		return err
	}

	var n int
	row := m.db.QueryRowContext(context.TODO(), "SELECT count(*) FROM memories")
	if err := row.Scan(&n); err != nil {
		return fmt.Errorf("sqlite: memories table not usable: %w", err)
	}
	return nil
}

// Stop implements core.Stopper.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("sqlite storage stopping")
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

// Adapter returns the module's persistence adapter.
func (m *Module) Adapter() tidbit.Adapter {
	return m.adapter
}
