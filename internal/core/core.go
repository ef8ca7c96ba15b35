package core

import (
	"context"
	"log/slog"
	"time"
)

const shutdownTimeout = 30 * time.Second

// App owns the modules loaded for one run of the binary.
type App struct {
	ctx    *AppContext
	logger *slog.Logger
	loaded []loadedModule
}

type loadedModule struct {
	id  ModuleID
	mod Module
}

// NewApp creates an App that loads modules under the given context.
func NewApp(ctx *AppContext) *App {
	return &App{
		ctx:    ctx,
		logger: ctx.Logger.With("component", "core"),
	}
}

// LoadModules runs the load lifecycle for each ID in order. On failure
// the modules loaded so far are stopped, in reverse order, before the
// error is returned.
func (a *App) LoadModules(ids []string) error {
	for _, id := range ids {
		mod, err := a.ctx.LoadModule(id)
		if err != nil {
			a.unwind()
			return err
		}
		a.loaded = append(a.loaded, loadedModule{id: mod.ModuleInfo().ID, mod: mod})
		a.logger.Info("module loaded", "module", id)
	}
	return nil
}

// Module returns the loaded instance with the given ID.
func (a *App) Module(id string) (Module, bool) {
	for _, lm := range a.loaded {
		if string(lm.id) == id {
			return lm.mod, true
		}
	}
	return nil, false
}

// Stop shuts down every loaded module in reverse load order. A module
// that fails to stop is logged; the remaining modules still shut down.
func (a *App) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	for i := len(a.loaded) - 1; i >= 0; i-- {
		lm := a.loaded[i]
		s, ok := lm.mod.(Stopper)
		if !ok {
			continue
		}
		if err := s.Stop(ctx); err != nil {
			a.logger.Error("module stop failed", "module", string(lm.id), "error", err)
			continue
		}
		a.logger.Info("module stopped", "module", string(lm.id))
	}
	a.loaded = nil
}

// unwind stops the modules loaded before a failure.
func (a *App) unwind() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	for i := len(a.loaded) - 1; i >= 0; i-- {
		if s, ok := a.loaded[i].mod.(Stopper); ok {
			_ = s.Stop(ctx)
		}
	}
	a.loaded = nil
}
