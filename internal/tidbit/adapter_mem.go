package tidbit

import (
	"context"
	"sync"
)

// MemoryAdapter is a thread-safe, process-lifetime Adapter. State survives
// only as long as the adapter itself, which suits tests and short-lived
// agents.
type MemoryAdapter struct {
	mu    sync.RWMutex
	state State
}

// NewMemoryAdapter creates an empty in-memory adapter.
func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{state: NewState()}
}

// Compile-time interface check.
var _ Adapter = (*MemoryAdapter)(nil)

// Load returns a deep copy of the held state, so callers can mutate the
// result without affecting the adapter.
func (a *MemoryAdapter) Load(_ context.Context) (State, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state.Clone(), nil
}

// Save replaces the held state with a deep copy of the given one.
func (a *MemoryAdapter) Save(_ context.Context, state State) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = state.Clone()
	return nil
}
