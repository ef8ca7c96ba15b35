package core

import "strings"

// ModuleID uniquely identifies a module, namespaced by dots
// (e.g., "storage.sqlite").
type ModuleID string

// Namespace returns the portion of the ID before the last dot, or the
// whole ID if it has no namespace.
func (id ModuleID) Namespace() string {
	if i := strings.LastIndex(string(id), "."); i >= 0 {
		return string(id)[:i]
	}
	return string(id)
}

// Name returns the portion of the ID after the last dot.
func (id ModuleID) Name() string {
	if i := strings.LastIndex(string(id), "."); i >= 0 {
		return string(id)[i+1:]
	}
	return string(id)
}

// ModuleInfo describes a registered module: its ID and a constructor
// returning a fresh, unconfigured instance.
type ModuleInfo struct {
	ID  ModuleID
	New func() Module
}

// Module is the interface all modules implement. Modules opt into
// lifecycle phases by additionally implementing Configurable,
// Provisioner, Validator, or Stopper.
type Module interface {
	ModuleInfo() ModuleInfo
}
