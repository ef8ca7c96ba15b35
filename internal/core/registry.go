package core

import (
	"cmp"
	"maps"
	"slices"
	"strings"
	"sync"
)

var (
	registry   = make(map[string]ModuleInfo)
	registryMu sync.RWMutex
)

// RegisterModule adds a module to the global registry under the ID in
// its ModuleInfo. Modules call this from init(), so a bad registration
// is a programmer error and panics.
func RegisterModule(instance Module) {
	info := instance.ModuleInfo()
	if info.ID == "" {
		panic("core: RegisterModule: empty module ID")
	}
	if info.New == nil {
		panic("core: RegisterModule: module " + string(info.ID) + " has no constructor")
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	if _, taken := registry[string(info.ID)]; taken {
		panic("core: RegisterModule: duplicate module " + string(info.ID))
	}
	registry[string(info.ID)] = info
}

// GetModule looks up a registered module by ID.
func GetModule(id string) (ModuleInfo, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	info, ok := registry[id]
	return info, ok
}

// GetModules returns every registered module sorted by ID.
func GetModules() []ModuleInfo {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return sortByID(slices.Collect(maps.Values(registry)))
}

// GetModulesByNamespace returns the registered modules under a namespace,
// sorted by ID ("storage" matches storage.json and storage.sqlite).
func GetModulesByNamespace(namespace string) []ModuleInfo {
	registryMu.RLock()
	defer registryMu.RUnlock()

	var infos []ModuleInfo
	for id, info := range registry {
		if strings.HasPrefix(id, namespace+".") {
			infos = append(infos, info)
		}
	}
	return sortByID(infos)
}

func sortByID(infos []ModuleInfo) []ModuleInfo {
	slices.SortFunc(infos, func(a, b ModuleInfo) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return infos
}

// resetRegistry clears the registry between tests.
func resetRegistry() {
	registryMu.Lock()
	defer registryMu.Unlock()
	clear(registry)
}
