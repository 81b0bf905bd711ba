// Package providers holds the provider registry and the provider
// implementations in its subpackages (providers/openai).
//
// Providers register a factory from init(), so importing a provider package
// for side effects makes it available by name:
//
//	import _ "github.com/petal-labs/appforge/providers/openai"
//
//	p, err := providers.Create("openai", apiKey)
package providers

import (
	"fmt"
	"sort"
	"sync"

	"github.com/petal-labs/appforge/core"
)

// ProviderFactory creates a provider instance with the given API key.
type ProviderFactory func(apiKey string) core.Provider

var (
	registryMu sync.RWMutex
	registry   = make(map[string]ProviderFactory)
)

// Register adds a provider factory to the registry, replacing any factory
// already registered under name.
func Register(name string, factory ProviderFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// Get retrieves a provider factory by name, or nil.
func Get(name string) ProviderFactory {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return registry[name]
}

// Create creates a new provider instance by name with the given API key.
func Create(name, apiKey string) (core.Provider, error) {
	factory := Get(name)
	if factory == nil {
		return nil, fmt.Errorf("unknown provider: %s (available: %v)", name, List())
	}
	return factory(apiKey), nil
}

// List returns the names of all registered providers in sorted order.
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered reports whether a provider with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[name]
	return ok
}
