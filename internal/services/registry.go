// Package services provides the host-side services of pipeshell: layered configuration
// and help rendering. Services register with a Registry and are initialized once at startup.
package services

import (
	"fmt"
	"sort"
	"sync"
)

// Service is a named component initialized once at startup.
type Service interface {
	Name() string
	Initialize() error
}

// Registry manages service registration and lifecycle for pipeshell services.
type Registry struct {
	mu       sync.RWMutex
	services map[string]Service
}

// NewRegistry creates a new service registry with an empty service map.
func NewRegistry() *Registry {
	return &Registry{
		services: make(map[string]Service),
	}
}

// RegisterService adds a service to the registry, returning an error if already registered.
func (r *Registry) RegisterService(service Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := service.Name()
	if _, exists := r.services[name]; exists {
		return fmt.Errorf("service %s already registered", name)
	}

	r.services[name] = service
	return nil
}

// GetService retrieves a service by name, returning an error if not found.
func (r *Registry) GetService(name string) (Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	service, exists := r.services[name]
	if !exists {
		return nil, fmt.Errorf("service %s not found", name)
	}

	return service, nil
}

// InitializeAll initializes every registered service in name order.
func (r *Registry) InitializeAll() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.services))
	for name := range r.services {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := r.services[name].Initialize(); err != nil {
			return fmt.Errorf("failed to initialize service %s: %w", name, err)
		}
	}

	return nil
}

// GetAllServices returns a copy of all registered services.
func (r *Registry) GetAllServices() map[string]Service {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]Service, len(r.services))
	for name, service := range r.services {
		result[name] = service
	}

	return result
}

// GlobalRegistry is the global service registry instance used throughout pipeshell.
var GlobalRegistry = NewRegistry()

// globalRegistryMu protects access to the GlobalRegistry variable itself
var globalRegistryMu sync.RWMutex

// GetGlobalRegistry returns the global service registry instance in a thread-safe manner
func GetGlobalRegistry() *Registry {
	globalRegistryMu.RLock()
	defer globalRegistryMu.RUnlock()
	return GlobalRegistry
}

// SetGlobalRegistry sets the global service registry instance in a thread-safe manner
func SetGlobalRegistry(registry *Registry) {
	globalRegistryMu.Lock()
	defer globalRegistryMu.Unlock()
	GlobalRegistry = registry
}

// GetConfigurationService returns the registered configuration service.
func GetConfigurationService() (*ConfigurationService, error) {
	return getTyped[*ConfigurationService](ConfigurationServiceName)
}

// GetHelpService returns the registered help service.
func GetHelpService() (*HelpService, error) {
	return getTyped[*HelpService](HelpServiceName)
}

func getTyped[S Service](name string) (S, error) {
	var zero S
	service, err := GetGlobalRegistry().GetService(name)
	if err != nil {
		return zero, err
	}
	typed, ok := service.(S)
	if !ok {
		return zero, fmt.Errorf("service %s has unexpected type %T", name, service)
	}
	return typed, nil
}
