// Package commands provides command registration and metadata for pipeshell.
// It manages a process-wide registry of command types, each described once by a
// declarative option table, and generates help text from that metadata.
package commands

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"

	"pipeshell/internal/logger"
)

// Registry manages command registration and lookup.
// Registration happens at startup; afterwards the registry is only read, and concurrent
// reads are safe.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]*CommandMetadata
	byType   map[reflect.Type]*CommandMetadata
}

// NewRegistry creates a new command registry with an empty command map.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]*CommandMetadata),
		byType:   make(map[reflect.Type]*CommandMetadata),
	}
}

// Register builds and caches the metadata of a command type. Registering the same type
// again returns the cached metadata. A name already taken by another type, or an invalid
// option table, is a configuration error.
func (r *Registry) Register(def Definition) (*CommandMetadata, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if meta, exists := r.byType[def.commandType()]; exists {
		return meta, nil
	}

	meta, err := def.build()
	if err != nil {
		return nil, err
	}

	key := strings.ToLower(meta.name)
	if existing, exists := r.commands[key]; exists {
		return nil, fmt.Errorf("command %s already registered by %v", meta.name, existing.commandType)
	}

	r.commands[key] = meta
	r.byType[meta.commandType] = meta
	logger.Debug("Registered command", "command", meta.name, "options", len(meta.options))
	return meta, nil
}

// MustRegister is Register for package initialisation; configuration errors panic.
func (r *Registry) MustRegister(def Definition) *CommandMetadata {
	meta, err := r.Register(def)
	if err != nil {
		panic(fmt.Sprintf("command registration failed: %v", err))
	}
	return meta
}

// TryGet looks a command up by name, case-insensitively.
func (r *Registry) TryGet(name string) (*CommandMetadata, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	meta, exists := r.commands[strings.ToLower(name)]
	return meta, exists
}

// All returns the registered commands sorted by name.
func (r *Registry) All() []*CommandMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*CommandMetadata, 0, len(r.commands))
	for _, meta := range r.commands {
		all = append(all, meta)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].name < all[j].name })
	return all
}

// Names returns the registered command names sorted.
func (r *Registry) Names() []string {
	all := r.All()
	names := make([]string, len(all))
	for i, meta := range all {
		names[i] = meta.name
	}
	return names
}

// GlobalHelp returns GenerateGlobalHelp; it lets the registry serve as a shelltypes.Catalog.
func (r *Registry) GlobalHelp() string {
	return r.GenerateGlobalHelp()
}

// CommandHelp returns the help text of one command.
func (r *Registry) CommandHelp(name string) (string, bool) {
	meta, ok := r.TryGet(name)
	if !ok {
		return "", false
	}
	return meta.GenerateHelp(), true
}

// Suggest returns the registered name closest to name, if any is close enough to be a
// plausible typo.
func (r *Registry) Suggest(name string) (string, bool) {
	lower := strings.ToLower(name)
	best := ""
	bestDistance := -1
	for _, candidate := range r.Names() {
		d := levenshtein.ComputeDistance(lower, strings.ToLower(candidate))
		if bestDistance < 0 || d < bestDistance {
			best, bestDistance = candidate, d
		}
	}
	if bestDistance < 0 || bestDistance > maxSuggestionDistance(lower) {
		return "", false
	}
	return best, true
}

func maxSuggestionDistance(name string) int {
	switch n := len(name); {
	case n <= 2:
		return 1
	case n <= 5:
		return 2
	default:
		return 3
	}
}

// CompleteCommand returns the command names starting with prefix.
func (r *Registry) CompleteCommand(prefix string) []string {
	var matches []string
	for _, name := range r.Names() {
		if strings.HasPrefix(strings.ToLower(name), strings.ToLower(prefix)) {
			matches = append(matches, name)
		}
	}
	return matches
}

// GlobalRegistry is the process-wide registry. Built-in commands register themselves
// with it during initialization.
var GlobalRegistry = NewRegistry()
