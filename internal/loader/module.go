// Package loader loads compiled theme packages into an isolated context.
//
// A Context resolves modules by name through an ordered chain of resolvers.
// The default chain first hands names under a shared prefix to the host's
// own in-process modules, so packages such as the theming library are the
// same instances the host uses; every other name is probed on disk next to
// the build output and opened as a Go plugin.
package loader

import (
	"errors"
	"fmt"
	"plugin"
	"sort"
)

// ErrUnresolved is returned by a Resolver that does not know a module so the
// next resolver in the chain can try.
var ErrUnresolved = errors.New("module not resolved")

// ErrSymbolNotFound is returned by Module.Lookup for unknown symbols.
var ErrSymbolNotFound = errors.New("symbol not found")

// Module is a loaded unit of compiled code exposing symbols by name.
type Module interface {
	Name() string
	Lookup(symbol string) (any, error)
}

// StaticModule is an in-process Module backed by a symbol table.
type StaticModule struct {
	name    string
	symbols map[string]any
}

// NewStaticModule returns a module exposing symbols under name.
func NewStaticModule(name string, symbols map[string]any) *StaticModule {
	copied := make(map[string]any, len(symbols))
	for k, v := range symbols {
		copied[k] = v
	}
	return &StaticModule{name: name, symbols: copied}
}

func (m *StaticModule) Name() string { return m.name }

func (m *StaticModule) Lookup(symbol string) (any, error) {
	v, ok := m.symbols[symbol]
	if !ok {
		return nil, fmt.Errorf("%s: %w: %s", m.name, ErrSymbolNotFound, symbol)
	}
	return v, nil
}

// Symbols lists the exported symbol names in sorted order.
func (m *StaticModule) Symbols() []string {
	names := make([]string, 0, len(m.symbols))
	for k := range m.symbols {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// pluginModule adapts a Go plugin. Lookup of a package-level variable
// yields a pointer to it, Lookup of a function yields the function value.
type pluginModule struct {
	name string
	p    *plugin.Plugin
}

func (m *pluginModule) Name() string { return m.name }

func (m *pluginModule) Lookup(symbol string) (any, error) {
	sym, err := m.p.Lookup(symbol)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %s", m.name, ErrSymbolNotFound, symbol)
	}
	return sym, nil
}

// OpenFunc opens the compiled module stored at path.
type OpenFunc func(path string) (Module, error)

// OpenPlugin opens path with the plugin package. The module is named after
// the file path.
func OpenPlugin(path string) (Module, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open plugin %s: %w", path, err)
	}
	return &pluginModule{name: path, p: p}, nil
}
