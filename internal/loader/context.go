package loader

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/yacobolo/themecss/internal/fsutil"
)

// FrameworkDir is the subdirectory of the target directory probed after the
// target directory itself.
const FrameworkDir = "framework"

// ModuleExt is the file extension of probed modules.
const ModuleExt = ".so"

// Resolver resolves a module by name. It returns ErrUnresolved when the name
// is not its to resolve.
type Resolver interface {
	Resolve(ctx context.Context, name string) (Module, error)
}

// SharedResolver defers names under one of Prefixes to the host's own
// modules, keeping a single instance shared between host and target.
type SharedResolver struct {
	Prefixes []string
	Host     map[string]Module
}

// Resolve implements Resolver.
func (r SharedResolver) Resolve(_ context.Context, name string) (Module, error) {
	if !r.shared(name) {
		return nil, ErrUnresolved
	}
	if m, ok := r.Host[name]; ok {
		return m, nil
	}
	return nil, ErrUnresolved
}

func (r SharedResolver) shared(name string) bool {
	for _, p := range r.Prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// ProbeResolver looks for <dir>/<base name><ModuleExt> in each of Dirs in
// order and opens the first match. FS defaults to fsutil.OS.
type ProbeResolver struct {
	Dirs []string
	Open OpenFunc
	FS   fsutil.FileSystem
}

// Resolve implements Resolver.
func (r ProbeResolver) Resolve(ctx context.Context, name string) (Module, error) {
	file := ModuleFileName(name)
	if file == "" {
		return nil, ErrUnresolved
	}

	fsys := r.FS
	if fsys == nil {
		fsys = fsutil.OS{}
	}

	for _, dir := range r.Dirs {
		candidate := filepath.Join(dir, file)
		exists, err := fsys.Exists(ctx, candidate)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if err != nil || !exists {
			continue
		}
		return r.Open(candidate)
	}
	return nil, ErrUnresolved
}

// ModuleFileName maps a module name such as "example.com/gen/quark" to the
// file name probed on disk ("quark.so").
func ModuleFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" {
		return ""
	}
	if strings.HasSuffix(base, ModuleExt) {
		return base
	}
	return base + ModuleExt
}

// Context is an isolated loading context. Modules are cached by name and by
// path; the cache is only appended to.
type Context struct {
	resolvers []Resolver
	open      OpenFunc

	mu      sync.Mutex
	byName  map[string]Module
	ordered []Module
}

// NewContext returns a Context resolving names through resolvers in order.
// open is used by LoadFromPath.
func NewContext(open OpenFunc, resolvers ...Resolver) *Context {
	return &Context{
		resolvers: resolvers,
		open:      open,
		byName:    make(map[string]Module),
	}
}

// NewProbingContext returns the default context for a build output
// directory: shared prefixes resolve to host modules, every other name is
// probed in targetDir and then targetDir/framework.
func NewProbingContext(targetDir string, sharedPrefixes []string, host map[string]Module, open OpenFunc) *Context {
	return NewContext(open,
		SharedResolver{Prefixes: sharedPrefixes, Host: host},
		ProbeResolver{Dirs: []string{targetDir, filepath.Join(targetDir, FrameworkDir)}, Open: open},
	)
}

// LoadFromPath opens the module at p into the context.
func (c *Context) LoadFromPath(ctx context.Context, p string) (Module, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	if m, ok := c.byName[p]; ok {
		c.mu.Unlock()
		return m, nil
	}
	c.mu.Unlock()

	m, err := c.open(p)
	if err != nil {
		return nil, err
	}
	c.add(p, m)
	return m, nil
}

// Resolve returns the module registered under name, asking each resolver in
// turn. ErrUnresolved is returned when none of them knows it.
func (c *Context) Resolve(ctx context.Context, name string) (Module, error) {
	c.mu.Lock()
	if m, ok := c.byName[name]; ok {
		c.mu.Unlock()
		return m, nil
	}
	c.mu.Unlock()

	for _, r := range c.resolvers {
		m, err := r.Resolve(ctx, name)
		if errors.Is(err, ErrUnresolved) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", name, err)
		}
		c.add(name, m)
		return m, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnresolved, name)
}

// Modules returns the loaded modules in load order.
func (c *Context) Modules() []Module {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Module(nil), c.ordered...)
}

// Find returns the first symbol named symbol across the loaded modules.
func (c *Context) Find(symbol string) (any, Module, bool) {
	for _, m := range c.Modules() {
		v, err := m.Lookup(symbol)
		if err == nil {
			return v, m, true
		}
	}
	return nil, nil, false
}

func (c *Context) add(key string, m Module) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.byName[key]; ok {
		return
	}
	c.byName[key] = m
	for _, existing := range c.ordered {
		if existing == m {
			return
		}
	}
	c.ordered = append(c.ordered, m)
}
