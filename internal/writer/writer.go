// Package writer turns the manifest embedded in a built theme package into
// CSS files.
//
// Each manifest entry moves through
//
//	parsed → type resolved → factory resolved → invoked → CSS generated → written
//
// and is skipped, with a warning, at the first step that fails. Skips never
// abort the run; I/O and generator errors do.
package writer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"go.uber.org/zap"

	"github.com/yacobolo/themecss/internal/cssmin"
	"github.com/yacobolo/themecss/internal/factory"
	"github.com/yacobolo/themecss/internal/fsutil"
	"github.com/yacobolo/themecss/internal/loader"
	"github.com/yacobolo/themecss/internal/manifest"
	"github.com/yacobolo/themecss/quark"
)

var (
	// ErrTargetNotFound is returned when the target module does not exist.
	ErrTargetNotFound = errors.New("target module not found")
	// ErrMissingGenerator is returned when a CSS generator cannot be found
	// in any loaded module.
	ErrMissingGenerator = errors.New("required CSS generator not found")
)

// Config describes one run.
type Config struct {
	TargetPath      string // built module holding the manifest
	ProjectDir      string // base for relative output paths
	BuildUnminified bool
	BuildMinified   bool

	// References are module names resolved into the loading context before
	// the generators are looked up. Failures are logged and ignored.
	References []string
}

// Result counts what a run did.
type Result struct {
	Entries   int // well-formed manifest lines
	Written   int // files created or replaced
	Unchanged int // files whose content was already current
	Skipped   int // entries or lines abandoned before writing
}

// MinifyFunc minifies a stylesheet.
type MinifyFunc func(css string) (string, error)

// Writer runs the post-build stage against a loading context.
type Writer struct {
	loader   *loader.Context
	fs       fsutil.FileSystem
	resolver factory.Resolver
	minify   MinifyFunc
	logger   *zap.Logger
	services map[string]any
}

// Option configures a Writer.
type Option func(*Writer)

// WithFileSystem replaces the OS file system.
func WithFileSystem(fsys fsutil.FileSystem) Option {
	return func(w *Writer) { w.fs = fsys }
}

// WithResolver replaces the theme factory resolver.
func WithResolver(r factory.Resolver) Option {
	return func(w *Writer) { w.resolver = r }
}

// WithMinifier replaces the default CSS minifier.
func WithMinifier(fn MinifyFunc) Option {
	return func(w *Writer) { w.minify = fn }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(w *Writer) { w.logger = l }
}

// WithService exposes v to provider-taking theme factories under name.
func WithService(name string, v any) Option {
	return func(w *Writer) { w.services[name] = v }
}

// New returns a Writer loading modules through lc.
func New(lc *loader.Context, opts ...Option) *Writer {
	w := &Writer{
		loader:   lc,
		fs:       fsutil.OS{},
		resolver: factory.Default,
		minify:   cssmin.Minify,
		logger:   zap.NewNop(),
		services: make(map[string]any),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run processes the manifest of cfg.TargetPath. A missing or blank manifest
// is not an error.
func (w *Writer) Run(ctx context.Context, cfg Config) (Result, error) {
	var res Result

	if !cfg.BuildUnminified && !cfg.BuildMinified {
		w.logger.Info("nothing to build: unminified and minified output both disabled")
		return res, nil
	}

	targetPath, err := filepath.Abs(cfg.TargetPath)
	if err != nil {
		return res, fmt.Errorf("resolve target path: %w", err)
	}
	projectDir, err := filepath.Abs(cfg.ProjectDir)
	if err != nil {
		return res, fmt.Errorf("resolve project dir: %w", err)
	}

	exists, err := w.fs.Exists(ctx, targetPath)
	if err != nil {
		return res, err
	}
	if !exists {
		return res, fmt.Errorf("%w: %s", ErrTargetNotFound, targetPath)
	}

	target, err := w.loader.LoadFromPath(ctx, targetPath)
	if err != nil {
		return res, fmt.Errorf("load target: %w", err)
	}
	if err := w.loadReferences(ctx, cfg.References); err != nil {
		return res, err
	}

	text, ok := readManifest(target)
	if !ok || strings.TrimSpace(text) == "" {
		w.logger.Info("no theme manifest in target", zap.String("target", targetPath))
		return res, nil
	}
	typeTable := readTypes(target)

	components, err := w.generator(quark.ComponentGeneratorSymbol)
	if err != nil {
		return res, err
	}
	vars, err := w.generator(quark.VariablesGeneratorSymbol)
	if err != nil {
		return res, err
	}

	provider := w.provider(projectDir, filepath.Dir(targetPath))
	batch := &run{
		Writer:     w,
		cfg:        cfg,
		projectDir: projectDir,
		types:      typeTable,
		components: components,
		vars:       vars,
		provider:   provider,
		res:        &res,
	}

	for _, line := range strings.FieldsFunc(text, isLineBreak) {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		entry, ok := manifest.ParseLine(line)
		if !ok {
			res.Skipped++
			w.logger.Warn("skipping malformed manifest line", zap.String("line", line))
			continue
		}
		res.Entries++
		if err := batch.entry(ctx, entry); err != nil {
			return res, err
		}
	}

	w.logger.Info("theme css written",
		zap.Int("entries", res.Entries),
		zap.Int("written", res.Written),
		zap.Int("unchanged", res.Unchanged),
		zap.Int("skipped", res.Skipped))
	return res, nil
}

func isLineBreak(r rune) bool { return r == '\r' || r == '\n' }

// loadReferences resolves names into the loading context. Only
// cancellation is fatal.
func (w *Writer) loadReferences(ctx context.Context, names []string) error {
	for _, name := range names {
		if _, err := w.loader.Resolve(ctx, name); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			w.logger.Debug("reference not loaded", zap.String("module", name), zap.Error(err))
		}
	}
	return nil
}

func (w *Writer) generator(symbol string) (generator, error) {
	v, m, ok := w.loader.Find(symbol)
	if !ok {
		return generator{}, fmt.Errorf("%w: %s", ErrMissingGenerator, symbol)
	}
	g, err := newGenerator(symbol, v)
	if err != nil {
		return generator{}, fmt.Errorf("%s in %s: %w", symbol, m.Name(), err)
	}
	return g, nil
}

func (w *Writer) provider(projectDir, targetDir string) services {
	s := services{
		quark.ServiceProjectDir: projectDir,
		quark.ServiceTargetDir:  targetDir,
		quark.ServiceLogger:     w.logger,
	}
	for k, v := range w.services {
		s[k] = v
	}
	return s
}

// run holds the state shared by the entries of one Run.
type run struct {
	*Writer
	cfg        Config
	projectDir string
	types      map[string]reflect.Type
	components generator
	vars       generator
	provider   services
	res        *Result
}

func (r *run) skip(e manifest.Entry, reason string) {
	r.res.Skipped++
	r.logger.Warn("skipping theme", zap.String("type", e.TypeName), zap.String("reason", reason))
}

func (r *run) entry(ctx context.Context, e manifest.Entry) error {
	t, ok := r.types[e.TypeName]
	if !ok || t == nil {
		r.skip(e, "type not found in target")
		return nil
	}

	member, ok := r.resolver.Resolve(t)
	if !ok {
		r.skip(e, "no unique theme factory")
		return nil
	}

	theme, err := factory.Invoke(t, member, r.provider)
	if err != nil {
		return err
	}
	if theme == nil {
		r.skip(e, "theme factory returned nil")
		return nil
	}

	css, ok, err := r.css(theme)
	if err != nil {
		return err
	}
	if !ok {
		r.skip(e, fmt.Sprintf("generators do not accept %T", theme))
		return nil
	}

	outputPath, err := resolveOutput(r.projectDir, e.OutputPath)
	if err != nil {
		return fmt.Errorf("resolve output path %s: %w", e.OutputPath, err)
	}
	unminified := UnminifiedPath(outputPath)

	if r.cfg.BuildUnminified && e.BuildUnminified {
		if err := r.write(ctx, unminified, css); err != nil {
			return err
		}
	}

	if r.cfg.BuildMinified && e.BuildMinified {
		minified, err := r.minify(css)
		if err != nil {
			return fmt.Errorf("minify %s: %w", e.TypeName, err)
		}
		if err := r.write(ctx, MinifiedPath(unminified), minified); err != nil {
			return err
		}
	}
	return nil
}

// css renders the component rules and, when the theme carries them, the
// CSS variables.
func (r *run) css(theme any) (string, bool, error) {
	components, ok, err := r.components.call(theme)
	if err != nil || !ok {
		return "", ok, err
	}

	var variablesCSS string
	if sub, ok := variables(theme); ok {
		if variablesCSS, ok, err = r.vars.call(sub); err != nil {
			return "", false, err
		} else if !ok {
			r.logger.Warn("variables generator does not accept sub-object", zap.String("type", fmt.Sprintf("%T", sub)))
		}
	}

	return joinCSS(components, variablesCSS), true, nil
}

func (r *run) write(ctx context.Context, path, content string) error {
	changed, err := fsutil.AtomicWrite(ctx, r.fs, path, []byte(content))
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if changed {
		r.res.Written++
		r.logger.Debug("wrote css", zap.String("path", path))
	} else {
		r.res.Unchanged++
	}
	return nil
}

// readManifest returns the manifest text exported by m. Plugins expose
// variables as pointers.
func readManifest(m loader.Module) (string, bool) {
	v, err := m.Lookup(manifest.ManifestSymbol)
	if err != nil {
		return "", false
	}
	switch s := v.(type) {
	case string:
		return s, true
	case *string:
		if s != nil {
			return *s, true
		}
	}
	return "", false
}

// readTypes returns the type table exported by m, or nil.
func readTypes(m loader.Module) map[string]reflect.Type {
	v, err := m.Lookup(manifest.TypesSymbol)
	if err != nil {
		return nil
	}
	switch t := v.(type) {
	case map[string]reflect.Type:
		return t
	case *map[string]reflect.Type:
		if t != nil {
			return *t
		}
	}
	return nil
}

// services is the provider handed to theme factories.
type services map[string]any

var _ quark.Provider = services(nil)

func (s services) Service(name string) (any, bool) {
	v, ok := s[name]
	return v, ok
}
