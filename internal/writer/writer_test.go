package writer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/yacobolo/themecss/internal/loader"
	"github.com/yacobolo/themecss/internal/manifest"
	"github.com/yacobolo/themecss/quark"
)

type myTheme struct{}

func (myTheme) Build() *quark.Theme { return &quark.Theme{Name: "my"} }

type ambiguousTheme struct{}

func (ambiguousTheme) Light() *quark.Theme { return nil }
func (ambiguousTheme) Dark() *quark.Theme  { return nil }

type nilTheme struct{}

func (nilTheme) Build() *quark.Theme { return nil }

type fieldTheme struct{ Theme *quark.Theme }

type providerTheme struct{}

func (providerTheme) Build(p quark.Provider) *quark.Theme {
	dir, _ := p.Service(quark.ServiceProjectDir)
	return &quark.Theme{Name: dir.(string)}
}

type variablesTheme struct{}

func (variablesTheme) Build() *quark.Theme {
	return &quark.Theme{
		Anchors:               &quark.AnchorOptions{TextColor: "red"},
		BootstrapCSSVariables: &quark.BootstrapCSSVariables{Colors: &quark.BootstrapColors{Primary: "#0d6efd"}},
	}
}

func redGenerator(*quark.Theme) string { return ".a{color:red}" }

func nameGenerator(t *quark.Theme) string { return t.Name }

func emptyVariables(*quark.BootstrapCSSVariables) string { return "" }

func hostModule(symbols map[string]any) loader.Module {
	return loader.NewStaticModule(quark.ModuleName, symbols)
}

func defaultHost() loader.Module {
	return hostModule(map[string]any{
		quark.ComponentGeneratorSymbol: redGenerator,
		quark.VariablesGeneratorSymbol: emptyVariables,
	})
}

var testTypes = map[string]reflect.Type{
	"My.Theme":       reflect.TypeOf(myTheme{}),
	"My.Ambiguous":   reflect.TypeOf(ambiguousTheme{}),
	"My.Nil":         reflect.TypeOf(nilTheme{}),
	"My.Field":       reflect.TypeOf(fieldTheme{}),
	"My.Provider":    reflect.TypeOf(providerTheme{}),
	"My.Variables":   reflect.TypeOf(variablesTheme{}),
	"My.NotInTarget": nil,
}

type fixture struct {
	projectDir string
	targetPath string
	opened     int
	loader     *loader.Context
}

func newFixture(t *testing.T, manifestText string, host loader.Module) *fixture {
	t.Helper()

	f := &fixture{projectDir: t.TempDir()}
	binDir := filepath.Join(f.projectDir, "bin")
	require.NoError(t, os.MkdirAll(binDir, 0o755))
	f.targetPath = filepath.Join(binDir, "themes.so")
	require.NoError(t, os.WriteFile(f.targetPath, []byte("plugin"), 0o644))

	symbols := map[string]any{manifest.TypesSymbol: &testTypes}
	if manifestText != "" {
		symbols[manifest.ManifestSymbol] = &manifestText
	}
	target := loader.NewStaticModule(f.targetPath, symbols)

	open := func(p string) (loader.Module, error) {
		f.opened++
		if p != f.targetPath {
			return nil, fmt.Errorf("unexpected module %s", p)
		}
		return target, nil
	}
	f.loader = loader.NewProbingContext(binDir, []string{quark.ModuleName}, map[string]loader.Module{quark.ModuleName: host}, open)
	return f
}

func (f *fixture) config(unminified, minified bool) Config {
	return Config{
		TargetPath:      f.targetPath,
		ProjectDir:      f.projectDir,
		BuildUnminified: unminified,
		BuildMinified:   minified,
		References:      []string{quark.ModuleName},
	}
}

func (f *fixture) read(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.projectDir, rel))
	require.NoError(t, err)
	return string(data)
}

func TestRun_EndToEnd(t *testing.T) {
	f := newFixture(t, "My.Theme|css/out.min.css|1|1\n", defaultHost())

	res, err := New(f.loader).Run(context.Background(), f.config(true, true))
	require.NoError(t, err)

	assert.Equal(t, Result{Entries: 1, Written: 2}, res)
	assert.Equal(t, ".a{color:red}", f.read(t, "css/out.css"))
	assert.Equal(t, ".a{color:red}", f.read(t, "css/out.min.css"))
}

func TestRun_BuildMinifiedDisabled(t *testing.T) {
	f := newFixture(t, "My.Theme|css/out.min.css|1|1\n", defaultHost())

	res, err := New(f.loader).Run(context.Background(), f.config(true, false))
	require.NoError(t, err)

	assert.Equal(t, 1, res.Written)
	assert.Equal(t, ".a{color:red}", f.read(t, "css/out.css"))
	assert.NoFileExists(t, filepath.Join(f.projectDir, "css", "out.min.css"))
}

func TestRun_EntryFlagsNarrowTheRun(t *testing.T) {
	f := newFixture(t, "My.Theme|css/x.css|0|1\n", defaultHost())

	res, err := New(f.loader).Run(context.Background(), f.config(true, true))
	require.NoError(t, err)

	assert.Equal(t, 1, res.Written)
	assert.NoFileExists(t, filepath.Join(f.projectDir, "css", "x.css"))
	assert.FileExists(t, filepath.Join(f.projectDir, "css", "x.min.css"))
}

func TestRun_Idempotent(t *testing.T) {
	f := newFixture(t, "My.Theme|css/out.css\n", defaultHost())
	w := New(f.loader)

	_, err := w.Run(context.Background(), f.config(true, true))
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(f.projectDir, "css", "out.css"))
	require.NoError(t, err)

	res, err := w.Run(context.Background(), f.config(true, true))
	require.NoError(t, err)
	assert.Equal(t, Result{Entries: 1, Unchanged: 2}, res)

	again, err := os.Stat(filepath.Join(f.projectDir, "css", "out.css"))
	require.NoError(t, err)
	assert.Equal(t, info.ModTime(), again.ModTime())
	assert.Equal(t, 1, f.opened, "target is cached by the loading context")
}

func TestRun_SkipsWithoutAborting(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	text := "garbage\n" +
		"|css/x.css\n" +
		"My.Theme|\n" +
		"My.Missing|css/missing.css\n" +
		"My.NotInTarget|css/missing.css\n" +
		"My.Ambiguous|css/ambiguous.css\n" +
		"My.Nil|css/nil.css\r\n" +
		"My.Field|css/field.css\n" +
		"My.Theme|css/good.css|1|0\n"
	f := newFixture(t, text, defaultHost())

	res, err := New(f.loader, WithLogger(zap.New(core))).Run(context.Background(), f.config(true, true))
	require.NoError(t, err)

	assert.Equal(t, Result{Entries: 6, Written: 1, Skipped: 8}, res)
	assert.Equal(t, ".a{color:red}", f.read(t, "css/good.css"))
	assert.NoFileExists(t, filepath.Join(f.projectDir, "css", "ambiguous.css"))
	assert.NoFileExists(t, filepath.Join(f.projectDir, "css", "nil.css"))
	assert.NoFileExists(t, filepath.Join(f.projectDir, "css", "field.css"))

	assert.Equal(t, 3, logs.FilterMessage("skipping malformed manifest line").Len())
	skips := logs.FilterMessage("skipping theme").AllUntimed()
	require.Len(t, skips, 5)
	assert.Equal(t, "My.Missing", skips[0].ContextMap()["type"])
	assert.Equal(t, "no unique theme factory", skips[2].ContextMap()["reason"])
	assert.Equal(t, "theme factory returned nil", skips[3].ContextMap()["reason"])
	assert.Equal(t, "no unique theme factory", skips[4].ContextMap()["reason"], "struct fields are not factories")
}

func TestRun_ProviderFactory(t *testing.T) {
	host := hostModule(map[string]any{
		quark.ComponentGeneratorSymbol: nameGenerator,
		quark.VariablesGeneratorSymbol: emptyVariables,
	})
	f := newFixture(t, "My.Provider|css/dir.css|1|0\n", host)

	_, err := New(f.loader).Run(context.Background(), f.config(true, true))
	require.NoError(t, err)
	assert.Equal(t, f.projectDir, f.read(t, "css/dir.css"))
}

func TestRun_CustomService(t *testing.T) {
	host := hostModule(map[string]any{
		quark.ComponentGeneratorSymbol: nameGenerator,
		quark.VariablesGeneratorSymbol: emptyVariables,
	})
	f := newFixture(t, "My.Provider|css/dir.css|1|0\n", host)
	w := New(f.loader, WithService(quark.ServiceProjectDir, "/overridden"))

	_, err := w.Run(context.Background(), f.config(true, true))
	require.NoError(t, err)
	assert.Equal(t, "/overridden", f.read(t, "css/dir.css"))
}

func TestRun_Variables(t *testing.T) {
	host := hostModule(map[string]any{
		quark.ComponentGeneratorSymbol: quark.GenerateComponentCSS,
		quark.VariablesGeneratorSymbol: quark.GenerateVariablesCSS,
	})
	f := newFixture(t, "My.Variables|css/v.css|1|0\n", host)

	_, err := New(f.loader).Run(context.Background(), f.config(true, true))
	require.NoError(t, err)

	assert.Equal(t, "a {\n  color: red;\n}\n\n:root {\n  --bs-primary: #0d6efd;\n}", f.read(t, "css/v.css"))
}

func TestRun_GeneratorError(t *testing.T) {
	host := hostModule(map[string]any{
		quark.ComponentGeneratorSymbol: func(*quark.Theme) (string, error) { return "", errors.New("boom") },
		quark.VariablesGeneratorSymbol: emptyVariables,
	})
	f := newFixture(t, "My.Theme|css/a.css\nMy.Theme|css/b.css\n", host)

	_, err := New(f.loader).Run(context.Background(), f.config(true, true))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.NoFileExists(t, filepath.Join(f.projectDir, "css", "b.css"))
}

func TestRun_MissingGenerator(t *testing.T) {
	host := hostModule(map[string]any{quark.ComponentGeneratorSymbol: redGenerator})
	f := newFixture(t, "My.Theme|css/a.css\n", host)

	_, err := New(f.loader).Run(context.Background(), f.config(true, true))
	require.ErrorIs(t, err, ErrMissingGenerator)
}

func TestRun_MissingTarget(t *testing.T) {
	f := newFixture(t, "My.Theme|css/a.css\n", defaultHost())
	cfg := f.config(true, true)
	cfg.TargetPath = filepath.Join(f.projectDir, "bin", "missing.so")

	_, err := New(f.loader).Run(context.Background(), cfg)
	require.ErrorIs(t, err, ErrTargetNotFound)
}

func TestRun_NothingToDo(t *testing.T) {
	f := newFixture(t, "My.Theme|css/a.css\n", defaultHost())

	res, err := New(f.loader).Run(context.Background(), f.config(false, false))
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)
	assert.Zero(t, f.opened)
}

func TestRun_NoManifest(t *testing.T) {
	f := newFixture(t, "", defaultHost())

	res, err := New(f.loader).Run(context.Background(), f.config(true, true))
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)
}

func TestRun_Cancelled(t *testing.T) {
	f := newFixture(t, "My.Theme|css/a.css\n", defaultHost())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(f.loader).Run(ctx, f.config(true, true))
	require.ErrorIs(t, err, context.Canceled)
}

func TestRun_CustomMinifier(t *testing.T) {
	f := newFixture(t, "My.Theme|css/out.css|0|1\n", defaultHost())
	w := New(f.loader, WithMinifier(func(css string) (string, error) { return "/*min*/" + css, nil }))

	_, err := w.Run(context.Background(), f.config(true, true))
	require.NoError(t, err)
	assert.Equal(t, "/*min*/.a{color:red}", f.read(t, "css/out.min.css"))
}
