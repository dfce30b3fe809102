package themecss

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/yacobolo/themecss/internal/loader"
	"github.com/yacobolo/themecss/internal/writer"
	"github.com/yacobolo/themecss/quark"
)

// SharedPrefixes lists the module names that always resolve to the host's
// own copy instead of one found next to the target.
var SharedPrefixes = []string{quark.ModuleName}

// WriteConfig controls a Write run.
type WriteConfig struct {
	TargetPath      string
	ProjectDir      string
	BuildUnminified bool
	BuildMinified   bool

	// References are resolved before the CSS generators are looked up.
	// Defaults to the quark module.
	References []string

	// Open loads modules. Defaults to loader.OpenPlugin.
	Open loader.OpenFunc

	// Minify replaces the default CSS minifier.
	Minify writer.MinifyFunc

	// Services are offered to provider-taking theme factories on top of the
	// built-in ones.
	Services map[string]any

	Logger *zap.Logger
}

// HostModules returns the modules the host shares with every target.
func HostModules() map[string]loader.Module {
	return map[string]loader.Module{
		quark.ModuleName: loader.NewStaticModule(quark.ModuleName, map[string]any{
			quark.ComponentGeneratorSymbol: quark.GenerateComponentCSS,
			quark.VariablesGeneratorSymbol: quark.GenerateVariablesCSS,
		}),
	}
}

// Write loads the built target, reads its manifest and writes one CSS file
// per enabled output of every valid entry.
func Write(ctx context.Context, config WriteConfig) (writer.Result, error) {
	open := config.Open
	if open == nil {
		open = loader.OpenPlugin
	}
	references := config.References
	if references == nil {
		references = []string{quark.ModuleName}
	}

	targetDir := filepath.Dir(config.TargetPath)
	if abs, err := filepath.Abs(targetDir); err == nil {
		targetDir = abs
	}
	lc := loader.NewProbingContext(targetDir, SharedPrefixes, HostModules(), open)

	opts := []writer.Option{writer.WithLogger(logger(config.Logger))}
	if config.Minify != nil {
		opts = append(opts, writer.WithMinifier(config.Minify))
	}
	for name, v := range config.Services {
		opts = append(opts, writer.WithService(name, v))
	}

	return writer.New(lc, opts...).Run(ctx, writer.Config{
		TargetPath:      config.TargetPath,
		ProjectDir:      config.ProjectDir,
		BuildUnminified: config.BuildUnminified,
		BuildMinified:   config.BuildMinified,
		References:      references,
	})
}
