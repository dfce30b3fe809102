// Package themecss turns theme types declared in Go code into static CSS
// files.
//
// Work happens in two stages. Generate runs at development time: it loads
// the project's packages, finds named types carrying a themecss directive
// and writes a manifest of them into a generated Go file.
//
//	//themecss:generate "wwwroot/css/theme.css"
//	type DemoTheme struct{}
//
//	func (DemoTheme) Build() *quark.Theme { ... }
//
// Write runs after the package holding the generated file has been built as
// a plugin. It loads the plugin, reads the manifest back, invokes every
// theme factory and writes the resulting stylesheets.
//
// # Generation
//
//	result, err := themecss.Generate(ctx, themecss.Config{
//		Dir:       ".",
//		OutputDir: "cmd/themes",
//	})
//
// # Writing
//
//	res, err := themecss.Write(ctx, themecss.WriteConfig{
//		TargetPath:      "bin/themes.so",
//		ProjectDir:      ".",
//		BuildUnminified: true,
//		BuildMinified:   true,
//	})
//
// # CLI Tool
//
// Both stages are also available as the themecss command:
//
//	go install github.com/yacobolo/themecss/cmd/themecss@latest
package themecss

import (
	"go.uber.org/zap"

	"github.com/yacobolo/themecss/internal/discovery"
	"github.com/yacobolo/themecss/internal/report"
)

// Config controls a Generate run.
type Config struct {
	// Dir is the project root. Patterns, excludes and the .gitignore are
	// resolved against it.
	Dir string

	// Patterns are go/packages patterns. Defaults to "./...".
	Patterns []string

	// OutputDir receives the generated file. Relative paths are resolved
	// against Dir.
	OutputDir string

	// PackageName overrides the package clause of the generated file.
	PackageName string

	// Excludes are doublestar patterns, relative to Dir, of source files to
	// ignore.
	Excludes []string

	BuildFlags []string
	Env        []string

	Logger *zap.Logger
}

// GenerateResult describes one Generate run.
type GenerateResult struct {
	PackagesLoaded int
	Candidates     []discovery.Candidate
	Diagnostics    []report.Diagnostic

	// OutputFile is the absolute path of the generated file.
	OutputFile string

	// Changed reports whether the generated file was written or removed.
	Changed bool
}

// ErrorCount returns the number of error diagnostics.
func (r *GenerateResult) ErrorCount() int {
	errs, _ := report.Count(r.Diagnostics)
	return errs
}

// Failed reports whether the run should fail a build. In strict mode
// warnings count as failures too.
func (r *GenerateResult) Failed(strict bool) bool {
	errs, warnings := report.Count(r.Diagnostics)
	if strict {
		return errs+warnings > 0
	}
	return errs > 0
}

// Summary returns the report summary of the run.
func (r *GenerateResult) Summary() report.Summary {
	return report.Summary{
		PackagesLoaded: r.PackagesLoaded,
		Themes:         len(r.Candidates),
		OutputFile:     r.OutputFile,
		Changed:        r.Changed,
	}
}

func logger(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
