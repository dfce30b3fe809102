package themecss

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/yacobolo/themecss/internal/discovery"
	"github.com/yacobolo/themecss/internal/emitter"
	"github.com/yacobolo/themecss/internal/fsutil"
	"github.com/yacobolo/themecss/internal/report"
)

// Generate discovers theme types and writes the manifest file. Declaration
// problems are returned as diagnostics, not errors; the manifest always
// lists the valid candidates.
func Generate(ctx context.Context, config Config) (*GenerateResult, error) {
	log := logger(config.Logger)
	result := &GenerateResult{}

	root, err := filepath.Abs(orDefault(config.Dir, "."))
	if err != nil {
		return nil, fmt.Errorf("resolve project dir: %w", err)
	}
	outputDir := orDefault(config.OutputDir, ".")
	if !filepath.IsAbs(outputDir) {
		outputDir = filepath.Join(root, outputDir)
	}

	// 1. Resolve the package the generated file belongs to
	target, err := emitter.ResolveTarget(outputDir, config.PackageName)
	if err != nil {
		return nil, fmt.Errorf("resolve output package: %w", err)
	}
	result.OutputFile = filepath.Join(target.Dir, emitter.FileName)
	log.Debug("output package", zap.String("path", target.PkgPath), zap.String("name", target.PkgName))

	// 2. Build the source filter
	filter, err := discovery.NewFilter(root, config.Excludes)
	if err != nil {
		return nil, err
	}

	// 3. Load and type-check packages
	pkgs, err := discovery.Load(ctx, discovery.LoadConfig{
		Dir:        root,
		Patterns:   config.Patterns,
		BuildFlags: config.BuildFlags,
		Env:        config.Env,
	})
	if err != nil {
		return nil, err
	}
	result.PackagesLoaded = len(pkgs)
	log.Debug("packages loaded", zap.Int("count", len(pkgs)))

	// 4. Discover theme types
	found := discovery.Discover(pkgs, discovery.Options{
		Filter:        filter,
		TargetPkgPath: target.PkgPath,
	})
	result.Candidates = found.Candidates
	result.Diagnostics = found.Diagnostics
	log.Debug("theme types discovered",
		zap.Int("candidates", len(found.Candidates)),
		zap.Int("diagnostics", len(found.Diagnostics)))

	// 5. Emit the manifest
	changed, err := emitter.Emit(ctx, fsutil.OS{}, target.Dir, emitter.FileName, emitter.File{
		PkgName:    target.PkgName,
		PkgPath:    target.PkgPath,
		Candidates: found.Candidates,
		Declared:   declaredNames(pkgs, target.PkgPath),
	})
	if err != nil {
		return nil, fmt.Errorf("emit manifest: %w", err)
	}
	result.Changed = changed
	if changed {
		log.Info("manifest updated", zap.String("file", result.OutputFile), zap.Int("themes", len(found.Candidates)))
	}

	// 6. Prepare diagnostics for reporting
	report.AttachSourceLines(result.Diagnostics)
	report.Sort(result.Diagnostics)

	return result, nil
}

// declaredNames returns the package-level identifiers of the loaded package
// pkgPath. The generated file itself is loaded without declarations.
func declaredNames(pkgs []*discovery.Package, pkgPath string) []string {
	for _, p := range pkgs {
		if p.Path == pkgPath && p.Types != nil {
			return p.Types.Scope().Names()
		}
	}
	return nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
