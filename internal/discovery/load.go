package discovery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"

	"golang.org/x/tools/go/packages"

	"github.com/yacobolo/themecss/internal/manifest"
)

// Package is a parsed and type-checked Go package.
type Package struct {
	Path  string
	Name  string
	Fset  *token.FileSet
	Files []*ast.File
	Types *types.Package
	Info  *types.Info
}

// LoadConfig controls which packages are loaded.
type LoadConfig struct {
	Dir        string   // working directory for the go command
	Patterns   []string // package patterns, "./..." when empty
	BuildFlags []string // e.g. "-tags=dev"
	Env        []string // nil inherits the process environment
}

const loadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedImports |
	packages.NeedDeps

// Load parses and type-checks the packages matched by cfg. Previously
// generated manifest files are reduced to their package clause so a stale
// type table cannot break type-checking.
func Load(ctx context.Context, cfg LoadConfig) ([]*Package, error) {
	patterns := cfg.Patterns
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	pcfg := &packages.Config{
		Context:    ctx,
		Mode:       loadMode,
		Dir:        cfg.Dir,
		Env:        cfg.Env,
		BuildFlags: cfg.BuildFlags,
		ParseFile:  parseFile,
	}

	loaded, err := packages.Load(pcfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("load packages: %w", err)
	}

	var errs []error
	packages.Visit(loaded, nil, func(p *packages.Package) {
		for _, e := range p.Errors {
			errs = append(errs, e)
		}
	})
	if len(errs) > 0 {
		return nil, fmt.Errorf("load packages: %w", errors.Join(errs...))
	}

	pkgs := make([]*Package, 0, len(loaded))
	for _, p := range loaded {
		pkgs = append(pkgs, &Package{
			Path:  p.PkgPath,
			Name:  p.Name,
			Fset:  p.Fset,
			Files: p.Syntax,
			Types: p.Types,
			Info:  p.TypesInfo,
		})
	}
	return pkgs, nil
}

func parseFile(fset *token.FileSet, filename string, src []byte) (*ast.File, error) {
	mode := parser.AllErrors | parser.ParseComments
	if bytes.HasPrefix(src, []byte(manifest.GeneratedHeader)) {
		mode = parser.PackageClauseOnly
	}
	return parser.ParseFile(fset, filename, src, mode)
}
