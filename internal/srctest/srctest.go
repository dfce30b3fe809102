// Package srctest type-checks in-memory Go sources for tests.
package srctest

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"sort"
	"testing"
)

// QuarkPath is the import path of the theming library stub.
const QuarkPath = "github.com/yacobolo/themecss/quark"

// QuarkSource is a minimal stand-in for the quark package.
const QuarkSource = `package quark

type Theme struct{ Name string }

type BootstrapCSSVariables struct{ Prefix string }

type Provider interface {
	Service(name string) (any, bool)
}
`

// Package is one type-checked package.
type Package struct {
	Path  string
	Name  string
	Fset  *token.FileSet
	Files []*ast.File
	Types *types.Package
	Info  *types.Info
}

// Universe type-checks packages in the order they are added; later packages
// may import earlier ones.
type Universe struct {
	Fset *token.FileSet
	pkgs map[string]*types.Package
}

// New returns an empty Universe.
func New() *Universe {
	return &Universe{Fset: token.NewFileSet(), pkgs: make(map[string]*types.Package)}
}

// WithQuark returns a Universe that already holds the quark stub.
func WithQuark(t testing.TB) *Universe {
	u := New()
	u.Add(t, QuarkPath, map[string]string{"quark.go": QuarkSource})
	return u
}

// Import implements types.Importer.
func (u *Universe) Import(path string) (*types.Package, error) {
	if p, ok := u.pkgs[path]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("package %q not added to universe", path)
}

// Add parses and type-checks files (name to source) as package path.
func (u *Universe) Add(t testing.TB, path string, files map[string]string) *Package {
	t.Helper()

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var parsed []*ast.File
	for _, name := range names {
		f, err := parser.ParseFile(u.Fset, name, files[name], parser.ParseComments)
		if err != nil {
			t.Fatalf("parse %s: %v", name, err)
		}
		parsed = append(parsed, f)
	}

	info := &types.Info{
		Types: make(map[ast.Expr]types.TypeAndValue),
		Defs:  make(map[*ast.Ident]types.Object),
		Uses:  make(map[*ast.Ident]types.Object),
	}
	conf := types.Config{Importer: u}
	pkg, err := conf.Check(path, u.Fset, parsed, info)
	if err != nil {
		t.Fatalf("type-check %s: %v", path, err)
	}
	u.pkgs[path] = pkg

	return &Package{
		Path:  path,
		Name:  pkg.Name(),
		Fset:  u.Fset,
		Files: parsed,
		Types: pkg,
		Info:  info,
	}
}
