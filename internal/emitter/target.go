package emitter

import (
	"errors"
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/mod/modfile"
)

// Target is the package the generated file is written into.
type Target struct {
	Dir     string // absolute directory
	PkgPath string // import path derived from the enclosing go.mod
	PkgName string
}

// ResolveTarget computes the import path of dir from the nearest go.mod.
// pkgName overrides the package name; otherwise it is read from the Go
// files already in dir, falling back to the directory name.
func ResolveTarget(dir, pkgName string) (Target, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return Target{}, fmt.Errorf("resolve %s: %w", dir, err)
	}

	modDir, modPath, err := findModule(abs)
	if err != nil {
		return Target{}, err
	}
	rel, err := filepath.Rel(modDir, abs)
	if err != nil {
		return Target{}, fmt.Errorf("resolve %s: %w", dir, err)
	}

	t := Target{Dir: abs, PkgPath: modPath, PkgName: pkgName}
	if rel != "." {
		t.PkgPath = path.Join(modPath, filepath.ToSlash(rel))
	}
	if t.PkgName == "" {
		t.PkgName = existingPackageName(abs)
	}
	if t.PkgName == "" {
		t.PkgName = identifier(filepath.Base(abs))
	}
	if t.PkgName == "" {
		return Target{}, fmt.Errorf("cannot derive a package name for %s; set one explicitly", dir)
	}
	return t, nil
}

// findModule walks up from dir to the nearest go.mod.
func findModule(dir string) (string, string, error) {
	for d := dir; ; {
		data, err := os.ReadFile(filepath.Join(d, "go.mod"))
		switch {
		case err == nil:
			modPath := modfile.ModulePath(data)
			if modPath == "" {
				return "", "", fmt.Errorf("%s: no module directive", filepath.Join(d, "go.mod"))
			}
			return d, modPath, nil
		case !errors.Is(err, os.ErrNotExist):
			return "", "", fmt.Errorf("read go.mod: %w", err)
		}

		parent := filepath.Dir(d)
		if parent == d {
			return "", "", fmt.Errorf("no go.mod found above %s", dir)
		}
		d = parent
	}
}

// existingPackageName returns the package clause of the first non-test Go
// file in dir, in name order.
func existingPackageName(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	fset := token.NewFileSet()
	for _, name := range names {
		f, err := parser.ParseFile(fset, filepath.Join(dir, name), nil, parser.PackageClauseOnly)
		if err == nil {
			return f.Name.Name
		}
	}
	return ""
}
