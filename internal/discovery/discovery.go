// Package discovery finds theme types in loaded Go packages.
//
// A theme type is a named type whose doc comment carries a marker
// directive:
//
//	//themecss:generate "wwwroot/css/theme.css" buildMinified=false
//	type DemoTheme struct{}
//
//	func (DemoTheme) Build() *quark.Theme { ... }
//
// Every candidate is validated; invalid ones are dropped with a located
// diagnostic and never reach the manifest.
package discovery

import (
	"go/ast"
	"go/token"
	"go/types"
	"sort"
	"strings"

	"github.com/yacobolo/themecss/internal/factory"
	"github.com/yacobolo/themecss/internal/manifest"
	"github.com/yacobolo/themecss/internal/report"
)

// Candidate is a validated theme type.
type Candidate struct {
	TypeName        string // "example.com/app/ui.DemoTheme"
	PkgPath         string
	PkgName         string
	Name            string
	Pos             token.Position
	Marker          string
	OutputPath      string
	BuildUnminified bool
	BuildMinified   bool
}

// Entry converts c to its manifest form.
func (c Candidate) Entry() manifest.Entry {
	return manifest.Entry{
		TypeName:        c.TypeName,
		OutputPath:      c.OutputPath,
		BuildUnminified: c.BuildUnminified,
		BuildMinified:   c.BuildMinified,
	}
}

// Options configures Discover. The zero value uses the quark theme types,
// the standard markers and no file filter.
type Options struct {
	Resolver factory.Resolver
	Markers  []Marker
	Filter   *Filter

	// TargetPkgPath is the package the generated file belongs to. Types in
	// main packages are only referenceable from their own package.
	TargetPkgPath string
}

// Result is the outcome of one discovery pass.
type Result struct {
	Candidates  []Candidate
	Diagnostics []report.Diagnostic
}

// Discover scans pkgs for theme types. Packages are visited in import path
// order and markers in table order; a type found twice keeps its first
// occurrence.
func Discover(pkgs []*Package, opts Options) Result {
	resolver := opts.Resolver
	if resolver.ThemeType == "" {
		resolver = factory.Default
	}
	markers := opts.Markers
	if len(markers) == 0 {
		markers = Markers
	}

	if lookupType(pkgs, resolver.ThemeType) == nil {
		return Result{Diagnostics: []report.Diagnostic{
			report.Errorf(report.CodeThemeTypeMissing, report.Pos{}, report.MsgThemeTypeMissing, resolver.ThemeType),
		}}
	}
	provider := lookupType(pkgs, resolver.ProviderType)

	sorted := append([]*Package(nil), pkgs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	d := &discoverer{
		resolver: resolver,
		provider: provider,
		opts:     opts,
		seen:     make(map[*types.TypeName]bool),
	}
	for _, marker := range markers {
		for _, pkg := range sorted {
			d.scanPackage(pkg, marker)
		}
	}
	return d.result
}

type discoverer struct {
	resolver factory.Resolver
	provider types.Type
	opts     Options
	seen     map[*types.TypeName]bool
	result   Result
}

func (d *discoverer) scanPackage(pkg *Package, marker Marker) {
	for _, file := range pkg.Files {
		filename := pkg.Fset.Position(file.Package).Filename
		if d.opts.Filter.Skip(filename) {
			continue
		}

		for _, decl := range file.Decls {
			gen, ok := decl.(*ast.GenDecl)
			if !ok || gen.Tok != token.TYPE {
				continue
			}
			for _, spec := range gen.Specs {
				ts := spec.(*ast.TypeSpec)
				doc := ts.Doc
				if doc == nil && !gen.Lparen.IsValid() {
					doc = gen.Doc
				}

				comment, args, found := findDirective(doc, marker.Name)
				if !found {
					continue
				}
				obj, ok := pkg.Info.Defs[ts.Name].(*types.TypeName)
				if !ok || d.seen[obj] {
					continue
				}
				d.seen[obj] = true

				d.check(pkg, ts, obj, marker, pkg.Fset.Position(comment.Slash), args)
			}
		}
	}
}

// check validates one annotated type and records either a candidate or its
// diagnostics.
func (d *discoverer) check(pkg *Package, ts *ast.TypeSpec, obj *types.TypeName, marker Marker, directivePos token.Position, args string) {
	pos := pkg.Fset.Position(ts.Name.Pos())
	typeName := pkg.Path + "." + obj.Name()

	dir, err := parseDirective(args)
	if err != nil {
		d.errorf(report.CodeMalformed, directivePos, report.MsgMalformed, typeName, err)
		return
	}
	for _, key := range dir.UnknownKeys {
		d.result.Diagnostics = append(d.result.Diagnostics,
			report.Warnf(report.CodeMalformed, toPos(directivePos), report.MsgUnknownKey, key, typeName))
	}

	if dir.OutputPath == "" {
		d.errorf(report.CodeMissingOutputPath, pos, report.MsgMissingOutputPath, typeName)
		return
	}
	if !manifest.ValidPath(dir.OutputPath) {
		d.errorf(report.CodeInvalidOutputPath, pos, report.MsgInvalidOutputPath, dir.OutputPath, typeName)
		return
	}

	if !d.referenceable(pkg, ts, obj) {
		target := d.opts.TargetPkgPath
		if target == "" {
			target = "(generated)"
		}
		d.errorf(report.CodeNotReferenceable, pos, report.MsgNotReferenceable, typeName, target)
		return
	}

	named, _ := obj.Type().(*types.Named)
	if _, ok := d.resolver.ResolveStatic(named, d.provider); !ok {
		d.errorf(report.CodeNoUniqueFactory, pos, report.MsgNoUniqueFactory, typeName, d.resolver.ThemeType)
		return
	}

	d.result.Candidates = append(d.result.Candidates, Candidate{
		TypeName:        typeName,
		PkgPath:         pkg.Path,
		PkgName:         pkg.Name,
		Name:            obj.Name(),
		Pos:             pos,
		Marker:          marker.Name,
		OutputPath:      dir.OutputPath,
		BuildUnminified: dir.BuildUnminified,
		BuildMinified:   dir.BuildMinified,
	})
}

// referenceable reports whether the generated package can name the type in
// a reflect.TypeOf expression.
func (d *discoverer) referenceable(pkg *Package, ts *ast.TypeSpec, obj *types.TypeName) bool {
	if obj.IsAlias() || ts.TypeParams != nil {
		return false
	}
	samePackage := d.opts.TargetPkgPath != "" && pkg.Path == d.opts.TargetPkgPath
	if samePackage {
		return true
	}
	if !obj.Exported() || pkg.Name == "main" {
		return false
	}
	return !isInternalTo(pkg.Path, d.opts.TargetPkgPath)
}

// isInternalTo reports whether pkgPath is an internal package that target
// may not import.
func isInternalTo(pkgPath, target string) bool {
	if target == "" {
		return false
	}
	elems := strings.Split(pkgPath, "/")
	for i := len(elems) - 1; i >= 0; i-- {
		if elems[i] != "internal" {
			continue
		}
		parent := strings.Join(elems[:i], "/")
		return parent == "" || (target != parent && !strings.HasPrefix(target, parent+"/"))
	}
	return false
}

func (d *discoverer) errorf(code string, pos token.Position, format string, args ...any) {
	d.result.Diagnostics = append(d.result.Diagnostics, report.Errorf(code, toPos(pos), format, args...))
}

func toPos(p token.Position) report.Pos {
	return report.Pos{Filename: p.Filename, Line: p.Line, Column: p.Column}
}

// lookupType finds a named type by its full name ("import/path.Name") in
// pkgs or anything they import.
func lookupType(pkgs []*Package, fullName string) types.Type {
	i := strings.LastIndex(fullName, ".")
	if i <= 0 {
		return nil
	}
	path, name := fullName[:i], fullName[i+1:]

	seen := make(map[*types.Package]bool)
	var visit func(p *types.Package) types.Type
	visit = func(p *types.Package) types.Type {
		if p == nil || seen[p] {
			return nil
		}
		seen[p] = true
		if p.Path() == path {
			if obj, ok := p.Scope().Lookup(name).(*types.TypeName); ok {
				return obj.Type()
			}
		}
		for _, imp := range p.Imports() {
			if t := visit(imp); t != nil {
				return t
			}
		}
		return nil
	}

	for _, pkg := range pkgs {
		if t := visit(pkg.Types); t != nil {
			return t
		}
	}
	return nil
}
