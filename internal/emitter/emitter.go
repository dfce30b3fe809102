// Package emitter renders the generated Go file that embeds the manifest
// and the type table read by the post-build writer.
package emitter

import (
	"bytes"
	"context"
	"fmt"
	"go/format"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/yacobolo/themecss/internal/discovery"
	"github.com/yacobolo/themecss/internal/fsutil"
	"github.com/yacobolo/themecss/internal/manifest"
)

// FileName is the default name of the generated file.
const FileName = "themecss.gen.go"

// File describes one generated file.
type File struct {
	PkgName    string // package clause, "main" for a plugin
	PkgPath    string // import path of the generated package, may be empty
	Candidates []discovery.Candidate

	// Declared lists the package-level identifiers of the generated package.
	// Import aliases avoid them.
	Declared []string
}

// Lines renders the manifest lines of entries, sorted, dropping entries
// the grammar cannot carry.
func Lines(entries []manifest.Entry) []string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		if line, ok := manifest.Line(e); ok {
			lines = append(lines, line)
		}
	}
	sort.Strings(lines)
	return lines
}

// Render returns the gofmt'ed source of f. Output depends only on the
// candidate set, not on its order.
func Render(f File) ([]byte, error) {
	if f.PkgName == "" {
		return nil, fmt.Errorf("package name is required")
	}

	cands := append([]discovery.Candidate(nil), f.Candidates...)
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].TypeName < cands[j].TypeName })

	entries := make([]manifest.Entry, 0, len(cands))
	var kept []discovery.Candidate
	for _, c := range cands {
		if _, ok := manifest.Line(c.Entry()); !ok {
			continue
		}
		entries = append(entries, c.Entry())
		kept = append(kept, c)
	}

	imports := newImportSet(f.PkgPath, f.Declared)
	for _, c := range kept {
		if c.PkgPath == f.PkgPath {
			imports.reserve(c.Name)
		}
	}
	for _, c := range kept {
		imports.add(c.PkgPath, c.PkgName)
	}

	var buf bytes.Buffer
	buf.WriteString(manifest.GeneratedHeader + "\n\n")
	fmt.Fprintf(&buf, "package %s\n\n", f.PkgName)

	buf.WriteString("import (\n\t\"reflect\"\n")
	if len(imports.paths) > 0 {
		buf.WriteString("\n")
	}
	for _, p := range imports.paths {
		fmt.Fprintf(&buf, "\t%s %s\n", imports.alias[p], strconv.Quote(p))
	}
	buf.WriteString(")\n\n")

	text := ""
	if lines := Lines(entries); len(lines) > 0 {
		text = strings.Join(lines, "\n") + "\n"
	}
	fmt.Fprintf(&buf, "const themeCSSManifest = %s\n\n", strconv.Quote(text))

	fmt.Fprintf(&buf, "// %s lists the theme types of this package, one per line.\n", manifest.ManifestSymbol)
	fmt.Fprintf(&buf, "var %s = themeCSSManifest\n\n", manifest.ManifestSymbol)

	fmt.Fprintf(&buf, "// %s maps manifest type names to their types.\n", manifest.TypesSymbol)
	fmt.Fprintf(&buf, "var %s = map[string]reflect.Type{\n", manifest.TypesSymbol)
	for _, c := range kept {
		ref := c.Name
		if alias, ok := imports.alias[c.PkgPath]; ok {
			ref = alias + "." + c.Name
		}
		fmt.Fprintf(&buf, "\t%s: reflect.TypeOf((*%s)(nil)).Elem(),\n", strconv.Quote(c.TypeName), ref)
	}
	buf.WriteString("}\n")

	if f.PkgName == "main" {
		buf.WriteString("\nfunc main() {}\n")
	}

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format generated source: %w", err)
	}
	return src, nil
}

// importSet assigns stable, collision-free aliases to imported packages.
type importSet struct {
	self  string
	paths []string
	alias map[string]string
	used  map[string]bool
}

func newImportSet(self string, declared []string) *importSet {
	s := &importSet{
		self:  self,
		alias: make(map[string]string),
		used:  make(map[string]bool),
	}
	s.reserve("reflect", "main", "themeCSSManifest", manifest.ManifestSymbol, manifest.TypesSymbol)
	s.reserve(declared...)
	return s
}

// reserve marks names as taken. It must be called before add.
func (s *importSet) reserve(names ...string) {
	for _, n := range names {
		s.used[n] = true
	}
}

// add must be called in a deterministic order.
func (s *importSet) add(pkgPath, pkgName string) {
	if pkgPath == "" || pkgPath == s.self {
		return
	}
	if _, ok := s.alias[pkgPath]; ok {
		return
	}

	base := identifier(pkgName)
	if base == "" || base == "main" {
		base = identifier(path.Base(pkgPath))
	}
	if base == "" {
		base = "pkg"
	}

	name := base
	for i := 2; s.used[name]; i++ {
		name = base + strconv.Itoa(i)
	}
	s.used[name] = true
	s.alias[pkgPath] = name
	s.paths = append(s.paths, pkgPath)
	sort.Strings(s.paths)
}

// identifier reduces s to a valid Go identifier, dropping invalid runes.
func identifier(s string) string {
	var b strings.Builder
	for i, r := range s {
		switch {
		case r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z'):
			b.WriteRune(r)
		case '0' <= r && r <= '9' && i > 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Emit writes the generated file into dir. An unchanged file is left alone.
// With no candidates a previously generated file is removed. The returned
// bool reports whether anything on disk changed.
func Emit(ctx context.Context, fsys fsutil.FileSystem, dir, name string, f File) (bool, error) {
	if name == "" {
		name = FileName
	}
	target := filepath.Join(dir, name)

	if len(f.Candidates) == 0 {
		return removeStale(ctx, fsys, target)
	}

	src, err := Render(f)
	if err != nil {
		return false, err
	}
	changed, err := fsutil.AtomicWrite(ctx, fsys, target, src)
	if err != nil {
		return false, fmt.Errorf("write %s: %w", target, err)
	}
	return changed, nil
}

// removeStale deletes target if it is a file we generated.
func removeStale(ctx context.Context, fsys fsutil.FileSystem, target string) (bool, error) {
	exists, err := fsys.Exists(ctx, target)
	if err != nil || !exists {
		return false, err
	}
	content, err := fsys.ReadFile(ctx, target)
	if err != nil {
		return false, err
	}
	if !bytes.HasPrefix(content, []byte(manifest.GeneratedHeader)) {
		return false, fmt.Errorf("refusing to remove %s: not generated by themecss", target)
	}
	if err := fsys.Remove(ctx, target); err != nil {
		return false, fmt.Errorf("remove stale %s: %w", target, err)
	}
	return true, nil
}
