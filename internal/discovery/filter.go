package discovery

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"
)

// Filter decides which source files are searched for theme directives.
// Files outside the project root are only subject to the generated-file
// check.
type Filter struct {
	root      string
	excludes  []string
	gitignore *ignore.GitIgnore
}

// NewFilter builds a filter rooted at root. excludes are doublestar patterns
// relative to root. A missing .gitignore is fine.
func NewFilter(root string, excludes []string) (*Filter, error) {
	for _, pattern := range excludes {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %s: %w", root, err)
	}

	f := &Filter{root: absRoot, excludes: excludes}
	if gi, err := ignore.CompileIgnoreFile(filepath.Join(absRoot, ".gitignore")); err == nil {
		f.gitignore = gi
	}
	return f, nil
}

// isGenerated matches generated Go files ("styles.gen.go", "themes_gen.go").
func isGenerated(path string) bool {
	return strings.HasSuffix(path, ".gen.go") || strings.HasSuffix(path, "_gen.go")
}

// Skip reports whether path should be ignored.
//
// Two layers:
//  1. Generated files are always skipped.
//  2. Paths inside the root are checked against excludes and .gitignore.
func (f *Filter) Skip(path string) bool {
	if isGenerated(path) {
		return true
	}
	if f == nil {
		return false
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(f.root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	rel = filepath.ToSlash(rel)

	for _, pattern := range f.excludes {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}

	return f.gitignore != nil && f.gitignore.MatchesPath(rel)
}
