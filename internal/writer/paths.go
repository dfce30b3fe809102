package writer

import (
	"path/filepath"
	"strings"
)

const (
	cssExt    = ".css"
	minCSSExt = ".min.css"
)

// UnminifiedPath normalises a recorded output path to its unminified form:
// "theme.min.css" becomes "theme.css" (case-insensitive), anything else is
// returned unchanged.
func UnminifiedPath(p string) string {
	dir, file := filepath.Split(p)
	if len(file) >= len(minCSSExt) && strings.EqualFold(file[len(file)-len(minCSSExt):], minCSSExt) {
		file = file[:len(file)-len(minCSSExt)] + cssExt
	}
	return dir + file
}

// MinifiedPath inserts ".min" before the final extension of p. A file name
// without an extension (or a dot file) gets ".min" appended.
func MinifiedPath(p string) string {
	dir, file := filepath.Split(p)
	dot := strings.LastIndexByte(file, '.')
	if dot <= 0 {
		return dir + file + ".min"
	}
	return dir + file[:dot] + ".min" + file[dot:]
}

// resolveOutput makes p absolute against projectDir.
func resolveOutput(projectDir, p string) (string, error) {
	if !filepath.IsAbs(p) {
		p = filepath.Join(projectDir, p)
	}
	return filepath.Abs(p)
}
