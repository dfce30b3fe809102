// Package report holds the diagnostics produced while discovering theme
// types and renders them golangci-lint style or as JSON.
package report

import (
	"bufio"
	"fmt"
	"os"
	"sort"
)

// Diagnostic is a single problem found in a theme declaration.
type Diagnostic struct {
	Code       string `json:"code"`     // "TC002"
	Severity   string `json:"severity"` // "error", "warning"
	Message    string `json:"message"`
	Pos        Pos    `json:"pos"`
	SourceLine string `json:"source,omitempty"`
}

// Pos is a 1-based source location. Filename is empty for diagnostics that
// are not tied to a declaration.
type Pos struct {
	Filename string `json:"file"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
}

func (p Pos) String() string {
	if p.Filename == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

// Severity values.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Diagnostic codes.
const (
	CodeMissingOutputPath = "TC001"
	CodeNoUniqueFactory   = "TC002"
	CodeInvalidOutputPath = "TC003"
	CodeThemeTypeMissing  = "TC004"
	CodeNotReferenceable  = "TC005"
	CodeMalformed         = "TC006"
)

// Message formats per code.
const (
	MsgMissingOutputPath = "theme type %s has no output path"
	MsgNoUniqueFactory   = "theme type %s must have exactly one exported value-receiver method returning %s"
	MsgInvalidOutputPath = "output path %q of theme type %s contains '|' or a line break"
	MsgThemeTypeMissing  = "theme type %s not found in loaded packages; no theme can be generated"
	MsgNotReferenceable  = "theme type %s cannot be referenced from package %s"
	MsgMalformed         = "malformed directive on %s: %s"
	MsgUnknownKey        = "unknown directive key %q on %s is ignored"
)

// Errorf builds an error diagnostic.
func Errorf(code string, pos Pos, format string, args ...any) Diagnostic {
	return Diagnostic{Code: code, Severity: SeverityError, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// Warnf builds a warning diagnostic.
func Warnf(code string, pos Pos, format string, args ...any) Diagnostic {
	return Diagnostic{Code: code, Severity: SeverityWarning, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// Count returns the number of errors and warnings in diags.
func Count(diags []Diagnostic) (errors, warnings int) {
	for _, d := range diags {
		switch d.Severity {
		case SeverityError:
			errors++
		case SeverityWarning:
			warnings++
		}
	}
	return errors, warnings
}

// Sort orders diags by file, line and column. Global diagnostics come first.
func Sort(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i].Pos, diags[j].Pos
		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
}

// AttachSourceLines fills SourceLine from the referenced files. Files that
// cannot be read are left alone.
func AttachSourceLines(diags []Diagnostic) {
	cache := make(map[string][]string)
	for i := range diags {
		d := &diags[i]
		if d.Pos.Filename == "" || d.Pos.Line <= 0 || d.SourceLine != "" {
			continue
		}
		lines, ok := cache[d.Pos.Filename]
		if !ok {
			lines = readLines(d.Pos.Filename)
			cache[d.Pos.Filename] = lines
		}
		if d.Pos.Line <= len(lines) {
			d.SourceLine = lines[d.Pos.Line-1]
		}
	}
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines
}
