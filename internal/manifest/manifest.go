// Package manifest implements the line-oriented text format shared between
// the generate step and the post-build writer.
//
// Each line describes one theme type:
//
//	TypeName|OutputPath|BuildUnminified|BuildMinified
//
// Flags are written as "1" or "0". The decoder also accepts "true"/"false"
// (case-insensitive) and empty flags, and the legacy forms
// "TypeName|OutputPath" and "TypeName|OutputPath|Flag", where missing or
// unrecognised flags default to true.
package manifest

import (
	"strings"
)

// Delimiter separates the fields of a manifest line.
const Delimiter = '|'

// GeneratedHeader opens every file that embeds a manifest.
const GeneratedHeader = "// Code generated by themecss. DO NOT EDIT."

// Symbols exported by a package that embeds a manifest.
const (
	ManifestSymbol = "ThemeCSSManifest" // string
	TypesSymbol    = "ThemeCSSTypes"    // map[string]reflect.Type
)

// Entry is one theme type recorded in the manifest.
type Entry struct {
	TypeName        string // "example.com/app/ui.DemoTheme"
	OutputPath      string // "wwwroot/css/theme.css", possibly relative
	BuildUnminified bool
	BuildMinified   bool
}

// ValidPath reports whether path can be stored in a manifest line without
// breaking the grammar.
func ValidPath(path string) bool {
	return !strings.ContainsAny(path, "|\r\n")
}

// Line renders a single entry. The second return value is false when the
// entry cannot be encoded (empty fields, or a delimiter or line break in
// either field).
func Line(e Entry) (string, bool) {
	if e.TypeName == "" || e.OutputPath == "" {
		return "", false
	}
	if !ValidPath(e.OutputPath) || !ValidPath(e.TypeName) {
		return "", false
	}

	var sb strings.Builder
	sb.Grow(len(e.TypeName) + len(e.OutputPath) + 6)
	sb.WriteString(e.TypeName)
	sb.WriteByte(Delimiter)
	sb.WriteString(e.OutputPath)
	sb.WriteByte(Delimiter)
	sb.WriteString(flag(e.BuildUnminified))
	sb.WriteByte(Delimiter)
	sb.WriteString(flag(e.BuildMinified))
	return sb.String(), true
}

// Encode renders entries one per line, each terminated by "\n". Entries that
// cannot be encoded are dropped.
func Encode(entries []Entry) string {
	var sb strings.Builder
	for _, e := range entries {
		line, ok := Line(e)
		if !ok {
			continue
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Decode parses manifest data. Lines may be separated by CR, LF or both;
// empty and malformed lines are skipped.
func Decode(data string) []Entry {
	lines := strings.FieldsFunc(data, func(r rune) bool {
		return r == '\r' || r == '\n'
	})

	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		if e, ok := ParseLine(line); ok {
			entries = append(entries, e)
		}
	}
	return entries
}

// ParseLine parses one manifest line. It returns false for lines without a
// delimiter or with an empty type name or path.
func ParseLine(line string) (Entry, bool) {
	fields := strings.Split(line, string(Delimiter))
	if len(fields) < 2 {
		return Entry{}, false
	}

	e := Entry{
		TypeName:        strings.TrimSpace(fields[0]),
		OutputPath:      strings.TrimSpace(fields[1]),
		BuildUnminified: true,
		BuildMinified:   true,
	}
	if e.TypeName == "" || e.OutputPath == "" {
		return Entry{}, false
	}

	// Legacy single-flag lines ("Type|Path|MinifyCss") keep both defaults.
	if len(fields) >= 4 {
		if v, ok := ParseFlag(fields[2]); ok {
			e.BuildUnminified = v
		}
		// Anything after the third delimiter is a single flag value.
		if v, ok := ParseFlag(strings.Join(fields[3:], string(Delimiter))); ok {
			e.BuildMinified = v
		}
	}

	return e, true
}

// ParseFlag parses a manifest or command-line boolean. The second return
// value is false for empty or unrecognised input so callers can apply their
// own default.
func ParseFlag(s string) (bool, bool) {
	s = strings.TrimSpace(s)
	switch {
	case s == "1" || strings.EqualFold(s, "true"):
		return true, true
	case s == "0" || strings.EqualFold(s, "false"):
		return false, true
	}
	return false, false
}

func flag(v bool) string {
	if v {
		return "1"
	}
	return "0"
}
