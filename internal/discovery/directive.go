package discovery

import (
	"fmt"
	"go/ast"
	"strconv"
	"strings"

	"github.com/mattn/go-shellwords"
)

// Marker is a directive name that declares a theme type.
type Marker struct {
	Name   string // written as "//<Name> ..." in the type's doc comment
	Legacy bool
}

// Markers lists the recognised directives in lookup order. Types carrying
// both are reported once, under the first marker.
var Markers = []Marker{
	{Name: "themecss:generate"},
	{Name: "quark:themecss", Legacy: true},
}

// Directive is the parsed argument list of a marker comment:
//
//	//themecss:generate "wwwroot/css/theme.css" buildMinified=false
//
// The output path is the first positional argument or outputPath=. Keys are
// case-insensitive; boolean values accept anything strconv.ParseBool does.
// Backslashes are literal, so Windows separators survive as written. A word
// containing '=' is an option only when its name is a known key, or a bare
// name following the path; otherwise it is the path.
type Directive struct {
	OutputPath      string
	BuildUnminified bool
	BuildMinified   bool
	UnknownKeys     []string
}

// findDirective returns the comment in doc carrying marker and the raw
// argument text after it.
func findDirective(doc *ast.CommentGroup, marker string) (*ast.Comment, string, bool) {
	if doc == nil {
		return nil, "", false
	}
	prefix := "//" + marker
	for _, c := range doc.List {
		rest, ok := strings.CutPrefix(c.Text, prefix)
		if !ok {
			continue
		}
		if rest == "" || rest[0] == ' ' || rest[0] == '\t' {
			return c, strings.TrimSpace(rest), true
		}
	}
	return nil, "", false
}

// backslash stands in for '\' while the arguments are split. Go source
// cannot contain NUL.
const backslash = "\x00"

// parseDirective parses the argument text of a marker comment. Flags default
// to true.
func parseDirective(args string) (Directive, error) {
	d := Directive{BuildUnminified: true, BuildMinified: true}

	p := shellwords.NewParser()
	words, err := p.Parse(strings.ReplaceAll(args, `\`, backslash))
	if err != nil {
		return d, fmt.Errorf("cannot split arguments: %w", err)
	}
	if p.Position >= 0 {
		return d, fmt.Errorf("unquoted shell metacharacter in %q; quote the value", args)
	}

	havePath := false
	for _, word := range words {
		word = strings.ReplaceAll(word, backslash, `\`)
		key, value, isKV := splitOption(word, havePath)
		if !isKV {
			if havePath {
				return d, fmt.Errorf("unexpected argument %q", word)
			}
			d.OutputPath = word
			havePath = true
			continue
		}

		switch strings.ToLower(key) {
		case "outputpath":
			if havePath {
				return d, fmt.Errorf("output path given twice")
			}
			d.OutputPath = value
			havePath = true
		case "buildunminified":
			if d.BuildUnminified, err = strconv.ParseBool(value); err != nil {
				return d, fmt.Errorf("%s: invalid boolean %q", key, value)
			}
		case "buildminified":
			if d.BuildMinified, err = strconv.ParseBool(value); err != nil {
				return d, fmt.Errorf("%s: invalid boolean %q", key, value)
			}
		default:
			d.UnknownKeys = append(d.UnknownKeys, key)
		}
	}

	d.OutputPath = strings.TrimSpace(d.OutputPath)
	return d, nil
}

// splitOption reports whether word is a key=value option.
func splitOption(word string, havePath bool) (key, value string, ok bool) {
	key, value, ok = strings.Cut(word, "=")
	if !ok {
		return "", "", false
	}
	switch strings.ToLower(key) {
	case "outputpath", "buildunminified", "buildminified":
		return key, value, true
	}
	return key, value, havePath && isOptionName(key)
}

func isOptionName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '_' || r == '-'):
		default:
			return false
		}
	}
	return true
}
