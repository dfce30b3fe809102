package report

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Options configures a Reporter.
type Options struct {
	UseColors  bool // force colors on
	PrintLines bool // print the offending source line with a caret
}

// Reporter prints diagnostics golangci-lint style.
type Reporter struct {
	w          io.Writer
	useColors  bool
	printLines bool
}

// NewReporter creates a reporter writing to w.
func NewReporter(w io.Writer, opts Options) *Reporter {
	return &Reporter{
		w:          w,
		useColors:  shouldUseColors(opts),
		printLines: opts.PrintLines,
	}
}

func shouldUseColors(opts Options) bool {
	if opts.UseColors {
		return true
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("FORCE_COLOR") != "" || os.Getenv("GITHUB_ACTIONS") == "true" {
		return true
	}
	if fileInfo, err := os.Stdout.Stat(); err == nil && (fileInfo.Mode()&os.ModeCharDevice) != 0 {
		return true
	}
	return false
}

// PrintDiagnostics prints diags sorted by location.
func (r *Reporter) PrintDiagnostics(diags []Diagnostic) {
	Sort(diags)
	for _, d := range diags {
		r.printDiagnostic(d)
	}
}

// printDiagnostic prints "file:line:col: message (CODE)".
func (r *Reporter) printDiagnostic(d Diagnostic) {
	location := RenderStyle(StyleRed, d.Severity+":", r.useColors)
	if d.Severity == SeverityWarning {
		location = RenderStyle(StyleYellow, d.Severity+":", r.useColors)
	}
	if pos := d.Pos.String(); pos != "" {
		location = RenderStyle(StyleCyan, pos+":", r.useColors)
	}

	fmt.Fprintf(r.w, "%s %s%s\n",
		location,
		d.Message,
		RenderStyle(StyleGray, fmt.Sprintf(" (%s)", d.Code), r.useColors))

	if r.printLines && d.SourceLine != "" {
		fmt.Fprintf(r.w, "\t%s\n", d.SourceLine)
		caret := buildCaretIndicator(d.SourceLine, d.Pos.Column)
		fmt.Fprintf(r.w, "\t%s\n", RenderStyle(StyleYellow, caret, r.useColors))
	}
}

// buildCaretIndicator aligns "^" under column, keeping the tabs of the
// source line so the caret lines up in any tab width.
func buildCaretIndicator(sourceLine string, column int) string {
	if column <= 0 {
		return "^"
	}

	prefixLen := column - 1
	if prefixLen > len(sourceLine) {
		prefixLen = len(sourceLine)
	}

	var padding strings.Builder
	for _, ch := range sourceLine[:prefixLen] {
		if ch == '\t' {
			padding.WriteRune('\t')
		} else {
			padding.WriteRune(' ')
		}
	}

	return padding.String() + "^"
}

// PrintSummary prints the issue count line and a per-code breakdown.
func (r *Reporter) PrintSummary(diags []Diagnostic) {
	errors, warnings := Count(diags)
	total := len(diags)

	if total == 0 {
		return
	}

	fmt.Fprintln(r.w, "")
	if errors > 0 && warnings > 0 {
		fmt.Fprintf(r.w, "%s (%s, %s):\n",
			pluralizeCount(total, "issue", "issues"),
			pluralizeCount(errors, "error", "errors"),
			pluralizeCount(warnings, "warning", "warnings"))
	} else {
		fmt.Fprintf(r.w, "%s:\n", pluralizeCount(total, "issue", "issues"))
	}

	codeCounts := make(map[string]int)
	var codes []string
	for _, d := range diags {
		if codeCounts[d.Code] == 0 {
			codes = append(codes, d.Code)
		}
		codeCounts[d.Code]++
	}
	for _, code := range codes {
		fmt.Fprintf(r.w, "* %s: %d\n", code, codeCounts[code])
	}
}

func pluralizeCount(count int, singular, plural string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, singular)
	}
	return fmt.Sprintf("%d %s", count, plural)
}

// UseColors reports whether colors are enabled.
func (r *Reporter) UseColors() bool {
	return r.useColors
}
