package report

import (
	"encoding/json"
	"io"
	"time"
)

// OutputFormat selects how diagnostics are printed.
type OutputFormat string

const (
	// OutputIssues prints golangci-lint style lines.
	OutputIssues OutputFormat = "issues"
	// OutputJSON prints a JSON document.
	OutputJSON OutputFormat = "json"
)

// DetermineOutputFormat maps a flag value to a format, falling back to
// issues for empty or unknown values.
func DetermineOutputFormat(formatFlag string) OutputFormat {
	switch formatFlag {
	case "json":
		return OutputJSON
	default:
		return OutputIssues
	}
}

// Summary describes one generate run.
type Summary struct {
	PackagesLoaded int    `json:"packages_loaded"`
	Themes         int    `json:"themes"`
	OutputFile     string `json:"output_file,omitempty"`
	Changed        bool   `json:"changed"`
}

// JSONOutput is the JSON export schema.
type JSONOutput struct {
	Version     string       `json:"version"`
	Timestamp   string       `json:"timestamp"`
	Summary     Summary      `json:"summary"`
	Errors      int          `json:"errors"`
	Warnings    int          `json:"warnings"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// now is replaced in tests.
var now = time.Now

// WriteJSON writes the summary and diagnostics as indented JSON.
func WriteJSON(w io.Writer, summary Summary, diags []Diagnostic) error {
	errors, warnings := Count(diags)
	if diags == nil {
		diags = []Diagnostic{}
	}
	Sort(diags)

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(JSONOutput{
		Version:     "1.0",
		Timestamp:   now().Format(time.RFC3339),
		Summary:     summary,
		Errors:      errors,
		Warnings:    warnings,
		Diagnostics: diags,
	})
}

// WriteOutput prints diags in format. Issues output is followed by a summary
// line.
func WriteOutput(w io.Writer, format OutputFormat, opts Options, summary Summary, diags []Diagnostic) error {
	switch format {
	case OutputJSON:
		return WriteJSON(w, summary, diags)
	default:
		reporter := NewReporter(w, opts)
		reporter.PrintDiagnostics(diags)
		reporter.PrintSummary(diags)
		return nil
	}
}
