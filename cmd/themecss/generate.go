package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yacobolo/themecss"
	"github.com/yacobolo/themecss/internal/report"
)

var generateCmd = &cobra.Command{
	Use:     "generate [patterns...]",
	Aliases: []string{"gen"},
	Short:   "Record annotated theme types in a manifest file",
	Long: `Load the Go packages matching patterns (default ./...), find every named
type carrying a //themecss:generate directive and write the manifest of valid
theme types to themecss.gen.go in the output directory.

Invalid declarations are reported as diagnostics; any error diagnostic makes
the command exit 1 after the manifest has been written.`,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return loadConfig(cmd)
	},
	RunE: runGenerate,
}

func init() {
	addGenerateFlags(generateCmd)
}

func addGenerateFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("dir", "", "Project root (default: current directory)")
	f.String("output-dir", "", "Directory receiving themecss.gen.go (default: project root)")
	f.String("package", "", "Package name of the generated file (default: detected)")
	f.StringSlice("exclude", nil, "Glob patterns of source files to ignore")
	f.StringSlice("build-flags", nil, "Extra flags passed to the go command, e.g. -tags=dev")
	f.Bool("watch", false, "Regenerate whenever Go sources change")
	f.Bool("strict", false, "Exit 1 on warnings too (CI mode)")
	f.String("output-format", "", "Output format: issues|json")
	f.Bool("print-lines", true, "Show source lines with diagnostics")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	config := buildGenerateConfig(args)
	opts := buildGenerateOptions()
	out := cmd.OutOrStdout()

	if opts.Watch {
		return themecss.Watch(cmd.Context(), config, func(result *themecss.GenerateResult, err error) {
			if err != nil {
				logger.Error("generation failed", zap.Error(err))
				return
			}
			if werr := printResult(out, result, opts); werr != nil {
				logger.Error("cannot print diagnostics", zap.Error(werr))
			}
		})
	}

	result, err := themecss.Generate(cmd.Context(), config)
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}
	if err := printResult(out, result, opts); err != nil {
		return err
	}

	// Exit code logic: errors always fail, warnings only in strict mode
	if result.Failed(opts.Strict) {
		return errFailed
	}
	return nil
}

// printResult writes the diagnostics of result unless output is quiet.
func printResult(w io.Writer, result *themecss.GenerateResult, opts generateOptions) error {
	if opts.Quiet {
		return nil
	}

	format := report.DetermineOutputFormat(opts.OutputFormat)
	if format == report.OutputIssues && len(result.Diagnostics) == 0 {
		if len(result.Candidates) == 0 {
			fmt.Fprintln(w, "No theme types found")
			return nil
		}
		fmt.Fprintf(w, "%s: %s\n", result.OutputFile, pluralize(len(result.Candidates), "theme type", "theme types"))
		return nil
	}
	return report.WriteOutput(w, format, report.Options{
		UseColors:  opts.UseColors,
		PrintLines: opts.PrintLines,
	}, result.Summary(), result.Diagnostics)
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}
