package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// errFailed signals a run whose problems were already reported.
var errFailed = errors.New("run failed")

// logger is replaced in PersistentPreRunE once flags are parsed.
var logger = zap.NewNop()

var rootCmd = &cobra.Command{
	Use:   "themecss",
	Short: "Theme CSS generator for Go projects",
	Long: `Theme types declared in Go code become static CSS files.
generate records every annotated theme type in a manifest file;
write reads that manifest back from the built plugin and writes the CSS.`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		quiet, _ := cmd.Flags().GetBool("quiet")
		l, err := newLogger(verbose, quiet)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		_ = logger.Sync()
	},
	// Default behavior: run generate when no subcommand is given.
	// We must call loadConfig here because PreRunE of generateCmd
	// is not triggered when delegating via rootCmd.RunE.
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(cmd); err != nil {
			return err
		}
		return runGenerate(cmd, args)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Global persistent flags (inherited by all subcommands)
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().Bool("quiet", false, "Suppress all output (exit code only)")
	rootCmd.PersistentFlags().Bool("color", false, "Force color output")
	rootCmd.PersistentFlags().String("config", defaultConfigFile, "Config file path")

	addGenerateFlags(rootCmd)

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(writeCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(versionCmd)
}

// newLogger builds a console logger on stderr. Info is the default level;
// --verbose lowers it to debug and --quiet raises it to error.
func newLogger(verbose, quiet bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Encoding = "console"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.DisableStacktrace = true
	switch {
	case quiet:
		config.Level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	case verbose:
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return config.Build()
}
